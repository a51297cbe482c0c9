// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build loong64

package arch

import (
	"bytes"
	"encoding/binary"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

// TrapFrame64 is the loongarch64 trap frame: the saved exception
// return address (era) plus the 32 general-purpose registers. It
// implements kernel.TrapFrame.
type TrapFrame64 struct {
	Era  uint64
	Regs [32]uint64
}

// Register indices into Regs, per the LoongArch calling convention.
const (
	regRA = 1
	regSP = 3
	regA0 = 4
	regA1 = 5
	regA2 = 6
)

// SP implements kernel.TrapFrame.
func (tf *TrapFrame64) SP() uintptr { return uintptr(tf.Regs[regSP]) }

// SetSP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetSP(sp uintptr) { tf.Regs[regSP] = uint64(sp) }

// SetIP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetIP(ip uintptr) { tf.Era = uint64(ip) }

// SetArg0 implements kernel.TrapFrame. loongarch64 passes the
// handler's arguments in a0, a1, a2.
func (tf *TrapFrame64) SetArg0(v uintptr) { tf.Regs[regA0] = uint64(v) }

// SetArg1 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg1(v uintptr) { tf.Regs[regA1] = uint64(v) }

// SetArg2 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg2(v uintptr) { tf.Regs[regA2] = uint64(v) }

// UsesPushedReturnAddress implements kernel.TrapFrame. loongarch64
// returns via its link register, ra.
func (tf *TrapFrame64) UsesPushedReturnAddress() bool { return false }

// SetLinkRegister implements kernel.TrapFrame.
func (tf *TrapFrame64) SetLinkRegister(addr uintptr) { tf.Regs[regRA] = uint64(addr) }

// Clone implements kernel.TrapFrame.
func (tf *TrapFrame64) Clone() kernel.TrapFrame {
	cp := *tf
	return &cp
}

// Restore implements kernel.TrapFrame.
func (tf *TrapFrame64) Restore(saved kernel.TrapFrame) {
	*tf = *saved.(*TrapFrame64)
}

// mcontext64 mirrors Linux's loongarch64 struct sigcontext: the saved
// program counter (sc_pc), the general-purpose registers (sc_regs),
// and the flags word Linux uses to indicate which extended state
// follows (always zero here, since this package models no extended
// state).
type mcontext64 struct {
	Pc    uint64
	Regs  [32]uint64
	Flags uint32
}

func newMContext64(tf *TrapFrame64) mcontext64 {
	return mcontext64{Pc: tf.Era, Regs: tf.Regs}
}

func (m *mcontext64) restore(tf *TrapFrame64) {
	tf.Era = m.Pc
	tf.Regs = m.Regs
}

// signalContext64 is the loongarch64 ucontext_t image.
type signalContext64 struct {
	Flags    uint64
	Link     uint64
	Stack    kernel.SignalStack
	Sigmask  kernel.SignalSet
	MContext mcontext64
}

// Save implements kernel.SignalContext.
func (c *signalContext64) Save(tf kernel.TrapFrame, restoreBlocked kernel.SignalSet) {
	c.MContext = newMContext64(tf.(*TrapFrame64))
	c.Sigmask = restoreBlocked
}

// Blocked implements kernel.SignalContext.
func (c *signalContext64) Blocked() kernel.SignalSet { return c.Sigmask }

// Bytes implements kernel.SignalContext.
func (c *signalContext64) Bytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, c.Flags)
	binary.Write(&buf, binary.LittleEndian, c.Link)
	binary.Write(&buf, binary.LittleEndian, uint64(c.Stack.SP))
	binary.Write(&buf, binary.LittleEndian, c.Stack.Flags)
	binary.Write(&buf, binary.LittleEndian, uint64(c.Stack.Size))
	binary.Write(&buf, binary.LittleEndian, uint64(c.Sigmask))
	pad := make([]byte, 128-8)
	buf.Write(pad)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Pc)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Regs)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Flags)
	return buf.Bytes()
}

// RestoreInto writes the saved mcontext's registers back into tf. A
// real memory-backed integration should call this (after reading the
// ucontext back from the stack at the post-handler SP) instead of
// kernel.Thread.Restore's frame-bookkeeping shortcut.
func (c *signalContext64) RestoreInto(tf *TrapFrame64) {
	c.MContext.restore(tf)
}

// signalTrampolineLoong64 is the signal return trampoline page: "li.w
// $a7, 139; syscall 0" (rt_sigreturn), encoded by hand since this
// package can't emit inline assembly, zero-padded to a full page. The
// encoded words, little-endian, are 0x02822C0B (ori/addi.w $a7, $zero,
// 139) followed by 0x002B0000 (syscall 0).
var signalTrampolineLoong64 = buildTrampolinePage([]byte{
	0x0B, 0x2C, 0x82, 0x02,
	0x00, 0x00, 0x2B, 0x00,
})

func buildTrampolinePage(prologue []byte) [4096]byte {
	var page [4096]byte
	copy(page[:], prologue)
	return page
}

func init() {
	kernel.RegisterSignalContextFactory(func() kernel.SignalContext {
		return &signalContext64{}
	})
}
