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

//go:build riscv64

package arch

import (
	"bytes"
	"encoding/binary"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

// generalRegisters64 holds the riscv64 integer register file in the
// order the supervisor trap entry spills them.
type generalRegisters64 struct {
	Ra, Sp, Gp, Tp                         uint64
	T0, T1, T2                             uint64
	S0, S1                                 uint64
	A0, A1, A2, A3, A4, A5, A6, A7         uint64
	S2, S3, S4, S5, S6, S7, S8, S9, S10, S11 uint64
	T3, T4, T5, T6                         uint64
}

// TrapFrame64 is the riscv64 trap frame: the saved program counter
// (sepc) plus the full integer register file. It implements
// kernel.TrapFrame.
type TrapFrame64 struct {
	Sepc uint64
	Regs generalRegisters64
}

// SP implements kernel.TrapFrame.
func (tf *TrapFrame64) SP() uintptr { return uintptr(tf.Regs.Sp) }

// SetSP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetSP(sp uintptr) { tf.Regs.Sp = uint64(sp) }

// SetIP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetIP(ip uintptr) { tf.Sepc = uint64(ip) }

// SetArg0 implements kernel.TrapFrame. riscv64 passes the handler's
// arguments in a0, a1, a2.
func (tf *TrapFrame64) SetArg0(v uintptr) { tf.Regs.A0 = uint64(v) }

// SetArg1 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg1(v uintptr) { tf.Regs.A1 = uint64(v) }

// SetArg2 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg2(v uintptr) { tf.Regs.A2 = uint64(v) }

// UsesPushedReturnAddress implements kernel.TrapFrame. riscv64 returns
// via its link register, ra.
func (tf *TrapFrame64) UsesPushedReturnAddress() bool { return false }

// SetLinkRegister implements kernel.TrapFrame.
func (tf *TrapFrame64) SetLinkRegister(addr uintptr) { tf.Regs.Ra = uint64(addr) }

// Clone implements kernel.TrapFrame.
func (tf *TrapFrame64) Clone() kernel.TrapFrame {
	cp := *tf
	return &cp
}

// Restore implements kernel.TrapFrame.
func (tf *TrapFrame64) Restore(saved kernel.TrapFrame) {
	*tf = *saved.(*TrapFrame64)
}

// mcontext64 mirrors Linux's riscv64 struct sigcontext: the saved
// program counter, the integer register file, and a reserved area for
// the floating-point state this package never populates.
type mcontext64 struct {
	Pc      uint64
	Regs    generalRegisters64
	Fpstate [66]uint64
}

func newMContext64(tf *TrapFrame64) mcontext64 {
	return mcontext64{Pc: tf.Sepc, Regs: tf.Regs}
}

func (m *mcontext64) restore(tf *TrapFrame64) {
	tf.Sepc = m.Pc
	tf.Regs = m.Regs
}

// signalContext64 is the riscv64 ucontext_t image.
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
	binary.Write(&buf, binary.LittleEndian, c.MContext.Fpstate)
	return buf.Bytes()
}

// RestoreInto writes the saved mcontext's registers back into tf. A
// real memory-backed integration should call this (after reading the
// ucontext back from the stack at the post-handler SP) instead of
// kernel.Thread.Restore's frame-bookkeeping shortcut.
func (c *signalContext64) RestoreInto(tf *TrapFrame64) {
	c.MContext.restore(tf)
}

// signalTrampolineRISCV64 is the signal return trampoline page: "li
// a7, 139; ecall" (rt_sigreturn), encoded by hand since this package
// can't emit inline assembly, zero-padded to a full page. The encoded
// words, little-endian, are 0x08B00893 (addi a7, zero, 139) followed
// by 0x00000073 (ecall).
var signalTrampolineRISCV64 = buildTrampolinePage([]byte{
	0x93, 0x08, 0xB0, 0x08,
	0x73, 0x00, 0x00, 0x00,
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
