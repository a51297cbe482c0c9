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

//go:build arm64

package arch

import (
	"bytes"
	"encoding/binary"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

// TrapFrame64 is the aarch64 trap frame: the 31 general-purpose
// registers plus the user stack pointer, exception link register and
// saved program status. It implements kernel.TrapFrame.
type TrapFrame64 struct {
	R    [31]uint64
	Usp  uint64
	Elr  uint64
	Spsr uint64
}

// SP implements kernel.TrapFrame.
func (tf *TrapFrame64) SP() uintptr { return uintptr(tf.Usp) }

// SetSP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetSP(sp uintptr) { tf.Usp = uint64(sp) }

// SetIP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetIP(ip uintptr) { tf.Elr = uint64(ip) }

// SetArg0 implements kernel.TrapFrame. aarch64 passes the handler's
// arguments in x0, x1, x2.
func (tf *TrapFrame64) SetArg0(v uintptr) { tf.R[0] = uint64(v) }

// SetArg1 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg1(v uintptr) { tf.R[1] = uint64(v) }

// SetArg2 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg2(v uintptr) { tf.R[2] = uint64(v) }

// UsesPushedReturnAddress implements kernel.TrapFrame. aarch64 returns
// via its link register, x30, not a stack slot.
func (tf *TrapFrame64) UsesPushedReturnAddress() bool { return false }

// SetLinkRegister implements kernel.TrapFrame.
func (tf *TrapFrame64) SetLinkRegister(addr uintptr) { tf.R[30] = uint64(addr) }

// Clone implements kernel.TrapFrame.
func (tf *TrapFrame64) Clone() kernel.TrapFrame {
	cp := *tf
	return &cp
}

// Restore implements kernel.TrapFrame.
func (tf *TrapFrame64) Restore(saved kernel.TrapFrame) {
	*tf = *saved.(*TrapFrame64)
}

// mcontext64 mirrors Linux's aarch64 struct sigcontext: a fault
// address Linux populates only for synchronous faults (always zero
// here, this package never delivers those), the general-purpose
// registers, and the reserved extension space ucontext_t carries for
// FP/SVE state this package doesn't model.
type mcontext64 struct {
	FaultAddress uint64
	Regs         [31]uint64
	Sp           uint64
	Pc           uint64
	Pstate       uint64
	reserved     [4096]byte
}

func newMContext64(tf *TrapFrame64) mcontext64 {
	return mcontext64{
		Regs: tf.R,
		Sp:   tf.Usp,
		Pc:   tf.Elr,
		Pstate: tf.Spsr,
	}
}

func (m *mcontext64) restore(tf *TrapFrame64) {
	tf.R = m.Regs
	tf.Usp = m.Sp
	tf.Elr = m.Pc
	tf.Spsr = m.Pstate
}

// signalContext64 is the aarch64 ucontext_t image. Unlike amd64, Linux
// places the signal mask directly after the alternate stack and before
// the (1024-bit-aligned) mcontext, padding the gap explicitly.
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
	// Padding to keep mcontext 1024-bit aligned in the uc_sigmask
	// gap, matching the original's __unused field.
	pad := make([]byte, 128-8)
	buf.Write(pad)
	binary.Write(&buf, binary.LittleEndian, c.MContext.FaultAddress)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Regs)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Sp)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Pc)
	binary.Write(&buf, binary.LittleEndian, c.MContext.Pstate)
	return buf.Bytes()
}

// RestoreInto writes the saved mcontext's registers back into tf. A
// real memory-backed integration should call this (after reading the
// ucontext back from the stack at the post-handler SP) instead of
// kernel.Thread.Restore's frame-bookkeeping shortcut.
func (c *signalContext64) RestoreInto(tf *TrapFrame64) {
	c.MContext.restore(tf)
}

// signalTrampolineARM64 is the signal return trampoline page: "mov x8,
// #139; svc #0" (rt_sigreturn), encoded by hand since this package
// can't emit inline assembly, zero-padded to a full page. The encoded
// words, little-endian, are 0xD2801168 (movz x8, #139) followed by
// 0xD4000001 (svc #0).
var signalTrampolineARM64 = buildTrampolinePage([]byte{
	0x68, 0x11, 0x80, 0xD2,
	0x01, 0x00, 0x00, 0xD4,
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
