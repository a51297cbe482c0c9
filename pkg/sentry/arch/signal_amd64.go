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

//go:build amd64

package arch

import (
	"bytes"
	"encoding/binary"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

// TrapFrame64 is the general-purpose register file saved on entry to the
// kernel on amd64, in the order the original hardware trap frame lays
// them out. It implements kernel.TrapFrame.
type TrapFrame64 struct {
	R8        uint64
	R9        uint64
	R10       uint64
	R11       uint64
	R12       uint64
	R13       uint64
	R14       uint64
	R15       uint64
	Rdi       uint64
	Rsi       uint64
	Rbp       uint64
	Rbx       uint64
	Rdx       uint64
	Rax       uint64
	Rcx       uint64
	Rsp       uint64
	Rip       uint64
	Rflags    uint64
	Cs        uint16
	ErrorCode uint64
	Vector    uint64
}

// SP implements kernel.TrapFrame.
func (tf *TrapFrame64) SP() uintptr { return uintptr(tf.Rsp) }

// SetSP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetSP(sp uintptr) { tf.Rsp = uint64(sp) }

// SetIP implements kernel.TrapFrame.
func (tf *TrapFrame64) SetIP(ip uintptr) { tf.Rip = uint64(ip) }

// SetArg0 implements kernel.TrapFrame. amd64 passes the handler's
// (signo, *siginfo, *ucontext) in rdi, rsi, rdx.
func (tf *TrapFrame64) SetArg0(v uintptr) { tf.Rdi = uint64(v) }

// SetArg1 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg1(v uintptr) { tf.Rsi = uint64(v) }

// SetArg2 implements kernel.TrapFrame.
func (tf *TrapFrame64) SetArg2(v uintptr) { tf.Rdx = uint64(v) }

// UsesPushedReturnAddress implements kernel.TrapFrame. amd64 inherits
// the x86 call/ret convention: the handler returns via a ret that pops
// its return address from the stack.
func (tf *TrapFrame64) UsesPushedReturnAddress() bool { return true }

// SetLinkRegister implements kernel.TrapFrame. Unused on amd64.
func (tf *TrapFrame64) SetLinkRegister(addr uintptr) {}

// Clone implements kernel.TrapFrame.
func (tf *TrapFrame64) Clone() kernel.TrapFrame {
	cp := *tf
	return &cp
}

// Restore implements kernel.TrapFrame.
func (tf *TrapFrame64) Restore(saved kernel.TrapFrame) {
	*tf = *saved.(*TrapFrame64)
}

// mcontext64 mirrors struct mcontext on amd64 Linux: the subset of
// general-purpose register state a signal handler sees through
// ucontext_t.uc_mcontext, padded out with the fields Linux defines but
// this package never populates (cr2, fpstate, the reserved tail).
type mcontext64 struct {
	R8       uint64
	R9       uint64
	R10      uint64
	R11      uint64
	R12      uint64
	R13      uint64
	R14      uint64
	R15      uint64
	Rdi      uint64
	Rsi      uint64
	Rbp      uint64
	Rbx      uint64
	Rdx      uint64
	Rax      uint64
	Rcx      uint64
	Rsp      uint64
	Rip      uint64
	Eflags   uint64
	Cs       uint16
	Gs       uint16
	Fs       uint16
	pad      uint16
	Err      uint64
	Trapno   uint64
	Oldmask  uint64
	Cr2      uint64
	Fpstate  uint64
	reserved [8]uint64
}

func newMContext64(tf *TrapFrame64) mcontext64 {
	return mcontext64{
		R8: tf.R8, R9: tf.R9, R10: tf.R10, R11: tf.R11,
		R12: tf.R12, R13: tf.R13, R14: tf.R14, R15: tf.R15,
		Rdi: tf.Rdi, Rsi: tf.Rsi, Rbp: tf.Rbp, Rbx: tf.Rbx,
		Rdx: tf.Rdx, Rax: tf.Rax, Rcx: tf.Rcx, Rsp: tf.Rsp,
		Rip: tf.Rip, Eflags: tf.Rflags, Cs: tf.Cs,
		Err: tf.ErrorCode, Trapno: tf.Vector,
	}
}

func (m *mcontext64) restore(tf *TrapFrame64) {
	tf.R8, tf.R9, tf.R10, tf.R11 = m.R8, m.R9, m.R10, m.R11
	tf.R12, tf.R13, tf.R14, tf.R15 = m.R12, m.R13, m.R14, m.R15
	tf.Rdi, tf.Rsi, tf.Rbp, tf.Rbx = m.Rdi, m.Rsi, m.Rbp, m.Rbx
	tf.Rdx, tf.Rax, tf.Rcx, tf.Rsp = m.Rdx, m.Rax, m.Rcx, m.Rsp
	tf.Rip, tf.Rflags, tf.Cs = m.Rip, m.Eflags, m.Cs
	tf.ErrorCode, tf.Vector = m.Err, m.Trapno
}

// signalContext64 is the amd64 ucontext_t image: flags, link (always
// unused, matching the original), the alternate stack the handler was
// entered on, the saved mcontext, and the signal mask to restore.
type signalContext64 struct {
	Flags   uint64
	Link    uint64
	Stack   kernel.SignalStack
	MContext mcontext64
	Sigmask kernel.SignalSet
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
	binary.Write(&buf, binary.LittleEndian, c.MContext)
	binary.Write(&buf, binary.LittleEndian, uint64(c.Sigmask))
	return buf.Bytes()
}

// RestoreInto writes the saved mcontext's registers back into tf. A
// real memory-backed integration should call this (after reading the
// ucontext back from the stack at the post-handler SP) instead of
// kernel.Thread.Restore's frame-bookkeeping shortcut.
func (c *signalContext64) RestoreInto(tf *TrapFrame64) {
	c.MContext.restore(tf)
}

// signalTrampolineAMD64 is the signal return trampoline page: a single
// "mov rax, 0xf; syscall" (rt_sigreturn) encoded by hand, since this
// package can't emit inline assembly, zero-padded to a full page.
// The encoded bytes are 48 C7 C0 0F 00 00 00 (mov rax, imm32) followed
// by 0F 05 (syscall).
var signalTrampolineAMD64 = buildTrampolinePage([]byte{
	0x48, 0xC7, 0xC0, 0x0F, 0x00, 0x00, 0x00,
	0x0F, 0x05,
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
