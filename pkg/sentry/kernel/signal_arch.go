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

package kernel

// This file is the seam between the architecture-independent delivery
// logic below and the per-architecture trap-frame/ucontext layouts in
// pkg/sentry/arch. Mirrors the teacher's own arch.contextInterface
// split: the kernel package never switches on GOARCH itself, it only
// calls through these interfaces.

// TrapFrame is the architecture-specific saved CPU register state that
// signal delivery rewrites to divert execution to a handler, and that
// sigreturn restores. Implementations live in pkg/sentry/arch, one per
// supported architecture.
type TrapFrame interface {
	// SP returns the current stack pointer.
	SP() uintptr
	// SetSP sets the stack pointer.
	SetSP(sp uintptr)
	// SetIP sets the instruction pointer (the handler entry point).
	SetIP(ip uintptr)
	// SetArg0, SetArg1, SetArg2 set the first three integer argument
	// registers, used to pass (signo, &siginfo, &ucontext) to the
	// handler per the platform calling convention.
	SetArg0(v uintptr)
	SetArg1(v uintptr)
	SetArg2(v uintptr)
	// UsesPushedReturnAddress reports whether this architecture expects
	// the handler's return address pushed onto the stack (amd64,
	// inheriting the x86 call/ret convention) rather than carried in a
	// link register (every other architecture supported here).
	UsesPushedReturnAddress() bool
	// SetLinkRegister sets the link register to addr. Only meaningful
	// when UsesPushedReturnAddress is false.
	SetLinkRegister(addr uintptr)
	// Clone returns a copy of the trap frame, captured at the point a
	// signal frame is built so it can be reinstated verbatim by
	// sigreturn.
	Clone() TrapFrame
	// Restore overwrites the receiver with the contents of saved.
	Restore(saved TrapFrame)
}

// SignalContext is the architecture-specific ucontext_t image built
// when a signal handler is invoked and consumed again by sigreturn.
type SignalContext interface {
	// Save captures tf's register state and restoreBlocked (the
	// signal mask to reinstate on return) into the context image.
	Save(tf TrapFrame, restoreBlocked SignalSet)
	// Blocked returns the signal mask saved by Save, read back by
	// Restore.
	Blocked() SignalSet
	// Bytes returns the raw memory image of the context, to be copied
	// onto the signal stack alongside the siginfo and saved trap frame.
	Bytes() []byte
}

// SignalStackWriter is the destination a signal frame is written to.
// It abstracts over the underlying memory so this package doesn't need
// direct access to a process address space; a real integration backs
// this with its memory manager, the way gVisor's arch.Stack is backed
// by usermem.IO.
type SignalStackWriter interface {
	// Push writes data onto the stack, growing it downward from sp,
	// and returns the resulting stack pointer.
	Push(sp uintptr, data []byte) (uintptr, error)
}

// signalContextFactory constructs a blank, architecture-appropriate
// SignalContext. Installed by pkg/sentry/arch's init for whichever
// architecture file matches the build's GOARCH — this package never
// imports pkg/sentry/arch itself, avoiding an import cycle (arch
// depends on kernel for SignalSet/SignalInfo/TrapFrame, not the other
// way around).
var signalContextFactory func() SignalContext

// RegisterSignalContextFactory installs fn as the constructor used by
// ThreadSignalManager to build new signal contexts. Intended to be
// called from exactly one architecture's init function.
func RegisterSignalContextFactory(fn func() SignalContext) {
	signalContextFactory = fn
}
