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

import (
	"encoding/binary"
	"time"

	"github.com/axiom-os/posixcore/pkg/log"
)

// signalFrame records one handler invocation: the saved ucontext (which
// itself carries the pre-handler register state and signal mask), the
// siginfo delivered to the handler, and a verbatim copy of the trap
// frame at the moment the signal was taken. The ucontext and siginfo
// images are pushed onto the thread's signal stack; the record itself
// is kept in threadSignalState.frames, which Restore pops.
type signalFrame struct {
	ucontext SignalContext
	siginfo  SignalInfo
	tf       TrapFrame
}

// threadSignalState is the per-thread signal state embedded in every
// Thread: its own pending queue (for signals targeted at this thread
// specifically, e.g. via tgkill), its blocked set, and its alternate
// signal stack. Mirrors the original's ThreadSignalManager<M, WQ>,
// concretized the same way processSignalState concretizes
// ProcessSignalManager (see that file's doc comment).
type threadSignalState struct {
	proc *Process

	pendingMu pendingMutex
	pending   PendingSignals

	blockedMu blockedMutex
	blocked   SignalSet

	stackMu stackMutex
	stack   SignalStack

	// frames records the signal frame built for each handler
	// invocation still in progress, most recent last. A real kernel
	// recovers this from
	// the frame itself once control returns via sigreturn; this
	// package has no raw memory to read back from, so it keeps the
	// bookkeeping here instead (see Thread.Restore's doc comment for
	// the consequence).
	frames []*signalFrame
}

func (s *threadSignalState) init(t *Thread) {
	s.proc = t.process
	s.stack = NewDisabledSignalStack()
}

func (t *Thread) dequeueSignal(mask SignalSet) (SignalInfo, bool) {
	t.signals.pendingMu.Lock()
	if info, ok := t.signals.pending.DequeueSignal(mask); ok {
		t.signals.pendingMu.Unlock()
		return info, true
	}
	t.signals.pendingMu.Unlock()
	return t.process.dequeueSignal(mask)
}

// Blocked returns the thread's currently blocked signal set.
func (t *Thread) Blocked() SignalSet {
	t.signals.blockedMu.Lock()
	defer t.signals.blockedMu.Unlock()
	return t.signals.blocked
}

// WithBlocked applies f to the thread's blocked set under lock,
// letting a caller implement sigprocmask's SIG_BLOCK/UNBLOCK/SETMASK
// variants without a data race against concurrent delivery.
func (t *Thread) WithBlocked(f func(blocked *SignalSet)) {
	t.signals.blockedMu.Lock()
	defer t.signals.blockedMu.Unlock()
	f(&t.signals.blocked)
}

// Stack returns a copy of the thread's alternate signal stack.
func (t *Thread) Stack() SignalStack {
	t.signals.stackMu.Lock()
	defer t.signals.stackMu.Unlock()
	return t.signals.stack
}

// WithStack applies f to the thread's alternate signal stack under
// lock, for sigaltstack(2).
func (t *Thread) WithStack(f func(stack *SignalStack)) {
	t.signals.stackMu.Lock()
	defer t.signals.stackMu.Unlock()
	f(&t.signals.stack)
}

// PendingSignals returns the union of this thread's own pending
// signals and its process's shared pending signals.
func (t *Thread) PendingSignals() SignalSet {
	t.signals.pendingMu.Lock()
	own := t.signals.pending.Set()
	t.signals.pendingMu.Unlock()
	return own | t.process.PendingSignals()
}

// SendSignal enqueues info into this thread's own pending queue (as
// opposed to Process.SendSignal, which targets the process-shared
// queue) and wakes every waiter in the process, since any of them
// might be the one checking this thread's signals.
func (t *Thread) SendSignal(info SignalInfo) {
	t.signals.pendingMu.Lock()
	t.signals.pending.PutSignal(info)
	t.signals.pendingMu.Unlock()
	t.process.signals.wq.NotifyAll()
}

// handleSignal applies sig's disposition to tf, returning the OS-level
// action the caller must additionally take, or false if the signal
// should be silently consumed (Default-disposition Ignore, or an
// explicit Ignore disposition).
//
// restoreBlocked is the blocked set to reinstate when the handler
// returns; stackWriter is where the handler's signal frame is placed,
// nil if the disposition isn't Handler (in which case it's unused).
func (t *Thread) handleSignal(tf TrapFrame, stackWriter SignalStackWriter, restoreBlocked SignalSet, sig SignalInfo, action SignalAction) (SignalOSAction, bool) {
	signo := sig.Signo()
	log.Debugf("kernel: handling signal %d for thread %d", signo, t.tid)

	switch action.Disposition {
	case SignalDispositionDefault:
		switch signo.DefaultAction() {
		case ActionTerminate:
			return OSActionTerminate, true
		case ActionCoreDump:
			return OSActionCoreDump, true
		case ActionStop:
			return OSActionStop, true
		case ActionContinue:
			return OSActionContinue, true
		case ActionIgnore:
			return 0, false
		}
		return 0, false
	case SignalDispositionIgnore:
		return 0, false
	case SignalDispositionHandler:
		t.buildHandlerFrame(tf, stackWriter, restoreBlocked, sig, action)
		return OSActionHandler, true
	default:
		return 0, false
	}
}

// buildHandlerFrame constructs the signal frame for a Handler
// disposition: it saves tf and restoreBlocked into a fresh
// SignalContext, pushes the ucontext and siginfo images onto the
// thread's chosen stack, records {ucontext, siginfo, saved tf} in
// threadSignalState.frames for Restore, rewrites tf to enter the
// handler with (signo, &siginfo, &ucontext) as its first three
// arguments and the restorer as its return address, adds the action's
// mask (and, unless NODEFER is set, signo itself) to the thread's
// blocked set, and resets the disposition to Default if RESETHAND is set.
//
// Per the original's own documented scope, the target stack's
// writability is not validated before constructing the frame.
func (t *Thread) buildHandlerFrame(tf TrapFrame, stackWriter SignalStackWriter, restoreBlocked SignalSet, sig SignalInfo, action SignalAction) {
	signo := sig.Signo()

	sp := tf.SP()
	if stack := t.Stack(); !stack.Disabled() && action.Flags.Has(SignalActionOnStack) {
		sp = stack.SP
	}

	ctx := signalContextFactory()
	ctx.Save(tf, restoreBlocked)
	saved := tf.Clone()

	frame := &signalFrame{ucontext: ctx, siginfo: sig, tf: saved}
	sp, _ = stackWriter.Push(sp, ctx.Bytes())
	ucontextAddr := sp
	sp, _ = stackWriter.Push(sp, sig.Raw[:])
	siginfoAddr := sp

	t.signals.frames = append(t.signals.frames, frame)

	restorer := action.Restorer
	if !action.Flags.Has(SignalActionRestorer) {
		restorer = t.process.signals.defaultRestorer
	}

	if tf.UsesPushedReturnAddress() {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(restorer))
		sp, _ = stackWriter.Push(sp, buf[:])
	} else {
		tf.SetLinkRegister(restorer)
	}

	tf.SetSP(sp)
	tf.SetIP(action.Handler)
	tf.SetArg0(uintptr(signo))
	tf.SetArg1(siginfoAddr)
	tf.SetArg2(ucontextAddr)

	addBlocked := action.Mask
	if !action.Flags.Has(SignalActionNoDefer) {
		addBlocked.Add(signo)
	}
	if action.Flags.Has(SignalActionResetHand) {
		t.process.SetAction(signo, SignalAction{})
	}
	t.WithBlocked(func(blocked *SignalSet) {
		*blocked |= addBlocked
	})
}

// CheckSignals consults the thread's disposition table and pending
// signals, delivering at most one signal: it dequeues signals not
// currently blocked, skipping any whose handling produces no OS-visible
// action (Default-Ignore or explicit Ignore), until one requires an
// action or none remain pending.
//
// restoreBlocked, if non-nil, overrides the blocked set that will be
// reinstated when a constructed handler frame's sigreturn executes;
// if nil, the thread's current blocked set is used.
func (t *Thread) CheckSignals(tf TrapFrame, stackWriter SignalStackWriter, restoreBlocked *SignalSet) (SignalInfo, SignalOSAction, bool) {
	t.process.signals.actionsMu.Lock()
	actions := t.process.signals.actions
	t.process.signals.actionsMu.Unlock()

	blocked := t.Blocked()
	mask := ^blocked
	effectiveRestore := blocked
	if restoreBlocked != nil {
		effectiveRestore = *restoreBlocked
	}

	for {
		sig, ok := t.dequeueSignal(mask)
		if !ok {
			return SignalInfo{}, 0, false
		}
		action := actions.Get(sig.Signo())
		if osAction, handled := t.handleSignal(tf, stackWriter, effectiveRestore, sig, action); handled {
			return sig, osAction, true
		}
	}
}

// Restore reinstates the most recently built signal frame: the trap
// frame as it was before the signal was taken, and the blocked set
// that was in effect at that time. Called by sigreturn.
//
// The original recovers the frame by reading it back off the stack at
// the current stack pointer; this package instead pops its own frame
// bookkeeping (see threadSignalState.frames), since it has no raw
// memory to read the pushed bytes back from. A real integration that
// does have addressable memory should prefer reading the frame from
// stackWriter at tf.SP() and drop this bookkeeping-based shortcut.
func (t *Thread) Restore(tf TrapFrame) bool {
	n := len(t.signals.frames)
	if n == 0 {
		return false
	}
	frame := t.signals.frames[n-1]
	t.signals.frames = t.signals.frames[:n-1]

	tf.Restore(frame.tf)
	t.WithBlocked(func(blocked *SignalSet) {
		*blocked = frame.ucontext.Blocked()
	})
	return true
}

// WaitTimeout blocks until one of the signals in set becomes pending
// for this thread (or its process), or timeout elapses. If one is
// already pending, it returns immediately. Returns the signal that was
// dequeued, or false if the timeout expired first.
//
// Non-blocked signals cannot be waited for with this call, matching
// rt_sigtimedwait(2): set is first intersected with the thread's
// currently blocked set.
func (t *Thread) WaitTimeout(set SignalSet, timeout *time.Duration) (SignalInfo, bool) {
	set &= t.Blocked()

	if sig, ok := t.dequeueSignal(set); ok {
		return sig, true
	}

	wq := t.process.signals.wq
	var deadline *time.Time
	if timeout != nil {
		d := time.Now().Add(*timeout)
		deadline = &d
	}

	for {
		if deadline != nil {
			remaining := time.Until(*deadline)
			if remaining <= 0 {
				break
			}
			if !wq.WaitTimeout(&remaining) {
				break
			}
		} else {
			wq.Wait()
		}
		if sig, ok := t.dequeueSignal(set); ok {
			return sig, true
		}
	}
	return SignalInfo{}, false
}
