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

// processSignalState is the process-shared signal state embedded in
// every Process: a shared pending queue, a shared disposition table,
// a wait queue used by rt_sigtimedwait and friends, and the default
// sigreturn trampoline address installed when a SignalAction carries
// no restorer of its own.
//
// This is the struct-embedding equivalent of the original's
// ProcessSignalManager<M, WQ>: there, M/WQ are generic over the raw
// mutex and wait-queue implementation; here, both are concrete (a
// single in-process Go binary has no need to swap either at compile
// time), so the fields live directly on Process rather than behind a
// separate generic type.
type processSignalState struct {
	pendingMu pendingMutex
	pending   PendingSignals

	actionsMu actionsMutex
	actions   SignalActions

	wq WaitQueue

	defaultRestorer uintptr
}

func (s *processSignalState) init(p *Process) {
	s.wq = newCondWaitQueue()
}

// SetDefaultRestorer installs the sigreturn trampoline address used
// when a thread's SignalAction carries no restorer of its own.
func (p *Process) SetDefaultRestorer(addr uintptr) {
	p.signals.defaultRestorer = addr
}

// Actions returns a copy of the process's current signal disposition
// table.
func (p *Process) Actions() SignalActions {
	p.signals.actionsMu.Lock()
	defer p.signals.actionsMu.Unlock()
	return p.signals.actions
}

// SetAction installs action as the disposition for signo, visible
// immediately to every thread in the process (POSIX requires
// sigaction(2) be process-wide). SIGKILL and SIGSTOP cannot be
// masked or have their disposition overridden outside Default in a
// real kernel, but this package leaves that enforcement to the
// syscall layer, matching the original's own scope boundary.
func (p *Process) SetAction(signo Signo, action SignalAction) {
	p.signals.actionsMu.Lock()
	defer p.signals.actionsMu.Unlock()
	p.signals.actions.Set(signo, action)
}

func (p *Process) dequeueSignal(mask SignalSet) (SignalInfo, bool) {
	p.signals.pendingMu.Lock()
	defer p.signals.pendingMu.Unlock()
	return p.signals.pending.DequeueSignal(mask)
}

// SendSignal enqueues info into the process-shared pending queue and
// wakes one waiter. Masking is applied at delivery time (check_signals),
// not here: any signo may be sent regardless of any thread's mask.
func (p *Process) SendSignal(info SignalInfo) {
	p.signals.pendingMu.Lock()
	p.signals.pending.PutSignal(info)
	p.signals.pendingMu.Unlock()
	p.signals.wq.NotifyOne()
}

// PendingSignals returns the process-shared pending bitmap.
func (p *Process) PendingSignals() SignalSet {
	p.signals.pendingMu.Lock()
	defer p.signals.pendingMu.Unlock()
	return p.signals.pending.Set()
}

// WaitSignal blocks until some thread's SendSignal or the process's own
// SendSignal notifies the shared wait queue. May return early due to a
// notification meant for a different thread in the process; callers
// must re-check after waking.
func (p *Process) WaitSignal() {
	p.signals.wq.Wait()
}
