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

// PendingSignals is a scope-local (per-process or per-thread) queue of
// undelivered signals: a membership bitmap of which signos have at
// least one instance queued, plus a FIFO queue of the payloads.
//
// Invariants: the bitmap equals the set of signos present in the
// queue; for any non-realtime signo, at most one payload is queued at
// a time (POSIX standard-signal coalescing); realtime signals queue
// without coalescing, in FIFO order.
//
// The zero value is an empty PendingSignals, ready to use.
type PendingSignals struct {
	set   SignalSet
	queue []SignalInfo
}

// PutSignal enqueues info. If info.Signo() is a non-realtime signal
// already pending, the call is a silent no-op (POSIX coalescing).
func (p *PendingSignals) PutSignal(info SignalInfo) {
	signo := info.Signo()
	if !signo.IsRealtime() && p.set.Has(signo) {
		return
	}
	p.queue = append(p.queue, info)
	p.set.Add(signo)
}

// DequeueSignal removes and returns the first queued SignalInfo whose
// signo is the lowest-numbered one present in both the pending bitmap
// and mask. Returns false if no such signal is pending.
func (p *PendingSignals) DequeueSignal(mask SignalSet) (SignalInfo, bool) {
	signo, ok := (p.set & mask).lowest()
	if !ok {
		return SignalInfo{}, false
	}
	for i, info := range p.queue {
		if info.Signo() != signo {
			continue
		}
		p.queue = append(p.queue[:i], p.queue[i+1:]...)
		if !p.hasQueued(signo) {
			p.set.Remove(signo)
		}
		return info, true
	}
	// set and queue disagree; treat as not pending rather than panic,
	// since this can only be reached by a bug in PutSignal/DequeueSignal
	// bookkeeping, not by caller misuse.
	p.set.Remove(signo)
	return SignalInfo{}, false
}

func (p *PendingSignals) hasQueued(signo Signo) bool {
	for _, info := range p.queue {
		if info.Signo() == signo {
			return true
		}
	}
	return false
}

// Set returns the current membership bitmap.
func (p *PendingSignals) Set() SignalSet {
	return p.set
}

// lowest returns the lowest-numbered signo set in s, if any.
func (s SignalSet) lowest() (Signo, bool) {
	tmp := s
	return tmp.Dequeue(^SignalSet(0))
}
