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

import "testing"

func TestPendingSignalsCoalescesStandard(t *testing.T) {
	var p PendingSignals
	p.PutSignal(NewSignalInfo(SIGTERM, 1))
	p.PutSignal(NewSignalInfo(SIGTERM, 2))

	if !p.Set().Has(SIGTERM) {
		t.Fatalf("SIGTERM not marked pending")
	}
	if len(p.queue) != 1 {
		t.Fatalf("queue has %d entries for coalesced standard signal, want 1", len(p.queue))
	}

	info, ok := p.DequeueSignal(^SignalSet(0))
	if !ok || info.Code() != 1 {
		t.Fatalf("DequeueSignal() = (code=%d, %v), want (code=1, true)", info.Code(), ok)
	}
	if _, ok := p.DequeueSignal(^SignalSet(0)); ok {
		t.Fatalf("second DequeueSignal succeeded after single coalesced entry drained")
	}
}

func TestPendingSignalsQueuesRealtime(t *testing.T) {
	var p PendingSignals
	p.PutSignal(NewSignalInfo(SIGRTMIN, 1))
	p.PutSignal(NewSignalInfo(SIGRTMIN, 2))

	if len(p.queue) != 2 {
		t.Fatalf("queue has %d entries for realtime signal, want 2 (no coalescing)", len(p.queue))
	}

	first, ok := p.DequeueSignal(^SignalSet(0))
	if !ok || first.Code() != 1 {
		t.Fatalf("first DequeueSignal() code = %d, want 1", first.Code())
	}
	if !p.Set().Has(SIGRTMIN) {
		t.Fatalf("SIGRTMIN bit cleared while a second instance is still queued")
	}

	second, ok := p.DequeueSignal(^SignalSet(0))
	if !ok || second.Code() != 2 {
		t.Fatalf("second DequeueSignal() code = %d, want 2", second.Code())
	}
	if p.Set().Has(SIGRTMIN) {
		t.Fatalf("SIGRTMIN bit still set after draining both instances")
	}
}

func TestPendingSignalsDequeueLowestAcrossSignos(t *testing.T) {
	var p PendingSignals
	p.PutSignal(NewSignalInfo(SIGTERM, 0)) // 15
	p.PutSignal(NewSignalInfo(SIGINT, 0))  // 2

	info, ok := p.DequeueSignal(^SignalSet(0))
	if !ok || info.Signo() != SIGINT {
		t.Fatalf("DequeueSignal() signo = %d, want %d (lowest)", info.Signo(), SIGINT)
	}
}

func TestPendingSignalsEmpty(t *testing.T) {
	var p PendingSignals
	if _, ok := p.DequeueSignal(^SignalSet(0)); ok {
		t.Fatalf("DequeueSignal on empty PendingSignals succeeded")
	}
}
