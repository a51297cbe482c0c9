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
	"testing"
	"time"
)

// fakeTrapFrame is a minimal TrapFrame double used to exercise signal
// delivery without any real architecture backing.
type fakeTrapFrame struct {
	sp, ip, arg0, arg1, arg2, lr uintptr
}

func (f *fakeTrapFrame) SP() uintptr                     { return f.sp }
func (f *fakeTrapFrame) SetSP(sp uintptr)                { f.sp = sp }
func (f *fakeTrapFrame) SetIP(ip uintptr)                { f.ip = ip }
func (f *fakeTrapFrame) SetArg0(v uintptr)               { f.arg0 = v }
func (f *fakeTrapFrame) SetArg1(v uintptr)               { f.arg1 = v }
func (f *fakeTrapFrame) SetArg2(v uintptr)               { f.arg2 = v }
func (f *fakeTrapFrame) UsesPushedReturnAddress() bool   { return false }
func (f *fakeTrapFrame) SetLinkRegister(addr uintptr)    { f.lr = addr }
func (f *fakeTrapFrame) Clone() TrapFrame {
	cp := *f
	return &cp
}
func (f *fakeTrapFrame) Restore(saved TrapFrame) {
	*f = *saved.(*fakeTrapFrame)
}

// fakeSignalContext is a minimal SignalContext double.
type fakeSignalContext struct {
	blocked SignalSet
}

func (c *fakeSignalContext) Save(tf TrapFrame, restoreBlocked SignalSet) { c.blocked = restoreBlocked }
func (c *fakeSignalContext) Blocked() SignalSet                         { return c.blocked }
func (c *fakeSignalContext) Bytes() []byte                              { return make([]byte, 16) }

// fakeStackWriter is a minimal SignalStackWriter double: it just
// tracks how far the (simulated) stack has grown.
type fakeStackWriter struct{}

func (fakeStackWriter) Push(sp uintptr, data []byte) (uintptr, error) {
	return sp - uintptr(len(data)), nil
}

func init() {
	RegisterSignalContextFactory(func() SignalContext { return &fakeSignalContext{} })
}

func TestProcessSendAndDequeueSignal(t *testing.T) {
	init := newTestInit(t, 1)
	init.SendSignal(NewSignalInfo(SIGTERM, 0))

	if !init.PendingSignals().Has(SIGTERM) {
		t.Fatalf("SIGTERM not pending after SendSignal")
	}
	info, ok := init.dequeueSignal(^SignalSet(0))
	if !ok || info.Signo() != SIGTERM {
		t.Fatalf("dequeueSignal() = (%v, %v), want (SIGTERM, true)", info.Signo(), ok)
	}
}

func TestCheckSignalsDefaultIgnoreConsumesSilently(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}

	init.SendSignal(NewSignalInfo(SIGCHLD, 0)) // default action: Ignore
	tf := &fakeTrapFrame{sp: 0x1000}
	_, _, ok := th.CheckSignals(tf, fakeStackWriter{}, nil)
	if ok {
		t.Fatalf("CheckSignals reported an action for a default-ignored signal")
	}
	if init.PendingSignals().Has(SIGCHLD) {
		t.Fatalf("SIGCHLD still pending after being consumed as ignored")
	}
}

func TestCheckSignalsDefaultTerminate(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}

	init.SendSignal(NewSignalInfo(SIGTERM, 0))
	tf := &fakeTrapFrame{sp: 0x1000}
	sig, action, ok := th.CheckSignals(tf, fakeStackWriter{}, nil)
	if !ok || sig.Signo() != SIGTERM || action != OSActionTerminate {
		t.Fatalf("CheckSignals() = (%v, %v, %v), want (SIGTERM, OSActionTerminate, true)", sig.Signo(), action, ok)
	}
}

func TestCheckSignalsHandlerBuildsFrameAndRestore(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}

	const handlerAddr = uintptr(0xdead0000)
	init.SetAction(SIGUSR1, SignalAction{
		Disposition: SignalDispositionHandler,
		Handler:     handlerAddr,
	})
	init.SendSignal(NewSignalInfo(SIGUSR1, 0))

	tf := &fakeTrapFrame{sp: 0x2000, ip: 0x1000}
	origSP, origIP := tf.sp, tf.ip

	sig, action, ok := th.CheckSignals(tf, fakeStackWriter{}, nil)
	if !ok || sig.Signo() != SIGUSR1 || action != OSActionHandler {
		t.Fatalf("CheckSignals() = (%v, %v, %v), want (SIGUSR1, OSActionHandler, true)", sig.Signo(), action, ok)
	}
	if tf.ip != handlerAddr {
		t.Fatalf("tf.ip = %#x, want handler address %#x", tf.ip, handlerAddr)
	}
	if tf.sp >= origSP {
		t.Fatalf("tf.sp = %#x did not move below original sp %#x", tf.sp, origSP)
	}
	if tf.arg0 != uintptr(SIGUSR1) {
		t.Fatalf("tf.arg0 = %d, want %d", tf.arg0, SIGUSR1)
	}
	if !th.Blocked().Has(SIGUSR1) {
		t.Fatalf("SIGUSR1 not added to blocked set on handler entry (no SA_NODEFER)")
	}

	if ok := th.Restore(tf); !ok {
		t.Fatalf("Restore() reported no frame to restore")
	}
	if tf.sp != origSP || tf.ip != origIP {
		t.Fatalf("Restore() did not reinstate original trap frame: sp=%#x ip=%#x, want sp=%#x ip=%#x", tf.sp, tf.ip, origSP, origIP)
	}
	if th.Blocked().Has(SIGUSR1) {
		t.Fatalf("SIGUSR1 still blocked after Restore")
	}
}

func TestCheckSignalsHandlerOnStackUsesAltStackSP(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}

	const altSP = uintptr(0x5000)
	th.WithStack(func(stack *SignalStack) {
		*stack = SignalStack{SP: altSP, Size: 0x1000}
	})

	init.SetAction(SIGUSR1, SignalAction{
		Disposition: SignalDispositionHandler,
		Handler:     0x1234,
		Flags:       SignalActionOnStack,
	})
	init.SendSignal(NewSignalInfo(SIGUSR1, 0))

	tf := &fakeTrapFrame{sp: 0x2000, ip: 0x1000}
	if _, _, ok := th.CheckSignals(tf, fakeStackWriter{}, nil); !ok {
		t.Fatalf("CheckSignals did not deliver SIGUSR1")
	}
	if tf.sp > altSP {
		t.Fatalf("tf.sp = %#x, want at or below the alternate stack's sp %#x", tf.sp, altSP)
	}
}

func TestCheckSignalsHandlerResetHandClearsDisposition(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}

	init.SetAction(SIGUSR2, SignalAction{
		Disposition: SignalDispositionHandler,
		Handler:     0x1234,
		Flags:       SignalActionResetHand,
	})
	init.SendSignal(NewSignalInfo(SIGUSR2, 0))
	tf := &fakeTrapFrame{sp: 0x2000}
	if _, _, ok := th.CheckSignals(tf, fakeStackWriter{}, nil); !ok {
		t.Fatalf("CheckSignals did not deliver SIGUSR2")
	}

	if got := init.Actions().Get(SIGUSR2); got.Disposition != SignalDispositionDefault {
		t.Fatalf("disposition after SA_RESETHAND = %v, want Default", got.Disposition)
	}
}

func TestBlockedSignalNotDelivered(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}

	th.WithBlocked(func(blocked *SignalSet) { blocked.Add(SIGTERM) })
	init.SendSignal(NewSignalInfo(SIGTERM, 0))

	tf := &fakeTrapFrame{sp: 0x1000}
	if _, _, ok := th.CheckSignals(tf, fakeStackWriter{}, nil); ok {
		t.Fatalf("CheckSignals delivered a blocked signal")
	}
	if !init.PendingSignals().Has(SIGTERM) {
		t.Fatalf("blocked SIGTERM should remain pending, not be consumed")
	}

	th.WithBlocked(func(blocked *SignalSet) { blocked.Remove(SIGTERM) })
	sig, action, ok := th.CheckSignals(tf, fakeStackWriter{}, nil)
	if !ok || sig.Signo() != SIGTERM || action != OSActionTerminate {
		t.Fatalf("CheckSignals() after unblocking = (%v, %v, %v), want (SIGTERM, OSActionTerminate, true)", sig.Signo(), action, ok)
	}
}

func TestWaitTimeoutImmediateWhenPending(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}
	th.WithBlocked(func(blocked *SignalSet) { blocked.Add(SIGTERM) })
	init.SendSignal(NewSignalInfo(SIGTERM, 0))

	timeout := 5 * time.Second
	sig, ok := th.WaitTimeout(func() SignalSet { var s SignalSet; s.Add(SIGTERM); return s }(), &timeout)
	if !ok || sig.Signo() != SIGTERM {
		t.Fatalf("WaitTimeout() = (%v, %v), want (SIGTERM, true) immediately", sig.Signo(), ok)
	}
}

func TestWaitTimeoutExpires(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}
	th.WithBlocked(func(blocked *SignalSet) { blocked.Add(SIGTERM) })

	var set SignalSet
	set.Add(SIGTERM)
	timeout := 30 * time.Millisecond
	start := time.Now()
	_, ok := th.WaitTimeout(set, &timeout)
	if ok {
		t.Fatalf("WaitTimeout() succeeded with nothing ever sent")
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("WaitTimeout() returned after %v, want at least %v", elapsed, timeout)
	}
}

func TestWaitTimeoutWokenBySend(t *testing.T) {
	init := newTestInit(t, 1)
	var th *Thread
	for _, c := range init.threads.Values() {
		th = c
	}
	th.WithBlocked(func(blocked *SignalSet) { blocked.Add(SIGTERM) })

	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		init.SendSignal(NewSignalInfo(SIGTERM, 0))
		close(done)
	}()

	var set SignalSet
	set.Add(SIGTERM)
	sig, ok := th.WaitTimeout(set, nil)
	<-done
	if !ok || sig.Signo() != SIGTERM {
		t.Fatalf("WaitTimeout() = (%v, %v), want (SIGTERM, true)", sig.Signo(), ok)
	}
}
