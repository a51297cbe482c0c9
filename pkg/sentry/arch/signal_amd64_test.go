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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

func TestTrapFrame64CloneRestore(t *testing.T) {
	tf := &TrapFrame64{Rsp: 0x7000, Rip: 0x1000, Rax: 42}
	saved := tf.Clone()

	tf.SetSP(0x8000)
	tf.SetIP(0x2000)
	if tf.SP() != 0x8000 || tf.Rip != 0x2000 {
		t.Fatalf("mutation through setters did not apply")
	}

	tf.Restore(saved)
	if diff := cmp.Diff(saved.(*TrapFrame64), tf); diff != "" {
		t.Fatalf("Restore did not reinstate the cloned state (-want +got):\n%s", diff)
	}
}

func TestTrapFrame64ArgsAndReturnConvention(t *testing.T) {
	tf := &TrapFrame64{}
	tf.SetArg0(1)
	tf.SetArg1(2)
	tf.SetArg2(3)
	if tf.Rdi != 1 || tf.Rsi != 2 || tf.Rdx != 3 {
		t.Fatalf("args not placed in rdi/rsi/rdx: rdi=%d rsi=%d rdx=%d", tf.Rdi, tf.Rsi, tf.Rdx)
	}
	if !tf.UsesPushedReturnAddress() {
		t.Fatalf("amd64 should report a pushed return address convention")
	}
}

func TestSignalContext64SaveBytes(t *testing.T) {
	tf := &TrapFrame64{Rsp: 0x9000, Rip: 0x4000}
	var blocked kernel.SignalSet
	blocked.Add(kernel.SIGTERM)

	ctx := &signalContext64{}
	ctx.Save(tf, blocked)

	if ctx.Blocked() != blocked {
		t.Fatalf("Blocked() = %v, want %v", ctx.Blocked(), blocked)
	}
	if ctx.MContext.Rsp != 0x9000 || ctx.MContext.Rip != 0x4000 {
		t.Fatalf("mcontext not captured from trap frame")
	}

	b := ctx.Bytes()
	if len(b) == 0 {
		t.Fatalf("Bytes() returned empty image")
	}

	other := &TrapFrame64{}
	ctx.RestoreInto(other)
	if other.Rsp != 0x9000 || other.Rip != 0x4000 {
		t.Fatalf("RestoreInto() = {rsp:%#x rip:%#x}, want {rsp:%#x rip:%#x}", other.Rsp, other.Rip, 0x9000, 0x4000)
	}
}

func TestSignalTrampolineAMD64Page(t *testing.T) {
	if len(signalTrampolineAMD64) != 4096 {
		t.Fatalf("trampoline page is %d bytes, want 4096", len(signalTrampolineAMD64))
	}
	if signalTrampolineAMD64[0] != 0x48 || signalTrampolineAMD64[len(signalTrampolineAMD64)-1] != 0 {
		t.Fatalf("trampoline page prologue/padding mismatch")
	}
}
