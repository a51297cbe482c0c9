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

//go:build loong64

package arch

import (
	"testing"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

func TestTrapFrame64RaConvention(t *testing.T) {
	tf := &TrapFrame64{}
	if tf.UsesPushedReturnAddress() {
		t.Fatalf("loongarch64 should not report a pushed return address convention")
	}
	tf.SetLinkRegister(0xbeef)
	if tf.Regs[regRA] != 0xbeef {
		t.Fatalf("SetLinkRegister did not write $ra, got %#x", tf.Regs[regRA])
	}
}

func TestTrapFrame64CloneRestore(t *testing.T) {
	tf := &TrapFrame64{Era: 0x1000}
	tf.Regs[regSP] = 0x7000
	saved := tf.Clone()

	tf.SetSP(0x8000)
	tf.Restore(saved)
	if tf.SP() != 0x7000 || tf.Era != 0x1000 {
		t.Fatalf("Restore did not reinstate cloned state")
	}
}

func TestSignalContext64RoundTrip(t *testing.T) {
	tf := &TrapFrame64{Era: 0x4000}
	var blocked kernel.SignalSet
	blocked.Add(kernel.SIGHUP)

	ctx := &signalContext64{}
	ctx.Save(tf, blocked)
	if ctx.Blocked() != blocked {
		t.Fatalf("Blocked() = %v, want %v", ctx.Blocked(), blocked)
	}
	if len(ctx.Bytes()) == 0 {
		t.Fatalf("Bytes() returned empty image")
	}

	other := &TrapFrame64{}
	ctx.RestoreInto(other)
	if other.Era != 0x4000 {
		t.Fatalf("RestoreInto() = {era:%#x}, want {era:%#x}", other.Era, 0x4000)
	}
}

func TestSignalTrampolineLoong64Page(t *testing.T) {
	if len(signalTrampolineLoong64) != 4096 {
		t.Fatalf("trampoline page is %d bytes, want 4096", len(signalTrampolineLoong64))
	}
}
