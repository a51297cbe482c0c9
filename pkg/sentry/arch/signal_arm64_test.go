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
	"testing"

	"github.com/axiom-os/posixcore/pkg/sentry/kernel"
)

func TestTrapFrame64LinkRegisterConvention(t *testing.T) {
	tf := &TrapFrame64{}
	if tf.UsesPushedReturnAddress() {
		t.Fatalf("arm64 should not report a pushed return address convention")
	}
	tf.SetLinkRegister(0xcafe)
	if tf.R[30] != 0xcafe {
		t.Fatalf("SetLinkRegister did not write x30, got %#x", tf.R[30])
	}
}

func TestTrapFrame64CloneRestore(t *testing.T) {
	tf := &TrapFrame64{Usp: 0x7000, Elr: 0x1000}
	tf.R[0] = 99
	saved := tf.Clone()

	tf.SetSP(0x8000)
	tf.R[0] = 0

	tf.Restore(saved)
	if tf.SP() != 0x7000 || tf.R[0] != 99 {
		t.Fatalf("Restore did not reinstate cloned register state")
	}
}

func TestSignalContext64RoundTrip(t *testing.T) {
	tf := &TrapFrame64{Usp: 0x9000, Elr: 0x4000}
	var blocked kernel.SignalSet
	blocked.Add(kernel.SIGUSR1)

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
	if other.Usp != 0x9000 || other.Elr != 0x4000 {
		t.Fatalf("RestoreInto() = {usp:%#x elr:%#x}, want {usp:%#x elr:%#x}", other.Usp, other.Elr, 0x9000, 0x4000)
	}
}

func TestSignalTrampolineARM64Page(t *testing.T) {
	if len(signalTrampolineARM64) != 4096 {
		t.Fatalf("trampoline page is %d bytes, want 4096", len(signalTrampolineARM64))
	}
}
