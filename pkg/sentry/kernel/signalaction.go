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

// SignalActionFlags mirrors the SA_* flags of struct sigaction.
type SignalActionFlags uint64

const (
	SignalActionSiginfo   SignalActionFlags = 0x4
	SignalActionOnStack   SignalActionFlags = 0x8000000
	SignalActionRestart   SignalActionFlags = 0x10000000
	SignalActionNoDefer   SignalActionFlags = 0x40000000
	SignalActionResetHand SignalActionFlags = 0x80000000
	// SignalActionRestorer is the SA_RESTORER bit: it marks that
	// SignalAction.Restorer holds the address to return to from the
	// handler, in place of the process's default restorer.
	SignalActionRestorer SignalActionFlags = 0x4000000
)

// Has reports whether all bits of other are set in f.
func (f SignalActionFlags) Has(other SignalActionFlags) bool {
	return f&other == other
}

// SignalDisposition is the disposition of a signal: default action,
// explicitly ignored, or delivered to a handler.
type SignalDisposition int

const (
	SignalDispositionDefault SignalDisposition = iota
	SignalDispositionIgnore
	SignalDispositionHandler
)

// SignalAction corresponds to struct sigaction.
type SignalAction struct {
	Flags       SignalActionFlags
	Mask        SignalSet
	Disposition SignalDisposition
	// Handler is the handler address when Disposition ==
	// SignalDispositionHandler; meaningless otherwise.
	Handler uintptr
	// Restorer is a non-default restorer address, present iff Flags
	// has SignalActionRestorer set.
	Restorer uintptr
}

// SignalActions is the per-signal disposition table shared by every
// thread in a process (POSIX requires sigaction(2) changes be visible
// process-wide).
type SignalActions [MaxSigno]SignalAction

// Get returns the action registered for signo.
func (a *SignalActions) Get(signo Signo) SignalAction {
	return a[signo-1]
}

// Set installs action for signo.
func (a *SignalActions) Set(signo Signo, action SignalAction) {
	a[signo-1] = action
}
