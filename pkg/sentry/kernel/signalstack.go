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

// ssDisable mirrors Linux's SS_DISABLE sigaltstack flag.
const ssDisable uint32 = 2

// SignalStack is an ABI-compatible image of a Linux stack_t
// (sigaltstack). The zero value is not usable; use NewDisabledSignalStack
// or set Flags explicitly.
type SignalStack struct {
	SP    uintptr
	Flags uint32
	Size  uintptr
}

// NewDisabledSignalStack returns a SignalStack with SS_DISABLE set, the
// default state of a thread's alternate signal stack before sigaltstack(2)
// is ever called.
func NewDisabledSignalStack() SignalStack {
	return SignalStack{Flags: ssDisable}
}

// Disabled reports whether the alternate signal stack is disabled.
func (s SignalStack) Disabled() bool {
	return s.Flags&ssDisable != 0
}
