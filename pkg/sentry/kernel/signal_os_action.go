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

// SignalOSAction is the action check_signals asks its caller (the
// scheduler) to take for a signal whose disposition isn't "deliver to
// a handler and keep running" — or, for OSActionHandler, a marker
// that a handler frame was built and the OS need do nothing further.
type SignalOSAction int

const (
	OSActionTerminate SignalOSAction = iota
	OSActionCoreDump
	OSActionStop
	OSActionContinue
	OSActionHandler
)
