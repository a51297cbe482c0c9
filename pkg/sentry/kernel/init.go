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

import "sync/atomic"

// initProcHandle holds the well-known init process, set exactly once by
// NewInitProcess. Every other Process's ancestry terminates here: it is
// both the root of the parent/child tree and the reparenting target for
// any process whose parent has exited.
var initProcHandle atomic.Pointer[Process]

// NewInitProcess constructs the well-known init process: pid is
// caller-chosen (typically drawn from the consumer's own pid
// allocator), with no parent, in a fresh session and process group of
// which it alone is a member. May be called exactly once per process
// lifetime of this package; a second call is a precondition violation.
func NewInitProcess(pid Pid) *Process {
	p := newStandaloneProcess(pid)
	if !initProcHandle.CompareAndSwap(nil, p) {
		precondition("kernel: NewInitProcess called more than once")
	}
	return p
}

// InitProcess returns the process created by NewInitProcess. It is a
// precondition violation to call this before NewInitProcess.
func InitProcess() *Process {
	p := initProcHandle.Load()
	if p == nil {
		precondition("kernel: InitProcess called before NewInitProcess")
	}
	return p
}
