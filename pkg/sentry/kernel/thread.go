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

// Thread is a single schedulable thread of execution within a Process's
// thread group. It strongly owns its Process (the user-visible "owns"
// edge); the reverse edge, from the process's thread-group record back
// to this Thread, is held only weakly (with the thread-group leader as
// the one exception — see Process.leader).
type Thread struct {
	tid     Pid
	process *Process
	data    any

	signals threadSignalState
}

// TID returns the thread ID.
func (t *Thread) TID() Pid {
	return t.tid
}

// Process returns the process this thread belongs to.
func (t *Thread) Process() *Process {
	return t.process
}

// ThreadData returns t's caller-attached data, type-asserted to T, and
// whether the assertion succeeded. Mirrors the original's generic
// accessor over an opaque per-thread payload (e.g. a saved register
// file or scheduler handle) without this package needing to know its
// shape.
func ThreadData[T any](t *Thread) (T, bool) {
	v, ok := t.data.(T)
	return v, ok
}

// Exit removes t from its process's thread group, recording code as the
// process's exit code if no exit code has been recorded yet. It reports
// whether this was the last thread in the group, in which case the
// process has become a zombie and its surviving children have been
// reparented to init. It is a precondition violation if t is the last
// thread of the init process.
func (t *Thread) Exit(code int32) bool {
	p := t.process
	p.tgMu.Lock()
	defer p.tgMu.Unlock()

	if p.leader == t {
		p.leader = nil
	}
	if !p.groupExited {
		p.exitCode = code
	}
	p.threads.Remove(t.tid)

	empty := p.threads.IsEmpty()
	if empty {
		if p.isInit() {
			precondition("kernel: cannot exit the last thread of the init process (pid %d)", p.pid)
		}
		p.becomeZombieLocked()
	}
	return empty
}
