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

// ThreadBuilder stages the construction of a new thread within a
// process's thread group, mirroring the staged data()/build() shape of
// the process/thread construction API this package is modeled on.
type ThreadBuilder struct {
	tid     Pid
	process *Process
	data    any
}

// NewThread begins constructing a thread with tid in process p's thread
// group. Most callers other than process/thread-group bootstrap should
// use a tid distinct from p.PID(): tid == p.PID() is reserved for the
// thread-group leader created implicitly by Process.Fork/newStandaloneProcess.
func NewThread(p *Process, tid Pid) ThreadBuilder {
	return ThreadBuilder{tid: tid, process: p}
}

// Data attaches an opaque payload to the thread under construction,
// retrievable later with ThreadData.
func (b ThreadBuilder) Data(data any) ThreadBuilder {
	b.data = data
	return b
}

// Build finalizes the thread: registers it (weakly) in its process's
// thread group, promoting it to thread-group leader if the group
// currently has none, and initializes its per-thread signal state
// (empty pending set, fully-unblocked mask, disabled alternate stack).
func (b ThreadBuilder) Build() *Thread {
	t := &Thread{tid: b.tid, process: b.process, data: b.data}
	t.signals.init(t)

	p := b.process
	p.tgMu.Lock()
	defer p.tgMu.Unlock()
	p.threads.Insert(b.tid, t)
	if p.leader == nil {
		p.leader = t
	}
	return t
}
