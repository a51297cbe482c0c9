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
	"weak"

	"github.com/axiom-os/posixcore/pkg/weakmap"
)

// ProcessBuilder stages the construction of a child process obtained
// via Process.Fork. It exists so a caller can in principle extend the
// staged fields (a real fork implementation would stage credentials,
// namespaces, etc. here) before committing with Build.
type ProcessBuilder struct {
	pid    Pid
	parent *Process
	group  *ProcessGroup
}

// Build finalizes the child process: links it into its parent's
// children set, registers it as a member of the inherited process
// group, and gives it a single thread-group leader thread of
// tid == pid.
func (b *ProcessBuilder) Build() *Process {
	p := &Process{
		pid:      b.pid,
		group:    b.group,
		children: make(map[Pid]*Process),
		threads:  weakmap.New[Pid, Thread](),
	}
	p.parent = weak.Make(b.parent)
	p.signals.init(p)

	b.parent.mu.Lock()
	b.parent.children[b.pid] = p
	b.parent.mu.Unlock()

	b.group.addMember(p)

	ThreadBuilder{tid: b.pid, process: p}.Build()
	return p
}
