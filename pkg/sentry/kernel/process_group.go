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

import "github.com/axiom-os/posixcore/pkg/weakmap"

// ProcessGroup is a job-control grouping of Processes within a Session.
// It strongly owns its Session (so a session with at least one live
// group stays alive) and weakly tracks its member Processes (so a
// process leaving the group, or exiting, doesn't need the group's
// cooperation to be collected).
type ProcessGroup struct {
	pgid Pid

	session *Session // strong

	mu      groupMutex
	members *weakmap.WeakMap[Pid, Process]
}

func newProcessGroup(pgid Pid, session *Session) *ProcessGroup {
	g := &ProcessGroup{
		pgid:    pgid,
		session: session,
		members: weakmap.New[Pid, Process](),
	}
	session.addGroup(g)
	return g
}

// PGID returns the process group ID.
func (g *ProcessGroup) PGID() Pid {
	return g.pgid
}

// Session returns the Session this group belongs to.
func (g *ProcessGroup) Session() *Session {
	return g.session
}

// Members returns the processes currently in this group, in PID order.
func (g *ProcessGroup) Members() []*Process {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members.Values()
}

// Contains reports whether pid names a live member of this group.
func (g *ProcessGroup) Contains(pid Pid) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members.Contains(pid)
}

func (g *ProcessGroup) addMember(p *Process) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members.Insert(p.pid, p)
}

func (g *ProcessGroup) removeMember(pid Pid) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members.Remove(pid)
}
