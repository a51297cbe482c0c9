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
	"sync/atomic"
	"weak"

	"github.com/axiom-os/posixcore/pkg/weakmap"
)

type processState int32

const (
	processAlive processState = iota
	processZombie
	processFreed
)

// Process is a POSIX process: a thread group, a position in the
// parent/child tree, and membership in exactly one ProcessGroup (and,
// transitively, one Session) at a time.
//
// Ownership follows the graph documented at the package level: a
// Process strongly owns its current ProcessGroup and its children; its
// parent and the threads in its thread group are held only weakly, so
// neither a completed parent nor an unreferenced thread keeps it alive
// past its natural lifetime. The sole exception is the thread-group
// leader (see leader below), which the Process keeps alive itself so
// that a freshly built process doesn't require an external scheduler
// to hold its main thread just to stay non-zombie.
type Process struct {
	pid Pid

	mu       processMutex
	group    *ProcessGroup // strong
	parent   weak.Pointer[Process]
	children map[Pid]*Process // strong

	tgMu        threadGroupMutex
	leader      *Thread // strong; nil once the leader has exited
	threads     *weakmap.WeakMap[Pid, Thread]
	exitCode    int32
	groupExited bool

	state atomic.Int32 // processState

	signals processSignalState
}

// PID returns the process ID, which also names this process's thread
// group.
func (p *Process) PID() Pid {
	return p.pid
}

// Group returns the ProcessGroup this process currently belongs to.
func (p *Process) Group() *ProcessGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.group
}

// Parent returns the parent process, or nil if p is the init process or
// its parent has already been freed.
func (p *Process) Parent() *Process {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parent.Value()
}

// Children returns the live children of p, in no particular order.
func (p *Process) Children() []*Process {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Process, 0, len(p.children))
	for _, c := range p.children {
		out = append(out, c)
	}
	return out
}

// IsZombie reports whether p's thread group is empty and p has not yet
// been freed.
func (p *Process) IsZombie() bool {
	return processState(p.state.Load()) == processZombie
}

// IsFreed reports whether p has been reaped via Free.
func (p *Process) IsFreed() bool {
	return processState(p.state.Load()) == processFreed
}

// ExitCode returns the exit code recorded by the first thread to exit
// (or by Exit, for a whole-group kill), and whether one has been
// recorded yet.
func (p *Process) ExitCode() (int32, bool) {
	p.tgMu.Lock()
	defer p.tgMu.Unlock()
	return p.exitCode, p.groupExited || p.threads.IsEmpty()
}

func (p *Process) isInit() bool {
	return p == InitProcess()
}

// newStandaloneProcess builds a process with no parent, in a fresh
// session and process group of which it is the sole member, with a
// single thread-group leader thread of tid == pid. Used only to build
// the init process.
func newStandaloneProcess(pid Pid) *Process {
	session := newSession(pid)
	group := newProcessGroup(pid, session)
	p := &Process{
		pid:      pid,
		group:    group,
		children: make(map[Pid]*Process),
		threads:  weakmap.New[Pid, Thread](),
	}
	p.signals.init(p)
	group.addMember(p)
	ThreadBuilder{tid: pid, process: p}.Build()
	return p
}

// Fork begins constructing a new child process, inheriting p's current
// process group and session. The returned ProcessBuilder must be
// finalized with Build to link the child into the topology and give it
// a thread-group leader.
func (p *Process) Fork(childPid Pid) *ProcessBuilder {
	return &ProcessBuilder{
		pid:    childPid,
		parent: p,
		group:  p.Group(),
	}
}

// Exit terminates every thread in p's thread group with the given exit
// code, as if p had called exit_group(2): the thread group becomes
// empty unconditionally, p transitions to zombie, and its surviving
// children are reparented to the init process. It is a precondition
// violation to call Exit on the init process.
func (p *Process) Exit(code int32) {
	p.tgMu.Lock()
	defer p.tgMu.Unlock()
	if p.IsZombie() || p.IsFreed() {
		return
	}
	if p.isInit() {
		precondition("kernel: cannot exit the init process (pid %d)", p.pid)
	}
	p.groupExited = true
	p.exitCode = code
	p.leader = nil
	for _, t := range p.threads.Values() {
		p.threads.Remove(t.tid)
	}
	p.becomeZombieLocked()
}

// becomeZombieLocked transitions p to zombie and reparents its
// surviving children to init. Callers must hold p.tgMu.
func (p *Process) becomeZombieLocked() {
	p.state.Store(int32(processZombie))
	p.reparentChildren()
}

// reparentChildren moves every surviving child of p to the init
// process. Called once, as part of p's zombie transition. The caller
// must hold p.tgMu; this additionally acquires p.mu and then, one at a
// time, each child's own mu — never the reverse order.
func (p *Process) reparentChildren() {
	if p.isInit() {
		return
	}
	init := InitProcess()

	p.mu.Lock()
	orphans := make([]*Process, 0, len(p.children))
	for pid, c := range p.children {
		orphans = append(orphans, c)
		delete(p.children, pid)
	}
	p.mu.Unlock()

	for _, c := range orphans {
		c.mu.Lock()
		c.parent = weak.Make(init)
		c.mu.Unlock()

		init.mu.Lock()
		init.children[c.pid] = c
		init.mu.Unlock()
	}
}

// Free reaps a zombie process: unlinks it from its parent's child set
// and marks it freed. It is a precondition violation to free a process
// that is not currently a zombie.
func (p *Process) Free() {
	if !p.IsZombie() {
		precondition("kernel: Free called on non-zombie process %d", p.pid)
	}
	if parent := p.Parent(); parent != nil {
		parent.mu.Lock()
		delete(parent.children, p.pid)
		parent.mu.Unlock()
	}
	p.state.Store(int32(processFreed))
}
