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

import "sync"

// Lock ordering for the topology mutexes declared in this file:
//
//   - A Process's mu may be acquired while its own tgMu is held, but
//     never the reverse. reparentChildren relies on this: it runs with
//     tgMu already held (from a zombie transition) and then takes mu,
//     both on the exiting process and, one at a time, on each orphaned
//     child.
//   - groupMutex and sessionMutex are always leaves: nothing is
//     acquired while either is held.

// processMutex guards a Process's group, parent and children fields —
// the parts of the topology a Fork, Free, or reparent walks.
type processMutex struct {
	mu sync.Mutex
}

func (m *processMutex) Lock()   { m.mu.Lock() }
func (m *processMutex) Unlock() { m.mu.Unlock() }

// threadGroupMutex guards a Process's thread-group record: its member
// threads, exit code, and group-exited flag.
type threadGroupMutex struct {
	mu sync.Mutex
}

func (m *threadGroupMutex) Lock()   { m.mu.Lock() }
func (m *threadGroupMutex) Unlock() { m.mu.Unlock() }

// groupMutex guards a ProcessGroup's member map.
type groupMutex struct {
	mu sync.Mutex
}

func (m *groupMutex) Lock()   { m.mu.Lock() }
func (m *groupMutex) Unlock() { m.mu.Unlock() }

// sessionMutex guards a Session's process-group map. Sessions are read
// far more often than written (group membership changes only on fork,
// setsid, and exit), so this is an RWMutex rather than a plain Mutex.
type sessionMutex struct {
	mu sync.RWMutex
}

func (m *sessionMutex) Lock()    { m.mu.Lock() }
func (m *sessionMutex) Unlock()  { m.mu.Unlock() }
func (m *sessionMutex) RLock()   { m.mu.RLock() }
func (m *sessionMutex) RUnlock() { m.mu.RUnlock() }
