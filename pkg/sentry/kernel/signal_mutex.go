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

// Lock ordering for the signal-path mutexes declared in this file,
// per a thread's check_signals: actionsMutex, then blockedMutex, then
// pendingMutex/stackMutex (which are never both held at once). A
// thread's mutexes are always acquired before its process's: a path
// that needs both never holds a process signal mutex while acquiring
// a thread signal mutex.

// actionsMutex guards a process's SignalActions table.
type actionsMutex struct {
	mu sync.Mutex
}

func (m *actionsMutex) Lock()   { m.mu.Lock() }
func (m *actionsMutex) Unlock() { m.mu.Unlock() }

// pendingMutex guards a PendingSignals queue, at either process or
// thread scope.
type pendingMutex struct {
	mu sync.Mutex
}

func (m *pendingMutex) Lock()   { m.mu.Lock() }
func (m *pendingMutex) Unlock() { m.mu.Unlock() }

// blockedMutex guards a thread's blocked SignalSet.
type blockedMutex struct {
	mu sync.Mutex
}

func (m *blockedMutex) Lock()   { m.mu.Lock() }
func (m *blockedMutex) Unlock() { m.mu.Unlock() }

// stackMutex guards a thread's alternate signal stack.
type stackMutex struct {
	mu sync.Mutex
}

func (m *stackMutex) Lock()   { m.mu.Lock() }
func (m *stackMutex) Unlock() { m.mu.Unlock() }
