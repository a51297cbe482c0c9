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

// Session is the job-control grouping that owns a set of ProcessGroups
// sharing a controlling terminal. A Session owns nothing strongly: it
// stays alive only as long as some ProcessGroup within it does, via
// that group's strong back-reference, and is collected once its last
// group is.
type Session struct {
	sid Pid

	mu     sessionMutex
	groups *weakmap.WeakMap[Pid, ProcessGroup]
}

func newSession(sid Pid) *Session {
	return &Session{
		sid:    sid,
		groups: weakmap.New[Pid, ProcessGroup](),
	}
}

// SID returns the session ID.
func (s *Session) SID() Pid {
	return s.sid
}

// ProcessGroups returns the ProcessGroups currently belonging to this
// session, in PGID order.
func (s *Session) ProcessGroups() []*ProcessGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.Values()
}

// Contains reports whether pgid names a live ProcessGroup in this
// session.
func (s *Session) Contains(pgid Pid) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.Contains(pgid)
}

func (s *Session) addGroup(g *ProcessGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups.Insert(g.pgid, g)
}
