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

// Package kernel implements the POSIX-style process, thread, process
// group and session topology, and the signal delivery engine built on
// top of it.
package kernel

// Pid is a process, thread, process group, or session identifier.
// All four kinds of ID use this one integer type, and one value may
// name several objects at once: the init process's pid is also its
// process group and session ID, and a thread-group leader's tid equals
// its process's pid.
type Pid uint32
