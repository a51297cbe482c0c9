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

import "golang.org/x/sys/unix"

// Signo is a signal number in 1..64. Values 1..31 are the standard
// signals; 32..64 are realtime signals (SIGRTMIN..SIGRTMAX).
type Signo uint8

// The standard signals, numbered exactly as unix.SIG* on linux/amd64 —
// cross-checked against golang.org/x/sys/unix rather than re-declared
// by hand so these are provably the host's numbers, not guesses.
const (
	SIGHUP    Signo = unix.SIGHUP
	SIGINT    Signo = unix.SIGINT
	SIGQUIT   Signo = unix.SIGQUIT
	SIGILL    Signo = unix.SIGILL
	SIGTRAP   Signo = unix.SIGTRAP
	SIGABRT   Signo = unix.SIGABRT
	SIGBUS    Signo = unix.SIGBUS
	SIGFPE    Signo = unix.SIGFPE
	SIGKILL   Signo = unix.SIGKILL
	SIGUSR1   Signo = unix.SIGUSR1
	SIGSEGV   Signo = unix.SIGSEGV
	SIGUSR2   Signo = unix.SIGUSR2
	SIGPIPE   Signo = unix.SIGPIPE
	SIGALRM   Signo = unix.SIGALRM
	SIGTERM   Signo = unix.SIGTERM
	SIGSTKFLT Signo = unix.SIGSTKFLT
	SIGCHLD   Signo = unix.SIGCHLD
	SIGCONT   Signo = unix.SIGCONT
	SIGSTOP   Signo = unix.SIGSTOP
	SIGTSTP   Signo = unix.SIGTSTP
	SIGTTIN   Signo = unix.SIGTTIN
	SIGTTOU   Signo = unix.SIGTTOU
	SIGURG    Signo = unix.SIGURG
	SIGXCPU   Signo = unix.SIGXCPU
	SIGXFSZ   Signo = unix.SIGXFSZ
	SIGVTALRM Signo = unix.SIGVTALRM
	SIGPROF   Signo = unix.SIGPROF
	SIGWINCH  Signo = unix.SIGWINCH
	SIGIO     Signo = unix.SIGIO
	SIGPWR    Signo = unix.SIGPWR
	SIGSYS    Signo = unix.SIGSYS
)

// SIGRTMIN is the lowest realtime signal number.
const SIGRTMIN Signo = 32

// MaxSigno is the highest valid signal number.
const MaxSigno Signo = 64

// NewSigno validates n as a signal number, returning ErrInvalidArgument
// if it falls outside 1..64.
func NewSigno(n int) (Signo, error) {
	if n < 1 || n > int(MaxSigno) {
		return 0, invalidArgumentf("kernel: signal number %d out of range 1..64", n)
	}
	return Signo(n), nil
}

// IsRealtime reports whether s is a realtime signal (SIGRTMIN..SIGRTMAX).
func (s Signo) IsRealtime() bool {
	return s >= SIGRTMIN
}

// DefaultAction is the action the kernel takes for a signal whose
// disposition is SignalDispositionDefault.
type DefaultAction int

const (
	ActionTerminate DefaultAction = iota
	ActionIgnore
	ActionCoreDump
	ActionStop
	ActionContinue
)

// defaultActions is indexed by signo-1. Every standard signal is listed
// below; the realtime entries are left unset here (reading as the zero
// value, ActionTerminate) and are set to ActionIgnore by the init
// function that follows.
var defaultActions = [MaxSigno]DefaultAction{
	SIGHUP - 1:    ActionTerminate,
	SIGINT - 1:    ActionTerminate,
	SIGQUIT - 1:   ActionCoreDump,
	SIGILL - 1:    ActionCoreDump,
	SIGTRAP - 1:   ActionCoreDump,
	SIGABRT - 1:   ActionCoreDump,
	SIGBUS - 1:    ActionCoreDump,
	SIGFPE - 1:    ActionCoreDump,
	SIGKILL - 1:   ActionTerminate,
	SIGUSR1 - 1:   ActionTerminate,
	SIGSEGV - 1:   ActionCoreDump,
	SIGUSR2 - 1:   ActionTerminate,
	SIGPIPE - 1:   ActionTerminate,
	SIGALRM - 1:   ActionTerminate,
	SIGTERM - 1:   ActionTerminate,
	SIGSTKFLT - 1: ActionTerminate,
	SIGCHLD - 1:   ActionIgnore,
	SIGCONT - 1:   ActionContinue,
	SIGSTOP - 1:   ActionStop,
	SIGTSTP - 1:   ActionStop,
	SIGTTIN - 1:   ActionStop,
	SIGTTOU - 1:   ActionStop,
	SIGURG - 1:    ActionIgnore,
	SIGXCPU - 1:   ActionCoreDump,
	SIGXFSZ - 1:   ActionCoreDump,
	SIGVTALRM - 1: ActionTerminate,
	SIGPROF - 1:   ActionTerminate,
	SIGWINCH - 1:  ActionIgnore,
	SIGIO - 1:     ActionTerminate,
	SIGPWR - 1:    ActionTerminate,
	SIGSYS - 1:    ActionCoreDump,
	// Realtime signals (SIGRTMIN..MaxSigno) are set to Ignore by init
	// below.
}

func init() {
	for i := range defaultActions {
		s := Signo(i + 1)
		if s.IsRealtime() {
			defaultActions[i] = ActionIgnore
		}
	}
}

// DefaultAction returns the action taken for s when its disposition is
// default.
func (s Signo) DefaultAction() DefaultAction {
	return defaultActions[s-1]
}
