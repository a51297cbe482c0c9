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

import "encoding/binary"

// sigInfoSize matches the Linux siginfo_t size (128 bytes on all
// architectures this package supports).
const sigInfoSize = 128

// Offsets of the fields all architectures agree on at the front of
// siginfo_t: si_signo, si_errno, si_code, each a 32-bit int.
const (
	sigInfoSignoOff = 0
	sigInfoErrnoOff = 4
	sigInfoCodeOff  = 8
)

// SignalInfo is an ABI-compatible image of a Linux siginfo_t. This
// package only names the leading si_signo/si_errno/si_code fields;
// the remainder of the union is preserved opaquely so a caller that
// needs to fill in signal-specific fields (si_pid, si_addr, ...) may
// do so by writing directly into Raw at the appropriate offset.
type SignalInfo struct {
	Raw [sigInfoSize]byte
}

// NewSignalInfo builds a SignalInfo with si_signo and si_code set; all
// other fields are zero.
func NewSignalInfo(signo Signo, code int32) SignalInfo {
	var si SignalInfo
	si.SetSigno(signo)
	si.SetCode(code)
	return si
}

// Signo returns si_signo.
func (si *SignalInfo) Signo() Signo {
	return Signo(binary.LittleEndian.Uint32(si.Raw[sigInfoSignoOff:]))
}

// SetSigno sets si_signo.
func (si *SignalInfo) SetSigno(signo Signo) {
	binary.LittleEndian.PutUint32(si.Raw[sigInfoSignoOff:], uint32(signo))
}

// Code returns si_code.
func (si *SignalInfo) Code() int32 {
	return int32(binary.LittleEndian.Uint32(si.Raw[sigInfoCodeOff:]))
}

// SetCode sets si_code.
func (si *SignalInfo) SetCode(code int32) {
	binary.LittleEndian.PutUint32(si.Raw[sigInfoCodeOff:], uint32(code))
}

// Errno returns si_errno.
func (si *SignalInfo) Errno() int32 {
	return int32(binary.LittleEndian.Uint32(si.Raw[sigInfoErrnoOff:]))
}

// SetErrno sets si_errno.
func (si *SignalInfo) SetErrno(errno int32) {
	binary.LittleEndian.PutUint32(si.Raw[sigInfoErrnoOff:], uint32(errno))
}
