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
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is returned by NewSigno for a signal number
// outside 1..64. SetAction does not validate action flags, and
// WaitTimeout reports no error for signals that are not blocked: it
// drops them from the set it waits on. Callers should match it with errors.Is, not direct comparison, since
// it is always returned wrapped with context via invalidArgumentf.
var ErrInvalidArgument = errors.New("invalid argument")

// invalidArgumentf wraps ErrInvalidArgument with a formatted message,
// preserving errors.Is(err, ErrInvalidArgument) for callers.
func invalidArgumentf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// precondition panics with a formatted message. It marks violations the
// topology and signal model treat as programming bugs rather than
// recoverable errors: freeing a non-zombie process, exiting the init
// process, registering a second init process, or reading the init
// process before it exists. An out-of-range signal number passed to
// NewSigno is reported as ErrInvalidArgument instead.
func precondition(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
