// Copyright 2026 The Launchman Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package launchman

import (
	"errors"
	"os"
	"syscall"
)

type signaler interface {
	Signal(os.Signal) error
	Kill() error
}

// signalOrKill delivers sig to p.  Where the platform cannot deliver it
// (Windows supports only Kill), p is killed outright instead of being left
// to run out the grace period.
func signalOrKill(p signaler, sig syscall.Signal) error {
	if sig == syscall.SIGKILL {
		return p.Kill()
	}
	e := p.Signal(sig)
	if e == nil || errors.Is(e, os.ErrProcessDone) {
		return e
	}
	return p.Kill()
}
