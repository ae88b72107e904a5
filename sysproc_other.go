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

//go:build !unix

package launchman

import (
	"os"
	"syscall"
)

// Without process groups only the leader can be reached.  Where SIGTERM
// cannot be delivered, as on Windows, a stop kills the leader at once.
func groupAttr() *syscall.SysProcAttr {
	return nil
}

func signalGroup(pgid int, sig syscall.Signal) error {
	p, e := os.FindProcess(pgid)
	if e != nil {
		return e
	}
	return signalOrKill(p, sig)
}
