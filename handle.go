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
	"os/exec"
)

// handle is the supervisor's record of a process it launched.  The
// process leads its own group, so pgid equals its pid.  done is closed by
// reap once the process has exited and been waited for; err is only valid
// after that.
type handle struct {
	cmd  *exec.Cmd
	pgid int
	done chan struct{}
	err  error
}

func newHandle(cmd *exec.Cmd) *handle {
	return &handle{
		cmd:  cmd,
		pgid: cmd.Process.Pid,
		done: make(chan struct{}),
	}
}

func (h *handle) reap() {
	h.err = h.cmd.Wait()
	close(h.done)
}

// exited polls without blocking.
func (h *handle) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
