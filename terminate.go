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
	"context"
	"os"
	"syscall"
	"time"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// Terminate stops the app and reports whether anything was done.
//
// A tracked process group is sent SIGTERM, given the grace period to exit,
// and then sent SIGKILL; either way it is dropped from the table.
// Otherwise, whatever is listening on the port is sent SIGTERM, which is
// how apps started before this daemon are stopped.  A command line app
// that is not tracked cannot be found, and nothing is done.
func (s *Supervisor) Terminate(appID string, port int) bool {
	s.lock()
	h := s.handles[appID]
	s.unlock()

	if h != nil {
		s.stopTracked(appID, h)
		s.metrics.Stop(appID, "tracked")
		return true
	}
	if port > 0 && s.killByPort(port) {
		s.metrics.Stop(appID, "port")
		return true
	}
	s.metrics.Stop(appID, "none")
	return false
}

func (s *Supervisor) stopTracked(id string, h *handle) {
	start := time.Now()
	s.logf("Stopping %s (pgid %d)", id, h.pgid)

	// Failures here mostly mean the group is already gone.
	if e := signalGroup(h.pgid, syscall.SIGTERM); e != nil && !h.exited() {
		s.logf("Failed sending SIGTERM to %s: %v", id, e)
	}

	timer := time.NewTimer(s.grace)
	select {
	case <-h.done:
	case <-timer.C:
		s.logf("Graceful shutdown of %s timed out, killing", id)
		if e := signalGroup(h.pgid, syscall.SIGKILL); e != nil {
			s.logf("Failed killing %s: %v", id, e)
		}
		s.metrics.ForcedKill(id)
	}
	timer.Stop()

	s.evict(id, h)
	s.metrics.TerminationDuration(id, time.Since(start))
}

// killByPort sends SIGTERM to every process with a socket listening on the
// port, other than this one.  It returns true if any was signalled.
func (s *Supervisor) killByPort(port int) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.lookupTimeout)
	defer cancel()

	pids, e := listeners(ctx, port)
	if e != nil {
		s.logf("Cannot find listeners on port %d: %v", port, e)
		return false
	}
	self := int32(os.Getpid())
	signalled := false
	for _, pid := range pids {
		if pid == self {
			continue
		}
		p, e := process.NewProcessWithContext(ctx, pid)
		if e != nil {
			continue
		}
		if e := p.TerminateWithContext(ctx); e != nil {
			s.logf("Failed sending SIGTERM to pid %d: %v", pid, e)
			continue
		}
		s.logf("Terminated pid %d listening on port %d", pid, port)
		signalled = true
	}
	return signalled
}

// listeners returns the distinct pids owning a TCP socket in the LISTEN
// state on the port.  Sockets whose owner cannot be determined (pid 0,
// usually another user's) are skipped.
func listeners(ctx context.Context, port int) ([]int32, error) {
	conns, e := psnet.ConnectionsWithContext(ctx, "tcp")
	if e != nil {
		return nil, e
	}
	seen := make(map[int32]bool)
	var pids []int32
	for _, c := range conns {
		if int(c.Laddr.Port) != port || c.Status != "LISTEN" || c.Pid <= 0 {
			continue
		}
		if !seen[c.Pid] {
			seen[c.Pid] = true
			pids = append(pids, c.Pid)
		}
	}
	return pids, nil
}
