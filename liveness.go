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
	"net"
	"strconv"
)

// IsRunning reports whether the app is up.  A tracked process that is
// still alive counts as running.  A tracked process that has exited is
// dropped from the table here, and the port is checked as for an untracked
// app: anything accepting connections on it counts, whoever started it.
// Command line apps (port zero) cannot be observed once untracked.
func (s *Supervisor) IsRunning(appID string, port int) bool {
	s.lock()
	h := s.handles[appID]
	s.unlock()

	if h != nil {
		if !h.exited() {
			s.metrics.LivenessCheck("tracked")
			return true
		}
		if s.evict(appID, h) {
			s.logf("App %s exited: %v", appID, exitReason(h))
		}
	}
	if port > 0 && s.probe(port) {
		s.metrics.LivenessCheck("listening")
		return true
	}
	s.metrics.LivenessCheck("down")
	return false
}

// probe attempts a TCP connection to the port on the loopback address.
// Every failure, not just a refusal, reads as nothing listening.
func (s *Supervisor) probe(port int) bool {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	conn, e := net.DialTimeout("tcp", addr, s.probeTimeout)
	if e != nil {
		return false
	}
	conn.Close()
	return true
}

func exitReason(h *handle) string {
	if h.err != nil {
		return h.err.Error()
	}
	return "exit status 0"
}
