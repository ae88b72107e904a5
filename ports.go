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

// DashboardPort is the port the dashboard itself listens on by default.
// It is never handed out to an application.
const DashboardPort = 8000

// AllocatePort chooses the port for an application that would like to use
// preferred.  The ports in existing and reserved, as well as DashboardPort,
// are considered taken.  A preferred port that is not taken is returned
// unchanged, so that editing an application never moves it.
//
// When the preferred port is taken, the result is one more than the highest
// taken port.  This does not search for gaps, so ports released below the
// highest one are not reused, and the numbers only ever grow.  Registries
// written by earlier versions depend on these assignments, so the strategy
// is kept as is.
//
// Port zero means "no listener"; it is never taken, and a preferred port of
// zero is always granted.
func AllocatePort(existing []int, preferred int, reserved ...int) int {
	if preferred == 0 {
		return 0
	}
	used := map[int]bool{DashboardPort: true}
	highest := DashboardPort
	take := func(ports []int) {
		for _, p := range ports {
			if p <= 0 {
				continue
			}
			used[p] = true
			if p > highest {
				highest = p
			}
		}
	}
	take(existing)
	take(reserved)

	if !used[preferred] {
		return preferred
	}
	return highest + 1
}
