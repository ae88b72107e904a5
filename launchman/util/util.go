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

// Package util is used for internal implementation bits in the CLI/UI.
package util

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/launchman/launchman/rest"
)

func Status(a *rest.AppInfo) string {
	if a.Running {
		return "running"
	}
	return "stopped"
}

// FormatPort shows command line apps, which have no port, as "-".
func FormatPort(port int) string {
	if port == 0 {
		return "-"
	}
	return strconv.Itoa(port)
}

// Details describes an app, one "Label: value" line per field.
func Details(a *rest.AppInfo) []string {
	lines := []string{
		fmt.Sprintf("%13s %s", "Id:", a.Id),
		fmt.Sprintf("%13s %s", "Name:", a.Name),
		fmt.Sprintf("%13s %s", "Description:", a.Description),
		fmt.Sprintf("%13s %s", "Status:", Status(a)),
		fmt.Sprintf("%13s %s", "Port:", FormatPort(a.Port)),
		fmt.Sprintf("%13s %s", "Path:", a.Path),
		fmt.Sprintf("%13s %s", "Runtime:", a.Runtime.Kind),
		fmt.Sprintf("%13s %s", "Command:", a.Runtime.Command),
	}
	if a.Runtime.Venv != "" {
		lines = append(lines, fmt.Sprintf("%13s %s", "Venv:", a.Runtime.Venv))
	}
	if a.Color != "" {
		lines = append(lines, fmt.Sprintf("%13s %s", "Color:", a.Color))
	}
	return lines
}

type sorted []*rest.AppInfo

func (s sorted) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s sorted) Len() int {
	return len(s)
}

func (s sorted) Less(i, j int) bool {
	a := s[i]
	b := s[j]

	if a.Running != b.Running {
		// put running items at front
		return a.Running
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Id < b.Id
}

func SortApps(items []*rest.AppInfo) {
	sort.Sort(sorted(items))
}
