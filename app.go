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

// RuntimeKind classifies how an application is launched.
type RuntimeKind string

const (
	RuntimePython RuntimeKind = "python"
	RuntimeNode   RuntimeKind = "node"
	RuntimeStatic RuntimeKind = "static"
	RuntimeDocker RuntimeKind = "docker"
)

// Valid reports whether k is one of the known runtime kinds.
func (k RuntimeKind) Valid() bool {
	switch k {
	case RuntimePython, RuntimeNode, RuntimeStatic, RuntimeDocker:
		return true
	}
	return false
}

// Runtime describes the command used to launch an application.  Venv is
// only meaningful for python applications, and may be relative to the
// application's Path.
type Runtime struct {
	Kind    RuntimeKind `json:"type"`
	Command string      `json:"command"`
	Venv    string      `json:"venv,omitempty"`
}

// App is a registered application.  A Port of zero marks a command line
// application, which has no listener by which it can be observed.
type App struct {
	Id          string  `json:"id"`
	Name        string  `json:"name"`
	Port        int     `json:"port"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Path        string  `json:"path"`
	Runtime     Runtime `json:"runtime"`
}

// AppSpec carries the fields supplied when registering a new App.  The
// port is a preference; the Registry may assign a different one.
type AppSpec struct {
	Name        string  `json:"name"`
	Port        int     `json:"port"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Path        string  `json:"path"`
	Runtime     Runtime `json:"runtime"`
}

// AppUpdate is a partial update.  Nil fields are left alone.
type AppUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Port        *int     `json:"port,omitempty"`
	Description *string  `json:"description,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Path        *string  `json:"path,omitempty"`
	Runtime     *Runtime `json:"runtime,omitempty"`
}
