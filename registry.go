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
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Store persists the whole set of registered apps at once.
type Store interface {
	// Load returns the stored apps, in order.  A store that is missing
	// or cannot be parsed loads as empty.
	Load() []App

	// Save replaces the stored apps.
	Save(apps []App) error
}

// FileStore keeps apps as an indented JSON array in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load() []App {
	b, e := os.ReadFile(fs.path)
	if e != nil {
		return []App{}
	}
	var apps []App
	if e := json.Unmarshal(b, &apps); e != nil || apps == nil {
		return []App{}
	}
	return apps
}

// Save writes to a temporary file beside the target and renames it into
// place, so a crash never leaves a truncated registry behind.
func (fs *FileStore) Save(apps []App) error {
	if apps == nil {
		apps = []App{}
	}
	b, e := json.MarshalIndent(apps, "", "  ")
	if e != nil {
		return e
	}
	f, e := os.CreateTemp(filepath.Dir(fs.path), ".apps-*.json")
	if e != nil {
		return e
	}
	tmp := f.Name()
	if _, e = f.Write(append(b, '\n')); e == nil {
		e = f.Close()
	} else {
		f.Close()
	}
	if e != nil {
		os.Remove(tmp)
		return e
	}
	if e := os.Rename(tmp, fs.path); e != nil {
		os.Remove(tmp)
		return e
	}
	return nil
}

// Registry is the set of registered apps.  Ports are assigned with
// AllocatePort when apps are created or their port is changed, so that no
// two apps share a non-zero port.
type Registry struct {
	store    Store
	reserved []int
	logger   *log.Logger
	mx       sync.Mutex
}

// NewRegistry returns a Registry over store.  The reserved ports, such as
// the one the dashboard actually listens on, are never assigned.
func NewRegistry(store Store, reserved ...int) *Registry {
	return &Registry{
		store:    store,
		reserved: reserved,
		logger:   log.New(io.Discard, "", 0),
	}
}

func (r *Registry) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	r.logger = l
}

func (r *Registry) List() []App {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.store.Load()
}

func (r *Registry) App(id string) (*App, error) {
	r.mx.Lock()
	defer r.mx.Unlock()
	for _, app := range r.store.Load() {
		if app.Id == id {
			return &app, nil
		}
	}
	return nil, ErrNotFound
}

func (r *Registry) Create(spec AppSpec) (*App, error) {
	if !spec.Runtime.Kind.Valid() {
		return nil, ErrBadRuntime
	}
	if spec.Port < 0 {
		return nil, ErrBadPort
	}

	r.mx.Lock()
	defer r.mx.Unlock()

	apps := r.store.Load()
	app := App{
		Id:          newID(apps),
		Name:        spec.Name,
		Port:        AllocatePort(portsOf(apps, ""), spec.Port, r.reserved...),
		Description: spec.Description,
		Color:       spec.Color,
		Path:        spec.Path,
		Runtime:     spec.Runtime,
	}
	apps = append(apps, app)
	if e := r.store.Save(apps); e != nil {
		return nil, e
	}
	if app.Port != spec.Port {
		r.logger.Printf("App %s: port %d is taken, assigned %d",
			app.Id, spec.Port, app.Port)
	}
	r.logger.Printf("Registered %s %q", app.Id, app.Name)
	return &app, nil
}

func (r *Registry) Update(id string, u AppUpdate) (*App, error) {
	if u.Runtime != nil && !u.Runtime.Kind.Valid() {
		return nil, ErrBadRuntime
	}
	if u.Port != nil && *u.Port < 0 {
		return nil, ErrBadPort
	}

	r.mx.Lock()
	defer r.mx.Unlock()

	apps := r.store.Load()
	for i := range apps {
		app := &apps[i]
		if app.Id != id {
			continue
		}
		if u.Name != nil {
			app.Name = *u.Name
		}
		if u.Port != nil {
			app.Port = AllocatePort(portsOf(apps, id), *u.Port, r.reserved...)
		}
		if u.Description != nil {
			app.Description = *u.Description
		}
		if u.Color != nil {
			app.Color = *u.Color
		}
		if u.Path != nil {
			app.Path = *u.Path
		}
		if u.Runtime != nil {
			app.Runtime = *u.Runtime
		}
		if e := r.store.Save(apps); e != nil {
			return nil, e
		}
		r.logger.Printf("Updated %s", id)
		rv := *app
		return &rv, nil
	}
	return nil, ErrNotFound
}

func (r *Registry) Delete(id string) error {
	r.mx.Lock()
	defer r.mx.Unlock()

	apps := r.store.Load()
	kept := make([]App, 0, len(apps))
	for _, app := range apps {
		if app.Id != id {
			kept = append(kept, app)
		}
	}
	if len(kept) == len(apps) {
		return ErrNotFound
	}
	if e := r.store.Save(kept); e != nil {
		return e
	}
	r.logger.Printf("Deleted %s", id)
	return nil
}

// portsOf lists the ports of every app other than exclude.
func portsOf(apps []App, exclude string) []int {
	ports := make([]int, 0, len(apps))
	for _, app := range apps {
		if app.Id != exclude {
			ports = append(ports, app.Port)
		}
	}
	return ports
}

// newID returns a short random id not used by any of apps.
func newID(apps []App) string {
	for {
		id := uuid.NewString()[:8]
		taken := false
		for _, app := range apps {
			if app.Id == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}
