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
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
)

// StartResult describes what Launch did.
type StartResult int

const (
	NotStarted StartResult = iota
	Started
	AlreadyRunning
)

func (r StartResult) String() string {
	switch r {
	case Started:
		return "Started"
	case AlreadyRunning:
		return "Already running"
	}
	return "Not started"
}

// launchPlan is what gets executed for an App: an argument vector, plus
// environment entries that override the daemon's own.
type launchPlan struct {
	argv []string
	env  []string
}

type launchStrategy func(app *App, shell string, logger *log.Logger) launchPlan

var strategies = map[RuntimeKind]launchStrategy{
	RuntimePython: pythonPlan,
	RuntimeNode:   shellPlan,
	RuntimeStatic: shellPlan,
	RuntimeDocker: shellPlan,
}

// planFor picks the strategy for the app's runtime.  Unknown kinds are run
// through the shell, like node or static apps.
func planFor(app *App, shell string, logger *log.Logger) launchPlan {
	if strategy, ok := strategies[app.Runtime.Kind]; ok {
		return strategy(app, shell, logger)
	}
	return shellPlan(app, shell, logger)
}

func shellPlan(app *App, shell string, _ *log.Logger) launchPlan {
	return launchPlan{argv: []string{shell, "-c", app.Runtime.Command}}
}

// shellSyntax holds the characters that need a shell to interpret them.
const shellSyntax = "|&;<>()$`*?[]{}~#\n"

// pythonPlan runs the command against the app's virtual environment, if it
// has one.  A command of the form "python args..." is executed directly
// with the venv interpreter.  Anything more involved goes through the shell
// with the venv's bin directory first on PATH, which has the same effect
// for every python invocation in the command.
//
// A venv without an interpreter is ignored and the command runs as given.
func pythonPlan(app *App, shell string, logger *log.Logger) launchPlan {
	rt := app.Runtime
	if rt.Venv == "" {
		return shellPlan(app, shell, logger)
	}
	venv := rt.Venv
	if !filepath.IsAbs(venv) {
		venv = filepath.Join(app.Path, venv)
	}
	bin := filepath.Join(venv, "bin")
	interp := filepath.Join(bin, "python")
	if fi, e := os.Stat(interp); e != nil || fi.IsDir() {
		logger.Printf("App %s: no interpreter at %s, running command unchanged",
			app.Id, interp)
		return shellPlan(app, shell, logger)
	}

	env := []string{
		"VIRTUAL_ENV=" + venv,
		"PATH=" + bin + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
	if !strings.ContainsAny(rt.Command, shellSyntax) {
		words, e := shellquote.Split(rt.Command)
		if e == nil && len(words) > 0 && isPython(words[0]) {
			argv := append([]string{interp}, words[1:]...)
			return launchPlan{argv: argv, env: env}
		}
	}
	plan := shellPlan(app, shell, logger)
	plan.env = env
	return plan
}

func isPython(word string) bool {
	return word == "python" || word == "python3"
}

// Launch starts the app, unless it is already running.  The process runs
// in app.Path, in a new process group, with its standard streams connected
// to the null device.
//
// Launch does not wait for the app to become reachable; see Settle.
func (s *Supervisor) Launch(app *App) (StartResult, error) {
	if app.Runtime.Command == "" || app.Path == "" {
		s.metrics.Launch(app.Id, "invalid_config")
		return NotStarted, ErrInvalidConfig
	}
	if s.IsRunning(app.Id, app.Port) {
		s.metrics.Launch(app.Id, "already_running")
		return AlreadyRunning, nil
	}

	// Claim the id, so that a concurrent start does not spawn a twin.
	s.lock()
	if _, ok := s.handles[app.Id]; ok || s.starting[app.Id] {
		s.unlock()
		s.metrics.Launch(app.Id, "already_running")
		return AlreadyRunning, nil
	}
	s.starting[app.Id] = true
	s.unlock()

	plan := planFor(app, s.shell, s.logger)
	cmd := exec.Command(plan.argv[0], plan.argv[1:]...)
	cmd.Dir = app.Path
	if plan.env != nil {
		cmd.Env = append(os.Environ(), plan.env...)
	}
	cmd.SysProcAttr = groupAttr()

	if e := cmd.Start(); e != nil {
		s.lock()
		delete(s.starting, app.Id)
		s.unlock()
		s.logf("Failed to start %s: %v", app.Id, e)
		s.metrics.Launch(app.Id, "spawn_failed")
		return NotStarted, fmt.Errorf("%w: %w", ErrSpawnFailed, e)
	}
	h := newHandle(cmd)
	go h.reap()

	s.lock()
	delete(s.starting, app.Id)
	s.handles[app.Id] = h
	n := len(s.handles)
	s.bumpSerial()
	s.unlock()

	s.metrics.Tracked(n)
	s.metrics.Launch(app.Id, "started")
	s.logf("Started %s %q (pid %d)", app.Id, app.Name, h.pgid)
	return Started, nil
}
