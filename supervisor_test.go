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

//go:build unix

// These tests launch real processes through /bin/sh, and rely on POSIX
// process groups and signals.

package launchman

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestSupervisor(t *testing.T, name string) (*Supervisor, *Registry) {
	reg := NewRegistry(&memStore{})
	s := NewSupervisor(name, reg)
	SetTestLogger(t, s)
	s.SetGracePeriod(2 * time.Second)
	s.SetSettleDelay(200 * time.Millisecond)
	s.SetProbeTimeout(200 * time.Millisecond)
	return s, reg
}

func register(reg *Registry, port int, path, command string) *App {
	app, e := reg.Create(AppSpec{
		Name: "test",
		Port: port,
		Path: path,
		Runtime: Runtime{
			Kind:    RuntimeStatic,
			Command: command,
		},
	})
	So(e, ShouldBeNil)
	return app
}

// freePort returns a port that nothing was listening on a moment ago.
func freePort() int {
	l, e := net.Listen("tcp", "127.0.0.1:0")
	So(e, ShouldBeNil)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

// waitFor polls cond for up to two seconds.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestSupervisorStartStop(t *testing.T) {
	Convey("Test start/stop of a tracked process", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorStartStop")
		defer s.Shutdown()
		app := register(reg, 0, t.TempDir(), "sleep 3600")

		running, e := s.Status(app.Id)
		So(e, ShouldBeNil)
		So(running, ShouldBeFalse)

		res, e := s.Start(app.Id)
		So(e, ShouldBeNil)
		So(res, ShouldEqual, Started)
		So(s.Tracked(), ShouldResemble, []string{app.Id})

		running, e = s.Status(app.Id)
		So(e, ShouldBeNil)
		So(running, ShouldBeTrue)

		Convey("Starting again is a no-op", func() {
			res, e := s.Start(app.Id)
			So(e, ShouldBeNil)
			So(res, ShouldEqual, AlreadyRunning)
			So(len(s.Tracked()), ShouldEqual, 1)
		})

		Convey("Stopping removes the handle", func() {
			stopped, e := s.Stop(app.Id)
			So(e, ShouldBeNil)
			So(stopped, ShouldBeTrue)
			So(s.Tracked(), ShouldBeEmpty)
			So(s.IsRunning(app.Id, app.Port), ShouldBeFalse)

			Convey("And a second stop finds nothing", func() {
				stopped, e := s.Stop(app.Id)
				So(e, ShouldBeNil)
				So(stopped, ShouldBeFalse)
			})
		})
	})
}

func TestSupervisorUnknownApp(t *testing.T) {
	Convey("Operations on an unknown id fail", t, func() {
		s, _ := newTestSupervisor(t, "TestSupervisorUnknownApp")
		_, e := s.Start("nope")
		So(e, ShouldEqual, ErrNotFound)
		_, e = s.Stop("nope")
		So(e, ShouldEqual, ErrNotFound)
		_, e = s.Status("nope")
		So(e, ShouldEqual, ErrNotFound)
	})
}

func TestSupervisorInvalidConfig(t *testing.T) {
	Convey("Apps without a command or path are refused", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorInvalidConfig")

		app := register(reg, 0, t.TempDir(), "")
		res, e := s.Start(app.Id)
		So(e, ShouldEqual, ErrInvalidConfig)
		So(res, ShouldEqual, NotStarted)
		So(s.Tracked(), ShouldBeEmpty)

		app = register(reg, 0, "", "sleep 1")
		_, e = s.Start(app.Id)
		So(e, ShouldEqual, ErrInvalidConfig)
		So(s.Tracked(), ShouldBeEmpty)
	})
}

func TestSupervisorSpawnFailure(t *testing.T) {
	Convey("A missing working directory fails the spawn", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorSpawnFailure")
		missing := filepath.Join(t.TempDir(), "missing")
		app := register(reg, 0, missing, "sleep 1")

		res, e := s.Start(app.Id)
		So(e, ShouldNotBeNil)
		So(errors.Is(e, ErrSpawnFailed), ShouldBeTrue)
		So(res, ShouldEqual, NotStarted)
		So(s.Tracked(), ShouldBeEmpty)

		Convey("And so does a missing shell", func() {
			s.SetShell(filepath.Join(missing, "sh"))
			app := register(reg, 0, t.TempDir(), "sleep 1")
			_, e := s.Start(app.Id)
			So(errors.Is(e, ErrSpawnFailed), ShouldBeTrue)
			So(s.Tracked(), ShouldBeEmpty)
		})
	})
}

func TestSupervisorExitedProcess(t *testing.T) {
	Convey("A process that exits is evicted lazily", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorExitedProcess")
		app := register(reg, 0, t.TempDir(), "exit 3")

		_, e := s.Start(app.Id)
		So(e, ShouldBeNil)
		So(waitFor(func() bool {
			return !s.IsRunning(app.Id, app.Port)
		}), ShouldBeTrue)
		So(s.Tracked(), ShouldBeEmpty)

		Convey("And can be started again", func() {
			res, e := s.Start(app.Id)
			So(e, ShouldBeNil)
			So(res, ShouldEqual, Started)
		})
	})
}

func TestSupervisorSettle(t *testing.T) {
	Convey("Settle reports how a launch went", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorSettle")
		defer s.Shutdown()

		Convey("A crashing app settles early as not running", func() {
			s.SetSettleDelay(5 * time.Second)
			app := register(reg, 0, t.TempDir(), "exit 1")
			_, e := s.Start(app.Id)
			So(e, ShouldBeNil)
			start := time.Now()
			So(s.Settle(context.Background(), app), ShouldBeFalse)
			So(time.Since(start), ShouldBeLessThan, 4*time.Second)
		})

		Convey("A healthy app settles as running", func() {
			app := register(reg, 0, t.TempDir(), "sleep 3600")
			_, e := s.Start(app.Id)
			So(e, ShouldBeNil)
			So(s.Settle(context.Background(), app), ShouldBeTrue)
		})
	})
}

func TestSupervisorUntracked(t *testing.T) {
	Convey("Apps not started by the supervisor", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorUntracked")

		Convey("A CLI app is never running when untracked", func() {
			app := register(reg, 0, t.TempDir(), "sleep 1")
			running, e := s.Status(app.Id)
			So(e, ShouldBeNil)
			So(running, ShouldBeFalse)
			stopped, e := s.Stop(app.Id)
			So(e, ShouldBeNil)
			So(stopped, ShouldBeFalse)
		})

		Convey("A silent port is not running, and cannot be stopped", func() {
			port := freePort()
			So(s.IsRunning("ghost", port), ShouldBeFalse)
			So(s.Terminate("ghost", port), ShouldBeFalse)
		})

		Convey("A listening port is running", func() {
			l, e := net.Listen("tcp", "127.0.0.1:0")
			So(e, ShouldBeNil)
			defer l.Close()
			port := l.Addr().(*net.TCPAddr).Port

			So(s.IsRunning("external", port), ShouldBeTrue)
			So(s.Tracked(), ShouldBeEmpty)

			Convey("But the supervisor never signals itself", func() {
				So(s.Terminate("external", port), ShouldBeFalse)
				So(s.IsRunning("external", port), ShouldBeTrue)
			})
		})
	})
}

// TestHelperListener is run in a child process by TestSupervisorPortKill,
// and serves as an app started outside the supervisor.
func TestHelperListener(t *testing.T) {
	addr := os.Getenv("LAUNCHMAN_HELPER_LISTEN")
	if addr == "" {
		return
	}
	l, e := net.Listen("tcp", addr)
	if e != nil {
		os.Exit(2)
	}
	for {
		c, e := l.Accept()
		if e != nil {
			os.Exit(3)
		}
		c.Close()
	}
}

func TestSupervisorPortKill(t *testing.T) {
	Convey("An untracked listener is stopped through its port", t, func() {
		s, _ := newTestSupervisor(t, "TestSupervisorPortKill")
		port := freePort()

		cmd := exec.Command(os.Args[0], "-test.run=^TestHelperListener$")
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("LAUNCHMAN_HELPER_LISTEN=127.0.0.1:%d", port))
		So(cmd.Start(), ShouldBeNil)
		defer cmd.Process.Kill()
		waitc := make(chan error, 1)
		go func() {
			waitc <- cmd.Wait()
		}()

		So(waitFor(func() bool {
			return s.IsRunning("external", port)
		}), ShouldBeTrue)
		So(s.Tracked(), ShouldBeEmpty)

		So(s.Terminate("external", port), ShouldBeTrue)

		var e error
		select {
		case e = <-waitc:
		case <-time.After(5 * time.Second):
			t.Fatal("listener did not exit")
		}
		var ee *exec.ExitError
		So(errors.As(e, &ee), ShouldBeTrue)
		ws, ok := ee.Sys().(syscall.WaitStatus)
		So(ok, ShouldBeTrue)
		So(ws.Signaled(), ShouldBeTrue)
		So(ws.Signal(), ShouldEqual, syscall.SIGTERM)

		So(waitFor(func() bool {
			return !s.IsRunning("external", port)
		}), ShouldBeTrue)
	})
}

// processGone reports whether pid has exited.  A zombie counts, as an
// orphan may be left unreaped by whatever adopted it.
func processGone(pid int) bool {
	if e := syscall.Kill(pid, 0); errors.Is(e, syscall.ESRCH) {
		return true
	}
	b, e := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if e != nil {
		return os.IsNotExist(e)
	}
	stat := string(b)
	i := strings.LastIndexByte(stat, ')')
	if i < 0 || i+2 >= len(stat) {
		return false
	}
	return stat[i+2] == 'Z'
}

func TestSupervisorProcessGroup(t *testing.T) {
	Convey("Stopping an app reaches its whole process group", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorProcessGroup")
		defer s.Shutdown()
		dir := t.TempDir()
		app := register(reg, 0, dir, "sleep 3600 & echo $! > child.pid; wait")

		res, e := s.Start(app.Id)
		So(e, ShouldBeNil)
		So(res, ShouldEqual, Started)

		pidfile := filepath.Join(dir, "child.pid")
		pid := 0
		So(waitFor(func() bool {
			b, e := os.ReadFile(pidfile)
			if e != nil {
				return false
			}
			pid, e = strconv.Atoi(strings.TrimSpace(string(b)))
			return e == nil && pid > 0
		}), ShouldBeTrue)
		So(processGone(pid), ShouldBeFalse)

		So(s.Terminate(app.Id, app.Port), ShouldBeTrue)
		So(s.Tracked(), ShouldBeEmpty)
		So(waitFor(func() bool {
			return processGone(pid)
		}), ShouldBeTrue)
	})
}

func TestSupervisorForcedKill(t *testing.T) {
	Convey("A process ignoring SIGTERM is killed after the grace period", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorForcedKill")
		pm := NewPrometheusMetrics("test")
		s.SetMetrics(pm)
		s.SetGracePeriod(200 * time.Millisecond)

		app := register(reg, 0, t.TempDir(), "trap '' TERM; sleep 3600")
		_, e := s.Start(app.Id)
		So(e, ShouldBeNil)

		s.lock()
		h := s.handles[app.Id]
		s.unlock()
		So(h, ShouldNotBeNil)

		// Give the shell time to install its trap.
		time.Sleep(100 * time.Millisecond)

		start := time.Now()
		So(s.Terminate(app.Id, app.Port), ShouldBeTrue)
		So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 200*time.Millisecond)
		So(s.Tracked(), ShouldBeEmpty)
		So(testutil.ToFloat64(pm.forced.WithLabelValues(app.Id)), ShouldEqual, 1)
		So(testutil.ToFloat64(pm.stops.WithLabelValues(app.Id, "tracked")), ShouldEqual, 1)

		So(waitFor(h.exited), ShouldBeTrue)
	})
}

func TestSupervisorShutdown(t *testing.T) {
	Convey("Shutdown stops everything", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorShutdown")
		a1 := register(reg, 0, t.TempDir(), "sleep 3600")
		a2 := register(reg, 0, t.TempDir(), "trap '' TERM; sleep 3600")
		s.SetGracePeriod(200 * time.Millisecond)

		_, e := s.Start(a1.Id)
		So(e, ShouldBeNil)
		_, e = s.Start(a2.Id)
		So(e, ShouldBeNil)
		So(len(s.Tracked()), ShouldEqual, 2)

		s.lock()
		handles := []*handle{s.handles[a1.Id], s.handles[a2.Id]}
		s.unlock()

		serial := s.GetInfo().Serial
		s.Shutdown()
		So(s.Tracked(), ShouldBeEmpty)
		So(s.GetInfo().Serial, ShouldBeGreaterThan, serial)
		for _, h := range handles {
			So(waitFor(h.exited), ShouldBeTrue)
		}
	})

	Convey("Shutdown leaves apps launched during the sweep tracked", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorShutdownLate")
		slow := register(reg, 0, t.TempDir(), "trap '' TERM; sleep 3600")
		late := register(reg, 0, t.TempDir(), "sleep 3600")
		s.SetGracePeriod(time.Second)

		_, e := s.Start(slow.Id)
		So(e, ShouldBeNil)
		// Give the shell time to install its trap.
		time.Sleep(100 * time.Millisecond)

		startc := make(chan error, 1)
		go func() {
			time.Sleep(200 * time.Millisecond)
			_, e := s.Start(late.Id)
			startc <- e
		}()
		s.Shutdown()
		So(<-startc, ShouldBeNil)
		So(s.Tracked(), ShouldResemble, []string{late.Id})

		stopped, e := s.Stop(late.Id)
		So(e, ShouldBeNil)
		So(stopped, ShouldBeTrue)
		So(s.Tracked(), ShouldBeEmpty)
	})
}

func TestSupervisorVenvLaunch(t *testing.T) {
	Convey("A python app runs its venv interpreter", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorVenvLaunch")
		defer s.Shutdown()
		dir := t.TempDir()
		makeVenv(dir, "venv", "exec sleep 3600")

		app, e := reg.Create(AppSpec{
			Name: "py",
			Path: dir,
			Runtime: Runtime{
				Kind:    RuntimePython,
				Command: "python server.py",
				Venv:    "venv",
			},
		})
		So(e, ShouldBeNil)

		res, e := s.Start(app.Id)
		So(e, ShouldBeNil)
		So(res, ShouldEqual, Started)
		So(s.Settle(context.Background(), app), ShouldBeTrue)

		stopped, e := s.Stop(app.Id)
		So(e, ShouldBeNil)
		So(stopped, ShouldBeTrue)
	})
}

func TestSupervisorWatchSerial(t *testing.T) {
	Convey("Watchers see launches", t, func() {
		s, reg := newTestSupervisor(t, "TestSupervisorWatchSerial")
		defer s.Shutdown()
		app := register(reg, 0, t.TempDir(), "sleep 3600")

		serial := s.GetInfo().Serial
		So(s.WatchSerial(serial, 10*time.Millisecond), ShouldEqual, serial)

		go func() {
			time.Sleep(20 * time.Millisecond)
			s.Start(app.Id)
		}()
		So(s.WatchSerial(serial, 5*time.Second), ShouldBeGreaterThan, serial)
		So(s.GetInfo().Tracked, ShouldEqual, 1)

		recs, _ := s.GetLog(0)
		So(len(recs), ShouldBeGreaterThan, 0)
	})
}
