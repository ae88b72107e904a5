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
	"log"
	"sort"
	"sync"
	"time"
)

const (
	DefaultGracePeriod   = 5 * time.Second
	DefaultSettleDelay   = 500 * time.Millisecond
	DefaultProbeTimeout  = time.Second
	DefaultLookupTimeout = 2 * time.Second
	DefaultShell         = "/bin/sh"
)

// AppSource resolves application ids.  The Registry is one.
type AppSource interface {
	App(id string) (*App, error)
}

// Supervisor starts, stops and watches applications.  It owns the table of
// processes it has launched, keyed by app id, which lives as long as the
// Supervisor and is emptied by Shutdown.
//
// All methods are safe for concurrent use.  The table lock is never held
// while waiting on the operating system, so a slow stop of one app does not
// hold up requests for another.
type Supervisor struct {
	name     string
	apps     AppSource
	handles  map[string]*handle
	starting map[string]bool
	logger   *log.Logger
	extlog   *log.Logger
	log      *Log
	mlog     *MultiLogger
	metrics  Metrics

	shell         string
	grace         time.Duration
	settle        time.Duration
	probeTimeout  time.Duration
	lookupTimeout time.Duration

	serial     int64
	createTime time.Time
	updateTime time.Time
	cv         *sync.Cond
	mx         sync.Mutex
}

type SupervisorInfo struct {
	Name       string
	Serial     int64
	Tracked    int
	CreateTime time.Time
	UpdateTime time.Time
}

func (s *Supervisor) lock() {
	s.mx.Lock()
}

func (s *Supervisor) unlock() {
	s.mx.Unlock()
}

// bumpSerial notes a change to the table and wakes watchers.  Call with
// the lock held.
func (s *Supervisor) bumpSerial() {
	s.serial++
	s.updateTime = time.Now()
	s.cv.Broadcast()
}

// evict drops the handle for id, provided it is still h.  It reports
// whether it did.
func (s *Supervisor) evict(id string, h *handle) bool {
	s.lock()
	defer s.unlock()
	if s.handles[id] != h {
		return false
	}
	delete(s.handles, id)
	s.bumpSerial()
	s.metrics.Tracked(len(s.handles))
	return true
}

func (s *Supervisor) logf(format string, v ...interface{}) {
	s.logger.Printf(format, v...)
}

// Start starts the app with the given id.  See Launch.
func (s *Supervisor) Start(id string) (StartResult, error) {
	app, e := s.apps.App(id)
	if e != nil {
		return NotStarted, e
	}
	return s.Launch(app)
}

// Stop stops the app with the given id, reporting whether anything was
// found to stop.  See Terminate.
func (s *Supervisor) Stop(id string) (bool, error) {
	app, e := s.apps.App(id)
	if e != nil {
		return false, e
	}
	return s.Terminate(app.Id, app.Port), nil
}

// Status reports whether the app with the given id is running.
func (s *Supervisor) Status(id string) (bool, error) {
	app, e := s.apps.App(id)
	if e != nil {
		return false, e
	}
	return s.IsRunning(app.Id, app.Port), nil
}

// Settle gives a freshly launched app the settle delay to come up, and
// then reports whether it is running.  It returns early if the tracked
// process exits first, or if ctx is done.
func (s *Supervisor) Settle(ctx context.Context, app *App) bool {
	s.lock()
	h := s.handles[app.Id]
	s.unlock()

	var done chan struct{}
	if h != nil {
		done = h.done
	}
	timer := time.NewTimer(s.settle)
	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-done:
	}
	timer.Stop()
	return s.IsRunning(app.Id, app.Port)
}

// Shutdown stops every tracked process group, concurrently.  A group that
// will not die is killed after the grace period; nothing here waits longer
// than that.  Only the groups present when Shutdown was called are
// removed from the table.
func (s *Supervisor) Shutdown() {
	s.lock()
	handles := make(map[string]*handle, len(s.handles))
	for id, h := range s.handles {
		handles[id] = h
	}
	s.unlock()

	var wg sync.WaitGroup
	for id, h := range handles {
		wg.Add(1)
		go func(id string, h *handle) {
			defer wg.Done()
			s.stopTracked(id, h)
		}(id, h)
	}
	wg.Wait()

	s.lock()
	s.bumpSerial()
	left := len(s.handles)
	s.unlock()
	s.metrics.Tracked(left)
	s.logf("*** Launchman shut down: %s ***", s.name)
}

// Tracked returns the ids of the apps with a tracked process, sorted.
func (s *Supervisor) Tracked() []string {
	s.lock()
	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	s.unlock()
	sort.Strings(ids)
	return ids
}

func (s *Supervisor) Name() string {
	return s.name
}

func (s *Supervisor) GetInfo() *SupervisorInfo {
	s.lock()
	defer s.unlock()
	return &SupervisorInfo{
		Name:       s.name,
		Serial:     s.serial,
		Tracked:    len(s.handles),
		CreateTime: s.createTime,
		UpdateTime: s.updateTime,
	}
}

// WatchSerial waits until the serial number differs from old, or expire
// elapses, and returns the current serial.  The serial changes whenever a
// process is added to or removed from the table.
func (s *Supervisor) WatchSerial(old int64, expire time.Duration) int64 {
	s.lock()
	defer s.unlock()
	if expire <= 0 || s.serial != old {
		return s.serial
	}
	expired := false
	timer := time.AfterFunc(expire, func() {
		s.lock()
		expired = true
		s.cv.Broadcast()
		s.unlock()
	})
	defer timer.Stop()
	for s.serial == old && !expired {
		s.cv.Wait()
	}
	return s.serial
}

func (s *Supervisor) GetLog(last int64) ([]LogRecord, int64) {
	return s.log.Records(last)
}

func (s *Supervisor) WatchLog(last int64, expire time.Duration) int64 {
	return s.log.Watch(last, expire)
}

// Logger returns a logger that writes into the supervisor's log, and to
// any logger given to SetLogger.
func (s *Supervisor) Logger() *log.Logger {
	return s.logger
}

// The setters below configure the Supervisor, and must be called before it
// is put to use.

// SetLogger adds an external destination for log messages, replacing the
// one set before.  The in-memory log is always kept.
func (s *Supervisor) SetLogger(l *log.Logger) {
	if s.extlog != nil {
		s.mlog.DelLogger(s.extlog)
	}
	s.extlog = l
	if l != nil {
		s.mlog.AddLogger(l)
	}
}

func (s *Supervisor) SetMetrics(m Metrics) {
	if m == nil {
		m = NewNoopMetrics()
	}
	s.metrics = m
}

// SetShell sets the shell used to run commands, as "<shell> -c <command>".
func (s *Supervisor) SetShell(shell string) {
	s.shell = shell
}

// SetGracePeriod sets how long a stopped process group has to exit after
// SIGTERM before it is sent SIGKILL.
func (s *Supervisor) SetGracePeriod(d time.Duration) {
	s.grace = d
}

func (s *Supervisor) SetSettleDelay(d time.Duration) {
	s.settle = d
}

func (s *Supervisor) SetProbeTimeout(d time.Duration) {
	s.probeTimeout = d
}

// SetLookupTimeout bounds the scan for processes listening on a port.
func (s *Supervisor) SetLookupTimeout(d time.Duration) {
	s.lookupTimeout = d
}

func NewSupervisor(name string, apps AppSource) *Supervisor {
	if name == "" {
		name = "launchman"
	}
	s := &Supervisor{
		name:          name,
		apps:          apps,
		handles:       make(map[string]*handle),
		starting:      make(map[string]bool),
		metrics:       NewNoopMetrics(),
		shell:         DefaultShell,
		grace:         DefaultGracePeriod,
		settle:        DefaultSettleDelay,
		probeTimeout:  DefaultProbeTimeout,
		lookupTimeout: DefaultLookupTimeout,
		// As with the log, start from the clock so that a client's
		// cached serial from an earlier daemon never matches.
		serial:     time.Now().UnixNano(),
		createTime: time.Now(),
	}
	s.updateTime = s.createTime
	s.cv = sync.NewCond(&s.mx)
	s.mlog = NewMultiLogger()
	s.log = NewLog(MaxLogRecords)
	s.mlog.AddLogger(log.New(s.log, "", 0))
	s.logger = log.New(s.mlog, "", 0)
	return s
}
