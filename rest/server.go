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

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/launchman/launchman"
)

// Handler serves the dashboard API over a Supervisor and the Registry of
// apps it supervises.
type Handler struct {
	s   *launchman.Supervisor
	reg *launchman.Registry
	r   *mux.Router
}

func (h *Handler) internalError(w http.ResponseWriter, e error) {
	http.Error(w, e.Error(), http.StatusInternalServerError)
}

func (h *Handler) writeJson(w http.ResponseWriter, v interface{}) {
	if b, e := json.Marshal(v); e != nil {
		h.internalError(w, e)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.Write(b)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	if b, err := json.Marshal(e); err != nil {
		h.internalError(w, err)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.WriteHeader(e.Code)
		w.Write(b)
	}
}

// toError maps the errors of the launchman package onto HTTP statuses.
// Anything else, such as a failure to save the registry, is a server
// error.
func toError(e error) *Error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(e, launchman.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(e, launchman.ErrInvalidConfig),
		errors.Is(e, launchman.ErrBadRuntime),
		errors.Is(e, launchman.ErrBadPort):
		code = http.StatusBadRequest
	}
	return &Error{Code: code, Message: e.Error()}
}

func (h *Handler) readJson(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if e := dec.Decode(v); e != nil {
		h.writeError(w, &Error{http.StatusBadRequest, "Bad request: " + e.Error()})
		return false
	}
	return true
}

// pollTime returns how long the client asked to wait for a change from
// etag.  It is zero unless the client's etag is current.
func pollTime(r *http.Request, etag string) time.Duration {
	if r.Header.Get(PollEtagHeader) != etag {
		return 0
	}
	secs, e := strconv.Atoi(r.Header.Get(PollTimeHeader))
	if e != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > MaxPollTime {
		d = MaxPollTime
	}
	return d
}

// waitFor runs watch, a long poll, and reports whether it finished before
// the client went away.  An abandoned watch runs on until it expires.
func waitFor(r *http.Request, watch func()) bool {
	done := make(chan struct{})
	go func() {
		watch()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-r.Context().Done():
		return false
	}
}

// notModified sets the Etag and reports whether the client already has
// this version, in which case the response is complete.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("Etag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (h *Handler) getManager(w http.ResponseWriter, r *http.Request) {
	info := h.s.GetInfo()
	etag := strconv.FormatInt(info.Serial, 10)
	if d := pollTime(r, etag); d > 0 {
		serial := info.Serial
		if !waitFor(r, func() { h.s.WatchSerial(serial, d) }) {
			return
		}
		info = h.s.GetInfo()
		etag = strconv.FormatInt(info.Serial, 10)
	}
	if notModified(w, r, etag) {
		return
	}
	h.writeJson(w, &ManagerInfo{
		Name:       info.Name,
		Serial:     info.Serial,
		Tracked:    info.Tracked,
		CreateTime: info.CreateTime,
		UpdateTime: info.UpdateTime,
	})
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	_, last := h.s.GetLog(0)
	etag := strconv.FormatInt(last, 10)
	if d := pollTime(r, etag); d > 0 {
		old := last
		if !waitFor(r, func() { last = h.s.WatchLog(old, d) }) {
			return
		}
		etag = strconv.FormatInt(last, 10)
	}
	if notModified(w, r, etag) {
		return
	}
	recs, id := h.s.GetLog(0)
	w.Header().Set("Etag", strconv.FormatInt(id, 10))
	h.writeJson(w, recs)
}

func (h *Handler) info(app *launchman.App) *AppInfo {
	return &AppInfo{App: *app, Running: h.s.IsRunning(app.Id, app.Port)}
}

func (h *Handler) listApps(w http.ResponseWriter, r *http.Request) {
	apps := h.reg.List()
	l := make([]*AppInfo, 0, len(apps))
	for i := range apps {
		l = append(l, h.info(&apps[i]))
	}
	h.writeJson(w, l)
}

func (h *Handler) createApp(w http.ResponseWriter, r *http.Request) {
	var spec launchman.AppSpec
	if !h.readJson(w, r, &spec) {
		return
	}
	app, e := h.reg.Create(spec)
	if e != nil {
		h.writeError(w, toError(e))
		return
	}
	h.writeJson(w, &AppInfo{App: *app})
}

func (h *Handler) getApp(w http.ResponseWriter, r *http.Request) {
	app, e := h.reg.App(mux.Vars(r)["app"])
	if e != nil {
		h.writeError(w, toError(e))
		return
	}
	h.writeJson(w, h.info(app))
}

func (h *Handler) updateApp(w http.ResponseWriter, r *http.Request) {
	var u launchman.AppUpdate
	if !h.readJson(w, r, &u) {
		return
	}
	app, e := h.reg.Update(mux.Vars(r)["app"], u)
	if e != nil {
		h.writeError(w, toError(e))
		return
	}
	h.writeJson(w, h.info(app))
}

func (h *Handler) deleteApp(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["app"]
	if _, e := h.s.Stop(id); e != nil {
		h.writeError(w, toError(e))
		return
	}
	if e := h.reg.Delete(id); e != nil {
		h.writeError(w, toError(e))
		return
	}
	h.writeJson(w, &ActionReply{
		Success: true,
		Message: fmt.Sprintf("App %s deleted", id),
	})
}

func (h *Handler) startApp(w http.ResponseWriter, r *http.Request) {
	app, e := h.reg.App(mux.Vars(r)["app"])
	if e != nil {
		h.writeError(w, toError(e))
		return
	}
	res, e := h.s.Launch(app)
	if e != nil {
		h.writeError(w, toError(e))
		return
	}
	running := true
	if res == launchman.Started {
		running = h.s.Settle(r.Context(), app)
	}
	h.writeJson(w, &ActionReply{
		Success: true,
		Message: res.String(),
		Running: running,
	})
}

func (h *Handler) stopApp(w http.ResponseWriter, r *http.Request) {
	if _, e := h.s.Stop(mux.Vars(r)["app"]); e != nil {
		h.writeError(w, toError(e))
		return
	}
	h.writeJson(w, &ActionReply{Success: true, Message: "Stopped"})
}

func (h *Handler) appStatus(w http.ResponseWriter, r *http.Request) {
	running, e := h.s.Status(mux.Vars(r)["app"])
	if e != nil {
		h.writeError(w, toError(e))
		return
	}
	h.writeJson(w, &StatusReply{Running: running})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.r.ServeHTTP(w, req)
}

// Handle mounts an additional handler, such as a metrics endpoint.
func (h *Handler) Handle(path string, handler http.Handler) {
	h.r.Handle(path, handler)
}

// ServeStatic serves the dashboard page and its assets from dir.  It
// returns an error, and serves nothing, if dir is not a directory.
func (h *Handler) ServeStatic(dir string) error {
	fi, e := os.Stat(dir)
	if e != nil {
		return e
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}
	index := filepath.Join(dir, "index.html")
	h.r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	}).Methods("GET")
	h.r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	return nil
}

func NewHandler(s *launchman.Supervisor, reg *launchman.Registry) *Handler {
	r := mux.NewRouter()
	h := &Handler{s: s, reg: reg, r: r}
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("", h.getManager).Methods("GET")
	api.HandleFunc("/log", h.getLog).Methods("GET")
	api.HandleFunc("/apps", h.listApps).Methods("GET")
	api.HandleFunc("/apps", h.createApp).Methods("POST")
	api.HandleFunc("/apps/{app}", h.getApp).Methods("GET")
	api.HandleFunc("/apps/{app}", h.updateApp).Methods("PUT")
	api.HandleFunc("/apps/{app}", h.deleteApp).Methods("DELETE")
	api.HandleFunc("/apps/{app}/start", h.startApp).Methods("POST")
	api.HandleFunc("/apps/{app}/stop", h.stopApp).Methods("POST")
	api.HandleFunc("/apps/{app}/status", h.appStatus).Methods("GET")
	return h
}
