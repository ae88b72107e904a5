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

package ui

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/net/context"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"

	"github.com/launchman/launchman/launchman/util"
	"github.com/launchman/launchman/rest"
)

type App struct {
	app       *views.Application
	view      views.View
	panel     views.Widget
	info      *InfoPanel
	help      *HelpPanel
	log       *LogPanel
	main      *MainPanel
	client    *rest.Client
	logger    *log.Logger
	err       error
	items     []*rest.AppInfo
	notice    string
	logInfo   *rest.LogInfo
	logErr    error
	logCancel context.CancelFunc

	views.WidgetWatchers
}

func (a *App) show(w views.Widget) {
	if w != a.panel {
		a.panel.SetView(nil)
		a.panel = w
	}
	a.panel.SetView(a.view)
	a.panel.Resize()
	a.app.Refresh()
}

func (a *App) ShowHelp() {
	a.show(a.help)
}

func (a *App) ShowInfo(id string) {
	a.info.SetId(id)
	a.show(a.info)
}

// ShowLog shows the daemon's log, following it until another panel is
// shown.
func (a *App) ShowLog() {
	a.stopLog()
	ctx, cancel := context.WithCancel(context.Background())
	a.logInfo = nil
	a.logErr = nil
	a.logCancel = cancel
	go a.refreshLog(ctx)

	a.show(a.log)
}

func (a *App) stopLog() {
	if a.logCancel != nil {
		a.logCancel()
		a.logCancel = nil
	}
}

func (a *App) ShowMain() {
	a.stopLog()
	a.show(a.main)
}

// StartApp asks the daemon to start the app.  The request waits for the
// app to settle, so it runs in the background, and its outcome is shown
// as a notice.
func (a *App) StartApp(id string) {
	a.notice = "Starting " + id + " ..."
	go func() {
		r, e := a.client.StartApp(id)
		msg := ""
		switch {
		case e != nil:
			msg = fmt.Sprintf("Failed to start %s: %v", id, e)
		case r.Running:
			msg = fmt.Sprintf("%s: %s", id, r.Message)
		default:
			msg = fmt.Sprintf("%s: %s, but not running", id, r.Message)
		}
		a.Logf("%s", msg)
		a.app.PostFunc(func() {
			a.notice = msg
			a.app.Update()
		})
	}()
}

func (a *App) StopApp(id string) {
	a.notice = "Stopping " + id + " ..."
	go func() {
		msg := id + ": Stopped"
		if _, e := a.client.StopApp(id); e != nil {
			msg = fmt.Sprintf("Failed to stop %s: %v", id, e)
		}
		a.Logf("%s", msg)
		a.app.PostFunc(func() {
			a.notice = msg
			a.app.Update()
		})
	}()
}

func (a *App) Quit() {
	/* This just posts the quit event. */
	a.app.Quit()
}

func (a *App) SetLogger(logger *log.Logger) {
	a.logger = logger
}

func (a *App) Logf(fmt string, v ...interface{}) {
	if a.logger != nil {
		a.logger.Printf(fmt, v...)
	}
}

func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		// Intercept a few control keys up front, for global handling.
		case tcell.KeyCtrlC:
			a.Quit()
			return true
		case tcell.KeyCtrlL:
			a.app.Refresh()
			return true
		}
	}

	if a.panel != nil {
		return a.panel.HandleEvent(ev)
	}
	return false
}

func (a *App) Draw() {
	if a.panel != nil {
		a.panel.Draw()
	}
}

func (a *App) Resize() {
	if a.panel != nil {
		a.panel.Resize()
	}
}

func (a *App) SetView(view views.View) {
	a.view = view
	if a.panel != nil {
		a.panel.SetView(view)
	}
}

func (a *App) Size() (int, int) {
	if a.panel != nil {
		return a.panel.Size()
	}
	return 0, 0
}

func (a *App) GetAppName() string {
	return "Launchman"
}

// GetNotice returns the outcome of the last start or stop.
func (a *App) GetNotice() string {
	return a.notice
}

func NewApp(client *rest.Client, url string) *App {

	app := &App{}
	app.app = &views.Application{}
	app.client = client
	app.info = NewInfoPanel(app)
	app.help = NewHelpPanel(app)
	app.log = NewLogPanel(app)
	app.main = NewMainPanel(app, url)
	app.panel = app.main

	go app.refresh()
	return app
}

func (a *App) getItems() ([]*rest.AppInfo, error) {
	items, e := a.client.Apps()
	if e != nil {
		return nil, e
	}
	util.SortApps(items)
	return items, nil
}

// refresh keeps the app items current.  Launches and stops wake it up
// through the daemon's serial; apps started or stopped outside the daemon
// are noticed when the watch times out.
func (a *App) refresh() {
	client := a.client
	etag := ""
	for {
		items, e := a.getItems()

		a.app.PostFunc(func() {
			a.items = items
			a.err = e
			a.app.Update()
		})
		ctx, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		next, err := client.Watch(ctx, etag)
		expired := ctx.Err() != nil
		cancel()
		if err == nil {
			etag = next
		} else if !expired {
			time.Sleep(2 * time.Second)
		}
	}
}

func (a *App) refreshLog(ctx context.Context) {
	info, e := a.client.GetLog()

	for {
		a.app.PostFunc(func() {
			if ctx.Err() == nil {
				a.logInfo = info
				a.logErr = e
				a.app.Update()
			}
		})
		if e != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			info, e = a.client.GetLog()
			continue
		}
		var next *rest.LogInfo
		if next, e = a.client.WatchLog(ctx, info); e == nil {
			info = next
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (a *App) GetItems() ([]*rest.AppInfo, error) {
	return a.items, a.err
}

func (a *App) GetItem(id string) (*rest.AppInfo, error) {
	if a.err != nil {
		return nil, a.err
	}
	for _, i := range a.items {
		if i.Id == id {
			return i, nil
		}
	}
	return nil, errors.New("App not found")
}

func (a *App) GetLog() (*rest.LogInfo, error) {
	return a.logInfo, a.logErr
}

func (a *App) Run() {
	a.Logf("Starting up user interface")
	a.app.SetRootWidget(a)
	a.ShowMain()
	go func() {
		// Give us periodic updates
		for {
			a.app.Update()
			time.Sleep(time.Second)
		}
	}()
	a.Logf("Starting app loop")
	a.app.Run()
}
