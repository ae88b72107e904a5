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
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"

	"github.com/launchman/launchman/launchman/util"
)

// InfoPanel shows the details of one app.
type InfoPanel struct {
	text *views.TextArea
	id   string

	Panel
}

func NewInfoPanel(app *App) *InfoPanel {
	p := &InfoPanel{}
	p.Panel.Init(app)

	p.text = views.NewTextArea()
	p.text.EnableCursor(false)
	p.text.SetStyle(StyleNormal)
	p.SetContent(p.text)
	return p
}

func (p *InfoPanel) SetId(id string) {
	p.id = id
	p.SetTitle("Details for " + id)
	p.text.SetLines(nil)
}

func (p *InfoPanel) Draw() {
	p.update()
	p.Panel.Draw()
}

func (p *InfoPanel) HandleEvent(ev tcell.Event) bool {
	app := p.App()
	info, _ := app.GetItem(p.id)
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEsc:
			app.ShowMain()
			return true
		case tcell.KeyF1:
			app.ShowHelp()
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'Q', 'q':
				app.ShowMain()
				return true
			case 'H', 'h':
				app.ShowHelp()
				return true
			case 'L', 'l':
				app.ShowLog()
				return true
			case 'S', 's':
				if info != nil && !info.Running {
					app.StartApp(info.Id)
					return true
				}
			case 'X', 'x':
				if info != nil && info.Running {
					app.StopApp(info.Id)
					return true
				}
			}
		}
	}
	return p.Panel.HandleEvent(ev)
}

func (p *InfoPanel) update() {
	info, e := p.App().GetItem(p.id)
	words := []string{"[ESC] Main", "[H]elp", "[L]og"}

	if info == nil {
		p.SetStatus(fmt.Sprintf("No data: %v", e))
		p.SetError()
		p.text.SetLines(nil)
		p.SetKeys(words)
		return
	}

	p.SetStatus(p.App().GetNotice())
	if info.Running {
		p.SetGood()
		words = append(words, "[X] Stop")
	} else {
		p.SetNormal()
		words = append(words, "[S]tart")
	}
	p.text.SetLines(util.Details(info))
	p.SetKeys(words)
}
