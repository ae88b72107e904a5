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
	"github.com/launchman/launchman/rest"
)

var (
	StyleNormal = tcell.StyleDefault.
			Foreground(tcell.ColorSilver).
			Background(tcell.ColorBlack)
	StyleGood = tcell.StyleDefault.
			Foreground(tcell.ColorGreen).
			Background(tcell.ColorBlack)
	StyleError = tcell.StyleDefault.
			Foreground(tcell.ColorMaroon).
			Background(tcell.ColorBlack)
)

// MainPanel lists the registered apps, running ones first.
type MainPanel struct {
	content  *views.CellView
	selected *rest.AppInfo
	nrunning int
	nstopped int
	width    int
	height   int
	curx     int
	cury     int
	lines    []string
	styles   []tcell.Style
	items    []*rest.AppInfo

	Panel
}

// mainModel provides the model for a CellView.
type mainModel struct {
	m *MainPanel
}

func NewMainPanel(app *App, server string) *MainPanel {
	m := &MainPanel{}

	m.Panel.Init(app)
	m.content = views.NewCellView()
	m.SetContent(m.content)

	m.content.SetModel(&mainModel{m})
	m.content.SetStyle(StyleNormal)

	m.SetServer(server)
	m.SetTitle("Apps")
	m.SetKeys([]string{"[Q]uit"})

	return m
}

func (m *MainPanel) Draw() {
	m.update()
	m.Panel.Draw()
}

func (m *MainPanel) HandleEvent(ev tcell.Event) bool {
	app := m.App()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEsc:
			m.unselect()
			return true
		case tcell.KeyF1:
			app.ShowHelp()
			return true
		case tcell.KeyEnter:
			if m.selected != nil {
				app.ShowInfo(m.selected.Id)
				return true
			}
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'Q', 'q':
				app.Quit()
				return true
			case 'H', 'h':
				app.ShowHelp()
				return true
			case 'L', 'l':
				app.ShowLog()
				return true
			case 'I', 'i':
				if m.selected != nil {
					app.ShowInfo(m.selected.Id)
					return true
				}
			case 'S', 's':
				if m.selected != nil && !m.selected.Running {
					app.StartApp(m.selected.Id)
					return true
				}
			case 'X', 'x':
				if m.selected != nil && m.selected.Running {
					app.StopApp(m.selected.Id)
					return true
				}
			}
		}
	}
	return m.Panel.HandleEvent(ev)
}

func (model *mainModel) GetCell(x, y int) (rune, tcell.Style, []rune, int) {
	var ch rune
	var style tcell.Style

	m := model.m

	if y < 0 || y >= len(m.lines) {
		return ch, StyleNormal, nil, 1
	}

	if x >= 0 && x < len(m.lines[y]) {
		ch = rune(m.lines[y][x])
	} else {
		ch = ' '
	}
	style = m.styles[y]
	if m.items[y] == m.selected {
		style = style.Reverse(true)
	}
	return ch, style, nil, 1
}

func (model *mainModel) GetBounds() (int, int) {
	// This assumes that all content is displayable runes of width 1.
	m := model.m
	y := len(m.lines)
	x := 0
	for _, l := range m.lines {
		if x < len(l) {
			x = len(l)
		}
	}
	return x, y
}

func (model *mainModel) GetCursor() (int, int, bool, bool) {
	m := model.m
	return m.curx, m.cury, true, false
}

func (model *mainModel) MoveCursor(offx, offy int) {
	m := model.m
	m.curx += offx
	m.cury += offy
	m.updateCursor(true)
}

func (model *mainModel) SetCursor(x, y int) {
	m := model.m
	m.curx = x
	m.cury = y
	m.updateCursor(true)
}

func (m *MainPanel) unselect() {
	m.cury = 0
	m.curx = 0
	m.updateCursor(false)
}

func (m *MainPanel) updateCursor(selected bool) {
	if m.curx > m.width-1 {
		m.curx = m.width - 1
	}
	if m.cury > m.height-1 {
		m.cury = m.height - 1
	}
	if m.curx < 0 {
		m.curx = 0
	}
	if m.cury < 0 {
		m.cury = 0
	}
	if selected && m.height > 0 {
		if m.selected == nil {
			m.curx = 0
			m.cury = 0
		}
		m.selected = m.items[m.cury]
	} else {
		m.selected = nil
	}
}

// update is called to update content, e.g. in response to Draw() or
// as part of another update.
func (m *MainPanel) update() {

	items, err := m.App().GetItems()
	m.items = items

	// The items are replaced on every refresh; keep the selection by id.
	if sel := m.selected; sel != nil {
		m.selected = nil
		for i, item := range m.items {
			if item.Id == sel.Id {
				m.selected = item
				m.cury = i
			}
		}
	}
	if err != nil {
		m.SetError()
		m.SetStatus(fmt.Sprintf("Cannot load apps: %v", err))
		m.lines = []string{}
		m.styles = []tcell.Style{}
		m.items = nil
		m.selected = nil
		m.width, m.height = 0, 0
		m.SetKeys([]string{"[Q]uit", "[H]elp", "[L]og"})
		return
	}

	lines := make([]string, 0, len(m.items))
	styles := make([]tcell.Style, 0, len(m.items))

	m.nrunning = 0
	m.nstopped = 0
	m.height = 0
	m.width = 0

	for _, info := range items {
		line := fmt.Sprintf("%-24s %-8s %6s  %-7s %s",
			info.Name, util.Status(info), util.FormatPort(info.Port),
			info.Runtime.Kind, info.Id)

		if len(line) > m.width {
			m.width = len(line)
		}
		m.height++

		lines = append(lines, line)
		style := StyleNormal
		if info.Running {
			style = StyleGood
			m.nrunning++
		} else {
			m.nstopped++
		}
		styles = append(styles, style)
	}

	m.lines = lines
	m.styles = styles

	status := fmt.Sprintf("%6d Apps %6d Running %6d Stopped",
		len(m.items), m.nrunning, m.nstopped)
	if notice := m.App().GetNotice(); notice != "" {
		status += "   " + notice
	}
	m.SetStatus(status)
	if m.nrunning > 0 {
		m.SetGood()
	} else {
		m.SetNormal()
	}

	words := []string{"[Q]uit", "[H]elp", "[L]og"}
	if item := m.selected; item != nil {
		words = append(words, "[I]nfo")
		if item.Running {
			words = append(words, "[X] Stop")
		} else {
			words = append(words, "[S]tart")
		}
	}
	m.SetKeys(words)
}
