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
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"
)

var (
	BarStyleNormal = tcell.StyleDefault.
			Foreground(tcell.ColorBlack).
			Background(tcell.ColorSilver)
	BarStyleAlternate = tcell.StyleDefault.
				Foreground(tcell.ColorNavy).
				Background(tcell.ColorSilver).
				Bold(true)
	BarStyleGood = tcell.StyleDefault.
			Foreground(tcell.ColorWhite).
			Background(tcell.ColorGreen).
			Bold(true)
	BarStyleWarn = tcell.StyleDefault.
			Foreground(tcell.ColorBlack).
			Background(tcell.ColorYellow)
	BarStyleError = tcell.StyleDefault.
			Foreground(tcell.ColorWhite).
			Background(tcell.ColorMaroon).
			Bold(true)
)

// TitleBar shows the server on the left, the panel title in the center,
// and the program name on the right.
type TitleBar struct {
	once sync.Once
	views.SimpleStyledTextBar
}

func (tb *TitleBar) Init() {
	tb.once.Do(func() {
		tb.SimpleStyledTextBar.Init()
		tb.SimpleStyledTextBar.SetStyle(BarStyleNormal)
		for _, r := range []rune{'N', 'A'} {
			style := BarStyleNormal
			if r == 'A' {
				style = BarStyleAlternate
			}
			tb.RegisterLeftStyle(r, style)
			tb.RegisterCenterStyle(r, style)
			tb.RegisterRightStyle(r, style)
		}
	})
}

func NewTitleBar() *TitleBar {
	tb := &TitleBar{}
	tb.Init()
	return tb
}

// StatusBar changes color with the state of what a panel shows, e.g. a
// red background when the daemon cannot be reached.
type StatusBar struct {
	once   sync.Once
	status string
	views.SimpleStyledTextBar
}

func (sb *StatusBar) Init() {
	sb.once.Do(func() {
		sb.SimpleStyledTextBar.Init()
		sb.SetNormal()
	})
}

func (sb *StatusBar) SetStyle(style tcell.Style) {
	sb.SimpleStyledTextBar.SetStyle(style)
	sb.SimpleStyledTextBar.RegisterLeftStyle('N', style)
	sb.SimpleStyledTextBar.SetLeft(sb.status)
}

func (sb *StatusBar) SetGood() {
	sb.SetStyle(BarStyleGood)
}

func (sb *StatusBar) SetNormal() {
	sb.SetStyle(BarStyleNormal)
}

func (sb *StatusBar) SetWarn() {
	sb.SetStyle(BarStyleWarn)
}

func (sb *StatusBar) SetError() {
	sb.SetStyle(BarStyleError)
}

func (sb *StatusBar) SetText(status string) {
	sb.status = escape(status)
	sb.SetLeft(sb.status)
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.Init()
	return sb
}

// KeyBar lists the keys available.  The key in brackets is highlighted,
// as in "[S]tart".
type KeyBar struct {
	once sync.Once
	views.SimpleStyledTextBar
}

func (k *KeyBar) Init() {
	k.once.Do(func() {
		k.SimpleStyledTextBar.Init()
		k.SimpleStyledTextBar.SetStyle(BarStyleNormal)
		k.RegisterLeftStyle('N', BarStyleNormal)
		k.RegisterLeftStyle('A', BarStyleAlternate)
	})
}

func (k *KeyBar) SetKeys(words []string) {
	k.SetLeft(keyMarkup(words))
}

func NewKeyBar() *KeyBar {
	kb := &KeyBar{}
	kb.Init()
	return kb
}

// keyMarkup joins words with spaces, switching to the alternate style
// inside brackets.
func keyMarkup(words []string) string {
	b := make([]rune, 0, 80)
	for i, w := range words {
		if i != 0 && len(w) != 0 {
			b = append(b, ' ')
		}
		for _, r := range w {
			switch r {
			case '[':
				b = append(b, r, '%', 'A')
			case ']':
				b = append(b, '%', 'N', r)
			case '%':
				b = append(b, '%', '%')
			default:
				b = append(b, r)
			}
		}
	}
	return string(b)
}

// escape protects text from being read as style markup.
func escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
