// gowm
//
// Copyright (C) 2022-2023 Karol 'Kenji Takahashi' Woźniak
//
// Permission is hereby granted, free of charge, to any person obtaining
// a copy of this software and associated documentation files (the "Software"),
// to deal in the Software without restriction, including without limitation
// the rights to use, copy, modify, merge, publish, distribute, sublicense,
// and/or sell copies of the Software, and to permit persons to whom the
// Software is furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included
// in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
// DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
// TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE
// OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"errors"
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/icccm"
)

// fakeWindow is the property state a fake X server knows about one
// window.
type fakeWindow struct {
	title       string
	class       string
	instance    string
	transient   xproto.Window
	normalHints *icccm.NormalHints
	hints       *icccm.Hints
	fullscreen  bool
	dialog      bool
}

// fakeServer records every operation the core issues so tests can run
// without a display.
type fakeServer struct {
	windows map[xproto.Window]*fakeWindow

	mapped     map[xproto.Window]bool
	states     map[xproto.Window]uint
	borders    map[xproto.Window]uint32
	fullscreen map[xproto.Window]bool
	protocols  map[xproto.Window][]string
	sent       map[xproto.Window][]string
	killed     []xproto.Window
	clientList []xproto.Window
	heads      []head
	moved      map[xproto.Window][4]int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		windows:    make(map[xproto.Window]*fakeWindow),
		mapped:     make(map[xproto.Window]bool),
		states:     make(map[xproto.Window]uint),
		borders:    make(map[xproto.Window]uint32),
		fullscreen: make(map[xproto.Window]bool),
		protocols:  make(map[xproto.Window][]string),
		sent:       make(map[xproto.Window][]string),
		moved:      make(map[xproto.Window][4]int),
	}
}

func (f *fakeServer) win(w xproto.Window) *fakeWindow {
	fw, ok := f.windows[w]
	if !ok {
		fw = &fakeWindow{}
		f.windows[w] = fw
	}
	return fw
}

func (f *fakeServer) Sync() {}

func (f *fakeServer) MoveResizeWindow(win xproto.Window, x, y, w, h, bw int) {
	f.moved[win] = [4]int{x, y, w, h}
}
func (f *fakeServer) MoveWindow(win xproto.Window, x, y int)                    {}
func (f *fakeServer) ConfigureRaw(win xproto.Window, mask uint16, vals []uint32) {}
func (f *fakeServer) SetBorderWidth(win xproto.Window, bw int)                  {}
func (f *fakeServer) SetBorderColor(win xproto.Window, px uint32)               { f.borders[win] = px }
func (f *fakeServer) MapWindow(win xproto.Window)                               { f.mapped[win] = true }
func (f *fakeServer) UnmapWindow(win xproto.Window)                             { f.mapped[win] = false }
func (f *fakeServer) RaiseWindow(win xproto.Window)                             {}
func (f *fakeServer) StackWindowBelow(win, sibling xproto.Window)               {}
func (f *fakeServer) SelectClientInput(win xproto.Window)                       {}

func (f *fakeServer) SetInputFocus(win xproto.Window)    {}
func (f *fakeServer) FocusRoot()                         {}
func (f *fakeServer) SetActiveWindow(win xproto.Window)  {}
func (f *fakeServer) DeleteActiveWindow()                {}
func (f *fakeServer) GrabClientButtons(win xproto.Window, focused bool) {}

func (f *fakeServer) SetClientState(win xproto.Window, state uint) { f.states[win] = state }

func (f *fakeServer) SendProtocol(win xproto.Window, proto string) bool {
	for _, p := range f.protocols[win] {
		if p == proto {
			f.sent[win] = append(f.sent[win], proto)
			return true
		}
	}
	return false
}

func (f *fakeServer) SetFullscreenProp(win xproto.Window, on bool) { f.fullscreen[win] = on }
func (f *fakeServer) SetUrgencyHint(win xproto.Window, urgent bool) {}
func (f *fakeServer) AppendClientList(win xproto.Window) {
	f.clientList = append(f.clientList, win)
}
func (f *fakeServer) SetClientList(wins []xproto.Window) { f.clientList = wins }
func (f *fakeServer) ConfigureNotify(win xproto.Window, x, y, w, h, bw int) {}

func (f *fakeServer) KillClient(win xproto.Window) { f.killed = append(f.killed, win) }

func (f *fakeServer) Attributes(win xproto.Window) (windowAttrs, error) {
	if _, ok := f.windows[win]; !ok {
		return windowAttrs{}, errors.New("no such window")
	}
	return windowAttrs{x: 0, y: 0, w: 640, h: 480, bw: 1, viewable: true}, nil
}

func (f *fakeServer) Title(win xproto.Window) string { return f.win(win).title }

func (f *fakeServer) Class(win xproto.Window) (string, string) {
	fw := f.win(win)
	return fw.class, fw.instance
}

func (f *fakeServer) TransientFor(win xproto.Window) (xproto.Window, bool) {
	fw := f.win(win)
	return fw.transient, fw.transient != 0
}

func (f *fakeServer) NormalHints(win xproto.Window) (icccm.NormalHints, error) {
	if h := f.win(win).normalHints; h != nil {
		return *h, nil
	}
	return icccm.NormalHints{}, nil
}

func (f *fakeServer) Hints(win xproto.Window) (icccm.Hints, error) {
	if h := f.win(win).hints; h != nil {
		return *h, nil
	}
	return icccm.Hints{}, nil
}

func (f *fakeServer) WindowKind(win xproto.Window) (bool, bool) {
	fw := f.win(win)
	return fw.fullscreen, fw.dialog
}

func (f *fakeServer) Icon(win xproto.Window, size int) *clientIcon { return nil }
func (f *fakeServer) RootName() string                             { return "" }

func (f *fakeServer) Heads() ([]head, error) {
	if len(f.heads) == 0 {
		return []head{{0, 0, 1920, 1080}}, nil
	}
	return f.heads, nil
}

func (f *fakeServer) PointerPosition() (int, int, bool) { return 0, 0, false }

// newTestWm builds a manager around a fake server with one 1920x1080
// monitor and a 23px top bar.
func newTestWm(t *testing.T) (*Wm, *fakeServer) {
	t.Helper()
	cfg := defaultConfig()
	cfg.BarHeight = 23
	cfg.VertPad = 10
	cfg.BorderPx = 0
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}
	sch, err := cfg.resolveSchemes()
	if err != nil {
		t.Fatal(err)
	}
	wm := &Wm{
		cfg:        cfg,
		schemes:    sch,
		sw:         1920,
		sh:         1080,
		bh:         cfg.BarHeight,
		vp:         cfg.VertPad,
		enableGaps: true,
		running:    true,
		signals:    defaultSignals(),
	}
	fake := newFakeServer()
	wm.srv = fake
	wm.updateGeom()
	wm.selmon = wm.mons
	return wm, fake
}

func uint32ToWin(i int) xproto.Window { return xproto.Window(i) }

// addClient registers window properties with the fake server and
// manages the window.
func addClient(t *testing.T, wm *Wm, fake *fakeServer, win xproto.Window, class, title string) *Client {
	t.Helper()
	fw := fake.win(win)
	fw.class = class
	fw.instance = class
	fw.title = title
	wm.manage(win, windowAttrs{x: 10, y: 40, w: 640, h: 480, bw: 1})
	c := wm.winToClient(win)
	if c == nil {
		t.Fatalf("window %d not managed", win)
	}
	return c
}
