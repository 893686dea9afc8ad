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
	"testing"

	"github.com/jezek/xgb/xproto"
)

func clientOrder(m *Monitor) []xproto.Window {
	var out []xproto.Window
	for c := m.clients; c != nil; c = c.next {
		out = append(out, c.win)
	}
	return out
}

func sameOrder(a []xproto.Window, b ...xproto.Window) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplySizeHintsFixedPoint(t *testing.T) {
	wm, fake := newTestWm(t)
	c := addClient(t, wm, fake, 1, "XTerm", "a")
	wm.arrange(wm.selmon)

	x, y, w, h, changed := c.applySizeHints(c.x, c.y, c.w, c.h, false)
	if changed {
		t.Errorf("resize not at fixed point: (%d,%d,%d,%d) vs (%d,%d,%d,%d)",
			x, y, w, h, c.x, c.y, c.w, c.h)
	}
}

func TestApplySizeHintsIncrements(t *testing.T) {
	wm, fake := newTestWm(t)
	c := addClient(t, wm, fake, 1, "XTerm", "a")
	c.basew, c.baseh = 2, 4
	c.incw, c.inch = 7, 13
	c.minw, c.minh = 30, 30

	_, _, w, h, _ := c.applySizeHints(c.x, c.y, 500, 400, false)
	if (w-c.basew)%7 != 0 {
		t.Errorf("width %d not snapped to increment", w)
	}
	if (h-c.baseh)%13 != 0 {
		t.Errorf("height %d not snapped to increment", h)
	}
}

func TestApplySizeHintsMinMax(t *testing.T) {
	wm, fake := newTestWm(t)
	c := addClient(t, wm, fake, 1, "XTerm", "a")
	c.minw, c.minh = 100, 100
	c.maxw, c.maxh = 300, 200

	_, _, w, h, _ := c.applySizeHints(c.x, c.y, 1000, 50, false)
	if w != 300 {
		t.Errorf("width %d, want clamped to 300", w)
	}
	if h != 100 {
		t.Errorf("height %d, want clamped to 100", h)
	}
}

func TestApplySizeHintsAspect(t *testing.T) {
	wm, fake := newTestWm(t)
	c := addClient(t, wm, fake, 1, "XTerm", "a")
	c.mina, c.maxa = 1.0, 1.0 // square only

	_, _, w, h, _ := c.applySizeHints(c.x, c.y, 800, 400, false)
	if w != h {
		t.Errorf("aspect not enforced: %dx%d", w, h)
	}
}

func TestApplySizeHintsMinimumCell(t *testing.T) {
	wm, fake := newTestWm(t)
	c := addClient(t, wm, fake, 1, "XTerm", "a")

	_, _, w, h, _ := c.applySizeHints(c.x, c.y, 1, 1, false)
	if w < wm.bh || h < wm.bh {
		t.Errorf("dimensions %dx%d below bar height %d", w, h, wm.bh)
	}
}

func TestAttachDirections(t *testing.T) {
	mk := func() (*Wm, *Monitor, *Client, *Client) {
		wm, _ := newTestWm(t)
		m := wm.selmon
		a := &Client{win: 1, mon: m, tags: 1, cfact: 1}
		b := &Client{win: 2, mon: m, tags: 1, cfact: 1}
		m.attach(a)
		m.attachStack(a)
		m.sel = a
		return wm, m, a, b
	}

	t.Run("head", func(t *testing.T) {
		_, m, _, b := mk()
		m.attach(b)
		if !sameOrder(clientOrder(m), 2, 1) {
			t.Errorf("order %v", clientOrder(m))
		}
	})
	t.Run("bottom", func(t *testing.T) {
		_, m, _, b := mk()
		m.attachBottom(b)
		if !sameOrder(clientOrder(m), 1, 2) {
			t.Errorf("order %v", clientOrder(m))
		}
	})
	t.Run("below", func(t *testing.T) {
		_, m, _, b := mk()
		m.attachBelow(b)
		if !sameOrder(clientOrder(m), 1, 2) {
			t.Errorf("order %v", clientOrder(m))
		}
	})
	t.Run("above", func(t *testing.T) {
		_, m, a, b := mk()
		c := &Client{win: 3, mon: m, tags: 1, cfact: 1}
		m.attachBottom(b)
		m.sel = b
		m.attachAbove(c)
		if !sameOrder(clientOrder(m), 1, 3, 2) {
			t.Errorf("order %v", clientOrder(m))
		}
		_ = a
	})
	t.Run("aside", func(t *testing.T) {
		_, m, _, b := mk()
		m.attachAside(b)
		if !sameOrder(clientOrder(m), 1, 2) {
			t.Errorf("order %v", clientOrder(m))
		}
	})
	t.Run("top", func(t *testing.T) {
		_, m, _, b := mk()
		c := &Client{win: 3, mon: m, tags: 1, cfact: 1}
		m.attachBottom(b)
		m.nmaster = 1
		m.attachTop(c)
		if !sameOrder(clientOrder(m), 1, 3, 2) {
			t.Errorf("order %v", clientOrder(m))
		}
	})
}

func TestDetachKeepsInvariant(t *testing.T) {
	wm, fake := newTestWm(t)
	a := addClient(t, wm, fake, 1, "XTerm", "a")
	b := addClient(t, wm, fake, 2, "XTerm", "b")
	m := wm.selmon

	m.detach(a)
	m.detachStack(a)
	if !sameOrder(clientOrder(m), 2) {
		t.Errorf("order %v", clientOrder(m))
	}
	for s := m.stack; s != nil; s = s.snext {
		if s == a {
			t.Error("detached client still on focus stack")
		}
	}
	if m.sel != b {
		t.Errorf("sel %v, want b", m.sel)
	}
}

func TestUnmanageRemovesEverywhere(t *testing.T) {
	wm, fake := newTestWm(t)
	a := addClient(t, wm, fake, 1, "XTerm", "a")
	b := addClient(t, wm, fake, 2, "XTerm", "b")
	wm.setMark(a)
	wm.scratchpadLast = a

	wm.unmanage(a, false)

	if wm.winToClient(1) != nil {
		t.Error("client still resolvable")
	}
	if wm.mark != nil {
		t.Error("mark not cleared")
	}
	if wm.scratchpadLast != nil {
		t.Error("scratchpad tracker not cleared")
	}
	if wm.selmon.sel != b {
		t.Error("selection not moved to survivor")
	}
}

// Every managed client must live on exactly one monitor's lists.
func TestClientMonitorInvariant(t *testing.T) {
	wm, fake := newTestWm(t)
	fake.heads = []head{{0, 0, 1920, 1080}, {1920, 0, 1920, 1080}}
	wm.updateGeom()

	a := addClient(t, wm, fake, 1, "XTerm", "a")
	wm.sendMon(a, wm.mons.next)

	count := 0
	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			if c == a {
				if c.mon != m {
					t.Error("client monitor back-reference wrong")
				}
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("client on %d monitors, want 1", count)
	}
}

func TestMonitorShrinkMigratesClients(t *testing.T) {
	wm, fake := newTestWm(t)
	fake.heads = []head{{0, 0, 1920, 1080}, {1920, 0, 1920, 1080}}
	wm.updateGeom()

	a := addClient(t, wm, fake, 1, "XTerm", "a")
	wm.sendMon(a, wm.mons.next)
	a.tags = 1 << 3

	fake.heads = []head{{0, 0, 1920, 1080}}
	wm.updateGeom()

	if wm.mons.next != nil {
		t.Fatal("surplus monitor not removed")
	}
	if a.mon != wm.mons {
		t.Error("client not migrated to first monitor")
	}
	if a.tags != 1<<3 {
		t.Error("tags not preserved across migration")
	}
}

func TestRulesAssignTagsAndFloating(t *testing.T) {
	wm, fake := newTestWm(t)
	wm.cfg.Rules = []Rule{
		{Class: "Gimp", Tags: 1 << 4, IsFloating: true, Monitor: -1,
			FloatX: 50, FloatY: 50, FloatW: 500, FloatH: 400},
	}
	c := addClient(t, wm, fake, 1, "Gimp", "gimp")
	if c.tags != 1<<4 {
		t.Errorf("tags %b, want %b", c.tags, 1<<4)
	}
	if !c.isFloating {
		t.Error("floating flag not applied")
	}
}

func TestUnruledClientInheritsViewTags(t *testing.T) {
	wm, fake := newTestWm(t)
	wm.view(1 << 2)
	c := addClient(t, wm, fake, 1, "XTerm", "a")
	if c.tags != 1<<2 {
		t.Errorf("tags %b, want current view %b", c.tags, 1<<2)
	}
}

func TestKillClientFallsBackToKill(t *testing.T) {
	wm, fake := newTestWm(t)
	addClient(t, wm, fake, 1, "XTerm", "a")
	wm.killClient()
	if len(fake.killed) != 1 || fake.killed[0] != 1 {
		t.Errorf("kill not issued: %v", fake.killed)
	}

	fake.protocols[2] = []string{"WM_DELETE_WINDOW"}
	addClient(t, wm, fake, 2, "XTerm", "b")
	wm.killClient()
	if len(fake.killed) != 1 {
		t.Error("killed a client that supports WM_DELETE_WINDOW")
	}
	if len(fake.sent[2]) != 1 {
		t.Error("WM_DELETE_WINDOW not sent")
	}
}
