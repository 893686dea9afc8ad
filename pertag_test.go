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

import "testing"

func TestPertagRemembersLayoutAndMfact(t *testing.T) {
	wm, _ := newTestWm(t)

	// tag 1: monocle, mfact 0.7
	wm.setLayout(LayoutMonocle, true)
	wm.setMFact(1.0 + 0.7) // absolute
	// tag 2: grid
	wm.view(1 << 1)
	wm.setLayout(LayoutGrid, true)
	// back to tag 1
	wm.view(1 << 0)

	if got := wm.selmon.lt[wm.selmon.sellt]; got != LayoutMonocle {
		t.Errorf("layout %v, want monocle", got.Symbol())
	}
	if wm.selmon.mfact != 0.7 {
		t.Errorf("mfact %v, want 0.7", wm.selmon.mfact)
	}
	// and tag 2 still has its own layout
	wm.view(1 << 1)
	if got := wm.selmon.lt[wm.selmon.sellt]; got != LayoutGrid {
		t.Errorf("layout %v, want grid", got.Symbol())
	}
}

func TestViewRoundTrip(t *testing.T) {
	wm, _ := newTestWm(t)
	m := wm.selmon

	type snapshot struct {
		tagset  uint
		nmaster int
		mfact   float64
		sellt   int
		showbar bool
	}
	take := func() snapshot {
		return snapshot{m.tagset[m.seltags], m.nmaster, m.mfact, m.sellt, m.showbar}
	}

	before := take()
	wm.view(1 << 4)
	wm.view(1 << 7)
	wm.view(1 << 0)
	if after := take(); after != before {
		t.Errorf("round trip mismatch: %+v vs %+v", after, before)
	}
}

func TestViewZeroTogglesPrevious(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.view(1 << 3)
	wm.view(0) // back to previous tagset
	if wm.selmon.tagset[wm.selmon.seltags] != 1 {
		t.Errorf("tagset %b, want 1", wm.selmon.tagset[wm.selmon.seltags])
	}
	if wm.selmon.pertag.curtag != 1 {
		t.Errorf("curtag %d, want 1", wm.selmon.pertag.curtag)
	}
}

func TestViewAllUsesSharedSlot(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.view(^uint(0))
	if wm.selmon.pertag.curtag != 0 {
		t.Errorf("curtag %d, want 0 for the all view", wm.selmon.pertag.curtag)
	}
	wm.setLayout(LayoutDwindle, true)
	wm.view(1 << 0)
	wm.view(^uint(0))
	if got := wm.selmon.lt[wm.selmon.sellt]; got != LayoutDwindle {
		t.Errorf("all view layout %v, want dwindle", got.Symbol())
	}
}

func TestToggleViewAccumulates(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.toggleView(1 << 1)
	if got := wm.selmon.tagset[wm.selmon.seltags]; got != (1 | 1<<1) {
		t.Errorf("tagset %b, want %b", got, 1|1<<1)
	}
	// removing the last tag is refused
	wm.toggleView(1 | 1<<1)
	if got := wm.selmon.tagset[wm.selmon.seltags]; got != (1 | 1<<1) {
		t.Errorf("tagset %b changed to empty", got)
	}
}

func TestComboViewAccumulates(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.comboView(1 << 2)
	if !wm.combo {
		t.Fatal("combo latch not set")
	}
	wm.comboView(1 << 5)
	if got := wm.selmon.tagset[wm.selmon.seltags]; got != (1<<2 | 1<<5) {
		t.Errorf("tagset %b, want union", got)
	}
	// key release resets the latch; the next combo starts fresh
	wm.combo = false
	wm.comboView(1 << 1)
	if got := wm.selmon.tagset[wm.selmon.seltags]; got != 1<<1 {
		t.Errorf("tagset %b, want %b", got, 1<<1)
	}
}

func TestComboTagAccumulates(t *testing.T) {
	wm, fake := newTestWm(t)
	c := addClient(t, wm, fake, 1, "XTerm", "a")
	wm.comboTag(1 << 2)
	wm.comboTag(1 << 4)
	if c.tags != (1<<2 | 1<<4) {
		t.Errorf("tags %b, want union", c.tags)
	}
}

func TestPerMonitorRulesSeedPertag(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.cfg.MonitorRules = []MonitorRule{
		{Monitor: -1, Tag: 3, Layout: int(LayoutGrid), MFact: 0.8, NMaster: 2, ShowBar: -1, TopBar: -1},
		{Monitor: -1, Tag: -1, Layout: 0, MFact: -1, NMaster: -1, ShowBar: -1, TopBar: -1},
	}
	m := wm.createMon()
	if m.pertag.ltidxs[3][0] != LayoutGrid {
		t.Errorf("tag rule layout not applied: %v", m.pertag.ltidxs[3][0])
	}
	if m.pertag.mfacts[3] != 0.8 || m.pertag.nmasters[3] != 2 {
		t.Errorf("tag rule mfact/nmaster not applied")
	}
	if m.pertag.ltidxs[2][0] != LayoutTile {
		t.Errorf("wildcard rule not applied to other tags")
	}
}
