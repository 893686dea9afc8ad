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
	"github.com/jezek/xgbutil/icccm"
)

func swallowCount(wm *Wm) int {
	n := 0
	for s := wm.swallows; s != nil; s = s.next {
		n++
	}
	return n
}

func TestSwalRegOnePerClient(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")

	wm.swalReg(term, "Viewer", "", "")
	wm.swalReg(term, "Player", "", "")
	if swallowCount(wm) != 1 {
		t.Fatalf("want 1 registration, got %d", swallowCount(wm))
	}
	if wm.swallows.class != "Player" {
		t.Errorf("registration not updated: %q", wm.swallows.class)
	}
	if wm.swallows.decay != wm.cfg.SwalDecay {
		t.Errorf("decay not reset: %d", wm.swallows.decay)
	}
}

func TestSwallowHappyPath(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")
	term.tags = 1 << 2
	termRect := [4]int{term.x, term.y, term.w, term.h}

	wm.swalReg(term, "Viewer", "", "")

	fw := fake.win(2)
	fw.class = "Viewer"
	fw.title = "image"
	wm.mapRequest(xproto.MapRequestEvent{Window: 2})

	viewer := wm.winToClient(2)
	if viewer == nil {
		t.Fatal("swallowee not managed")
	}
	if viewer.swallowedBy != term {
		t.Fatal("swallow chain not linked")
	}
	if term.swallowedBy != nil {
		t.Error("swallower must terminate the chain")
	}
	if wm.winToClient(1) != nil {
		t.Error("swallower still in the client list")
	}
	if kind, _, root := wm.winToClient2(1); kind != clientSwallower || root != viewer {
		t.Errorf("swallower resolution: kind=%d", kind)
	}
	if viewer.tags != 1<<2 {
		t.Errorf("tags not transferred: %b", viewer.tags)
	}
	if got := [4]int{viewer.x, viewer.y, viewer.w, viewer.h}; got != termRect {
		t.Errorf("geometry %v, want the swallower's %v", got, termRect)
	}
	if fake.mapped[1] {
		t.Error("swallower still mapped")
	}
	if !fake.mapped[2] {
		t.Error("swallowee not mapped")
	}
	if fake.states[1] != icccm.StateWithdrawn {
		t.Error("swallower not withdrawn")
	}
	if swallowCount(wm) != 0 {
		t.Error("registration not consumed")
	}
}

func TestSwallowStopRoundTrip(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")
	wm.swalReg(term, "Viewer", "", "")

	fake.win(2).class = "Viewer"
	wm.mapRequest(xproto.MapRequestEvent{Window: 2})
	viewer := wm.winToClient(2)
	viewer.tags = 1 << 5

	wm.swalStop(viewer, nil)

	if viewer.swallowedBy != nil {
		t.Error("chain link not cleared")
	}
	if wm.winToClient(1) != term {
		t.Fatal("swallower not managed again")
	}
	if term.tags != 1<<5 {
		t.Errorf("tags %b, want inherited %b", term.tags, 1<<5)
	}
	if !fake.mapped[1] {
		t.Error("swallower not remapped")
	}
	if fake.states[1] != icccm.StateNormal {
		t.Error("swallower state not normal")
	}
	// the swallower rejoins right after the swallowee
	if viewer.next != term {
		t.Error("swallower not re-inserted after swallowee")
	}
}

func TestSwallowDecay(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")
	wm.swalReg(term, "Never", "", "")

	for i := 10; i < 13; i++ {
		fake.win(xproto.Window(i)).class = "XTerm"
		wm.mapRequest(xproto.MapRequestEvent{Window: xproto.Window(i)})
	}
	if swallowCount(wm) != 0 {
		t.Fatalf("registration survived %d unmatched maps", wm.cfg.SwalDecay)
	}
}

func TestSwallowChainSurgeryOnDestroy(t *testing.T) {
	wm, fake := newTestWm(t)
	a := addClient(t, wm, fake, 1, "A", "a")
	b := addClient(t, wm, fake, 2, "B", "b")
	c := addClient(t, wm, fake, 3, "C", "c")

	wm.swal(a, b, false) // chain: b -> a
	wm.swal(b, c, false) // chain: c -> b -> a

	if c.swallowedBy != b || b.swallowedBy != a {
		t.Fatal("chain not built")
	}

	// destroying the mid-chain swallower cuts it out; the rest stays
	wm.destroyNotify(xproto.DestroyNotifyEvent{Window: 2})

	if c.swallowedBy != nil {
		t.Error("chain not cut before the dead link")
	}
	if wm.winToClient(1) != a {
		t.Error("tail swallower not re-managed")
	}
	if wm.winToClient(2) != nil {
		t.Error("dead swallower still resolvable")
	}
	if kind, _, _ := wm.winToClient2(2); kind != clientNone {
		t.Errorf("dead swallower still in a chain: kind=%d", kind)
	}
}

func TestSwallowDestroySwallowee(t *testing.T) {
	wm, fake := newTestWm(t)
	a := addClient(t, wm, fake, 1, "A", "a")
	b := addClient(t, wm, fake, 2, "B", "b")
	wm.swal(a, b, false)

	wm.destroyNotify(xproto.DestroyNotifyEvent{Window: 2})

	if wm.winToClient(2) != nil {
		t.Error("destroyed swallowee still managed")
	}
	if wm.winToClient(1) != a {
		t.Error("swallower not restored on swallowee destroy")
	}
}

func TestSwallowersNeverOnMonitorLists(t *testing.T) {
	wm, fake := newTestWm(t)
	a := addClient(t, wm, fake, 1, "A", "a")
	b := addClient(t, wm, fake, 2, "B", "b")
	wm.swal(a, b, false)

	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			if c == a {
				t.Error("swallower on a clients list")
			}
		}
		for c := m.stack; c != nil; c = c.snext {
			if c == a {
				t.Error("swallower on a focus stack")
			}
		}
	}
}

func TestSwallowRetroactive(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")
	other := addClient(t, wm, fake, 2, "Browser", "page")
	wm.swalReg(term, "", "", "download.pdf")

	fake.win(2).title = "download.pdf"
	wm.updateTitle(other)
	wm.swalRetroactive(other)

	if other.swallowedBy != term {
		t.Fatal("retroactive swallow not performed")
	}
}

func TestSwallowUnregOnUnmanage(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")
	wm.swalReg(term, "Viewer", "", "")

	wm.unmanage(term, true)
	if swallowCount(wm) != 0 {
		t.Error("registration survived its target")
	}
}

func TestSwallowCommandChannel(t *testing.T) {
	wm, fake := newTestWm(t)
	term := addClient(t, wm, fake, 1, "Term", "sh")

	cmd, isCmd := parseRootName("#!swalreg###1###Viewer")
	if !isCmd {
		t.Fatal("command not recognized")
	}
	wm.runRootCommand(cmd)
	if swallowCount(wm) != 1 || wm.swallows.client != term {
		t.Fatal("swalreg command not applied")
	}

	fake.win(2).class = "Viewer"
	wm.mapRequest(xproto.MapRequestEvent{Window: 2})
	if wm.winToClient(2).swallowedBy != term {
		t.Fatal("registered swallow not consumed")
	}

	cmd, _ = parseRootName("#!swalstop###2")
	wm.runRootCommand(cmd)
	if wm.winToClient(1) != term {
		t.Error("swalstop command not applied")
	}
}
