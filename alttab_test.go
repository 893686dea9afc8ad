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

func names(order []*Client) []string {
	out := make([]string, len(order))
	for i, c := range order {
		out[i] = c.name
	}
	return out
}

func TestRotateTabOrder(t *testing.T) {
	mk := func() []*Client {
		return []*Client{{name: "a"}, {name: "b"}, {name: "c"}, {name: "d"}}
	}

	order := mk()
	rotateTabOrder(order, 2)
	if got := names(order); got[0] != "c" || got[1] != "a" || got[2] != "b" || got[3] != "d" {
		t.Errorf("rotate 2: %v", got)
	}

	order = mk()
	rotateTabOrder(order, 1)
	if got := names(order); got[0] != "b" || got[1] != "a" {
		t.Errorf("rotate 1: %v", got)
	}

	order = mk()
	rotateTabOrder(order, 0)
	if got := names(order); got[0] != "a" {
		t.Errorf("rotate 0 changed order: %v", got)
	}
}

func TestComboResetOnRelease(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.combo = true
	wm.dispatch(xproto.KeyReleaseEvent{})
	if wm.combo {
		t.Error("combo latch not reset by key release")
	}
	wm.combo = true
	wm.dispatch(xproto.ButtonReleaseEvent{})
	if wm.combo {
		t.Error("combo latch not reset by button release")
	}
}

func TestInternalCommandMessages(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.cmdAtom = 999

	msg := func(op uint32) xproto.ClientMessageEvent {
		return xproto.ClientMessageEvent{
			Format: 32,
			Window: wm.root,
			Type:   999,
			Data:   xproto.ClientMessageDataUnionData32New([]uint32{op, 0, 0, 0, 0}),
		}
	}

	wm.dispatch(msg(internalQuit))
	if wm.running || wm.restart {
		t.Error("internal quit not handled")
	}

	wm.running = true
	wm.cfg.SessionFile = t.TempDir() + "/session"
	wm.dispatch(msg(internalRestart))
	if wm.running || !wm.restart {
		t.Error("internal restart not handled")
	}
}

func TestInternalSetLayoutMessage(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.cmdAtom = 999
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wm.root,
		Type:   999,
		Data: xproto.ClientMessageDataUnionData32New(
			[]uint32{internalSetLayout, uint32(LayoutGrid), 0, 0, 0}),
	}
	wm.dispatch(ev)
	if wm.selmon.lt[wm.selmon.sellt] != LayoutGrid {
		t.Errorf("layout %v", wm.selmon.lt[wm.selmon.sellt].Symbol())
	}
}
