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
	"strings"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/icccm"
)

// Swallow is a registered intent: the next mapped window matching the
// filters replaces the target client. Empty filters are wildcards.
type Swallow struct {
	class string
	inst  string
	title string

	// remaining map events before the registration expires
	decay int

	client *Client
	next   *Swallow
}

// swalReg registers (or updates) a swallow targeting c. At most one
// registration exists per client.
func (wm *Wm) swalReg(c *Client, class, inst, title string) {
	if c == nil {
		return
	}
	for s := wm.swallows; s != nil; s = s.next {
		if s.client == c {
			s.class = class
			s.inst = inst
			s.title = title
			s.decay = wm.cfg.SwalDecay
			return
		}
	}
	wm.swallows = &Swallow{
		class:  class,
		inst:   inst,
		title:  title,
		decay:  wm.cfg.SwalDecay,
		client: c,
		next:   wm.swallows,
	}
}

// swalRm deletes one registration, or all of them when s is nil.
func (wm *Wm) swalRm(s *Swallow) {
	if s == nil {
		wm.swallows = nil
		return
	}
	ps := &wm.swallows
	for *ps != nil && *ps != s {
		ps = &(*ps).next
	}
	if *ps != nil {
		*ps = s.next
	}
}

// swalUnreg drops the registration targeting c, if any.
func (wm *Wm) swalUnreg(c *Client) {
	for s := wm.swallows; s != nil; s = s.next {
		if s.client == c {
			wm.swalRm(s)
			break
		}
	}
}

// swalDecayBy ages every registration; spent ones are dropped.
func (wm *Wm) swalDecayBy(decay int) {
	s := wm.swallows
	for s != nil {
		next := s.next
		s.decay -= decay
		if s.decay <= 0 {
			wm.swalRm(s)
		}
		s = next
	}
}

// swalMatch returns the first registration whose filters all match the
// window's class, instance and title.
func (wm *Wm) swalMatch(win xproto.Window) *Swallow {
	class, inst := wm.srv.Class(win)
	title := wm.srv.Title(win)
	for s := wm.swallows; s != nil; s = s.next {
		if strings.Contains(class, s.class) &&
			strings.Contains(inst, s.inst) &&
			strings.Contains(title, s.title) {
			return s
		}
	}
	return nil
}

// swal makes swee occupy swer's place in the client, stack and tag
// world; swer survives only as a link on swee's swallow chain. isNew is
// set when swee was never managed before (swalManage path).
func (wm *Wm) swal(swer, swee *Client, isNew bool) {
	// a swallower being asked to swallow again is ambiguous; drop its
	// own registration instead
	if !isNew {
		wm.swalUnreg(swer)
	}

	// fullscreen swallows produce quirky artefacts
	wm.setFullscreen(swer, false)
	wm.setFullscreen(swee, false)

	sweeFocused := wm.selmon.sel == swee

	swee.mon.detach(swee)
	pc := &swer.mon.clients
	for *pc != nil && *pc != swer {
		pc = &(*pc).next
	}
	*pc = swee
	swee.next = swer.next
	swer.next = nil

	swee.mon.detachStack(swee)
	ps := &swer.mon.stack
	for *ps != nil && *ps != swer {
		ps = &(*ps).snext
	}
	*ps = swee
	swee.snext = swer.snext
	swer.snext = nil

	swee.mon = swer.mon
	if sweeFocused {
		swee.mon.detachStack(swee)
		swee.mon.attachStack(swee)
		wm.selmon = swer.mon
	}
	swee.tags = swer.tags
	swee.isFloating = swer.isFloating

	// append swer to the chain tail
	c := swee
	for c.swallowedBy != nil {
		c = c.swallowedBy
	}
	c.swallowedBy = swer

	// ICCCM 4.1.3.1
	wm.srv.SetClientState(swer.win, icccm.StateWithdrawn)
	if isNew {
		wm.srv.SetClientState(swee.win, icccm.StateNormal)
	}

	if swee.isFloating || swee.mon.lt[swee.mon.sellt] == LayoutFloat {
		wm.srv.RaiseWindow(swee.win)
	}
	wm.resize(swee, swer.x, swer.y, swer.w, swer.h, false)

	wm.focus(nil)
	wm.arrange(nil)
	if isNew {
		wm.srv.MapWindow(swee.win)
	}
	wm.srv.UnmapWindow(swer.win)
	wm.restack(swer.mon)
}

// swalManage is the minimal manage() for a window consumed immediately
// by a matching registration.
func (wm *Wm) swalManage(s *Swallow, win xproto.Window, wa windowAttrs) {
	swer := s.client
	wm.swalRm(s)

	swee := &Client{win: win, cfact: 1.0}
	swee.mon = swer.mon
	swee.oldbw = wa.bw
	swee.bw = wm.cfg.BorderPx
	swee.mon.attach(swee)
	swee.mon.attachStack(swee)
	wm.updateTitle(swee)
	wm.updateSizeHints(swee)
	wm.srv.SelectClientInput(swee.win)
	wm.srv.SetBorderWidth(swee.win, swee.bw)
	wm.srv.GrabClientButtons(swee.win, false)
	wm.srv.AppendClientList(swee.win)

	wm.swal(swer, swee, true)
}

// swalStop reverses one swallow link: the direct swallower of swee is
// re-inserted as a managed sibling. When swee is itself deep in a
// chain, root names the managed chain root carrying the list links.
func (wm *Wm) swalStop(swee, root *Client) {
	if swee == nil || swee.swallowedBy == nil {
		return
	}
	swer := swee.swallowedBy
	swee.swallowedBy = nil
	if root == nil {
		root = swee
	}
	swer.mon = root.mon
	swer.tags = root.tags
	swer.next = root.next
	root.next = swer
	swer.snext = root.snext
	root.snext = swer
	swer.isFloating = swee.isFloating
	swer.cfact = 1.0

	// reuse swee's geometry when swer will not be tiled
	if swer.isFloating || root.mon.lt[root.mon.sellt] == LayoutFloat {
		wm.srv.RaiseWindow(swer.win)
		wm.resize(swer, swee.x, swee.y, swee.w, swee.h, false)
	}

	wm.srv.SetBorderColor(swer.win, wm.borderPixel(swer, false))

	// ICCCM 4.1.3.1
	wm.srv.SetClientState(swer.win, icccm.StateNormal)

	wm.srv.MapWindow(swer.win)
	wm.focus(nil)
	wm.arrange(swer.mon)
}

// swalStopSel terminates the selection's active swallow.
func (wm *Wm) swalStopSel() {
	if wm.selmon.sel != nil {
		wm.swalStop(wm.selmon.sel, nil)
	}
}

// swalRetroactive applies a pending registration to an already managed
// client whose properties now match.
func (wm *Wm) swalRetroactive(c *Client) {
	if !wm.cfg.SwalRetroactive {
		return
	}
	if s := wm.swalMatch(c.win); s != nil && s.client != c {
		wm.swal(s.client, c, false)
	}
}
