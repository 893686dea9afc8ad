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

const broken = "broken"

// Client is one managed top-level window.
type Client struct {
	win      xproto.Window
	name     string
	class    string
	instance string
	icon     *clientIcon

	mina, maxa float64
	cfact      float64

	x, y, w, h             int
	sfx, sfy, sfw, sfh     int // stored float geometry, used on mode revert
	oldx, oldy, oldw, oldh int
	basew, baseh           int
	incw, inch             int
	maxw, maxh, minw, minh int
	bw, oldbw              int

	tags uint

	isFixed          bool
	isFloating       bool
	isUrgent         bool
	neverFocus       bool
	oldState         bool
	isFullscreen     bool
	isFakeFullscreen bool
	isSteam          bool

	next        *Client
	snext       *Client
	swallowedBy *Client
	mon         *Monitor
}

// Client roles with respect to the swallow machinery.
const (
	clientNone = iota
	clientRegular
	clientSwallowee
	clientSwallower
)

func (c *Client) width() int  { return c.w + 2*c.bw }
func (c *Client) height() int { return c.h + 2*c.bw }

func (c *Client) isVisibleOnTag(tags uint) bool {
	return c.tags&tags != 0
}

func (c *Client) isVisible() bool {
	return c.isVisibleOnTag(c.mon.tagset[c.mon.seltags])
}

// applySizeHints clamps the requested geometry against the monitor (or
// the whole screen when driven by the mouse) and enforces the ICCCM
// base/increment/min/max/aspect constraints. It is a pure computation;
// the second return reports whether the result differs from the
// client's current geometry.
func (c *Client) applySizeHints(x, y, w, h int, interact bool) (int, int, int, int, bool) {
	wm := c.mon.wm
	m := c.mon

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if interact {
		if x > wm.sw {
			x = wm.sw - c.width()
		}
		if y > wm.sh {
			y = wm.sh - c.height()
		}
		if x+w+2*c.bw < 0 {
			x = 0
		}
		if y+h+2*c.bw < 0 {
			y = 0
		}
	} else {
		if x >= m.wx+m.ww {
			x = m.wx + m.ww - c.width()
		}
		if y >= m.wy+m.wh {
			y = m.wy + m.wh - c.height()
		}
		if x+w+2*c.bw <= m.wx {
			x = m.wx
		}
		if y+h+2*c.bw <= m.wy {
			y = m.wy
		}
	}
	if h < wm.bh {
		h = wm.bh
	}
	if w < wm.bh {
		w = wm.bh
	}
	if wm.cfg.ResizeHints || c.isFloating || m.lt[m.sellt] == LayoutFloat {
		// ICCCM 4.1.2.3: base dimensions are excluded while increments
		// are applied, and also while the aspect ratio is applied unless
		// base equals minimum.
		baseIsMin := c.basew == c.minw && c.baseh == c.minh
		if !baseIsMin {
			w -= c.basew
			h -= c.baseh
		}
		if c.mina > 0 && c.maxa > 0 {
			if c.maxa < float64(w)/float64(h) {
				w = int(float64(h)*c.maxa + 0.5)
			} else if c.mina < float64(h)/float64(w) {
				h = int(float64(w)*c.mina + 0.5)
			}
		}
		if baseIsMin {
			w -= c.basew
			h -= c.baseh
		}
		if c.incw > 0 {
			w -= w % c.incw
		}
		if c.inch > 0 {
			h -= h % c.inch
		}
		w = max(w+c.basew, c.minw)
		h = max(h+c.baseh, c.minh)
		if c.maxw > 0 {
			w = min(w, c.maxw)
		}
		if c.maxh > 0 {
			h = min(h, c.maxh)
		}
	}
	return x, y, w, h, x != c.x || y != c.y || w != c.w || h != c.h
}

func (wm *Wm) resize(c *Client, x, y, w, h int, interact bool) {
	if nx, ny, nw, nh, changed := c.applySizeHints(x, y, w, h, interact); changed {
		wm.resizeClient(c, nx, ny, nw, nh)
	}
}

func (wm *Wm) resizeClient(c *Client, x, y, w, h int) {
	c.oldx, c.x = c.x, x
	c.oldy, c.y = c.y, y
	c.oldw, c.w = c.w, w
	c.oldh, c.h = c.h, h
	wm.srv.MoveResizeWindow(c.win, x, y, w, h, c.bw)
	wm.srv.ConfigureNotify(c.win, c.x, c.y, c.w, c.h, c.bw)
	wm.srv.Sync()
}

// manage adopts a window into the client model. wa carries the window's
// pre-management geometry and border.
func (wm *Wm) manage(win xproto.Window, wa windowAttrs) {
	c := &Client{win: win, cfact: 1.0}
	c.x, c.oldx = wa.x, wa.x
	c.y, c.oldy = wa.y, wa.y
	c.w, c.oldw = wa.w, wa.w
	c.h, c.oldh = wa.h, wa.h
	c.oldbw = wa.bw

	wm.updateTitle(c)
	wm.updateIcon(c)

	var trans xproto.Window
	if t, ok := wm.srv.TransientFor(win); ok {
		if tc := wm.winToClient(t); tc != nil {
			trans = t
			c.mon = tc.mon
			c.tags = tc.tags
		}
	}
	if c.mon == nil {
		c.mon = wm.selmon
		wm.applyRules(c)
	}

	if c.x+c.width() > c.mon.mx+c.mon.mw {
		c.x = c.mon.mx + c.mon.mw - c.width()
	}
	if c.y+c.height() > c.mon.my+c.mon.mh {
		c.y = c.mon.my + c.mon.mh - c.height()
	}
	c.x = max(c.x, c.mon.mx)
	// only fix the y-offset when the client center might cover the bar
	if c.mon.by == c.mon.my && c.x+c.w/2 >= c.mon.wx && c.x+c.w/2 < c.mon.wx+c.mon.ww {
		c.y = max(c.y, wm.bh)
	} else {
		c.y = max(c.y, c.mon.my)
	}
	c.bw = wm.cfg.BorderPx

	wm.srv.SetBorderWidth(c.win, c.bw)
	wm.srv.SetBorderColor(c.win, wm.borderPixel(c, false))
	wm.srv.ConfigureNotify(c.win, c.x, c.y, c.w, c.h, c.bw)
	wm.updateWindowType(c)
	wm.updateSizeHints(c)
	wm.updateWMHints(c)
	c.sfx, c.sfy, c.sfw, c.sfh = c.x, c.y, c.w, c.h
	wm.srv.SelectClientInput(c.win)
	wm.srv.GrabClientButtons(c.win, false)
	if !c.isFloating {
		c.isFloating = trans != 0 || c.isFixed
		c.oldState = c.isFloating
	}
	if c.isFloating {
		wm.srv.RaiseWindow(c.win)
	}
	wm.attachByPolicy(c)
	c.mon.attachStack(c)
	wm.srv.AppendClientList(c.win)
	// move offscreen until arrange settles; some clients need the nudge
	wm.srv.MoveResizeWindow(c.win, c.x+2*wm.sw, c.y, c.w, c.h, c.bw)
	wm.srv.SetClientState(c.win, icccm.StateNormal)
	if c.mon == wm.selmon {
		wm.unfocus(wm.selmon.sel, false)
	}
	c.mon.sel = c
	wm.arrange(c.mon)
	wm.srv.MapWindow(c.win)
	wm.focus(nil)
}

// unmanage removes a client. destroyed is set when the window is
// already gone from the server.
func (wm *Wm) unmanage(c *Client, destroyed bool) {
	m := c.mon

	wm.swalUnreg(c)
	if c == wm.mark {
		wm.setMark(nil)
	}
	m.detach(c)
	m.detachStack(c)
	c.icon = nil
	if !destroyed {
		wm.srv.SetBorderWidth(c.win, c.oldbw)
		wm.srv.SetClientState(c.win, icccm.StateWithdrawn)
		wm.srv.Sync()
	}
	if wm.scratchpadLast == c {
		wm.scratchpadLast = nil
	}
	wm.focus(nil)
	wm.updateClientList()
	wm.arrange(m)
}

func (wm *Wm) attachByPolicy(c *Client) {
	switch wm.cfg.attachDirection() {
	case AttachAbove:
		c.mon.attachAbove(c)
	case AttachAside:
		c.mon.attachAside(c)
	case AttachBelow:
		c.mon.attachBelow(c)
	case AttachBottom:
		c.mon.attachBottom(c)
	case AttachTop:
		c.mon.attachTop(c)
	default:
		c.mon.attach(c)
	}
}

func (m *Monitor) attach(c *Client) {
	c.next = m.clients
	m.clients = c
}

func (m *Monitor) attachAbove(c *Client) {
	if m.sel == nil || m.sel == m.clients || m.sel.isFloating {
		m.attach(c)
		return
	}
	at := m.clients
	for at.next != m.sel {
		at = at.next
	}
	c.next = at.next
	at.next = c
}

func (m *Monitor) attachAside(c *Client) {
	at := m.nextTagged(c)
	if at == nil {
		m.attach(c)
		return
	}
	c.next = at.next
	at.next = c
}

func (m *Monitor) attachBelow(c *Client) {
	if m.sel == nil || m.sel == c || m.sel.isFloating {
		m.attach(c)
		return
	}
	c.next = m.sel.next
	m.sel.next = c
}

func (m *Monitor) attachBottom(c *Client) {
	c.next = nil
	below := m.clients
	for below != nil && below.next != nil {
		below = below.next
	}
	if below != nil {
		below.next = c
	} else {
		m.clients = c
	}
}

// attachTop inserts at the nmaster boundary among the clients sharing
// c's tags.
func (m *Monitor) attachTop(c *Client) {
	n := 1
	below := m.clients
	for below != nil && below.next != nil &&
		(below.isFloating || !below.isVisibleOnTag(c.tags) || n != m.nmaster) {
		if !below.isFloating && below.isVisibleOnTag(c.tags) {
			n++
		}
		below = below.next
	}
	c.next = nil
	if below != nil {
		c.next = below.next
		below.next = c
	} else {
		m.clients = c
	}
}

func (m *Monitor) attachStack(c *Client) {
	c.snext = m.stack
	m.stack = c
}

func (m *Monitor) detach(c *Client) {
	tc := &m.clients
	for *tc != nil && *tc != c {
		tc = &(*tc).next
	}
	if *tc != nil {
		*tc = c.next
	}
	c.next = nil
}

func (m *Monitor) detachStack(c *Client) {
	tc := &m.stack
	for *tc != nil && *tc != c {
		tc = &(*tc).snext
	}
	if *tc != nil {
		*tc = c.snext
	}
	c.snext = nil

	if c == m.sel {
		t := m.stack
		for t != nil && !t.isVisible() {
			t = t.snext
		}
		m.sel = t
	}
}

// nextTiled returns the first non-floating visible client starting at c.
func nextTiled(c *Client) *Client {
	for c != nil && (c.isFloating || !c.isVisible()) {
		c = c.next
	}
	return c
}

func (m *Monitor) prevTiled(c *Client) *Client {
	var r *Client
	for p := m.clients; p != nil && p != c; p = p.next {
		if !p.isFloating && p.isVisible() {
			r = p
		}
	}
	return r
}

func (m *Monitor) nextTagged(c *Client) *Client {
	walked := m.clients
	for walked != nil && (walked.isFloating || !walked.isVisibleOnTag(c.tags)) {
		walked = walked.next
	}
	return walked
}

// tiled collects the visible non-floating clients in tile order.
func (m *Monitor) tiled() []*Client {
	var out []*Client
	for c := nextTiled(m.clients); c != nil; c = nextTiled(c.next) {
		out = append(out, c)
	}
	return out
}

func (wm *Wm) applyRules(c *Client) {
	c.isFloating = false
	c.tags = 0
	c.class, c.instance = wm.srv.Class(c.win)
	class, instance := c.class, c.instance
	if class == "" {
		class = broken
	}
	if instance == "" {
		instance = broken
	}

	if strings.Contains(class, "Steam") || strings.Contains(class, "steam_app_") {
		c.isSteam = true
	}

	for _, r := range wm.cfg.Rules {
		if (r.Title == "" || strings.Contains(c.name, r.Title)) &&
			(r.Class == "" || strings.Contains(class, r.Class)) &&
			(r.Instance == "" || strings.Contains(instance, r.Instance)) {
			c.isFloating = r.IsFloating
			c.isFakeFullscreen = r.IsFakeFullscreen
			c.tags |= r.Tags
			if r.IsFloating {
				c.x = r.FloatX
				c.y = r.FloatY
				c.w = r.FloatW
				c.h = r.FloatH
			}
			for m := wm.mons; m != nil; m = m.next {
				if m.num == r.Monitor {
					c.mon = m
					break
				}
			}
		}
	}
	if c.tags != wm.cfg.scratchpadMask() {
		if c.tags&wm.cfg.tagMask() != 0 {
			c.tags &= wm.cfg.tagMask()
		} else {
			c.tags = c.mon.tagset[c.mon.seltags]
		}
	}
}

func (wm *Wm) updateTitle(c *Client) {
	c.name = wm.srv.Title(c.win)
	if c.name == "" {
		c.name = broken
	}
}

func (wm *Wm) updateIcon(c *Client) {
	c.icon = wm.srv.Icon(c.win, wm.iconSize())
}

func (wm *Wm) updateSizeHints(c *Client) {
	size, err := wm.srv.NormalHints(c.win)
	if err != nil {
		size = icccm.NormalHints{}
	}
	switch {
	case size.Flags&icccm.SizeHintPBaseSize != 0:
		c.basew = int(size.BaseWidth)
		c.baseh = int(size.BaseHeight)
	case size.Flags&icccm.SizeHintPMinSize != 0:
		c.basew = int(size.MinWidth)
		c.baseh = int(size.MinHeight)
	default:
		c.basew, c.baseh = 0, 0
	}
	if size.Flags&icccm.SizeHintPResizeInc != 0 {
		c.incw = int(size.WidthInc)
		c.inch = int(size.HeightInc)
	} else {
		c.incw, c.inch = 0, 0
	}
	if size.Flags&icccm.SizeHintPMaxSize != 0 {
		c.maxw = int(size.MaxWidth)
		c.maxh = int(size.MaxHeight)
	} else {
		c.maxw, c.maxh = 0, 0
	}
	switch {
	case size.Flags&icccm.SizeHintPMinSize != 0:
		c.minw = int(size.MinWidth)
		c.minh = int(size.MinHeight)
	case size.Flags&icccm.SizeHintPBaseSize != 0:
		c.minw = int(size.BaseWidth)
		c.minh = int(size.BaseHeight)
	default:
		c.minw, c.minh = 0, 0
	}
	if size.Flags&icccm.SizeHintPAspect != 0 && size.MinAspectNum > 0 && size.MaxAspectDen > 0 {
		c.mina = float64(size.MinAspectDen) / float64(size.MinAspectNum)
		c.maxa = float64(size.MaxAspectNum) / float64(size.MaxAspectDen)
	} else {
		c.mina, c.maxa = 0, 0
	}
	c.isFixed = c.maxw != 0 && c.maxh != 0 && c.maxw == c.minw && c.maxh == c.minh
}

func (wm *Wm) updateWMHints(c *Client) {
	hints, err := wm.srv.Hints(c.win)
	if err != nil {
		return
	}
	if c == wm.selmon.sel && hints.Flags&icccm.HintUrgency != 0 {
		wm.srv.SetUrgencyHint(c.win, false)
	} else {
		c.isUrgent = hints.Flags&icccm.HintUrgency != 0
	}
	if hints.Flags&icccm.HintInput != 0 {
		c.neverFocus = hints.Input == 0
	} else {
		c.neverFocus = false
	}
}

func (wm *Wm) updateWindowType(c *Client) {
	fullscreen, dialog := wm.srv.WindowKind(c.win)
	if fullscreen {
		wm.setFullscreen(c, true)
	}
	if dialog {
		c.isFloating = true
	}
}

func (wm *Wm) setUrgent(c *Client, urgent bool) {
	c.isUrgent = urgent
	wm.srv.SetUrgencyHint(c.win, urgent)
}

func (wm *Wm) setFullscreen(c *Client, fullscreen bool) {
	if fullscreen && !c.isFullscreen {
		wm.srv.SetFullscreenProp(c.win, true)
		c.isFullscreen = true
		if c.isFakeFullscreen {
			wm.resizeClient(c, c.x, c.y, c.w, c.h)
			return
		}
		c.oldState = c.isFloating
		c.oldbw = c.bw
		c.bw = 0
		c.isFloating = true
		wm.resizeClient(c, c.mon.mx, c.mon.my, c.mon.mw, c.mon.mh)
		wm.srv.RaiseWindow(c.win)
	} else if !fullscreen && c.isFullscreen {
		wm.srv.SetFullscreenProp(c.win, false)
		c.isFullscreen = false
		if c.isFakeFullscreen {
			wm.resizeClient(c, c.x, c.y, c.w, c.h)
			return
		}
		c.isFloating = c.oldState
		c.bw = c.oldbw
		c.x, c.y, c.w, c.h = c.oldx, c.oldy, c.oldw, c.oldh
		wm.resizeClient(c, c.x, c.y, c.w, c.h)
		wm.arrange(c.mon)
	}
}

// showHide walks the focus stack, placing visible clients and parking
// hidden ones offscreen, top down then bottom up.
func (wm *Wm) showHide(c *Client) {
	if c == nil {
		return
	}
	if c.isVisible() {
		wm.srv.MoveWindow(c.win, c.x, c.y)
		if (c.mon.lt[c.mon.sellt] == LayoutFloat || c.isFloating) &&
			(!c.isFullscreen || c.isFakeFullscreen) {
			wm.resize(c, c.x, c.y, c.w, c.h, false)
		}
		wm.showHide(c.snext)
	} else {
		wm.showHide(c.snext)
		wm.srv.MoveWindow(c.win, c.width()*-2, c.y)
	}
}

func (wm *Wm) winToClient(win xproto.Window) *Client {
	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			if c.win == win {
				return c
			}
		}
	}
	return nil
}

// winToClient2 resolves a window against the client model including
// swallow chains. For swallowers, root receives the managed chain root.
func (wm *Wm) winToClient2(win xproto.Window) (kind int, c *Client, root *Client) {
	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			if c.win == win {
				if c.swallowedBy != nil {
					return clientSwallowee, c, nil
				}
				return clientRegular, c, nil
			}
			for d := c.swallowedBy; d != nil; d = d.swallowedBy {
				if d.win == win {
					return clientSwallower, d, c
				}
			}
		}
	}
	return clientNone, nil, nil
}

func (wm *Wm) updateClientList() {
	var wins []xproto.Window
	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			for d := c; d != nil; d = d.swallowedBy {
				wins = append(wins, d.win)
			}
		}
	}
	wm.srv.SetClientList(wins)
}

func (wm *Wm) iconSize() int {
	if wm.bh > 4 {
		return wm.bh - 4
	}
	return 16
}

func (wm *Wm) borderPixel(c *Client, focused bool) uint32 {
	switch {
	case focused && c == wm.mark:
		return pixel(wm.schemes.selMark.border)
	case focused:
		return pixel(wm.schemes.sel.border)
	case c == wm.mark:
		return pixel(wm.schemes.normMark.border)
	default:
		return pixel(wm.schemes.norm.border)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
