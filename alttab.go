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
	"image"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/xgraphics"
	"github.com/jezek/xgbutil/xwindow"
	"golang.org/x/exp/slices"
	"golang.org/x/image/math/fixed"
	log "github.com/sirupsen/logrus"
)

// The alt-tab overlay is a keyboard-grabbed modal cycle over the
// monitor's visible clients in focus order.

// rotateTabOrder moves the chosen entry to the front, shifting the ones
// before it down one slot, so repeated cycles keep a most-recent order.
func rotateTabOrder(order []*Client, chosen int) {
	if chosen <= 0 || chosen >= len(order) {
		return
	}
	buf := order[chosen]
	if chosen > 1 {
		copy(order[1:chosen+1], order[0:chosen])
	} else {
		order[chosen] = order[0]
	}
	order[0] = buf
}

func (wm *Wm) altTabStart(dir int) {
	m := wm.selmon
	if m.tabwin != 0 || m.isAlt {
		wm.altTabEnd()
		return
	}
	m.isAlt = true
	m.altTabN = 0
	m.altOrder = nil

	for c := m.stack; c != nil; c = c.snext {
		if c.isVisible() {
			m.altOrder = append(m.altOrder, c)
		}
	}
	if len(m.altOrder) == 0 {
		wm.altTabEnd()
		return
	}

	wm.drawTab(true)

	// grab the keyboard, retrying for about a second
	grabbed := false
	for i := 0; i < 1000; i++ {
		reply, err := xproto.GrabKeyboard(wm.conn, true, wm.root,
			xproto.TimeCurrentTime, xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
		if err == nil && reply != nil && reply.Status == xproto.GrabStatusSuccess {
			grabbed = true
			break
		}
		time.Sleep(time.Millisecond)
	}

	cycle := dir
	wm.altTab(cycle)
	if !grabbed {
		wm.altTabEnd()
		return
	}

	for {
		ev, err := wm.conn.WaitForEvent()
		if ev == nil && err == nil {
			break
		}
		if err != nil {
			wm.handleXError(err)
			continue
		}
		switch e := ev.(type) {
		case xproto.KeyReleaseEvent:
			if slices.Contains(wm.tabKeys.mod, e.Detail) {
				// hold key released; the cycle ends
				c := wm.selmon.sel
				wm.altTabEnd()
				xproto.UngrabKeyboard(wm.conn, xproto.TimeCurrentTime)
				wm.focus(c)
				wm.restack(wm.selmon)
				return
			}
			if slices.Contains(wm.tabKeys.reverse, e.Detail) {
				cycle = -cycle
			}
		case xproto.KeyPressEvent:
			switch {
			case slices.Contains(wm.tabKeys.reverse, e.Detail):
				cycle = -cycle
			case slices.Contains(wm.tabKeys.cycle, e.Detail):
				wm.altTab(cycle)
			}
		}
	}
	wm.altTabEnd()
	xproto.UngrabKeyboard(wm.conn, xproto.TimeCurrentTime)
}

// altTab advances the candidate and repaints the overlay.
func (wm *Wm) altTab(cycle int) {
	m := wm.selmon
	if m.sel != nil && len(m.altOrder) > 1 {
		m.altTabN += cycle
		if m.altTabN >= len(m.altOrder) {
			m.altTabN = 0
		}
		if m.altTabN < 0 {
			m.altTabN = len(m.altOrder) - 1
		}
		wm.focus(m.altOrder[m.altTabN])
		wm.restack(m)
	}
	if m.tabwin != 0 {
		wm.srv.RaiseWindow(m.tabwin)
	}
	wm.drawTab(false)
}

// altTabEnd finalises the cycle: the chosen client moves to the front
// of the snapshot, which is then refocused bottom to top so the focus
// stack matches the new order.
func (wm *Wm) altTabEnd() {
	m := wm.selmon
	if !m.isAlt {
		return
	}
	if len(m.altOrder) > 1 {
		rotateTabOrder(m.altOrder, m.altTabN)
		for i := len(m.altOrder) - 1; i >= 0; i-- {
			wm.focus(m.altOrder[i])
			wm.restack(m)
		}
	}
	m.altOrder = nil
	m.isAlt = false
	m.altTabN = 0
	if m.tabwin != 0 {
		wm.srv.UnmapWindow(m.tabwin)
		xproto.DestroyWindow(wm.conn, m.tabwin)
		m.tabwin = 0
	}
}

// drawTab creates (on first call) and repaints the overlay window.
func (wm *Wm) drawTab(first bool) {
	m := wm.selmon
	cfg := wm.cfg
	w, h := cfg.TabMaxW, cfg.TabMaxH

	if first {
		posX, posY := m.mx, m.my
		switch cfg.TabPosX {
		case 1:
			posX += m.mw/2 - w/2
		case 2:
			posX += m.mw - w
		}
		switch cfg.TabPosY {
		case 0:
			posY += m.mh - h
		case 1:
			posY += m.mh/2 - h/2
		}
		win, err := xwindow.Generate(wm.X)
		if err != nil {
			log.WithError(err).Warn("tab window")
			return
		}
		err = win.CreateChecked(wm.root, posX, posY, w, h,
			xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
			pixel(wm.schemes.norm.bg), 1,
			xproto.EventMaskButtonPress|xproto.EventMaskExposure)
		if err != nil {
			log.WithError(err).Warn("tab window")
			return
		}
		m.tabwin = win.Id
		xproto.ChangeWindowAttributes(wm.conn, m.tabwin,
			xproto.CwCursor, []uint32{uint32(wm.cursors.normal)})
		win.Map()
		wm.srv.RaiseWindow(m.tabwin)
	}
	if m.tabwin == 0 || len(m.altOrder) == 0 {
		return
	}

	img := xgraphics.New(wm.X, image.Rect(0, 0, w, h))
	defer img.Destroy()
	norm := wm.schemes.norm
	img.For(func(x, y int) xgraphics.BGRA { return norm.bg })

	rowH := h / len(m.altOrder)
	y := 0
	for _, c := range m.altOrder {
		if !c.isVisible() {
			continue
		}
		sch := norm
		if c == m.sel {
			sch = wm.schemes.sel
		}
		fillRect(img, 0, y, w, rowH, sch.bg)
		ty := y + (rowH-wm.bar.fontHeight)/2
		img.Text(fixed.P(wm.lrpad/2, ty), &sch.fg, wm.bar.face, c.name)
		y += rowH
	}

	img.XSurfaceSet(m.tabwin)
	img.XDraw()
	img.XPaint(m.tabwin)
}
