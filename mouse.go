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
	"github.com/jezek/xgb/xproto"
)

// Mouse drives run their own nested event loops. ConfigureRequest,
// Expose and MapRequest events are handed to the regular handlers so
// the session stays responsive mid-drag.

const mouseMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

func (wm *Wm) grabPointer(cursor xproto.Cursor) bool {
	reply, err := xproto.GrabPointer(wm.conn, false, wm.root, mouseMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, 0, cursor,
		xproto.TimeCurrentTime).Reply()
	return err == nil && reply != nil && reply.Status == xproto.GrabStatusSuccess
}

func (wm *Wm) ungrabPointer() {
	xproto.UngrabPointer(wm.conn, xproto.TimeCurrentTime)
}

// drainPointerEvents flushes events accumulated during a drag. Stray
// EnterNotify events are discarded to keep focus where the drag left
// it; everything else is dispatched normally.
func (wm *Wm) drainPointerEvents() {
	for {
		ev, err := wm.conn.PollForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			wm.handleXError(err)
			continue
		}
		if _, ok := ev.(xproto.EnterNotifyEvent); ok {
			continue
		}
		wm.dispatch(ev)
	}
}

func (wm *Wm) moveMouse() {
	c := wm.selmon.sel
	if c == nil {
		return
	}
	if c.isFullscreen && !c.isFakeFullscreen {
		return // no moving fullscreen windows by mouse
	}
	wm.restack(wm.selmon)
	ocx, ocy := c.x, c.y
	if !wm.grabPointer(wm.cursors.move) {
		return
	}
	defer wm.ungrabPointer()
	px, py, ok := wm.srv.PointerPosition()
	if !ok {
		return
	}

	snap := wm.cfg.Snap
	var lastTime uint32
	for {
		ev, err := wm.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			wm.handleXError(err)
			continue
		}
		switch e := ev.(type) {
		case xproto.ConfigureRequestEvent, xproto.ExposeEvent, xproto.MapRequestEvent:
			wm.dispatch(ev)
		case xproto.MotionNotifyEvent:
			if uint32(e.Time)-lastTime <= 1000/60 {
				continue
			}
			lastTime = uint32(e.Time)

			nx := ocx + int(e.RootX) - px
			ny := ocy + int(e.RootY) - py
			if abs(wm.selmon.wx-nx) < snap {
				nx = wm.selmon.wx
			} else if abs((wm.selmon.wx+wm.selmon.ww)-(nx+c.width())) < snap {
				nx = wm.selmon.wx + wm.selmon.ww - c.width()
			}
			if abs(wm.selmon.wy-ny) < snap {
				ny = wm.selmon.wy
			} else if abs((wm.selmon.wy+wm.selmon.wh)-(ny+c.height())) < snap {
				ny = wm.selmon.wy + wm.selmon.wh - c.height()
			}
			if !c.isFloating && wm.selmon.lt[wm.selmon.sellt] != LayoutFloat &&
				(abs(nx-c.x) > snap || abs(ny-c.y) > snap) {
				wm.toggleFloating()
			}
			if wm.selmon.lt[wm.selmon.sellt] == LayoutFloat || c.isFloating {
				wm.resize(c, nx, ny, c.w, c.h, true)
			}
		case xproto.ButtonReleaseEvent:
			wm.finishMouseDrag(c)
			return
		}
	}
}

func (wm *Wm) resizeMouse() {
	c := wm.selmon.sel
	if c == nil {
		return
	}
	if c.isFullscreen && !c.isFakeFullscreen {
		return // no resizing fullscreen windows by mouse
	}
	wm.restack(wm.selmon)
	ocx, ocy := c.x, c.y
	if !wm.grabPointer(wm.cursors.resize) {
		return
	}
	defer wm.ungrabPointer()
	wm.warpToCorner(c)

	snap := wm.cfg.Snap
	var lastTime uint32
	for {
		ev, err := wm.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			wm.handleXError(err)
			continue
		}
		switch e := ev.(type) {
		case xproto.ConfigureRequestEvent, xproto.ExposeEvent, xproto.MapRequestEvent:
			wm.dispatch(ev)
		case xproto.MotionNotifyEvent:
			if uint32(e.Time)-lastTime <= 1000/60 {
				continue
			}
			lastTime = uint32(e.Time)

			nw := max(int(e.RootX)-ocx-2*c.bw+1, 1)
			nh := max(int(e.RootY)-ocy-2*c.bw+1, 1)
			if c.mon.wx+nw >= wm.selmon.wx && c.mon.wx+nw <= wm.selmon.wx+wm.selmon.ww &&
				c.mon.wy+nh >= wm.selmon.wy && c.mon.wy+nh <= wm.selmon.wy+wm.selmon.wh {
				if !c.isFloating && wm.selmon.lt[wm.selmon.sellt] != LayoutFloat &&
					(abs(nw-c.w) > snap || abs(nh-c.h) > snap) {
					wm.toggleFloating()
				}
			}
			if wm.selmon.lt[wm.selmon.sellt] == LayoutFloat || c.isFloating {
				wm.resize(c, c.x, c.y, nw, nh, true)
			}
		case xproto.ButtonReleaseEvent:
			wm.warpToCorner(c)
			wm.drainPointerEvents()
			wm.finishMouseDrag(c)
			return
		}
	}
}

// swalMouse drags the selection onto a window which then swallows it.
func (wm *Wm) swalMouse() {
	swee := wm.selmon.sel
	if swee == nil {
		return
	}
	if !wm.grabPointer(wm.cursors.swal) {
		return
	}
	defer wm.ungrabPointer()

	for {
		ev, err := wm.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			wm.handleXError(err)
			continue
		}
		switch e := ev.(type) {
		case xproto.ConfigureRequestEvent, xproto.ExposeEvent, xproto.MapRequestEvent:
			wm.dispatch(ev)
		case xproto.ButtonReleaseEvent:
			if swer := wm.winToClient(e.Child); swer != nil && swer != swee {
				wm.swal(swer, swee, false)
			}
			wm.drainPointerEvents()
			return
		}
	}
}

// finishMouseDrag hands the client over when the drag ended on another
// monitor.
func (wm *Wm) finishMouseDrag(c *Client) {
	if m := wm.rectToMon(c.x, c.y, c.w, c.h); m != wm.selmon {
		wm.sendMon(c, m)
		wm.selmon = m
		wm.focus(nil)
	}
}

func (wm *Wm) warpToCorner(c *Client) {
	xproto.WarpPointer(wm.conn, 0, c.win, 0, 0, 0, 0,
		int16(c.w+c.bw-1), int16(c.h+c.bw-1))
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
