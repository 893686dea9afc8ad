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

// focus moves input focus to c, or to the topmost visible client of the
// focus stack when c is nil or hidden.
func (wm *Wm) focus(c *Client) {
	if c == nil || !c.isVisible() {
		c = wm.selmon.stack
		for c != nil && !c.isVisible() {
			c = c.snext
		}
	}
	if wm.selmon.sel != nil && wm.selmon.sel != c {
		wm.unfocus(wm.selmon.sel, false)
	}
	if c != nil {
		if c.mon != wm.selmon {
			wm.selmon = c.mon
		}
		if c.isUrgent {
			wm.setUrgent(c, false)
		}
		c.mon.detachStack(c)
		c.mon.attachStack(c)
		c.mon.sel = c
		wm.srv.GrabClientButtons(c.win, true)
		wm.srv.SetBorderColor(c.win, wm.borderPixel(c, true))
		wm.setFocus(c)
	} else {
		wm.srv.FocusRoot()
		wm.srv.DeleteActiveWindow()
	}
	wm.selmon.sel = c
	wm.drawBars()
}

func (wm *Wm) unfocus(c *Client, setFocus bool) {
	if c == nil {
		return
	}
	wm.srv.GrabClientButtons(c.win, false)
	wm.srv.SetBorderColor(c.win, wm.borderPixel(c, false))
	if setFocus {
		wm.srv.FocusRoot()
		wm.srv.DeleteActiveWindow()
	}
}

func (wm *Wm) setFocus(c *Client) {
	if !c.neverFocus {
		wm.srv.SetInputFocus(c.win)
		wm.srv.SetActiveWindow(c.win)
	}
	wm.srv.SendProtocol(c.win, "WM_TAKE_FOCUS")
}

// focusStack advances the selection through the visible clients,
// wrapping at either end. Focus is pinned while a real fullscreen
// client is selected and the lock is configured.
func (wm *Wm) focusStack(dir int) {
	sel := wm.selmon.sel
	if sel == nil || (sel.isFullscreen && !sel.isFakeFullscreen && wm.cfg.LockFullscreen) {
		return
	}
	var c *Client
	if dir > 0 {
		for c = sel.next; c != nil && !c.isVisible(); c = c.next {
		}
		if c == nil {
			for c = wm.selmon.clients; c != nil && !c.isVisible(); c = c.next {
			}
		}
	} else {
		var i *Client
		for i = wm.selmon.clients; i != sel; i = i.next {
			if i.isVisible() {
				c = i
			}
		}
		if c == nil {
			for ; i != nil; i = i.next {
				if i.isVisible() {
					c = i
				}
			}
		}
	}
	if c != nil {
		wm.focus(c)
		wm.restack(wm.selmon)
	}
}

func (wm *Wm) focusMon(dir int) {
	if wm.mons.next == nil {
		return
	}
	m := wm.dirToMon(dir)
	if m == wm.selmon {
		return
	}
	wm.unfocus(wm.selmon.sel, true)
	wm.selmon = m
	wm.focus(nil)
}

// restack reorders the server-side stacking: the selection on top when
// floating, tiled clients below the bar in focus order.
func (wm *Wm) restack(m *Monitor) {
	wm.drawBar(m)
	if m.sel == nil {
		return
	}
	if m.sel.isFloating || m.lt[m.sellt] == LayoutFloat {
		wm.srv.RaiseWindow(m.sel.win)
	}
	if m.lt[m.sellt] != LayoutFloat {
		sibling := m.barwin
		for c := m.stack; c != nil; c = c.snext {
			if !c.isFloating && c.isVisible() {
				wm.srv.StackWindowBelow(c.win, sibling)
				sibling = c.win
			}
		}
	}
	wm.srv.Sync()
}

// pop promotes c to the head of the tile order.
func (wm *Wm) pop(c *Client) {
	c.mon.detach(c)
	c.mon.attach(c)
	wm.focus(c)
	wm.arrange(c.mon)
}

func (wm *Wm) zoom() {
	c := wm.selmon.sel
	if wm.selmon.lt[wm.selmon.sellt] == LayoutFloat || (c != nil && c.isFloating) {
		return
	}
	if c == nextTiled(wm.selmon.clients) {
		if c == nil {
			return
		}
		if c = nextTiled(c.next); c == nil {
			return
		}
	}
	wm.pop(c)
}

func (wm *Wm) pushDown() {
	sel := wm.selmon.sel
	if sel == nil || sel.isFloating {
		return
	}
	if c := nextTiled(sel.next); c != nil {
		wm.selmon.detach(sel)
		sel.next = c.next
		c.next = sel
	} else {
		wm.selmon.detach(sel)
		wm.selmon.attach(sel)
	}
	wm.focus(sel)
	wm.arrange(wm.selmon)
}

func (wm *Wm) pushUp() {
	sel := wm.selmon.sel
	if sel == nil || sel.isFloating {
		return
	}
	if c := wm.selmon.prevTiled(sel); c != nil {
		wm.selmon.detach(sel)
		sel.next = c
		if wm.selmon.clients == c {
			wm.selmon.clients = sel
		} else {
			p := wm.selmon.clients
			for p.next != sel.next {
				p = p.next
			}
			p.next = sel
		}
	} else {
		c := sel
		for c.next != nil {
			c = c.next
		}
		if c != sel {
			wm.selmon.detach(sel)
			sel.next = nil
			c.next = sel
		}
	}
	wm.focus(sel)
	wm.arrange(wm.selmon)
}

// setMark moves the move/swap anchor, restoring the previous holder's
// border.
func (wm *Wm) setMark(c *Client) {
	if c == wm.mark {
		return
	}
	if wm.mark != nil {
		old := wm.mark
		wm.mark = nil
		wm.srv.SetBorderColor(old.win, wm.borderPixel(old, old == wm.selmon.sel))
	}
	if c != nil {
		wm.mark = c
		wm.srv.SetBorderColor(c.win, wm.borderPixel(c, c == wm.selmon.sel))
	}
}

func (wm *Wm) toggleMark() {
	if wm.selmon.sel == nil {
		return
	}
	if wm.selmon.sel == wm.mark {
		wm.setMark(nil)
	} else {
		wm.setMark(wm.selmon.sel)
	}
}

// swapFocus exchanges selection and mark; if the mark lives on another
// view, the view switches to it.
func (wm *Wm) swapFocus() {
	if wm.selmon.sel == nil || wm.mark == nil || wm.selmon.sel == wm.mark {
		return
	}
	t := wm.selmon.sel
	if wm.mark.mon != wm.selmon {
		wm.unfocus(wm.selmon.sel, false)
		wm.selmon = wm.mark.mon
	}
	if wm.mark.isVisible() {
		wm.focus(wm.mark)
		wm.restack(wm.selmon)
	} else {
		wm.selmon.seltags ^= 1
		wm.selmon.tagset[wm.selmon.seltags] = wm.mark.tags
		wm.focus(wm.mark)
		wm.arrange(wm.selmon)
	}
	wm.setMark(t)
}

// swapClient exchanges the window payloads of selection and mark while
// both keep their positions in the lists.
func (wm *Wm) swapClient() {
	if wm.mark == nil || wm.selmon.sel == nil || wm.mark == wm.selmon.sel ||
		wm.selmon.lt[wm.selmon.sellt] == LayoutFloat {
		return
	}
	s, m := wm.selmon.sel, wm.mark
	s.win, m.win = m.win, s.win
	s.name, m.name = m.name, s.name
	s.x, m.x = m.x, s.x
	s.y, m.y = m.y, s.y
	s.w, m.w = m.w, s.w
	s.h, m.h = m.h, s.h

	wm.selmon.sel = m
	wm.mark = s
	wm.focus(s)
	wm.setMark(m)

	wm.arrange(s.mon)
	if s.mon != m.mon {
		wm.arrange(m.mon)
	}
}
