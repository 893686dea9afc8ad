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

// The scratchpad is a reserved tag bit above the user tags holding
// "drop-down" windows. One client at a time is tracked as last shown.

func (wm *Wm) scratchpadHide() {
	if wm.selmon.sel == nil {
		return
	}
	wm.selmon.sel.tags = wm.cfg.scratchpadMask()
	wm.selmon.sel.isFloating = true
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

func (wm *Wm) scratchpadLastShowedIsKilled() bool {
	for c := wm.selmon.clients; c != nil; c = c.next {
		if c == wm.scratchpadLast {
			return false
		}
	}
	return true
}

func (wm *Wm) scratchpadRemove() {
	if wm.selmon.sel != nil && wm.scratchpadLast != nil && wm.selmon.sel == wm.scratchpadLast {
		wm.scratchpadLast = nil
	}
}

func (wm *Wm) scratchpadShow() {
	if wm.scratchpadLast == nil || wm.scratchpadLastShowedIsKilled() {
		wm.scratchpadShowFirst()
		return
	}
	if wm.scratchpadLast.tags != wm.cfg.scratchpadMask() {
		wm.scratchpadLast.tags = wm.cfg.scratchpadMask()
		wm.focus(nil)
		wm.arrange(wm.selmon)
		return
	}
	foundCurrent := false
	for c := wm.selmon.clients; c != nil; c = c.next {
		if !foundCurrent {
			if c == wm.scratchpadLast {
				foundCurrent = true
			}
			continue
		}
		if c.tags == wm.cfg.scratchpadMask() {
			wm.scratchpadShowClient(c)
			return
		}
	}
	wm.scratchpadShowFirst()
}

func (wm *Wm) scratchpadShowClient(c *Client) {
	wm.scratchpadLast = c
	c.tags = wm.selmon.tagset[wm.selmon.seltags]
	wm.focus(c)
	wm.arrange(wm.selmon)
}

func (wm *Wm) scratchpadShowFirst() {
	for c := wm.selmon.clients; c != nil; c = c.next {
		if c.tags == wm.cfg.scratchpadMask() {
			wm.scratchpadShowClient(c)
			break
		}
	}
}
