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
	"bufio"
	"fmt"
	"os"

	"github.com/jezek/xgb/xproto"
)

// saveSession writes "<winid> <tagmask>" per managed client so a
// restart can put every window back on its tags.
func (wm *Wm) saveSession() error {
	f, err := os.Create(wm.cfg.SessionFile)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			fmt.Fprintf(w, "%d %d\n", c.win, c.tags)
		}
	}
	return w.Flush()
}

// restoreSession reapplies saved tag masks to clients adopted by scan.
// Lines whose window is no longer managed are skipped; the file is
// removed afterwards.
func (wm *Wm) restoreSession() {
	f, err := os.Open(wm.cfg.SessionFile)
	if err != nil {
		return
	}
	defer os.Remove(wm.cfg.SessionFile)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var (
			win  uint64
			tags uint
		)
		if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &win, &tags); err != nil {
			break
		}
		if c := wm.winToClient(xproto.Window(win)); c != nil && tags != 0 {
			c.tags = tags
		}
	}

	for m := wm.mons; m != nil; m = m.next {
		for c := m.clients; c != nil; c = c.next {
			wm.focus(c)
			wm.restack(c.mon)
		}
		wm.arrange(m)
	}
}
