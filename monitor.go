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
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// Pertag remembers per-tag configuration. Index 0 is the "all tags"
// view, indexes 1..len(tags) the user tags.
type Pertag struct {
	curtag, prevtag int
	nmasters        []int
	mfacts          []float64
	sellts          []int
	ltidxs          [][2]LayoutKind
	showbars        []bool
}

// Monitor is one logical output.
type Monitor struct {
	num      int
	ltsymbol string
	mfact    float64
	nmaster  int

	mx, my, mw, mh int // screen area
	wx, wy, ww, wh int // window area
	by             int // bar y

	gappih, gappiv int
	gappoh, gappov int

	seltags int
	sellt   int
	tagset  [2]uint
	showbar bool
	topbar  bool

	clients *Client
	sel     *Client
	stack   *Client

	lt     [2]LayoutKind
	pertag *Pertag

	barwin xproto.Window
	tabwin xproto.Window

	// click regions recorded at draw time
	barTagEnds     []int
	barLtEnd       int
	barStatusStart int

	// alt-tab overlay state
	isAlt    bool
	altTabN  int
	altOrder []*Client

	next *Monitor
	wm   *Wm
}

func (wm *Wm) createMon() *Monitor {
	cfg := wm.cfg
	m := &Monitor{
		wm:      wm,
		mfact:   cfg.MFact,
		nmaster: cfg.NMaster,
		showbar: cfg.ShowBar,
		topbar:  cfg.TopBar,
		gappih:  cfg.GapIH,
		gappiv:  cfg.GapIV,
		gappoh:  cfg.GapOH,
		gappov:  cfg.GapOV,
	}
	m.tagset[0], m.tagset[1] = 1, 1
	m.lt[0] = LayoutTile
	m.lt[1] = LayoutMonocle

	mi := 0
	for mon := wm.mons; mon != nil; mon = mon.next {
		mi++
	}
	for _, mr := range cfg.MonitorRules {
		if (mr.Monitor == -1 || mr.Monitor == mi) &&
			(mr.Tag <= 0 || m.tagset[0]&(1<<uint(mr.Tag-1)) != 0) {
			m.lt[0] = clampLayout(mr.Layout)
			if mr.MFact > -1 {
				m.mfact = mr.MFact
			}
			if mr.NMaster > -1 {
				m.nmaster = mr.NMaster
			}
			if mr.ShowBar > -1 {
				m.showbar = mr.ShowBar != 0
			}
			if mr.TopBar > -1 {
				m.topbar = mr.TopBar != 0
			}
			break
		}
	}
	m.ltsymbol = m.lt[0].Symbol()

	n := len(cfg.Tags)
	m.pertag = &Pertag{
		curtag:   1,
		prevtag:  1,
		nmasters: make([]int, n+1),
		mfacts:   make([]float64, n+1),
		sellts:   make([]int, n+1),
		ltidxs:   make([][2]LayoutKind, n+1),
		showbars: make([]bool, n+1),
	}
	for i := 0; i <= n; i++ {
		m.pertag.nmasters[i] = m.nmaster
		m.pertag.mfacts[i] = m.mfact
		m.pertag.sellts[i] = m.sellt
		m.pertag.ltidxs[i] = m.lt
		m.pertag.showbars[i] = m.showbar
		for _, mr := range cfg.MonitorRules {
			if (mr.Monitor == -1 || mr.Monitor == mi) && (mr.Tag == -1 || mr.Tag == i) {
				m.pertag.ltidxs[i][0] = clampLayout(mr.Layout)
				m.pertag.ltidxs[i][1] = m.lt[0]
				if mr.NMaster > -1 {
					m.pertag.nmasters[i] = mr.NMaster
				}
				if mr.MFact > -1 {
					m.pertag.mfacts[i] = mr.MFact
				}
				if mr.ShowBar > -1 {
					m.pertag.showbars[i] = mr.ShowBar != 0
				}
				break
			}
		}
	}
	return m
}

func (wm *Wm) cleanupMon(mon *Monitor) {
	if mon == wm.mons {
		wm.mons = wm.mons.next
	} else {
		m := wm.mons
		for m != nil && m.next != mon {
			m = m.next
		}
		if m != nil {
			m.next = mon.next
		}
	}
	if mon.barwin != 0 {
		wm.srv.UnmapWindow(mon.barwin)
	}
}

func (wm *Wm) updateBarPos(m *Monitor) {
	m.wy = m.my
	m.wh = m.mh
	if m.showbar {
		m.wh = m.wh - wm.cfg.VertPad - wm.bh
		if m.topbar {
			m.by = m.wy
			m.wy = m.wy + wm.bh + wm.vp
		} else {
			m.by = m.wy + m.wh + wm.cfg.VertPad
		}
	} else {
		m.by = -wm.bh - wm.vp
	}
}

// updateGeom reconciles the monitor list with the physical outputs.
// Returns whether anything moved.
func (wm *Wm) updateGeom() bool {
	dirty := false
	heads, err := wm.srv.Heads()
	if err != nil || len(heads) == 0 {
		heads = []head{{0, 0, wm.sw, wm.sh}}
	}
	// only unique geometries count as separate screens
	var unique []head
	for _, h := range heads {
		dup := false
		for _, u := range unique {
			if u == h {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, h)
		}
	}

	n := 0
	for m := wm.mons; m != nil; m = m.next {
		n++
	}
	nn := len(unique)

	if n <= nn {
		for i := 0; i < nn-n; i++ {
			m := wm.mons
			for m != nil && m.next != nil {
				m = m.next
			}
			if m != nil {
				m.next = wm.createMon()
			} else {
				wm.mons = wm.createMon()
			}
		}
		i := 0
		for m := wm.mons; i < nn && m != nil; m = m.next {
			u := unique[i]
			if i >= n || u.x != m.mx || u.y != m.my || u.w != m.mw || u.h != m.mh {
				dirty = true
				m.num = i
				m.mx, m.wx = u.x, u.x
				m.my, m.wy = u.y, u.y
				m.mw, m.ww = u.w, u.w
				m.mh, m.wh = u.h, u.h
				wm.updateBarPos(m)
			}
			i++
		}
	} else {
		for i := nn; i < n; i++ {
			m := wm.mons
			for m != nil && m.next != nil {
				m = m.next
			}
			for m.clients != nil {
				dirty = true
				c := m.clients
				m.clients = c.next
				c.next = nil
				m.detachStack(c)
				c.mon = wm.mons
				wm.attachByPolicy(c)
				c.mon.attachStack(c)
			}
			if m == wm.selmon {
				wm.selmon = wm.mons
			}
			wm.cleanupMon(m)
		}
	}
	if dirty {
		wm.selmon = wm.mons
		wm.selmon = wm.winToMon(wm.root)
	}
	return dirty
}

func (wm *Wm) dirToMon(dir int) *Monitor {
	if dir > 0 {
		if wm.selmon.next != nil {
			return wm.selmon.next
		}
		return wm.mons
	}
	if wm.selmon == wm.mons {
		m := wm.mons
		for m.next != nil {
			m = m.next
		}
		return m
	}
	m := wm.mons
	for m.next != wm.selmon {
		m = m.next
	}
	return m
}

func intersectArea(x, y, w, h int, m *Monitor) int {
	iw := min(x+w, m.wx+m.ww) - max(x, m.wx)
	ih := min(y+h, m.wy+m.wh) - max(y, m.wy)
	return max(0, iw) * max(0, ih)
}

func (wm *Wm) rectToMon(x, y, w, h int) *Monitor {
	r := wm.selmon
	area := 0
	for m := wm.mons; m != nil; m = m.next {
		if a := intersectArea(x, y, w, h, m); a > area {
			area = a
			r = m
		}
	}
	return r
}

func (wm *Wm) winToMon(win xproto.Window) *Monitor {
	if win == wm.root {
		if x, y, ok := wm.srv.PointerPosition(); ok {
			return wm.rectToMon(x, y, 1, 1)
		}
	}
	for m := wm.mons; m != nil; m = m.next {
		if win == m.barwin {
			return m
		}
	}
	if c := wm.winToClient(win); c != nil {
		return c.mon
	}
	return wm.selmon
}

func (wm *Wm) sendMon(c *Client, m *Monitor) {
	if c.mon == m {
		return
	}
	wm.unfocus(c, true)
	c.mon.detach(c)
	c.mon.detachStack(c)
	c.mon = m
	c.tags = m.tagset[m.seltags] // assign tags of target monitor
	wm.attachByPolicy(c)
	m.attachStack(c)
	wm.focus(nil)
	wm.arrange(nil)
}

func (wm *Wm) arrange(m *Monitor) {
	if m != nil {
		wm.showHide(m.stack)
		wm.arrangeMon(m)
		wm.restack(m)
		return
	}
	for m = wm.mons; m != nil; m = m.next {
		wm.showHide(m.stack)
	}
	for m = wm.mons; m != nil; m = m.next {
		wm.arrangeMon(m)
	}
}

func (wm *Wm) arrangeMon(m *Monitor) {
	k := m.lt[m.sellt]
	m.ltsymbol = k.Symbol()
	if k == LayoutMonocle {
		n := 0
		for c := m.clients; c != nil; c = c.next {
			if c.isVisible() {
				n++
			}
		}
		if n > 0 {
			m.ltsymbol = fmt.Sprintf("[%d]", n)
		}
	}
	for _, p := range k.placements(m) {
		wm.resize(p.c, p.x, p.y, p.w, p.h, false)
	}
}

// view switches the active tagset and restores the pertag memory of the
// target view.
func (wm *Wm) view(tags uint) {
	if tags&wm.cfg.tagMask() == wm.selmon.tagset[wm.selmon.seltags] {
		return
	}
	wm.selmon.seltags ^= 1
	pt := wm.selmon.pertag
	if tags&wm.cfg.tagMask() != 0 {
		wm.selmon.tagset[wm.selmon.seltags] = tags & wm.cfg.tagMask()
		pt.prevtag = pt.curtag
		if tags == ^uint(0) {
			pt.curtag = 0
		} else {
			i := 0
			for tags&(1<<uint(i)) == 0 {
				i++
			}
			pt.curtag = i + 1
		}
	} else {
		pt.prevtag, pt.curtag = pt.curtag, pt.prevtag
	}
	wm.applyPertag(wm.selmon)
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

func (wm *Wm) toggleView(tags uint) {
	newtagset := wm.selmon.tagset[wm.selmon.seltags] ^ (tags & wm.cfg.tagMask())
	if newtagset == 0 {
		return
	}
	pt := wm.selmon.pertag
	wm.selmon.tagset[wm.selmon.seltags] = newtagset
	if newtagset == ^uint(0) {
		pt.prevtag = pt.curtag
		pt.curtag = 0
	}
	if pt.curtag > 0 && newtagset&(1<<uint(pt.curtag-1)) == 0 {
		pt.prevtag = pt.curtag
		i := 0
		for newtagset&(1<<uint(i)) == 0 {
			i++
		}
		pt.curtag = i + 1
	}
	wm.applyPertag(wm.selmon)
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

func (wm *Wm) applyPertag(m *Monitor) {
	pt := m.pertag
	m.nmaster = pt.nmasters[pt.curtag]
	m.mfact = pt.mfacts[pt.curtag]
	m.sellt = pt.sellts[pt.curtag]
	m.lt[m.sellt] = pt.ltidxs[pt.curtag][m.sellt]
	m.lt[m.sellt^1] = pt.ltidxs[pt.curtag][m.sellt^1]
	if m.showbar != pt.showbars[pt.curtag] {
		wm.toggleBar()
	}
}

func (wm *Wm) nextTag() uint {
	seltag := wm.selmon.tagset[wm.selmon.seltags]
	if seltag == 1<<uint(len(wm.cfg.Tags)-1) {
		return 1
	}
	return seltag << 1
}

func (wm *Wm) prevTag() uint {
	seltag := wm.selmon.tagset[wm.selmon.seltags]
	if seltag == 1 {
		return 1 << uint(len(wm.cfg.Tags)-1)
	}
	return seltag >> 1
}
