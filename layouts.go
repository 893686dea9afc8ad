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

// LayoutKind enumerates the tiling algorithms. LayoutFloat arranges
// nothing; clients keep their own geometry.
type LayoutKind int

const (
	LayoutTile LayoutKind = iota
	LayoutMonocle
	LayoutDwindle
	LayoutGrid
	LayoutNRowGrid
	LayoutHorizGrid
	LayoutGaplessGrid
	LayoutCenteredMaster
	LayoutCenteredFloatingMaster
	LayoutFloat

	layoutCount
)

var layoutSymbols = [layoutCount]string{
	LayoutTile:                   "[]=",
	LayoutMonocle:                "[M]",
	LayoutDwindle:                "[\\]",
	LayoutGrid:                   "HHH",
	LayoutNRowGrid:               "###",
	LayoutHorizGrid:              "---",
	LayoutGaplessGrid:            ":::",
	LayoutCenteredMaster:         "|M|",
	LayoutCenteredFloatingMaster: ">M>",
	LayoutFloat:                  "><>",
}

// Symbol is the canonical layout identity, written verbatim into the bar.
func (k LayoutKind) Symbol() string {
	if k < 0 || k >= layoutCount {
		return layoutSymbols[LayoutTile]
	}
	return layoutSymbols[k]
}

func clampLayout(i int) LayoutKind {
	if i < 0 {
		i = 0
	}
	if i >= int(layoutCount) {
		i = int(layoutCount) - 1
	}
	return LayoutKind(i)
}

// placement is a computed target rectangle for one client.
type placement struct {
	c          *Client
	x, y, w, h int
}

// placements computes the target geometry of every visible tiled client
// without touching the server.
func (k LayoutKind) placements(m *Monitor) []placement {
	switch k {
	case LayoutTile:
		return tilePlacements(m)
	case LayoutMonocle:
		return monoclePlacements(m)
	case LayoutDwindle:
		return dwindlePlacements(m)
	case LayoutGrid:
		return gridPlacements(m)
	case LayoutNRowGrid:
		return nrowgridPlacements(m)
	case LayoutHorizGrid:
		return horizgridPlacements(m)
	case LayoutGaplessGrid:
		return gaplessgridPlacements(m)
	case LayoutCenteredMaster:
		return centeredMasterPlacements(m)
	case LayoutCenteredFloatingMaster:
		return centeredFloatingMasterPlacements(m)
	default:
		return nil
	}
}

// getGaps resolves the effective gap sizes for a monitor. Outer gaps
// vanish when the smart-gap count matches the tiled population or when
// gaps are globally disabled.
func (m *Monitor) getGaps() (oh, ov, ih, iv int, tiled []*Client) {
	tiled = m.tiled()
	oe, ie := 1, 1
	if !m.wm.enableGaps {
		oe, ie = 0, 0
	}
	if m.wm.cfg.SmartGaps > 0 && len(tiled) == m.wm.cfg.SmartGaps {
		oe = 0
	}
	return m.gappoh * oe, m.gappov * oe, m.gappih * ie, m.gappiv * ie, tiled
}

// cfactSums splits the weight totals of a tiled slice at the nmaster
// boundary.
func cfactSums(tiled []*Client, nmaster int) (mfacts, sfacts float64) {
	for i, c := range tiled {
		if i < nmaster {
			mfacts += c.cfact
		} else {
			sfacts += c.cfact
		}
	}
	return mfacts, sfacts
}

// tilePlacements is the classic vertical split with the master column
// on the left. Heights within a column are distributed by cfact.
func tilePlacements(m *Monitor) []placement {
	oh, ov, ih, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}

	mx := m.wx + ov
	my := m.wy + oh
	mwTotal := m.ww - 2*ov
	mhTotal := m.wh - 2*oh

	mw, sw, sx := mwTotal, 0, mx
	if n > m.nmaster {
		if m.nmaster > 0 {
			mw = int(float64(mwTotal-iv) * m.mfact)
			sw = mwTotal - iv - mw
			sx = mx + mw + iv
		} else {
			mw = 0
			sw = mwTotal
			sx = mx
		}
	}

	mfacts, sfacts := cfactSums(tiled, m.nmaster)
	sy := my
	var out []placement
	for i, c := range tiled {
		if i < m.nmaster {
			h := int(float64(mhTotal)*(c.cfact/mfacts)) - ih
			out = append(out, placement{c, mx, my, mw - 2*c.bw, h - 2*c.bw})
			my += h + ih
		} else {
			h := int(float64(mhTotal)*(c.cfact/sfacts)) - ih
			out = append(out, placement{c, sx, sy, sw - 2*c.bw, h - 2*c.bw})
			sy += h + ih
		}
	}
	return out
}

// monoclePlacements stacks every tiled client onto the full usable
// area. Horizontal outer gaps pad both axes; clients shrunk by their
// size hints are centered.
func monoclePlacements(m *Monitor) []placement {
	oh, _, _, _, tiled := m.getGaps()
	if len(tiled) == 0 {
		return nil
	}
	var out []placement
	for _, c := range tiled {
		var x, y, w, h int
		if oh == 0 {
			x = m.wx - c.bw
			y = m.wy - c.bw
			w = m.ww
			h = m.wh
		} else {
			x = m.wx + oh - c.bw
			y = m.wy + oh - c.bw
			w = m.ww - 2*(oh+c.bw)
			h = m.wh - 2*(oh+c.bw)
		}
		nx, ny, nw, nh, _ := c.applySizeHints(x, y, w, h, false)
		if nw < m.ww {
			nx = m.wx + (m.ww-(nw+2*c.bw))/2
		}
		if nh < m.wh {
			ny = m.wy + (m.wh-(nh+2*c.bw))/2
		}
		out = append(out, placement{c, nx, ny, nw, nh})
	}
	return out
}

// dwindlePlacements recursively halves the remaining rectangle,
// alternating the split orientation.
func dwindlePlacements(m *Monitor) []placement {
	oh, ov, ih, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}
	x, y := m.wx+ov, m.wy+oh
	w, h := m.ww-2*ov, m.wh-2*oh
	var out []placement
	for i, c := range tiled {
		cw, ch := w, h
		if i < n-1 {
			if i%2 == 0 {
				cw = (w - iv) / 2
			} else {
				ch = (h - ih) / 2
			}
		}
		out = append(out, placement{c, x, y, cw - 2*c.bw, ch - 2*c.bw})
		if i%2 == 0 {
			x += cw + iv
			w -= cw + iv
		} else {
			y += ch + ih
			h -= ch + ih
		}
	}
	return out
}

// gridDims picks a near-square grid for n clients.
func gridDims(n int) (cols, rows int) {
	for cols = 0; cols <= n/2; cols++ {
		if cols*cols >= n {
			break
		}
	}
	if n == 5 { // not 1:2:2, but 2:3
		cols = 2
	}
	if cols == 0 {
		cols = 1
	}
	rows = n / cols
	if rows == 0 {
		rows = 1
	}
	return cols, rows
}

func gridPlacements(m *Monitor) []placement {
	oh, ov, ih, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}
	cols, rows := gridDims(n)
	if cols*rows < n {
		rows++
	}
	cw := (m.ww - 2*ov - iv*(cols-1)) / cols
	ch := (m.wh - 2*oh - ih*(rows-1)) / rows
	var out []placement
	for i, c := range tiled {
		cc := i / rows
		cr := i % rows
		cx := m.wx + ov + cc*(cw+iv)
		cy := m.wy + oh + cr*(ch+ih)
		out = append(out, placement{c, cx, cy, cw - 2*c.bw, ch - 2*c.bw})
	}
	return out
}

// nrowgridPlacements packs nmaster+1 rows, balancing the clients per
// row by remaining width. Two clients always split vertically.
func nrowgridPlacements(m *Monitor) []placement {
	oh, ov, ih, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}
	rows := m.nmaster + 1
	if n == 2 {
		rows = 1
	}
	if n < rows {
		rows = n
	}
	if rows < 1 {
		rows = 1
	}

	cols := n / rows
	used := cols
	cy := m.wy + oh
	ch := (m.wh - 2*oh - ih*(rows-1)) / rows

	var out []placement
	ri, ci, uw := 0, 0, 0
	for _, c := range tiled {
		if ci == cols {
			uw = 0
			ci = 0
			ri++
			cols = (n - used) / (rows - ri)
			used += cols
			cy += ch + ih
		}
		cx := m.wx + ov + uw
		cw := (m.ww - 2*ov - uw) / (cols - ci)
		uw += cw + iv
		out = append(out, placement{c, cx, cy, cw - 2*c.bw, ch - 2*c.bw})
		ci++
	}
	return out
}

// horizgridPlacements lays one row of masters over one row of stack
// clients; with no overflow a single row spans the area.
func horizgridPlacements(m *Monitor) []placement {
	oh, ov, ih, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}
	ntop := n
	if m.nmaster > 0 && n > m.nmaster {
		ntop = m.nmaster
	}
	nbottom := n - ntop

	ty := m.wy + oh
	th := m.wh - 2*oh
	sy, sh := ty, 0
	if nbottom > 0 {
		th = int(float64(m.wh-2*oh-ih) * m.mfact)
		sh = m.wh - 2*oh - ih - th
		sy = ty + th + ih
	}

	mfacts, sfacts := cfactSums(tiled, ntop)
	topW := m.ww - 2*ov - iv*(ntop-1)
	var bottomW int
	if nbottom > 0 {
		bottomW = m.ww - 2*ov - iv*(nbottom-1)
	}

	var out []placement
	tx, sx := m.wx+ov, m.wx+ov
	for i, c := range tiled {
		if i < ntop {
			w := int(float64(topW) * (c.cfact / mfacts))
			out = append(out, placement{c, tx, ty, w - 2*c.bw, th - 2*c.bw})
			tx += w + iv
		} else {
			w := int(float64(bottomW) * (c.cfact / sfacts))
			out = append(out, placement{c, sx, sy, w - 2*c.bw, sh - 2*c.bw})
			sx += w + iv
		}
	}
	return out
}

// gaplessgridPlacements is the grid variant with inner gaps forced to
// zero; outer gaps still apply.
func gaplessgridPlacements(m *Monitor) []placement {
	oh, ov, _, _, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}
	cols, rows := gridDims(n)

	ax, ay := m.wx+ov, m.wy+oh
	aw, ah := m.ww-2*ov, m.wh-2*oh
	cw := aw / cols

	var out []placement
	cn, rn := 0, 0
	for i, c := range tiled {
		if i/rows+1 > cols-n%cols {
			rows = n/cols + 1
		}
		ch := ah
		if rows > 0 {
			ch = ah / rows
		}
		cx := ax + cn*cw
		cy := ay + rn*ch
		out = append(out, placement{c, cx, cy, cw - 2*c.bw, ch - 2*c.bw})
		rn++
		if rn >= rows {
			rn = 0
			cn++
		}
	}
	return out
}

// centeredMasterPlacements centers the master column; stack clients
// flank it alternating left and right.
func centeredMasterPlacements(m *Monitor) []placement {
	oh, ov, ih, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}

	mx := m.wx + ov
	mw := m.ww - 2*ov
	var lw, rw, lx, rx int

	nm := m.nmaster
	if nm > n {
		nm = n
	}
	nstack := n - nm

	if nm > 0 && n > nm {
		if nstack > 1 {
			mw = int(float64(m.ww-2*ov-2*iv) * m.mfact)
			lw = (m.ww - 2*ov - 2*iv - mw) / 2
			rw = m.ww - 2*ov - 2*iv - mw - lw
			lx = m.wx + ov
			mx = lx + lw + iv
			rx = mx + mw + iv
		} else {
			mw = int(float64(m.ww-2*ov-iv) * m.mfact)
			lw = 0
			rw = m.ww - 2*ov - iv - mw
			mx = m.wx + ov
			rx = mx + mw + iv
		}
	} else if nm == 0 {
		// no master area; fall back to one centered column
		nm = n
		nstack = 0
	}

	column := func(cs []*Client, x, w int) []placement {
		var facts float64
		for _, c := range cs {
			facts += c.cfact
		}
		hTotal := m.wh - 2*oh - ih*(len(cs)-1)
		y := m.wy + oh
		var out []placement
		for _, c := range cs {
			h := int(float64(hTotal) * (c.cfact / facts))
			out = append(out, placement{c, x, y, w - 2*c.bw, h - 2*c.bw})
			y += h + ih
		}
		return out
	}

	masters := tiled[:nm]
	var left, right []*Client
	for i, c := range tiled[nm:] {
		if i%2 != 0 && nstack > 1 {
			left = append(left, c)
		} else {
			right = append(right, c)
		}
	}

	out := column(masters, mx, mw)
	if len(left) > 0 {
		out = append(out, column(left, lx, lw)...)
	}
	if len(right) > 0 {
		out = append(out, column(right, rx, rw)...)
	}
	return out
}

// centeredFloatingMasterPlacements hovers a centered master box over a
// single stack row spanning the whole area.
func centeredFloatingMasterPlacements(m *Monitor) []placement {
	oh, ov, _, iv, tiled := m.getGaps()
	n := len(tiled)
	if n == 0 {
		return nil
	}
	nm := m.nmaster
	if nm > n {
		nm = n
	}

	var out []placement
	if n > nm && nm > 0 {
		// stack fills the full area as one horizontal row
		stack := tiled[nm:]
		_, sfacts := cfactSums(tiled, nm)
		sw := m.ww - 2*ov - iv*(len(stack)-1)
		sx := m.wx + ov
		sy := m.wy + oh
		sh := m.wh - 2*oh
		for _, c := range stack {
			w := int(float64(sw) * (c.cfact / sfacts))
			out = append(out, placement{c, sx, sy, w - 2*c.bw, sh - 2*c.bw})
			sx += w + iv
		}
	}

	// master box centered above
	masters := tiled[:nm]
	if nm == 0 {
		masters = tiled
	}
	var mw, mh int
	if n > nm && nm > 0 {
		if m.ww > m.wh {
			mw = int(float64(m.ww) * m.mfact)
			mh = int(float64(m.wh) * 0.9)
		} else {
			mw = int(float64(m.ww) * 0.9)
			mh = int(float64(m.wh) * m.mfact)
		}
	} else {
		mw = m.ww - 2*ov
		mh = m.wh - 2*oh
	}
	mx := m.wx + (m.ww-mw)/2
	my := m.wy + (m.wh-mh)/2

	mfacts, _ := cfactSums(masters, len(masters))
	bw := mw - iv*(len(masters)-1)
	x := mx
	for _, c := range masters {
		w := int(float64(bw) * (c.cfact / mfacts))
		out = append(out, placement{c, x, my, w - 2*c.bw, mh - 2*c.bw})
		x += w + iv
	}
	return out
}
