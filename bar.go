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
	"image/draw"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/xgraphics"
	"github.com/jezek/xgbutil/xwindow"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	log "github.com/sirupsen/logrus"
)

// barRenderer draws the per-monitor bars; its font face also serves the
// alt-tab overlay.
type barRenderer struct {
	wm         *Wm
	face       font.Face
	fontHeight int
	parser     *StatusParser
}

func newBarRenderer(wm *Wm) (*barRenderer, error) {
	var face font.Face
	for _, def := range wm.cfg.Fonts {
		face = findFont(def)
		if face != nil {
			break
		}
	}
	if face == nil {
		face = findFontFallback("", 12)
	}
	metrics := face.Metrics()
	return &barRenderer{
		wm:         wm,
		face:       face,
		fontHeight: (metrics.Ascent + metrics.Descent).Ceil(),
		parser:     NewStatusParser(),
	}, nil
}

// textWidth measures a string including the side padding used by every
// bar cell.
func (br *barRenderer) textWidth(s string) int {
	return font.MeasureString(br.face, s).Ceil() + br.wm.lrpad
}

func (br *barRenderer) rawTextWidth(s string) int {
	return font.MeasureString(br.face, s).Ceil()
}

// createBars makes one bar window per monitor that lacks one.
func (br *barRenderer) createBars() {
	wm := br.wm
	for m := wm.mons; m != nil; m = m.next {
		if m.barwin != 0 {
			continue
		}
		win, err := xwindow.Generate(wm.X)
		if err != nil {
			log.WithError(err).Warn("bar window")
			continue
		}
		err = win.CreateChecked(wm.root,
			m.wx+wm.sp, m.by+wm.vp, m.ww-2*wm.sp, wm.bh,
			xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
			pixel(wm.schemes.norm.bg), 1,
			xproto.EventMaskButtonPress|xproto.EventMaskExposure)
		if err != nil {
			log.WithError(err).Warn("bar window")
			continue
		}
		m.barwin = win.Id
		xproto.ChangeWindowAttributes(wm.conn, m.barwin,
			xproto.CwCursor, []uint32{uint32(wm.cursors.normal)})
		win.Map()
	}
}

// reposition moves a monitor's bar to its computed slot.
func (br *barRenderer) reposition(m *Monitor) {
	if m.barwin == 0 {
		return
	}
	wm := br.wm
	wm.srv.MoveResizeWindow(m.barwin, m.wx+wm.sp, m.by+wm.vp, m.ww-2*wm.sp, wm.bh)
}

func (wm *Wm) drawBar(m *Monitor) {
	if wm.bar == nil || m == nil {
		return
	}
	wm.bar.draw(m)
}

func (wm *Wm) drawBars() {
	for m := wm.mons; m != nil; m = m.next {
		wm.drawBar(m)
	}
}

// fillRect paints a solid rectangle clipped to the image bounds.
func fillRect(img *xgraphics.Image, x, y, w, h int, c xgraphics.BGRA) {
	b := img.Bounds()
	for py := max(y, b.Min.Y); py < min(y+h, b.Max.Y); py++ {
		for px := max(x, b.Min.X); px < min(x+w, b.Max.X); px++ {
			img.SetBGRA(px, py, c)
		}
	}
}

// outlineRect paints a 1px rectangle outline.
func outlineRect(img *xgraphics.Image, x, y, w, h int, c xgraphics.BGRA) {
	fillRect(img, x, y, w, 1, c)
	fillRect(img, x, y+h-1, w, 1, c)
	fillRect(img, x, y, 1, h, c)
	fillRect(img, x+w-1, y, 1, h, c)
}

// drawText renders one bar cell: background, then the string with the
// given left padding. Returns the x position after the cell.
func (br *barRenderer) drawText(img *xgraphics.Image, x, w, lpad int, text string, sch scheme, invert bool) int {
	fg, bg := sch.fg, sch.bg
	if invert {
		fg, bg = bg, fg
	}
	fillRect(img, x, 0, w, br.wm.bh, bg)
	ty := (br.wm.bh - br.fontHeight) / 2
	if ty < 0 {
		ty = 0
	}
	img.Text(fixed.P(x+lpad, ty), &fg, br.face, text)
	return x + w
}

func (br *barRenderer) draw(m *Monitor) {
	wm := br.wm
	if !m.showbar || m.barwin == 0 {
		return
	}
	barw := m.ww - 2*wm.sp
	img := xgraphics.New(wm.X, image.Rect(0, 0, barw, wm.bh))
	defer img.Destroy()
	norm := wm.schemes.norm
	img.For(func(x, y int) xgraphics.BGRA { return norm.bg })

	// status first so tags may overdraw it; selected monitor only
	tw := 0
	if m == wm.selmon {
		tw = br.drawStatus(img, barw)
	}
	m.barStatusStart = barw - tw

	var occ, urg uint
	for c := m.clients; c != nil; c = c.next {
		occ |= c.tags
		if c.isUrgent {
			urg |= c.tags
		}
	}

	boxs := br.fontHeight / 9
	boxw := br.fontHeight/6 + 2

	x := 0
	m.barTagEnds = m.barTagEnds[:0]
	for i, tag := range wm.cfg.Tags {
		w := br.textWidth(tag)
		sch := norm
		if m.tagset[m.seltags]&(1<<uint(i)) != 0 {
			sch = wm.schemes.tags[i]
		}
		br.drawText(img, x, w, wm.lrpad/2, tag, sch, urg&(1<<uint(i)) != 0)
		if occ&(1<<uint(i)) != 0 {
			fg := sch.fg
			if urg&(1<<uint(i)) != 0 {
				fg = sch.bg
			}
			if m == wm.selmon && wm.selmon.sel != nil && wm.selmon.sel.tags&(1<<uint(i)) != 0 {
				fillRect(img, x+boxs, boxs, boxw, boxw, fg)
			} else {
				outlineRect(img, x+boxs, boxs, boxw, boxw, fg)
			}
		}
		x += w
		m.barTagEnds = append(m.barTagEnds, x)
	}

	w := br.textWidth(m.ltsymbol)
	x = br.drawText(img, x, w, wm.lrpad/2, m.ltsymbol, norm, false)
	m.barLtEnd = x

	// swallow indicator next to the layout symbol
	if m.sel != nil && m.sel.swallowedBy != nil {
		w = br.textWidth(wm.cfg.SwalSymbol)
		x = br.drawText(img, x, w, wm.lrpad/2, wm.cfg.SwalSymbol, norm, false)
	}

	if w = barw - tw - x; w > wm.bh {
		if m.sel != nil {
			sch := norm
			if m == wm.selmon {
				sch = wm.schemes.sel
			}
			iconw := 0
			if m.sel.icon != nil {
				iconw = m.sel.icon.w + wm.cfg.IconSpacing
			}
			lpad := wm.lrpad / 2
			if tww := br.textWidth(m.sel.name); tww <= w {
				lpad = (w - tww) / 2 // center the title when it fits
			}
			br.drawText(img, x, w-2*wm.sp, lpad+iconw, m.sel.name, sch, false)
			if m.sel.icon != nil {
				ir := image.Rect(x+wm.lrpad/2, (wm.bh-m.sel.icon.h)/2,
					x+wm.lrpad/2+m.sel.icon.w, (wm.bh-m.sel.icon.h)/2+m.sel.icon.h)
				draw.Draw(img, ir, m.sel.icon.img, image.Point{}, draw.Over)
			}
			if m.sel.isFloating {
				if m.sel.isFixed {
					fillRect(img, x+boxs, boxs, boxw, boxw, sch.fg)
				} else {
					outlineRect(img, x+boxs, boxs, boxw, boxw, sch.fg)
				}
			}
		} else {
			fillRect(img, x, 0, w-2*wm.sp, wm.bh, norm.bg)
		}
	}

	img.XSurfaceSet(m.barwin)
	img.XDraw()
	img.XPaint(m.barwin)
}

// drawStatus renders the parsed status line right-aligned and returns
// its width.
func (br *barRenderer) drawStatus(img *xgraphics.Image, barw int) int {
	wm := br.wm
	pieces := br.parser.Scan(wm.stext)
	tw := statusWidth(pieces, br.rawTextWidth)
	if tw == 0 {
		return 0
	}
	norm := wm.schemes.norm
	x := barw - tw
	fillRect(img, x, 0, tw, wm.bh, norm.bg)
	x++
	ty := (wm.bh - br.fontHeight) / 2
	for _, p := range pieces {
		fg, bg := norm.fg, norm.bg
		if p.Foreground != nil {
			fg = *p.Foreground
		}
		if p.Background != nil {
			bg = *p.Background
		}
		switch {
		case p.Text != "":
			w := br.rawTextWidth(p.Text)
			fillRect(img, x, 0, w, wm.bh, bg)
			img.Text(fixed.P(x, ty), &fg, br.face, p.Text)
			x += w
		case p.Forward != 0:
			x += p.Forward
		case p.Rect != nil:
			fillRect(img, x+p.Rect.X, p.Rect.Y, p.Rect.W, p.Rect.H, fg)
		}
	}
	return tw
}

// clickRegion resolves a bar click into a button target. For tag cells
// the returned argument is the tag mask.
func (br *barRenderer) clickRegion(m *Monitor, x int) (int, uint) {
	for i, end := range m.barTagEnds {
		if x < end {
			return ClkTagBar, 1 << uint(i)
		}
	}
	if x < m.barLtEnd {
		return ClkLtSymbol, 0
	}
	if x > m.barStatusStart {
		return ClkStatusText, 0
	}
	return ClkWinTitle, 0
}
