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

	"github.com/disintegration/imaging"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
)

// clientIcon is a window icon scaled for the bar.
type clientIcon struct {
	img  image.Image
	w, h int
}

func validIconFrame(ic *ewmh.WmIcon) bool {
	return ic.Width > 0 && ic.Height > 0 &&
		ic.Width < 16384 && ic.Height < 16384 &&
		uint(len(ic.Data)) >= ic.Width*ic.Height
}

// pickIconFrame chooses the _NET_WM_ICON frame closest to the wanted
// size, preferring frames at least that large.
func pickIconFrame(icons []ewmh.WmIcon, size int) *ewmh.WmIcon {
	const maxInt = int(^uint(0) >> 1)
	var best *ewmh.WmIcon
	bestDelta := maxInt
	for i := range icons {
		ic := &icons[i]
		if !validIconFrame(ic) {
			continue
		}
		if m := bestIconMax(ic); m >= size && m-size < bestDelta {
			best, bestDelta = ic, m-size
		}
	}
	if best == nil {
		bestDelta = maxInt
		for i := range icons {
			ic := &icons[i]
			if !validIconFrame(ic) {
				continue
			}
			if d := size - bestIconMax(ic); d < bestDelta {
				best, bestDelta = ic, d
			}
		}
	}
	return best
}

func bestIconMax(ic *ewmh.WmIcon) int {
	m := int(ic.Width)
	if int(ic.Height) > m {
		m = int(ic.Height)
	}
	return m
}

// iconScaledSize fits (w, h) into a square of the given size keeping
// the aspect ratio.
func iconScaledSize(w, h, size int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	var iw, ih int
	if w <= h {
		ih = size
		iw = w * size / h
		if iw == 0 {
			iw = 1
		}
	} else {
		iw = size
		ih = h * size / w
		if ih == 0 {
			ih = 1
		}
	}
	return iw, ih
}

// decodeIconFrame converts one ARGB cardinal frame into an NRGBA image.
func decodeIconFrame(ic *ewmh.WmIcon) *image.NRGBA {
	w, h := int(ic.Width), int(ic.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := uint32(ic.Data[y*w+x])
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(p >> 16)
			img.Pix[i+1] = uint8(p >> 8)
			img.Pix[i+2] = uint8(p)
			img.Pix[i+3] = uint8(p >> 24)
		}
	}
	return img
}

// fetchIcon reads a window's EWMH icon and scales it for the bar.
func fetchIcon(X *xgbutil.XUtil, win xproto.Window, size int) *clientIcon {
	icons, err := ewmh.WmIconGet(X, win)
	if err != nil || len(icons) == 0 {
		return nil
	}
	best := pickIconFrame(icons, size)
	if best == nil {
		return nil
	}
	iw, ih := iconScaledSize(int(best.Width), int(best.Height), size)
	if iw == 0 || ih == 0 {
		return nil
	}
	scaled := imaging.Resize(decodeIconFrame(best), iw, ih, imaging.Lanczos)
	return &clientIcon{img: scaled, w: iw, h: ih}
}
