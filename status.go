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
	"regexp"
	"strconv"
	"strings"

	"github.com/jezek/xgbutil/xgraphics"
)

// statusRect is an inline rectangle drawn relative to the current pen
// position.
type statusRect struct {
	X, Y, W, H int
}

// StatusPiece is one parsed fragment of the status line: a text run
// under the colors in effect, a pen advance, or an inline rectangle.
type StatusPiece struct {
	Text       string
	Foreground *xgraphics.BGRA
	Background *xgraphics.BGRA
	Forward    int
	Rect       *statusRect
}

// StatusParser decodes the inline escapes of the status text:
//
//	^c#RRGGBB^  set foreground     ^b#RRGGBB^  set background
//	^d^         reset colors       ^f<N>^      advance N pixels
//	^r<x>,<y>,<w>,<h>^              draw a rectangle
//
// A literal ^^ yields a caret. Control characters are stripped.
type StatusParser struct {
	rgbPattern *regexp.Regexp
}

func NewStatusParser() *StatusParser {
	return &StatusParser{regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)}
}

func (sp *StatusParser) color(s string) *xgraphics.BGRA {
	if !sp.rgbPattern.MatchString(s) {
		return nil
	}
	c, err := parseColor(s, 0xff)
	if err != nil {
		return nil
	}
	return &c
}

// Scan parses a status definition into pieces. Empty text runs are
// omitted.
func (sp *StatusParser) Scan(status string) []*StatusPiece {
	var clean strings.Builder
	for _, r := range status {
		if r >= ' ' {
			clean.WriteRune(r)
		}
	}
	s := clean.String()

	var (
		pieces  []*StatusPiece
		fg, bg  *xgraphics.BGRA
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, &StatusPiece{
				Text:       current.String(),
				Foreground: fg,
				Background: bg,
			})
			current.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '^' {
			current.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '^' {
			current.WriteByte('^')
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '^')
		if end < 0 {
			current.WriteString(s[i:])
			break
		}
		code := s[i+1 : i+1+end]
		i += end + 1

		if code == "" {
			continue
		}
		switch code[0] {
		case 'c':
			flush()
			fg = sp.color(code[1:])
		case 'b':
			flush()
			bg = sp.color(code[1:])
		case 'd':
			flush()
			fg, bg = nil, nil
		case 'f':
			flush()
			if n, err := strconv.Atoi(code[1:]); err == nil {
				pieces = append(pieces, &StatusPiece{Forward: n, Foreground: fg, Background: bg})
			}
		case 'r':
			flush()
			if r := parseStatusRect(code[1:]); r != nil {
				pieces = append(pieces, &StatusPiece{Rect: r, Foreground: fg, Background: bg})
			}
		default:
			// unknown code; keep it visible rather than losing it
			current.WriteByte('^')
			current.WriteString(code)
			current.WriteByte('^')
		}
	}
	flush()
	return pieces
}

func parseStatusRect(s string) *statusRect {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil
		}
		vals[i] = v
	}
	return &statusRect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
}

// statusWidth computes the horizontal extent of the parsed pieces with
// the given text measurer. Inline rectangles do not advance the pen.
func statusWidth(pieces []*StatusPiece, measure func(string) int) int {
	w := 0
	for _, p := range pieces {
		switch {
		case p.Text != "":
			w += measure(p.Text)
		case p.Forward != 0:
			w += p.Forward
		}
	}
	if w > 0 {
		w += 2 // 1px padding on both sides
	}
	return w
}
