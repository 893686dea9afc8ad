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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/adrg/sysfont"
	"github.com/flopp/go-findfont"
	"github.com/jezek/xgbutil/xgraphics"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/font/opentype"
	log "github.com/sirupsen/logrus"
)

// findFont resolves a font definition of the form name[:size] to a
// usable face, trying the direct lookup first and the system matcher
// second.
func findFont(def string) font.Face {
	i := strings.LastIndexByte(def, ':')
	name, size := parseFontSize(def, i)

	fontPath, err := findfont.Find(name)
	if err != nil {
		log.WithField("font", def).WithError(err).Debug("font not found, trying alternate method")
		return findFontFallback(def, size)
	}
	fontFile, err := os.Open(fontPath)
	if err != nil {
		log.WithField("font", fontPath).WithError(err).Debug("cannot open font, trying another one")
		return findFontFallback(def, size)
	}
	defer fontFile.Close()
	face, err := parseFontFace(fontFile, size)
	if err != nil {
		log.WithField("font", fontPath).WithError(err).Debug("cannot parse font, trying another one")
		return findFontFallback(def, size)
	}
	return face
}

var fallbackFinder *sysfont.Finder

func findFontFallback(def string, size float64) font.Face {
	if fallbackFinder == nil {
		fallbackFinder = sysfont.NewFinder(nil)
	}

	fontDef := fallbackFinder.Match(def)
	if fontDef == nil {
		log.WithField("font", def).Info("font not found, using inconsolata regular 8x16")
		return inconsolata.Regular8x16
	}
	fontFile, err := os.Open(fontDef.Filename)
	if err != nil {
		log.WithField("font", fontDef.Filename).WithError(err).Info("cannot open font, using inconsolata regular 8x16")
		return inconsolata.Regular8x16
	}
	defer fontFile.Close()
	face, err := parseFontFace(fontFile, size)
	if err != nil {
		log.WithField("font", fontDef.Filename).WithError(err).Info("cannot parse font, using inconsolata regular 8x16")
		return inconsolata.Regular8x16
	}
	log.WithField("font", fontDef.Filename).Debug("found fallback font")
	return face
}

func parseFontFace(file io.Reader, size float64) (font.Face, error) {
	otf, err := xgraphics.ParseFont(file)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		return nil, err
	}
	return face, nil
}

func parseFontSize(def string, i int) (string, float64) {
	if i == -1 {
		return def, 12
	}
	name, sizeStr := def[:i], def[i+1:]
	size, err := strconv.ParseFloat(sizeStr, 32)
	if err != nil {
		log.WithField("font", name).WithField("size", sizeStr).Info("invalid font size, using 12")
		size = 12
	}
	return name, size
}
