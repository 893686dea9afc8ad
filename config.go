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
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/jezek/xgbutil/xgraphics"
	log "github.com/sirupsen/logrus"
)

// maxTags bounds the tag bitmask width. One extra bit beyond the user
// tags is reserved for the scratchpad.
const maxTags = 30

// AttachDir selects where a newly managed client is inserted into the
// tile order.
type AttachDir int

const (
	AttachHead AttachDir = iota
	AttachAbove
	AttachAside
	AttachBelow
	AttachBottom
	AttachTop
)

var attachDirNames = map[string]AttachDir{
	"head":   AttachHead,
	"above":  AttachAbove,
	"aside":  AttachAside,
	"below":  AttachBelow,
	"bottom": AttachBottom,
	"top":    AttachTop,
}

// Rule classifies a client at manage time. Empty filters are wildcards,
// non-empty ones match as substrings against WM_CLASS and the title.
type Rule struct {
	Class            string
	Instance         string
	Title            string
	Tags             uint
	IsFloating       bool
	Monitor          int
	FloatX           int
	FloatY           int
	FloatW           int
	FloatH           int
	IsFakeFullscreen bool
}

// MonitorRule seeds per-monitor, per-tag defaults at monitor creation.
// Monitor -1 matches any monitor and Tag -1 any tag; MFact, NMaster,
// ShowBar and TopBar keep the configured default when -1. Layout is
// always applied.
type MonitorRule struct {
	Monitor int
	Tag     int
	Layout  int
	MFact   float64
	NMaster int
	ShowBar int
	TopBar  int
}

// Config carries the full appearance and behavior surface. Defaults are
// compiled in; every field below can be overridden from
// $XDG_CONFIG_HOME/gowm/config.toml.
type Config struct {
	BorderPx  int
	Snap      int
	ShowBar   bool
	TopBar    bool
	VertPad   int
	SidePad   int
	BarHeight int
	Fonts     []string

	NormFg         string
	NormBg         string
	NormBorder     string
	SelFg          string
	SelBg          string
	SelBorder      string
	NormMarkBorder string
	SelMarkBorder  string
	BarAlpha       uint8
	BorderAlpha    uint8

	Tags      []string
	TagColors [][2]string

	MFact          float64
	NMaster        int
	ResizeHints    bool
	LockFullscreen bool
	AttachDir      string

	GapIH     int
	GapIV     int
	GapOH     int
	GapOV     int
	SmartGaps int

	SwalDecay       int
	SwalRetroactive bool
	SwalSymbol      string

	TabModKey     string
	TabCycleKey   string
	TabReverseKey string
	TabPosX       int
	TabPosY       int
	TabMaxW       int
	TabMaxH       int

	SessionFile string

	TermCmd      []string
	MenuCmd      []string
	StatusCmd    []string
	LayoutMenu   []string
	IconSpacing  int

	Rules        []Rule
	MonitorRules []MonitorRule
}

func defaultConfig() *Config {
	return &Config{
		BorderPx:  2,
		Snap:      32,
		ShowBar:   true,
		TopBar:    true,
		VertPad:   0,
		SidePad:   0,
		BarHeight: 0,
		Fonts:     []string{"monospace:10"},

		NormFg:         "#bbbbbb",
		NormBg:         "#222222",
		NormBorder:     "#444444",
		SelFg:          "#eeeeee",
		SelBg:          "#005577",
		SelBorder:      "#005577",
		NormMarkBorder: "#775500",
		SelMarkBorder:  "#775577",
		BarAlpha:       0xd0,
		BorderAlpha:    0xff,

		Tags: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		TagColors: [][2]string{
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
			{"#eeeeee", "#005577"},
		},

		MFact:          0.55,
		NMaster:        1,
		ResizeHints:    true,
		LockFullscreen: true,
		AttachDir:      "bottom",

		GapIH:     10,
		GapIV:     10,
		GapOH:     10,
		GapOV:     10,
		SmartGaps: 0,

		SwalDecay:       3,
		SwalRetroactive: true,
		SwalSymbol:      "<-<",

		TabModKey:     "Alt_L",
		TabCycleKey:   "Tab",
		TabReverseKey: "Shift_L",
		TabPosX:       1,
		TabPosY:       1,
		TabMaxW:       600,
		TabMaxH:       200,

		SessionFile: filepath.Join(os.TempDir(), "gowm-session"),

		TermCmd:     []string{"st"},
		MenuCmd:     []string{"dmenu_run"},
		StatusCmd:   nil,
		LayoutMenu:  nil,
		IconSpacing: 5,

		Rules: nil,
		MonitorRules: []MonitorRule{
			{Monitor: -1, Tag: -1, Layout: 0, MFact: -1, NMaster: -1, ShowBar: -1, TopBar: -1},
		},
	}
}

// loadConfig reads the TOML override file on top of the defaults. A
// missing file is not an error.
func loadConfig() (*Config, error) {
	cfg := defaultConfig()
	path := filepath.Join(xdg.ConfigHome, "gowm", "config.toml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.validate()
		}
		return nil, err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	log.WithField("path", path).Info("loaded configuration")
	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if n := len(cfg.Tags); n < 1 || n > maxTags {
		return fmt.Errorf("tag count %d outside 1..%d", len(cfg.Tags), maxTags)
	}
	if len(cfg.TagColors) < len(cfg.Tags) {
		return fmt.Errorf("too few tag color schemes for %d tags", len(cfg.Tags))
	}
	if cfg.MFact < 0.05 || cfg.MFact > 0.95 {
		return fmt.Errorf("mfact %v outside 0.05..0.95", cfg.MFact)
	}
	if cfg.NMaster < 0 {
		return fmt.Errorf("nmaster must not be negative")
	}
	if _, ok := attachDirNames[strings.ToLower(cfg.AttachDir)]; !ok {
		return fmt.Errorf("unknown attach direction %q", cfg.AttachDir)
	}
	for _, c := range []string{
		cfg.NormFg, cfg.NormBg, cfg.NormBorder, cfg.SelFg, cfg.SelBg,
		cfg.SelBorder, cfg.NormMarkBorder, cfg.SelMarkBorder,
	} {
		if _, err := parseColor(c, 0xff); err != nil {
			return err
		}
	}
	for _, tc := range cfg.TagColors {
		for _, c := range tc {
			if _, err := parseColor(c, 0xff); err != nil {
				return err
			}
		}
	}
	if cfg.TabPosX < 0 || cfg.TabPosX > 2 || cfg.TabPosY < 0 || cfg.TabPosY > 2 {
		return fmt.Errorf("tab position outside 0..2")
	}
	return nil
}

func (cfg *Config) attachDirection() AttachDir {
	return attachDirNames[strings.ToLower(cfg.AttachDir)]
}

// tagMask covers all user tags.
func (cfg *Config) tagMask() uint {
	return (1 << uint(len(cfg.Tags))) - 1
}

// scratchpadMask is the reserved tag bit above the user tags.
func (cfg *Config) scratchpadMask() uint {
	return 1 << uint(len(cfg.Tags))
}

// parseColor turns "#RRGGBB" into an X compatible BGRA value.
func parseColor(s string, alpha uint8) (xgraphics.BGRA, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return xgraphics.BGRA{}, fmt.Errorf("invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return xgraphics.BGRA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return xgraphics.BGRA{B: b, G: g, R: r, A: alpha}, nil
}

// pixel converts a color to the packed format border attributes take.
func pixel(c xgraphics.BGRA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// scheme is one foreground/background/border color triple.
type scheme struct {
	fg     xgraphics.BGRA
	bg     xgraphics.BGRA
	border xgraphics.BGRA
}

// schemes holds every resolved color scheme used by the bar and the
// client borders.
type schemes struct {
	norm     scheme
	sel      scheme
	normMark scheme
	selMark  scheme
	tags     []scheme
}

func (cfg *Config) resolveSchemes() (*schemes, error) {
	mk := func(fg, bg, border string, bgAlpha, borderAlpha uint8) (scheme, error) {
		f, err := parseColor(fg, 0xff)
		if err != nil {
			return scheme{}, err
		}
		b, err := parseColor(bg, bgAlpha)
		if err != nil {
			return scheme{}, err
		}
		bo, err := parseColor(border, borderAlpha)
		if err != nil {
			return scheme{}, err
		}
		return scheme{fg: f, bg: b, border: bo}, nil
	}
	var (
		s   schemes
		err error
	)
	if s.norm, err = mk(cfg.NormFg, cfg.NormBg, cfg.NormBorder, cfg.BarAlpha, cfg.BorderAlpha); err != nil {
		return nil, err
	}
	if s.sel, err = mk(cfg.SelFg, cfg.SelBg, cfg.SelBorder, cfg.BarAlpha, cfg.BorderAlpha); err != nil {
		return nil, err
	}
	if s.normMark, err = mk(cfg.NormFg, cfg.NormBg, cfg.NormMarkBorder, cfg.BarAlpha, cfg.BorderAlpha); err != nil {
		return nil, err
	}
	if s.selMark, err = mk(cfg.SelFg, cfg.SelBg, cfg.SelMarkBorder, cfg.BarAlpha, cfg.BorderAlpha); err != nil {
		return nil, err
	}
	for i := range cfg.Tags {
		t, err := mk(cfg.TagColors[i][0], cfg.TagColors[i][1], cfg.NormBorder, cfg.BarAlpha, cfg.BorderAlpha)
		if err != nil {
			return nil, err
		}
		s.tags = append(s.tags, t)
	}
	return &s, nil
}
