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

import "testing"

func TestStatusParserPlainText(t *testing.T) {
	sp := NewStatusParser()
	pieces := sp.Scan("hello world")
	if len(pieces) != 1 || pieces[0].Text != "hello world" {
		t.Fatalf("got %+v", pieces)
	}
	if pieces[0].Foreground != nil || pieces[0].Background != nil {
		t.Error("default colors must be nil")
	}
}

func TestStatusParserColors(t *testing.T) {
	sp := NewStatusParser()
	pieces := sp.Scan("^c#ff0000^red^b#00ff00^green^d^plain")
	if len(pieces) != 3 {
		t.Fatalf("want 3 pieces, got %d: %+v", len(pieces), pieces)
	}
	if pieces[0].Text != "red" || pieces[0].Foreground == nil || pieces[0].Foreground.R != 0xff {
		t.Errorf("piece 0: %+v", pieces[0])
	}
	if pieces[1].Text != "green" || pieces[1].Background == nil || pieces[1].Background.G != 0xff {
		t.Errorf("piece 1: %+v", pieces[1])
	}
	if pieces[1].Foreground == nil {
		t.Error("foreground should persist until reset")
	}
	if pieces[2].Text != "plain" || pieces[2].Foreground != nil || pieces[2].Background != nil {
		t.Errorf("piece 2 not reset: %+v", pieces[2])
	}
}

func TestStatusParserForwardAndRect(t *testing.T) {
	sp := NewStatusParser()
	pieces := sp.Scan("a^f10^b^r1,2,3,4^c")
	if len(pieces) != 5 {
		t.Fatalf("want 5 pieces, got %d: %+v", len(pieces), pieces)
	}
	if pieces[1].Forward != 10 {
		t.Errorf("forward: %+v", pieces[1])
	}
	r := pieces[3].Rect
	if r == nil || *r != (statusRect{1, 2, 3, 4}) {
		t.Errorf("rect: %+v", pieces[3])
	}
}

func TestStatusParserStripsControlChars(t *testing.T) {
	sp := NewStatusParser()
	pieces := sp.Scan("a\x01b\nc")
	if len(pieces) != 1 || pieces[0].Text != "abc" {
		t.Fatalf("got %+v", pieces)
	}
}

func TestStatusParserLiteralCaret(t *testing.T) {
	sp := NewStatusParser()
	pieces := sp.Scan("100^^ done")
	if len(pieces) != 1 || pieces[0].Text != "100^ done" {
		t.Fatalf("got %+v", pieces)
	}
}

func TestStatusWidth(t *testing.T) {
	sp := NewStatusParser()
	measure := func(s string) int { return 7 * len(s) }

	pieces := sp.Scan("abc^f10^de")
	// 3*7 + 10 + 2*7 + 2 padding
	if w := statusWidth(pieces, measure); w != 21+10+14+2 {
		t.Errorf("width %d", w)
	}
	if w := statusWidth(sp.Scan(""), measure); w != 0 {
		t.Errorf("empty width %d", w)
	}
}

func TestRootNameParsing(t *testing.T) {
	cases := []struct {
		in     string
		isCmd  bool
		kind   rootCommandKind
		signum int
		name   string
		args   int
	}{
		{"just a status", false, cmdNone, 0, "", 0},
		{"fsignal:3", true, cmdSignal, 3, "", 0},
		{"fsignal:", true, cmdNone, 0, "", 0},
		{"fsignal:12", true, cmdSignal, 12, "", 0},
		{"#!swalreg###12345###Term", true, cmdSwallow, 0, "swalreg", 2},
		{"#!swal###1###2", true, cmdSwallow, 0, "swal", 2},
		{"#!swalstop###77", true, cmdSwallow, 0, "swalstop", 1},
		{"#!swalunreg###77", true, cmdSwallow, 0, "swalunreg", 1},
	}
	for _, tc := range cases {
		cmd, isCmd := parseRootName(tc.in)
		if isCmd != tc.isCmd {
			t.Errorf("%q: isCmd=%v, want %v", tc.in, isCmd, tc.isCmd)
			continue
		}
		if !isCmd {
			continue
		}
		if cmd.kind != tc.kind || cmd.signum != tc.signum ||
			cmd.name != tc.name || len(cmd.args) != tc.args {
			t.Errorf("%q: got %+v", tc.in, cmd)
		}
	}
}

func TestSignalDispatch(t *testing.T) {
	wm, _ := newTestWm(t)
	hit := 0
	wm.signals[7] = func(*Wm) { hit++ }

	cmd, _ := parseRootName("fsignal:7")
	wm.runRootCommand(cmd)
	if hit != 1 {
		t.Errorf("signal handler ran %d times", hit)
	}
}

func TestWindowIDParsing(t *testing.T) {
	if w, ok := parseWindowID("0x2a"); !ok || w != 42 {
		t.Errorf("hex id: %v %v", w, ok)
	}
	if w, ok := parseWindowID("42"); !ok || w != 42 {
		t.Errorf("decimal id: %v %v", w, ok)
	}
	if _, ok := parseWindowID("nope"); ok {
		t.Error("junk accepted")
	}
}
