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
	"os"
	"path/filepath"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	wm, fake := newTestWm(t)
	wm.cfg.SessionFile = filepath.Join(t.TempDir(), "session")

	a := addClient(t, wm, fake, 1, "XTerm", "a")
	b := addClient(t, wm, fake, 2, "XTerm", "b")
	a.tags = 1 << 3
	b.tags = 1 << 7

	if err := wm.saveSession(); err != nil {
		t.Fatal(err)
	}

	a.tags, b.tags = 1, 1
	wm.restoreSession()

	if a.tags != 1<<3 || b.tags != 1<<7 {
		t.Errorf("tags not restored: %b %b", a.tags, b.tags)
	}
	if _, err := os.Stat(wm.cfg.SessionFile); !os.IsNotExist(err) {
		t.Error("session file not removed after restore")
	}
}

func TestSessionRestoreSkipsStrays(t *testing.T) {
	wm, fake := newTestWm(t)
	wm.cfg.SessionFile = filepath.Join(t.TempDir(), "session")

	a := addClient(t, wm, fake, 1, "XTerm", "a")
	if err := os.WriteFile(wm.cfg.SessionFile,
		[]byte("99 8\n1 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	wm.restoreSession()
	if a.tags != 16 {
		t.Errorf("tags %d, want 16", a.tags)
	}
}

func TestSessionRestoreMissingFile(t *testing.T) {
	wm, _ := newTestWm(t)
	wm.cfg.SessionFile = filepath.Join(t.TempDir(), "nope")
	wm.restoreSession() // must not panic or create anything
}

func TestQuitRestartSavesSession(t *testing.T) {
	wm, fake := newTestWm(t)
	wm.cfg.SessionFile = filepath.Join(t.TempDir(), "session")
	addClient(t, wm, fake, 1, "XTerm", "a")

	wm.quit(true)
	if wm.running {
		t.Error("still running after quit")
	}
	if !wm.restart {
		t.Error("restart flag not set")
	}
	if _, err := os.Stat(wm.cfg.SessionFile); err != nil {
		t.Error("session file not written on restart quit")
	}
}
