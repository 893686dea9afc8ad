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
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/jezek/xgbutil"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const version = "0.1.0"

const (
	autostartBlockScript = "autostart_blocking.sh"
	autostartScript      = "autostart.sh"
	dataDirName          = "gowm"
)

func main() {
	showVersion := flag.Bool("v", false, "print version and exit")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()
	if *showVersion {
		fmt.Println("gowm-" + version)
		return
	}
	if flag.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "usage: gowm [-v]")
		os.Exit(1)
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	X, err := xgbutil.NewConn()
	if err != nil {
		log.WithError(err).Fatal("cannot open display")
	}
	defer X.Conn().Close()

	wm, err := newWm(cfg, X)
	if err != nil {
		log.Fatal(err)
	}
	if err := wm.checkOtherWm(); err != nil {
		log.Fatal(err)
	}
	if err := wm.setup(); err != nil {
		log.Fatal(err)
	}
	wm.scan()
	wm.restoreSession()
	runAutostart(wm)

	ctx, cancel := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		return wm.run()
	})
	g.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGHUP, syscall.SIGTERM)
		defer signal.Stop(sigs)
		for {
			select {
			case s := <-sigs:
				if s == syscall.SIGHUP {
					wm.postInternal(internalRestart, 0)
				} else {
					wm.postInternal(internalQuit, 0)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("event loop")
	}

	wm.cleanup()

	if wm.restart {
		exe, err := os.Executable()
		if err == nil {
			X.Conn().Close()
			syscall.Exec(exe, os.Args, os.Environ())
		}
		log.WithError(err).Error("restart")
	}
}

// runAutostart launches the user's autostart scripts without ever
// blocking the event loop.
func runAutostart(wm *Wm) {
	dir := filepath.Join(xdg.DataHome, dataDirName)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		dir = filepath.Join(home, "."+dataDirName)
	}
	for _, script := range []string{autostartBlockScript, autostartScript} {
		path := filepath.Join(dir, script)
		if st, err := os.Stat(path); err == nil && st.Mode()&0o111 != 0 {
			wm.spawn([]string{path})
		}
	}
}
