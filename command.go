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
	"strconv"
	"strings"

	"github.com/jezek/xgb/xproto"
	log "github.com/sirupsen/logrus"
)

// Two in-band command protocols ride on root window name updates:
//
//	fsignal:<n>            dispatches to the signal table
//	#!<cmd>###arg1###arg2  drives the swallow machinery
//
// Root names carrying either prefix never reach the status bar; both
// prefixes are reserved.

const (
	signalPrefix  = "fsignal:"
	commandPrefix = "#!"
	commandSep    = "###"
)

type rootCommandKind int

const (
	cmdNone rootCommandKind = iota
	cmdSignal
	cmdSwallow
)

type rootCommand struct {
	kind   rootCommandKind
	signum int
	name   string
	args   []string
}

// parseRootName decodes a root name update. ok reports whether the name
// is a command and must be withheld from the status text.
func parseRootName(name string) (cmd rootCommand, ok bool) {
	switch {
	case strings.HasPrefix(name, signalPrefix):
		raw := name[len(signalPrefix):]
		signum := 0
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				signum = signum*10 + int(r-'0')
			}
		}
		if signum == 0 {
			return rootCommand{kind: cmdNone}, true
		}
		return rootCommand{kind: cmdSignal, signum: signum}, true
	case strings.HasPrefix(name, commandPrefix):
		segments := strings.Split(name[len(commandPrefix):], commandSep)
		return rootCommand{
			kind: cmdSwallow,
			name: segments[0],
			args: segments[1:],
		}, true
	}
	return rootCommand{kind: cmdNone}, false
}

func parseWindowID(s string) (xproto.Window, bool) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, false
	}
	return xproto.Window(id), true
}

func (cmd rootCommand) arg(i int) string {
	if i < len(cmd.args) {
		return cmd.args[i]
	}
	return ""
}

// runRootCommand executes a decoded root name command.
func (wm *Wm) runRootCommand(cmd rootCommand) {
	switch cmd.kind {
	case cmdSignal:
		if fn, ok := wm.signals[cmd.signum]; ok {
			fn(wm)
		}
	case cmdSwallow:
		wm.runSwallowCommand(cmd)
	}
}

func (wm *Wm) runSwallowCommand(cmd rootCommand) {
	switch cmd.name {
	case "swalreg":
		// windowid, [class], [instance], [title]
		win, ok := parseWindowID(cmd.arg(0))
		if !ok {
			return
		}
		switch kind, c, _ := wm.winToClient2(win); kind {
		case clientRegular, clientSwallowee:
			wm.swalReg(c, cmd.arg(1), cmd.arg(2), cmd.arg(3))
		}
	case "swal":
		// swallower's windowid, swallowee's windowid
		winSwer, ok1 := parseWindowID(cmd.arg(0))
		winSwee, ok2 := parseWindowID(cmd.arg(1))
		if !ok1 || !ok2 {
			return
		}
		kindSwer, swer, _ := wm.winToClient2(winSwer)
		kindSwee, swee, _ := wm.winToClient2(winSwee)
		if (kindSwer == clientRegular || kindSwer == clientSwallowee) &&
			(kindSwee == clientRegular || kindSwee == clientSwallowee) &&
			swer != swee {
			wm.swal(swer, swee, false)
		}
	case "swalunreg":
		win, ok := parseWindowID(cmd.arg(0))
		if !ok {
			return
		}
		if c := wm.winToClient(win); c != nil {
			wm.swalUnreg(c)
		}
	case "swalstop":
		win, ok := parseWindowID(cmd.arg(0))
		if !ok {
			return
		}
		if c := wm.winToClient(win); c != nil {
			wm.swalStop(c, nil)
		}
	default:
		log.WithField("cmd", cmd.name).Debug("unknown root command")
	}
}
