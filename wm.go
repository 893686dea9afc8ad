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

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/xcursor"
	"github.com/jezek/xgbutil/xprop"
	"github.com/jezek/xgbutil/xwindow"
	log "github.com/sirupsen/logrus"
)

// Click regions for button bindings.
const (
	ClkTagBar = iota
	ClkLtSymbol
	ClkStatusText
	ClkWinTitle
	ClkClientWin
	ClkRootWin
)

// Internal client message opcodes, used to feed results of asynchronous
// work (and process signals) back into the single-threaded loop.
const (
	internalQuit = iota
	internalRestart
	internalSetLayout
)

const internalCmdAtom = "_GOWM_CMD"

type keyBinding struct {
	chord string
	fn    func(*Wm)
	mods  uint16
	codes []xproto.Keycode
}

type buttonBinding struct {
	click  int
	mask   uint16
	button xproto.Button
	fn     func(wm *Wm, arg uint)
}

type cursors struct {
	normal xproto.Cursor
	resize xproto.Cursor
	move   xproto.Cursor
	swal   xproto.Cursor
}

type tabKeycodes struct {
	mod     []xproto.Keycode
	cycle   []xproto.Keycode
	reverse []xproto.Keycode
}

// Wm is the whole window manager state. All of it is owned by the
// single-threaded event loop.
type Wm struct {
	cfg     *Config
	schemes *schemes
	srv     server

	X    *xgbutil.XUtil
	conn *xgb.Conn
	root xproto.Window

	sw, sh int
	bh     int
	lrpad  int
	vp, sp int

	mons   *Monitor
	selmon *Monitor

	swallows       *Swallow
	mark           *Client
	scratchpadLast *Client

	combo      bool
	enableGaps bool

	stext string

	running bool
	restart bool

	keys    []*keyBinding
	buttons []buttonBinding
	signals map[int]func(*Wm)

	bar     *barRenderer
	cursors cursors
	tabKeys tabKeycodes

	numlockMask uint16
	cmdAtom     xproto.Atom
	atomNames   map[xproto.Atom]string

	// last monitor the pointer was seen on
	motionMon *Monitor
}

// atomNameCached resolves an atom to its name, memoizing the answer.
func (wm *Wm) atomNameCached(a xproto.Atom) (string, error) {
	if name, ok := wm.atomNames[a]; ok {
		return name, nil
	}
	name, err := xprop.AtomName(wm.X, a)
	if err != nil {
		return "", err
	}
	if wm.atomNames == nil {
		wm.atomNames = make(map[xproto.Atom]string)
	}
	wm.atomNames[a] = name
	return name, nil
}

func newWm(cfg *Config, X *xgbutil.XUtil) (*Wm, error) {
	sch, err := cfg.resolveSchemes()
	if err != nil {
		return nil, err
	}
	wm := &Wm{
		cfg:        cfg,
		schemes:    sch,
		X:          X,
		conn:       X.Conn(),
		root:       X.RootWin(),
		sw:         int(X.Screen().WidthInPixels),
		sh:         int(X.Screen().HeightInPixels),
		enableGaps: true,
		running:    true,
		signals:    defaultSignals(),
	}
	wm.srv = &x11{wm: wm}
	wm.keys = defaultKeys(cfg)
	wm.buttons = defaultButtons()
	return wm, nil
}

// checkOtherWm fails fast when another client already holds
// substructure redirection on the root.
func (wm *Wm) checkOtherWm() error {
	err := xproto.ChangeWindowAttributesChecked(wm.conn, wm.root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureRedirect}).Check()
	if err != nil {
		return fmt.Errorf("another window manager is already running")
	}
	return nil
}

func (wm *Wm) setup() error {
	keybind.Initialize(wm.X)

	bar, err := newBarRenderer(wm)
	if err != nil {
		return err
	}
	wm.bar = bar
	wm.lrpad = bar.fontHeight
	wm.bh = wm.cfg.BarHeight
	if wm.bh == 0 {
		wm.bh = bar.fontHeight + 2
	}
	wm.sp = wm.cfg.SidePad
	if wm.cfg.TopBar {
		wm.vp = wm.cfg.VertPad
	} else {
		wm.vp = -wm.cfg.VertPad
	}

	wm.updateGeom()
	if wm.selmon == nil {
		wm.selmon = wm.mons
	}

	wm.cmdAtom, err = xprop.Atm(wm.X, internalCmdAtom)
	if err != nil {
		return err
	}

	if err := wm.initCursors(); err != nil {
		return err
	}

	wm.bar.createBars()
	wm.updateStatus()

	if err := wm.setupEwmh(); err != nil {
		return err
	}

	// take over the root window
	rootMask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskButtonPress |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskEnterWindow |
		xproto.EventMaskLeaveWindow |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskPropertyChange)
	if err := xproto.ChangeWindowAttributesChecked(wm.conn, wm.root,
		xproto.CwEventMask|xproto.CwCursor,
		[]uint32{rootMask, uint32(wm.cursors.normal)}).Check(); err != nil {
		return err
	}

	wm.resolveTabKeys()
	wm.grabKeys()
	wm.focus(nil)
	return nil
}

func (wm *Wm) initCursors() error {
	mk := func(name uint16) (xproto.Cursor, error) {
		return xcursor.CreateCursor(wm.X, name)
	}
	var err error
	if wm.cursors.normal, err = mk(xcursor.LeftPtr); err != nil {
		return err
	}
	if wm.cursors.resize, err = mk(xcursor.Sizing); err != nil {
		return err
	}
	if wm.cursors.move, err = mk(xcursor.Fleur); err != nil {
		return err
	}
	if wm.cursors.swal, err = mk(xcursor.BottomSide); err != nil {
		return err
	}
	return nil
}

func (wm *Wm) setupEwmh() error {
	check, err := xwindow.Generate(wm.X)
	if err != nil {
		return err
	}
	if err := check.CreateChecked(wm.root, 0, 0, 1, 1, 0); err != nil {
		return err
	}
	ewmh.SupportingWmCheckSet(wm.X, wm.root, check.Id)
	ewmh.SupportingWmCheckSet(wm.X, check.Id, check.Id)
	ewmh.WmNameSet(wm.X, check.Id, "gowm")
	ewmh.SupportedSet(wm.X, []string{
		"_NET_SUPPORTED",
		"_NET_SUPPORTING_WM_CHECK",
		"_NET_ACTIVE_WINDOW",
		"_NET_CLIENT_LIST",
		"_NET_WM_NAME",
		"_NET_WM_ICON",
		"_NET_WM_STATE",
		"_NET_WM_STATE_FULLSCREEN",
		"_NET_WM_WINDOW_TYPE",
		"_NET_WM_WINDOW_TYPE_DIALOG",
	})
	if atom, err := xprop.Atm(wm.X, "_NET_CLIENT_LIST"); err == nil {
		xproto.DeleteProperty(wm.conn, wm.root, atom)
	}
	return nil
}

// scan adopts windows that already exist at startup; plain windows
// first, transients second.
func (wm *Wm) scan() {
	tree, err := xproto.QueryTree(wm.conn, wm.root).Reply()
	if err != nil || tree == nil {
		return
	}
	iconic := func(win xproto.Window) bool {
		state, err := icccm.WmStateGet(wm.X, win)
		return err == nil && state != nil && state.State == icccm.StateIconic
	}
	var transients []xproto.Window
	for _, win := range tree.Children {
		wa, err := wm.srv.Attributes(win)
		if err != nil || wa.overrideRedirect {
			continue
		}
		if _, ok := wm.srv.TransientFor(win); ok {
			transients = append(transients, win)
			continue
		}
		if wa.viewable || iconic(win) {
			wm.manage(win, wa)
		}
	}
	for _, win := range transients {
		wa, err := wm.srv.Attributes(win)
		if err != nil {
			continue
		}
		if wa.viewable || iconic(win) {
			wm.manage(win, wa)
		}
	}
}

func (wm *Wm) updateNumlockMask() {
	wm.numlockMask = 0
	reply, err := xproto.GetModifierMapping(wm.conn).Reply()
	if err != nil || reply == nil {
		return
	}
	numCodes := keybind.StrToKeycodes(wm.X, "Num_Lock")
	per := int(reply.KeycodesPerModifier)
	for i := 0; i < 8; i++ {
		for j := 0; j < per; j++ {
			code := reply.Keycodes[i*per+j]
			for _, nc := range numCodes {
				if code == nc {
					wm.numlockMask = 1 << uint(i)
				}
			}
		}
	}
}

func (wm *Wm) cleanMask(mask uint16) uint16 {
	return mask &^ (wm.numlockMask | xproto.ModMaskLock) &
		(xproto.ModMaskShift | xproto.ModMaskControl |
			xproto.ModMask1 | xproto.ModMask2 | xproto.ModMask3 |
			xproto.ModMask4 | xproto.ModMask5)
}

func (wm *Wm) grabKeys() {
	wm.updateNumlockMask()
	xproto.UngrabKey(wm.conn, xproto.GrabAny, wm.root, xproto.ModMaskAny)
	variants := []uint16{0, xproto.ModMaskLock, wm.numlockMask, wm.numlockMask | xproto.ModMaskLock}
	for _, kb := range wm.keys {
		mods, codes, err := keybind.ParseString(wm.X, kb.chord)
		if err != nil {
			log.WithError(err).WithField("chord", kb.chord).Warn("bad key binding")
			continue
		}
		kb.mods = mods
		kb.codes = codes
		for _, code := range codes {
			for _, v := range variants {
				xproto.GrabKey(wm.conn, true, wm.root, mods|v, code,
					xproto.GrabModeAsync, xproto.GrabModeAsync)
			}
		}
	}
}

// grabButtons registers the pointer grabs on a client window. An
// unfocused client gets a blanket sync grab so the click both focuses
// and replays.
func (wm *Wm) grabButtons(win xproto.Window, focused bool) {
	wm.updateNumlockMask()
	const buttonMask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease
	xproto.UngrabButton(wm.conn, xproto.ButtonIndexAny, win, xproto.ModMaskAny)
	if !focused {
		xproto.GrabButton(wm.conn, false, win, buttonMask,
			xproto.GrabModeSync, xproto.GrabModeSync, 0, 0,
			xproto.ButtonIndexAny, xproto.ModMaskAny)
	}
	variants := []uint16{0, xproto.ModMaskLock, wm.numlockMask, wm.numlockMask | xproto.ModMaskLock}
	for _, b := range wm.buttons {
		if b.click != ClkClientWin {
			continue
		}
		for _, v := range variants {
			xproto.GrabButton(wm.conn, false, win, buttonMask,
				xproto.GrabModeAsync, xproto.GrabModeSync, 0, 0,
				b.button, b.mask|v)
		}
	}
}

func (wm *Wm) resolveTabKeys() {
	wm.tabKeys = tabKeycodes{
		mod:     keybind.StrToKeycodes(wm.X, wm.cfg.TabModKey),
		cycle:   keybind.StrToKeycodes(wm.X, wm.cfg.TabCycleKey),
		reverse: keybind.StrToKeycodes(wm.X, wm.cfg.TabReverseKey),
	}
}

// postInternal enqueues an internal command as a client message on the
// root window. Safe to call from other goroutines; the xgb connection
// serializes requests.
func (wm *Wm) postInternal(op, arg uint32) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wm.root,
		Type:   wm.cmdAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{op, arg, 0, 0, 0}),
	}
	xproto.SendEvent(wm.conn, false, wm.root,
		xproto.EventMaskSubstructureRedirect, string(ev.Bytes()))
}

func (wm *Wm) cleanup() {
	wm.altTabEnd()
	wm.view(^uint(0))
	for m := wm.mons; m != nil; m = m.next {
		for m.stack != nil {
			wm.unmanage(m.stack, false)
		}
	}
	xproto.UngrabKey(wm.conn, xproto.GrabAny, wm.root, xproto.ModMaskAny)
	for wm.mons != nil {
		wm.cleanupMon(wm.mons)
	}
	wm.srv.FocusRoot()
	wm.srv.DeleteActiveWindow()
	wm.srv.Sync()
}

func defaultSignals() map[int]func(*Wm) {
	return map[int]func(*Wm){
		1: func(wm *Wm) { wm.setLayout(LayoutTile, true) },
		2: func(wm *Wm) { wm.setLayout(LayoutMonocle, true) },
		3: func(wm *Wm) { wm.toggleGaps() },
		4: func(wm *Wm) { wm.toggleBar() },
	}
}

func defaultButtons() []buttonBinding {
	const mod = xproto.ModMask4
	return []buttonBinding{
		{ClkLtSymbol, 0, xproto.ButtonIndex1, func(wm *Wm, _ uint) { wm.setLayout(0, false) }},
		{ClkLtSymbol, 0, xproto.ButtonIndex3, func(wm *Wm, _ uint) { wm.layoutMenu() }},
		{ClkWinTitle, 0, xproto.ButtonIndex2, func(wm *Wm, _ uint) { wm.zoom() }},
		{ClkStatusText, 0, xproto.ButtonIndex1, func(wm *Wm, b uint) { wm.statusClick(b) }},
		{ClkStatusText, 0, xproto.ButtonIndex2, func(wm *Wm, b uint) { wm.statusClick(b) }},
		{ClkStatusText, 0, xproto.ButtonIndex3, func(wm *Wm, b uint) { wm.statusClick(b) }},
		{ClkClientWin, mod, xproto.ButtonIndex1, func(wm *Wm, _ uint) { wm.moveMouse() }},
		{ClkClientWin, mod, xproto.ButtonIndex2, func(wm *Wm, _ uint) { wm.toggleFloating() }},
		{ClkClientWin, mod, xproto.ButtonIndex3, func(wm *Wm, _ uint) { wm.resizeMouse() }},
		{ClkClientWin, mod | xproto.ModMaskShift, xproto.ButtonIndex1, func(wm *Wm, _ uint) { wm.swalMouse() }},
		{ClkTagBar, 0, xproto.ButtonIndex1, func(wm *Wm, t uint) { wm.view(t) }},
		{ClkTagBar, 0, xproto.ButtonIndex3, func(wm *Wm, t uint) { wm.toggleView(t) }},
		{ClkTagBar, mod, xproto.ButtonIndex1, func(wm *Wm, t uint) { wm.tag(t) }},
		{ClkTagBar, mod, xproto.ButtonIndex3, func(wm *Wm, t uint) { wm.toggleTag(t) }},
	}
}

// statusClick runs the configured status command with the pressed
// button exported in the environment.
func (wm *Wm) statusClick(button uint) {
	if len(wm.cfg.StatusCmd) == 0 {
		return
	}
	wm.spawn(wm.cfg.StatusCmd, fmt.Sprintf("BUTTON=%d", button))
}

func defaultKeys(cfg *Config) []*keyBinding {
	keys := []*keyBinding{
		// layouts
		{chord: "mod4-t", fn: func(wm *Wm) { wm.setLayout(LayoutTile, true) }},
		{chord: "mod4-m", fn: func(wm *Wm) { wm.setLayout(LayoutMonocle, true) }},
		{chord: "mod4-f", fn: func(wm *Wm) { wm.setLayout(LayoutFloat, true) }},
		{chord: "mod4-control-period", fn: func(wm *Wm) { wm.cycleLayout(+1) }},
		{chord: "mod4-control-comma", fn: func(wm *Wm) { wm.cycleLayout(-1) }},
		// mfact
		{chord: "mod4-h", fn: func(wm *Wm) { wm.setMFact(-0.05) }},
		{chord: "mod4-l", fn: func(wm *Wm) { wm.setMFact(+0.05) }},
		// cfact
		{chord: "mod4-shift-h", fn: func(wm *Wm) { wm.setCFact(+0.25) }},
		{chord: "mod4-shift-l", fn: func(wm *Wm) { wm.setCFact(-0.25) }},
		{chord: "mod4-shift-o", fn: func(wm *Wm) { wm.setCFact(0.0) }},
		// nmaster
		{chord: "mod4-i", fn: func(wm *Wm) { wm.incNMaster(+1) }},
		{chord: "mod4-d", fn: func(wm *Wm) { wm.incNMaster(-1) }},
		// gaps
		{chord: "mod4-mod1-u", fn: func(wm *Wm) { wm.incrGaps(+1) }},
		{chord: "mod4-mod1-shift-u", fn: func(wm *Wm) { wm.incrGaps(-1) }},
		{chord: "mod4-mod1-i", fn: func(wm *Wm) { wm.incrIGaps(+1) }},
		{chord: "mod4-mod1-shift-i", fn: func(wm *Wm) { wm.incrIGaps(-1) }},
		{chord: "mod4-mod1-o", fn: func(wm *Wm) { wm.incrOGaps(+1) }},
		{chord: "mod4-mod1-shift-o", fn: func(wm *Wm) { wm.incrOGaps(-1) }},
		{chord: "mod4-mod1-6", fn: func(wm *Wm) { wm.incrIHGaps(+1) }},
		{chord: "mod4-mod1-shift-6", fn: func(wm *Wm) { wm.incrIHGaps(-1) }},
		{chord: "mod4-mod1-7", fn: func(wm *Wm) { wm.incrIVGaps(+1) }},
		{chord: "mod4-mod1-shift-7", fn: func(wm *Wm) { wm.incrIVGaps(-1) }},
		{chord: "mod4-mod1-8", fn: func(wm *Wm) { wm.incrOHGaps(+1) }},
		{chord: "mod4-mod1-shift-8", fn: func(wm *Wm) { wm.incrOHGaps(-1) }},
		{chord: "mod4-mod1-9", fn: func(wm *Wm) { wm.incrOVGaps(+1) }},
		{chord: "mod4-mod1-shift-9", fn: func(wm *Wm) { wm.incrOVGaps(-1) }},
		{chord: "mod4-mod1-0", fn: func(wm *Wm) { wm.toggleGaps() }},
		{chord: "mod4-mod1-shift-0", fn: func(wm *Wm) { wm.defaultGaps() }},
		{chord: "mod4-b", fn: func(wm *Wm) { wm.toggleBar() }},
		// launchers
		{chord: "mod4-control-Return", fn: func(wm *Wm) { wm.spawn(wm.cfg.TermCmd) }},
		{chord: "mod4-control-space", fn: func(wm *Wm) { wm.spawn(wm.cfg.MenuCmd) }},
		// monitors
		{chord: "mod4-comma", fn: func(wm *Wm) { wm.focusMon(-1) }},
		{chord: "mod4-period", fn: func(wm *Wm) { wm.focusMon(+1) }},
		{chord: "mod4-shift-comma", fn: func(wm *Wm) { wm.tagMon(-1) }},
		{chord: "mod4-shift-period", fn: func(wm *Wm) { wm.tagMon(+1) }},
		// mark
		{chord: "mod4-u", fn: func(wm *Wm) { wm.swapClient() }},
		{chord: "mod4-shift-m", fn: func(wm *Wm) { wm.toggleMark() }},
		{chord: "mod4-control-shift-o", fn: func(wm *Wm) { wm.swapFocus() }},
		// windows
		{chord: "mod4-j", fn: func(wm *Wm) { wm.focusStack(+1) }},
		{chord: "mod4-k", fn: func(wm *Wm) { wm.focusStack(-1) }},
		{chord: "mod4-Return", fn: func(wm *Wm) { wm.zoom() }},
		{chord: "mod1-Tab", fn: func(wm *Wm) { wm.altTabStart(+1) }},
		{chord: "mod1-shift-Tab", fn: func(wm *Wm) { wm.altTabStart(-1) }},
		{chord: "mod4-control-j", fn: func(wm *Wm) { wm.pushDown() }},
		{chord: "mod4-control-k", fn: func(wm *Wm) { wm.pushUp() }},
		{chord: "mod4-control-c", fn: func(wm *Wm) { wm.killClient() }},
		{chord: "mod4-shift-space", fn: func(wm *Wm) { wm.toggleFloating() }},
		{chord: "mod4-shift-s", fn: func(wm *Wm) { wm.swalStopSel() }},
		// tags
		{chord: "mod4-0", fn: func(wm *Wm) { wm.view(^uint(0)) }},
		{chord: "mod4-o", fn: func(wm *Wm) { wm.winView() }},
		{chord: "mod4-Right", fn: func(wm *Wm) { wm.viewNext() }},
		{chord: "mod4-Left", fn: func(wm *Wm) { wm.viewPrev() }},
		{chord: "mod4-shift-0", fn: func(wm *Wm) { wm.tag(^uint(0)) }},
		{chord: "mod4-mod1-Right", fn: func(wm *Wm) { wm.tagToNext() }},
		{chord: "mod4-mod1-Left", fn: func(wm *Wm) { wm.tagToPrev() }},
		// scratchpad
		{chord: "mod4-control-shift-Tab", fn: func(wm *Wm) { wm.scratchpadShow() }},
		{chord: "mod4-control-shift-h", fn: func(wm *Wm) { wm.scratchpadHide() }},
		{chord: "mod4-control-shift-c", fn: func(wm *Wm) { wm.scratchpadRemove() }},
		// quit
		{chord: "mod4-shift-q", fn: func(wm *Wm) { wm.quit(true) }},
		{chord: "mod4-control-shift-q", fn: func(wm *Wm) { wm.quit(false) }},
	}
	for i := 0; i < len(cfg.Tags) && i < 9; i++ {
		mask := uint(1) << uint(i)
		digit := fmt.Sprintf("%d", i+1)
		keys = append(keys,
			&keyBinding{chord: "mod4-" + digit, fn: func(wm *Wm) { wm.view(mask) }},
			&keyBinding{chord: "mod4-mod1-" + digit, fn: func(wm *Wm) { wm.comboTag(mask) }},
			&keyBinding{chord: "mod4-control-" + digit, fn: func(wm *Wm) { wm.toggleView(mask) }},
			&keyBinding{chord: "mod4-control-mod1-" + digit, fn: func(wm *Wm) { wm.comboView(mask) }},
			&keyBinding{chord: "mod4-control-shift-" + digit, fn: func(wm *Wm) { wm.toggleTag(mask) }},
		)
	}
	return keys
}
