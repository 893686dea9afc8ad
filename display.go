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
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"github.com/jezek/xgbutil/xinerama"
	"github.com/jezek/xgbutil/xprop"
	log "github.com/sirupsen/logrus"
)

// head is one physical output rectangle.
type head struct {
	x, y, w, h int
}

// windowAttrs is the subset of window attributes and geometry consulted
// before managing a window.
type windowAttrs struct {
	x, y, w, h, bw   int
	overrideRedirect bool
	viewable         bool
}

// server is the set of X operations the core state machine issues.
// There is exactly one real implementation; tests substitute a
// recording fake so invariants can be checked without a display.
type server interface {
	Sync()

	MoveResizeWindow(win xproto.Window, x, y, w, h, bw int)
	MoveWindow(win xproto.Window, x, y int)
	ConfigureRaw(win xproto.Window, mask uint16, vals []uint32)
	SetBorderWidth(win xproto.Window, bw int)
	SetBorderColor(win xproto.Window, px uint32)
	MapWindow(win xproto.Window)
	UnmapWindow(win xproto.Window)
	RaiseWindow(win xproto.Window)
	StackWindowBelow(win, sibling xproto.Window)
	SelectClientInput(win xproto.Window)

	SetInputFocus(win xproto.Window)
	FocusRoot()
	SetActiveWindow(win xproto.Window)
	DeleteActiveWindow()
	GrabClientButtons(win xproto.Window, focused bool)

	SetClientState(win xproto.Window, state uint)
	SendProtocol(win xproto.Window, proto string) bool
	SetFullscreenProp(win xproto.Window, on bool)
	SetUrgencyHint(win xproto.Window, urgent bool)
	AppendClientList(win xproto.Window)
	SetClientList(wins []xproto.Window)
	ConfigureNotify(win xproto.Window, x, y, w, h, bw int)

	KillClient(win xproto.Window)

	Attributes(win xproto.Window) (windowAttrs, error)
	Title(win xproto.Window) string
	Class(win xproto.Window) (class, instance string)
	TransientFor(win xproto.Window) (xproto.Window, bool)
	NormalHints(win xproto.Window) (icccm.NormalHints, error)
	Hints(win xproto.Window) (icccm.Hints, error)
	WindowKind(win xproto.Window) (fullscreen, dialog bool)
	Icon(win xproto.Window, size int) *clientIcon
	RootName() string
	Heads() ([]head, error)
	PointerPosition() (x, y int, ok bool)
}

// x11 talks to the real display through the xgb connection owned by the
// window manager.
type x11 struct {
	wm *Wm
}

func (s *x11) Sync() {
	s.wm.X.Sync()
}

func (s *x11) MoveResizeWindow(win xproto.Window, x, y, w, h, bw int) {
	xproto.ConfigureWindow(s.wm.conn, win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|
			xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(x), uint32(y), uint32(w), uint32(h), uint32(bw)})
}

func (s *x11) MoveWindow(win xproto.Window, x, y int) {
	xproto.ConfigureWindow(s.wm.conn, win,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(x), uint32(y)})
}

func (s *x11) ConfigureRaw(win xproto.Window, mask uint16, vals []uint32) {
	xproto.ConfigureWindow(s.wm.conn, win, mask, vals)
}

func (s *x11) SetBorderWidth(win xproto.Window, bw int) {
	xproto.ConfigureWindow(s.wm.conn, win,
		xproto.ConfigWindowBorderWidth, []uint32{uint32(bw)})
}

func (s *x11) SetBorderColor(win xproto.Window, px uint32) {
	xproto.ChangeWindowAttributes(s.wm.conn, win,
		xproto.CwBorderPixel, []uint32{px})
}

func (s *x11) MapWindow(win xproto.Window)   { xproto.MapWindow(s.wm.conn, win) }
func (s *x11) UnmapWindow(win xproto.Window) { xproto.UnmapWindow(s.wm.conn, win) }

func (s *x11) RaiseWindow(win xproto.Window) {
	xproto.ConfigureWindow(s.wm.conn, win,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (s *x11) StackWindowBelow(win, sibling xproto.Window) {
	if sibling == 0 {
		xproto.ConfigureWindow(s.wm.conn, win,
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})
		return
	}
	xproto.ConfigureWindow(s.wm.conn, win,
		xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
		[]uint32{uint32(sibling), xproto.StackModeBelow})
}

func (s *x11) SelectClientInput(win xproto.Window) {
	xproto.ChangeWindowAttributes(s.wm.conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskEnterWindow | xproto.EventMaskFocusChange |
			xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify})
}

func (s *x11) SetInputFocus(win xproto.Window) {
	xproto.SetInputFocus(s.wm.conn,
		xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime)
}

func (s *x11) FocusRoot() {
	xproto.SetInputFocus(s.wm.conn,
		xproto.InputFocusPointerRoot, s.wm.root, xproto.TimeCurrentTime)
}

func (s *x11) SetActiveWindow(win xproto.Window) {
	if err := ewmh.ActiveWindowSet(s.wm.X, win); err != nil {
		log.WithError(err).Debug("set active window")
	}
}

func (s *x11) DeleteActiveWindow() {
	atom, err := xprop.Atm(s.wm.X, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return
	}
	xproto.DeleteProperty(s.wm.conn, s.wm.root, atom)
}

func (s *x11) GrabClientButtons(win xproto.Window, focused bool) {
	s.wm.grabButtons(win, focused)
}

func (s *x11) SetClientState(win xproto.Window, state uint) {
	icccm.WmStateSet(s.wm.X, win, &icccm.WmState{State: state})
}

func (s *x11) SendProtocol(win xproto.Window, proto string) bool {
	protocols, _ := icccm.WmProtocolsGet(s.wm.X, win)
	supported := false
	for _, p := range protocols {
		if p == proto {
			supported = true
			break
		}
	}
	if !supported {
		return false
	}
	wmProtocols, err := xprop.Atm(s.wm.X, "WM_PROTOCOLS")
	if err != nil {
		return false
	}
	target, err := xprop.Atm(s.wm.X, proto)
	if err != nil {
		return false
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(target), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	xproto.SendEvent(s.wm.conn, false, win,
		xproto.EventMaskNoEvent, string(ev.Bytes()))
	return true
}

func (s *x11) SetFullscreenProp(win xproto.Window, on bool) {
	if on {
		ewmh.WmStateSet(s.wm.X, win, []string{"_NET_WM_STATE_FULLSCREEN"})
	} else {
		ewmh.WmStateSet(s.wm.X, win, []string{})
	}
}

func (s *x11) SetUrgencyHint(win xproto.Window, urgent bool) {
	hints, err := icccm.WmHintsGet(s.wm.X, win)
	if err != nil {
		return
	}
	if urgent {
		hints.Flags |= icccm.HintUrgency
	} else {
		hints.Flags &^= icccm.HintUrgency
	}
	icccm.WmHintsSet(s.wm.X, win, hints)
}

func (s *x11) AppendClientList(win xproto.Window) {
	atom, err := xprop.Atm(s.wm.X, "_NET_CLIENT_LIST")
	if err != nil {
		return
	}
	buf := make([]byte, 4)
	xgb.Put32(buf, uint32(win))
	xproto.ChangeProperty(s.wm.conn, xproto.PropModeAppend, s.wm.root,
		atom, xproto.AtomWindow, 32, 1, buf)
}

func (s *x11) SetClientList(wins []xproto.Window) {
	if err := ewmh.ClientListSet(s.wm.X, wins); err != nil {
		log.WithError(err).Debug("set client list")
	}
}

func (s *x11) ConfigureNotify(win xproto.Window, x, y, w, h, bw int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     0,
		X:                int16(x),
		Y:                int16(y),
		Width:            uint16(w),
		Height:           uint16(h),
		BorderWidth:      uint16(bw),
		OverrideRedirect: false,
	}
	xproto.SendEvent(s.wm.conn, false, win,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// KillClient forcefully disconnects a client which ignores
// WM_DELETE_WINDOW. The server grab avoids racing its teardown.
func (s *x11) KillClient(win xproto.Window) {
	s.wm.conn.Sync()
	xproto.GrabServer(s.wm.conn)
	xproto.SetCloseDownMode(s.wm.conn, xproto.CloseDownDestroyAll)
	xproto.KillClient(s.wm.conn, uint32(win))
	s.wm.conn.Sync()
	xproto.UngrabServer(s.wm.conn)
}

func (s *x11) Attributes(win xproto.Window) (windowAttrs, error) {
	attrs, err := xproto.GetWindowAttributes(s.wm.conn, win).Reply()
	if err != nil {
		return windowAttrs{}, err
	}
	geom, err := xproto.GetGeometry(s.wm.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return windowAttrs{}, err
	}
	return windowAttrs{
		x:                int(geom.X),
		y:                int(geom.Y),
		w:                int(geom.Width),
		h:                int(geom.Height),
		bw:               int(geom.BorderWidth),
		overrideRedirect: attrs.OverrideRedirect,
		viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

// Title prefers _NET_WM_NAME over WM_NAME, as pagers do.
func (s *x11) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(s.wm.X, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(s.wm.X, win); err == nil && name != "" {
		return name
	}
	return ""
}

func (s *x11) Class(win xproto.Window) (string, string) {
	cls, err := icccm.WmClassGet(s.wm.X, win)
	if err != nil || cls == nil {
		return "", ""
	}
	return cls.Class, cls.Instance
}

func (s *x11) TransientFor(win xproto.Window) (xproto.Window, bool) {
	trans, err := icccm.WmTransientForGet(s.wm.X, win)
	if err != nil || trans == 0 {
		return 0, false
	}
	return trans, true
}

func (s *x11) NormalHints(win xproto.Window) (icccm.NormalHints, error) {
	hints, err := icccm.WmNormalHintsGet(s.wm.X, win)
	if err != nil {
		return icccm.NormalHints{}, err
	}
	return *hints, nil
}

func (s *x11) Hints(win xproto.Window) (icccm.Hints, error) {
	hints, err := icccm.WmHintsGet(s.wm.X, win)
	if err != nil {
		return icccm.Hints{}, err
	}
	return *hints, nil
}

func (s *x11) WindowKind(win xproto.Window) (fullscreen, dialog bool) {
	if states, err := ewmh.WmStateGet(s.wm.X, win); err == nil {
		for _, st := range states {
			if st == "_NET_WM_STATE_FULLSCREEN" {
				fullscreen = true
			}
		}
	}
	if types, err := ewmh.WmWindowTypeGet(s.wm.X, win); err == nil {
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
				dialog = true
			}
		}
	}
	return fullscreen, dialog
}

func (s *x11) Icon(win xproto.Window, size int) *clientIcon {
	return fetchIcon(s.wm.X, win, size)
}

func (s *x11) RootName() string {
	name, err := icccm.WmNameGet(s.wm.X, s.wm.root)
	if err != nil {
		return ""
	}
	return name
}

func (s *x11) PointerPosition() (int, int, bool) {
	reply, err := xproto.QueryPointer(s.wm.conn, s.wm.root).Reply()
	if err != nil || reply == nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

func (s *x11) Heads() ([]head, error) {
	phys, err := xinerama.PhysicalHeads(s.wm.X)
	if err != nil || len(phys) == 0 {
		return []head{{x: 0, y: 0, w: s.wm.sw, h: s.wm.sh}}, nil
	}
	heads := make([]head, 0, len(phys))
	for _, p := range phys {
		heads = append(heads, head{x: p.X(), y: p.Y(), w: p.Width(), h: p.Height()})
	}
	return heads, nil
}
