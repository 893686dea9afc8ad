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
	"errors"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"
	log "github.com/sirupsen/logrus"
)

// run is the main event loop. It owns every piece of manager state;
// handlers run synchronously, one event at a time.
func (wm *Wm) run() error {
	wm.srv.Sync()
	for wm.running {
		ev, err := wm.conn.WaitForEvent()
		if ev == nil && err == nil {
			return errors.New("X connection closed")
		}
		if err != nil {
			wm.handleXError(err)
			continue
		}
		wm.dispatch(ev)
	}
	return nil
}

// handleXError implements the permissive steady-state error policy:
// races against disappearing windows are expected and ignored.
func (wm *Wm) handleXError(err error) {
	switch err.(type) {
	case xproto.WindowError, xproto.MatchError, xproto.DrawableError, xproto.AccessError:
		log.WithError(err).Debug("ignored X error")
	default:
		log.WithError(err).Error("X error")
	}
}

func (wm *Wm) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		wm.keyPress(e)
	case xproto.KeyReleaseEvent:
		wm.combo = false
	case xproto.ButtonPressEvent:
		wm.buttonPress(e)
	case xproto.ButtonReleaseEvent:
		wm.combo = false
	case xproto.ClientMessageEvent:
		wm.clientMessage(e)
	case xproto.ConfigureRequestEvent:
		wm.configureRequest(e)
	case xproto.ConfigureNotifyEvent:
		wm.configureNotify(e)
	case xproto.DestroyNotifyEvent:
		wm.destroyNotify(e)
	case xproto.EnterNotifyEvent:
		wm.enterNotify(e)
	case xproto.ExposeEvent:
		wm.expose(e)
	case xproto.FocusInEvent:
		wm.focusIn(e)
	case xproto.MappingNotifyEvent:
		wm.mappingNotify(e)
	case xproto.MapRequestEvent:
		wm.mapRequest(e)
	case xproto.MotionNotifyEvent:
		wm.motionNotify(e)
	case xproto.PropertyNotifyEvent:
		wm.propertyNotify(e)
	case xproto.UnmapNotifyEvent:
		wm.unmapNotify(e)
	}
}

func (wm *Wm) keyPress(e xproto.KeyPressEvent) {
	clean := wm.cleanMask(e.State)
	for _, kb := range wm.keys {
		if wm.cleanMask(kb.mods) != clean {
			continue
		}
		for _, code := range kb.codes {
			if code == e.Detail {
				kb.fn(wm)
				return
			}
		}
	}
}

func (wm *Wm) buttonPress(e xproto.ButtonPressEvent) {
	click := ClkRootWin
	var arg uint

	// focus monitor if necessary
	if m := wm.winToMon(e.Event); m != nil && m != wm.selmon {
		wm.unfocus(wm.selmon.sel, true)
		wm.selmon = m
		wm.focus(nil)
	}
	if e.Event == wm.selmon.barwin {
		click, arg = wm.bar.clickRegion(wm.selmon, int(e.EventX))
	} else if c := wm.winToClient(e.Event); c != nil {
		wm.focus(c)
		wm.restack(wm.selmon)
		xproto.AllowEvents(wm.conn, xproto.AllowReplayPointer, xproto.TimeCurrentTime)
		click = ClkClientWin
	}
	for _, b := range wm.buttons {
		if b.click == click && b.button == xproto.Button(e.Detail) &&
			wm.cleanMask(b.mask) == wm.cleanMask(e.State) {
			a := arg
			if click == ClkStatusText {
				a = uint(e.Detail)
			}
			b.fn(wm, a)
		}
	}
}

func (wm *Wm) clientMessage(e xproto.ClientMessageEvent) {
	if e.Type == wm.cmdAtom {
		data := e.Data.Data32
		switch data[0] {
		case internalQuit:
			wm.quit(false)
		case internalRestart:
			wm.quit(true)
		case internalSetLayout:
			wm.setLayout(clampLayout(int(data[1])), true)
		}
		return
	}
	c := wm.winToClient(e.Window)
	if c == nil {
		return
	}
	data := e.Data.Data32
	if name, err := wm.atomName(e.Type); err == nil && name == "_NET_WM_STATE" {
		fs1, _ := wm.atomName(xproto.Atom(data[1]))
		fs2, _ := wm.atomName(xproto.Atom(data[2]))
		if fs1 == "_NET_WM_STATE_FULLSCREEN" || fs2 == "_NET_WM_STATE_FULLSCREEN" {
			// 1 add, 2 toggle
			wm.setFullscreen(c, data[0] == 1 ||
				(data[0] == 2 && (!c.isFullscreen || c.isFakeFullscreen)))
		}
	} else if err == nil && name == "_NET_ACTIVE_WINDOW" {
		if c != wm.selmon.sel && !c.isUrgent {
			wm.setUrgent(c, true)
		}
	}
}

func (wm *Wm) configureRequest(e xproto.ConfigureRequestEvent) {
	kind, c, _ := wm.winToClient2(e.Window)
	switch kind {
	case clientRegular, clientSwallowee:
		if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
			c.bw = int(e.BorderWidth)
		} else if c.isFloating || wm.selmon.lt[wm.selmon.sellt] == LayoutFloat {
			m := c.mon
			if !c.isSteam {
				if e.ValueMask&xproto.ConfigWindowX != 0 {
					c.oldx = c.x
					c.x = m.mx + int(e.X)
				}
				if e.ValueMask&xproto.ConfigWindowY != 0 {
					c.oldy = c.y
					c.y = m.my + int(e.Y)
				}
			}
			if e.ValueMask&xproto.ConfigWindowWidth != 0 {
				c.oldw = c.w
				c.w = int(e.Width)
			}
			if e.ValueMask&xproto.ConfigWindowHeight != 0 {
				c.oldh = c.h
				c.h = int(e.Height)
			}
			if c.x+c.w > m.mx+m.mw && c.isFloating {
				c.x = m.mx + (m.mw/2 - c.width()/2) // center x
			}
			if c.y+c.h > m.my+m.mh && c.isFloating {
				c.y = m.my + (m.mh/2 - c.height()/2) // center y
			}
			if e.ValueMask&(xproto.ConfigWindowX|xproto.ConfigWindowY) != 0 &&
				e.ValueMask&(xproto.ConfigWindowWidth|xproto.ConfigWindowHeight) == 0 {
				wm.srv.ConfigureNotify(c.win, c.x, c.y, c.w, c.h, c.bw)
			}
			if c.isVisible() {
				wm.srv.MoveResizeWindow(c.win, c.x, c.y, c.w, c.h, c.bw)
			}
		} else {
			wm.srv.ConfigureNotify(c.win, c.x, c.y, c.w, c.h, c.bw)
		}
	case clientSwallower:
		// refuse move/resize requests for swallowers; synthetic
		// ConfigureNotify per ICCCM 4.1.5
		wm.srv.ConfigureNotify(c.win, c.x, c.y, c.w, c.h, c.bw)
	default:
		var vals []uint32
		for _, f := range []struct {
			flag uint16
			val  uint32
		}{
			{xproto.ConfigWindowX, uint32(e.X)},
			{xproto.ConfigWindowY, uint32(e.Y)},
			{xproto.ConfigWindowWidth, uint32(e.Width)},
			{xproto.ConfigWindowHeight, uint32(e.Height)},
			{xproto.ConfigWindowBorderWidth, uint32(e.BorderWidth)},
			{xproto.ConfigWindowSibling, uint32(e.Sibling)},
			{xproto.ConfigWindowStackMode, uint32(e.StackMode)},
		} {
			if e.ValueMask&f.flag != 0 {
				vals = append(vals, f.val)
			}
		}
		wm.srv.ConfigureRaw(e.Window, e.ValueMask, vals)
	}
	wm.srv.Sync()
}

func (wm *Wm) configureNotify(e xproto.ConfigureNotifyEvent) {
	if e.Window != wm.root {
		return
	}
	dirty := wm.sw != int(e.Width) || wm.sh != int(e.Height)
	wm.sw = int(e.Width)
	wm.sh = int(e.Height)
	if wm.updateGeom() || dirty {
		if wm.bar != nil {
			wm.bar.createBars()
		}
		for m := wm.mons; m != nil; m = m.next {
			for c := m.clients; c != nil; c = c.next {
				if c.isFullscreen && !c.isFakeFullscreen {
					wm.resizeClient(c, m.mx, m.my, m.mw, m.mh)
				}
			}
			if wm.bar != nil {
				wm.bar.reposition(m)
			}
		}
		wm.focus(nil)
		wm.arrange(nil)
	}
}

func (wm *Wm) destroyNotify(e xproto.DestroyNotifyEvent) {
	kind, c, root := wm.winToClient2(e.Window)
	switch kind {
	case clientRegular:
		wm.unmanage(c, true)
	case clientSwallowee:
		wm.swalStop(c, nil)
		wm.unmanage(c, true)
	case clientSwallower:
		// terminate the swallow beyond the dead link, then cut the
		// chain before it
		swee := root
		for swee.swallowedBy != c {
			swee = swee.swallowedBy
		}
		wm.swalStop(c, root)
		swee.swallowedBy = nil
		wm.updateClientList()
	}
}

func (wm *Wm) enterNotify(e xproto.EnterNotifyEvent) {
	if (e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior) &&
		e.Event != wm.root {
		return
	}
	c := wm.winToClient(e.Event)
	var m *Monitor
	if c != nil {
		m = c.mon
	} else {
		m = wm.winToMon(e.Event)
	}
	if m != wm.selmon {
		wm.unfocus(wm.selmon.sel, true)
		wm.selmon = m
	} else if c == nil || c == wm.selmon.sel {
		return
	}
	wm.focus(c)
}

func (wm *Wm) expose(e xproto.ExposeEvent) {
	if e.Count == 0 {
		if m := wm.winToMon(e.Window); m != nil {
			wm.drawBar(m)
		}
	}
}

// focusIn works around broken focus acquiring clients.
func (wm *Wm) focusIn(e xproto.FocusInEvent) {
	if wm.selmon.sel != nil && e.Event != wm.selmon.sel.win {
		wm.setFocus(wm.selmon.sel)
	}
}

func (wm *Wm) mappingNotify(e xproto.MappingNotifyEvent) {
	keybind.Initialize(wm.X)
	if e.Request == xproto.MappingKeyboard {
		wm.resolveTabKeys()
		wm.grabKeys()
	}
}

func (wm *Wm) mapRequest(e xproto.MapRequestEvent) {
	wa, err := wm.srv.Attributes(e.Window)
	if err != nil || wa.overrideRedirect {
		return
	}
	switch kind, c, root := wm.winToClient2(e.Window); kind {
	case clientRegular, clientSwallowee:
		// regulars and swallowees are always mapped; nothing to do
	case clientSwallower:
		// remapping a swallower stops the swallow
		swee := root
		for swee.swallowedBy != c {
			swee = swee.swallowedBy
		}
		wm.swalStop(swee, root)
	default:
		if s := wm.swalMatch(e.Window); s != nil {
			wm.swalManage(s, e.Window, wa)
		} else {
			wm.manage(e.Window, wa)
		}
	}
	if wm.cfg.SwalDecay > 0 {
		wm.swalDecayBy(1)
	}
}

func (wm *Wm) motionNotify(e xproto.MotionNotifyEvent) {
	if e.Event != wm.root {
		return
	}
	m := wm.rectToMon(int(e.RootX), int(e.RootY), 1, 1)
	if m != wm.motionMon && wm.motionMon != nil {
		wm.unfocus(wm.selmon.sel, true)
		wm.selmon = m
		wm.focus(nil)
	}
	wm.motionMon = m
}

func (wm *Wm) propertyNotify(e xproto.PropertyNotifyEvent) {
	name, err := wm.atomName(e.Atom)
	if err != nil {
		return
	}
	if e.Window == wm.root && name == "WM_NAME" {
		wm.updateStatus()
		return
	}
	if e.State == xproto.PropertyDelete {
		return
	}
	c := wm.winToClient(e.Window)
	if c == nil {
		return
	}
	switch name {
	case "WM_TRANSIENT_FOR":
		if !c.isFloating {
			if trans, ok := wm.srv.TransientFor(c.win); ok && wm.winToClient(trans) != nil {
				c.isFloating = true
				wm.arrange(c.mon)
			}
		}
	case "WM_NORMAL_HINTS":
		wm.updateSizeHints(c)
	case "WM_HINTS":
		wm.updateWMHints(c)
		wm.drawBars()
	}
	switch name {
	case "WM_NAME", "_NET_WM_NAME":
		wm.updateTitle(c)
		if c == c.mon.sel {
			wm.drawBar(c.mon)
		}
		wm.swalRetroactive(c)
	case "_NET_WM_ICON":
		wm.updateIcon(c)
		if c == c.mon.sel {
			wm.drawBar(c.mon)
		}
		wm.swalRetroactive(c)
	case "_NET_WM_WINDOW_TYPE":
		wm.updateWindowType(c)
	}
}

// unmapNotify withdraws the client. The wire protocol does not expose
// the send-event flag, so synthetic withdraw unmaps and real ones take
// the same path; the manager never unmaps a managed window itself, so
// any unmap of a managed window means the client is going away.
func (wm *Wm) unmapNotify(e xproto.UnmapNotifyEvent) {
	kind, c, _ := wm.winToClient2(e.Window)
	switch kind {
	case clientRegular:
		wm.unmanage(c, false)
	case clientSwallowee:
		wm.swalStop(c, nil)
		wm.unmanage(c, false)
	case clientSwallower:
		// swallowers are never mapped; nothing to do
	}
}

// updateStatus refreshes the status text from the root name, unless the
// name carries a command prefix.
func (wm *Wm) updateStatus() {
	name := wm.srv.RootName()
	if cmd, isCommand := parseRootName(name); isCommand {
		wm.runRootCommand(cmd)
		return
	}
	if name == "" {
		name = "gowm-" + version
	}
	wm.stext = name
	wm.drawBar(wm.selmon)
}

func (wm *Wm) atomName(a xproto.Atom) (string, error) {
	if a == 0 {
		return "", errors.New("no atom")
	}
	return wm.atomNameCached(a)
}
