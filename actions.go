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
	"bytes"
	"os/exec"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// forEachActivePertag applies f to every pertag index covered by the
// current view (plus the "all" slot when it is active).
func (wm *Wm) forEachActivePertag(f func(idx int)) {
	for i := 0; i < len(wm.cfg.Tags); i++ {
		if wm.selmon.tagset[wm.selmon.seltags]&(1<<uint(i)) != 0 {
			f(i + 1)
		}
	}
	if wm.selmon.pertag.curtag == 0 {
		f(0)
	}
}

func (wm *Wm) tag(mask uint) {
	if wm.selmon.sel != nil && mask&wm.cfg.tagMask() != 0 {
		wm.selmon.sel.tags = mask & wm.cfg.tagMask()
		wm.focus(nil)
		wm.arrange(wm.selmon)
	}
}

func (wm *Wm) toggleTag(mask uint) {
	if wm.selmon.sel == nil {
		return
	}
	newtags := wm.selmon.sel.tags ^ (mask & wm.cfg.tagMask())
	if newtags != 0 {
		wm.selmon.sel.tags = newtags
		wm.focus(nil)
		wm.arrange(wm.selmon)
	}
}

// comboTag accumulates tag assignments while the chord is held.
func (wm *Wm) comboTag(mask uint) {
	if wm.selmon.sel == nil || mask&wm.cfg.tagMask() == 0 {
		return
	}
	if wm.combo {
		wm.selmon.sel.tags |= mask & wm.cfg.tagMask()
	} else {
		wm.combo = true
		wm.selmon.sel.tags = mask & wm.cfg.tagMask()
	}
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

// comboView accumulates viewed tags while the chord is held.
func (wm *Wm) comboView(mask uint) {
	newtags := mask & wm.cfg.tagMask()
	if wm.combo {
		wm.selmon.tagset[wm.selmon.seltags] |= newtags
	} else {
		wm.selmon.seltags ^= 1
		wm.combo = true
		if newtags != 0 {
			wm.selmon.tagset[wm.selmon.seltags] = newtags
		}
	}
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

func (wm *Wm) setLayout(k LayoutKind, hasArg bool) {
	if !hasArg || k != wm.selmon.lt[wm.selmon.sellt] {
		wm.selmon.sellt ^= 1
	}
	if hasArg {
		wm.selmon.lt[wm.selmon.sellt] = k
	}
	wm.selmon.ltsymbol = wm.selmon.lt[wm.selmon.sellt].Symbol()

	wm.forEachActivePertag(func(i int) {
		wm.selmon.pertag.ltidxs[i][wm.selmon.sellt] = wm.selmon.lt[wm.selmon.sellt]
		wm.selmon.pertag.sellts[i] = wm.selmon.sellt
	})

	if wm.selmon.sel != nil {
		wm.arrange(wm.selmon)
	} else {
		wm.drawBar(wm.selmon)
	}
}

func (wm *Wm) cycleLayout(dir int) {
	cur := int(wm.selmon.lt[wm.selmon.sellt])
	next := (cur + dir + int(layoutCount)) % int(layoutCount)
	wm.setLayout(LayoutKind(next), true)
}

// setMFact adjusts the master factor; values above 1.0 set absolutely,
// zero restores the default.
func (wm *Wm) setMFact(f float64) {
	if wm.selmon.lt[wm.selmon.sellt] == LayoutFloat {
		return
	}
	var v float64
	if f < 1.0 {
		v = f + wm.selmon.mfact
	} else {
		v = f - 1.0
	}
	if f == 0.0 {
		v = wm.cfg.MFact
	}
	if v < 0.05 || v > 0.95 {
		return
	}
	wm.selmon.mfact = v
	wm.forEachActivePertag(func(i int) {
		wm.selmon.pertag.mfacts[i] = v
	})
	wm.arrange(wm.selmon)
}

// setCFact adjusts the selection's weight; zero resets it.
func (wm *Wm) setCFact(f float64) {
	c := wm.selmon.sel
	if c == nil || wm.selmon.lt[wm.selmon.sellt] == LayoutFloat {
		return
	}
	v := f + c.cfact
	if f == 0.0 {
		v = 1.0
	} else if v < 0.25 || v > 4.0 {
		return
	}
	c.cfact = v
	wm.arrange(wm.selmon)
}

func (wm *Wm) incNMaster(i int) {
	wm.selmon.nmaster = max(wm.selmon.nmaster+i, 0)
	wm.forEachActivePertag(func(idx int) {
		wm.selmon.pertag.nmasters[idx] = wm.selmon.nmaster
	})
	wm.arrange(wm.selmon)
}

func (wm *Wm) setGaps(oh, ov, ih, iv int) {
	m := wm.selmon
	m.gappoh = max(oh, 0)
	m.gappov = max(ov, 0)
	m.gappih = max(ih, 0)
	m.gappiv = max(iv, 0)
	wm.arrange(m)
}

func (wm *Wm) incrGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh+i, m.gappov+i, m.gappih+i, m.gappiv+i)
}

func (wm *Wm) incrIGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh, m.gappov, m.gappih+i, m.gappiv+i)
}

func (wm *Wm) incrOGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh+i, m.gappov+i, m.gappih, m.gappiv)
}

func (wm *Wm) incrIHGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh, m.gappov, m.gappih+i, m.gappiv)
}

func (wm *Wm) incrIVGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh, m.gappov, m.gappih, m.gappiv+i)
}

func (wm *Wm) incrOHGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh+i, m.gappov, m.gappih, m.gappiv)
}

func (wm *Wm) incrOVGaps(i int) {
	m := wm.selmon
	wm.setGaps(m.gappoh, m.gappov+i, m.gappih, m.gappiv)
}

func (wm *Wm) toggleGaps() {
	wm.enableGaps = !wm.enableGaps
	wm.arrange(nil)
}

func (wm *Wm) defaultGaps() {
	wm.setGaps(wm.cfg.GapOH, wm.cfg.GapOV, wm.cfg.GapIH, wm.cfg.GapIV)
}

func (wm *Wm) toggleBar() {
	wm.selmon.showbar = !wm.selmon.showbar
	wm.forEachActivePertag(func(i int) {
		wm.selmon.pertag.showbars[i] = wm.selmon.showbar
	})
	wm.updateBarPos(wm.selmon)
	if wm.bar != nil {
		wm.bar.reposition(wm.selmon)
	}
	wm.arrange(wm.selmon)
}

func (wm *Wm) toggleFloating() {
	sel := wm.selmon.sel
	if sel == nil {
		return
	}
	if sel.isFullscreen && !sel.isFakeFullscreen {
		return
	}
	sel.isFloating = !sel.isFloating || sel.isFixed
	if sel.isFloating {
		// restore last known float dimensions
		wm.resize(sel, sel.sfx, sel.sfy, sel.sfw, sel.sfh, false)
	} else {
		// save last known float dimensions
		sel.sfx, sel.sfy, sel.sfw, sel.sfh = sel.x, sel.y, sel.w, sel.h
	}
	wm.arrange(wm.selmon)
}

func (wm *Wm) killClient() {
	sel := wm.selmon.sel
	if sel == nil {
		return
	}
	if !wm.srv.SendProtocol(sel.win, "WM_DELETE_WINDOW") {
		wm.srv.KillClient(sel.win)
	}
}

func (wm *Wm) tagMon(dir int) {
	if wm.selmon.sel == nil || wm.mons.next == nil {
		return
	}
	wm.sendMon(wm.selmon.sel, wm.dirToMon(dir))
}

func (wm *Wm) tagToNext() {
	if wm.selmon.sel == nil {
		return
	}
	t := wm.nextTag()
	wm.tag(t)
	wm.view(t)
}

func (wm *Wm) tagToPrev() {
	if wm.selmon.sel == nil {
		return
	}
	t := wm.prevTag()
	wm.tag(t)
	wm.view(t)
}

func (wm *Wm) viewNext() { wm.view(wm.nextTag()) }
func (wm *Wm) viewPrev() { wm.view(wm.prevTag()) }

// winView switches to the view of the focused window.
func (wm *Wm) winView() {
	if c := wm.selmon.sel; c != nil {
		wm.view(c.tags)
	}
}

func (wm *Wm) quit(restart bool) {
	wm.restart = restart
	wm.running = false
	if restart {
		if err := wm.saveSession(); err != nil {
			log.WithError(err).Warn("save session")
		}
	}
}

// spawn launches a command detached from the window manager. The loop
// never waits on it.
func (wm *Wm) spawn(cmd []string, env ...string) {
	if len(cmd) == 0 {
		return
	}
	c := exec.Command(cmd[0], cmd[1:]...)
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if len(env) > 0 {
		c.Env = append(c.Environ(), env...)
	}
	if err := c.Start(); err != nil {
		log.WithError(err).WithField("cmd", cmd[0]).Warn("spawn")
		return
	}
	go c.Wait()
}

// layoutMenu asks an external menu for a layout index. The answer is
// fed back into the loop as an internal client message so the reply
// read never stalls event handling.
func (wm *Wm) layoutMenu() {
	cmd := wm.cfg.LayoutMenu
	if len(cmd) == 0 {
		return
	}
	c := exec.Command(cmd[0], cmd[1:]...)
	var out bytes.Buffer
	c.Stdout = &out
	if err := c.Start(); err != nil {
		log.WithError(err).Warn("layout menu")
		return
	}
	go func() {
		if err := c.Wait(); err != nil {
			return
		}
		idx, err := strconv.Atoi(string(bytes.TrimSpace(out.Bytes())))
		if err != nil {
			return
		}
		wm.postInternal(internalSetLayout, uint32(idx))
	}()
}
