package handler

import (
	"time"

	"github.com/input-remapper/inputremapperd/internal/event"
	"github.com/input-remapper/inputremapperd/internal/macro"
)

// Timer and Scheduler alias internal/macro's types directly rather
// than redeclaring an identical interface: one injection's
// *macro.RealScheduler (or *macro.SyncScheduler, in tests) drives both
// its macro engines and its axis-as-button release timers, and an
// alias keeps the two packages assignment-compatible without an
// adapter at every call site.
type Timer = macro.Timer
type Scheduler = macro.Scheduler

// AbsToBtnHandler latches an absolute axis into a synthetic press once
// its value crosses AnalogThreshold (a signed percentage of the axis'
// reported range) and releases it once the value returns inside the
// threshold. ForceReleaseTimeout, when non-zero, also arms a release
// timer on every qualifying sample so a device that stops reporting
// (rather than reporting a clean return-to-rest) cannot leave the
// synthetic press stuck down.
type AbsToBtnHandler struct {
	Min, Max            int32
	ThresholdPercent    int
	ForceReleaseTimeout time.Duration
	Leaf                Leaf
	Sched               Scheduler

	active bool
	timer  Timer
}

func (h *AbsToBtnHandler) crosses(raw int32) bool {
	mid := float64(h.Min+h.Max) / 2
	half := float64(h.Max-h.Min) / 2
	if half == 0 {
		return false
	}
	pct := (float64(raw) - mid) / half * 100
	if h.ThresholdPercent >= 0 {
		return pct >= float64(h.ThresholdPercent)
	}
	return pct <= float64(h.ThresholdPercent)
}

// Handle implements Handler for a raw EV_ABS sample.
func (h *AbsToBtnHandler) Handle(e event.InputEvent) Result {
	qualifies := h.crosses(e.Value)

	if qualifies {
		if !h.active {
			h.active = true
			h.Leaf.Press()
		}
		if h.ForceReleaseTimeout > 0 {
			if h.timer != nil {
				h.timer.Stop()
			}
			h.timer = h.Sched.AfterFunc(h.ForceReleaseTimeout, h.release)
		}
		return Consumed
	}

	if h.active {
		h.release()
	}
	return Consumed
}

func (h *AbsToBtnHandler) release() {
	if !h.active {
		return
	}
	h.active = false
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.Leaf.Release()
}

// RelToBtnHandler latches a relative axis into a synthetic press the
// moment a sample's magnitude crosses SpeedThreshold, and always
// releases it on a timer: rel samples carry no rest state, so the
// release timer (re-armed on every qualifying sample) is the only
// signal that motion has stopped.
type RelToBtnHandler struct {
	SpeedThreshold int
	ReleaseAfter   time.Duration
	Leaf           Leaf
	Sched          Scheduler

	active bool
	timer  Timer
}

func (h *RelToBtnHandler) qualifies(raw int32) bool {
	if h.SpeedThreshold >= 0 {
		return int(raw) >= h.SpeedThreshold
	}
	return int(raw) <= h.SpeedThreshold
}

// Handle implements Handler for a raw EV_REL sample.
func (h *RelToBtnHandler) Handle(e event.InputEvent) Result {
	if !h.qualifies(e.Value) {
		return Consumed
	}
	if !h.active {
		h.active = true
		h.Leaf.Press()
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	releaseAfter := h.ReleaseAfter
	if releaseAfter <= 0 {
		releaseAfter = 100 * time.Millisecond
	}
	h.timer = h.Sched.AfterFunc(releaseAfter, h.release)
	return Consumed
}

func (h *RelToBtnHandler) release() {
	if !h.active {
		return
	}
	h.active = false
	h.timer = nil
	h.Leaf.Release()
}
