package handler

import (
	"time"

	"github.com/input-remapper/inputremapperd/internal/axis"
	"github.com/input-remapper/inputremapperd/internal/event"
)

// AnalogWriter is the subset of the output registry an analog handler
// needs to emit its shaped samples.
type AnalogWriter interface {
	Write(e event.InputEvent, target string) error
}

// AbsToAbsHandler normalizes an incoming abs sample against its source
// range, shapes it, and denormalizes it into the target abs axis'
// range -- a direct stick-to-stick or trigger-to-trigger remap.
type AbsToAbsHandler struct {
	SourceMin, SourceMax int32
	TargetMin, TargetMax int32
	Params               axis.Params
	OutputType           event.EvType
	OutputCode           event.EvCode
	Target               string
	Origin               string
	Writer               AnalogWriter
}

func (h *AbsToAbsHandler) Handle(e event.InputEvent) Result {
	x := axis.NormalizeAbs(e.Value, h.SourceMin, h.SourceMax)
	y := axis.Shape(x, h.Params)
	out := axis.DenormalizeAbs(y, h.TargetMin, h.TargetMax)
	h.Writer.Write(event.New(h.OutputType, h.OutputCode, out, h.Origin), h.Target)
	return Consumed
}

// RelToRelHandler rescales an incoming rel delta by the shaping
// pipeline's gain stage (deadzone/expo applied to the normalized
// instantaneous speed), used for e.g. mouse-to-mouse sensitivity
// remaps.
type RelToRelHandler struct {
	InputCutoff float64
	Params      axis.Params
	OutputType  event.EvType
	OutputCode  event.EvCode
	Target      string
	Origin      string
	Writer      AnalogWriter
}

func (h *RelToRelHandler) Handle(e event.InputEvent) Result {
	x := axis.NormalizeRel(e.Value, h.InputCutoff)
	y := axis.Shape(x, h.Params)
	out := int32(y * h.InputCutoff)
	if out == 0 {
		return Consumed
	}
	h.Writer.Write(event.New(h.OutputType, h.OutputCode, out, h.Origin), h.Target)
	return Consumed
}

// AbsToRelHandler drives a target rel axis from a held abs sample by
// re-posting itself on the scheduler at TickRate for as long as the
// stick stays off-center, per spec.md §4.E's "60 Hz nominal" no-
// blocking-ticker requirement: each tick is one AfterFunc continuation,
// never a dedicated goroutine loop.
type AbsToRelHandler struct {
	SourceMin, SourceMax int32
	Params               axis.Params
	TickRate             float64
	OutputType           event.EvType
	OutputCode           event.EvCode
	Target               string
	Origin               string
	Writer               AnalogWriter
	Sched                Scheduler

	shaped  float64
	ticking bool
}

func (h *AbsToRelHandler) Handle(e event.InputEvent) Result {
	x := axis.NormalizeAbs(e.Value, h.SourceMin, h.SourceMax)
	h.shaped = axis.Shape(x, h.Params)
	if h.shaped != 0 && !h.ticking {
		h.ticking = true
		h.tick()
	}
	return Consumed
}

func (h *AbsToRelHandler) tick() {
	if h.shaped == 0 {
		h.ticking = false
		return
	}
	rate := h.TickRate
	if rate <= 0 {
		rate = axis.TickRate
	}
	out := int32(axis.RelTick(h.shaped, rate))
	if out != 0 {
		h.Writer.Write(event.New(h.OutputType, h.OutputCode, out, h.Origin), h.Target)
	}
	period := time.Duration(float64(time.Second) / rate)
	h.Sched.AfterFunc(period, h.tick)
}

// RelToAbsHandler maps each rel sample on its own to an abs position:
// the sample's value is normalized against InputCutoff (the
// configurable "full deflection" speed), shaped, and denormalized to
// the target abs range. No position is accumulated across samples.
type RelToAbsHandler struct {
	InputCutoff          float64
	TargetMin, TargetMax int32
	Params               axis.Params
	OutputType           event.EvType
	OutputCode           event.EvCode
	Target               string
	Origin               string
	Writer               AnalogWriter
}

func (h *RelToAbsHandler) Handle(e event.InputEvent) Result {
	x := axis.NormalizeRel(e.Value, h.InputCutoff)
	y := axis.Shape(x, h.Params)
	out := axis.DenormalizeAbs(y, h.TargetMin, h.TargetMax)
	h.Writer.Write(event.New(h.OutputType, h.OutputCode, out, h.Origin), h.Target)
	return Consumed
}
