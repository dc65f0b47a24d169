// Package axis implements SPEC_FULL.md component E: the deadzone ->
// expo -> gain shaping pipeline shared by every analog mapping, plus
// the abs<->rel/abs<->abs scaling rel-to-btn and analog handlers need
// around it. This is pure scalar math with no I/O or device
// dependency; no library in the retrieval pack models a reusable
// curve-shaping primitive, so it is built directly against the
// standard math package (see DESIGN.md).
package axis

import "math"

// TickRate is the nominal per-tick emission rate for abs->rel
// outputs, per spec.md §4.E ("60 Hz nominal").
const TickRate = 60.0

// Params bundles one mapping's shaping tuning.
type Params struct {
	Deadzone float64 // [0, 0.9)
	Expo     float64 // [-1, 1]
	Gain     float64
}

// clamp restricts x to [-1, 1].
func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// deadzone implements step 1: values inside the deadzone collapse to
// zero; values outside are rescaled so the output still spans
// [deadzone, 1] -> [0, 1] linearly.
func deadzone(x, dz float64) float64 {
	if dz <= 0 {
		return x
	}
	sign := 1.0
	ax := x
	if ax < 0 {
		sign = -1
		ax = -ax
	}
	if ax < dz {
		return 0
	}
	shaped := (ax - dz) / (1 - dz)
	return sign * shaped
}

// expo implements step 2: (1-e)*x + e*x^3 for e>=0. For e<0 it
// applies the inverse of the e>=0 curve with a = |e|: it returns the t
// that solves a*t^3 + (1-a)*t = x (a depressed cubic with one real
// root, found with Cardano's formula). Both branches pass through
// (-1,-1), (0,0) and (1,1) and are monotonic on [-1,1].
func expo(x, e float64) float64 {
	if e >= 0 {
		return (1-e)*x + e*x*x*x
	}
	a := -e
	p := (1 - a) / a
	q := -x / a
	d := math.Sqrt(q*q/4 + p*p*p/27)
	return math.Cbrt(-q/2+d) + math.Cbrt(-q/2-d)
}

// Shape runs the full deadzone -> expo -> gain pipeline on x (assumed
// already normalized into [-1, 1]), clamping the result.
func Shape(x float64, p Params) float64 {
	y := deadzone(x, p.Deadzone)
	y = expo(y, p.Expo)
	y = p.Gain * y
	return clamp(y)
}

// NormalizeAbs maps a raw absolute-axis sample into [-1, 1] given the
// axis' reported [min, max] range.
func NormalizeAbs(raw, min, max int32) float64 {
	if max <= min {
		return 0
	}
	mid := float64(min+max) / 2
	half := float64(max-min) / 2
	return clamp((float64(raw) - mid) / half)
}

// NormalizeRel maps an instantaneous relative-axis sample into
// [-1, 1] against a configurable cutoff speed interpreted as full
// deflection, per spec.md §4.E's rel->abs normalization step.
func NormalizeRel(raw int32, cutoff float64) float64 {
	if cutoff <= 0 {
		return 0
	}
	return clamp(float64(raw) / cutoff)
}

// DenormalizeAbs scales a shaped [-1, 1] value to the target
// absolute axis' reported [min, max] range, for abs->abs mappings.
func DenormalizeAbs(y float64, min, max int32) int32 {
	mid := float64(min+max) / 2
	half := float64(max-min) / 2
	return int32(math.Round(mid + y*half))
}

// RelTick scales a shaped [-1, 1] value into the per-tick relative
// emission for an abs->rel mapping, given the configured tick rate
// (TickRate unless overridden for tests).
func RelTick(y float64, rate float64) float64 {
	if rate <= 0 {
		rate = TickRate
	}
	return y * rate
}
