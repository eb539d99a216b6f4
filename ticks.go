package femtoplot

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks puts labelled major ticks on round values, with as many
// digits as the tick spacing needs, and unlabelled minor ticks between
// them.
type PreciseTicks struct {
	NSuggestedTicks int
}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	if t.NSuggestedTicks < 2 {
		t.NSuggestedTicks = 4
	}
	if !(max > min) {
		return nil
	}

	tens := math.Pow10(int(math.Floor(math.Log10(max - min))))
	n := (max - min) / tens
	for n < float64(t.NSuggestedTicks)-1 {
		tens /= 10
		n = (max - min) / tens
	}

	majorMult := int(n / float64(t.NSuggestedTicks-1))
	switch majorMult {
	case 7:
		majorMult = 6
	case 9:
		majorMult = 8
	}
	majorDelta := float64(majorMult) * tens

	// digits needed to tell the largest label from its neighbour
	mag := math.Max(math.Abs(min), math.Abs(max))
	prec := int(math.Ceil(math.Log10(mag)) - math.Floor(math.Log10(majorDelta)))

	var ticks []plot.Tick
	for val := math.Floor(min/majorDelta) * majorDelta; val <= max; val += majorDelta {
		if val < min {
			continue
		}
		v := round(val, prec)
		ticks = append(ticks, plot.Tick{Value: v, Label: formatFloatTick(v, -1)})
	}

	minorDelta := majorDelta / 2
	switch majorMult {
	case 3, 6:
		minorDelta = majorDelta / 3
	case 5:
		minorDelta = majorDelta / 5
	}

	nmajor := len(ticks)
	for val := math.Floor(min/minorDelta) * minorDelta; val <= max; val += minorDelta {
		if val < min || onMajor(ticks[:nmajor], val, minorDelta/2) {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	return ticks
}

func onMajor(major []plot.Tick, v, tol float64) bool {
	for _, t := range major {
		if math.Abs(t.Value-v) < tol {
			return true
		}
	}
	return false
}

// round rounds x to prec decimal digits, half away from zero.
func round(x float64, prec int) float64 {
	if x == 0 {
		// no negative zero
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	intermed := x * pow
	if math.IsInf(intermed, 0) {
		return x
	}
	if x < 0 {
		x = math.Ceil(intermed - 0.5)
	} else {
		x = math.Floor(intermed + 0.5)
	}
	if x == 0 {
		return 0
	}
	return x / pow
}

func formatFloatTick(v float64, prec int) string {
	return strconv.FormatFloat(v, 'g', prec, 64)
}
