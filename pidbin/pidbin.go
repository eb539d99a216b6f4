// Package pidbin decodes the 8-bit binned PID significances stored in
// femto-dream debug tables.
package pidbin

const (
	NBins        = 254
	OverflowBin  = NBins >> 1
	UnderflowBin = -(NBins >> 1)
	RangeMin     = -6.35
	RangeMax     = 6.35
	BinWidth     = (RangeMax - RangeMin) / NBins
)

// Decode returns the bin centre of code. Codes outside
// [UnderflowBin, OverflowBin] clamp to the range edges.
func Decode(code int8) float64 {
	c := int(code)
	switch {
	case c < UnderflowBin:
		return RangeMin
	case c > OverflowBin:
		return RangeMax
	case c > 0:
		return (float64(c) - 0.5) * BinWidth
	default:
		return (float64(c) + 0.5) * BinWidth
	}
}

// Abs is the magnitude of the decoded significance.
func Abs(code int8) float64 {
	v := Decode(code)
	if v < 0 {
		return -v
	}
	return v
}
