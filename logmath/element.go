package logmath

import "strconv"

// Element classifies a Scalar as either Zero or NonZero, so callers switch on
// the case instead of comparing magnitudes against -Inf.
type Element interface {
	isElement()
}

// ZeroElement is the case of the exact zero.
type ZeroElement struct{}

// NonZeroElement carries a scalar whose magnitude is finite (or NaN).
type NonZeroElement struct {
	Value Scalar
}

func (ZeroElement) isElement()    {}
func (NonZeroElement) isElement() {}

// Element classifies a.
func (a Scalar) Element() Element {
	if a.IsZero() {
		return ZeroElement{}
	}
	return NonZeroElement{Value: a}
}

// String prints the log magnitude, the sign and the real value.
func (a Scalar) String() string {
	sign := "+"
	if a.Negative {
		sign = "-"
	}
	return sign + "e^" + strconv.FormatFloat(a.Log, 'g', -1, 64) +
		" (" + strconv.FormatFloat(a.Exp(), 'g', -1, 64) + ")"
}
