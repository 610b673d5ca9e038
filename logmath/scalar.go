// Package logmath implements signed numbers stored in the log domain.
//
// A Scalar keeps the natural log of the absolute value of a real number
// together with its sign, so long products of tiny probabilities neither
// underflow nor overflow.
package logmath

import "math"

import "github.com/pkg/errors"

// ErrDivideByZero is returned when dividing by the zero element.
var ErrDivideByZero = errors.New("logmath: divide by zero element")

// Scalar is a real number x stored as Log = log(|x|) and Negative = (x < 0).
//
// Log == -Inf is the zero element; it represents exactly 0 regardless of
// Negative. The zero value Scalar{} represents 1, the identity of Times.
type Scalar struct {
	Log      float64
	Negative bool
}

// Zero returns the zero element, the identity of Plus.
func Zero() Scalar {
	return Scalar{Log: math.Inf(-1)}
}

// One returns the identity of Times.
func One() Scalar {
	return Scalar{}
}

// FromReal converts a real number into the log domain. FromReal(0) is the
// zero element.
func FromReal(x float64) Scalar {
	if x < 0 {
		return Scalar{Log: math.Log(-x), Negative: true}
	}
	return Scalar{Log: math.Log(x)}
}

// FromLog returns the positive scalar whose log magnitude is l, that is e^l.
func FromLog(l float64) Scalar {
	return Scalar{Log: l}
}

// Exp converts the scalar back to a real number.
func (a Scalar) Exp() float64 {
	r := math.Exp(a.Log)
	if a.Negative {
		return -r
	}
	return r
}

// IsZero reports whether a is the zero element.
func (a Scalar) IsZero() bool {
	return math.IsInf(a.Log, -1)
}

// IsNaN reports whether the magnitude is not a number.
func (a Scalar) IsNaN() bool {
	return math.IsNaN(a.Log)
}

// Negate flips the sign.
func Negate(a Scalar) Scalar {
	return Scalar{Log: a.Log, Negative: !a.Negative}
}

// Times multiplies a and b.
func Times(a, b Scalar) Scalar {
	return Scalar{Log: a.Log + b.Log, Negative: a.Negative != b.Negative}
}

// Divide divides a by b. Dividing by the zero element returns ErrDivideByZero.
func Divide(a, b Scalar) (Scalar, error) {
	if b.IsZero() {
		return Zero(), ErrDivideByZero
	}
	if a.IsZero() {
		return Zero(), nil
	}
	return Scalar{Log: a.Log - b.Log, Negative: a.Negative != b.Negative}, nil
}

// Plus adds a and b, handling mixed signs as a subtraction of magnitudes.
// Operands of equal magnitude and opposite sign produce the zero element.
func Plus(a, b Scalar) Scalar {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	// order so that |a| >= |b|
	if b.Log > a.Log {
		a, b = b, a
	}
	if a.Negative == b.Negative {
		return Scalar{Log: a.Log + math.Log1p(math.Exp(b.Log-a.Log)), Negative: a.Negative}
	}
	if a.Log == b.Log {
		return Zero()
	}
	return Scalar{Log: a.Log + math.Log1p(-math.Exp(b.Log-a.Log)), Negative: a.Negative}
}

// Minus subtracts b from a.
func Minus(a, b Scalar) Scalar {
	return Plus(a, Negate(b))
}

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to
// or greater than b. Every zero element compares equal to every other.
func Compare(a, b Scalar) int {
	az, bz := a.IsZero(), b.IsZero()
	switch {
	case az && bz:
		return 0
	case az:
		if b.Negative {
			return 1
		}
		return -1
	case bz:
		if a.Negative {
			return -1
		}
		return 1
	}
	if a.Negative != b.Negative {
		if a.Negative {
			return -1
		}
		return 1
	}
	c := 0
	if a.Log < b.Log {
		c = -1
	} else if a.Log > b.Log {
		c = 1
	}
	if a.Negative {
		return -c
	}
	return c
}

// Max returns the larger of a and b.
func Max(a, b Scalar) Scalar {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}

// The Set* methods overwrite the receiver in place for allocation-free hot
// loops. Arguments are copied before the receiver is written, so passing
// *s itself as an operand is safe. Never Set a Scalar another computation is
// still reading through a pointer.

// SetTimes sets s to a*b.
func (s *Scalar) SetTimes(a, b Scalar) {
	*s = Times(a, b)
}

// SetPlus sets s to a+b.
func (s *Scalar) SetPlus(a, b Scalar) {
	*s = Plus(a, b)
}

// SetDivide sets s to a/b. On ErrDivideByZero s is left untouched.
func (s *Scalar) SetDivide(a, b Scalar) error {
	q, err := Divide(a, b)
	if err != nil {
		return err
	}
	*s = q
	return nil
}

// SetZero resets s to the zero element.
func (s *Scalar) SetZero() {
	*s = Zero()
}
