package semiring

import (
	"math"

	"github.com/neurlang/logformula/logmath"
)

// Add is real addition.
var Add = NewOperation(func(a, b float64) float64 { return a + b }, 0)

// Mult is real multiplication; 0 is absorbing.
var Mult = NewOperationWithZero(func(a, b float64) float64 { return a * b }, 1, 0)

// Maximum takes the larger operand; +Inf is absorbing.
var Maximum = NewOperationWithZero(math.Max, math.Inf(-1), math.Inf(1))

// ProbMaximum is Maximum over probabilities, which are non-negative: 0 is
// the identity.
var ProbMaximum = NewOperationWithZero(math.Max, 0, math.Inf(1))

// Minimum takes the smaller operand; -Inf is absorbing.
var Minimum = NewOperationWithZero(math.Min, math.Inf(1), math.Inf(-1))

// LogAdd adds two reals given by their logs: log(e^a + e^b).
var LogAdd = NewOperation(func(a, b float64) float64 {
	return logmath.Plus(logmath.FromLog(a), logmath.FromLog(b)).Log
}, math.Inf(-1))

// LogPlus is ⊕ of the signed log-domain semiring.
var LogPlus = NewOperation(logmath.Plus, logmath.Zero())

// LogTimes is ⊗ of the signed log-domain semiring; the zero element is
// absorbing.
var LogTimes = NewOperationWithZero(logmath.Times, logmath.One(), logmath.Zero())

// LogMaximum keeps the larger signed log-domain operand.
var LogMaximum = NewOperation(logmath.Max, logmath.Scalar{Log: math.Inf(-1), Negative: true})

// Real is the (+, ×) semiring over float64.
func Real() Semiring[float64] {
	return Semiring[float64]{Plus: Add, Times: Mult}
}

// Log is the (log-sum-exp, +) semiring over signed log-domain scalars: real
// addition and multiplication carried out in log space.
func Log() Semiring[logmath.Scalar] {
	return Semiring[logmath.Scalar]{Plus: LogPlus, Times: LogTimes}
}

// LogFloat is Log over unsigned log values stored as plain float64.
func LogFloat() Semiring[float64] {
	return Semiring[float64]{Plus: LogAdd, Times: Add}
}

// MaxTimes is the Viterbi semiring over probabilities.
func MaxTimes() Semiring[float64] {
	return Semiring[float64]{Plus: ProbMaximum, Times: Mult}
}

// MaxPlus is the tropical semiring over scores.
func MaxPlus() Semiring[float64] {
	return Semiring[float64]{Plus: Maximum, Times: Add}
}

// LogMaxTimes is MaxTimes over log probabilities: (max, +).
func LogMaxTimes() Semiring[float64] {
	return Semiring[float64]{Plus: Maximum, Times: Add}
}

// LogViterbi is the (max, ×) semiring over signed log-domain scalars.
func LogViterbi() Semiring[logmath.Scalar] {
	return Semiring[logmath.Scalar]{Plus: LogMaximum, Times: LogTimes}
}
