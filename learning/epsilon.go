package learning

// MachineEpsilon returns the smallest power of two e with 1+e != 1.
func MachineEpsilon() float64 {
	var eps = 1.0
	for {
		var next = eps / 2
		if 1+next == 1 {
			return eps
		}
		eps = next
	}
}
