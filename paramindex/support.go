package paramindex

import "github.com/neurlang/quaternary"
import "github.com/neurlang/logformula/hash"

// Support builds a compact filter answering, for every name in the index,
// whether its weight is non-zero. Answers for names outside the index are
// arbitrary.
func (x *Index) Support(weights []float64) []byte {
	var set = make(map[uint32]bool, len(x.ends))
	for id, h := range x.hashes {
		var nonzero bool
		if id < len(weights) {
			nonzero = weights[id] != 0
		}
		set[h] = set[h] || nonzero
	}
	return quaternary.Make(set)
}

// InSupport queries a filter built by Support.
func InSupport(filter []byte, name string) bool {
	if len(filter) == 0 {
		return false
	}
	return quaternary.Filter(filter).GetUint32(hash.StringHash(0, name))
}
