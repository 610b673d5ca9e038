// Package paramindex implements the append-only bijection between feature
// names and the dense parameter ids backing weight and gradient vectors.
package paramindex

import "github.com/jbarham/primegen"
import "github.com/neurlang/logformula/hash"

// Unknown is the name returned for ids that were never assigned.
const Unknown = "<UNK>"

// Index maps names to sequential ids starting at 0. Every name is stored once
// in a shared byte arena; lookups use open addressing with double hashing over
// a prime sized table kept at most half full. The zero value is an empty
// index.
type Index struct {
	arena  []byte
	ends   []uint64
	hashes []uint32

	// slots holds id+1, 0 means empty
	slots []int32
}

// New returns an index pre-sized for capacity names.
func New(capacity int) *Index {
	if capacity < 4 {
		capacity = 4
	}
	return &Index{
		arena:  make([]byte, 0, capacity*16),
		ends:   make([]uint64, 0, capacity),
		hashes: make([]uint32, 0, capacity),
		slots:  make([]int32, nextPrime(uint64(2*capacity+1))),
	}
}

func nextPrime(n uint64) int {
	pg := primegen.New()
	pg.SkipTo(n)
	return int(pg.Next())
}

// Len returns the number of names.
func (x *Index) Len() int {
	return len(x.ends)
}

func (x *Index) name(id int) []byte {
	var start uint64
	if id > 0 {
		start = x.ends[id-1]
	}
	return x.arena[start:x.ends[id]]
}

// probe returns the slot holding name, or the empty slot where it belongs.
func (x *Index) probe(name string, h uint32) int {
	var size = uint32(len(x.slots))
	var pos = hash.Hash(h, 0, size)
	var step = 1 + hash.Hash(h, 0x9E3779B9, size-1)
	for {
		var s = x.slots[pos]
		if s == 0 {
			return int(pos)
		}
		if x.hashes[s-1] == h && string(x.name(int(s-1))) == name {
			return int(pos)
		}
		pos += step
		if pos >= size {
			pos -= size
		}
	}
}

func (x *Index) grow() {
	x.slots = make([]int32, nextPrime(uint64(4*len(x.ends)+1)))
	for id, h := range x.hashes {
		pos := x.probe(string(x.name(id)), h)
		x.slots[pos] = int32(id + 1)
	}
}

// Get returns the id of name if it was seen before.
func (x *Index) Get(name string) (int, bool) {
	if len(x.slots) == 0 {
		return 0, false
	}
	pos := x.probe(name, hash.StringHash(0, name))
	if s := x.slots[pos]; s != 0 {
		return int(s - 1), true
	}
	return 0, false
}

// GetOrCreate returns the id of name, assigning the next id on first sight.
func (x *Index) GetOrCreate(name string) int {
	if len(x.slots) == 0 {
		x.grow()
	}
	var h = hash.StringHash(0, name)
	pos := x.probe(name, h)
	if s := x.slots[pos]; s != 0 {
		return int(s - 1)
	}
	id := len(x.ends)
	x.arena = append(x.arena, name...)
	x.ends = append(x.ends, uint64(len(x.arena)))
	x.hashes = append(x.hashes, h)
	if 2*len(x.ends) > len(x.slots) {
		x.grow()
	} else {
		x.slots[pos] = int32(id + 1)
	}
	return id
}

// Lookup returns the name of id, or Unknown and false when id is out of range.
func (x *Index) Lookup(id int) (string, bool) {
	if id < 0 || id >= len(x.ends) {
		return Unknown, false
	}
	return string(x.name(id)), true
}
