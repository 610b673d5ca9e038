package hash

import (
	"testing"
)

// performance benchmark
func BenchmarkHash(b *testing.B) {
	n := uint32(0)
	s := uint32(0)
	for i := 0; i < b.N; i++ {
		n = Hash(n, s, 0xFFFFFFF0)
		s++
	}
}

func BenchmarkStringHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		StringHash(uint32(i), "frame=Commerce_buy|role=Buyer|dep=nsubj")
	}
}

// loop length test
func TestHash(t *testing.T) {
	const bound1 = 16
	const bound2 = 10000
	var count uint64
	for max := uint32(1); max <= 1<<bound1; max <<= 1 {
		var visited = make([]bool, max, max)
		var current uint32
		for s := uint32(0); s < bound2; s++ {
			current = Hash(current, s, max)
			if current == 0 || visited[current] {
				visited = make([]bool, max, max)
				continue
			} else {
				visited[current] = true
				count++
			}
		}
	}
	if count == 0 {
		t.Errorf("hash never left the origin")
	}
}

func TestStringHash(t *testing.T) {
	names := []string{"", "a", "ab", "abc", "abcd", "abcde", "feature_1", "feature_2", "feature_10"}
	seen := make(map[uint32]string)
	for _, name := range names {
		h := StringHash(0, name)
		if other, ok := seen[h]; ok {
			t.Errorf("StringHash collision between %q and %q", name, other)
		}
		seen[h] = name
		if StringHash(0, name) != h {
			t.Errorf("StringHash(%q) not deterministic", name)
		}
	}
	if StringHash(0, "abc") == StringHash(1, "abc") {
		t.Errorf("salt ignored")
	}
}

func TestDigestOrder(t *testing.T) {
	a := NewDigest()
	b := NewDigest()
	a.PutUint32(1)
	a.PutUint32(2)
	b.PutUint32(2)
	b.PutUint32(1)
	if a.Sum() == b.Sum() {
		t.Errorf("digest ignores order")
	}
	c := NewDigest()
	c.PutUint32(1)
	c.PutUint32(2)
	if a.Sum() != c.Sum() || c.Len() != 2 {
		t.Errorf("digest not deterministic")
	}
}

// sanity check fuzz
func FuzzHash(f *testing.F) {
	f.Add(uint32(0), uint32(0), uint32(0))
	f.Fuzz(func(t *testing.T, n, s, max uint32) {
		out := Hash(n, s, max)
		if max == 0 && out != 0 {
			t.Errorf("Hash(%d, %d, 0) == %d (max=0 should be 0)", n, s, out)
		}
		if max > 0 && out >= max {
			t.Errorf("Hash(%d, %d, %d) == %d (output bigger or equal than max)", n, s, max, out)
		}
	})
}
