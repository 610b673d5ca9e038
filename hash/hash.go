// Package hash implements the fast modular hash used to intern feature names
// and to fingerprint example structure.
package hash

import "encoding/binary"

// Hash mixes n with salt s and reduces the result into [0, max).
// Hash(n, s, 0) is always 0.
func Hash(n uint32, s uint32, max uint32) uint32 {
	// mix input with salt
	var m = uint32(n) - uint32(s)

	// xor shift with prime shift amounts
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mix salt back in
	m += s

	// multiply-shift range reduction instead of modulo
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// Mix combines n and s into a full-range 32 bit value.
func Mix(n uint32, s uint32) uint32 {
	return Hash(n, s, 0xFFFFFFFF)
}

// StringHash hashes str under salt n, four bytes at a time.
func StringHash(n uint32, str string) uint32 {
	var h = n ^ uint32(len(str))
	var i int
	for ; i+4 <= len(str); i += 4 {
		h = Mix(h, uint32(str[i])|uint32(str[i+1])<<8|uint32(str[i+2])<<16|uint32(str[i+3])<<24)
	}
	var tail [4]byte
	copy(tail[:], str[i:])
	return Mix(h, binary.LittleEndian.Uint32(tail[:])^uint32(len(str)-i)<<29)
}
