package hash

import (
	"crypto/sha256"
	"encoding/binary"
	gohash "hash"
)

// Digest is an ordered sha256 accumulator. Two digests are equal only if the
// same values were written in the same order.
type Digest struct {
	sha gohash.Hash
	n   uint64
	buf [8]byte
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	return &Digest{sha: sha256.New()}
}

// PutUint32 appends a value.
func (d *Digest) PutUint32(value uint32) {
	binary.LittleEndian.PutUint32(d.buf[:4], value)
	d.sha.Write(d.buf[:4])
	d.n++
}

// PutUint64 appends a value.
func (d *Digest) PutUint64(value uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], value)
	d.sha.Write(d.buf[:])
	d.n++
}

// Len returns the number of values written.
func (d *Digest) Len() uint64 {
	return d.n
}

// Sum returns the digest of everything written so far.
func (d *Digest) Sum() (ret [32]byte) {
	copy(ret[:], d.sha.Sum(nil))
	return
}
