// Package separator streams bytes through a Rabin rolling hash and emits
// boundary records whenever a predicate over the hash fires, with a
// non-overlapping reset between emissions.
package separator

import (
	"github.com/rustic-rs/cdc/bytesource"
	"github.com/rustic-rs/cdc/rabin"
)

// defaultSeparatorSizeNbBits gives a 64-byte window (2^6), matching
// restic/chunker's default WindowSize.
const defaultSeparatorSizeNbBits = 6

// defaultPredicateBits selects an expected chunk size of 2^13 = 8192 bytes:
// a boundary fires when the low 13 bits of the hash are all set.
const defaultPredicateBits = 13

// Separator records a single chunk boundary.
type Separator struct {
	// Index is the number of bytes consumed from the source up to and
	// including the byte that triggered this boundary.
	Index uint64
	// Hash is the rolling fingerprint at the moment the boundary fired.
	Hash uint64
}

// Predicate decides whether hash marks a chunk boundary.
type Predicate func(hash uint64) bool

// DefaultPredicate fires when the low 13 bits of hash are all 1, yielding an
// expected chunk size of 8192 bytes.
func DefaultPredicate(hash uint64) bool {
	const mask = uint64(1<<defaultPredicateBits) - 1
	return hash&mask == mask
}

// Iter pulls bytes from a ByteSource and emits Separator values. Boundaries
// never overlap: after one fires, the rolling hash's window is reset and
// refilled from fresh bytes before resuming, so two emitted boundaries are
// always at least the window size apart.
type Iter struct {
	src       bytesource.ByteSource
	predicate Predicate
	rabin     *rabin.Rabin64
	index     uint64
}

// New creates an Iter with the default 64-byte window and default
// predicate.
func New(src bytesource.ByteSource) (*Iter, error) {
	return CustomNew(src, defaultSeparatorSizeNbBits, DefaultPredicate)
}

// CustomNew creates an Iter with a caller-chosen window size (in bits, so the
// window is 2^windowSizeNbBits bytes) and boundary predicate.
func CustomNew(src bytesource.ByteSource, windowSizeNbBits uint32, predicate Predicate) (*Iter, error) {
	r, err := rabin.New(windowSizeNbBits)
	if err != nil {
		return nil, err
	}

	index := uint64(r.ResetAndPrefillWindow(src))

	return &Iter{
		src:       src,
		predicate: predicate,
		rabin:     r,
		index:     index,
	}, nil
}

// Next returns the next Separator, or ok=false once the underlying source is
// exhausted.
func (it *Iter) Next() (Separator, bool) {
	for {
		b, ok := it.src.NextByte()
		if !ok {
			return Separator{}, false
		}

		it.rabin.Slide(b)
		it.index++

		if it.predicate(it.rabin.Hash()) {
			sep := Separator{Index: it.index, Hash: it.rabin.Hash()}

			// Separators never overlap: reset and refill from fresh bytes
			// before the next boundary can be considered.
			it.index += uint64(it.rabin.ResetAndPrefillWindow(it.src))

			return sep, true
		}
	}
}
