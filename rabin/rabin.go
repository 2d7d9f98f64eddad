// Package rabin implements a 64-bit Rabin rolling fingerprint over a
// power-of-two sliding window, expressed as polynomial arithmetic over
// GF(2) with precomputed lookup tables. It is the hot path of the CDC
// pipeline: Slide must be O(1) and allocation-free.
package rabin

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rustic-rs/cdc/bytesource"
	"github.com/rustic-rs/cdc/internal/errors"
	"github.com/rustic-rs/cdc/polynom"
)

type tables struct {
	out [256]polynom.Polynom64
	mod [256]polynom.Polynom64
}

type cacheKey struct {
	windowSize int
	mod        polynom.Polynom64
}

// tableCache memoizes precomputed tables per (window size, modulo
// polynomial) pair: these tables are pure functions of their parameters and
// computing them is the only non-trivial cost of constructing a Rabin64.
// restic/chunker backs the equivalent cache with an unbounded map[Pol]*tables;
// this repository bounds it with an LRU so a long-lived process that churns
// through many distinct (W, P) configurations can't grow the cache without
// limit. See DESIGN.md.
var (
	tableCache     *lru.Cache[cacheKey, *tables]
	tableCacheOnce sync.Once
	tableCacheMu   sync.Mutex
)

func tablesFor(windowSize int, mod polynom.Polynom64) *tables {
	tableCacheOnce.Do(func() {
		c, err := lru.New[cacheKey, *tables](256)
		if err != nil {
			// 256 is a positive constant; lru.New only fails for size <= 0.
			panic(err)
		}
		tableCache = c
	})

	key := cacheKey{windowSize: windowSize, mod: mod}

	tableCacheMu.Lock()
	defer tableCacheMu.Unlock()

	if t, ok := tableCache.Get(key); ok {
		return t
	}

	t := &tables{
		out: calculateOutTable(windowSize, mod),
		mod: calculateModTable(mod),
	}
	tableCache.Add(key, t)

	return t
}

// calculateOutTable computes the contribution that byte value b makes to the
// hash after it has lived in the window for windowSize positions: the value
// to XOR out when b slides off the back of the window.
func calculateOutTable(windowSize int, mod polynom.Polynom64) [256]polynom.Polynom64 {
	var out [256]polynom.Polynom64

	for b := 0; b < 256; b++ {
		hash := polynom.Polynom64(b).Modulo(mod)
		for i := 0; i < windowSize-1; i++ {
			hash <<= 8
			hash = hash.Modulo(mod)
		}
		out[b] = hash
	}

	return out
}

// calculateModTable computes, for each possible value of the top 8 bits
// above deg(mod), the combined "shift left 8, then reduce" correction to
// apply when pushing a new byte into the hash.
func calculateModTable(mod polynom.Polynom64) [256]polynom.Polynom64 {
	var table [256]polynom.Polynom64

	k := mod.Degree()
	for b := 0; b < 256; b++ {
		p := polynom.Polynom64(b) << uint(k)
		table[b] = p.Modulo(mod) | p
	}

	return table
}

// Rabin64 maintains a 64-bit fingerprint of the last W bytes of a stream,
// updated in O(1) per byte via Slide.
type Rabin64 struct {
	windowSize     int
	windowSizeMask int
	polynomShift   int

	tables *tables

	windowData  []byte
	windowIndex int

	hash polynom.Polynom64
}

// New returns a new Rabin64 with the default modulo polynomial
// (polynom.DefaultModulus) and a window of 2^windowSizeNbBits bytes.
func New(windowSizeNbBits uint32) (*Rabin64, error) {
	return NewWithPolynom(windowSizeNbBits, polynom.DefaultModulus)
}

// NewWithPolynom returns a new Rabin64 with a caller-supplied modulo
// polynomial. modPolynom must have degree >= 8.
func NewWithPolynom(windowSizeNbBits uint32, modPolynom polynom.Polynom64) (*Rabin64, error) {
	if windowSizeNbBits == 0 {
		return nil, errors.Fatal("rabin: window_size_nb_bits must be at least 1")
	}
	if modPolynom.Degree() < 8 {
		return nil, errors.Fatalf("rabin: modulo polynomial must have degree >= 8, got %d", modPolynom.Degree())
	}

	windowSize := 1 << windowSizeNbBits

	return &Rabin64{
		windowSize:     windowSize,
		windowSizeMask: windowSize - 1,
		polynomShift:   modPolynom.Degree() - 8,
		tables:         tablesFor(windowSize, modPolynom),
		windowData:     make([]byte, windowSize),
	}, nil
}

// Reset zeroes the window and the fingerprint.
func (r *Rabin64) Reset() {
	for i := range r.windowData {
		r.windowData[i] = 0
	}
	r.windowIndex = 0
	r.hash = 0
}

// PrefillWindow pulls up to windowSize-1 bytes from src, sliding each one
// in, without resetting first. It returns the number of bytes read.
func (r *Rabin64) PrefillWindow(src bytesource.ByteSource) int {
	n := 0
	for i := 0; i < r.windowSize-1; i++ {
		b, ok := src.NextByte()
		if !ok {
			break
		}
		r.Slide(b)
		n++
	}
	return n
}

// ResetAndPrefillWindow resets the hash, then pulls up to windowSize-1 bytes
// from src. Because the pre-reset window is known to be all zeros, the
// XOR-out step of a full Slide is skipped for each of those bytes; the cell
// at windowIndex afterwards is explicitly zeroed because the loop stops one
// byte short of overwriting it. It returns the number of bytes read.
func (r *Rabin64) ResetAndPrefillWindow(src bytesource.ByteSource) int {
	r.hash = 0

	n := 0
	for i := 0; i < r.windowSize-1; i++ {
		b, ok := src.NextByte()
		if !ok {
			break
		}

		r.windowData[r.windowIndex] = b
		modIndex := (r.hash >> uint(r.polynomShift)) & 0xFF
		r.hash <<= 8
		r.hash |= polynom.Polynom64(b)
		r.hash ^= r.tables.mod[modIndex]

		r.windowIndex = (r.windowIndex + 1) & r.windowSizeMask
		n++
	}

	r.windowData[r.windowIndex] = 0

	return n
}

// Slide advances the window by one byte: the oldest byte in the window is
// retired from the hash and byte is pushed in. This is the hot path and must
// stay O(1) and allocation-free.
func (r *Rabin64) Slide(b byte) {
	outValue := r.windowData[r.windowIndex]
	r.hash ^= r.tables.out[outValue]

	r.windowData[r.windowIndex] = b
	modIndex := (r.hash >> uint(r.polynomShift)) & 0xFF
	r.hash <<= 8
	r.hash |= polynom.Polynom64(b)
	r.hash ^= r.tables.mod[modIndex]

	r.windowIndex = (r.windowIndex + 1) & r.windowSizeMask
}

// Hash returns the current fingerprint.
func (r *Rabin64) Hash() uint64 {
	return uint64(r.hash)
}

// WindowSize returns the configured window size in bytes.
func (r *Rabin64) WindowSize() int {
	return r.windowSize
}
