// Package chunk differences a stream of separator boundaries into
// variable-length chunks, terminating with a final partial chunk when the
// stream's length doesn't land exactly on a boundary.
package chunk

import "github.com/rustic-rs/cdc/separator"

// Chunk describes one content-defined chunk of a stream.
//
// Index holds the chunk's end offset, not its start: consumers that need to
// re-read the chunk's bytes compute start = Index - Size. This mirrors the
// boundary accounting in separator.Separator, where Index also marks an
// ending position, and keeps the relationship between a Chunk and the
// Separator that produced it a single field copy (separator_hash) rather
// than a reconstructed one.
//
// Because the separator iterator skips WindowSize-1 bytes after every
// boundary it emits (see separator.Iter.Next), those skipped bytes are never
// themselves scanned for the next boundary: they simply become part of
// whichever chunk follows (or the final tail), since a separator's Index
// already reflects the skip carried forward by the time the next boundary
// fires. Coverage stays exact: sum(chunk.Size) over a whole stream always
// equals streamLength.
type Chunk struct {
	// Index is the chunk's ending byte offset (exclusive upper bound).
	Index uint64
	// Size is the number of bytes in the chunk.
	Size uint64
	// SeparatorHash is the hash of the boundary that terminates the chunk,
	// or 0 for the final tail chunk (no boundary fired at the exact end).
	SeparatorHash uint64
}

// SeparatorSource is anything Iter can pull separator.Separator values from;
// satisfied by *separator.Iter.
type SeparatorSource interface {
	Next() (separator.Separator, bool)
}

// Iter differences a SeparatorSource's boundaries into Chunk values.
type Iter struct {
	separators         SeparatorSource
	streamLength       uint64
	lastSeparatorIndex uint64
	emittedFinal       bool
}

// NewIter creates an Iter. streamLength is the total number of bytes in the
// stream being chunked, used to size the final partial chunk.
func NewIter(separators SeparatorSource, streamLength uint64) *Iter {
	return &Iter{
		separators:   separators,
		streamLength: streamLength,
	}
}

// Next returns the next Chunk, or ok=false once the stream is fully
// accounted for.
func (it *Iter) Next() (Chunk, bool) {
	if it.emittedFinal {
		return Chunk{}, false
	}

	if sep, ok := it.separators.Next(); ok {
		c := Chunk{
			Index:         sep.Index,
			Size:          sep.Index - it.lastSeparatorIndex,
			SeparatorHash: sep.Hash,
		}
		it.lastSeparatorIndex = sep.Index
		return c, true
	}

	tail := it.streamLength - it.lastSeparatorIndex
	it.lastSeparatorIndex = it.streamLength
	it.emittedFinal = true

	if tail > 0 {
		return Chunk{
			Index:         it.streamLength,
			Size:          tail,
			SeparatorHash: 0,
		}, true
	}

	return Chunk{}, false
}
