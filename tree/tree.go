// Package tree absorbs a lazy sequence of hashed chunks and emits a
// deterministic hash-tree bottom-up, without ever materializing the whole
// tree: nodes are buffered only long enough to be delivered in the order
// they are produced.
package tree

// HashedChunk is a chunk whose content identity (hash) and promotion level
// have already been computed by the caller; the core knows nothing about H
// beyond copying it.
type HashedChunk[H any] struct {
	Hash  H
	Level int
}

// Node is one node of the implicit hash tree. Its Hash is computed by the
// caller-supplied NewNode function from its Children.
type Node[H any] struct {
	Hash     H
	Level    int
	Children []H
}

// HashedChunkSource is anything NodeIter can pull HashedChunk values from.
type HashedChunkSource[H any] interface {
	Next() (HashedChunk[H], bool)
}

// NewNode constructs the Node for a completed level-L group. children has at
// least 2 elements (singleton groups are promoted without a node, see
// NodeIter.outputLevel); the returned Node's Hash becomes one of the
// children of the parent node at Level+1.
type NewNode[H any] func(level int, children []H) Node[H]

// NodeIter builds a hash tree bottom-up from a HashedChunkSource.
type NodeIter[H any] struct {
	chunks      HashedChunkSource[H]
	newNode     NewNode[H]
	maxChildren int // 0 = unlimited

	levelHashes [][]H // levelHashes[level] is the open bucket for that level
	outQueue    []Node[H]

	done bool
}

// NewNodeIter creates a NodeIter. maxNodeChildren is a hard cap on the
// number of children a node may have; 0 means unlimited (a level's bucket is
// only flushed when the promoting chunk's level requires it).
func NewNodeIter[H any](chunks HashedChunkSource[H], newNode NewNode[H], maxNodeChildren int) *NodeIter[H] {
	return &NodeIter[H]{
		chunks:      chunks,
		newNode:     newNode,
		maxChildren: maxNodeChildren,
		levelHashes: make([][]H, 0, 16),
		outQueue:    make([]Node[H], 0, 16),
	}
}

// Next returns the next Node in production order, or ok=false once the
// source is exhausted and every level has been flushed.
func (it *NodeIter[H]) Next() (Node[H], bool) {
	for {
		if len(it.outQueue) > 0 {
			n := it.outQueue[0]
			it.outQueue = it.outQueue[1:]
			return n, true
		}

		if it.done {
			return Node[H]{}, false
		}

		chunk, ok := it.chunks.Next()
		if !ok {
			if len(it.levelHashes) > 0 {
				it.outputLevels(len(it.levelHashes))
				it.levelHashes = nil
			}
			it.done = true
			continue
		}

		it.addAtLevel(0, chunk.Hash)
		it.outputLevels(chunk.Level)
	}
}

// addAtLevel appends hash to the open bucket for level, growing levelHashes
// as needed. If maxChildren is set and the bucket just reached that size,
// the bucket is flushed immediately (the hard cap).
func (it *NodeIter[H]) addAtLevel(level int, hash H) {
	for level >= len(it.levelHashes) {
		it.levelHashes = append(it.levelHashes, nil)
	}

	it.levelHashes[level] = append(it.levelHashes[level], hash)

	if it.maxChildren > 0 && len(it.levelHashes[level]) == it.maxChildren {
		it.outputLevel(level)
	}
}

// outputLevel flushes the bucket at level:
//   - empty: nothing to do.
//   - exactly one hash: no node conveys grouping information for a single
//     child, so the hash is promoted directly to level+1 instead.
//   - two or more: a Node is built, queued for delivery, and its hash is
//     promoted to level+1.
func (it *NodeIter[H]) outputLevel(level int) {
	bucket := it.levelHashes[level]

	switch len(bucket) {
	case 0:
		return
	case 1:
		h := bucket[0]
		it.levelHashes[level] = bucket[:0]
		it.addAtLevel(level+1, h)
	default:
		node := it.newNode(level, bucket)
		it.levelHashes[level] = bucket[:0]
		it.outQueue = append(it.outQueue, node)
		it.addAtLevel(level+1, node.Hash)
	}
}

// outputLevels flushes every level in [0, belowLevel), ascending, so a
// chunk's promotion level cleanly separates the sub-trees below it.
func (it *NodeIter[H]) outputLevels(belowLevel int) {
	for level := 0; level < belowLevel; level++ {
		it.outputLevel(level)
	}
}
