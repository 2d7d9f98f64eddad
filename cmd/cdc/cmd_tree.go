package main

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"

	"github.com/rustic-rs/cdc/bytesource"
	"github.com/rustic-rs/cdc/chunk"
	"github.com/rustic-rs/cdc/internal/debug"
	"github.com/rustic-rs/cdc/internal/errors"
	"github.com/rustic-rs/cdc/separator"
	"github.com/rustic-rs/cdc/tree"
)

// Hash256 is the content identity type used by the default (SHA-256) tree
// builder. The core packages never inspect it beyond copying it around.
type Hash256 = [sha256.Size]byte

var treeFast bool

var cmdTree = &cobra.Command{
	Use:   "tree file",
	Short: "Build a hash tree over a file's chunks",
	Long: `
The "tree" command chunks a file, hashes each chunk's bytes (SHA-256 by
default, or a fast non-cryptographic xxhash with --fast), converts each
chunk's separator hash to a tree level, and prints the resulting nodes.
`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(_ *cobra.Command, args []string) error {
		if treeFast {
			return runTreeFast(args[0])
		}
		return runTreeSHA256(args[0])
	},
}

func init() {
	cmdTree.Flags().BoolVar(&treeFast, "fast", false, "use xxhash instead of SHA-256 for chunk/node identity")
}

// hashedChunkIter adapts a chunk.Iter, an open *io.SectionReader-capable
// file and a per-chunk digest function into a tree.HashedChunkSource[H]:
// content hashing is a CLI-level collaborator, kept out of the core.
type hashedChunkIter[H any] struct {
	file      io.ReaderAt
	chunks    *chunk.Iter
	toLevel   separator.HashToLevel
	digestOne func(r io.Reader) H
}

func (h *hashedChunkIter[H]) Next() (tree.HashedChunk[H], bool) {
	c, ok := h.chunks.Next()
	if !ok {
		return tree.HashedChunk[H]{}, false
	}

	start := int64(c.Index - c.Size)
	r := io.NewSectionReader(h.file, start, int64(c.Size))

	return tree.HashedChunk[H]{Hash: h.digestOne(r), Level: h.toLevel.ToLevel(c.SeparatorHash)}, true
}

func openForTree(path string) (f *os.File, sepIter *separator.Iter, streamLength int64, err error) {
	f, err = os.Open(path)
	if err != nil {
		return nil, nil, 0, errors.Wrapf(err, "open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, 0, errors.Wrapf(err, "stat %s", path)
	}

	bs := bytesource.FromReader(bufio.NewReader(f))
	sepIter, err = separator.New(bs)
	if err != nil {
		f.Close()
		return nil, nil, 0, errors.Wrap(err, "separator.New")
	}

	return f, sepIter, info.Size(), nil
}

func runTreeSHA256(path string) error {
	f, sepIter, streamLength, err := openForTree(path)
	if err != nil {
		return err
	}
	defer f.Close()

	digestOne := func(r io.Reader) Hash256 {
		h := sha256.New()
		h.Write([]byte{0}) // marks a chunk, as opposed to a node, in the digest domain.
		_, _ = io.Copy(h, r)
		var out Hash256
		copy(out[:], h.Sum(nil))
		return out
	}

	newNode := func(level int, children []Hash256) tree.Node[Hash256] {
		h := sha256.New()
		h.Write([]byte{1}) // marks a node, as opposed to a chunk.
		for _, c := range children {
			h.Write(c[:])
		}
		var out Hash256
		copy(out[:], h.Sum(nil))
		return tree.Node[Hash256]{Hash: out, Level: level, Children: append([]Hash256(nil), children...)}
	}

	hc := &hashedChunkIter[Hash256]{
		file:      f,
		chunks:    chunk.NewIter(sepIter, uint64(streamLength)),
		toLevel:   separator.NewHashToLevel(),
		digestOne: digestOne,
	}

	return printTree[Hash256](hc, newNode, func(h Hash256) string { return fmt.Sprintf("%x", h) })
}

func runTreeFast(path string) error {
	f, sepIter, streamLength, err := openForTree(path)
	if err != nil {
		return err
	}
	defer f.Close()

	digestOne := func(r io.Reader) uint64 {
		d := xxhash.New()
		_, _ = io.Copy(d, r)
		return d.Sum64()
	}

	newNode := func(level int, children []uint64) tree.Node[uint64] {
		d := xxhash.New()
		var buf [8]byte
		for _, c := range children {
			for i := 0; i < 8; i++ {
				buf[i] = byte(c >> (8 * i))
			}
			d.Write(buf[:])
		}
		return tree.Node[uint64]{Hash: d.Sum64(), Level: level, Children: append([]uint64(nil), children...)}
	}

	hc := &hashedChunkIter[uint64]{
		file:      f,
		chunks:    chunk.NewIter(sepIter, uint64(streamLength)),
		toLevel:   separator.NewHashToLevel(),
		digestOne: digestOne,
	}

	return printTree[uint64](hc, newNode, func(h uint64) string { return fmt.Sprintf("%016x", h) })
}

func printTree[H any](src tree.HashedChunkSource[H], newNode tree.NewNode[H], format func(H) string) error {
	it := tree.NewNodeIter[H](src, newNode, 0)

	var nbNodes, totalChildren uint64
	var levelCounts []uint64

	for {
		node, ok := it.Next()
		if !ok {
			break
		}

		fmt.Printf("Node: {level: %d, children.len(): %d, hash: %s}\n", node.Level, len(node.Children), format(node.Hash))

		nbNodes++
		totalChildren += uint64(len(node.Children))
		for node.Level >= len(levelCounts) {
			levelCounts = append(levelCounts, 0)
		}
		levelCounts[node.Level]++
	}

	if nbNodes == 0 {
		fmt.Println("No nodes produced.")
		return nil
	}

	debug.Log("tree: produced %d nodes", nbNodes)
	fmt.Printf("Total number of nodes: %d.\n", nbNodes)
	fmt.Printf("Average number of children: %d.\n", totalChildren/nbNodes)
	fmt.Printf("Level counts: %v.\n", levelCounts)

	return nil
}
