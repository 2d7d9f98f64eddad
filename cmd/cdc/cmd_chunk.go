package main

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustic-rs/cdc/bytesource"
	"github.com/rustic-rs/cdc/chunk"
	"github.com/rustic-rs/cdc/internal/debug"
	"github.com/rustic-rs/cdc/internal/errors"
	"github.com/rustic-rs/cdc/separator"
)

const expectedChunkSize = 1 << 13 // matches separator.DefaultPredicate

var cmdChunk = &cobra.Command{
	Use:   "chunk file",
	Short: "Chunk a file and print size statistics",
	Long: `
The "chunk" command differences a file's separator stream into chunks and
reports count, size distribution and standard deviation against the
separator's expected chunk size.
`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(_ *cobra.Command, args []string) error {
		stats, err := chunkFile(args[0], true)
		if err != nil {
			return err
		}
		printChunkStats(args[0], stats)
		return nil
	},
}

type chunkStats struct {
	count          uint64
	totalSize      uint64
	smallest       uint64
	largest        uint64
	sizeVarianceSq float64
}

func chunkFile(path string, verbose bool) (chunkStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return chunkStats{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return chunkStats{}, errors.Wrapf(err, "stat %s", path)
	}

	src := bytesource.FromReader(bufio.NewReader(f))

	sepIter, err := separator.New(src)
	if err != nil {
		return chunkStats{}, errors.Wrap(err, "separator.New")
	}

	chunkIter := chunk.NewIter(sepIter, uint64(info.Size()))

	stats := chunkStats{smallest: math.MaxUint64}
	for {
		c, ok := chunkIter.Next()
		if !ok {
			break
		}

		if verbose {
			fmt.Printf("Index: %d, size: %6d, separator_hash: %016x\n", c.Index, c.Size, c.SeparatorHash)
		}

		stats.count++
		stats.totalSize += c.Size
		if c.Size < stats.smallest {
			stats.smallest = c.Size
		}
		if c.Size > stats.largest {
			stats.largest = c.Size
		}
		diff := float64(c.Size) - float64(expectedChunkSize)
		stats.sizeVarianceSq += diff * diff
	}

	if err := bytesource.Err(src); err != nil {
		return chunkStats{}, errors.Wrapf(err, "reading %s", path)
	}

	debug.Log("chunk: scanned %s, found %d chunks", path, stats.count)

	return stats, nil
}

func printChunkStats(path string, s chunkStats) {
	if s.count == 0 {
		fmt.Printf("%s produced no chunks.\n", path)
		return
	}

	fmt.Printf("%d chunks with an average size of %d bytes.\n", s.count, s.totalSize/s.count)
	fmt.Printf("Expected chunk size: %d bytes\n", expectedChunkSize)
	fmt.Printf("Smallest chunk: %d bytes.\n", s.smallest)
	fmt.Printf("Largest chunk: %d bytes.\n", s.largest)
	fmt.Printf("Standard size deviation: %.0f bytes.\n", math.Sqrt(s.sizeVarianceSq/float64(s.count)))
}
