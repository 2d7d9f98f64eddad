package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rustic-rs/cdc/internal/debug"
)

var cmdBatch = &cobra.Command{
	Use:   "batch file...",
	Short: "Chunk several files concurrently",
	Long: `
The "batch" command runs one independent chunking pipeline per file,
concurrently. Each pipeline holds its own Rabin64/separator/chunk state and
shares nothing with the others except the read-only precomputed-table
cache: independent pipelines may run on separate threads with no
coordination.
`,
	Args:              cobra.MinimumNArgs(1),
	DisableAutoGenTag: true,
	RunE: func(_ *cobra.Command, args []string) error {
		return runBatch(args)
	},
}

func runBatch(paths []string) error {
	results := make([]chunkStats, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			stats, err := chunkFile(path, false)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	debug.Log("batch: processed %d files", len(paths))

	for i, path := range paths {
		fmt.Printf("=== %s ===\n", path)
		printChunkStats(path, results[i])
	}

	return nil
}
