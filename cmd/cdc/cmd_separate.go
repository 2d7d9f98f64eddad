package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustic-rs/cdc/bytesource"
	"github.com/rustic-rs/cdc/internal/debug"
	"github.com/rustic-rs/cdc/internal/errors"
	"github.com/rustic-rs/cdc/separator"
)

var cmdSeparate = &cobra.Command{
	Use:   "separate file",
	Short: "Print every separator boundary found in a file",
	Long: `
The "separate" command streams a file through the default 64-byte-window
separator and prints each boundary's index and hash, followed by the
number of separators found.
`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(_ *cobra.Command, args []string) error {
		return runSeparate(args[0])
	},
}

func runSeparate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	src := bytesource.FromReader(bufio.NewReader(f))

	it, err := separator.New(src)
	if err != nil {
		return errors.Wrap(err, "separator.New")
	}

	var count int
	for {
		sep, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("Index: %d, hash: %016x\n", sep.Index, sep.Hash)
		count++
	}

	if err := bytesource.Err(src); err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	debug.Log("separate: scanned %s, found %d separators", path, count)
	fmt.Printf("We found %d separators.\n", count)

	return nil
}
