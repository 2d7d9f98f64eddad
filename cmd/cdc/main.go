// Command cdc drives the content-defined chunking pipeline over real files:
// it is the external collaborator deliberately kept out of the core packages
// (file I/O, buffering, content hashing, argument parsing).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

var cmdRoot = &cobra.Command{
	Use:   "cdc",
	Short: "Content-defined chunking and hash-tree playground",
	Long: `
cdc drives the separator, chunk and hash-tree builder over real files as
one small CLI.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

func init() {
	cmdRoot.AddCommand(cmdSeparate)
	cmdRoot.AddCommand(cmdChunk)
	cmdRoot.AddCommand(cmdTree)
	cmdRoot.AddCommand(cmdBatch)
	cmdRoot.AddCommand(cmdVersion)
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cdc: %v\n", err)
		os.Exit(1)
	}
}
