package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var cmdVersion = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	DisableAutoGenTag: true,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("cdc %s compiled with %v on %v/%v\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
