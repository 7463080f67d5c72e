// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	hparamsFile string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Lifecycle composition for ML training modules",
	Long: `Stride composes training modules from mixins: dataset loaders,
optimizer strategies, and auxiliary behavior, initialized in a
deterministic order with their configuration schemas merged.

Quick start:
  stride train           # Train the built-in demo module
  stride train --help    # Show the demo module's merged options as flags`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&hparamsFile, "hparams", "", "YAML hparams file (flags override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
