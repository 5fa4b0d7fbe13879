// Copyright © 2025 The Wisp authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wisplang/wisp/repl"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive wisp REPL",
	Long: `Start an interactive read-eval-print loop.

The standard library is loaded automatically. Line editing and
in-session command history are supported via readline. Use Ctrl-D or
Ctrl-C to exit.

Example REPL session:
  wisp> (+ 1 2)
  3
  wisp> (define (square x) (* x x))
  ()
  wisp> (square 5)
  25`,
	Run: func(cmd *cobra.Command, args []string) {
		repl.RunRepl(filepath.Base(os.Args[0]) + "> ")
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
