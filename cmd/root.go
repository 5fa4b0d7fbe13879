// Copyright © 2025 The Wisp authors

// Package cmd implements the wisp command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wisplang/wisp/repl"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wisp",
	Short: "Wisp is a small Scheme interpreter",
	Long: `Wisp is a small Scheme dialect implemented in Go. It provides a
standalone CLI for running and exploring Scheme code.

Getting started:
  wisp run file.scm            Run a Scheme source file
  wisp run -e '(+ 1 2)'        Evaluate an expression
  wisp repl                    Start an interactive REPL

Language overview:
  Wisp is a Lisp-1 dialect (single namespace for functions and values).
  Booleans are written #t and #f, and only #t is true in conditional
  position. Functions are defined with (define (name args) body) and
  macros with (define-syntax name (syntax-rules () ...)). Tail calls
  run in constant stack space.

More information:
  Source code:     https://github.com/wisplang/wisp`,
	// Invoking wisp with no subcommand drops into the REPL.
	Run: func(cmd *cobra.Command, args []string) {
		repl.RunRepl(filepath.Base(os.Args[0]) + "> ")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wisp.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".wisp" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".wisp")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
