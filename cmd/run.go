// Copyright © 2025 The Wisp authors

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wisplang/wisp/parser"
	"github.com/wisplang/wisp/scheme"
	"github.com/wisplang/wisp/scheme/schemelib"
	"github.com/wisplang/wisp/scheme/x/profiler"
)

var (
	runExpression bool
	runPrint      bool
	runProfiler   string
	runProfOutput string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheme code",
	Long:  `Run scheme code supplied via the command line or a file.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := scheme.NewRuntime(scheme.WithReader(parser.NewReader()))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := schemelib.LoadLibrary(rt); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if runProfiler != "" {
			if err := enableProfiler(rt); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
		for i := range args {
			var v *scheme.Object
			var err error
			if runExpression {
				v, err = rt.LoadString("cli", args[i])
			} else {
				v, err = rt.LoadFile(args[i])
			}
			if err != nil {
				renderRunError(err)
				os.Exit(1)
			}
			if runPrint {
				fmt.Fprintln(rt.Stdout, v.String())
			}
			v.Release()
		}
		if rt.Profiler != nil {
			if err := rt.Profiler.Complete(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	},
}

// enableProfiler attaches the profiler named by --profile to rt.
func enableProfiler(rt *scheme.Runtime) error {
	var p scheme.Profiler
	switch runProfiler {
	case "pprof":
		p = profiler.NewPprofAnnotator(rt, context.Background())
	case "opentelemetry":
		p = profiler.NewOpenTelemetryAnnotator(rt, context.Background())
	case "opencensus":
		p = profiler.NewOpenCensusAnnotator(rt, context.Background())
	case "callgrind":
		cg := profiler.NewCallgrindProfiler(rt)
		if runProfOutput == "" {
			return fmt.Errorf("callgrind profiling requires --profile-output")
		}
		if err := cg.SetFile(runProfOutput); err != nil {
			return err
		}
		p = cg
	default:
		return fmt.Errorf("unknown profiler: %s", runProfiler)
	}
	return p.Enable()
}

func renderRunError(err error) {
	if serr, ok := err.(*scheme.Error); ok {
		serr.WriteTrace(os.Stderr)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as scheme expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
	runCmd.Flags().StringVar(&runProfiler, "profile", "",
		`Profile evaluation: "pprof", "opentelemetry", "opencensus", or "callgrind"`)
	runCmd.Flags().StringVarP(&runProfOutput, "profile-output", "o", "",
		"Output file for profilers that write one")
}
