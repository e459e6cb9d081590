// Command silc is the SIL kernel compiler CLI.
//
// Usage:
//
//	silc build [options] <input.sil>
//
// Examples:
//
//	silc build kernel.sil                  # compile to stdout
//	silc build -o kernel.spvasm kernel.sil  # compile to a file
//	silc build --debug kernel.sil           # log compile progress
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sillang/silc"
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "silc",
		Short:         "Compile SIL kernels to SPIR-V assembly",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	var output string
	var debug bool

	cmd := &cobra.Command{
		Use:   "build <input.sil>",
		Short: "Compile a SIL source file to SPIR-V assembly text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				log.SetLevel(logrus.DebugLevel)
			}
			return runBuild(args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&debug, "debug", false, "log each compiler phase")
	return cmd
}

// runBuild reads inputPath and hands it to silc.Compile, which drives
// the preprocessor, scanner, parser, and generator in sequence.
func runBuild(inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	log.WithField("file", inputPath).Debug("compiling")
	result, err := silc.Compile(inputPath, string(raw))
	if err != nil {
		logDiagnostic(err)
		return err
	}
	if len(result.CpuBlocks) > 0 {
		log.WithField("count", len(result.CpuBlocks)).Debug("separated @cpu blocks; forwarding them to a host runtime is out of scope")
	}

	if outputPath == "" {
		fmt.Print(result.Assembly)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(result.Assembly), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	log.WithField("file", outputPath).Info("wrote SPIR-V assembly")
	return nil
}

// logDiagnostic prints a compiler error to stderr. The caller is
// responsible for returning the original error to signal a non-zero
// exit status.
func logDiagnostic(err error) {
	fmt.Fprintln(os.Stderr, err)
}
