package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/egglang/egg/pkgs/engine"
	eggerrors "github.com/egglang/egg/pkgs/errors"
	"github.com/egglang/egg/pkgs/generator"
	"github.com/egglang/egg/pkgs/parser"
)

// Exit codes. A syntax error in the input grammar is the only failure that
// exits 1; every other error (I/O, duplicate rule names, unresolved rule
// references, bad arguments) exits 2.
const (
	ExitSuccess    = 0
	ExitParseError = 1
	ExitError      = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)

	var (
		outputFile  string
		grammarName string
		normalize   bool
		printOnly   bool
		debug       bool
	)

	rootCmd := &cobra.Command{
		Use:   "egg [grammar-file]",
		Short: "Compile a PEG grammar into a recursive-descent parser header",
		Long: `Egg reads a parsing expression grammar and emits a self-contained C++
header with one matching function per grammar rule. The generated parser
depends only on the runtime header parse.hpp (see "egg runtime").`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				log.SetLevel(logrus.DebugLevel)
			}

			in := io.Reader(os.Stdin)
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return eggerrors.NewInputError("reading grammar", err)
				}
				defer f.Close()
				in = f
				if grammarName == "" {
					base := filepath.Base(args[0])
					grammarName = strings.TrimSuffix(base, filepath.Ext(base))
				}
			}

			out := io.Writer(os.Stdout)
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return eggerrors.NewOutputError("creating output file", err)
				}
				defer f.Close()
				out = f
			}

			mode := engine.CompileMode
			if printOnly {
				mode = engine.PrintMode
			}
			w := bufio.NewWriter(out)
			err := engine.New(log).Run(bufio.NewReader(in), w, engine.Options{
				GrammarName: grammarName,
				Normalize:   normalize,
				Mode:        mode,
			})
			if err != nil {
				return err
			}
			return w.Flush()
		},
	}

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.Flags().StringVar(&grammarName, "name", "", "namespace for the generated parser (defaults to the input file name)")
	rootCmd.Flags().BoolVarP(&normalize, "normalize", "n", false, "normalize the grammar tree before emitting")
	rootCmd.Flags().BoolVarP(&printOnly, "print", "p", false, "print the grammar back in Egg syntax instead of compiling")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runtimeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			return ExitParseError
		}
		return ExitError
	}
	return ExitSuccess
}

// runtimeCmd writes the embedded C++ runtime header that generated parsers
// include.
func runtimeCmd() *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Emit the parse.hpp runtime header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := generator.RuntimeSource()
			if outputFile == "" {
				_, err := io.WriteString(os.Stdout, src)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(src), 0o644); err != nil {
				return eggerrors.NewOutputError("writing runtime header", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the runtime header to file instead of stdout")
	return cmd
}
