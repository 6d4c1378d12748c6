// Package engine drives one run of the pipeline: read a grammar from the
// input stream, optionally normalize it, and either compile it to a parser
// header or print it back in Egg syntax.
package engine

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/egglang/egg/pkgs/generator"
	"github.com/egglang/egg/pkgs/normalizer"
	"github.com/egglang/egg/pkgs/parser"
	"github.com/egglang/egg/pkgs/printer"
)

// Mode selects what the engine emits.
type Mode int

const (
	// CompileMode emits the generated parser header.
	CompileMode Mode = iota
	// PrintMode re-emits the grammar in Egg syntax.
	PrintMode
)

func (m Mode) String() string {
	switch m {
	case CompileMode:
		return "compile"
	case PrintMode:
		return "print"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Options configures one run.
type Options struct {
	// GrammarName names the emitted namespace; empty omits it.
	GrammarName string
	// Normalize canonicalizes the grammar tree before emission.
	Normalize bool
	// Mode selects compile or print output.
	Mode Mode
}

// Engine runs the parse / normalize / emit pipeline.
type Engine struct {
	log *logrus.Logger
}

// New creates an engine logging through log. A nil logger disables tracing.
func New(log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.ErrorLevel)
	}
	return &Engine{log: log}
}

// Run reads a grammar from in and writes the selected output to out. A syntax
// error in the grammar comes back as a *parser.ParseError carrying the
// rendered failure report; the sink is not written in that case.
func (e *Engine) Run(in io.Reader, out io.Writer, opts Options) error {
	g, err := parser.Parse(in)
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"rules":     len(g.Rules),
		"mode":      opts.Mode.String(),
		"normalize": opts.Normalize,
	}).Debug("grammar parsed")

	if opts.Normalize {
		normalizer.Normalize(g)
		e.log.Debug("grammar normalized")
	}

	var output string
	switch opts.Mode {
	case PrintMode:
		output = printer.Print(g)
	default:
		output, err = generator.Generate(g, generator.Options{GrammarName: opts.GrammarName})
		if err != nil {
			return err
		}
	}

	if _, err := io.WriteString(out, output); err != nil {
		return err
	}
	e.log.WithField("bytes", len(output)).Debug("output written")
	return nil
}
