package main

// implements the slowjs command line: run or check a file, or start a repl

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slowjs/eval"
	"slowjs/parser"
	"slowjs/resolver"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
)

var VERSION string
var LOGO = `
      |
  ~@  | slowjs
      | version: $VERSION
`

const (
	exitOK = iota
	exitUsage
	exitSyntax
	exitRuntime
)

func sliceVersion(v string) string {
	m := 10
	if len(v) < 10 {
		m = len(v)
	}
	return v[0:m]
}

type cli struct {
	cfg    *Config
	stdout io.Writer
	stderr io.Writer
	color  bool
	trace  *log.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("slowjs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	check := fs.Bool("check", false, "report static errors without running")
	trace := fs.Bool("trace", false, "log call events as JSON lines on stderr")
	maxDepth := fs.Int("max-depth", 0, "maximum call depth (default 10000)")
	configPath := fs.String("config", "", "path to a YAML config file (default "+DefaultConfigFile+")")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: slowjs [flags] [file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 || (*check && fs.NArg() == 0) {
		fs.Usage()
		return exitUsage
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitUsage
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "trace":
			cfg.Trace = *trace
		}
	})
	if err := checkMaxDepth(cfg.MaxDepth); err != nil {
		fmt.Fprintf(stderr, "error: max depth %s\n", err)
		return exitUsage
	}

	c := &cli{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		color:  cfg.UseColor(stderr),
	}
	if cfg.Trace {
		c.trace = log.New(stderr, "", 0)
	}
	if fs.NArg() == 0 {
		return c.repl()
	}
	return c.runFile(fs.Arg(0), *check)
}

func (c *cli) options() eval.Options {
	opts := eval.Options{MaxDepth: c.cfg.MaxDepth}
	if c.trace != nil {
		opts.RunID = uuid.NewString()
		opts.Trace = func(ev eval.TraceEvent) {
			b, err := json.Marshal(ev)
			if err != nil {
				c.trace.Printf(`{"event":"trace_error","error":%q}`, err)
				return
			}
			c.trace.Println(string(b))
		}
	}
	return opts
}

func (c *cli) runFile(filename string, check bool) int {
	source, err := os.ReadFile(filename)
	if err != nil {
		c.report(err)
		return exitUsage
	}
	program, errs := parser.ParseProgram(filename, string(source))
	if c.reportErrors(errs) {
		return exitSyntax
	}
	if check {
		r := resolver.New(program)
		r.Resolve()
		if c.reportErrors(r.Errors) {
			return exitSyntax
		}
		return exitOK
	}
	rv, err := eval.Run(program, c.options())
	if err != nil {
		c.report(err)
		return exitRuntime
	}
	fmt.Fprintln(c.stdout, eval.Inspect(rv))
	return exitOK
}

func (c *cli) repl() int {
	fmt.Fprintln(c.stdout, strings.Replace(LOGO, "$VERSION", sliceVersion(VERSION), 1))
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      c.cfg.Prompt,
		HistoryFile: c.cfg.HistoryFile,
		Stdout:      c.stdout,
		Stderr:      c.stderr,
	})
	if err != nil {
		c.report(err)
		return exitUsage
	}
	defer rl.Close()

	s := eval.NewSession(c.options())
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			break
		}
		if !c.evalLine(s, line) {
			break
		}
	}
	return exitOK
}

// evalLine handles one line of repl input. It returns false when the
// user asked to quit.
func (c *cli) evalLine(s *eval.Session, line string) bool {
	switch strings.TrimSpace(line) {
	case "":
		return true
	case ".quit":
		return false
	case ".reset":
		s.Reset()
		return true
	case ".names":
		for _, name := range s.Names() {
			v, _ := s.Lookup(name)
			fmt.Fprintln(c.stdout, eval.Inspect(v))
		}
		return true
	}
	v, errs := s.Run(line)
	if c.reportErrors(errs) || v == nil {
		return true
	}
	fmt.Fprintln(c.stdout, eval.Inspect(v))
	return true
}

func (c *cli) label() string {
	if c.color {
		return "\x1b[1;31merror\x1b[0m"
	}
	return "error"
}

func (c *cli) reportErrors(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		c.report(err)
	}
	return true
}

// report writes err to stderr. Evaluation errors are labelled with
// their kind and followed by their call trace.
func (c *cli) report(err error) {
	var e *eval.Error
	if !errors.As(err, &e) {
		fmt.Fprintf(c.stderr, "%s: %s\n", c.label(), err)
		return
	}
	fmt.Fprintf(c.stderr, "%s[%s]: %s\n", c.label(), e.Kind, e.Message())
	for _, te := range e.Trace {
		fmt.Fprintf(c.stderr, "  at %s\n", te)
	}
	if e.Elided > 0 {
		fmt.Fprintf(c.stderr, "  ... %d more\n", e.Elided)
	}
}
