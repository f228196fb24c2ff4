package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperifyio/postgen/internal/config"
)

// runOptions holds the run flags. Defaults come from the resolved config so
// that a flag overrides env, which overrides the built-in default.
type runOptions struct {
	outputDir   string
	proof       bool
	hookPath    string
	noPublish   bool
	httpTimeout time.Duration
	logLevel    string
	printConfig bool
	theme       string
}

// durationFlexFlag accepts Go durations or plain seconds.
type durationFlexFlag struct {
	dst *time.Duration
}

func (f durationFlexFlag) String() string {
	if f.dst == nil {
		return ""
	}
	return f.dst.String()
}

func (f durationFlexFlag) Set(s string) error {
	d, err := config.ParseDurationFlexible(s)
	if err != nil {
		return err
	}
	*f.dst = d
	return nil
}

func parseRunFlags(args []string, cfg *config.Config) (runOptions, error) {
	opts := runOptions{
		outputDir:   cfg.OutputDir,
		hookPath:    cfg.HookPath,
		httpTimeout: cfg.HTTPTimeout,
		logLevel:    cfg.LogLevel,
	}
	fs := flag.NewFlagSet("postgen", flag.ContinueOnError)
	// Silence automatic usage/errors; we handle messaging ourselves.
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.outputDir, "output-dir", opts.outputDir, "Directory for images and posts.json")
	fs.BoolVar(&opts.proof, "proof", false, "Write a PDF proof sheet")
	fs.StringVar(&opts.hookPath, "hook", opts.hookPath, "JavaScript hook file")
	fs.BoolVar(&opts.noPublish, "no-publish", false, "Skip Instagram publishing")
	fs.Var(durationFlexFlag{dst: &opts.httpTimeout}, "http-timeout", "HTTP timeout for API calls")
	fs.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level")
	fs.BoolVar(&opts.printConfig, "print-config", false, "Print resolved config and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	// flag stops at the first theme word, so a later flag would silently
	// become part of the theme. An explicit "--" allows dash words.
	rest := fs.Args()
	if start := len(args) - len(rest); start > 0 && args[start-1] == "--" {
		rest = nil
	}
	for _, a := range rest {
		if name, ok := flagName(a); ok && fs.Lookup(name) != nil {
			return opts, fmt.Errorf("flag %s must come before the theme words", a)
		}
	}
	opts.theme = strings.TrimSpace(strings.Join(fs.Args(), " "))
	return opts, nil
}

// flagName returns the name in "-name", "--name" or "-name=value".
func flagName(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false
	}
	name := strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name, name != ""
}

// apply copies flag values that mirror config fields back into cfg.
func (o runOptions) apply(cfg *config.Config) {
	cfg.OutputDir = o.outputDir
	cfg.HookPath = o.hookPath
	cfg.HTTPTimeout = o.httpTimeout
	cfg.LogLevel = o.logLevel
}
