package main

import (
	"flag"
	"io"
	"path/filepath"

	"github.com/hyperifyio/postgen/internal/config"
	"github.com/hyperifyio/postgen/internal/postlog"
)

// runExport writes the post log as a spreadsheet. It never needs API keys.
func runExport(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Read()
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	fs := flag.NewFlagSet("postgen export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	outputDir := fs.String("output-dir", cfg.OutputDir, "Directory holding posts.json")
	out := fs.String("o", "", "Spreadsheet path")
	if err := fs.Parse(args); err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	if fs.NArg() > 0 {
		safeFprintf(stderr, "error: unexpected arguments: %v\n", fs.Args())
		return 2
	}
	cfg.OutputDir = *outputDir
	if *out == "" {
		*out = filepath.Join(cfg.OutputDir, "posts.xlsx")
	}

	entries, err := postlog.Load(cfg.PostsPath())
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := postlog.ExportXLSX(entries, *out); err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	safeFprintf(stdout, "Exported %d posts to %s\n", len(entries), *out)
	return 0
}
