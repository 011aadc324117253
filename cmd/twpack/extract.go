// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/twmodding/pack"
)

func extractCmd() *cli.Command {
	var (
		packPath  string
		outDir    string
		workers   int
		overwrite bool
		quiet     bool
		verbose   bool
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract entries to a directory",
		ArgsUsage: "[entry path or prefix ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pack",
				Aliases:     []string{"p"},
				Usage:       "path to .pack file",
				Destination: &packPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory",
				Value:       ".",
				Destination: &outDir,
			},
			&cli.IntFlag{Name: "workers", Usage: "parallel extraction workers (0 = NumCPU)", Destination: &workers},
			&cli.BoolFlag{Name: "overwrite", Usage: "replace existing output files", Destination: &overwrite},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress per-entry output", Destination: &quiet},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug events to stderr", Destination: &verbose},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			p, err := pack.Open(packPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open pack: %v", err), 1)
			}
			defer func() { _ = p.Close() }()

			opts := pack.ExtractOptions{
				MaxWorkers: workers,
				Overwrite:  overwrite,
			}
			if verbose {
				opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			if args := c.Args().Slice(); len(args) > 0 {
				opts.Paths = args
			}
			if !quiet {
				opts.OnEntryDone = func(path string, written int64, outputPath string) {
					fmt.Printf("%s -> %s (%d bytes)\n", path, outputPath, written)
				}
			}

			if err := p.Extract(ctx, outDir, opts); err != nil {
				return cli.Exit(fmt.Sprintf("error: extract: %v", err), 1)
			}

			return nil
		},
	}
}
