// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/twmodding/pack"
)

func listCmd() *cli.Command {
	var (
		packPath string
		prefix   string
		kind     string
		long     bool
	)

	return &cli.Command{
		Name:  "list",
		Usage: "List pack entries in save order",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pack",
				Aliases:     []string{"p"},
				Usage:       "path to .pack file",
				Destination: &packPath,
				Required:    true,
			},
			&cli.StringFlag{Name: "prefix", Usage: "limit to entries under a path prefix", Destination: &prefix},
			&cli.StringFlag{Name: "kind", Usage: "limit to one entry kind (db, loc, fastbin, text, image)", Destination: &kind},
			&cli.BoolFlag{Name: "long", Aliases: []string{"l"}, Usage: "show size, kind and compression state", Destination: &long},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			p, err := pack.Open(packPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open pack: %v", err), 1)
			}
			defer func() { _ = p.Close() }()

			wantKind, err := parseKind(kind)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			files := p.FilesUnder(prefix)
			for _, f := range files {
				if kind != "" && f.Kind() != wantKind {
					continue
				}

				if !long {
					fmt.Println(f.Path())
					continue
				}

				state := "raw"
				if f.IsCompressed() {
					state = "compressed"
				}
				fmt.Printf("%10d  %-8s %-11s %s\n", f.Size(), f.Kind(), state, f.Path())
			}

			return nil
		},
	}
}

func parseKind(name string) (pack.FileKind, error) {
	switch strings.ToLower(name) {
	case "":
		return pack.KindUnknown, nil
	case "db":
		return pack.KindDB, nil
	case "loc":
		return pack.KindLoc, nil
	case "fastbin":
		return pack.KindFastBin, nil
	case "text":
		return pack.KindText, nil
	case "image":
		return pack.KindImage, nil
	default:
		return pack.KindUnknown, fmt.Errorf("unknown kind %q", name)
	}
}
