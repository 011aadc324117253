// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/twmodding/pack"
)

func notesCmd() *cli.Command {
	var (
		packPath string
		set      string
	)

	return &cli.Command{
		Name:  "notes",
		Usage: "Show or replace the pack's free-text notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pack",
				Aliases:     []string{"p"},
				Usage:       "path to .pack file",
				Destination: &packPath,
				Required:    true,
			},
			&cli.StringFlag{Name: "set", Usage: "replace the notes and rewrite the pack", Destination: &set},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			if set == "" {
				p, err := pack.Open(packPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: open pack: %v", err), 1)
				}
				defer func() { _ = p.Close() }()

				fmt.Println(p.Notes())
				return nil
			}

			e, err := pack.OpenEditor(packPath, pack.EditOptions{BackupKeep: 1})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			e.SetNotes(set)
			if err := e.Commit(); err != nil {
				return cli.Exit(fmt.Sprintf("error: commit: %v", err), 1)
			}

			return nil
		},
	}
}
