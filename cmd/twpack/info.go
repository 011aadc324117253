// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/twmodding/pack"
)

func infoCmd() *cli.Command {
	var packPath string

	return &cli.Command{
		Name:  "info",
		Usage: "Show pack header and index summary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pack",
				Aliases:     []string{"p"},
				Usage:       "path to .pack file",
				Destination: &packPath,
				Required:    true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			info, err := pack.Stat(packPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open pack: %v", err), 1)
			}

			row("version", string(info.Version))
			row("file_type", info.FileType.String())
			row("flags", formatFlags(info.Flags))
			if info.Timestamp != 0 {
				row("timestamp", time.Unix(int64(info.Timestamp), 0).UTC().Format(time.RFC3339))
			}
			if info.Version == pack.PFH6 {
				row("game_version", fmt.Sprintf("%d", info.GameVersion))
				row("build_number", fmt.Sprintf("%d", info.BuildNumber))
				row("authoring_tool", info.AuthoringTool)
			}
			row("entries", fmt.Sprintf("%d", info.EntryCount))
			row("notes", fmt.Sprintf("%v", info.HasNotes))
			row("settings", fmt.Sprintf("%v", info.HasSettings))
			for _, dep := range info.Dependencies {
				row("dependency", dep)
			}

			return nil
		},
	}
}

func formatFlags(f pack.Flags) string {
	names := []string{}
	if f.Has(pack.HasEncryptedData) {
		names = append(names, "encrypted_data")
	}
	if f.Has(pack.HasIndexWithTimestamps) {
		names = append(names, "index_timestamps")
	}
	if f.Has(pack.HasEncryptedIndex) {
		names = append(names, "encrypted_index")
	}
	if f.Has(pack.HasExtendedHeader) {
		names = append(names, "extended_header")
	}
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ", ")
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-16s %s\n", label+":", value)
}
