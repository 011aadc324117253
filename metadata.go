// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"io"
)

// Info is a metadata summary of a pack: header fields plus index geometry,
// with no payload bytes touched.
type Info struct {
	Version  Version
	FileType FileType
	Flags    Flags

	Timestamp     uint32
	GameVersion   uint32
	BuildNumber   uint32
	AuthoringTool string

	Dependencies []string
	EntryCount   int
	HasNotes     bool
	HasSettings  bool
}

// Stat opens a pack file and returns its metadata summary without keeping
// a handle open.
func Stat(path string) (Info, error) {
	p, err := Open(path)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = p.Close() }()

	return p.Info(), nil
}

// StatFromReaderAt reads a pack's metadata summary from a random-access
// source.
func StatFromReaderAt(ra io.ReaderAt, size int64) (Info, error) {
	p, err := NewFromReaderAt(ra, size, ReadOptions{})
	if err != nil {
		return Info{}, err
	}

	return p.Info(), nil
}

// ListPaths opens a pack file and returns its entry paths in save order
// without keeping a handle open.
func ListPaths(path string) ([]string, error) {
	p, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	return p.Paths(), nil
}

// Info returns the pack's metadata summary.
func (p *Pack) Info() Info {
	return Info{
		Version:       p.header.Version,
		FileType:      p.header.FileType,
		Flags:         p.header.Flags,
		Timestamp:     p.header.Timestamp,
		GameVersion:   p.header.GameVersion,
		BuildNumber:   p.header.BuildNumber,
		AuthoringTool: p.header.AuthoringTool,
		Dependencies:  p.Dependencies(),
		EntryCount:    len(p.files),
		HasNotes:      p.notes != "",
		HasSettings:   !p.settings.IsZero(),
	}
}
