// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/woozymasta/pathrules"
)

// FileKind classifies an entry by its path so callers can ask for "all
// tables" or "all map data" without decoding anything.
type FileKind uint8

// Entry kinds the engine distinguishes. Everything else is KindUnknown.
const (
	KindUnknown FileKind = iota
	// KindDB is a database table under the "db/" tree.
	KindDB
	// KindLoc is a localisation table (".loc").
	KindLoc
	// KindFastBin is a battle map data block (".bmd").
	KindFastBin
	// KindText is a plain text format the game reads as-is.
	KindText
	// KindImage is a texture or image payload.
	KindImage
)

// String returns the kind's display name.
func (k FileKind) String() string {
	switch k {
	case KindDB:
		return "db"
	case KindLoc:
		return "loc"
	case KindFastBin:
		return "fastbin"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// textExtensions are payloads the game consumes as plain text.
var textExtensions = map[string]bool{
	".lua": true, ".xml": true, ".txt": true, ".json": true,
	".environment": true, ".variantmeshdefinition": true,
}

// imageExtensions are texture and image payloads.
var imageExtensions = map[string]bool{
	".dds": true, ".png": true, ".jpg": true, ".tga": true,
}

// KindOf classifies a normalized entry path.
func KindOf(path string) FileKind {
	path = NormalizePath(path)
	lower := strings.ToLower(path)

	switch {
	case strings.HasPrefix(lower, "db/"):
		return KindDB
	case strings.HasSuffix(lower, ".loc"):
		return KindLoc
	case strings.HasSuffix(lower, ".bmd"):
		return KindFastBin
	}

	if idx := strings.LastIndex(lower, "."); idx >= 0 {
		ext := lower[idx:]
		if textExtensions[ext] {
			return KindText
		}
		if imageExtensions[ext] {
			return KindImage
		}
	}

	return KindUnknown
}

// Paths returns every entry path in sorted save order.
func (p *Pack) Paths() []string {
	out := make([]string, 0, len(p.files))
	for path := range p.files {
		out = append(out, path)
	}

	sort.Slice(out, func(i, j int) bool { return pathLess(out[i], out[j]) })
	return out
}

// FilesOfKind returns the entries matching any of the given kinds, in
// sorted save order.
func (p *Pack) FilesOfKind(kinds ...FileKind) []*File {
	want := make(map[FileKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	out := make([]*File, 0, len(p.files))
	for _, path := range p.Paths() {
		if want[KindOf(path)] {
			out = append(out, p.files[path])
		}
	}

	return out
}

// FilesUnder returns entries under a path prefix (or the exact entry when
// the prefix names a file), in sorted save order.
func (p *Pack) FilesUnder(prefix string) []*File {
	prefix = NormalizePath(prefix)
	if prefix == "" {
		out := make([]*File, 0, len(p.files))
		for _, path := range p.Paths() {
			out = append(out, p.files[path])
		}

		return out
	}

	withSlash := prefix + "/"
	out := make([]*File, 0)
	for _, path := range p.Paths() {
		if path == prefix || strings.HasPrefix(path, withSlash) {
			out = append(out, p.files[path])
		}
	}

	return out
}

// FilesMatching returns entries included by the given path rules, in
// sorted save order.
func (p *Pack) FilesMatching(rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]*File, error) {
	rules = normalizeFilterRules(rules)
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no usable patterns", ErrInvalidFilterPattern)
	}

	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilterPattern, err)
	}

	out := make([]*File, 0)
	for _, path := range p.Paths() {
		if matcher.Included(path, false) {
			out = append(out, p.files[path])
		}
	}

	return out, nil
}
