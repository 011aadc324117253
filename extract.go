// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
)

// Extract writes entries to a directory tree, one file per entry with the
// archive path mapped to a relative filesystem path. Payloads are written
// decoded: decrypted and decompressed. Extraction fans out over MaxWorkers
// and stops at the first error.
func (p *Pack) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	opts.applyDefaults()
	log := logOrDiscard(opts.Logger)

	selected, err := p.selectForExtract(opts.Paths)
	if err != nil {
		return err
	}

	if len(selected) == 0 {
		return nil
	}

	rootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(rootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	targets := make(map[*File]string, len(selected))
	dirs := make(map[string]struct{})
	for _, f := range selected {
		rel, err := extractRelPath(f.path)
		if err != nil {
			return fmt.Errorf("entry %s: %w", f.path, err)
		}

		out := filepath.Join(rootAbs, rel)
		if !strings.HasPrefix(out, rootAbs+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", ErrExtractPathOutsideRoot, f.path)
		}

		targets[f] = out
		if dir := filepath.Dir(out); dir != rootAbs {
			dirs[dir] = struct{}{}
		}
	}

	for dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxWorkers)

	for f, out := range targets {
		f, out := f, out
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			written, err := extractOne(f, out, opts.Overwrite)
			if err != nil {
				return err
			}

			if opts.OnEntryDone != nil {
				opts.OnEntryDone(f.path, written, out)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Debug("pack extracted", "entries", len(selected), "dir", rootAbs)
	return nil
}

// selectForExtract resolves the requested paths to entries. Each requested
// path selects the exact entry or, when it names a directory, the subtree
// under it. Nil selects everything.
func (p *Pack) selectForExtract(paths []string) ([]*File, error) {
	if paths == nil {
		out := make([]*File, 0, len(p.files))
		for _, path := range p.Paths() {
			out = append(out, p.files[path])
		}

		return out, nil
	}

	seen := make(map[string]struct{})
	out := make([]*File, 0, len(paths))
	for _, requested := range paths {
		matched := p.FilesUnder(requested)
		if len(matched) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, requested)
		}

		for _, f := range matched {
			if _, dup := seen[f.path]; dup {
				continue
			}

			seen[f.path] = struct{}{}
			out = append(out, f)
		}
	}

	return out, nil
}

func extractOne(f *File, outPath string, overwrite bool) (int64, error) {
	data, err := f.Data()
	if err != nil {
		return 0, err
	}

	mode := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	file, err := os.OpenFile(outPath, mode, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", f.path, err)
	}

	n, writeErr := file.Write(data)
	closeErr := file.Close()
	if writeErr != nil {
		return int64(n), fmt.Errorf("write %s: %w", f.path, writeErr)
	}
	if closeErr != nil {
		return int64(n), fmt.Errorf("close %s: %w", f.path, closeErr)
	}

	return int64(n), nil
}

// reservedDeviceNames are case-insensitive names some filesystems treat as
// devices instead of files.
var reservedDeviceNames = map[string]struct{}{
	"aux": {}, "con": {}, "nul": {}, "prn": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {},
	"com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {},
	"lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// extractRelPath maps a normalized archive path to a safe relative
// filesystem path. Traversal segments, absolute prefixes and device names
// are rejected or rewritten.
func extractRelPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, "/") || hasDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, "/")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		}

		clean = append(clean, sanitizeSegment(part))
	}
	if len(clean) == 0 {
		return "", ErrInvalidExtractPath
	}

	return filepath.FromSlash(strings.Join(clean, "/")), nil
}

// sanitizeSegment rewrites one path segment to a filesystem-safe name.
func sanitizeSegment(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"/\|?*`, r) {
			b.WriteRune('_')
			continue
		}

		b.WriteRune(r)
	}

	out := strings.TrimRight(b.String(), ". ")
	if out == "" {
		return "_"
	}

	base := strings.ToLower(out)
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	if _, reserved := reservedDeviceNames[base]; reserved {
		out = "_" + out
	}

	return out
}

func hasDrivePrefix(path string) bool {
	if len(path) < 3 || path[1] != ':' || path[2] != '/' {
		return false
	}

	b := path[0]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
