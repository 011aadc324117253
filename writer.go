// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/twmodding/pack/binio"
)

// Save encodes the pack to a writer with default options.
func (p *Pack) Save(w io.Writer) error {
	return p.SaveWithOptions(w, SaveOptions{})
}

// SaveTo encodes the pack into a file, replacing any existing one. All
// entries are materialized before the first byte is written, so saving over
// the pack's own backing file is safe.
func (p *Pack) SaveTo(path string) error {
	return p.SaveToWithOptions(path, SaveOptions{})
}

// SaveToWithOptions encodes the pack into a file with explicit options.
func (p *Pack) SaveToWithOptions(path string, opts SaveOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pack: %w", err)
	}

	if err := p.SaveWithOptions(f, opts); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// SaveWithOptions encodes the pack to a writer. Saving never produces
// encrypted output: legacy payloads are written decrypted and the
// encryption header flags are dropped.
func (p *Pack) SaveWithOptions(w io.Writer, opts SaveOptions) error {
	if w == nil {
		return ErrNilWriter
	}

	opts.applyDefaults()
	log := logOrDiscard(opts.Logger)

	matcher, err := newCompressMatcher(opts.CompressRules, opts.CompressMatcherOptions)
	if err != nil {
		return err
	}

	if err := p.injectVirtualEntries(); err != nil {
		return err
	}
	defer p.stripVirtualEntries()

	flags := p.header.Flags &^ (HasEncryptedData | HasEncryptedIndex)
	extended := flags.Has(HasExtendedHeader)
	canFlagCompression := !extended && p.header.Version.hasCompressionFlag()

	if err := p.materializeForSave(context.Background(), opts, matcher, canFlagCompression); err != nil {
		return err
	}

	order := p.Paths()
	depIndex := p.encodeDependencyIndex()
	entryIndex := p.encodeEntryIndex(order, flags, canFlagCompression)

	header, err := p.encodeHeader(flags, uint32(len(depIndex)), uint32(len(order)), uint32(len(entryIndex)))
	if err != nil {
		return err
	}

	total := int64(len(header)) + int64(len(depIndex)) + int64(len(entryIndex))
	for _, path := range order {
		total += int64(p.files[path].size)
	}
	if p.header.hasFooter() {
		total += footerSize
	}
	if total > maxPackData {
		return fmt.Errorf("%w: pack is %d bytes", ErrSizeOverflow, total)
	}

	bw := bufio.NewWriter(w)
	for _, block := range [][]byte{header, depIndex, entryIndex} {
		if _, err := bw.Write(block); err != nil {
			return fmt.Errorf("write pack: %w", err)
		}
	}

	for _, path := range order {
		data, err := p.files[path].Cached()
		if err != nil {
			return err
		}

		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("write entry %s: %w", path, err)
		}
	}

	if p.header.hasFooter() {
		footer := p.footer
		if len(footer) != footerSize {
			footer = make([]byte, footerSize)
		}

		if _, err := bw.Write(footer); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write pack: %w", err)
	}

	log.Debug("pack saved", "entries", len(order), "bytes", total)
	return nil
}

// injectVirtualEntries adds the reserved notes/settings entries for the
// duration of a save.
func (p *Pack) injectVirtualEntries() error {
	if p.notes != "" {
		p.files[notesEntryPath] = &File{
			path:   notesEntryPath,
			size:   uint32(len(p.notes)),
			data:   []byte(p.notes),
			loaded: true,
		}
	}

	// A captured stored form goes back out byte-identical; only mutated
	// settings are re-serialized.
	data := p.settingsRaw
	if data == nil && !p.settings.IsZero() {
		encoded, err := encodeSettings(p.settings)
		if err != nil {
			return err
		}

		data = encoded
	}

	if len(data) > 0 {
		p.files[settingsEntryPath] = &File{
			path:   settingsEntryPath,
			size:   uint32(len(data)),
			data:   data,
			loaded: true,
		}
	}

	return nil
}

func (p *Pack) stripVirtualEntries() {
	delete(p.files, notesEntryPath)
	delete(p.files, settingsEntryPath)
}

// materializeForSave brings every entry into its final stored form: loaded,
// decrypted, compression reconciled against the save options. When the
// output header cannot carry per-entry compression flags everything is
// stored raw.
func (p *Pack) materializeForSave(ctx context.Context, opts SaveOptions, matcher *compressMatcher, canFlagCompression bool) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxWorkers)

	for _, f := range p.files {
		f := f
		g.Go(func() error {
			return p.materializeEntry(f, opts, matcher, canFlagCompression)
		})
	}

	return g.Wait()
}

func (p *Pack) materializeEntry(f *File, opts SaveOptions, matcher *compressMatcher, canFlagCompression bool) error {
	format := opts.Compression
	if !canFlagCompression {
		format = CompressNone
	}

	wantCompressed := false
	switch format {
	case CompressPreserve:
		wantCompressed = f.compressed && shouldCompress(f.path, matcher)
	case CompressLzss, CompressZstd:
		wantCompressed = shouldCompress(f.path, matcher)
	}

	// A preserved compressed stream needs no recompression; decrypting the
	// stored bytes is enough.
	if format == CompressPreserve && wantCompressed == f.compressed {
		if err := f.Load(); err != nil {
			return err
		}

		if !f.encrypted {
			return nil
		}

		stored, err := f.Cached()
		if err != nil {
			return err
		}

		decrypted := make([]byte, len(stored))
		copy(decrypted, stored)
		decryptEntryData(decrypted)
		return f.setStored(decrypted, f.compressed)
	}

	raw, err := f.Data()
	if err != nil {
		return err
	}

	if !wantCompressed {
		return f.setStored(raw, false)
	}

	target := format
	if target == CompressPreserve {
		target = CompressZstd
	}

	stored, err := compressEntry(raw, target)
	if err != nil {
		return fmt.Errorf("entry %s: %w", f.path, err)
	}

	return f.setStored(stored, true)
}

// encodeHeader builds the version-dependent fixed header block.
func (p *Pack) encodeHeader(flags Flags, depIndexBytes, entryCount, entryIndexBytes uint32) ([]byte, error) {
	w := binio.NewWriter()
	w.Raw([]byte(p.header.Version))
	w.U32(uint32(flags) | uint32(p.header.FileType))
	w.U32(uint32(len(p.dependencies)))
	w.U32(depIndexBytes)
	w.U32(entryCount)
	w.U32(entryIndexBytes)

	if p.header.Version.hasTimestamp() {
		w.U32(p.header.Timestamp)
	}

	if p.header.Version == PFH6 {
		w.U32(p.header.SubHeaderMark)
		w.U32(p.header.SubHeaderVersion)
		w.U32(p.header.GameVersion)
		w.U32(p.header.BuildNumber)
		if err := w.PaddedString(p.header.AuthoringTool, authoringToolLen); err != nil {
			return nil, fmt.Errorf("%w: authoring tool %q", ErrInvalidHeader, p.header.AuthoringTool)
		}
	}

	w.Raw(p.header.SubHeader)

	want := int(p.header.size())
	got := w.Len()
	if got > want {
		return nil, fmt.Errorf("%w: header is %d bytes, format allows %d", ErrInvalidHeader, got, want)
	}
	if got < want {
		w.Raw(make([]byte, want-got))
	}

	return w.Bytes(), nil
}

// encodeDependencyIndex builds the null-terminated dependency name block.
func (p *Pack) encodeDependencyIndex() []byte {
	w := binio.NewWriter()
	for _, name := range p.dependencies {
		w.CString(name)
	}

	return w.Bytes()
}

// encodeEntryIndex builds the entry records in save order. Paths are
// written in backslash form.
func (p *Pack) encodeEntryIndex(order []string, flags Flags, canFlagCompression bool) []byte {
	withTimestamps := flags.Has(HasIndexWithTimestamps)

	w := binio.NewWriter()
	for _, path := range order {
		f := p.files[path]
		w.U32(f.size)
		if withTimestamps {
			w.U32(f.timestamp)
		}
		if canFlagCompression {
			var flag uint8
			if f.compressed {
				flag = 1
			}
			w.U8(flag)
		}

		w.CString(archivePath(path))
	}

	return w.Bytes()
}
