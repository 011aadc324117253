// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/twmodding/pack/binio"
)

// Pack is a decoded archive: header, ordered dependency list, a path-keyed
// entry collection, free-text notes and a settings blob. Mutation is not
// internally synchronized; one owner mutates a Pack at a time (Service
// provides that boundary when callers need it).
type Pack struct {
	header       Header
	dependencies []string
	files        map[string]*File

	notes    string
	settings Settings
	// settingsRaw is the settings entry exactly as stored, re-emitted
	// verbatim on save until SetSettings replaces it.
	settingsRaw []byte

	// source backs lazy entries; nil for packs built in memory.
	source *Source
	// footer is the opaque trailing block on extended PFH5 packs.
	footer []byte
}

// New returns an empty mod pack with a current-format header.
func New() *Pack {
	return &Pack{
		header: Header{Version: PFH6, FileType: FileTypeMod, AuthoringTool: "twpack"},
		files:  make(map[string]*File),
	}
}

// Open opens and parses a pack file. Entries stay lazy; their bytes load
// on demand through the shared source.
func Open(path string) (*Pack, error) {
	return OpenWithOptions(path, ReadOptions{})
}

// OpenWithOptions opens and parses a pack file with explicit options.
func OpenWithOptions(path string, opts ReadOptions) (*Pack, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}

	p, err := decodePack(src, opts)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	return p, nil
}

// Decode parses a pack from an in-memory buffer.
func Decode(data []byte) (*Pack, error) {
	return DecodeWithOptions(data, ReadOptions{})
}

// DecodeWithOptions parses a pack from an in-memory buffer with options.
func DecodeWithOptions(data []byte, opts ReadOptions) (*Pack, error) {
	return decodePack(NewSource(data), opts)
}

// NewFromReaderAt parses a pack from a random-access reader of known size.
func NewFromReaderAt(ra io.ReaderAt, size int64, opts ReadOptions) (*Pack, error) {
	if ra == nil {
		return nil, ErrNilReader
	}

	return decodePack(NewSourceFromReaderAt(ra, size), opts)
}

// Header returns the decoded pack header.
func (p *Pack) Header() Header {
	return p.header
}

// Dependencies returns the ordered dependency pack names.
func (p *Pack) Dependencies() []string {
	out := make([]string, len(p.dependencies))
	copy(out, p.dependencies)
	return out
}

// SetDependencies replaces the dependency list.
func (p *Pack) SetDependencies(deps []string) {
	p.dependencies = make([]string, len(deps))
	copy(p.dependencies, deps)
}

// Notes returns the pack's free-text notes.
func (p *Pack) Notes() string {
	return p.notes
}

// SetNotes replaces the pack's free-text notes.
func (p *Pack) SetNotes(notes string) {
	p.notes = notes
}

// Settings returns the embedded settings blob.
func (p *Pack) Settings() Settings {
	return p.settings
}

// SetSettings replaces the embedded settings blob. The stored form is
// re-serialized on the next save.
func (p *Pack) SetSettings(s Settings) {
	p.settings = s
	p.settingsRaw = nil
}

// Len returns the number of entries.
func (p *Pack) Len() int {
	return len(p.files)
}

// File returns the entry stored under a path.
func (p *Pack) File(path string) (*File, error) {
	normalized := NormalizePath(path)
	f, ok := p.files[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, normalized)
	}

	return f, nil
}

// Insert adds or replaces an entry. A later insert under the same path
// overwrites the earlier one.
func (p *Pack) Insert(f *File) error {
	if f == nil {
		return ErrInvalidEntryPath
	}

	switch f.path {
	case notesEntryPath, settingsEntryPath:
		return fmt.Errorf("%w: %s is reserved", ErrInvalidEntryPath, f.path)
	}

	p.files[f.path] = f
	return nil
}

// Remove deletes the entry stored under a path.
func (p *Pack) Remove(path string) error {
	normalized := NormalizePath(path)
	if _, ok := p.files[normalized]; !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, normalized)
	}

	delete(p.files, normalized)
	return nil
}

// Rename moves an entry to a new path, overwriting any existing entry
// there.
func (p *Pack) Rename(oldPath, newPath string) error {
	normalized := NormalizePath(oldPath)
	f, ok := p.files[normalized]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, normalized)
	}

	target, err := normalizeEntryPath(newPath)
	if err != nil {
		return err
	}

	switch target {
	case notesEntryPath, settingsEntryPath:
		return fmt.Errorf("%w: %s is reserved", ErrInvalidEntryPath, target)
	}

	delete(p.files, normalized)
	f.path = target
	p.files[target] = f
	return nil
}

// Close releases the backing source, if any. Materialized entries stay
// usable; lazy stubs can no longer load.
func (p *Pack) Close() error {
	return p.source.Close()
}

// decodePack parses the full container structure from a source. Any
// format, index or size failure aborts the open; no partially populated
// Pack is ever returned.
func decodePack(src *Source, opts ReadOptions) (*Pack, error) {
	opts.applyDefaults()
	log := logOrDiscard(opts.Logger)

	p := &Pack{files: make(map[string]*File), source: src}

	depCount, depIndexBytes, entryCount, entryIndexBytes, err := p.parseHeader(src)
	if err != nil {
		return nil, err
	}

	headerSize := p.header.size()
	if err := p.parseDependencies(src, headerSize, depCount, depIndexBytes); err != nil {
		return nil, err
	}

	indexOffset := headerSize + int64(depIndexBytes)
	dataStart := indexOffset + int64(entryIndexBytes)
	if err := p.parseEntryIndex(src, indexOffset, int64(entryIndexBytes), entryCount, dataStart, opts); err != nil {
		return nil, err
	}

	if p.header.hasFooter() {
		footer, err := src.ReadSpan(src.Size()-footerSize, footerSize)
		if err != nil {
			return nil, fmt.Errorf("read footer: %w", err)
		}

		p.footer = footer
	}

	if err := p.captureVirtualEntries(); err != nil {
		return nil, err
	}

	if opts.Eager {
		if err := p.loadAll(context.Background(), opts.MaxWorkers); err != nil {
			return nil, err
		}
	}

	log.Debug("pack opened",
		"version", string(p.header.Version),
		"entries", len(p.files),
		"dependencies", len(p.dependencies))
	return p, nil
}

// parseHeader reads the version-dependent fixed header and returns the
// index geometry counts.
func (p *Pack) parseHeader(src *Source) (depCount, depIndexBytes, entryCount, entryIndexBytes uint32, err error) {
	if src.Size() < commonHeaderSize {
		return 0, 0, 0, 0, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, src.Size())
	}

	prefix, err := src.ReadSpan(0, commonHeaderSize)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	r := binio.NewReader(prefix)
	tagBytes, _ := r.Slice(4)
	version := Version(tagBytes)
	if !version.valid() {
		return 0, 0, 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedVersion, string(tagBytes))
	}

	flagsWord, _ := r.U32()
	p.header.Version = version
	p.header.Flags = Flags(flagsWord) &^ fileTypeMask
	p.header.FileType = FileType(flagsWord) & FileType(fileTypeMask)

	depCount, _ = r.U32()
	depIndexBytes, _ = r.U32()
	entryCount, _ = r.U32()
	entryIndexBytes, _ = r.U32()

	headerSize := p.header.size()
	if src.Size() < headerSize {
		return 0, 0, 0, 0, fmt.Errorf("%w: header needs %d bytes, file has %d", ErrInvalidHeader, headerSize, src.Size())
	}

	if headerSize > commonHeaderSize {
		rest, err := src.ReadSpan(commonHeaderSize, headerSize-commonHeaderSize)
		if err != nil {
			return 0, 0, 0, 0, err
		}

		if err := p.parseHeaderTail(rest); err != nil {
			return 0, 0, 0, 0, err
		}
	}

	return depCount, depIndexBytes, entryCount, entryIndexBytes, nil
}

// parseHeaderTail decodes the version-specific bytes after the common
// prefix. Whatever is not a known field is carried as the opaque subheader.
func (p *Pack) parseHeaderTail(tail []byte) error {
	r := binio.NewReader(tail)

	if p.header.Version.hasTimestamp() {
		ts, err := r.U32()
		if err != nil {
			return fmt.Errorf("%w: timestamp", ErrInvalidHeader)
		}

		p.header.Timestamp = ts
	}

	if p.header.Version == PFH6 {
		var err error
		if p.header.SubHeaderMark, err = r.U32(); err != nil {
			return fmt.Errorf("%w: subheader mark", ErrInvalidHeader)
		}
		if p.header.SubHeaderVersion, err = r.U32(); err != nil {
			return fmt.Errorf("%w: subheader version", ErrInvalidHeader)
		}
		if p.header.GameVersion, err = r.U32(); err != nil {
			return fmt.Errorf("%w: game version", ErrInvalidHeader)
		}
		if p.header.BuildNumber, err = r.U32(); err != nil {
			return fmt.Errorf("%w: build number", ErrInvalidHeader)
		}
		if p.header.AuthoringTool, err = r.PaddedString(authoringToolLen); err != nil {
			return fmt.Errorf("%w: authoring tool", ErrInvalidHeader)
		}
	}

	if r.Remaining() > 0 {
		sub, _ := r.Slice(r.Remaining())
		p.header.SubHeader = sub
	}

	return nil
}

// parseDependencies reads the null-terminated dependency name list.
func (p *Pack) parseDependencies(src *Source, offset int64, count, indexBytes uint32) error {
	if indexBytes == 0 {
		if count != 0 {
			return fmt.Errorf("%w: %d dependencies declared, empty index", ErrIndexTruncated, count)
		}

		return nil
	}

	span, err := src.ReadSpan(offset, int64(indexBytes))
	if err != nil {
		return fmt.Errorf("%w: dependency index", ErrIndexTruncated)
	}

	r := binio.NewReader(span)
	for r.Remaining() > 0 {
		name, err := r.CString()
		if err != nil {
			return fmt.Errorf("%w: dependency name", ErrIndexTruncated)
		}

		p.dependencies = append(p.dependencies, name)
	}

	if uint32(len(p.dependencies)) != count {
		return fmt.Errorf("%w: %d dependencies declared, %d found", ErrIndexTruncated, count, len(p.dependencies))
	}

	return nil
}

// parseEntryIndex decodes the entry records. Encrypted sizes are keyed by
// the entry's position counted back from the end of the declared order:
// the first record uses entryCount-1, the last uses 0, while the cursor
// moves forward.
func (p *Pack) parseEntryIndex(src *Source, offset, indexBytes int64, entryCount uint32, dataStart int64, opts ReadOptions) error {
	span, err := src.ReadSpan(offset, indexBytes)
	if err != nil {
		return fmt.Errorf("%w: entry index", ErrIndexTruncated)
	}

	skip := make(map[FileKind]bool, len(opts.Skip))
	for _, k := range opts.Skip {
		skip[k] = true
	}

	encryptedIndex := p.header.Flags.Has(HasEncryptedIndex)
	withTimestamps := p.header.Flags.Has(HasIndexWithTimestamps)
	extended := p.header.Flags.Has(HasExtendedHeader)
	encryptedData := p.header.Flags.Has(HasEncryptedData)
	hasCompressionByte := !extended && p.header.Version.hasCompressionFlag()

	r := binio.NewReader(span)
	dataOffset := dataStart

	for i := uint32(0); i < entryCount; i++ {
		reverseIndex := entryCount - 1 - i

		size, err := r.U32()
		if err != nil {
			return fmt.Errorf("%w: entry %d size", ErrIndexTruncated, i)
		}
		if encryptedIndex {
			size = decryptIndexLength(size, reverseIndex)
		}

		var timestamp uint32
		if withTimestamps {
			ts, err := r.U32()
			if err != nil {
				return fmt.Errorf("%w: entry %d timestamp", ErrIndexTruncated, i)
			}

			timestamp = ts
			if encryptedIndex {
				timestamp = decryptIndexLength(timestamp, reverseIndex)
			}
		}

		compressed := false
		if hasCompressionByte {
			flag, err := r.U8()
			if err != nil {
				return fmt.Errorf("%w: entry %d compression flag", ErrIndexTruncated, i)
			}

			compressed = flag != 0
		}

		var rawPath string
		if encryptedIndex {
			remaining, _ := r.Span(r.Pos(), len(span))
			path, consumed, ok := decryptIndexPath(remaining, size)
			if !ok {
				return fmt.Errorf("%w: entry %d path", ErrIndexTruncated, i)
			}

			_ = r.SetPos(r.Pos() + consumed)
			rawPath = path
		} else {
			path, err := r.CString()
			if err != nil {
				return fmt.Errorf("%w: entry %d path", ErrIndexTruncated, i)
			}

			rawPath = path
		}

		if len(rawPath) > maxPathLen {
			return fmt.Errorf("%w: entry %d path too long", ErrInvalidEntryPath, i)
		}

		normalized, err := normalizeEntryPath(rawPath)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		advance := int64(size)
		if p.header.padsData() {
			if rem := advance % dataAlignment; rem != 0 {
				advance += dataAlignment - rem
			}
		}

		keep := !skip[KindOf(normalized)]
		if keep {
			p.files[normalized] = &File{
				path:       normalized,
				size:       size,
				timestamp:  timestamp,
				compressed: compressed,
				encrypted:  encryptedData,
				offset:     dataOffset,
				source:     src,
			}
		}

		dataOffset += advance
	}

	if r.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes left in entry index", ErrIndexTruncated, r.Remaining())
	}

	expectedEnd := src.Size()
	computedEnd := dataOffset
	if p.header.hasFooter() {
		computedEnd += footerSize
	}

	if computedEnd != expectedEnd {
		return &SizeMismatchError{Expected: expectedEnd, Actual: computedEnd}
	}

	return nil
}

// captureVirtualEntries lifts the reserved notes/settings entries out of
// the file collection into their Pack fields.
func (p *Pack) captureVirtualEntries() error {
	if f, ok := p.files[notesEntryPath]; ok {
		data, err := f.Data()
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}

		p.notes = string(data)
		delete(p.files, notesEntryPath)
	}

	if f, ok := p.files[settingsEntryPath]; ok {
		data, err := f.Data()
		if err != nil {
			return fmt.Errorf("read settings: %w", err)
		}

		settings, err := decodeSettings(data)
		if err != nil {
			return err
		}

		p.settings = settings
		p.settingsRaw = data
		delete(p.files, settingsEntryPath)
	}

	return nil
}

// loadAll materializes every lazy entry, fanning out over workers.
func (p *Pack) loadAll(ctx context.Context, workers int) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, f := range p.files {
		f := f
		g.Go(func() error {
			return f.Load()
		})
	}

	return g.Wait()
}
