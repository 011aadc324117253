// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"fmt"
	"math"
)

// File is one logical file inside a pack: metadata from the entry index
// plus a data locator, either an offset into the backing Source (lazy stub)
// or an owned byte buffer (materialized).
type File struct {
	path string

	// size is the stored payload size from the index.
	size      uint32
	timestamp uint32

	compressed bool
	encrypted  bool

	// offset locates the payload in source while the entry is lazy.
	offset int64
	source *Source

	data   []byte
	loaded bool
}

// NewFile returns a materialized entry owning the given raw payload.
func NewFile(path string, data []byte) (*File, error) {
	normalized, err := normalizeEntryPath(path)
	if err != nil {
		return nil, err
	}

	if len(data) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %s", ErrSizeOverflow, normalized)
	}

	return &File{
		path:   normalized,
		size:   uint32(len(data)),
		data:   data,
		loaded: true,
	}, nil
}

// Path returns the normalized entry path.
func (f *File) Path() string {
	return f.path
}

// Size returns the stored payload size in bytes.
func (f *File) Size() uint32 {
	return f.size
}

// Timestamp returns the per-entry timestamp, zero when the index carries
// none.
func (f *File) Timestamp() uint32 {
	return f.timestamp
}

// IsCompressed reports whether the stored payload is compressed.
func (f *File) IsCompressed() bool {
	return f.compressed
}

// IsEncrypted reports whether the stored payload is encrypted.
func (f *File) IsEncrypted() bool {
	return f.encrypted
}

// IsLoaded reports whether the payload bytes are resident in memory.
func (f *File) IsLoaded() bool {
	return f.loaded
}

// Kind returns the entry's path-derived classification.
func (f *File) Kind() FileKind {
	return KindOf(f.path)
}

// Load fetches and caches the stored payload from the backing source.
// Loading an already-materialized entry is a no-op; decode stays
// idempotent and re-runnable.
func (f *File) Load() error {
	if f.loaded {
		return nil
	}

	if f.source == nil {
		return fmt.Errorf("%w: %s", ErrNoSource, f.path)
	}

	data, err := f.source.ReadSpan(f.offset, int64(f.size))
	if err != nil {
		return fmt.Errorf("load %s: %w", f.path, err)
	}

	f.data = data
	f.loaded = true
	return nil
}

// Cached returns the stored payload if it was already loaded.
func (f *File) Cached() ([]byte, error) {
	if !f.loaded {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, f.path)
	}

	return f.data, nil
}

// Data returns the usable payload: loads if needed, decrypts legacy
// encrypted payloads and decompresses compressed ones. The stored form is
// left untouched.
func (f *File) Data() ([]byte, error) {
	if err := f.Load(); err != nil {
		return nil, err
	}

	data := f.data
	if f.encrypted {
		decrypted := make([]byte, len(data))
		copy(decrypted, data)
		decryptEntryData(decrypted)
		data = decrypted
	}

	if f.compressed {
		out, err := decompressEntry(data)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", f.path, err)
		}

		return out, nil
	}

	return data, nil
}

// SetData replaces the entry's content with a raw uncompressed payload,
// dropping any compressed or encrypted stored form.
func (f *File) SetData(data []byte) error {
	if len(data) > math.MaxUint32 {
		return fmt.Errorf("%w: %s", ErrSizeOverflow, f.path)
	}

	f.data = data
	f.size = uint32(len(data))
	f.loaded = true
	f.compressed = false
	f.encrypted = false
	f.source = nil
	f.offset = 0
	return nil
}

// setStored replaces the stored payload in place, keeping the entry
// materialized. Used by the save pipeline after a compression state change.
func (f *File) setStored(data []byte, compressed bool) error {
	if len(data) > math.MaxUint32 {
		return fmt.Errorf("%w: %s", ErrSizeOverflow, f.path)
	}

	f.data = data
	f.size = uint32(len(data))
	f.loaded = true
	f.compressed = compressed
	f.encrypted = false
	f.source = nil
	f.offset = 0
	return nil
}
