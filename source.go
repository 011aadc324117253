// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// Source is a shared, lock-protected handle over the backing bytes of a
// pack: an open file or an in-memory buffer. Many lazy entries point into
// one Source; the lock serializes the underlying reads only, never access
// to already-cached entry data.
type Source struct {
	mu     sync.Mutex
	ra     io.ReaderAt
	file   *os.File
	size   int64
	closed bool
}

// OpenSource opens a file-backed source.
func OpenSource(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	return &Source{ra: f, file: f, size: fi.Size()}, nil
}

// NewSource wraps an in-memory buffer as a source.
func NewSource(data []byte) *Source {
	return &Source{ra: bytes.NewReader(data), size: int64(len(data))}
}

// NewSourceFromReaderAt wraps an existing random-access reader of known size.
func NewSourceFromReaderAt(ra io.ReaderAt, size int64) *Source {
	return &Source{ra: ra, size: size}
}

// Size returns the total source length in bytes.
func (s *Source) Size() int64 {
	return s.size
}

// ReadSpan fetches one byte range from the backing storage.
func (s *Source) ReadSpan(offset int64, length int64) ([]byte, error) {
	if s == nil || s.ra == nil {
		return nil, ErrNoSource
	}

	if offset < 0 || length < 0 || offset+length > s.size {
		return nil, fmt.Errorf("%w: span [%d:%d] of %d", ErrIndexTruncated, offset, offset+length, s.size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(s.ra, offset, length), out); err != nil {
		return nil, fmt.Errorf("read span at %d: %w", offset, err)
	}

	return out, nil
}

// Close closes the backing file if the source owns one. Further reads fail
// with ErrClosed; cached entry data stays valid.
func (s *Source) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	s.closed = true
	if s.file != nil {
		return s.file.Close()
	}

	return nil
}
