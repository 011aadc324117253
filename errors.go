// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"errors"
	"fmt"
)

// Sentinel errors for pack operations. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the file is missing or has a truncated header.
	ErrInvalidHeader = errors.New("invalid pack file: missing or bad header")
	// ErrUnsupportedVersion means the 4-byte version tag is not a known layout.
	ErrUnsupportedVersion = errors.New("unsupported pack version")
	// ErrIndexTruncated means the dependency or entry index ended early.
	ErrIndexTruncated = errors.New("pack index truncated")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrEntryNotFound means no entry exists under the requested path.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrNotLoaded means the entry's bytes were never fetched from the source.
	ErrNotLoaded = errors.New("entry bytes not loaded")
	// ErrNoSource means a lazy entry has no backing source to load from.
	ErrNoSource = errors.New("no backing source")
	// ErrClosed means the source or resource is already closed.
	ErrClosed = errors.New("source already closed")
	// ErrSizeOverflow means a size does not fit the u32 index fields.
	ErrSizeOverflow = errors.New("size exceeds u32 index limit")
	// ErrInvalidEntryPath means an entry path is empty or invalid after
	// normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrDuplicateEntryPath means two inputs resolve to the same path.
	ErrDuplicateEntryPath = errors.New("duplicate entry path")
	// ErrInvalidFilterPattern means one or more query rules are invalid.
	ErrInvalidFilterPattern = errors.New("invalid filter rules")
	// ErrInvalidExtractPath means an entry path cannot map to a safe
	// extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrExtractPathOutsideRoot means a resolved extraction path escapes the
	// destination root.
	ErrExtractPathOutsideRoot = errors.New("extract path escapes destination root")
	// ErrBadCompressedPayload means a compressed entry payload is malformed.
	ErrBadCompressedPayload = errors.New("malformed compressed payload")
	// ErrServiceStopped means the request actor is no longer running.
	ErrServiceStopped = errors.New("pack service stopped")
	// ErrNoPackLoaded means the service has no pack open yet.
	ErrNoPackLoaded = errors.New("no pack loaded")
)

// SizeMismatchError means index arithmetic did not land exactly on the end
// of the file. The pack is corrupt; no partial result is returned.
type SizeMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("index arithmetic mismatch: entries end at %d, file ends at %d", e.Actual, e.Expected)
}
