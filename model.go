// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	commonHeaderSize = 24         // tag + flags word + four index counts
	pfh6HeaderSize   = 308        // PFH6 fixed header incl. opaque subheader tail
	extendedSubSize  = 20         // extended-header subheader block
	footerSize       = 256        // trailing footer on extended PFH5 packs
	dataAlignment    = 8          // payload alignment for encrypted-data packs
	maxPathLen       = 512        // max entry path length
	maxPackData      = 1 << 32    // max addressable payload (u32 index fields)
	authoringToolLen = 8          // zero-padded authoring tool field width
)

// Version is the 4-byte ASCII tag identifying a pack header layout.
type Version string

// Known pack header layouts, oldest first.
const (
	PFH0 Version = "PFH0"
	PFH4 Version = "PFH4"
	PFH5 Version = "PFH5"
	PFH6 Version = "PFH6"
)

// valid reports whether the tag names a known layout.
func (v Version) valid() bool {
	switch v {
	case PFH0, PFH4, PFH5, PFH6:
		return true
	default:
		return false
	}
}

// hasTimestamp reports whether the header carries a creation timestamp.
func (v Version) hasTimestamp() bool {
	return v != PFH0
}

// hasCompressionFlag reports whether index records carry a compression byte.
func (v Version) hasCompressionFlag() bool {
	return v != PFH0
}

// Flags is the header feature bitmask. The low 4 bits hold the FileType.
type Flags uint32

// Header feature bits.
const (
	// HasEncryptedData marks entry payloads as encrypted (legacy, read-only).
	HasEncryptedData Flags = 0x10
	// HasIndexWithTimestamps marks index records as carrying timestamps.
	HasIndexWithTimestamps Flags = 0x40
	// HasEncryptedIndex marks index sizes and paths as encrypted (legacy).
	HasEncryptedIndex Flags = 0x80
	// HasExtendedHeader marks the extended subheader layout.
	HasExtendedHeader Flags = 0x100

	fileTypeMask Flags = 0x0F
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// FileType classifies a pack's role in the game's load order.
type FileType uint32

// Pack file types, in load-order precedence.
const (
	FileTypeBoot FileType = iota
	FileTypeRelease
	FileTypePatch
	FileTypeMod
	FileTypeMovie
)

// String returns the lowercase file type name.
func (t FileType) String() string {
	switch t {
	case FileTypeBoot:
		return "boot"
	case FileTypeRelease:
		return "release"
	case FileTypePatch:
		return "patch"
	case FileTypeMod:
		return "mod"
	case FileTypeMovie:
		return "movie"
	default:
		return fmt.Sprintf("filetype(%d)", uint32(t))
	}
}

// Header is the decoded pack header. SubHeader holds the opaque trailing
// region of PFH6 (and extended) headers byte-for-byte; it is carried through
// unchanged on save.
type Header struct {
	Version  Version
	Flags    Flags
	FileType FileType

	// Timestamp is the pack creation time (absent on PFH0).
	Timestamp uint32

	// PFH6 build metadata.
	SubHeaderMark    uint32
	SubHeaderVersion uint32
	GameVersion      uint32
	BuildNumber      uint32
	AuthoringTool    string

	// SubHeader is the opaque subheader tail, carried through unchanged.
	SubHeader []byte
}

// size returns the full header byte length for this version and flag set.
func (h *Header) size() int64 {
	size := int64(commonHeaderSize)
	if h.Version.hasTimestamp() {
		size += 4
	}

	if h.Version == PFH6 {
		size = pfh6HeaderSize
	}

	if h.Flags.Has(HasExtendedHeader) {
		size += extendedSubSize
	}

	return size
}

// hasFooter reports whether the pack carries the fixed trailing footer.
func (h *Header) hasFooter() bool {
	return h.Version == PFH5 && h.Flags.Has(HasExtendedHeader)
}

// padsData reports whether entry payloads are 8-byte aligned.
func (h *Header) padsData() bool {
	return h.Flags.Has(HasExtendedHeader) && h.Flags.Has(HasEncryptedData)
}

// Reserved paths woven into the entry index during save and stripped
// immediately after; never visible as ordinary entries.
const (
	notesEntryPath    = "twpack.notes"
	settingsEntryPath = "twpack.settings"
)

// CompressionFormat selects the target per-entry compression on save.
type CompressionFormat uint8

// Save-time compression targets. The zero value preserves each entry's
// current stored form.
const (
	// CompressPreserve keeps every entry exactly as stored.
	CompressPreserve CompressionFormat = iota
	// CompressNone decompresses every compressed entry.
	CompressNone
	// CompressLzss compresses matching entries with the legacy codec.
	CompressLzss
	// CompressZstd compresses matching entries with the modern codec.
	CompressZstd
)

// ReadOptions configures pack parsing behavior.
type ReadOptions struct {
	// Skip drops entries of these kinds during parse; they are not added to
	// the pack at all.
	Skip []FileKind
	// Eager materializes every entry's bytes during open instead of leaving
	// lazy stubs. Eager loads fan out over MaxWorkers goroutines.
	Eager bool
	// MaxWorkers bounds parallel eager loads (zero means GOMAXPROCS).
	MaxWorkers int
	// Logger receives per-entry debug events. Nil discards.
	Logger *slog.Logger
}

// SaveOptions configures the save pipeline.
type SaveOptions struct {
	// Compression is the target state for compressible entries. Tables are
	// never compressed regardless of this setting.
	Compression CompressionFormat
	// CompressRules restricts compression to matching paths; empty means
	// every compressible entry is a candidate.
	CompressRules []pathrules.Rule
	// CompressMatcherOptions control compression rule matching.
	CompressMatcherOptions pathrules.MatcherOptions
	// MaxWorkers bounds parallel entry materialization (zero means GOMAXPROCS).
	MaxWorkers int
	// Logger receives per-entry debug events. Nil discards.
	Logger *slog.Logger
}

// ExtractOptions configures extraction to a directory.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(path string, written int64, outputPath string)
	// Paths limits extraction to the listed entries; nil means all.
	Paths []string
	// MaxWorkers is the number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int
	// Overwrite truncates existing output files instead of failing.
	Overwrite bool
	// Logger receives per-entry debug events. Nil discards.
	Logger *slog.Logger
}

// applyDefaults fills zero-valued read options with defaults.
func (opts *ReadOptions) applyDefaults() {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
}

// applyDefaults fills zero-valued save options with defaults.
func (opts *SaveOptions) applyDefaults() {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}

	if opts.CompressMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.CompressMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.CompressMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.CompressMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
}

// log returns the configured logger or a discard logger.
func logOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}

	return slog.New(slog.DiscardHandler)
}
