// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/woozymasta/lzss"
	"github.com/woozymasta/pathrules"
)

// Compressed entry payloads are framed as a u32 uncompressed size followed
// by the stream. The stream format is sniffed on decompress: a zstd frame
// magic selects the modern codec, anything else is legacy lzss.
var zstdFrameMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

// compressEntry frames and compresses a raw payload with the given format.
func compressEntry(data []byte, format CompressionFormat) ([]byte, error) {
	if len(data) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, len(data))
	}

	out := make([]byte, 4, len(data)/2+4)
	binary.LittleEndian.PutUint32(out, uint32(len(data)))

	switch format {
	case CompressZstd:
		return zstdEncoder.EncodeAll(data, out), nil
	case CompressLzss:
		stream, err := lzss.Compress(data, lzss.DefaultCompressOptions())
		if err != nil {
			return nil, fmt.Errorf("lzss compress: %w", err)
		}

		return append(out, stream...), nil
	default:
		return nil, fmt.Errorf("compress: unsupported target format %d", format)
	}
}

// decompressEntry unframes and decompresses a stored payload.
func decompressEntry(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadCompressedPayload, len(data))
	}

	outLen := binary.LittleEndian.Uint32(data)
	stream := data[4:]

	if bytes.HasPrefix(stream, zstdFrameMagic) {
		out, err := zstdDecoder.DecodeAll(stream, make([]byte, 0, outLen))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrBadCompressedPayload, err)
		}

		if len(out) != int(outLen) {
			return nil, fmt.Errorf("%w: declared %d bytes, got %d", ErrBadCompressedPayload, outLen, len(out))
		}

		return out, nil
	}

	var buf bytes.Buffer
	buf.Grow(int(outLen))
	if _, err := lzss.DecompressToWriter(&buf, bytes.NewReader(stream), int(outLen), nil); err != nil {
		return nil, fmt.Errorf("%w: lzss: %w", ErrBadCompressedPayload, err)
	}

	return buf.Bytes(), nil
}

// compressMatcher holds compiled allow-list rules for save-time compression.
type compressMatcher struct {
	matcher *pathrules.Matcher
}

// newCompressMatcher compiles compression path rules. Nil rules mean every
// compressible entry is a candidate.
func newCompressMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*compressMatcher, error) {
	rules = normalizeFilterRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilterPattern, err)
	}

	return &compressMatcher{matcher: matcher}, nil
}

// normalizeFilterRules normalizes rule patterns and drops empty patterns.
func normalizeFilterRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is included by at least one rule. A nil
// matcher includes everything.
func (m *compressMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// shouldCompress reports whether an entry is a compression candidate:
// tables are never compressed, everything else follows the rule matcher.
func shouldCompress(path string, matcher *compressMatcher) bool {
	switch KindOf(path) {
	case KindDB, KindLoc:
		return false
	}

	return matcher.Match(path)
}
