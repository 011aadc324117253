// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/woozymasta/lzss"
)

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// OpenEntry opens the named entry as a decoded stream.
func (p *Pack) OpenEntry(name string) (io.ReadCloser, error) {
	f, err := p.File(name)
	if err != nil {
		return nil, err
	}

	return f.Open()
}

// Open returns the entry's decoded payload as a stream. Plain lazy entries
// stream straight from the backing source; lzss entries decompress through
// a pipe. Encrypted or zstd payloads need whole-buffer transforms and fall
// back to the in-memory path.
func (f *File) Open() (io.ReadCloser, error) {
	if !f.loaded && !f.encrypted && f.source != nil {
		if !f.compressed {
			return f.openRawStream()
		}

		return f.openCompressedStream()
	}

	data, err := f.Data()
	if err != nil {
		return nil, err
	}

	return nopCloser{Reader: bytes.NewReader(data)}, nil
}

func (f *File) openRawStream() (io.ReadCloser, error) {
	f.source.mu.Lock()
	closed := f.source.closed
	f.source.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	return nopCloser{Reader: io.NewSectionReader(f.source.ra, f.offset, int64(f.size))}, nil
}

func (f *File) openCompressedStream() (io.ReadCloser, error) {
	if f.size < 4 {
		return nil, fmt.Errorf("%w: entry %s", ErrBadCompressedPayload, f.path)
	}

	frameLen := int64(8)
	if int64(f.size) < frameLen {
		frameLen = int64(f.size)
	}

	frame, err := f.source.ReadSpan(f.offset, frameLen)
	if err != nil {
		return nil, err
	}

	outLen := binary.LittleEndian.Uint32(frame)

	// Zstd frames decode in one shot; only lzss streams incrementally.
	if bytes.HasPrefix(frame[4:], zstdFrameMagic) {
		data, err := f.Data()
		if err != nil {
			return nil, err
		}

		return nopCloser{Reader: bytes.NewReader(data)}, nil
	}

	f.source.mu.Lock()
	closed := f.source.closed
	f.source.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	sr := io.NewSectionReader(f.source.ra, f.offset+4, int64(f.size-4))
	pr, pw := io.Pipe()
	go streamDecompressEntry(f.path, pw, sr, int(outLen))

	return pr, nil
}

// streamDecompressEntry decodes one lzss stream into the pipe writer.
func streamDecompressEntry(name string, dst *io.PipeWriter, src io.Reader, outLen int) {
	if _, err := lzss.DecompressToWriter(dst, src, outLen, nil); err != nil {
		_ = dst.CloseWithError(fmt.Errorf("decompress entry %s: %w", name, err))
		return
	}

	_ = dst.Close()
}
