// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

// Package binio implements bounds-checked typed reads and writes over byte
// buffers, in the little-endian wire conventions used by the pack container
// and the record formats stored inside it.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// Sentinel errors for typed buffer access. Use errors.Is in callers.
var (
	// ErrShortBuffer means a read went past the end of the buffer.
	ErrShortBuffer = errors.New("read past end of buffer")
	// ErrInvalidBool means a boolean byte held something other than 0 or 1.
	ErrInvalidBool = errors.New("invalid boolean byte")
	// ErrInvalidString means string bytes did not decode as valid text.
	ErrInvalidString = errors.New("invalid string bytes")
	// ErrStringTooLong means a string does not fit its length prefix type.
	ErrStringTooLong = errors.New("string exceeds length prefix range")
	// ErrInvalidColour means a colour value is not a RRGGBB hex string.
	ErrInvalidColour = errors.New("invalid RRGGBB colour value")
	// ErrInvalidSeek means a cursor reposition target is out of range.
	ErrInvalidSeek = errors.New("seek position out of range")
)

// Reader is a sequential bounds-checked cursor over a byte slice.
// All multi-byte reads are little-endian.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total buffer length in bytes.
func (r *Reader) Len() int {
	return len(r.data)
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// SetPos repositions the cursor to an absolute offset.
func (r *Reader) SetPos(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidSeek, pos, len(r.data))
	}

	r.pos = pos
	return nil
}

// Slice consumes and returns the next n bytes. The returned slice aliases
// the underlying buffer.
func (r *Reader) Slice(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrShortBuffer, n, r.pos, len(r.data))
	}

	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// Span returns the bytes between two absolute offsets without moving the
// cursor. The returned slice aliases the underlying buffer.
func (r *Reader) Span(from, to int) ([]byte, error) {
	if from < 0 || to < from || to > len(r.data) {
		return nil, fmt.Errorf("%w: span [%d:%d] of %d", ErrShortBuffer, from, to, len(r.data))
	}

	return r.data[from:to], nil
}

// Bool reads one byte and interprets 0/1 as false/true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.U8()
	if err != nil {
		return false, err
	}

	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02X at offset %d", ErrInvalidBool, b, r.pos-1)
	}
}

// U8 reads one unsigned byte.
func (r *Reader) U8() (uint8, error) {
	raw, err := r.Slice(1)
	if err != nil {
		return 0, err
	}

	return raw[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	raw, err := r.Slice(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(raw), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	raw, err := r.Slice(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(raw), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	raw, err := r.Slice(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(raw), nil
}

// I16 reads a little-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// I64 reads a little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// F32 reads a little-endian IEEE 754 float32.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// F64 reads a little-endian IEEE 754 float64.
func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}

// StringU8 reads a u16 length prefix followed by that many UTF-8 bytes.
func (r *Reader) StringU8() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}

	raw, err := r.Slice(int(n))
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// StringU16 reads a u16 code-unit count followed by that many UTF-16LE units.
func (r *Reader) StringU16() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}

	raw, err := r.Slice(int(n) * 2)
	if err != nil {
		return "", err
	}

	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}

	return string(utf16.Decode(units)), nil
}

// OptionalStringU8 reads a presence byte and, when set, a StringU8 value.
// Absent values decode as the empty string.
func (r *Reader) OptionalStringU8() (string, error) {
	present, err := r.Bool()
	if err != nil {
		return "", err
	}

	if !present {
		return "", nil
	}

	return r.StringU8()
}

// OptionalStringU16 reads a presence byte and, when set, a StringU16 value.
func (r *Reader) OptionalStringU16() (string, error) {
	present, err := r.Bool()
	if err != nil {
		return "", err
	}

	if !present {
		return "", nil
	}

	return r.StringU16()
}

// OptionalI16 reads a presence byte and, when set, an int16. Absent decodes as 0.
func (r *Reader) OptionalI16() (int16, error) {
	present, err := r.Bool()
	if err != nil {
		return 0, err
	}

	if !present {
		return 0, nil
	}

	return r.I16()
}

// OptionalI32 reads a presence byte and, when set, an int32.
func (r *Reader) OptionalI32() (int32, error) {
	present, err := r.Bool()
	if err != nil {
		return 0, err
	}

	if !present {
		return 0, nil
	}

	return r.I32()
}

// OptionalI64 reads a presence byte and, when set, an int64.
func (r *Reader) OptionalI64() (int64, error) {
	present, err := r.Bool()
	if err != nil {
		return 0, err
	}

	if !present {
		return 0, nil
	}

	return r.I64()
}

// CString reads bytes up to and including a NUL terminator and returns the
// text before it.
func (r *Reader) CString() (string, error) {
	start := r.pos
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			out := string(r.data[start:i])
			r.pos = i + 1
			return out, nil
		}
	}

	return "", fmt.Errorf("%w: unterminated string at offset %d", ErrShortBuffer, start)
}

// PaddedString reads a fixed-width field and strips trailing NUL and space
// padding.
func (r *Reader) PaddedString(width int) (string, error) {
	raw, err := r.Slice(width)
	if err != nil {
		return "", err
	}

	end := len(raw)
	for end > 0 && (raw[end-1] == 0 || raw[end-1] == ' ') {
		end--
	}

	return string(raw[:end]), nil
}

// ColourRGB reads a u32 colour value and returns its RRGGBB hex form.
func (r *Reader) ColourRGB() (string, error) {
	v, err := r.U32()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06X", v&0x00FFFFFF), nil
}
