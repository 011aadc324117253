// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package binio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
)

// Writer is an append-only little-endian byte buffer, the encode counterpart
// of Reader.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewWriterSize returns a Writer with preallocated capacity.
func NewWriterSize(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the accumulated buffer. The slice aliases internal storage.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Raw appends raw bytes unchanged.
func (w *Writer) Raw(data []byte) {
	w.buf = append(w.buf, data...)
}

// Bool writes one byte: 1 for true, 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// U8 writes one unsigned byte.
func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// U32 writes a little-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// U64 writes a little-endian uint64.
func (w *Writer) U64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// I16 writes a little-endian int16.
func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

// I32 writes a little-endian int32.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// I64 writes a little-endian int64.
func (w *Writer) I64(v int64) {
	w.U64(uint64(v))
}

// F32 writes a little-endian IEEE 754 float32.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// F64 writes a little-endian IEEE 754 float64.
func (w *Writer) F64(v float64) {
	w.U64(math.Float64bits(v))
}

// StringU8 writes a u16 length prefix followed by the UTF-8 bytes.
func (w *Writer) StringU8(v string) error {
	if len(v) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(v))
	}

	w.U16(uint16(len(v)))
	w.buf = append(w.buf, v...)
	return nil
}

// StringU16 writes a u16 code-unit count followed by UTF-16LE units.
func (w *Writer) StringU16(v string) error {
	units := utf16.Encode([]rune(v))
	if len(units) > math.MaxUint16 {
		return fmt.Errorf("%w: %d code units", ErrStringTooLong, len(units))
	}

	w.U16(uint16(len(units)))
	for _, unit := range units {
		w.U16(unit)
	}

	return nil
}

// Optional writers always emit presence=1 followed by the value; zero and
// empty are valid present values, so presence cannot be derived from them.

// OptionalStringU8 writes a set presence byte and the string.
func (w *Writer) OptionalStringU8(v string) error {
	w.Bool(true)
	return w.StringU8(v)
}

// OptionalStringU16 writes a set presence byte and the string.
func (w *Writer) OptionalStringU16(v string) error {
	w.Bool(true)
	return w.StringU16(v)
}

// OptionalI16 writes a set presence byte and the value.
func (w *Writer) OptionalI16(v int16) {
	w.Bool(true)
	w.I16(v)
}

// OptionalI32 writes a set presence byte and the value.
func (w *Writer) OptionalI32(v int32) {
	w.Bool(true)
	w.I32(v)
}

// OptionalI64 writes a set presence byte and the value.
func (w *Writer) OptionalI64(v int64) {
	w.Bool(true)
	w.I64(v)
}

// CString writes the text followed by a NUL terminator.
func (w *Writer) CString(v string) {
	w.buf = append(w.buf, v...)
	w.buf = append(w.buf, 0)
}

// PaddedString writes the text into a fixed-width field, padding with NUL
// bytes. Text longer than the field is an error.
func (w *Writer) PaddedString(v string, width int) error {
	if len(v) > width {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrStringTooLong, v, width)
	}

	w.buf = append(w.buf, v...)
	for i := len(v); i < width; i++ {
		w.buf = append(w.buf, 0)
	}

	return nil
}

// ColourRGB parses a RRGGBB hex string and writes it as a u32 colour value.
func (w *Writer) ColourRGB(hex string) error {
	v, err := ParseColourRGB(hex)
	if err != nil {
		return err
	}

	w.U32(v)
	return nil
}

// ParseColourRGB parses a RRGGBB (or shorter) hex string into a u32 colour.
func ParseColourRGB(hex string) (uint32, error) {
	if len(hex) == 0 || len(hex) > 6 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColour, hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColour, hex)
	}

	return uint32(v), nil
}
