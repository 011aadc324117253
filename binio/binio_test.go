package binio

import (
	"bytes"
	"errors"
	"testing"
)

// TestReader_Primitives verifies typed reads against hand-built buffers.
func TestReader_Primitives(t *testing.T) {
	r := NewReader([]byte{
		0x01,                   // bool
		0x2A,                   // u8
		0x34, 0x12,             // u16
		0x78, 0x56, 0x34, 0x12, // u32
		0xFF, 0xFF, // i16 -1
		0x00, 0x00, 0x80, 0x3F, // f32 1.0
	})

	b, err := r.Bool()
	if err != nil || !b {
		t.Fatalf("Bool: %v %v", b, err)
	}

	u8, err := r.U8()
	if err != nil || u8 != 0x2A {
		t.Fatalf("U8: %v %v", u8, err)
	}

	u16, err := r.U16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("U16: %v %v", u16, err)
	}

	u32, err := r.U32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("U32: %v %v", u32, err)
	}

	i16, err := r.I16()
	if err != nil || i16 != -1 {
		t.Fatalf("I16: %v %v", i16, err)
	}

	f32, err := r.F32()
	if err != nil || f32 != 1.0 {
		t.Fatalf("F32: %v %v", f32, err)
	}

	if r.Remaining() != 0 {
		t.Fatalf("Remaining: %d", r.Remaining())
	}
}

// TestReader_ShortBuffer verifies reads past the end fail with ErrShortBuffer.
func TestReader_ShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.U32(); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}

	// A failed read must not move the cursor.
	if r.Pos() != 0 {
		t.Fatalf("cursor moved on failed read: %d", r.Pos())
	}
}

// TestReader_InvalidBool verifies non-0/1 boolean bytes are rejected.
func TestReader_InvalidBool(t *testing.T) {
	r := NewReader([]byte{0x04})
	if _, err := r.Bool(); !errors.Is(err, ErrInvalidBool) {
		t.Fatalf("expected ErrInvalidBool, got %v", err)
	}
}

// TestStrings_RoundTrip verifies the string encodings against their readers.
func TestStrings_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{"ascii", "land_units"},
		{"empty", ""},
		{"utf8", "unités_terrestres"},
		{"wide", "部隊"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter()
			if err := w.StringU8(tc.value); err != nil {
				t.Fatal(err)
			}
			if err := w.StringU16(tc.value); err != nil {
				t.Fatal(err)
			}
			w.CString(tc.value)

			r := NewReader(w.Bytes())
			u8, err := r.StringU8()
			if err != nil || u8 != tc.value {
				t.Fatalf("StringU8: %q %v", u8, err)
			}

			u16, err := r.StringU16()
			if err != nil || u16 != tc.value {
				t.Fatalf("StringU16: %q %v", u16, err)
			}

			c, err := r.CString()
			if err != nil || c != tc.value {
				t.Fatalf("CString: %q %v", c, err)
			}
		})
	}
}

// TestOptionals_RoundTrip verifies presence-byte encodings. Writers always
// set the presence byte: zero and empty are valid present values.
func TestOptionals_RoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.OptionalStringU8("present"); err != nil {
		t.Fatal(err)
	}
	if err := w.OptionalStringU8(""); err != nil {
		t.Fatal(err)
	}
	w.OptionalI32(42)
	w.OptionalI32(0)

	r := NewReader(w.Bytes())
	s, err := r.OptionalStringU8()
	if err != nil || s != "present" {
		t.Fatalf("present string: %q %v", s, err)
	}

	s, err = r.OptionalStringU8()
	if err != nil || s != "" {
		t.Fatalf("present empty string: %q %v", s, err)
	}

	v, err := r.OptionalI32()
	if err != nil || v != 42 {
		t.Fatalf("present i32: %d %v", v, err)
	}

	v, err = r.OptionalI32()
	if err != nil || v != 0 {
		t.Fatalf("present zero i32: %d %v", v, err)
	}
}

// TestOptionals_PresentZero verifies present zero/empty wire values survive
// a read-write cycle byte-exact.
func TestOptionals_PresentZero(t *testing.T) {
	wire := NewWriter()
	wire.Bool(true)
	wire.U16(0) // empty string body
	wire.Bool(true)
	wire.I32(0)

	r := NewReader(wire.Bytes())
	s, err := r.OptionalStringU8()
	if err != nil || s != "" {
		t.Fatalf("string: %q %v", s, err)
	}
	v, err := r.OptionalI32()
	if err != nil || v != 0 {
		t.Fatalf("i32: %d %v", v, err)
	}

	out := NewWriter()
	if err := out.OptionalStringU8(s); err != nil {
		t.Fatal(err)
	}
	out.OptionalI32(v)

	if !bytes.Equal(out.Bytes(), wire.Bytes()) {
		t.Fatalf("re-encode: % x vs % x", out.Bytes(), wire.Bytes())
	}
}

// TestOptionals_Absent verifies a clear presence byte decodes to the zero
// value.
func TestOptionals_Absent(t *testing.T) {
	r := NewReader([]byte{0, 0})
	s, err := r.OptionalStringU8()
	if err != nil || s != "" {
		t.Fatalf("string: %q %v", s, err)
	}
	v, err := r.OptionalI64()
	if err != nil || v != 0 {
		t.Fatalf("i64: %d %v", v, err)
	}
}

// TestCString_Unterminated verifies missing NUL terminator is an error.
func TestCString_Unterminated(t *testing.T) {
	r := NewReader([]byte("no terminator"))
	if _, err := r.CString(); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

// TestPaddedString_RoundTrip verifies fixed-width padded fields.
func TestPaddedString_RoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.PaddedString("MFH", 8); err != nil {
		t.Fatal(err)
	}

	if got := w.Bytes(); !bytes.Equal(got, []byte{'M', 'F', 'H', 0, 0, 0, 0, 0}) {
		t.Fatalf("padded bytes: %v", got)
	}

	r := NewReader(w.Bytes())
	s, err := r.PaddedString(8)
	if err != nil || s != "MFH" {
		t.Fatalf("PaddedString: %q %v", s, err)
	}

	if err := w.PaddedString("way too long for it", 8); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
}

// TestColourRGB_RoundTrip verifies hex colour encoding against the reader.
func TestColourRGB_RoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.ColourRGB("123456"); err != nil {
		t.Fatal(err)
	}

	// Stored little-endian: BB GG RR 00.
	if got := w.Bytes(); !bytes.Equal(got, []byte{0x56, 0x34, 0x12, 0x00}) {
		t.Fatalf("colour bytes: %v", got)
	}

	r := NewReader(w.Bytes())
	hex, err := r.ColourRGB()
	if err != nil || hex != "123456" {
		t.Fatalf("ColourRGB: %q %v", hex, err)
	}

	if err := w.ColourRGB("nothex"); !errors.Is(err, ErrInvalidColour) {
		t.Fatalf("expected ErrInvalidColour, got %v", err)
	}
}
