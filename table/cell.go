// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

// Package table implements the schema-driven record codec: decoding raw
// table payloads into typed rows, postprocessing them into their edited
// form, and encoding them back byte-exact.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twmodding/pack/schema"
)

// Kind enumerates the value shapes a Cell can hold after postprocessing.
type Kind uint8

// Cell kinds. Enum fields and split colour channels never appear here;
// postprocessing replaces them with KindString and KindColour cells.
const (
	KindBool Kind = iota
	KindI16
	KindI32
	KindI64
	KindOptionalI16
	KindOptionalI32
	KindOptionalI64
	KindF32
	KindF64
	KindColour
	KindStringU8
	KindStringU16
	KindOptionalStringU8
	KindOptionalStringU16
	KindSequence
)

// kindNames maps kinds to display names for errors.
var kindNames = map[Kind]string{
	KindBool:              "Bool",
	KindI16:               "I16",
	KindI32:               "I32",
	KindI64:               "I64",
	KindOptionalI16:       "OptionalI16",
	KindOptionalI32:       "OptionalI32",
	KindOptionalI64:       "OptionalI64",
	KindF32:               "F32",
	KindF64:               "F64",
	KindColour:            "Colour",
	KindStringU8:          "StringU8",
	KindStringU16:         "StringU16",
	KindOptionalStringU8:  "OptionalStringU8",
	KindOptionalStringU16: "OptionalStringU16",
	KindSequence:          "Sequence",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsInteger reports whether the kind holds an integer value.
func (k Kind) IsInteger() bool {
	switch k {
	case KindI16, KindI32, KindI64, KindOptionalI16, KindOptionalI32, KindOptionalI64:
		return true
	default:
		return false
	}
}

// IsString reports whether the kind holds a text value.
func (k Kind) IsString() bool {
	switch k {
	case KindStringU8, KindStringU16, KindOptionalStringU8, KindOptionalStringU16:
		return true
	default:
		return false
	}
}

// Sequence is a nested table held inside a cell. Raw is the exact byte span
// the sequence was decoded from, count prefix included; it is written back
// verbatim on encode until the rows are replaced.
type Sequence struct {
	Raw  []byte
	Rows [][]Cell
}

// Cell is a single typed table value. The zero Cell is a false boolean.
type Cell struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  *Sequence
}

// BoolCell returns a boolean cell.
func BoolCell(v bool) Cell {
	return Cell{kind: KindBool, b: v}
}

// IntCell returns an integer cell of the given integer kind.
func IntCell(k Kind, v int64) Cell {
	return Cell{kind: k, i: v}
}

// FloatCell returns a float cell of kind KindF32 or KindF64. Values stored
// as KindF32 are truncated to float32 precision so equality checks match
// what the wire form can hold.
func FloatCell(k Kind, v float64) Cell {
	if k == KindF32 {
		v = float64(float32(v))
	}

	return Cell{kind: k, f: v}
}

// StringCell returns a text cell of the given string kind.
func StringCell(k Kind, v string) Cell {
	return Cell{kind: k, s: v}
}

// ColourCell returns a merged colour cell holding a RRGGBB hex value.
func ColourCell(hex string) Cell {
	return Cell{kind: KindColour, s: strings.ToUpper(hex)}
}

// SequenceCell returns a nested-table cell.
func SequenceCell(seq *Sequence) Cell {
	return Cell{kind: KindSequence, seq: seq}
}

// Kind returns the cell's value shape.
func (c Cell) Kind() Kind {
	return c.kind
}

// Bool returns the boolean value. Meaningful only for KindBool cells.
func (c Cell) Bool() bool {
	return c.b
}

// Int returns the integer value. Meaningful only for integer kinds.
func (c Cell) Int() int64 {
	return c.i
}

// Float returns the float value. Meaningful only for float kinds.
func (c Cell) Float() float64 {
	return c.f
}

// Str returns the text value. Meaningful for string and colour kinds.
func (c Cell) Str() string {
	return c.s
}

// Seq returns the nested table. Meaningful only for KindSequence cells.
func (c Cell) Seq() *Sequence {
	return c.seq
}

// floatTolerance is the absolute difference under which two floats compare
// equal, matching the precision the table editors display.
const floatTolerance = 0.001

// Equal reports whether two cells hold the same value. Floats compare with
// an absolute tolerance, colour hex compares case-insensitively, and
// sequences compare by rows.
func (c Cell) Equal(other Cell) bool {
	if c.kind != other.kind {
		return false
	}

	switch {
	case c.kind == KindBool:
		return c.b == other.b
	case c.kind.IsInteger():
		return c.i == other.i
	case c.kind == KindF32 || c.kind == KindF64:
		return math.Abs(c.f-other.f) <= floatTolerance
	case c.kind == KindColour:
		return strings.EqualFold(c.s, other.s)
	case c.kind.IsString():
		return c.s == other.s
	case c.kind == KindSequence:
		return c.seq.equal(other.seq)
	default:
		return false
	}
}

func (s *Sequence) equal(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.Rows) != len(other.Rows) {
		return false
	}

	for i, row := range s.Rows {
		if len(row) != len(other.Rows[i]) {
			return false
		}

		for j, cell := range row {
			if !cell.Equal(other.Rows[i][j]) {
				return false
			}
		}
	}

	return true
}

// Display returns the human-readable form of the cell value.
func (c Cell) Display() string {
	switch {
	case c.kind == KindBool:
		return strconv.FormatBool(c.b)
	case c.kind.IsInteger():
		return strconv.FormatInt(c.i, 10)
	case c.kind == KindF32 || c.kind == KindF64:
		return strconv.FormatFloat(c.f, 'f', 4, 64)
	case c.kind == KindSequence:
		return fmt.Sprintf("<%d rows>", len(c.seq.Rows))
	default:
		return c.s
	}
}

// kindForField maps a processed schema field type to the cell kind that
// holds its decoded value.
func kindForField(t schema.FieldType) Kind {
	switch t {
	case schema.Boolean:
		return KindBool
	case schema.I16:
		return KindI16
	case schema.I32:
		return KindI32
	case schema.I64:
		return KindI64
	case schema.OptionalI16:
		return KindOptionalI16
	case schema.OptionalI32:
		return KindOptionalI32
	case schema.OptionalI64:
		return KindOptionalI64
	case schema.F32:
		return KindF32
	case schema.F64:
		return KindF64
	case schema.ColourRGB:
		return KindColour
	case schema.StringU8:
		return KindStringU8
	case schema.StringU16:
		return KindStringU16
	case schema.OptionalStringU8:
		return KindOptionalStringU8
	case schema.OptionalStringU16:
		return KindOptionalStringU16
	default:
		return KindSequence
	}
}

// escapeText converts stored control characters into their visible escape
// form for editing.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\n", `\\n`)
	return strings.ReplaceAll(s, "\t", `\\t`)
}

// unescapeText converts visible escapes back into control characters for
// the wire form.
func unescapeText(s string) string {
	s = strings.ReplaceAll(s, `\\n`, "\n")
	return strings.ReplaceAll(s, `\\t`, "\t")
}
