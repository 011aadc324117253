// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twmodding/pack/binio"
	"github.com/twmodding/pack/schema"
)

// EncodeRows writes rows back into their raw field layout, inverting every
// postprocessing step: booleans pack back into bit fields, enum strings map
// back to integers, merged colour cells decompose into their channel
// fields, and visible escapes become control characters again. Framing
// (entry counts, headers) is the caller's concern.
func EncodeRows(def *schema.Definition, w *binio.Writer, rows [][]Cell) error {
	processed := def.ProcessedFields()
	colourAt := mergedColourPositions(def)

	for i, row := range rows {
		if len(row) != len(processed) {
			return fmt.Errorf("row %d: %w", i+1, &RowArityError{Want: len(processed), Got: len(row)})
		}

		if err := encodeRow(def, w, row, colourAt); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return nil
}

// mergedColourPositions maps each colour group id to the processed column
// holding its merged cell.
func mergedColourPositions(def *schema.Definition) map[uint8]int {
	out := make(map[uint8]int)
	for _, f := range def.Fields {
		if f.ColourGroup == nil || !f.Type.IsNumeric() {
			continue
		}

		if _, ok := out[*f.ColourGroup]; ok {
			continue
		}

		_, merged := f.ColourChannel()
		if idx, ok := def.ColumnIndex(merged); ok {
			out[*f.ColourGroup] = idx
		}
	}

	return out
}

func encodeRow(def *schema.Definition, w *binio.Writer, row []Cell, colourAt map[uint8]int) error {
	col := 0
	for i := range def.Fields {
		f := &def.Fields[i]

		switch {
		case f.IsBitwise > 1 && f.Type.IsInteger():
			if col+f.IsBitwise > len(row) {
				return &RowArityError{Want: col + f.IsBitwise, Got: len(row)}
			}

			var packed int64
			for bit := 0; bit < f.IsBitwise; bit++ {
				cell := row[col+bit]
				if cell.Kind() != KindBool {
					return &FieldTypeError{Field: f.Name, Want: "Boolean", Got: cell.Kind()}
				}

				if cell.Bool() {
					packed |= 1 << bit
				}
			}

			writeInt(w, f.Type, packed)
			col += f.IsBitwise
		case len(f.EnumValues) > 0 && f.Type.IsInteger():
			if col >= len(row) {
				return &RowArityError{Want: col + 1, Got: len(row)}
			}

			value, err := enumToInt(f, row[col])
			if err != nil {
				return err
			}

			writeInt(w, f.Type, value)
			col++
		case f.ColourGroup != nil && f.Type.IsNumeric():
			idx, ok := colourAt[*f.ColourGroup]
			if !ok || idx >= len(row) {
				return &RowArityError{Want: idx + 1, Got: len(row)}
			}

			cell := row[idx]
			if cell.Kind() != KindColour {
				return &FieldTypeError{Field: f.Name, Want: "Colour", Got: cell.Kind()}
			}

			if err := encodeColourChannel(f, w, cell.Str()); err != nil {
				return err
			}
		default:
			if col >= len(row) {
				return &RowArityError{Want: col + 1, Got: len(row)}
			}

			if err := encodeField(f, w, row[col]); err != nil {
				return err
			}

			col++
		}
	}

	return nil
}

// enumToInt maps a display string back to its raw integer. Lookup is
// case-insensitive; unmatched strings fall back to numeric coercion, then
// to the field default, then fail loudly.
func enumToInt(f *schema.Field, cell Cell) (int64, error) {
	if !cell.Kind().IsString() {
		return 0, &FieldTypeError{Field: f.Name, Want: "StringU8", Got: cell.Kind()}
	}

	for raw, display := range f.EnumValues {
		if strings.EqualFold(display, cell.Str()) {
			return raw, nil
		}
	}

	if v, err := strconv.ParseInt(cell.Str(), 10, 64); err == nil {
		return v, nil
	}

	if v, err := strconv.ParseInt(f.DefaultValue, 10, 64); f.DefaultValue != "" && err == nil {
		return v, nil
	}

	return 0, fmt.Errorf("%w: field %s value %q", ErrNoEnumMatch, f.Name, cell.Str())
}

// encodeColourChannel extracts this field's channel from the merged hex
// value and writes it in the field's numeric wire type.
func encodeColourChannel(f *schema.Field, w *binio.Writer, hex string) error {
	v, err := binio.ParseColourRGB(hex)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}

	var channel uint8
	switch token, _ := f.ColourChannel(); token {
	case "r", "red":
		channel = uint8(v >> 16)
	case "g", "green":
		channel = uint8(v >> 8)
	case "b", "blue":
		channel = uint8(v)
	default:
		return fmt.Errorf("%w: field %s", ErrUnknownColourChannel, f.Name)
	}

	switch f.Type {
	case schema.F32:
		w.F32(float32(channel))
	case schema.F64:
		w.F64(float64(channel))
	default:
		writeInt(w, f.Type, int64(channel))
	}

	return nil
}

func writeInt(w *binio.Writer, t schema.FieldType, v int64) {
	switch t {
	case schema.I16:
		w.I16(int16(v))
	case schema.I32:
		w.I32(int32(v))
	case schema.I64:
		w.I64(v)
	case schema.OptionalI16:
		w.OptionalI16(int16(v))
	case schema.OptionalI32:
		w.OptionalI32(int32(v))
	case schema.OptionalI64:
		w.OptionalI64(v)
	}
}

// encodeField writes one plain field value, checking the cell kind against
// the column type.
func encodeField(f *schema.Field, w *binio.Writer, cell Cell) error {
	want := kindForField(f.Type)
	if f.Type.IsSequence() {
		want = KindSequence
	}

	if cell.Kind() != want {
		return &FieldTypeError{Field: f.Name, Want: f.Type.String(), Got: cell.Kind()}
	}

	switch f.Type {
	case schema.Boolean:
		w.Bool(cell.Bool())
	case schema.I16, schema.I32, schema.I64, schema.OptionalI16, schema.OptionalI32, schema.OptionalI64:
		writeInt(w, f.Type, cell.Int())
	case schema.F32:
		w.F32(float32(cell.Float()))
	case schema.F64:
		w.F64(cell.Float())
	case schema.ColourRGB:
		if err := w.ColourRGB(cell.Str()); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	case schema.StringU8:
		return wrapField(f, w.StringU8(unescapeText(cell.Str())))
	case schema.StringU16:
		return wrapField(f, w.StringU16(unescapeText(cell.Str())))
	case schema.OptionalStringU8:
		return wrapField(f, w.OptionalStringU8(unescapeText(cell.Str())))
	case schema.OptionalStringU16:
		return wrapField(f, w.OptionalStringU16(unescapeText(cell.Str())))
	case schema.SequenceU16, schema.SequenceU32:
		return encodeSequence(f, w, cell.Seq())
	default:
		return fmt.Errorf("field %s: %w", f.Name, schema.ErrUnknownFieldType)
	}

	return nil
}

// encodeSequence writes the retained byte span verbatim when present, or
// re-runs the nested codec over the rows.
func encodeSequence(f *schema.Field, w *binio.Writer, seq *Sequence) error {
	if seq == nil {
		seq = &Sequence{}
	}

	if seq.Raw != nil {
		w.Raw(seq.Raw)
		return nil
	}

	if f.Type == schema.SequenceU16 {
		if len(seq.Rows) > math.MaxUint16 {
			return fmt.Errorf("field %s: %d rows exceed u16 count", f.Name, len(seq.Rows))
		}

		w.U16(uint16(len(seq.Rows)))
	} else {
		w.U32(uint32(len(seq.Rows)))
	}

	if err := EncodeRows(f.Sequence, w, seq.Rows); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}

	return nil
}

func wrapField(f *schema.Field, err error) error {
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}

	return nil
}
