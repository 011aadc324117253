// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package table

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/twmodding/pack/binio"
	"github.com/twmodding/pack/schema"
)

// DecodeOptions controls row decoding behaviour.
type DecodeOptions struct {
	// ReturnIncompleteRow keeps the cells decoded before the failure as a
	// short final row instead of returning the error. Used by recovery
	// tooling on truncated payloads.
	ReturnIncompleteRow bool
}

// DecodeRows decodes count rows from the reader using the definition's raw
// field layout, applying postprocessing to each row. The caller supplies
// the count because framing differs between table kinds.
func DecodeRows(def *schema.Definition, r *binio.Reader, count int, opts DecodeOptions) ([][]Cell, error) {
	rows := make([][]Cell, 0, count)
	for i := 0; i < count; i++ {
		row, err := decodeRow(def, r, i)
		if err != nil {
			if opts.ReturnIncompleteRow {
				rows = append(rows, row)
				return rows, nil
			}

			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// decodeRow decodes one row and postprocesses it into its edited form:
// bit-packed integers explode into booleans, enum integers become their
// display strings, split colour channels collapse into merged hex cells,
// and control characters in strings become visible escapes. On failure the
// cells decoded so far are returned alongside the error.
func decodeRow(def *schema.Definition, r *binio.Reader, rowIdx int) ([]Cell, error) {
	row := make([]Cell, 0, len(def.Fields))
	colours := make(map[uint8]*[3]uint8)

	for col := range def.Fields {
		f := &def.Fields[col]
		cell, err := decodeField(f, r)
		if err != nil {
			return row, &FieldDecodeError{
				Row:      rowIdx + 1,
				Column:   col + 1,
				Expected: f.Type.String(),
				Err:      err,
			}
		}

		switch {
		case f.IsBitwise > 1 && f.Type.IsInteger():
			for bit := 0; bit < f.IsBitwise; bit++ {
				row = append(row, BoolCell(cell.Int()&(1<<bit) != 0))
			}
		case len(f.EnumValues) > 0 && f.Type.IsInteger():
			display, ok := f.EnumValues[cell.Int()]
			if !ok {
				display = strconv.FormatInt(cell.Int(), 10)
			}

			row = append(row, StringCell(KindStringU8, display))
		case f.ColourGroup != nil && f.Type.IsNumeric():
			group := colours[*f.ColourGroup]
			if group == nil {
				group = new([3]uint8)
				colours[*f.ColourGroup] = group
			}

			channel, _ := f.ColourChannel()
			value := cell.Int()
			if f.Type == schema.F32 || f.Type == schema.F64 {
				value = int64(cell.Float())
			}

			switch channel {
			case "r", "red":
				group[0] = uint8(value)
			case "g", "green":
				group[1] = uint8(value)
			case "b", "blue":
				group[2] = uint8(value)
			default:
				return row, &FieldDecodeError{
					Row:      rowIdx + 1,
					Column:   col + 1,
					Expected: f.Type.String(),
					Err:      fmt.Errorf("%w: field %s", ErrUnknownColourChannel, f.Name),
				}
			}
		case cell.Kind().IsString():
			row = append(row, StringCell(cell.Kind(), escapeText(cell.Str())))
		default:
			row = append(row, cell)
		}
	}

	ids := make([]int, 0, len(colours))
	for id := range colours {
		ids = append(ids, int(id))
	}

	sort.Ints(ids)
	for _, id := range ids {
		group := colours[uint8(id)]
		hex := strconv.FormatUint(uint64(group[0])<<16|uint64(group[1])<<8|uint64(group[2]), 16)
		for len(hex) < 6 {
			hex = "0" + hex
		}

		row = append(row, ColourCell(hex))
	}

	return row, nil
}

// decodeField reads one raw field value. Sequences recurse with strict
// decoding and keep their exact byte span, count prefix included.
func decodeField(f *schema.Field, r *binio.Reader) (Cell, error) {
	switch f.Type {
	case schema.Boolean:
		v, err := r.Bool()
		return BoolCell(v), err
	case schema.I16:
		v, err := r.I16()
		return IntCell(KindI16, int64(v)), err
	case schema.I32:
		v, err := r.I32()
		return IntCell(KindI32, int64(v)), err
	case schema.I64:
		v, err := r.I64()
		return IntCell(KindI64, v), err
	case schema.OptionalI16:
		v, err := r.OptionalI16()
		return IntCell(KindOptionalI16, int64(v)), err
	case schema.OptionalI32:
		v, err := r.OptionalI32()
		return IntCell(KindOptionalI32, int64(v)), err
	case schema.OptionalI64:
		v, err := r.OptionalI64()
		return IntCell(KindOptionalI64, v), err
	case schema.F32:
		v, err := r.F32()
		return FloatCell(KindF32, float64(v)), err
	case schema.F64:
		v, err := r.F64()
		return FloatCell(KindF64, v), err
	case schema.ColourRGB:
		v, err := r.ColourRGB()
		return ColourCell(v), err
	case schema.StringU8:
		v, err := r.StringU8()
		return StringCell(KindStringU8, v), err
	case schema.StringU16:
		v, err := r.StringU16()
		return StringCell(KindStringU16, v), err
	case schema.OptionalStringU8:
		v, err := r.OptionalStringU8()
		return StringCell(KindOptionalStringU8, v), err
	case schema.OptionalStringU16:
		v, err := r.OptionalStringU16()
		return StringCell(KindOptionalStringU16, v), err
	case schema.SequenceU16, schema.SequenceU32:
		return decodeSequence(f, r)
	default:
		return Cell{}, schema.ErrUnknownFieldType
	}
}

func decodeSequence(f *schema.Field, r *binio.Reader) (Cell, error) {
	start := r.Pos()

	var count int
	if f.Type == schema.SequenceU16 {
		n, err := r.U16()
		if err != nil {
			return Cell{}, err
		}
		count = int(n)
	} else {
		n, err := r.U32()
		if err != nil {
			return Cell{}, err
		}
		count = int(n)
	}

	rows, err := DecodeRows(f.Sequence, r, count, DecodeOptions{})
	if err != nil {
		return Cell{}, err
	}

	raw, err := r.Span(start, r.Pos())
	if err != nil {
		return Cell{}, err
	}

	return SequenceCell(&Sequence{Raw: raw, Rows: rows}), nil
}
