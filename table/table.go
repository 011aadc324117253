// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package table

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/twmodding/pack/binio"
	"github.com/twmodding/pack/schema"
)

// Table is a decoded set of rows bound to one versioned definition. Rows
// are in processed (edited) form; the raw wire layout only exists during
// Decode and Encode.
type Table struct {
	def      *schema.Definition
	name     string
	uniqueID string
	rows     [][]Cell
}

// New returns an empty table for a definition, with a fresh unique id.
func New(def *schema.Definition, name string) *Table {
	return &Table{def: def, name: name, uniqueID: uuid.NewString()}
}

// Definition returns the definition the table was decoded with.
func (t *Table) Definition() *schema.Definition {
	return t.def
}

// Name returns the table name the definition was looked up under.
func (t *Table) Name() string {
	return t.name
}

// UniqueID returns the table's identity string, regenerated on each save
// of identity-carrying formats.
func (t *Table) UniqueID() string {
	return t.uniqueID
}

// Rows returns the row slice. Callers must not resize rows in place; use
// SetRows, InsertRow and RemoveRow so shape validation runs.
func (t *Table) Rows() [][]Cell {
	return t.rows
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// SetRows replaces all rows after validating each against the definition.
func (t *Table) SetRows(rows [][]Cell) error {
	for i, row := range rows {
		if err := t.checkRow(row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	t.rows = rows
	return nil
}

// InsertRow inserts a validated row at the given position. at equal to the
// row count appends.
func (t *Table) InsertRow(at int, row []Cell) error {
	if at < 0 || at > len(t.rows) {
		return fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, at, len(t.rows))
	}

	if err := t.checkRow(row); err != nil {
		return err
	}

	t.rows = append(t.rows, nil)
	copy(t.rows[at+1:], t.rows[at:])
	t.rows[at] = row
	return nil
}

// RemoveRow removes the row at the given position.
func (t *Table) RemoveRow(at int) error {
	if at < 0 || at >= len(t.rows) {
		return fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, at, len(t.rows))
	}

	t.rows = append(t.rows[:at], t.rows[at+1:]...)
	return nil
}

// checkRow validates arity and per-cell kinds against the processed fields.
func (t *Table) checkRow(row []Cell) error {
	processed := t.def.ProcessedFields()
	if len(row) != len(processed) {
		return &RowArityError{Want: len(processed), Got: len(row)}
	}

	for i, f := range processed {
		want := kindForField(f.Type)
		if f.Type.IsSequence() {
			want = KindSequence
		}

		if row[i].Kind() != want {
			return &FieldTypeError{Field: f.Name, Want: f.Type.String(), Got: row[i].Kind()}
		}
	}

	return nil
}

// NewRow builds a row of default cells for the definition: field defaults
// where declared, zero values otherwise.
func (t *Table) NewRow() []Cell {
	processed := t.def.ProcessedFields()
	row := make([]Cell, 0, len(processed))
	for i := range processed {
		row = append(row, defaultCell(&processed[i]))
	}

	return row
}

// defaultCell builds the default value for one processed column.
func defaultCell(f *schema.Field) Cell {
	d := f.DefaultValue
	switch f.Type {
	case schema.Boolean:
		v, _ := strconv.ParseBool(d)
		return BoolCell(v)
	case schema.I16, schema.I32, schema.I64, schema.OptionalI16, schema.OptionalI32, schema.OptionalI64:
		v, _ := strconv.ParseInt(d, 10, 64)
		return IntCell(kindForField(f.Type), v)
	case schema.F32, schema.F64:
		v, _ := strconv.ParseFloat(d, 64)
		return FloatCell(kindForField(f.Type), v)
	case schema.ColourRGB:
		if _, err := binio.ParseColourRGB(d); err != nil {
			d = "000000"
		}

		return ColourCell(d)
	case schema.SequenceU16, schema.SequenceU32:
		return SequenceCell(&Sequence{})
	default:
		return StringCell(kindForField(f.Type), d)
	}
}

// regenerateID gives the table a fresh identity string.
func (t *Table) regenerateID() {
	t.uniqueID = uuid.NewString()
}
