// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

// Package schema models the versioned field definitions that drive the
// record codec. A Definition is an ordered field list; field order is the
// byte layout, field names are tooling metadata only.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for schema lookups. Use errors.Is in callers.
var (
	// ErrUnknownTable means the schema holds no definitions for the table name.
	ErrUnknownTable = errors.New("no definitions for table")
	// ErrUnknownVersion means no definition exists for the requested version.
	ErrUnknownVersion = errors.New("no definition for version")
	// ErrUnknownFieldType means a field type name did not parse.
	ErrUnknownFieldType = errors.New("unknown field type")
)

// FieldType enumerates the primitive wire types a field can hold.
type FieldType uint8

// Field wire types. Sequence types carry their own nested Definition.
const (
	Boolean FieldType = iota
	F32
	F64
	I16
	I32
	I64
	OptionalI16
	OptionalI32
	OptionalI64
	ColourRGB
	StringU8
	StringU16
	OptionalStringU8
	OptionalStringU16
	SequenceU16
	SequenceU32
)

// fieldTypeNames maps types to their canonical schema-file spelling.
var fieldTypeNames = map[FieldType]string{
	Boolean:           "Boolean",
	F32:               "F32",
	F64:               "F64",
	I16:               "I16",
	I32:               "I32",
	I64:               "I64",
	OptionalI16:       "OptionalI16",
	OptionalI32:       "OptionalI32",
	OptionalI64:       "OptionalI64",
	ColourRGB:         "ColourRGB",
	StringU8:          "StringU8",
	StringU16:         "StringU16",
	OptionalStringU8:  "OptionalStringU8",
	OptionalStringU16: "OptionalStringU16",
	SequenceU16:       "SequenceU16",
	SequenceU32:       "SequenceU32",
}

// String returns the canonical name of the field type.
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

// ParseFieldType resolves a canonical field type name.
func ParseFieldType(name string) (FieldType, error) {
	for t, n := range fieldTypeNames {
		if n == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFieldType, name)
}

// IsInteger reports whether the type is a plain signed integer.
func (t FieldType) IsInteger() bool {
	switch t {
	case I16, I32, I64, OptionalI16, OptionalI32, OptionalI64:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the type is an integer or a float.
func (t FieldType) IsNumeric() bool {
	return t.IsInteger() || t == F32 || t == F64
}

// IsString reports whether the type decodes to text.
func (t FieldType) IsString() bool {
	switch t {
	case StringU8, StringU16, OptionalStringU8, OptionalStringU16:
		return true
	default:
		return false
	}
}

// IsSequence reports whether the type is a nested row sequence.
func (t FieldType) IsSequence() bool {
	return t == SequenceU16 || t == SequenceU32
}

// Field describes one column of a Definition.
type Field struct {
	// Name is the column name used by tooling; it never affects byte layout.
	Name string
	// Type is the primitive wire type.
	Type FieldType
	// Sequence is the nested definition for sequence-typed fields.
	Sequence *Definition
	// EnumValues maps raw integer values to display strings.
	EnumValues map[int64]string
	// DefaultValue is the textual default for new rows and encode fallback.
	DefaultValue string
	// ColourGroup tags the field as a channel of a split colour group.
	ColourGroup *uint8
	// IsBitwise is the packed boolean count; values above 1 explode the
	// integer into that many synthetic boolean columns.
	IsBitwise int
	// IsKey marks the field as part of the table key.
	IsKey bool
}

// ColourChannel returns the colour channel token derived from the field name
// (the lowercased part after the last underscore) and the merged column name
// the channel contributes to.
func (f *Field) ColourChannel() (channel, mergedName string) {
	name := strings.ToLower(f.Name)
	if idx := strings.LastIndex(name, "_"); idx >= 0 {
		return name[idx+1:], name[:idx] + MergedColourSuffix
	}

	return name, MergedColourFallback
}

// Merged colour column naming.
const (
	// MergedColourSuffix is appended to the channel fields' shared prefix.
	MergedColourSuffix = "_colour"
	// MergedColourFallback names the merged column when channels have no prefix.
	MergedColourFallback = "colour"
)

// Definition is a versioned ordered field list.
type Definition struct {
	// Fields in declaration order; this order is the decode/encode order.
	Fields []Field
	// Version is the schema version this layout belongs to.
	Version int32
}

// ProcessedFields returns the field list after postprocessing expansion:
// bit-packed integers become N boolean columns, enum integers become string
// columns, split colour channels are removed and replaced by one merged
// ColourRGB column per group (appended in ascending group order).
func (d *Definition) ProcessedFields() []Field {
	out := make([]Field, 0, len(d.Fields))
	type colourGroup struct {
		id   uint8
		name string
	}
	var groups []colourGroup

	for _, f := range d.Fields {
		switch {
		case f.IsBitwise > 1 && f.Type.IsInteger():
			for bit := 0; bit < f.IsBitwise; bit++ {
				out = append(out, Field{
					Name:  fmt.Sprintf("%s_%d", f.Name, bit),
					Type:  Boolean,
					IsKey: f.IsKey,
				})
			}
		case len(f.EnumValues) > 0 && f.Type.IsInteger():
			enum := f
			enum.Type = StringU8
			out = append(out, enum)
		case f.ColourGroup != nil && f.Type.IsNumeric():
			_, merged := f.ColourChannel()
			id := *f.ColourGroup
			known := false
			for _, g := range groups {
				if g.id == id {
					known = true
					break
				}
			}
			if !known {
				groups = append(groups, colourGroup{id: id, name: merged})
			}
		default:
			out = append(out, f)
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].id < groups[j].id })
	for _, g := range groups {
		out = append(out, Field{Name: g.name, Type: ColourRGB})
	}

	return out
}

// ColumnIndex returns the position of a named column in the processed field
// list.
func (d *Definition) ColumnIndex(name string) (int, bool) {
	for i, f := range d.ProcessedFields() {
		if f.Name == name {
			return i, true
		}
	}

	return 0, false
}

// Schema is a table-name-keyed collection of versioned definitions.
type Schema struct {
	tables map[string][]Definition
}

// New returns an empty Schema.
func New() *Schema {
	return &Schema{tables: make(map[string][]Definition)}
}

// Add registers a definition for a table name, replacing any existing
// definition with the same version.
func (s *Schema) Add(table string, def Definition) {
	defs := s.tables[table]
	for i := range defs {
		if defs[i].Version == def.Version {
			defs[i] = def
			return
		}
	}

	defs = append(defs, def)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Version > defs[j].Version })
	s.tables[table] = defs
}

// Definition returns the definition for a table at an exact version.
func (s *Schema) Definition(table string, version int32) (*Definition, error) {
	defs, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	for i := range defs {
		if defs[i].Version == version {
			return &defs[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s v%d", ErrUnknownVersion, table, version)
}

// Latest returns the highest-versioned definition for a table.
func (s *Schema) Latest(table string) (*Definition, error) {
	defs, ok := s.tables[table]
	if !ok || len(defs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	return &defs[0], nil
}

// Tables returns the sorted table names present in the schema.
func (s *Schema) Tables() []string {
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}

	sort.Strings(out)
	return out
}
