// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package schema

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// jsonSchema is the on-disk schema document shape.
type jsonSchema struct {
	Tables map[string][]jsonDefinition `json:"tables"`
}

// jsonDefinition is the on-disk definition shape.
type jsonDefinition struct {
	Version int32       `json:"version"`
	Fields  []jsonField `json:"fields"`
}

// jsonField is the on-disk field shape. Enum keys are decimal strings.
type jsonField struct {
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	Fields         []jsonField       `json:"fields,omitempty"`
	EnumValues     map[string]string `json:"enum_values,omitempty"`
	DefaultValue   string            `json:"default_value,omitempty"`
	IsPartOfColour *uint8            `json:"is_part_of_colour,omitempty"`
	IsBitwise      int               `json:"is_bitwise,omitempty"`
	IsKey          bool              `json:"is_key,omitempty"`
}

// Load parses a JSON schema document.
func Load(data []byte) (*Schema, error) {
	var doc jsonSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	s := New()
	for table, defs := range doc.Tables {
		for _, jd := range defs {
			def, err := jd.toDefinition()
			if err != nil {
				return nil, fmt.Errorf("table %s v%d: %w", table, jd.Version, err)
			}

			s.Add(table, def)
		}
	}

	return s, nil
}

// Marshal serializes the schema to its JSON document form.
func (s *Schema) Marshal() ([]byte, error) {
	doc := jsonSchema{Tables: make(map[string][]jsonDefinition, len(s.tables))}
	for table, defs := range s.tables {
		out := make([]jsonDefinition, 0, len(defs))
		for _, def := range defs {
			out = append(out, fromDefinition(def))
		}

		doc.Tables[table] = out
	}

	return json.MarshalIndent(doc, "", "  ")
}

// toDefinition converts the wire shape into a Definition.
func (jd *jsonDefinition) toDefinition() (Definition, error) {
	fields, err := toFields(jd.Fields)
	if err != nil {
		return Definition{}, err
	}

	return Definition{Version: jd.Version, Fields: fields}, nil
}

// toFields converts wire fields, recursing into nested sequence layouts.
func toFields(in []jsonField) ([]Field, error) {
	out := make([]Field, 0, len(in))
	for _, jf := range in {
		ft, err := ParseFieldType(jf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", jf.Name, err)
		}

		field := Field{
			Name:         jf.Name,
			Type:         ft,
			DefaultValue: jf.DefaultValue,
			ColourGroup:  jf.IsPartOfColour,
			IsBitwise:    jf.IsBitwise,
			IsKey:        jf.IsKey,
		}

		if len(jf.EnumValues) > 0 {
			field.EnumValues = make(map[int64]string, len(jf.EnumValues))
			for key, value := range jf.EnumValues {
				n, err := strconv.ParseInt(key, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("field %s: enum key %q: %w", jf.Name, key, err)
				}

				field.EnumValues[n] = value
			}
		}

		if ft.IsSequence() {
			nested, err := toFields(jf.Fields)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", jf.Name, err)
			}

			field.Sequence = &Definition{Fields: nested}
		}

		out = append(out, field)
	}

	return out, nil
}

// fromDefinition converts a Definition back into its wire shape.
func fromDefinition(def Definition) jsonDefinition {
	return jsonDefinition{Version: def.Version, Fields: fromFields(def.Fields)}
}

// fromFields converts fields to wire shape, recursing into sequences.
func fromFields(in []Field) []jsonField {
	out := make([]jsonField, 0, len(in))
	for _, f := range in {
		jf := jsonField{
			Name:           f.Name,
			Type:           f.Type.String(),
			DefaultValue:   f.DefaultValue,
			IsPartOfColour: f.ColourGroup,
			IsBitwise:      f.IsBitwise,
			IsKey:          f.IsKey,
		}

		if len(f.EnumValues) > 0 {
			jf.EnumValues = make(map[string]string, len(f.EnumValues))
			for key, value := range f.EnumValues {
				jf.EnumValues[strconv.FormatInt(key, 10)] = value
			}
		}

		if f.Sequence != nil {
			jf.Fields = fromFields(f.Sequence.Fields)
		}

		out = append(out, jf)
	}

	return out
}
