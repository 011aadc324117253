// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package table

import (
	"fmt"

	"github.com/twmodding/pack/binio"
	"github.com/twmodding/pack/schema"
)

// Loc file framing.
const (
	locByteOrderMark = 0xFEFF
	locTag           = "LOC"
	locVersion       = 1
)

// locDefinition is the fixed three-column layout every localisation file
// uses; loc files carry no schema of their own.
var locDefinition = schema.Definition{
	Version: locVersion,
	Fields: []schema.Field{
		{Name: "key", Type: schema.StringU16, IsKey: true},
		{Name: "text", Type: schema.StringU16},
		{Name: "tooltip", Type: schema.Boolean},
	},
}

// LocDefinition returns the fixed localisation table layout.
func LocDefinition() *schema.Definition {
	def := locDefinition
	return &def
}

// Loc is a decoded localisation file.
type Loc struct {
	Table
}

// NewLoc returns an empty localisation table.
func NewLoc() *Loc {
	return &Loc{Table: *New(LocDefinition(), locTag)}
}

// DecodeLoc parses a localisation payload. The payload must be consumed
// exactly.
func DecodeLoc(data []byte, opts DecodeOptions) (*Loc, error) {
	r := binio.NewReader(data)

	bom, err := r.U16()
	if err != nil || bom != locByteOrderMark {
		return nil, fmt.Errorf("%w: missing byte order mark", ErrBadHeader)
	}

	tag, err := r.Slice(3)
	if err != nil || string(tag) != locTag {
		return nil, fmt.Errorf("%w: missing LOC tag", ErrBadHeader)
	}

	if _, err := r.U8(); err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrBadHeader)
	}

	version, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrBadHeader)
	}

	if version != locVersion {
		return nil, fmt.Errorf("%w: unsupported loc version %d", ErrBadHeader, version)
	}

	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrBadHeader)
	}

	loc := NewLoc()
	loc.rows, err = DecodeRows(loc.def, r, int(count), opts)
	if err != nil {
		return nil, fmt.Errorf("loc: %w", err)
	}

	if !opts.ReturnIncompleteRow && r.Remaining() != 0 {
		return nil, fmt.Errorf("loc: %w: %d bytes", ErrTrailingBytes, r.Remaining())
	}

	return loc, nil
}

// Encode serializes the localisation table back into its payload form.
func (l *Loc) Encode() ([]byte, error) {
	w := binio.NewWriter()
	w.U16(locByteOrderMark)
	w.Raw([]byte(locTag))
	w.U8(0)
	w.U32(locVersion)
	w.U32(uint32(len(l.rows)))

	if err := EncodeRows(l.def, w, l.rows); err != nil {
		return nil, fmt.Errorf("loc: %w", err)
	}

	return w.Bytes(), nil
}
