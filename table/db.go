// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package table

import (
	"bytes"
	"fmt"

	"github.com/twmodding/pack/binio"
	"github.com/twmodding/pack/schema"
)

// DB header markers. Both blocks are optional; their presence is detected
// by the marker bytes and preserved on encode.
var (
	dbGUIDMarker    = []byte{0xFD, 0xFE, 0xFC, 0xFF}
	dbVersionMarker = []byte{0xFC, 0xFD, 0xFE, 0xFF}
)

// DB is a decoded database table file: an optional GUID block, an optional
// version block, one opaque header byte, an entry count and the rows.
// Payloads without a version block use definition version 0.
type DB struct {
	Table
	hasGUID          bool
	hasVersionMarker bool
	headerByte       uint8
}

// DecodeDB parses a database table payload, resolving the definition by
// table name and the version carried in the header. The payload must be
// consumed exactly.
func DecodeDB(name string, data []byte, s *schema.Schema, opts DecodeOptions) (*DB, error) {
	r := binio.NewReader(data)
	db := &DB{Table: Table{name: name}}

	var err error
	if db.hasGUID, err = consumeMarker(r, dbGUIDMarker); err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}

	if db.hasGUID {
		if db.uniqueID, err = r.StringU16(); err != nil {
			return nil, fmt.Errorf("table %s: guid: %w", name, err)
		}
	}

	if db.hasVersionMarker, err = consumeMarker(r, dbVersionMarker); err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}

	var version int32
	if db.hasVersionMarker {
		v, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("table %s: version: %w", name, err)
		}

		version = v
	}

	if db.headerByte, err = r.U8(); err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}

	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("table %s: entry count: %w", name, err)
	}

	db.def, err = s.Definition(name, version)
	if err != nil {
		return nil, err
	}

	db.rows, err = DecodeRows(db.def, r, int(count), opts)
	if err != nil {
		return nil, fmt.Errorf("table %s v%d: %w", name, version, err)
	}

	if !opts.ReturnIncompleteRow && r.Remaining() != 0 {
		return nil, fmt.Errorf("table %s v%d: %w: %d bytes", name, version, ErrTrailingBytes, r.Remaining())
	}

	return db, nil
}

// consumeMarker checks for a marker at the cursor and skips it when found.
func consumeMarker(r *binio.Reader, marker []byte) (bool, error) {
	if r.Remaining() < len(marker) {
		return false, nil
	}

	peek, err := r.Span(r.Pos(), r.Pos()+len(marker))
	if err != nil {
		return false, err
	}

	if !bytes.Equal(peek, marker) {
		return false, nil
	}

	_, err = r.Slice(len(marker))
	return true, err
}

// Encode serializes the table back into its payload form, preserving the
// header shape it was decoded with.
func (db *DB) Encode() ([]byte, error) {
	w := binio.NewWriter()

	if db.hasGUID {
		w.Raw(dbGUIDMarker)
		if err := w.StringU16(db.uniqueID); err != nil {
			return nil, fmt.Errorf("table %s: guid: %w", db.name, err)
		}
	}

	if db.hasVersionMarker {
		w.Raw(dbVersionMarker)
		w.I32(db.def.Version)
	}

	w.U8(db.headerByte)
	w.U32(uint32(len(db.rows)))

	if err := EncodeRows(db.def, w, db.rows); err != nil {
		return nil, fmt.Errorf("table %s v%d: %w", db.name, db.def.Version, err)
	}

	return w.Bytes(), nil
}

// RegenerateGUID gives the table a fresh identity for saving. Tables
// decoded without a GUID block gain one.
func (db *DB) RegenerateGUID() {
	db.regenerateID()
	db.hasGUID = true
}
