// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package table

import (
	"errors"
	"fmt"
)

// Sentinel errors for table operations. Use errors.Is in callers.
var (
	// ErrRowOutOfRange means a row index is outside the table.
	ErrRowOutOfRange = errors.New("row index out of range")
	// ErrNoEnumMatch means a string could not be mapped back to any enum
	// value, coerced, or defaulted during encode.
	ErrNoEnumMatch = errors.New("no enum value matches")
	// ErrBadHeader means a table payload does not start with the expected
	// framing markers.
	ErrBadHeader = errors.New("malformed table header")
	// ErrTrailingBytes means a table payload had bytes left after the last
	// declared row.
	ErrTrailingBytes = errors.New("trailing bytes after last row")
	// ErrUnknownColourChannel means a colour-grouped field name carries no
	// recognizable r/g/b channel token.
	ErrUnknownColourChannel = errors.New("unknown colour channel")
)

// FieldDecodeError reports a field that failed to decode. Row and Column are
// 1-based so they match what table editors show.
type FieldDecodeError struct {
	Row      int
	Column   int
	Expected string
	Err      error
}

func (e *FieldDecodeError) Error() string {
	return fmt.Sprintf("row %d, column %d: cannot decode %s value: %v", e.Row, e.Column, e.Expected, e.Err)
}

func (e *FieldDecodeError) Unwrap() error {
	return e.Err
}

// FieldTypeError reports a cell whose kind does not fit the column it is
// being encoded into or stored at.
type FieldTypeError struct {
	Field string
	Want  string
	Got   Kind
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %s: want %s, got %s cell", e.Field, e.Want, e.Got)
}

// RowArityError reports a row whose cell count does not match the processed
// column count of the definition.
type RowArityError struct {
	Want int
	Got  int
}

func (e *RowArityError) Error() string {
	return fmt.Sprintf("row holds %d cells, definition has %d columns", e.Got, e.Want)
}
