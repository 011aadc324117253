// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

// Package fastbin implements the FASTBIN0 battle map data format: a fixed
// signature, a serialise version and a version-dispatched sequence of
// entity blocks. Every block carries its own serialise version, so old and
// new map exports can coexist in the same file tree.
package fastbin

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/twmodding/pack/binio"
)

// Signature is the 8-byte magic every FASTBIN file starts with.
var Signature = []byte("FASTBIN0")

// Extension is the file extension FASTBIN payloads are stored under.
const Extension = ".bmd"

// serialiseVersion is the only top-level layout currently supported.
const serialiseVersion = 27

// Sentinel errors. Use errors.Is in callers.
var (
	// ErrBadSignature means the payload does not start with FASTBIN0.
	ErrBadSignature = errors.New("not a FASTBIN payload")
	// ErrSizeMismatch means decoding finished before the end of the payload.
	ErrSizeMismatch = errors.New("payload not fully consumed")
)

// UnsupportedVersionError names the entity whose serialise version has no
// known layout.
type UnsupportedVersionError struct {
	Entity  string
	Version uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported %s serialise version %d", e.Entity, e.Version)
}

// FastBin is a decoded battle map data file.
type FastBin struct {
	SerialiseVersion uint16

	BuildingList           BuildingList
	PointLightList         PointLightList
	PlayableArea           PlayableArea
	CustomMaterialMeshList CustomMaterialMeshList
}

// Decode parses a FASTBIN payload. The payload must be consumed exactly;
// leftover bytes mean the layout did not match and the file is corrupt.
func Decode(data []byte) (*FastBin, error) {
	r := binio.NewReader(data)

	sig, err := r.Slice(len(Signature))
	if err != nil || !bytes.Equal(sig, Signature) {
		return nil, ErrBadSignature
	}

	fb := &FastBin{}
	if fb.SerialiseVersion, err = r.U16(); err != nil {
		return nil, err
	}

	switch fb.SerialiseVersion {
	case serialiseVersion:
		err = fb.readV27(r)
	default:
		err = &UnsupportedVersionError{Entity: "FastBin", Version: fb.SerialiseVersion}
	}

	if err != nil {
		return nil, err
	}

	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left at offset %d", ErrSizeMismatch, r.Remaining(), r.Pos())
	}

	return fb, nil
}

// Encode serializes the file back into its payload form.
func (fb *FastBin) Encode() ([]byte, error) {
	w := binio.NewWriter()
	w.Raw(Signature)
	w.U16(fb.SerialiseVersion)

	switch fb.SerialiseVersion {
	case serialiseVersion:
		if err := fb.writeV27(w); err != nil {
			return nil, err
		}
	default:
		return nil, &UnsupportedVersionError{Entity: "FastBin", Version: fb.SerialiseVersion}
	}

	return w.Bytes(), nil
}

// readV27 reads the entity blocks in their fixed document order.
func (fb *FastBin) readV27(r *binio.Reader) error {
	if err := fb.BuildingList.decode(r); err != nil {
		return err
	}

	if err := fb.PointLightList.decode(r); err != nil {
		return err
	}

	if err := fb.PlayableArea.decode(r); err != nil {
		return err
	}

	return fb.CustomMaterialMeshList.decode(r)
}

func (fb *FastBin) writeV27(w *binio.Writer) error {
	if err := fb.BuildingList.encode(w); err != nil {
		return err
	}

	if err := fb.PointLightList.encode(w); err != nil {
		return err
	}

	if err := fb.PlayableArea.encode(w); err != nil {
		return err
	}

	return fb.CustomMaterialMeshList.encode(w)
}
