// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package fastbin

import (
	"github.com/twmodding/pack/binio"
)

// PlayableArea is the rectangle units can move in. Version 2 carries only
// the bounds; version 3 adds the set marker and the deployment location
// flags.
type PlayableArea struct {
	SerialiseVersion uint16

	MinX int32
	MinY int32
	MaxX int32
	MaxY int32

	HasBeenSet         bool
	ValidLocationFlags uint32
}

func (a *PlayableArea) decode(r *binio.Reader) error {
	var err error
	if a.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	switch a.SerialiseVersion {
	case 2, 3:
	default:
		return &UnsupportedVersionError{Entity: "PlayableArea", Version: a.SerialiseVersion}
	}

	if a.MinX, err = r.I32(); err != nil {
		return err
	}
	if a.MinY, err = r.I32(); err != nil {
		return err
	}
	if a.MaxX, err = r.I32(); err != nil {
		return err
	}
	if a.MaxY, err = r.I32(); err != nil {
		return err
	}

	if a.SerialiseVersion == 3 {
		if a.HasBeenSet, err = r.Bool(); err != nil {
			return err
		}
		if a.ValidLocationFlags, err = r.U32(); err != nil {
			return err
		}
	}

	return nil
}

func (a *PlayableArea) encode(w *binio.Writer) error {
	switch a.SerialiseVersion {
	case 2, 3:
	default:
		return &UnsupportedVersionError{Entity: "PlayableArea", Version: a.SerialiseVersion}
	}

	w.U16(a.SerialiseVersion)
	w.I32(a.MinX)
	w.I32(a.MinY)
	w.I32(a.MaxX)
	w.I32(a.MaxY)

	if a.SerialiseVersion == 3 {
		w.Bool(a.HasBeenSet)
		w.U32(a.ValidLocationFlags)
	}

	return nil
}
