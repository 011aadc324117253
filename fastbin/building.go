// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package fastbin

import (
	"github.com/twmodding/pack/binio"
)

// BuildingList is the battlefield building block.
type BuildingList struct {
	SerialiseVersion uint16
	Buildings        []Building
}

func (l *BuildingList) decode(r *binio.Reader) error {
	var err error
	if l.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	switch l.SerialiseVersion {
	case 1:
		count, err := r.U32()
		if err != nil {
			return err
		}

		l.Buildings = make([]Building, count)
		for i := range l.Buildings {
			if err := l.Buildings[i].decode(r); err != nil {
				return err
			}
		}

		return nil
	default:
		return &UnsupportedVersionError{Entity: "BuildingList", Version: l.SerialiseVersion}
	}
}

func (l *BuildingList) encode(w *binio.Writer) error {
	w.U16(l.SerialiseVersion)

	switch l.SerialiseVersion {
	case 1:
		w.U32(uint32(len(l.Buildings)))
		for i := range l.Buildings {
			if err := l.Buildings[i].encode(w); err != nil {
				return err
			}
		}

		return nil
	default:
		return &UnsupportedVersionError{Entity: "BuildingList", Version: l.SerialiseVersion}
	}
}

// Building is one placed battlefield building. Version 8 stores ParentID
// as a 16-bit value and lacks the UID field that version 11 appends;
// everything else is shared.
type Building struct {
	SerialiseVersion uint16

	BuildingID   string
	ParentID     int32
	BuildingKey  string
	PositionType string
	Transform    Transform
	Properties   Properties
	HeightMode   string
	UID          float64
}

func (b *Building) decode(r *binio.Reader) error {
	var err error
	if b.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	switch b.SerialiseVersion {
	case 8, 11:
	default:
		return &UnsupportedVersionError{Entity: "Building", Version: b.SerialiseVersion}
	}

	if b.BuildingID, err = r.StringU8(); err != nil {
		return err
	}

	// Version 8 stores the parent id narrow; version 11 widened it.
	if b.SerialiseVersion == 8 {
		narrow, err := r.I16()
		if err != nil {
			return err
		}

		b.ParentID = int32(narrow)
	} else {
		if b.ParentID, err = r.I32(); err != nil {
			return err
		}
	}

	if b.BuildingKey, err = r.StringU8(); err != nil {
		return err
	}

	if b.PositionType, err = r.StringU8(); err != nil {
		return err
	}

	if err = b.Transform.decode(r); err != nil {
		return err
	}

	if err = b.Properties.decode(r); err != nil {
		return err
	}

	if b.HeightMode, err = r.StringU8(); err != nil {
		return err
	}

	if b.SerialiseVersion == 11 {
		if b.UID, err = r.F64(); err != nil {
			return err
		}
	}

	return nil
}

func (b *Building) encode(w *binio.Writer) error {
	switch b.SerialiseVersion {
	case 8, 11:
	default:
		return &UnsupportedVersionError{Entity: "Building", Version: b.SerialiseVersion}
	}

	w.U16(b.SerialiseVersion)
	if err := w.StringU8(b.BuildingID); err != nil {
		return err
	}

	if b.SerialiseVersion == 8 {
		w.I16(int16(b.ParentID))
	} else {
		w.I32(b.ParentID)
	}

	if err := w.StringU8(b.BuildingKey); err != nil {
		return err
	}

	if err := w.StringU8(b.PositionType); err != nil {
		return err
	}

	if err := b.Transform.encode(w); err != nil {
		return err
	}

	if err := b.Properties.encode(w); err != nil {
		return err
	}

	if err := w.StringU8(b.HeightMode); err != nil {
		return err
	}

	if b.SerialiseVersion == 11 {
		w.F64(b.UID)
	}

	return nil
}

// Transform is a placed entity's orientation and position: a row-major 3x3
// rotation followed by a translation.
type Transform struct {
	SerialiseVersion uint16

	Rotation [9]float32
	Position [3]float32
}

func (t *Transform) decode(r *binio.Reader) error {
	var err error
	if t.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if t.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "Transform", Version: t.SerialiseVersion}
	}

	for i := range t.Rotation {
		if t.Rotation[i], err = r.F32(); err != nil {
			return err
		}
	}

	for i := range t.Position {
		if t.Position[i], err = r.F32(); err != nil {
			return err
		}
	}

	return nil
}

func (t *Transform) encode(w *binio.Writer) error {
	if t.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "Transform", Version: t.SerialiseVersion}
	}

	w.U16(t.SerialiseVersion)
	for _, v := range t.Rotation {
		w.F32(v)
	}

	for _, v := range t.Position {
		w.F32(v)
	}

	return nil
}

// IdentityTransform returns a transform with no rotation or translation.
func IdentityTransform() Transform {
	return Transform{
		SerialiseVersion: 1,
		Rotation:         [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
}

// Properties holds a building's gameplay behaviour toggles.
type Properties struct {
	SerialiseVersion uint16

	StartingDamageUnary float32
	OnFire              bool
	StartDisabled       bool
	WeakPoint           bool
	AIBreachable        bool
	Indestructible      bool
	Dockable            bool
	Toggleable          bool
	Lite                bool
	ClampToSurface      bool
	CastShadows         bool
}

func (p *Properties) decode(r *binio.Reader) error {
	var err error
	if p.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if p.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "Properties", Version: p.SerialiseVersion}
	}

	if p.StartingDamageUnary, err = r.F32(); err != nil {
		return err
	}

	for _, dst := range []*bool{
		&p.OnFire, &p.StartDisabled, &p.WeakPoint, &p.AIBreachable,
		&p.Indestructible, &p.Dockable, &p.Toggleable, &p.Lite,
		&p.ClampToSurface, &p.CastShadows,
	} {
		if *dst, err = r.Bool(); err != nil {
			return err
		}
	}

	return nil
}

func (p *Properties) encode(w *binio.Writer) error {
	if p.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "Properties", Version: p.SerialiseVersion}
	}

	w.U16(p.SerialiseVersion)
	w.F32(p.StartingDamageUnary)
	for _, v := range []bool{
		p.OnFire, p.StartDisabled, p.WeakPoint, p.AIBreachable,
		p.Indestructible, p.Dockable, p.Toggleable, p.Lite,
		p.ClampToSurface, p.CastShadows,
	} {
		w.Bool(v)
	}

	return nil
}
