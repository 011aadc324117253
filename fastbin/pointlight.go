// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package fastbin

import (
	"github.com/twmodding/pack/binio"
)

// PointLightList is the point light block.
type PointLightList struct {
	SerialiseVersion uint16
	Lights           []PointLight
}

func (l *PointLightList) decode(r *binio.Reader) error {
	var err error
	if l.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if l.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "PointLightList", Version: l.SerialiseVersion}
	}

	count, err := r.U32()
	if err != nil {
		return err
	}

	l.Lights = make([]PointLight, count)
	for i := range l.Lights {
		if err := l.Lights[i].decode(r); err != nil {
			return err
		}
	}

	return nil
}

func (l *PointLightList) encode(w *binio.Writer) error {
	if l.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "PointLightList", Version: l.SerialiseVersion}
	}

	w.U16(l.SerialiseVersion)
	w.U32(uint32(len(l.Lights)))
	for i := range l.Lights {
		if err := l.Lights[i].encode(w); err != nil {
			return err
		}
	}

	return nil
}

// Vec3 is a three-component float vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec2 is a two-component float vector.
type Vec2 struct {
	X, Y float32
}

// Colour is an RGB triplet in float channels.
type Colour struct {
	R, G, B float32
}

// PointLight is one placed light source. AnimationType and LFRelative are
// kept as raw bytes; map exports carry values outside 0/1 in them.
type PointLight struct {
	SerialiseVersion uint16

	Position        Vec3
	Radius          float32
	Colour          Colour
	ColourScale     float32
	AnimationType   uint8
	ColourMin       float32
	RandomOffset    float32
	Params          Vec2
	FalloffType     string
	LFRelative      uint8
	HeightMode      string
	LightProbesOnly bool
	PDLCMask        uint64
	Flags           LightFlags
}

func (p *PointLight) decode(r *binio.Reader) error {
	var err error
	if p.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if p.SerialiseVersion != 7 {
		return &UnsupportedVersionError{Entity: "PointLight", Version: p.SerialiseVersion}
	}

	if p.Position, err = readVec3(r); err != nil {
		return err
	}

	if p.Radius, err = r.F32(); err != nil {
		return err
	}

	if p.Colour.R, err = r.F32(); err != nil {
		return err
	}
	if p.Colour.G, err = r.F32(); err != nil {
		return err
	}
	if p.Colour.B, err = r.F32(); err != nil {
		return err
	}

	if p.ColourScale, err = r.F32(); err != nil {
		return err
	}

	if p.AnimationType, err = r.U8(); err != nil {
		return err
	}

	if p.ColourMin, err = r.F32(); err != nil {
		return err
	}

	if p.RandomOffset, err = r.F32(); err != nil {
		return err
	}

	if p.Params.X, err = r.F32(); err != nil {
		return err
	}
	if p.Params.Y, err = r.F32(); err != nil {
		return err
	}

	if p.FalloffType, err = r.StringU8(); err != nil {
		return err
	}

	if p.LFRelative, err = r.U8(); err != nil {
		return err
	}

	if p.HeightMode, err = r.StringU8(); err != nil {
		return err
	}

	if p.LightProbesOnly, err = r.Bool(); err != nil {
		return err
	}

	if p.PDLCMask, err = r.U64(); err != nil {
		return err
	}

	return p.Flags.decode(r)
}

func (p *PointLight) encode(w *binio.Writer) error {
	if p.SerialiseVersion != 7 {
		return &UnsupportedVersionError{Entity: "PointLight", Version: p.SerialiseVersion}
	}

	w.U16(p.SerialiseVersion)
	writeVec3(w, p.Position)
	w.F32(p.Radius)
	w.F32(p.Colour.R)
	w.F32(p.Colour.G)
	w.F32(p.Colour.B)
	w.F32(p.ColourScale)
	w.U8(p.AnimationType)
	w.F32(p.ColourMin)
	w.F32(p.RandomOffset)
	w.F32(p.Params.X)
	w.F32(p.Params.Y)
	if err := w.StringU8(p.FalloffType); err != nil {
		return err
	}

	w.U8(p.LFRelative)
	if err := w.StringU8(p.HeightMode); err != nil {
		return err
	}

	w.Bool(p.LightProbesOnly)
	w.U64(p.PDLCMask)
	return p.Flags.encode(w)
}

// LightFlags is a light's seasonal and view visibility toggles.
type LightFlags struct {
	SerialiseVersion uint16

	AllowInOutfield           bool
	ClampToWaterSurface       bool
	Spring                    bool
	Summer                    bool
	Autumn                    bool
	Winter                    bool
	VisibleInTacticalView     bool
	VisibleInTacticalViewOnly bool
}

func (f *LightFlags) decode(r *binio.Reader) error {
	var err error
	if f.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if f.SerialiseVersion != 4 {
		return &UnsupportedVersionError{Entity: "Flags", Version: f.SerialiseVersion}
	}

	for _, dst := range []*bool{
		&f.AllowInOutfield, &f.ClampToWaterSurface,
		&f.Spring, &f.Summer, &f.Autumn, &f.Winter,
		&f.VisibleInTacticalView, &f.VisibleInTacticalViewOnly,
	} {
		if *dst, err = r.Bool(); err != nil {
			return err
		}
	}

	return nil
}

func (f *LightFlags) encode(w *binio.Writer) error {
	if f.SerialiseVersion != 4 {
		return &UnsupportedVersionError{Entity: "Flags", Version: f.SerialiseVersion}
	}

	w.U16(f.SerialiseVersion)
	for _, v := range []bool{
		f.AllowInOutfield, f.ClampToWaterSurface,
		f.Spring, f.Summer, f.Autumn, f.Winter,
		f.VisibleInTacticalView, f.VisibleInTacticalViewOnly,
	} {
		w.Bool(v)
	}

	return nil
}

func readVec3(r *binio.Reader) (Vec3, error) {
	var v Vec3
	var err error
	if v.X, err = r.F32(); err != nil {
		return v, err
	}
	if v.Y, err = r.F32(); err != nil {
		return v, err
	}

	v.Z, err = r.F32()
	return v, err
}

func writeVec3(w *binio.Writer, v Vec3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}
