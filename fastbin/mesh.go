// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package fastbin

import (
	"github.com/twmodding/pack/binio"
)

// CustomMaterialMeshList is the custom material mesh block.
type CustomMaterialMeshList struct {
	SerialiseVersion uint16
	Meshes           []CustomMaterialMesh
}

func (l *CustomMaterialMeshList) decode(r *binio.Reader) error {
	var err error
	if l.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if l.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "CustomMaterialMeshList", Version: l.SerialiseVersion}
	}

	count, err := r.U32()
	if err != nil {
		return err
	}

	l.Meshes = make([]CustomMaterialMesh, count)
	for i := range l.Meshes {
		if err := l.Meshes[i].decode(r); err != nil {
			return err
		}
	}

	return nil
}

func (l *CustomMaterialMeshList) encode(w *binio.Writer) error {
	if l.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "CustomMaterialMeshList", Version: l.SerialiseVersion}
	}

	w.U16(l.SerialiseVersion)
	w.U32(uint32(len(l.Meshes)))
	for i := range l.Meshes {
		if err := l.Meshes[i].encode(w); err != nil {
			return err
		}
	}

	return nil
}

// CustomMaterialMesh is a hand-authored mesh with a material reference:
// a vertex list, a triangle index list and the material path.
type CustomMaterialMesh struct {
	SerialiseVersion uint16

	Vertices   []Vec3
	Indices    []uint16
	Material   string
	HeightMode string
}

func (m *CustomMaterialMesh) decode(r *binio.Reader) error {
	var err error
	if m.SerialiseVersion, err = r.U16(); err != nil {
		return err
	}

	if m.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "CustomMaterialMesh", Version: m.SerialiseVersion}
	}

	vertexCount, err := r.U32()
	if err != nil {
		return err
	}

	m.Vertices = make([]Vec3, vertexCount)
	for i := range m.Vertices {
		if m.Vertices[i], err = readVec3(r); err != nil {
			return err
		}
	}

	indexCount, err := r.U32()
	if err != nil {
		return err
	}

	m.Indices = make([]uint16, indexCount)
	for i := range m.Indices {
		if m.Indices[i], err = r.U16(); err != nil {
			return err
		}
	}

	if m.Material, err = r.StringU8(); err != nil {
		return err
	}

	m.HeightMode, err = r.StringU8()
	return err
}

func (m *CustomMaterialMesh) encode(w *binio.Writer) error {
	if m.SerialiseVersion != 1 {
		return &UnsupportedVersionError{Entity: "CustomMaterialMesh", Version: m.SerialiseVersion}
	}

	w.U16(m.SerialiseVersion)
	w.U32(uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		writeVec3(w, v)
	}

	w.U32(uint32(len(m.Indices)))
	for _, idx := range m.Indices {
		w.U16(idx)
	}

	if err := w.StringU8(m.Material); err != nil {
		return err
	}

	return w.StringU8(m.HeightMode)
}
