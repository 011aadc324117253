// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bytes"
	"fmt"
	"testing"
)

// buildBenchPack returns an encoded pack with count entries of size bytes.
func buildBenchPack(b *testing.B, count, size int) []byte {
	b.Helper()

	payload := bytes.Repeat([]byte("benchmark payload block "), size/24+1)[:size]

	p := New()
	for i := 0; i < count; i++ {
		f, err := NewFile(fmt.Sprintf("data/entry_%04d.lua", i), payload)
		if err != nil {
			b.Fatalf("NewFile: %v", err)
		}
		if err := p.Insert(f); err != nil {
			b.Fatalf("Insert: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		b.Fatalf("save: %v", err)
	}

	return buf.Bytes()
}

func BenchmarkDecode(b *testing.B) {
	data := buildBenchPack(b, 200, 4096)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Decode(data); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkSave(b *testing.B) {
	p, err := Decode(buildBenchPack(b, 200, 4096))
	if err != nil {
		b.Fatalf("decode: %v", err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := p.Save(&buf); err != nil {
			b.Fatalf("save: %v", err)
		}
	}
}

func BenchmarkSave_Zstd(b *testing.B) {
	p, err := Decode(buildBenchPack(b, 50, 16384))
	if err != nil {
		b.Fatalf("decode: %v", err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := p.SaveWithOptions(&buf, SaveOptions{Compression: CompressZstd}); err != nil {
			b.Fatalf("save: %v", err)
		}
	}
}
