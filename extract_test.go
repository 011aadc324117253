// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestExtract(t *testing.T) {
	p := New()
	mustInsert(t, p, "scripts/boot.lua", []byte("boot"))
	mustInsert(t, p, "scripts/sub/init.lua", []byte("init"))
	mustInsert(t, p, "readme.txt", []byte("readme"))

	dir := t.TempDir()

	var done atomic.Int64
	err := p.Extract(context.Background(), dir, ExtractOptions{
		OnEntryDone: func(path string, written int64, outputPath string) {
			done.Add(1)
		},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if done.Load() != 3 {
		t.Fatalf("OnEntryDone calls = %d", done.Load())
	}

	checks := map[string]string{
		"scripts/boot.lua":     "boot",
		"scripts/sub/init.lua": "init",
		"readme.txt":           "readme",
	}
	for rel, want := range checks {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(data) != want {
			t.Fatalf("%s = %q", rel, data)
		}
	}
}

func TestExtract_Selected(t *testing.T) {
	p := New()
	mustInsert(t, p, "a/one.txt", []byte("1"))
	mustInsert(t, p, "a/two.txt", []byte("2"))
	mustInsert(t, p, "b/three.txt", []byte("3"))

	dir := t.TempDir()
	if err := p.Extract(context.Background(), dir, ExtractOptions{Paths: []string{"a"}}); err != nil {
		t.Fatalf("extract: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "b")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unselected subtree extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "one.txt")); err != nil {
		t.Fatalf("selected entry missing: %v", err)
	}

	t.Run("unknown selection", func(t *testing.T) {
		err := p.Extract(context.Background(), t.TempDir(), ExtractOptions{Paths: []string{"missing"}})
		if !errors.Is(err, ErrEntryNotFound) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestExtract_OverwriteModes(t *testing.T) {
	p := New()
	mustInsert(t, p, "a.txt", []byte("new"))

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := p.Extract(context.Background(), dir, ExtractOptions{}); err == nil {
		t.Fatal("expected failure without Overwrite")
	}

	if err := p.Extract(context.Background(), dir, ExtractOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite extract: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("content = %q", data)
	}
}

func TestExtractRelPath(t *testing.T) {
	bad := []string{"", "../x", "a/../../x", "/abs", `C:/abs`, "..", "."}
	for _, in := range bad {
		if _, err := extractRelPath(in); !errors.Is(err, ErrInvalidExtractPath) {
			t.Fatalf("extractRelPath(%q) err = %v", in, err)
		}
	}

	got, err := extractRelPath("a/./b/con.txt")
	if err != nil {
		t.Fatalf("extractRelPath: %v", err)
	}
	if got != filepath.FromSlash("a/b/_con.txt") {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeSegment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain.txt", "plain.txt"},
		{"bad:name?.txt", "bad_name_.txt"},
		{"trailing. ", "trailing"},
		{"nul", "_nul"},
		{"NUL.dat", "_NUL.dat"},
	}

	for _, tc := range cases {
		if got := sanitizeSegment(tc.in); got != tc.want {
			t.Fatalf("sanitizeSegment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
