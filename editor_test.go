// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// seedPackFile writes a small pack to disk and returns its path.
func seedPackFile(t *testing.T) string {
	t.Helper()

	p := New()
	mustInsert(t, p, "scripts/main.lua", []byte("main"))
	mustInsert(t, p, "scripts/util.lua", []byte("util"))
	mustInsert(t, p, "docs/readme.txt", []byte("docs"))

	path := filepath.Join(t.TempDir(), "mod.pack")
	if err := p.SaveTo(path); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	return path
}

func TestEditor_Commit(t *testing.T) {
	path := seedPackFile(t)

	e, err := OpenEditor(path, EditOptions{BackupKeep: 1})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	if err := e.Add("scripts/new.lua", []byte("new")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := e.Replace("scripts/main.lua", []byte("main v2")); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := e.Delete("scripts/util.lua"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := e.Rename("docs/readme.txt", "docs/README.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	e.SetNotes("edited")

	if err := e.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	p, err := Open(path)
	if err != nil {
		t.Fatalf("open committed: %v", err)
	}
	defer func() { _ = p.Close() }()

	f, err := p.File("scripts/main.lua")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	data, err := f.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if !bytes.Equal(data, []byte("main v2")) {
		t.Fatalf("replaced payload = %q", data)
	}

	if _, err := p.File("scripts/util.lua"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("deleted entry err = %v", err)
	}
	if _, err := p.File("scripts/new.lua"); err != nil {
		t.Fatalf("added entry: %v", err)
	}
	if _, err := p.File("docs/README.txt"); err != nil {
		t.Fatalf("renamed entry: %v", err)
	}
	if p.Notes() != "edited" {
		t.Fatalf("notes = %q", p.Notes())
	}

	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
}

func TestEditor_RollbackOnConflict(t *testing.T) {
	path := seedPackFile(t)

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}

	e, err := OpenEditor(path, EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	if err := e.Add("scripts/main.lua", []byte("dup")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := e.Commit(); !errors.Is(err, ErrDuplicateEntryPath) {
		t.Fatalf("Commit err = %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after rollback: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("rollback did not restore original file")
	}
}

func TestEditor_DeleteDir(t *testing.T) {
	path := seedPackFile(t)

	e, err := OpenEditor(path, EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if err := e.DeleteDir("scripts"); err != nil {
		t.Fatalf("DeleteDir: %v", err)
	}
	if err := e.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	p, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = p.Close() }()

	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}
	if _, err := p.File("docs/readme.txt"); err != nil {
		t.Fatalf("surviving entry: %v", err)
	}
}

func TestEditor_BackupRotation(t *testing.T) {
	path := seedPackFile(t)

	for i := 0; i < 3; i++ {
		e, err := OpenEditor(path, EditOptions{BackupKeep: 2})
		if err != nil {
			t.Fatalf("OpenEditor: %v", err)
		}
		e.SetNotes("gen")
		if err := e.Commit(); err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("bak missing: %v", err)
	}
	if _, err := os.Stat(path + ".bak.1"); err != nil {
		t.Fatalf("bak.1 missing: %v", err)
	}
	if _, err := os.Stat(path + ".bak.2"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("bak.2 should not exist: %v", err)
	}
}
