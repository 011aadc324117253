// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"bytes"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func TestService_Lifecycle(t *testing.T) {
	svc := NewService(ServiceOptions{})
	defer svc.Stop()

	if _, err := svc.List(); !errors.Is(err, ErrNoPackLoaded) {
		t.Fatalf("List before load err = %v", err)
	}

	if err := svc.NewPack(); err != nil {
		t.Fatalf("NewPack: %v", err)
	}

	if err := svc.Add("scripts/a.lua", []byte("a")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add("scripts/b.lua", []byte("b")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	paths, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("List = %v", paths)
	}

	data, err := svc.Read("scripts/a.lua")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(data, []byte("a")) {
		t.Fatalf("data = %q", data)
	}

	if err := svc.Rename("scripts/a.lua", "scripts/c.lua"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := svc.Remove("scripts/b.lua"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.SetNotes("service notes"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}

	notes, err := svc.Notes()
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if notes != "service notes" {
		t.Fatalf("notes = %q", notes)
	}
}

func TestService_SaveAndOpen(t *testing.T) {
	svc := NewService(ServiceOptions{})
	defer svc.Stop()

	if err := svc.NewPack(); err != nil {
		t.Fatalf("NewPack: %v", err)
	}
	if err := svc.Add("a.txt", []byte("payload")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.SetDependencies([]string{"base.pack"}); err != nil {
		t.Fatalf("SetDependencies: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.pack")
	if err := svc.Save(path, SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := svc.Open(path, ReadOptions{}); err != nil {
		t.Fatalf("Open: %v", err)
	}

	data, err := svc.Read("a.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("data = %q", data)
	}

	deps, err := svc.Dependencies()
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if len(deps) != 1 || deps[0] != "base.pack" {
		t.Fatalf("deps = %v", deps)
	}
}

func TestService_Stopped(t *testing.T) {
	svc := NewService(ServiceOptions{})
	svc.Stop()
	svc.Stop() // idempotent

	if _, err := svc.List(); !errors.Is(err, ErrServiceStopped) {
		t.Fatalf("err = %v", err)
	}
	if err := svc.Add("a", []byte("a")); !errors.Is(err, ErrServiceStopped) {
		t.Fatalf("err = %v", err)
	}
}

func TestService_ConcurrentCallers(t *testing.T) {
	svc := NewService(ServiceOptions{})
	defer svc.Stop()

	if err := svc.NewPack(); err != nil {
		t.Fatalf("NewPack: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := "dir/" + string(rune('a'+i)) + ".txt"
			if err := svc.Add(path, []byte{byte(i)}); err != nil {
				t.Errorf("Add(%q): %v", path, err)
			}
		}()
	}
	wg.Wait()

	paths, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 8 {
		t.Fatalf("List = %d entries", len(paths))
	}
}
