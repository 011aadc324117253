// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"errors"
	"testing"

	"github.com/woozymasta/pathrules"
)

func TestFilesOfKind(t *testing.T) {
	p := New()
	mustInsert(t, p, "db/a_tables/data__", []byte("1"))
	mustInsert(t, p, "text/ui.loc", []byte("2"))
	mustInsert(t, p, "script.lua", []byte("3"))
	mustInsert(t, p, "texture.dds", []byte("4"))

	tables := p.FilesOfKind(KindDB, KindLoc)
	if len(tables) != 2 {
		t.Fatalf("tables = %d entries", len(tables))
	}
	if tables[0].Path() != "db/a_tables/data__" {
		t.Fatalf("order: %q first", tables[0].Path())
	}

	images := p.FilesOfKind(KindImage)
	if len(images) != 1 || images[0].Path() != "texture.dds" {
		t.Fatalf("images = %v", images)
	}
}

func TestFilesMatching(t *testing.T) {
	p := New()
	mustInsert(t, p, "ui/panel.xml", []byte("1"))
	mustInsert(t, p, "ui/icons/a.dds", []byte("2"))
	mustInsert(t, p, "script.lua", []byte("3"))

	matched, err := p.FilesMatching([]pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "ui/**"},
	}, pathrules.MatcherOptions{CaseInsensitive: true})
	if err != nil {
		t.Fatalf("FilesMatching: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched = %d entries", len(matched))
	}

	t.Run("no usable patterns", func(t *testing.T) {
		_, err := p.FilesMatching([]pathrules.Rule{{Pattern: "  "}}, pathrules.MatcherOptions{})
		if !errors.Is(err, ErrInvalidFilterPattern) {
			t.Fatalf("err = %v", err)
		}
	})
}
