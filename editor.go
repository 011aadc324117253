// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Editor accumulates pack edit operations and applies them on Commit in
// one rewrite transaction with backup and rollback.
type Editor struct {
	path string
	ops  []editOperation
	opts EditOptions
}

// EditOptions configures a staged edit transaction.
type EditOptions struct {
	// Save controls the commit-time save pipeline.
	Save SaveOptions
	// BackupKeep is how many backup generations survive a commit. Zero
	// removes the backup after a successful commit.
	BackupKeep int
}

// editOperation stores one staged editor operation.
type editOperation struct {
	kind  editOperationKind
	path  string
	to    string
	data  []byte
	notes string
	deps  []string
}

type editOperationKind uint8

const (
	// editOperationAdd appends a new entry and fails on an existing path.
	editOperationAdd editOperationKind = iota + 1
	// editOperationReplace rewrites an existing entry.
	editOperationReplace
	// editOperationDelete removes one exact path.
	editOperationDelete
	// editOperationDeleteDir removes entries by directory prefix.
	editOperationDeleteDir
	// editOperationRename moves one entry.
	editOperationRename
	// editOperationSetNotes replaces the pack notes.
	editOperationSetNotes
	// editOperationSetDeps replaces the dependency list.
	editOperationSetDeps
)

// OpenEditor creates a staged editor for a file-based pack rewrite.
func OpenEditor(path string, opts EditOptions) (*Editor, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, ErrInvalidEntryPath
	}

	return &Editor{
		path: trimmed,
		opts: opts,
		ops:  make([]editOperation, 0, 8),
	}, nil
}

// Add schedules adding a new entry; commit fails on a path collision.
func (e *Editor) Add(path string, data []byte) error {
	normalized, err := normalizeEntryPath(path)
	if err != nil {
		return err
	}

	e.ops = append(e.ops, editOperation{kind: editOperationAdd, path: normalized, data: data})
	return nil
}

// Replace schedules rewriting an existing entry.
func (e *Editor) Replace(path string, data []byte) error {
	normalized, err := normalizeEntryPath(path)
	if err != nil {
		return err
	}

	e.ops = append(e.ops, editOperation{kind: editOperationReplace, path: normalized, data: data})
	return nil
}

// Delete schedules exact-path removal.
func (e *Editor) Delete(paths ...string) error {
	for _, raw := range paths {
		normalized, err := normalizeEntryPath(raw)
		if err != nil {
			return err
		}

		e.ops = append(e.ops, editOperation{kind: editOperationDelete, path: normalized})
	}

	return nil
}

// DeleteDir schedules directory-prefix removal.
func (e *Editor) DeleteDir(prefixes ...string) error {
	for _, raw := range prefixes {
		normalized, err := normalizeEntryPath(raw)
		if err != nil {
			return err
		}

		e.ops = append(e.ops, editOperation{kind: editOperationDeleteDir, path: normalized})
	}

	return nil
}

// Rename schedules moving one entry.
func (e *Editor) Rename(oldPath, newPath string) error {
	from, err := normalizeEntryPath(oldPath)
	if err != nil {
		return err
	}

	to, err := normalizeEntryPath(newPath)
	if err != nil {
		return err
	}

	e.ops = append(e.ops, editOperation{kind: editOperationRename, path: from, to: to})
	return nil
}

// SetNotes schedules replacing the pack notes.
func (e *Editor) SetNotes(notes string) {
	e.ops = append(e.ops, editOperation{kind: editOperationSetNotes, notes: notes})
}

// SetDependencies schedules replacing the dependency list.
func (e *Editor) SetDependencies(deps []string) {
	out := make([]string, len(deps))
	copy(out, deps)
	e.ops = append(e.ops, editOperation{kind: editOperationSetDeps, deps: out})
}

// Commit applies all staged operations in one rewrite transaction. The
// original file moves to a backup slot first; a failed rewrite restores it.
func (e *Editor) Commit() error {
	backupPath := e.path + ".bak"
	if err := prepareBackupSlot(backupPath, e.opts.BackupKeep); err != nil {
		return err
	}

	if err := os.Rename(e.path, backupPath); err != nil {
		return fmt.Errorf("move pack to backup: %w", err)
	}

	if err := e.commitFromBackup(backupPath); err != nil {
		if rollbackErr := rollbackFromBackup(e.path, backupPath); rollbackErr != nil {
			return fmt.Errorf("%v (rollback failed: %v)", err, rollbackErr)
		}

		return err
	}

	e.ops = e.ops[:0]
	if e.opts.BackupKeep == 0 {
		if err := removeIfExists(backupPath); err != nil {
			return fmt.Errorf("remove backup: %w", err)
		}
	}

	return nil
}

// commitFromBackup writes the edited pack from the backup source.
func (e *Editor) commitFromBackup(backupPath string) error {
	p, err := Open(backupPath)
	if err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}
	defer func() { _ = p.Close() }()

	if err := e.applyOps(p); err != nil {
		return err
	}

	return p.SaveToWithOptions(e.path, e.opts.Save)
}

func (e *Editor) applyOps(p *Pack) error {
	for _, op := range e.ops {
		switch op.kind {
		case editOperationAdd:
			if _, err := p.File(op.path); err == nil {
				return fmt.Errorf("%w: %s", ErrDuplicateEntryPath, op.path)
			}

			f, err := NewFile(op.path, op.data)
			if err != nil {
				return err
			}

			if err := p.Insert(f); err != nil {
				return err
			}
		case editOperationReplace:
			f, err := p.File(op.path)
			if err != nil {
				return err
			}

			if err := f.SetData(op.data); err != nil {
				return err
			}
		case editOperationDelete:
			if err := p.Remove(op.path); err != nil {
				return err
			}
		case editOperationDeleteDir:
			for _, f := range p.FilesUnder(op.path) {
				if err := p.Remove(f.Path()); err != nil {
					return err
				}
			}
		case editOperationRename:
			if err := p.Rename(op.path, op.to); err != nil {
				return err
			}
		case editOperationSetNotes:
			p.SetNotes(op.notes)
		case editOperationSetDeps:
			p.SetDependencies(op.deps)
		default:
			return fmt.Errorf("unknown edit operation kind: %d", op.kind)
		}
	}

	return nil
}

// prepareBackupSlot rotates or removes existing backup generations before
// a new commit.
func prepareBackupSlot(backupPath string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	switch keep {
	case 0, 1:
		return removeIfExists(backupPath)
	default:
		oldest := fmt.Sprintf("%s.%d", backupPath, keep-1)
		if err := removeIfExists(oldest); err != nil {
			return err
		}

		for i := keep - 2; i >= 1; i-- {
			from := fmt.Sprintf("%s.%d", backupPath, i)
			to := fmt.Sprintf("%s.%d", backupPath, i+1)
			if err := renameIfExists(from, to); err != nil {
				return err
			}
		}

		return renameIfExists(backupPath, backupPath+".1")
	}
}

// renameIfExists renames source to destination when source exists.
func renameIfExists(from string, to string) error {
	_, err := os.Stat(from)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", from, err)
	}

	if err := removeIfExists(to); err != nil {
		return err
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}

	return nil
}

// removeIfExists removes a file when present.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) || err == nil {
		return nil
	}

	return fmt.Errorf("remove %s: %w", path, err)
}

// rollbackFromBackup restores the backup after a failed commit.
func rollbackFromBackup(path string, backupPath string) error {
	_ = os.Remove(path)

	if err := os.Rename(backupPath, path); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}
