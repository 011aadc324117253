// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

/*
Package pack reads, edits and writes Total War pack archives (PFH0, PFH4,
PFH5 and PFH6 containers). Entries are lazy by default: opening a pack
parses the header and indexes only, and payload bytes load on demand
through a shared source handle.

Legacy packs with encrypted indexes or payloads are readable; saving
always produces decrypted output.

# Reading

Open a pack and list or read entries:

	p, err := pack.Open("mod.pack")
	if err != nil {
	    return err
	}
	defer p.Close()
	for _, path := range p.Paths() {
	    f, _ := p.File(path)
	    data, _ := f.Data()
	    // use data
	}

Skip whole entry classes or load everything up front:

	p, err := pack.OpenWithOptions("mod.pack", pack.ReadOptions{
	    Skip:  []pack.FileKind{pack.KindImage},
	    Eager: true,
	})

# Editing

Entries are inserted, replaced, renamed and removed in memory:

	f, err := pack.NewFile("db/units_tables/my_mod", rows)
	if err != nil {
	    return err
	}
	if err := p.Insert(f); err != nil {
	    return err
	}
	p.SetNotes("my mod, v2")
	p.SetDependencies([]string{"base.pack"})

# Saving

Save reconciles compression with the target format and writes the archive
in deterministic order (case-insensitive by path). Table entries are never
compressed. Examples below use github.com/woozymasta/pathrules for
compression filters:

	err := p.SaveToWithOptions("mod.pack", pack.SaveOptions{
	    Compression: pack.CompressZstd,
	    CompressRules: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "*.lua"},
	        {Action: pathrules.ActionInclude, Pattern: "ui/**"},
	    },
	})

# Extracting

Extract entries to a directory with a bounded worker pool:

	err := p.Extract(ctx, "out/", pack.ExtractOptions{MaxWorkers: 4})

Archive paths are sanitized to filesystem-safe relative paths; traversal
segments and absolute prefixes are rejected.

# Shared access

Service serializes all pack access through one goroutine for callers that
mutate a pack from several goroutines:

	svc := pack.NewService(pack.ServiceOptions{})
	defer svc.Stop()
	if err := svc.Open("mod.pack", pack.ReadOptions{}); err != nil {
	    return err
	}
	data, err := svc.Read("db/units_tables/data__")

Table payloads decode with the schema-driven codec in the table and schema
subpackages; battle map binaries decode with the fastbin subpackage.
*/
package pack
