// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"log/slog"
	"sync"
)

// Service owns one Pack and serializes all access to it through a single
// goroutine, so callers on any goroutine get a safe mutation API without
// locking the Pack itself.
type Service struct {
	requests chan serviceRequest
	done     chan struct{}
	stopOnce sync.Once
	log      *slog.Logger
}

type serviceRequest struct {
	fn     func(p **Pack) error
	result chan error
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Logger receives debug events; nil discards them.
	Logger *slog.Logger
}

// NewService starts the owning goroutine with no pack loaded.
func NewService(opts ServiceOptions) *Service {
	s := &Service{
		requests: make(chan serviceRequest),
		done:     make(chan struct{}),
		log:      logOrDiscard(opts.Logger),
	}

	go s.loop()
	return s
}

func (s *Service) loop() {
	var current *Pack
	for {
		select {
		case <-s.done:
			if current != nil {
				_ = current.Close()
			}

			return
		case req := <-s.requests:
			req.result <- req.fn(&current)
		}
	}
}

// Stop shuts the service down and releases the loaded pack. Calls issued
// after Stop fail with ErrServiceStopped.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Service) do(fn func(p **Pack) error) error {
	req := serviceRequest{fn: fn, result: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return ErrServiceStopped
	}

	select {
	case err := <-req.result:
		return err
	case <-s.done:
		return ErrServiceStopped
	}
}

// withPack runs fn against the loaded pack, failing when none is loaded.
func (s *Service) withPack(fn func(p *Pack) error) error {
	return s.do(func(p **Pack) error {
		if *p == nil {
			return ErrNoPackLoaded
		}

		return fn(*p)
	})
}

// Open loads a pack file, replacing and closing any previously loaded one.
func (s *Service) Open(path string, opts ReadOptions) error {
	return s.do(func(p **Pack) error {
		opened, err := OpenWithOptions(path, opts)
		if err != nil {
			return err
		}

		if *p != nil {
			_ = (*p).Close()
		}

		*p = opened
		s.log.Debug("service opened pack", "path", path)
		return nil
	})
}

// NewPack replaces the loaded pack with a fresh empty one.
func (s *Service) NewPack() error {
	return s.do(func(p **Pack) error {
		if *p != nil {
			_ = (*p).Close()
		}

		*p = New()
		return nil
	})
}

// Save writes the loaded pack to a file.
func (s *Service) Save(path string, opts SaveOptions) error {
	return s.withPack(func(p *Pack) error {
		return p.SaveToWithOptions(path, opts)
	})
}

// List returns every entry path in save order.
func (s *Service) List() ([]string, error) {
	var out []string
	err := s.withPack(func(p *Pack) error {
		out = p.Paths()
		return nil
	})

	return out, err
}

// Read returns one entry's decoded payload.
func (s *Service) Read(path string) ([]byte, error) {
	var out []byte
	err := s.withPack(func(p *Pack) error {
		f, err := p.File(path)
		if err != nil {
			return err
		}

		data, err := f.Data()
		if err != nil {
			return err
		}

		out = data
		return nil
	})

	return out, err
}

// Add inserts or replaces an entry with a raw payload.
func (s *Service) Add(path string, data []byte) error {
	return s.withPack(func(p *Pack) error {
		f, err := NewFile(path, data)
		if err != nil {
			return err
		}

		return p.Insert(f)
	})
}

// Remove deletes an entry.
func (s *Service) Remove(path string) error {
	return s.withPack(func(p *Pack) error {
		return p.Remove(path)
	})
}

// Rename moves an entry.
func (s *Service) Rename(oldPath, newPath string) error {
	return s.withPack(func(p *Pack) error {
		return p.Rename(oldPath, newPath)
	})
}

// Notes returns the loaded pack's notes.
func (s *Service) Notes() (string, error) {
	var out string
	err := s.withPack(func(p *Pack) error {
		out = p.Notes()
		return nil
	})

	return out, err
}

// SetNotes replaces the loaded pack's notes.
func (s *Service) SetNotes(notes string) error {
	return s.withPack(func(p *Pack) error {
		p.SetNotes(notes)
		return nil
	})
}

// Dependencies returns the loaded pack's dependency list.
func (s *Service) Dependencies() ([]string, error) {
	var out []string
	err := s.withPack(func(p *Pack) error {
		out = p.Dependencies()
		return nil
	})

	return out, err
}

// SetDependencies replaces the loaded pack's dependency list.
func (s *Service) SetDependencies(deps []string) error {
	return s.withPack(func(p *Pack) error {
		p.SetDependencies(deps)
		return nil
	})
}
