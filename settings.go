// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Settings is the typed pack settings blob, stored inside the archive as a
// reserved JSON entry. Unknown keys from other tools survive a round trip
// through Extra.
type Settings struct {
	// DiagnosticsIgnored lists entry paths excluded from validation tooling.
	DiagnosticsIgnored []string `json:"diagnostics_files_to_ignore,omitempty"`
	// ImportedPaths maps entry paths to the disk locations they came from.
	ImportedPaths map[string]string `json:"imported_files,omitempty"`
	// Text holds free-form string settings keyed by tool-defined names.
	Text map[string]string `json:"settings_text,omitempty"`
	// Toggles holds boolean settings keyed by tool-defined names.
	Toggles map[string]bool `json:"settings_bool,omitempty"`

	// Extra carries keys this tool does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// IsZero reports whether the settings carry nothing worth persisting.
func (s Settings) IsZero() bool {
	return len(s.DiagnosticsIgnored) == 0 &&
		len(s.ImportedPaths) == 0 &&
		len(s.Text) == 0 &&
		len(s.Toggles) == 0 &&
		len(s.Extra) == 0
}

// settingsKeys are the JSON keys the typed fields own.
var settingsKeys = map[string]bool{
	"diagnostics_files_to_ignore": true,
	"imported_files":              true,
	"settings_text":               true,
	"settings_bool":               true,
}

// decodeSettings parses a settings payload, keeping unknown keys intact.
func decodeSettings(data []byte) (Settings, error) {
	var s Settings
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	for key, value := range raw {
		if settingsKeys[key] {
			continue
		}

		if s.Extra == nil {
			s.Extra = make(map[string]json.RawMessage)
		}

		s.Extra[key] = value
	}

	return s, nil
}

// encodeSettings serializes the settings payload, merging Extra back in.
func encodeSettings(s Settings) ([]byte, error) {
	typed, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	if len(s.Extra) == 0 {
		return typed, nil
	}

	merged := make(map[string]json.RawMessage, len(s.Extra)+4)
	if err := json.Unmarshal(typed, &merged); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	for key, value := range s.Extra {
		if settingsKeys[key] {
			continue
		}

		merged[key] = value
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	return out, nil
}
