// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for archive-scout: archive
// rows, candidate targets, and per-stage configuration.
package types

import (
	"fmt"
	"strconv"
)

// Record is a single row returned by the archive. The archive decides the
// column set per service, so rows stay schemaless; accessors interpret only
// the handful of columns archive-scout cares about.
type Record map[string]any

// Str returns the named column as a string, or "" when absent. Numeric
// values are formatted, since MAST returns some identifier columns as
// numbers depending on the service.
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64. Identifiers are integral.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Float returns the named column as a float64. The second return value
// reports whether the column was present and numeric (or a parseable
// numeric string).
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ProposalID returns the proposal_id column as an integer.
func (r Record) ProposalID() (int, error) {
	s := r.Str("proposal_id")
	if s == "" {
		return 0, fmt.Errorf("record has no proposal_id")
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing proposal_id %q: %w", s, err)
	}
	return id, nil
}

// ObsID returns the obsid column as a string. MAST obsids are numeric but
// are treated as opaque identifiers, not arithmetic values.
func (r Record) ObsID() string {
	return r.Str("obsid")
}
