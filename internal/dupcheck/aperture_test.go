// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dupcheck

import (
	"errors"
	"math"
	"sort"
	"strings"
	"testing"
)

func TestProfileKnownModes(t *testing.T) {
	tests := []struct {
		key        string
		radius     float64
		instrument string
	}{
		{"MSA", 0.5, "NIRSPEC/MSA"},
		{"IFU", 3.0 / 360, "NIRSPEC/IFU"},
		{"S1600A1", 1.6 / 360, "NIRSPEC/SLIT"},
		{"S200A1", 0.2 / 360, "NIRSPEC/SLIT"},
		{"S200A2", 0.2 / 360, "NIRSPEC/SLIT"},
		{"S400A1", 0.4 / 360, "NIRSPEC/SLIT"},
		{"S200B1", 0.2 / 360, "NIRSPEC/SLIT"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ap, err := Profile(tt.key)
			if err != nil {
				t.Fatalf("Profile(%q): %v", tt.key, err)
			}
			if math.Abs(ap.SearchRadiusDeg-tt.radius) > 1e-12 {
				t.Errorf("radius = %v, want %v", ap.SearchRadiusDeg, tt.radius)
			}
			if ap.Instrument != tt.instrument {
				t.Errorf("instrument = %q, want %q", ap.Instrument, tt.instrument)
			}
		})
	}
}

func TestProfileUnknownKey(t *testing.T) {
	_, err := Profile("S400B1")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
	if ce.Aperture != "S400B1" {
		t.Errorf("Aperture = %q, want S400B1", ce.Aperture)
	}
	// The message lists the known modes so a typo is easy to spot.
	if !strings.Contains(err.Error(), "MSA") || !strings.Contains(err.Error(), "S1600A1") {
		t.Errorf("error = %q, should list known apertures", err.Error())
	}
}

func TestApertureKeysSortedAndComplete(t *testing.T) {
	keys := ApertureKeys()
	if len(keys) != len(apertures) {
		t.Fatalf("len(keys) = %d, want %d", len(keys), len(apertures))
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("keys not sorted: %v", keys)
	}
}
