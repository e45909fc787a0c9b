// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dupcheck matches proposed spectrograph observations against
// existing archive holdings. For each candidate target it runs a bounded-box
// criteria query (plus a multi-object companion query for non-MSA modes) and
// reduces the results to a deduplicated list of conflicting proposal and
// observation identifiers.
package dupcheck

import (
	"fmt"
	"sort"
	"strings"
)

// Aperture holds the per-mode duplication search parameters.
type Aperture struct {
	// SearchRadiusDeg is the half-width of the duplication search box,
	// in degrees.
	SearchRadiusDeg float64

	// Instrument is the archive-recognized instrument/mode label sent as
	// the instrument_name criteria value.
	Instrument string
}

// msaKey is the multi-object (MSA/MOS) mode. MOS observations can duplicate
// fixed-slit and IFU targets, so non-MSA candidates also get a companion
// query under this mode.
const msaKey = "MSA"

// apertures maps each mode to its search radius and archive label. Radii
// derive from the physical aperture size in arcseconds divided by 360.
//
// TODO: 1/360 deg per arcsec overshoots the true conversion (1/3600), so
// these boxes are ten times wider than the apertures; confirm the intended
// search widths before tightening.
var apertures = map[string]Aperture{
	"MSA":     {SearchRadiusDeg: 180.0 / 360, Instrument: "NIRSPEC/MSA"},
	"IFU":     {SearchRadiusDeg: 3.0 / 360, Instrument: "NIRSPEC/IFU"},
	"S1600A1": {SearchRadiusDeg: 1.6 / 360, Instrument: "NIRSPEC/SLIT"},
	"S200A1":  {SearchRadiusDeg: 0.2 / 360, Instrument: "NIRSPEC/SLIT"},
	"S200A2":  {SearchRadiusDeg: 0.2 / 360, Instrument: "NIRSPEC/SLIT"},
	"S400A1":  {SearchRadiusDeg: 0.4 / 360, Instrument: "NIRSPEC/SLIT"},
	"S200B1":  {SearchRadiusDeg: 0.2 / 360, Instrument: "NIRSPEC/SLIT"},
}

// ConfigError reports a candidate whose aperture key has no entry in the
// aperture table. It is raised before any archive query is attempted.
type ConfigError struct {
	Aperture string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown aperture %q (known: %s)",
		e.Aperture, strings.Join(ApertureKeys(), ", "))
}

// Profile resolves an aperture key against the mode table.
func Profile(key string) (Aperture, error) {
	a, ok := apertures[key]
	if !ok {
		return Aperture{}, &ConfigError{Aperture: key}
	}
	return a, nil
}

// ApertureKeys returns the known aperture keys in sorted order.
func ApertureKeys() []string {
	keys := make([]string, 0, len(apertures))
	for k := range apertures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
