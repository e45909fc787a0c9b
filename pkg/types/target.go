// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CandidateTarget is one proposed observation from the planner's catalog.
// Positions are in decimal degrees (ICRS), exposure in seconds. Aperture
// names the instrument mode and must resolve in the aperture table before
// any archive query is made.
type CandidateTarget struct {
	ID              string  `json:"id" yaml:"id"`
	RA              float64 `json:"ra" yaml:"ra"`
	Dec             float64 `json:"dec" yaml:"dec"`
	Grating         string  `json:"grating" yaml:"grating"`
	Filter          string  `json:"filter" yaml:"filter"`
	ExposureSeconds float64 `json:"exposure_seconds" yaml:"exposure_seconds"`
	Aperture        string  `json:"aperture" yaml:"aperture"`
}
