// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dupcheck

import (
	"context"
	"fmt"

	"github.com/pdiddy/archive-scout/internal/mast"
	"github.com/pdiddy/archive-scout/pkg/types"
)

// exposureFactor bounds the exposure-time match window: an archive row
// duplicates a candidate when its exposure is within a factor of 4
// (inclusive) of the candidate's.
const exposureFactor = 4.0

// MOSSuffix is appended to a target ID to key the companion MSA-mode result
// set in a report.
const MOSSuffix = "MOS"

// Querier is the archive collaborator the matcher delegates to.
type Querier interface {
	QueryCriteria(ctx context.Context, q mast.CriteriaQuery) ([]types.Record, error)
}

// Matcher runs duplication checks against an archive.
type Matcher struct {
	Archive Querier

	// Collection restricts queries to one archive collection; empty means
	// "JWST".
	Collection string
}

// Candidates holds the archive rows matched for one target. Rows and
// MOSRows are kept distinct and are never merged; each preserves the order
// the service returned.
type Candidates struct {
	// Rows are the results of the target's own-mode query.
	Rows []types.Record

	// MOSRows are the results of the companion MSA-mode query, issued only
	// for non-MSA targets. HasMOS distinguishes "companion query returned
	// nothing" from "no companion query was made".
	MOSRows []types.Record
	HasMOS  bool
}

// FindCandidates queries the archive for existing observations that
// plausibly duplicate target: position within the mode's search box, same
// grating and filter, exposure within a factor of 4. An unknown aperture
// key fails with a *ConfigError before any query is issued. Query failures
// propagate immediately; an empty result set is the normal representation
// of "no duplicates found".
func (m *Matcher) FindCandidates(ctx context.Context, target types.CandidateTarget) (Candidates, error) {
	ap, err := Profile(target.Aperture)
	if err != nil {
		return Candidates{}, err
	}

	rows, err := m.queryMode(ctx, target, ap)
	if err != nil {
		return Candidates{}, fmt.Errorf("target %s: %w", target.ID, err)
	}
	c := Candidates{Rows: rows}

	// MOS programs can cover fixed-slit and IFU targets, so every non-MSA
	// candidate also gets checked against MSA-mode holdings.
	if target.Aperture != msaKey {
		msa := apertures[msaKey]
		mosRows, err := m.queryMode(ctx, target, msa)
		if err != nil {
			return Candidates{}, fmt.Errorf("target %s%s: %w", target.ID, MOSSuffix, err)
		}
		c.MOSRows = mosRows
		c.HasMOS = true
	}

	return c, nil
}

// queryMode issues one criteria query for target under the given aperture's
// instrument label. The search radius is the aperture's own; the companion
// MSA query reuses the target's spatial, spectral, and exposure constraints
// with the MSA label and radius.
func (m *Matcher) queryMode(ctx context.Context, target types.CandidateTarget, ap Aperture) ([]types.Record, error) {
	collection := m.Collection
	if collection == "" {
		collection = "JWST"
	}
	r := ap.SearchRadiusDeg
	q := mast.CriteriaQuery{
		Collection:     collection,
		Instrument:     ap.Instrument,
		RAMin:          target.RA - r,
		RAMax:          target.RA + r,
		DecMin:         target.Dec - r,
		DecMax:         target.Dec + r,
		SpectralConfig: SpectralConfig(target.Grating, target.Filter),
		ExpMin:         target.ExposureSeconds / exposureFactor,
		ExpMax:         target.ExposureSeconds * exposureFactor,
	}
	return m.Archive.QueryCriteria(ctx, q)
}

// SpectralConfig combines grating and filter the way the archive stores
// them in the filters column ("G395H;F290LP").
func SpectralConfig(grating, filter string) string {
	switch {
	case grating == "":
		return filter
	case filter == "":
		return grating
	default:
		return grating + ";" + filter
	}
}

// Report aggregates duplication-check results across a catalog.
type Report struct {
	// Targets maps each target ID (and ID+"MOS" for companion queries) to
	// its result rows in service order. Order lists the keys in insertion
	// order for deterministic output.
	Targets map[string][]types.Record `json:"targets" yaml:"targets"`
	Order   []string                  `json:"-" yaml:"-"`

	// ProposalIDs and ObservationIDs are the conflicting identifiers
	// aggregated across all targets, deduplicated, first occurrence first.
	ProposalIDs    []int    `json:"proposal_ids" yaml:"proposal_ids"`
	ObservationIDs []string `json:"observation_ids" yaml:"observation_ids"`
}

// TotalRows returns the number of archive rows across all result sets.
func (r *Report) TotalRows() int {
	n := 0
	for _, rows := range r.Targets {
		n += len(rows)
	}
	return n
}

// BuildDuplicateReport runs FindCandidates for every catalog entry in input
// order and reduces the combined results. All aperture keys are validated
// up front so a bad catalog entry fails before the first network call. A
// query failure aborts the report; partial results are not returned.
func (m *Matcher) BuildDuplicateReport(ctx context.Context, catalog []types.CandidateTarget) (*Report, error) {
	for _, t := range catalog {
		if _, err := Profile(t.Aperture); err != nil {
			return nil, fmt.Errorf("target %s: %w", t.ID, err)
		}
	}

	report := &Report{Targets: make(map[string][]types.Record)}
	proposals := newOrderedIntSet()
	observations := newOrderedStringSet()

	for _, target := range catalog {
		c, err := m.FindCandidates(ctx, target)
		if err != nil {
			return nil, err
		}

		report.Targets[target.ID] = c.Rows
		report.Order = append(report.Order, target.ID)
		sets := [][]types.Record{c.Rows}
		if c.HasMOS {
			key := target.ID + MOSSuffix
			report.Targets[key] = c.MOSRows
			report.Order = append(report.Order, key)
			sets = append(sets, c.MOSRows)
		}

		for _, rows := range sets {
			for _, row := range rows {
				if id, err := row.ProposalID(); err == nil {
					proposals.add(id)
				}
				if obsid := row.ObsID(); obsid != "" {
					observations.add(obsid)
				}
			}
		}
	}

	report.ProposalIDs = proposals.values
	report.ObservationIDs = observations.values
	return report, nil
}

// orderedIntSet keeps first-occurrence insertion order.
type orderedIntSet struct {
	seen   map[int]struct{}
	values []int
}

func newOrderedIntSet() *orderedIntSet {
	return &orderedIntSet{seen: make(map[int]struct{})}
}

func (s *orderedIntSet) add(v int) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

type orderedStringSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedStringSet() *orderedStringSet {
	return &orderedStringSet{seen: make(map[string]struct{})}
}

func (s *orderedStringSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}
