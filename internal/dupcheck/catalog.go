// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dupcheck

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/archive-scout/pkg/types"
)

// Catalog is the on-disk representation of a candidate catalog.
type Catalog struct {
	Targets []types.CandidateTarget `yaml:"targets"`
}

// ReadCatalog loads a candidate catalog from a YAML file. IDs must be
// present and unique; aperture keys are validated later, when the report is
// built, so a catalog file with unknown modes can still be inspected.
func ReadCatalog(path string) ([]types.CandidateTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if len(cat.Targets) == 0 {
		return nil, fmt.Errorf("catalog %s contains no targets", path)
	}

	seen := make(map[string]struct{}, len(cat.Targets))
	for i, t := range cat.Targets {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog %s: target %d has no id", path, i+1)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate target id %q", path, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return cat.Targets, nil
}

// ReportFile is the on-disk representation of a finished duplication check.
// The planner can save a run and revisit it without re-querying the archive.
type ReportFile struct {
	Catalog []types.CandidateTarget `yaml:"catalog"`
	Report  *Report                 `yaml:"report"`
	Summary ReportSummary           `yaml:"summary"`
}

// ReportSummary stores result statistics and a timestamp.
type ReportSummary struct {
	Queries        int       `yaml:"queries"`
	RowsMatched    int       `yaml:"rows_matched"`
	ProposalsFound int       `yaml:"proposals_found"`
	Timestamp      time.Time `yaml:"timestamp"`
}

// WriteReportFile saves a catalog and its duplication report to a YAML file.
func WriteReportFile(path string, catalog []types.CandidateTarget, report *Report) error {
	rf := ReportFile{
		Catalog: catalog,
		Report:  report,
		Summary: ReportSummary{
			Queries:        len(report.Order),
			RowsMatched:    report.TotalRows(),
			ProposalsFound: len(report.ProposalIDs),
			Timestamp:      time.Now(),
		},
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling report file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReportFile loads a previously saved report file from disk.
func ReadReportFile(path string) (*ReportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report file: %w", err)
	}
	var rf ReportFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing report file %s: %w", path, err)
	}
	return &rf, nil
}
