// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dupcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/archive-scout/pkg/types"
)

const sampleCatalogYAML = `targets:
  - id: goods-s-deep
    ra: 53.13
    dec: -27.8
    grating: G395H
    filter: F290LP
    exposure_seconds: 950
    aperture: MSA
  - id: slit-target
    ra: 150.1
    dec: 2.2
    grating: G140M
    filter: F100LP
    exposure_seconds: 1200
    aperture: S400A1
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCatalog(t *testing.T) {
	targets, err := ReadCatalog(writeCatalog(t, sampleCatalogYAML))
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, "goods-s-deep", targets[0].ID)
	assert.Equal(t, 53.13, targets[0].RA)
	assert.Equal(t, -27.8, targets[0].Dec)
	assert.Equal(t, "G395H", targets[0].Grating)
	assert.Equal(t, "F290LP", targets[0].Filter)
	assert.Equal(t, 950.0, targets[0].ExposureSeconds)
	assert.Equal(t, "MSA", targets[0].Aperture)

	assert.Equal(t, "S400A1", targets[1].Aperture)
}

func TestReadCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"empty targets", "targets: []\n", "no targets"},
		{"missing id", "targets:\n  - ra: 1.0\n    aperture: MSA\n", "has no id"},
		{"duplicate id", "targets:\n  - id: a\n    aperture: MSA\n  - id: a\n    aperture: IFU\n", "duplicate target id"},
		{"malformed yaml", "targets: [\n", "parsing catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCatalog(writeCatalog(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestReadCatalogMissingFile(t *testing.T) {
	_, err := ReadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading catalog")
}

func TestReportFileRoundTrip(t *testing.T) {
	catalog := []types.CandidateTarget{{
		ID: "goods-s-deep", RA: 53.13, Dec: -27.8,
		Grating: "G395H", Filter: "F290LP",
		ExposureSeconds: 950, Aperture: "MSA",
	}}
	report := &Report{
		Targets: map[string][]types.Record{
			"goods-s-deep": {{"obsid": "1", "proposal_id": "100"}},
		},
		Order:          []string{"goods-s-deep"},
		ProposalIDs:    []int{100},
		ObservationIDs: []string{"1"},
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, WriteReportFile(path, catalog, report))

	rf, err := ReadReportFile(path)
	require.NoError(t, err)

	require.Len(t, rf.Catalog, 1)
	assert.Equal(t, "goods-s-deep", rf.Catalog[0].ID)
	assert.Equal(t, []int{100}, rf.Report.ProposalIDs)
	assert.Equal(t, []string{"1"}, rf.Report.ObservationIDs)
	assert.Equal(t, 1, rf.Summary.Queries)
	assert.Equal(t, 1, rf.Summary.RowsMatched)
	assert.Equal(t, 1, rf.Summary.ProposalsFound)
	assert.False(t, rf.Summary.Timestamp.IsZero())

	rows := rf.Report.Targets["goods-s-deep"]
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ObsID())
}

func TestReadReportFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report: ["), 0o644))
	_, err := ReadReportFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing report file")
}
