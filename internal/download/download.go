// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download retrieves archive data products for observation groups.
// It lists products through the Mashup products service, fetches each file
// to a local directory, and writes a manifest per observation.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/archive-scout/internal/httputil"
	"github.com/pdiddy/archive-scout/internal/mast"
	"github.com/pdiddy/archive-scout/pkg/types"
)

// fileDownloadBase is the MAST file retrieval endpoint. Declared as a var
// so tests can substitute an httptest server.
var fileDownloadBase = "https://mast.stsci.edu/api/v0.1/Download/file"

// productsService is the Mashup service listing data products per obsid.
const productsService = "Mast.Caom.Products"

// minRecommendedGroup is the product group label for the archive's minimum
// recommended product set.
const minRecommendedGroup = "Minimum Recommended Products"

// ProductLister lists data products for observation groups. *mast.Client
// satisfies it.
type ProductLister interface {
	ServiceRequest(ctx context.Context, service, columns string, filters []mast.Filter, pageSize int) ([]types.Record, error)
}

// BatchResult holds the outcome of a download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) addAll(other BatchResult) {
	r.Downloaded += other.Downloaded
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// Products lists the data products for one observation group. When
// minRecommended is set, only the archive's minimum recommended set is
// returned.
func Products(ctx context.Context, lister ProductLister, obsID string, minRecommended bool) ([]types.Record, error) {
	filters := []mast.Filter{mast.DiscreteFilter("obsid", obsID)}
	rows, err := lister.ServiceRequest(ctx, productsService, "*", filters, 0)
	if err != nil {
		return nil, fmt.Errorf("listing products for obsid %s: %w", obsID, err)
	}
	if !minRecommended {
		return rows, nil
	}
	var kept []types.Record
	for _, row := range rows {
		if row.Str("productGroupDescription") == minRecommendedGroup {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// Observation downloads all products of one observation group into
// cfg.ProductsDir/[obsID]/. Files already on disk are skipped; individual
// file failures are reported and counted but do not abort the rest of the
// group. A manifest.yaml describing the downloaded products is written on
// completion.
func Observation(ctx context.Context, client *http.Client, lister ProductLister, obsID string, cfg types.DownloadConfig, w io.Writer) (BatchResult, error) {
	products, err := Products(ctx, lister, obsID, cfg.MinRecommended)
	if err != nil {
		return BatchResult{}, err
	}
	if len(products) == 0 {
		fmt.Fprintf(w, "obsid %s: no products\n", obsID)
		return BatchResult{}, nil
	}

	destDir := filepath.Join(cfg.ProductsDir, obsID)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	var result BatchResult
	for i, p := range products {
		uri := p.Str("dataURI")
		name := p.Str("productFilename")
		if name == "" {
			name = filepath.Base(uri)
		}
		if uri == "" || name == "" || name == "." {
			fmt.Fprintf(w, "failed:  product %d of obsid %s has no data URI\n", i+1, obsID)
			result.Failed++
			continue
		}

		destPath := filepath.Join(destDir, name)
		if _, err := os.Stat(destPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			result.Skipped++
			continue
		}

		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}

		fmt.Fprintf(w, "downloading: %s\n", name)
		if err := downloadFile(ctx, client, uri, destPath, cfg); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			result.Failed++
			continue
		}
		result.Downloaded++
	}

	if err := writeManifest(destDir, obsID, products, result); err != nil {
		fmt.Fprintf(w, "warning: manifest write failed for obsid %s: %v\n", obsID, err)
	}
	return result, nil
}

// Batch downloads products for multiple observation groups, printing
// per-group status and a summary. It continues after per-group failures.
func Batch(ctx context.Context, client *http.Client, lister ProductLister, obsIDs []string, cfg types.DownloadConfig, w io.Writer) BatchResult {
	var total BatchResult
	for _, obsID := range obsIDs {
		result, err := Observation(ctx, client, lister, obsID, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  obsid %s (%v)\n", obsID, err)
			total.Failed++
			continue
		}
		total.addAll(result)
	}
	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		total.Downloaded, total.Skipped, total.Failed, total.Total())
	return total
}

// downloadFile fetches a product by data URI to destPath using a temporary
// file. The archive throttles bulk retrieval, so 429/503 responses are
// retried with backoff.
func downloadFile(ctx context.Context, client *http.Client, dataURI, destPath string, cfg types.DownloadConfig) error {
	reqURL := fileDownloadBase + "?uri=" + url.QueryEscape(dataURI)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, dataURI)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// manifest is the per-observation record of what was downloaded.
type manifest struct {
	ObsID     string            `yaml:"obsid"`
	Timestamp time.Time         `yaml:"timestamp"`
	Files     []manifestFile    `yaml:"files"`
	Summary   map[string]int    `yaml:"summary"`
}

type manifestFile struct {
	Name    string `yaml:"name"`
	DataURI string `yaml:"data_uri"`
	Type    string `yaml:"type,omitempty"`
	Group   string `yaml:"group,omitempty"`
}

func writeManifest(destDir, obsID string, products []types.Record, result BatchResult) error {
	m := manifest{
		ObsID:     obsID,
		Timestamp: time.Now(),
		Summary: map[string]int{
			"downloaded": result.Downloaded,
			"skipped":    result.Skipped,
			"failed":     result.Failed,
		},
	}
	for _, p := range products {
		m.Files = append(m.Files, manifestFile{
			Name:    p.Str("productFilename"),
			DataURI: p.Str("dataURI"),
			Type:    p.Str("productType"),
			Group:   p.Str("productGroupDescription"),
		})
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(destDir, "manifest.yaml"), data, 0o644)
}
