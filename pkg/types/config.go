// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that talk to MAST.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout; archive
	// queries can legitimately take minutes on wide boxes.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "archive-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DupCheckConfig holds settings for the duplication-check stage.
type DupCheckConfig struct {
	HTTPConfig `yaml:",inline"`

	// Collection restricts criteria queries to one archive collection
	// (default "JWST").
	Collection string `json:"collection" yaml:"collection"`
}

// QueryConfig holds settings for raw filtered service queries.
type QueryConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize caps the rows requested per service call (default 5000).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// DownloadConfig holds settings for the product download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// ProductsDir is the base directory for downloaded products; each
	// observation gets a subdirectory named after its obsid.
	ProductsDir string `json:"products_dir" yaml:"products_dir"`

	// DownloadDelay is the delay between consecutive file downloads
	// (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// MinRecommended filters the product list to the archive's minimum
	// recommended set when true.
	MinRecommended bool `json:"min_recommended" yaml:"min_recommended"`
}

// HistoryConfig holds settings for the local run-history store.
type HistoryConfig struct {
	// HistoryDir is the directory holding the SQLite database
	// (default ".archive-scout").
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of listed runs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ScoutConfig groups all stage configurations.
type ScoutConfig struct {
	DupCheck DupCheckConfig `json:"dupcheck" yaml:"dupcheck"`
	Query    QueryConfig    `json:"query" yaml:"query"`
	Download DownloadConfig `json:"download" yaml:"download"`
	History  HistoryConfig  `json:"history" yaml:"history"`
}
