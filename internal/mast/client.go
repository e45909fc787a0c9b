// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mast is a thin client for the MAST Mashup invoke API. It covers
// the two request shapes archive-scout needs: criteria queries against the
// CAOM observation catalog and raw filtered queries against an arbitrary
// Mashup service. Everything else the archive offers is out of scope.
package mast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/archive-scout/pkg/types"
)

// invokeBase is the Mashup invoke endpoint. Declared as a var so tests can
// substitute an httptest server.
var invokeBase = "https://mast.stsci.edu/api/v0/invoke"

// criteriaService is the CAOM filtered-observation service used by
// QueryCriteria.
const criteriaService = "Mast.Caom.Filtered"

// Client issues Mashup requests. Warnings receives non-fatal service
// messages (e.g. a filter name the service does not recognize); when nil
// such messages are dropped.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Token is an optional MAST auth token for exclusive-access data.
	Token string

	Warnings io.Writer
}

// Filter is one entry of a Mashup filtered service's filters list. Values
// holds either discrete values (strings) or a single {"min","max"} range.
type Filter struct {
	ParamName string `json:"paramName"`
	Values    []any  `json:"values"`
}

// DiscreteFilter builds a filter matching any of the given values exactly.
func DiscreteFilter(name string, values ...string) Filter {
	f := Filter{ParamName: name}
	for _, v := range values {
		f.Values = append(f.Values, v)
	}
	return f
}

// RangeFilter builds a filter matching values within [min, max] inclusive.
func RangeFilter(name string, min, max float64) Filter {
	return Filter{
		ParamName: name,
		Values:    []any{map[string]float64{"min": min, "max": max}},
	}
}

// CriteriaQuery describes one bounded-region, criteria-filtered observation
// query. SpectralConfig is the CAOM filters column value, which for
// spectrograph observations combines grating and filter as
// "GRATING;FILTER".
type CriteriaQuery struct {
	Collection     string
	Instrument     string
	RAMin, RAMax   float64
	DecMin, DecMax float64
	SpectralConfig string
	ExpMin, ExpMax float64
}

// QueryError is a transport or service failure. Zero matching rows is not
// an error; the service reports that as a COMPLETE response with no data.
type QueryError struct {
	Service string
	Status  string
	Msg     string
}

func (e *QueryError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s query failed (%s): %s", e.Service, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s query failed (%s)", e.Service, e.Status)
}

// QueryCriteria runs a CAOM criteria query and returns the matching rows in
// service order. No retries and no backoff: the first failure is returned
// to the caller as a *QueryError.
func (c *Client) QueryCriteria(ctx context.Context, q CriteriaQuery) ([]types.Record, error) {
	filters := []Filter{
		DiscreteFilter("obs_collection", q.Collection),
		DiscreteFilter("instrument_name", q.Instrument),
		RangeFilter("s_ra", q.RAMin, q.RAMax),
		RangeFilter("s_dec", q.DecMin, q.DecMax),
		RangeFilter("t_exptime", q.ExpMin, q.ExpMax),
	}
	if q.SpectralConfig != "" {
		filters = append(filters, DiscreteFilter("filters", q.SpectralConfig))
	}
	return c.invoke(ctx, criteriaService, "*", filters)
}

// ServiceRequest runs a raw filtered query against any Mashup service.
// columns is a comma-separated column list ("*" for all); pageSize caps the
// rows returned (0 leaves the service default in place).
func (c *Client) ServiceRequest(ctx context.Context, service, columns string, filters []Filter, pageSize int) ([]types.Record, error) {
	if service == "" {
		return nil, fmt.Errorf("service name is empty")
	}
	if columns == "" {
		columns = "*"
	}
	return c.invokePaged(ctx, service, columns, filters, pageSize)
}

// Mashup request/response envelopes.
type invokeRequest struct {
	Service string       `json:"service"`
	Format  string       `json:"format"`
	Params  invokeParams `json:"params"`
}

type invokeParams struct {
	Columns  string   `json:"columns"`
	Filters  []Filter `json:"filters"`
	PageSize int      `json:"pagesize,omitempty"`
	Page     int      `json:"page,omitempty"`
}

type invokeResponse struct {
	Status string         `json:"status"`
	Msg    string         `json:"msg"`
	Data   []types.Record `json:"data"`
}

func (c *Client) invoke(ctx context.Context, service, columns string, filters []Filter) ([]types.Record, error) {
	return c.invokePaged(ctx, service, columns, filters, 0)
}

// invokePaged posts one request envelope and decodes the response. The
// Mashup API takes the JSON envelope as a form-encoded "request" parameter.
func (c *Client) invokePaged(ctx context.Context, service, columns string, filters []Filter, pageSize int) ([]types.Record, error) {
	envelope := invokeRequest{
		Service: service,
		Format:  "json",
		Params: invokeParams{
			Columns:  columns,
			Filters:  filters,
			PageSize: pageSize,
		},
	}
	if pageSize > 0 {
		envelope.Params.Page = 1
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", service, err)
	}

	form := url.Values{"request": {string(payload)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, invokeBase,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &QueryError{Service: service, Status: "transport", Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &QueryError{
			Service: service,
			Status:  fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	var ir invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", service, err)
	}

	if ir.Status != "COMPLETE" {
		return nil, &QueryError{Service: service, Status: ir.Status, Msg: ir.Msg}
	}

	// COMPLETE with a message is the service flagging something it ignored
	// (typically an unrecognized filter). The rows are still good.
	if ir.Msg != "" && c.Warnings != nil {
		fmt.Fprintf(c.Warnings, "warning: %s: %s\n", service, ir.Msg)
	}

	return ir.Data, nil
}
