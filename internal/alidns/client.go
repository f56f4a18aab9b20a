// Package alidns is a minimal client for the Alibaba Cloud DNS RPC API
// (version 2015-01-09), covering the three operations a DDNS cycle
// needs: describe, add, and update of A records.
package alidns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultEndpoint = "https://alidns.aliyuncs.com"
	apiVersion      = "2015-01-09"

	defaultTimeout = 15 * time.Second
)

type Client struct {
	accessKeyID     string
	accessKeySecret string
	endpoint        string
	httpClient      *http.Client
	logger          zerolog.Logger

	// injectable for deterministic signatures in tests
	now   func() time.Time
	nonce func() string
}

type Option func(*Client)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a provider client from an access key pair.
func NewClient(accessKeyID, accessKeySecret string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		accessKeyID:     accessKeyID,
		accessKeySecret: accessKeySecret,
		endpoint:        defaultEndpoint,
		httpClient:      &http.Client{Timeout: defaultTimeout},
		logger:          logger,
		now:             time.Now,
		nonce:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DescribeSubdomainRecords lists the A records for rr under domainName.
// The API's RRKeyWord filter matches substrings, so results are
// filtered down to exact RR matches here.
func (c *Client) DescribeSubdomainRecords(ctx context.Context, domainName, rr string) ([]Record, error) {
	var resp describeDomainRecordsResponse
	err := c.do(ctx, "DescribeDomainRecords", map[string]string{
		"DomainName": domainName,
		"RRKeyWord":  rr,
		"Type":       "A",
	}, &resp)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(resp.DomainRecords.Record))
	for _, rec := range resp.DomainRecords.Record {
		if rec.RR == rr {
			records = append(records, rec)
		}
	}
	c.logger.Debug().
		Str("domain_name", domainName).
		Str("rr", rr).
		Int("matches", len(records)).
		Msg("Described domain records")
	return records, nil
}

// AddRecord creates an A record and returns its provider-assigned id.
func (c *Client) AddRecord(ctx context.Context, domainName, rr, value string, ttl int) (string, error) {
	var resp addDomainRecordResponse
	err := c.do(ctx, "AddDomainRecord", map[string]string{
		"DomainName": domainName,
		"RR":         rr,
		"Type":       "A",
		"Value":      value,
		"TTL":        strconv.Itoa(ttl),
	}, &resp)
	if err != nil {
		return "", err
	}
	c.logger.Info().
		Str("rr", rr).
		Str("domain_name", domainName).
		Str("value", value).
		Str("record_id", resp.RecordID).
		Msg("Added DNS record")
	return resp.RecordID, nil
}

// UpdateRecord rewrites the value and TTL of an existing A record.
func (c *Client) UpdateRecord(ctx context.Context, recordID, rr, value string, ttl int) error {
	var resp updateDomainRecordResponse
	err := c.do(ctx, "UpdateDomainRecord", map[string]string{
		"RecordId": recordID,
		"RR":       rr,
		"Type":     "A",
		"Value":    value,
		"TTL":      strconv.Itoa(ttl),
	}, &resp)
	if err != nil {
		return err
	}
	c.logger.Info().
		Str("rr", rr).
		Str("value", value).
		Str("record_id", recordID).
		Msg("Updated DNS record")
	return nil
}

// do performs a signed RPC-style GET and decodes the JSON response
// into out. Non-2xx responses with a provider error body become
// *APIError.
func (c *Client) do(ctx context.Context, action string, apiParams map[string]string, out any) error {
	params := url.Values{}
	params.Set("Action", action)
	params.Set("Format", "JSON")
	params.Set("Version", apiVersion)
	params.Set("AccessKeyId", c.accessKeyID)
	params.Set("SignatureMethod", "HMAC-SHA1")
	params.Set("SignatureVersion", "1.0")
	params.Set("SignatureNonce", c.nonce())
	params.Set("Timestamp", c.now().UTC().Format("2006-01-02T15:04:05Z"))
	for k, v := range apiParams {
		params.Set(k, v)
	}
	// Signature is computed over everything set so far and then
	// appended as its own parameter.
	params.Set("Signature", sign(http.MethodGet, c.accessKeySecret, params))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", action, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading %s response: %w", action, err)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr == nil && apiErr.Code != "" {
			return apiErr
		}
		return fmt.Errorf("%s returned %s: %s", action, resp.Status, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error decoding %s response: %w", action, err)
	}
	return nil
}
