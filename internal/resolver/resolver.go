package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Lookup bodies are an IP address, optionally wrapped in a small JSON
// object. Nothing legitimate comes close to this limit.
const maxBodySize = 512

const defaultTimeout = 10 * time.Second

// WebResolver looks up the caller's public IPv4 address using an
// ordered list of external echo services. Services are tried in order
// and the first syntactically valid answer wins; redundancy across
// services is the sole resilience mechanism, there are no per-service
// retries.
type WebResolver struct {
	httpClient  *http.Client
	serviceURLs []string
	timeout     time.Duration
	logger      zerolog.Logger
}

// ResolutionError aggregates the per-service failures of a resolve
// attempt in which no service produced a usable address.
type ResolutionError struct {
	Errs []error
}

func (e *ResolutionError) Error() string {
	if len(e.Errs) == 0 {
		return "no IP lookup services configured"
	}
	return fmt.Sprintf("all %d IP lookup services failed: %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *ResolutionError) Unwrap() []error {
	return e.Errs
}

// New creates a WebResolver over the given service URLs.
func New(serviceURLs []string, logger zerolog.Logger) *WebResolver {
	return &WebResolver{
		httpClient:  &http.Client{},
		serviceURLs: serviceURLs,
		timeout:     defaultTimeout,
		logger:      logger,
	}
}

// Resolve returns the first valid public IPv4 address reported by the
// configured services. It fails with *ResolutionError only when every
// service failed.
func (wr *WebResolver) Resolve(ctx context.Context) (string, error) {
	var errs []error
	for _, serviceURL := range wr.serviceURLs {
		ip, err := wr.lookup(ctx, serviceURL)
		if err != nil {
			wr.logger.Warn().Err(err).Str("service", serviceURL).Msg("IP lookup service failed")
			errs = append(errs, fmt.Errorf("%s: %w", serviceURL, err))
			continue
		}
		wr.logger.Info().Str("ip", ip).Str("service", serviceURL).Msg("Resolved public IP")
		return ip, nil
	}
	return "", &ResolutionError{Errs: errs}
}

func (wr *WebResolver) lookup(ctx context.Context, serviceURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, wr.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serviceURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := wr.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http request returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	return parseIPBody(body)
}

// parseIPBody extracts an IPv4 address from a service response, which
// is either the bare address or a JSON object with an "ip" field.
func parseIPBody(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") {
		var payload struct {
			IP string `json:"ip"`
		}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return "", fmt.Errorf("error decoding JSON response: %w", err)
		}
		text = strings.TrimSpace(payload.IP)
	}

	addr, err := netip.ParseAddr(text)
	if err != nil {
		return "", fmt.Errorf("error parsing IP address from response body: %w", err)
	}
	if !addr.Is4() {
		return "", fmt.Errorf("service returned a non-IPv4 address: %s", addr)
	}
	return addr.String(), nil
}
