package registry

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/metrics"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 10 * time.Second

// Client is a shared HTTP client for the Query and Connection APIs. It
// takes absolute URLs because Connection APIs live on the nodes, not the
// registry.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client for a registry's TLS settings.
func NewClient(reg *models.Registry, logger *zap.Logger) *Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if reg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	} else if reg.CACert != "" {
		caCertPool := x509.NewCertPool()
		if caCertPool.AppendCertsFromPEM([]byte(reg.CACert)) {
			transport.TLSClientConfig = &tls.Config{RootCAs: caCertPool}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// Get performs a GET and returns the response body and headers.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, http.Header, error) {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, resp, err := c.do(req)
	if err != nil {
		return body, nil, err
	}
	return body, resp.Header, nil
}

// GetJSON performs a GET and unmarshals the response into dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, dest interface{}) (http.Header, error) {
	body, header, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return nil, fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return header, nil
}

// Patch performs a PATCH with a JSON body and returns the response body.
func (c *Client) Patch(ctx context.Context, rawURL string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, rawURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, _, err := c.do(req)
	return body, err
}

// do sends req and classifies failures: transport errors and unexpected
// statuses become *NetworkError, 404 wraps ErrNotFound and 400 becomes
// *ValidationError.
func (c *Client) do(req *http.Request) ([]byte, *http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(req.Method, "error").Inc()
		c.logger.Debug("upstream request failed",
			zap.String("method", req.Method), zap.String("url", req.URL.String()), zap.Error(err))
		return nil, nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: fmt.Errorf("reading response: %w", err)}
	}
	metrics.UpstreamRequests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("upstream request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, resp, nil
	case resp.StatusCode == http.StatusNotFound:
		return body, resp, fmt.Errorf("%s %s: %w", req.Method, req.URL.String(), ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return body, resp, &ValidationError{Message: errorMessage(body)}
	default:
		return body, resp, &NetworkError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}
}

// errorMessage extracts "error" and "debug" from an NMOS error response,
// falling back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
		Debug string `json:"debug"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.Debug != "" {
			return e.Error + ": " + e.Debug
		}
		return e.Error
	}
	return truncate(string(body), 200)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
