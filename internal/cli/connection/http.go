package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/infra/buildinfo"
)

// HTTPClient talks to the request/response endpoints of the analysis service.
type HTTPClient struct {
	baseURL     string
	analyzePath string
	healthPath  string
	client      *http.Client
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status        string `json:"status" yaml:"status"`
	EngineRunning bool   `json:"engine_running" yaml:"engine_running"`
	Time          string `json:"time,omitempty" yaml:"time,omitempty"`
}

// NewHTTPClient creates a new HTTP client. A zero timeout means requests
// never time out.
func NewHTTPClient(server string, timeout time.Duration) *HTTPClient {
	// Ensure baseURL has http:// prefix
	baseURL := strings.TrimSuffix(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &HTTPClient{
		baseURL:     baseURL,
		analyzePath: "/analyze",
		healthPath:  "/health",
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithTLS sets the client TLS config for https servers. Nil keeps Go's
// defaults.
func (c *HTTPClient) WithTLS(cfg *tls.Config) *HTTPClient {
	if cfg != nil {
		c.client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: cfg,
		}
	}
	return c
}

// WithPaths overrides the endpoint paths. Empty values keep the defaults.
func (c *HTTPClient) WithPaths(analyzePath, healthPath string) *HTTPClient {
	if analyzePath != "" {
		c.analyzePath = analyzePath
	}
	if healthPath != "" {
		c.healthPath = healthPath
	}
	return c
}

// Analyze requests a single analysis of pos at depth.
func (c *HTTPClient) Analyze(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, error) {
	if pos.IsEmpty() {
		return domain.AnalysisResult{}, domain.ErrEmptyPosition
	}
	if depth <= 0 {
		depth = domain.DefaultDepth
	}

	resp, err := c.Post(ctx, c.analyzePath, domain.AnalysisRequest{Position: pos, Depth: depth})
	if err != nil {
		return domain.AnalysisResult{}, domain.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return domain.AnalysisResult{}, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AnalysisResult{}, domain.ErrTransport.WithCause(err)
	}
	return domain.DecodeAnalysisResult(data)
}

// Health queries the health endpoint.
func (c *HTTPClient) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	resp, err := c.Get(ctx, c.healthPath)
	if err != nil {
		return hs, domain.ErrTransport.WithCause(err)
	}
	if err := ParseResponse(resp, &hs); err != nil {
		return hs, err
	}
	return hs, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req)
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.client.Do(req)
}

func (c *HTTPClient) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent("evalboard"))
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ParseResponse parses a JSON response body into the target struct.
// Non-2xx responses are returned as ErrFallbackFailed.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return domain.ErrMalformedResponse.WithCause(err)
		}
	}

	return nil
}

// checkStatus turns a non-2xx response into a descriptive error. The body
// is consumed on failure.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
		return domain.ErrFallbackFailed.WithDetails(fmt.Sprintf("[%s] %s", errResp.Code, errResp.Message))
	}
	return domain.ErrFallbackFailed.WithDetails(fmt.Sprintf("request failed with status %d", resp.StatusCode))
}
