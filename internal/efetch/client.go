// Package efetch retrieves raw PubMed XML records from NCBI E-utilities.
package efetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the E-utilities efetch endpoint.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 3 requests per second without an API key per NCBI usage policy.
	RateLimit = 3.0

	// RateLimitWithKey is the limit granted to registered API keys.
	RateLimitWithKey = 10.0

	// DefaultTool identifies this client to NCBI.
	DefaultTool = "pubmedxml"

	// MaxResponseSize caps the body read for a single record.
	MaxResponseSize = 32 * 1024 * 1024
)

// Cache stores raw XML by PMID. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, pmid string) (string, bool, error)
	Put(ctx context.Context, pmid, xml string) error
}

// Client is a rate-limited HTTP client for efetch.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	email      string
	tool       string
	baseURL    string
	cache      Cache
	rps        float64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the NCBI API key, which also raises the rate limit.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithEmail sets the contact address NCBI asks tools to send.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithTool sets the tool name reported to NCBI.
func WithTool(tool string) ClientOption {
	return func(c *Client) {
		c.tool = tool
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCache serves repeated lookups from cache.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithRateLimit overrides the requests-per-second limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.rps = rps
	}
}

// NewClient creates a new efetch client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
		tool:       DefaultTool,
	}

	// Check for API key in environment
	if key := os.Getenv("NCBI_API_KEY"); key != "" {
		c.apiKey = key
	}
	if email := os.Getenv("NCBI_EMAIL"); email != "" {
		c.email = email
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rps <= 0 {
		c.rps = RateLimit
		if c.apiKey != "" {
			c.rps = RateLimitWithKey
		}
	}
	c.limiter = rate.NewLimiter(rate.Limit(c.rps), 1)

	return c
}

// ValidatePMID checks that id is a bare positive integer.
func ValidatePMID(id string) error {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 || strings.TrimSpace(id) != id {
		return fmt.Errorf("%w: %q", ErrInvalidPMID, id)
	}
	return nil
}

// FetchXML returns the raw PubmedArticleSet XML for a single PMID.
func (c *Client) FetchXML(ctx context.Context, pmid string) (string, error) {
	if err := ValidatePMID(pmid); err != nil {
		return "", err
	}

	if c.cache != nil {
		if xml, ok, err := c.cache.Get(ctx, pmid); err == nil && ok {
			return xml, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(pmid), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, pmid); err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	xml := string(body)
	if !strings.Contains(xml, "<PubmedArticleSet") {
		return "", fmt.Errorf("%w: no PubmedArticleSet in response for %s", ErrInvalidResponse, pmid)
	}
	if !strings.Contains(xml, "<PubmedArticle>") && !strings.Contains(xml, "<PubmedArticle ") {
		return "", fmt.Errorf("%w: pmid %s", ErrNotFound, pmid)
	}

	if c.cache != nil {
		// A failed cache write still leaves a usable result.
		_ = c.cache.Put(ctx, pmid, xml)
	}

	return xml, nil
}

func (c *Client) requestURL(pmid string) string {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("id", pmid)
	q.Set("retmode", "xml")
	if c.tool != "" {
		q.Set("tool", c.tool)
	}
	if c.email != "" {
		q.Set("email", c.email)
	}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	return c.baseURL + "?" + q.Encode()
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, pmid string) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			PMID:       pmid,
		}
	}
	return nil
}
