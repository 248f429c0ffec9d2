package dpaste

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the dpaste.org API endpoint.
	DefaultBaseURL = "https://dpaste.org/api/"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultExpires is the paste lifetime in seconds (7 days).
	DefaultExpires = 604800

	// DefaultRequestsPerSecond keeps uploads well below dpaste's
	// anonymous posting limits.
	DefaultRequestsPerSecond = 1.0

	// DefaultBurstSize allows a short run of sends without waiting.
	DefaultBurstSize = 3

	// maxResponseSize bounds how much of the response body is read.
	maxResponseSize = 4096
)

// Config holds the publisher configuration.
type Config struct {
	// BaseURL is the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the client used for requests. Defaults to a client
	// with DefaultTimeout.
	HTTPClient *http.Client

	// Expires is the paste lifetime in seconds. Defaults to
	// DefaultExpires.
	Expires int

	// RequestsPerSecond and BurstSize tune the upload rate limiter.
	RequestsPerSecond float64
	BurstSize         int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.Expires <= 0 {
		c.Expires = DefaultExpires
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.BurstSize <= 0 {
		c.BurstSize = DefaultBurstSize
	}
	return c
}

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Publisher uploads chunk text to dpaste.org.
type Publisher struct {
	cfg     Config
	limiter *rate.Limiter
}

// New creates a dpaste publisher.
func New(cfg Config) *Publisher {
	cfg = cfg.withDefaults()
	return &Publisher{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Name identifies the backing paste service.
func (p *Publisher) Name() domain.PasteService {
	return domain.PasteServiceDpaste
}

// Publish uploads the text as a plain-text paste and returns its URL.
// The title becomes the paste filename.
func (p *Publisher) Publish(ctx context.Context, title, text string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("content", text)
	form.Set("lexer", "_text")
	form.Set("format", "url")
	form.Set("expires", strconv.Itoa(p.cfg.Expires))
	if title != "" {
		form.Set("filename", title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading paste: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: dpaste returned status %d", domain.ErrPublishFailed, resp.StatusCode)
	}

	return parsePasteURL(body)
}

// parsePasteURL validates that the response body is a single URL. The
// url format wraps the value in quotes.
func parsePasteURL(body []byte) (string, error) {
	raw := strings.TrimSpace(string(body))
	raw = strings.Trim(raw, `"`)

	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return "", fmt.Errorf("%w: response is not a url: %q", domain.ErrPublishFailed, raw)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: response is not a url: %q", domain.ErrPublishFailed, raw)
	}
	return raw, nil
}
