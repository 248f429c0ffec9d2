package sprunge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the sprunge.us endpoint.
	DefaultBaseURL = "http://sprunge.us"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps uploads polite; sprunge is a
	// single-host community service.
	DefaultRequestsPerSecond = 1.0

	// DefaultBurstSize allows a short run of sends without waiting.
	DefaultBurstSize = 3

	// maxResponseSize bounds how much of the response body is read.
	maxResponseSize = 4096
)

// Config holds the publisher configuration.
type Config struct {
	// BaseURL is the paste endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the client used for requests. Defaults to a client
	// with DefaultTimeout.
	HTTPClient *http.Client

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

// Publisher uploads chunk text to sprunge.us. Sprunge has no titles or
// expiry; the title argument is ignored.
type Publisher struct {
	cfg     Config
	limiter *rate.Limiter
}

// New creates a sprunge publisher.
func New(cfg Config) *Publisher {
	cfg = cfg.withDefaults()
	return &Publisher{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Name identifies the backing paste service.
func (p *Publisher) Name() domain.PasteService {
	return domain.PasteServiceSprunge
}

// Publish uploads the text and returns the paste URL from the response
// body.
func (p *Publisher) Publish(ctx context.Context, _, text string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("sprunge", text)

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
		return "", fmt.Errorf("%w: sprunge returned status %d", domain.ErrPublishFailed, resp.StatusCode)
	}

	return parsePasteURL(body)
}

// parsePasteURL validates that the response body is a single URL.
func parsePasteURL(body []byte) (string, error) {
	raw := strings.TrimSpace(string(body))

	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return "", fmt.Errorf("%w: response is not a url: %q", domain.ErrPublishFailed, raw)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: response is not a url: %q", domain.ErrPublishFailed, raw)
	}
	return raw, nil
}
