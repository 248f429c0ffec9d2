// Package fetch downloads documents over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the HTTP request timeout, sized for large
	// documents on slow links.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBodySize bounds how many bytes of a document are read.
	DefaultMaxBodySize int64 = 50 << 20

	// DefaultUserAgent identifies the client to servers.
	DefaultUserAgent = "bookfeed/1.0"
)

// Config holds the fetcher configuration.
type Config struct {
	// HTTPClient is the client used for requests. Defaults to a client
	// with DefaultTimeout.
	HTTPClient *http.Client

	// MaxBodySize is the response size limit in bytes.
	MaxBodySize int64

	// UserAgent is sent with every request.
	UserAgent string
}

// withDefaults returns a copy of the config with defaults applied.
func (c Config) withDefaults() Config {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Fetcher retrieves documents over HTTP.
type Fetcher struct {
	cfg Config
}

// Compile-time check that Fetcher implements the driven port.
var _ driven.ContentFetcher = (*Fetcher)(nil)

// New creates a fetcher with the given configuration.
func New(cfg Config) *Fetcher {
	return &Fetcher{cfg: cfg.withDefaults()}
}

// Fetch downloads the URL and returns the raw document. The format
// hint comes from the response content type; the document name from
// the URL path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.RawDocument, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.RawDocument{}, fmt.Errorf("%w: unsupported url scheme %q", domain.ErrInvalidInput, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("fetching document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RawDocument{}, fmt.Errorf("fetching document: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize+1))
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(data)) > f.cfg.MaxBodySize {
		return domain.RawDocument{}, fmt.Errorf("%w: document larger than %d bytes", domain.ErrInvalidInput, f.cfg.MaxBodySize)
	}

	return domain.RawDocument{
		SourceURL: rawURL,
		Name:      documentName(u),
		Data:      data,
		Hint:      formatFromContentType(resp.Header.Get("Content-Type")),
	}, nil
}

// documentName derives a file-ish name from the URL for extension
// sniffing and title fallback. Path-less URLs fall back to the host.
func documentName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return u.Hostname()
	}
	return name
}

// formatFromContentType maps a response content type to a format hint.
// Generic types are left as FormatAuto: servers routinely mislabel
// books as text/plain or octet-stream, and content detection does
// better with those.
func formatFromContentType(value string) domain.Format {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return domain.FormatAuto
	}

	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return domain.FormatHTML
	case "application/pdf":
		return domain.FormatPDF
	case "application/epub+zip":
		return domain.FormatEPUB
	case "text/markdown":
		return domain.FormatMarkdown
	default:
		return domain.FormatAuto
	}
}
