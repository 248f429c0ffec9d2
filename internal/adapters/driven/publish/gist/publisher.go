package gist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond stays well under the authenticated
	// GitHub API budget of 5000 requests per hour.
	DefaultRequestsPerSecond = 1.0

	// DefaultBurstSize allows a short run of sends without waiting.
	DefaultBurstSize = 3
)

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Publisher uploads chunk text as public GitHub gists. The API client
// is built lazily so the token is only required once a gist is
// actually created.
type Publisher struct {
	settings driving.Settings
	limiter  *rate.Limiter

	mu     sync.Mutex
	client *gh.Client
}

// New creates a gist publisher that reads its token from settings.
func New(settings driving.Settings) *Publisher {
	return &Publisher{
		settings: settings,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurstSize),
	}
}

// NewWithClient creates a gist publisher around an existing client.
func NewWithClient(client *gh.Client) *Publisher {
	return &Publisher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurstSize),
	}
}

// Name identifies the backing paste service.
func (p *Publisher) Name() domain.PasteService {
	return domain.PasteServiceGist
}

// ensureClient initializes the go-github client if not already done,
// fetching the access token from settings.
func (p *Publisher) ensureClient(ctx context.Context) (*gh.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.settings == nil {
		return nil, domain.ErrTokenRequired
	}

	token, err := p.settings.Token(ctx, domain.PasteServiceGist)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	p.client = gh.NewClient(tc)

	return p.client, nil
}

// Publish creates a public gist holding the text and returns its page
// URL.
func (p *Publisher) Publish(ctx context.Context, title, text string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	client, err := p.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	gist := &gh.Gist{
		Description: gh.Ptr(title),
		Public:      gh.Ptr(true),
		Files: map[gh.GistFilename]gh.GistFile{
			gh.GistFilename(gistFilename(title)): {Content: gh.Ptr(text)},
		},
	}

	created, _, err := client.Gists.Create(ctx, gist)
	if err != nil {
		return "", fmt.Errorf("creating gist: %w", err)
	}

	pasteURL := created.GetHTMLURL()
	if pasteURL == "" || !strings.HasPrefix(pasteURL, "http") {
		return "", fmt.Errorf("%w: gist response carries no page url", domain.ErrPublishFailed)
	}
	return pasteURL, nil
}

// gistFilename derives a gist file name from the paste title. Gist
// file names cannot contain path separators.
func gistFilename(title string) string {
	name := strings.TrimSpace(strings.ReplaceAll(title, "/", "-"))
	if name == "" {
		name = "chunk"
	}
	return name + ".txt"
}
