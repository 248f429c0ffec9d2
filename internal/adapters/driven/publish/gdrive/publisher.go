package gdrive

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

const (
	// DefaultTimeout bounds each Drive API call.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond stays below Google's 10/sec/user limit.
	// Each publish makes two calls (create + share).
	DefaultRequestsPerSecond = 4.0

	// DefaultBurstSize allows a short run of sends without waiting.
	DefaultBurstSize = 8
)

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Publisher uploads chunk text as plain text files on Google Drive and
// shares them with anyone holding the link. The Drive service is built
// lazily so the token is only required once a file is actually
// uploaded.
type Publisher struct {
	settings driving.Settings
	limiter  *rate.Limiter

	mu  sync.Mutex
	svc *drive.Service
}

// New creates a Drive publisher that reads its token from settings.
func New(settings driving.Settings) *Publisher {
	return &Publisher{
		settings: settings,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurstSize),
	}
}

// NewWithService creates a Drive publisher around an existing service.
func NewWithService(svc *drive.Service) *Publisher {
	return &Publisher{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurstSize),
	}
}

// Name identifies the backing paste service.
func (p *Publisher) Name() domain.PasteService {
	return domain.PasteServiceGDrive
}

// ensureService initializes the Drive service if not already done,
// fetching the access token from settings.
func (p *Publisher) ensureService(ctx context.Context) (*drive.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.svc != nil {
		return p.svc, nil
	}
	if p.settings == nil {
		return nil, domain.ErrTokenRequired
	}

	token, err := p.settings.Token(ctx, domain.PasteServiceGDrive)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("building drive service: %w", err)
	}
	p.svc = svc

	return p.svc, nil
}

// Publish uploads the text as a Drive file, grants anyone-with-link
// read access, and returns the file's view URL.
func (p *Publisher) Publish(ctx context.Context, title, text string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	svc, err := p.ensureService(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	meta := &drive.File{
		Name:     fileName(title),
		MimeType: "text/plain",
	}

	created, err := svc.Files.Create(meta).
		Media(strings.NewReader(text)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("creating drive file: %w", err)
	}

	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := svc.Permissions.Create(created.Id, perm).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("sharing drive file: %w", err)
	}

	if created.WebViewLink == "" || !strings.HasPrefix(created.WebViewLink, "http") {
		return "", fmt.Errorf("%w: drive response carries no view url", domain.ErrPublishFailed)
	}
	return created.WebViewLink, nil
}

// fileName derives the Drive file name from the paste title.
func fileName(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "chunk"
	}
	return name + ".txt"
}
