package publish

import (
	"fmt"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.PublisherRegistry = (*Registry)(nil)

// Registry maps paste services to their publishers.
type Registry struct {
	publishers map[domain.PasteService]driven.Publisher
}

// NewRegistry creates a registry holding the given publishers, keyed
// by their Name.
func NewRegistry(publishers ...driven.Publisher) *Registry {
	r := &Registry{
		publishers: make(map[domain.PasteService]driven.Publisher, len(publishers)),
	}
	for _, p := range publishers {
		r.Register(p)
	}
	return r
}

// Register adds a publisher, replacing any previous one for the same
// service.
func (r *Registry) Register(p driven.Publisher) {
	r.publishers[p.Name()] = p
}

// Publisher returns the publisher for a paste service.
func (r *Registry) Publisher(service domain.PasteService) (driven.Publisher, error) {
	p, ok := r.publishers[service]
	if !ok {
		return nil, fmt.Errorf("%w: no publisher for service %q", domain.ErrInvalidInput, service)
	}
	return p, nil
}

// Services returns the registered services.
func (r *Registry) Services() []domain.PasteService {
	services := make([]domain.PasteService, 0, len(r.publishers))
	for service := range r.publishers {
		services = append(services, service)
	}
	return services
}
