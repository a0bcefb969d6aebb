package internal

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

// Registry keeps one Provider per application identity.
type Registry struct {
	data      store.Handler
	ownedData *store.Memory
	factory   ClientFactory
	logger    *slog.Logger
	providers map[string]*Provider
	dataOnce  sync.Once
	mu        sync.Mutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClientFactory sets how Graph clients are built.
func WithClientFactory(f ClientFactory) RegistryOption {
	return func(r *Registry) {
		if f != nil {
			r.factory = f
		}
	}
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryPersistentData sets the store shared by every App that has no own handler.
// Defaults to an in-memory store owned by the registry.
func WithRegistryPersistentData(h store.Handler) RegistryOption {
	return func(r *Registry) {
		r.data = h
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		providers: make(map[string]*Provider),
		factory:   DefaultClientFactory,
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry used by Apps
// that were not given one explicitly.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// GetOrCreate returns the Provider for identity, creating it on first use.
// An existing provider keeps its permissions and tokens.
func (r *Registry) GetOrCreate(identity Identity) (*Provider, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	key := identity.key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[key]; ok {
		return p, nil
	}

	client, err := r.factory(identity.graphConfig(), graph.WithPersistentData(r.PersistentData()))
	if err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}

	p := newProvider(identity, client)
	r.providers[key] = p
	r.logger.Debug("provider created", slog.Any("app", identity))
	return p, nil
}

// NewClient builds a Graph client for identity with the registry's factory.
func (r *Registry) NewClient(identity Identity, opts ...graph.Option) (GraphClient, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	client, err := r.factory(identity.graphConfig(), opts...)
	if err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}
	return client, nil
}

// PersistentData returns the store shared by Apps without their own handler.
func (r *Registry) PersistentData() store.Handler {
	r.dataOnce.Do(func() {
		if r.data == nil {
			r.ownedData = store.NewMemory()
			r.data = r.ownedData
		}
	})
	return r.data
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.providers)
}

// Close stops the in-memory store created by the registry, if any.
func (r *Registry) Close() error {
	if r.ownedData != nil {
		return r.ownedData.Close()
	}
	return nil
}
