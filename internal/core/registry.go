package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNoExtractor is returned when no active extractor accepts a query or can bridge a track.
	ErrNoExtractor = errors.New("no extractor available")
	// ErrAlreadyRegistered is returned when an extractor identifier is registered twice.
	ErrAlreadyRegistered = errors.New("extractor already registered")
)

// Registry holds the active extractors of the host. It replaces per-extractor "current
// instance" globals: whoever needs the live instance of a provider asks the registry.
type Registry struct {
	logger *zap.Logger

	mu         sync.RWMutex
	order      []string
	extractors map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:     logger.Named("registry"),
		extractors: make(map[string]Extractor),
	}
}

// Register activates ext and makes it the live instance for its identifier.
func (r *Registry) Register(ctx context.Context, ext Extractor) error {
	id := ext.Identifier()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.extractors[id]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, id)
	}
	if err := ext.Activate(ctx); err != nil {
		return fmt.Errorf("failed to activate %s: %w", id, err)
	}

	r.extractors[id] = ext
	r.order = append(r.order, id)
	r.logger.Info("Extractor activated", zap.String("identifier", id), zap.Strings("protocols", ext.Protocols()))
	return nil
}

// Unregister deactivates and removes the extractor with the given identifier.
func (r *Registry) Unregister(ctx context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, exists := r.extractors[identifier]
	if !exists {
		return nil
	}

	delete(r.extractors, identifier)
	for i, id := range r.order {
		if id == identifier {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if err := ext.Deactivate(ctx); err != nil {
		return fmt.Errorf("failed to deactivate %s: %w", identifier, err)
	}
	r.logger.Info("Extractor deactivated", zap.String("identifier", identifier))
	return nil
}

// Close deactivates every extractor in reverse registration order.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	r.mu.RUnlock()

	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		if err := r.Unregister(ctx, ids[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the live extractor for identifier.
func (r *Registry) Get(identifier string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.extractors[identifier]
	return ext, ok
}

// Identifiers lists the active extractors in registration order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// IsActive reports whether ext itself, not merely an extractor with the same identifier, is
// the live instance.
func (r *Registry) IsActive(ext Extractor) bool {
	if ext == nil {
		return false
	}
	live, ok := r.Get(ext.Identifier())
	return ok && live == ext
}

// Route picks the extractor for query. An explicit "<protocol>:" prefix wins and is stripped;
// otherwise the first extractor, in registration order, that validates the query is used.
func (r *Registry) Route(query string) (ext Extractor, rest string, protocol string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		candidate := r.extractors[id]
		for _, p := range candidate.Protocols() {
			if after, found := strings.CutPrefix(query, p+":"); found {
				return candidate, strings.TrimSpace(after), p, nil
			}
		}
	}

	for _, id := range r.order {
		if candidate := r.extractors[id]; candidate.Validate(query) {
			return candidate, query, "", nil
		}
	}

	return nil, "", "", fmt.Errorf("%w for %q", ErrNoExtractor, query)
}

// Handle routes query and runs it on the chosen extractor.
func (r *Registry) Handle(ctx context.Context, query string, rc RequestContext) SearchResult {
	ext, rest, protocol, err := r.Route(query)
	if err != nil {
		return SearchResult{Cause: err}
	}
	return ext.Handle(ctx, rest, SearchContext{RequestContext: rc, Protocol: protocol})
}

// BridgeAny asks every active extractor other than source, in registration order, for a
// playable equivalent of track and returns the first success together with the identifier
// of the extractor that produced it.
func (r *Registry) BridgeAny(ctx context.Context, track *Track, source SourceExtractor) (*Streamable, string, error) {
	r.mu.RLock()
	candidates := make([]Extractor, 0, len(r.order))
	for _, id := range r.order {
		if source != nil && id == source.Identifier() {
			continue
		}
		candidates = append(candidates, r.extractors[id])
	}
	r.mu.RUnlock()

	errs := []error{ErrNoExtractor}
	for _, ext := range candidates {
		stream, err := ext.Bridge(ctx, track, source)
		if err == nil {
			return stream, ext.Identifier(), nil
		}
		r.logger.Debug("Bridge attempt failed",
			zap.String("extractor", ext.Identifier()),
			zap.String("track", track.URL),
			zap.Error(err))
		errs = append(errs, err)
	}
	return nil, "", errors.Join(errs...)
}
