// Package resolver maps free-form port text onto canonical port identities by
// running it through the matcher cascade against the current catalog.
//
// Resolve never fails: text that no matcher recognises comes back unchanged,
// and before the catalog is loaded everything is passed through.
package resolver

import (
	"log/slog"
	"strings"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/matchers"
	"shipping_schedule/internal/registry"
)

// Observer is notified of every resolution attempt on non-empty text.
// matcher is empty when nothing matched.
type Observer interface {
	ObserveResolve(matcher string, resolved bool)
}

// Resolver resolves port text against a catalog provider.
type Resolver struct {
	provider catalog.Provider
	reg      *registry.Registry
	observer Observer
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for unresolved inputs (debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver attaches a resolution observer, typically metrics.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// WithRegistry replaces the default matcher cascade.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Resolver) {
		if reg != nil {
			reg.Sort()
			r.reg = reg
		}
	}
}

// New creates a resolver. provider may be a *catalog.Catalog or a
// *catalog.Loader; with a loader, calls made before loading pass through.
func New(provider catalog.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reg == nil {
		r.reg = matchers.NewRegistry()
	}
	return r
}

// Catalog returns the catalog resolutions are currently made against.
func (r *Resolver) Catalog() *catalog.Catalog {
	if r.provider == nil {
		return emptyCatalog
	}
	if c := r.provider.Catalog(); c != nil {
		return c
	}
	return emptyCatalog
}

var emptyCatalog = catalog.Build(nil, catalog.BuildOptions{})

// Resolve returns the canonical code for text, or text itself when nothing
// matches. Empty and blank strings resolve to themselves.
func (r *Resolver) Resolve(text string) string {
	code, ok := r.resolve(text)
	if !ok {
		return text
	}
	return code
}

// Lookup is Resolve with an explicit found flag.
func (r *Resolver) Lookup(text string) (string, bool) {
	return r.resolve(text)
}

func (r *Resolver) resolve(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}

	code, matcher, ok := r.reg.DispatchFirst(r.Catalog(), trimmed)
	if r.observer != nil {
		r.observer.ObserveResolve(matcher, ok)
	}
	if !ok {
		r.logger.Debug("port unresolved", "text", trimmed)
		return "", false
	}
	return code, true
}

// DisplayOf returns the canonical display string for a code.
func (r *Resolver) DisplayOf(code string) (string, bool) {
	return r.Catalog().DisplayOf(code)
}

// Standardize returns the canonical display string for text, or text itself
// when it cannot be resolved. A canonical display string is returned as is.
func (r *Resolver) Standardize(text string) string {
	code, ok := r.resolve(text)
	if !ok {
		return text
	}
	if display, ok := r.Catalog().DisplayOf(code); ok {
		return display
	}
	return text
}

// Identify resolves text to its full identity.
func (r *Resolver) Identify(text string) (catalog.PortIdentity, bool) {
	code, ok := r.resolve(text)
	if !ok {
		return catalog.PortIdentity{}, false
	}
	return r.Catalog().Identity(code)
}
