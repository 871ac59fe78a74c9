package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Provider hands out the current catalog.
type Provider interface {
	Catalog() *Catalog
}

// Loader builds a catalog from a Source exactly once. Concurrent Load calls
// block until the single build finishes and all observe the same catalog.
// Before the first Load completes, Catalog returns an empty catalog so every
// lookup falls through to pass-through behaviour.
type Loader struct {
	src    Source
	opts   BuildOptions
	logger *slog.Logger

	once  sync.Once
	built atomic.Pointer[Catalog]
	empty *Catalog
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report load warnings.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBuildOptions sets region order and synonyms.
func WithBuildOptions(opts BuildOptions) LoaderOption {
	return func(l *Loader) {
		l.opts = opts
	}
}

// NewLoader creates a loader for a source. A nil source loads in degraded mode.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		src:    src,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.empty = Build(nil, l.opts)
	l.empty.degraded = true
	return l
}

// Load builds the catalog on the first call and returns it on every call.
// A missing or unreadable asset is not an error: the result is an empty,
// degraded catalog.
func (l *Loader) Load(ctx context.Context) *Catalog {
	l.once.Do(func() {
		l.built.Store(l.build(ctx))
	})
	return l.built.Load()
}

// Catalog returns the loaded catalog, or an empty one before Load finishes.
func (l *Loader) Catalog() *Catalog {
	if c := l.built.Load(); c != nil {
		return c
	}
	return l.empty
}

// Loaded reports whether Load has completed.
func (l *Loader) Loaded() bool {
	return l.built.Load() != nil
}

func (l *Loader) build(ctx context.Context) *Catalog {
	if l.src == nil {
		l.logger.Warn("no alias asset configured, running in degraded mode")
		return l.degraded("none", nil)
	}

	records, warnings, err := l.src.Records(ctx)
	if err != nil && len(records) == 0 {
		l.logger.Warn("alias asset unavailable, running in degraded mode",
			"source", l.src.Name(), "error", err)
		return l.degraded(l.src.Name(), err)
	}

	c := Build(records, l.opts)
	c.source = l.src.Name()
	c.warnings = append(warnings, c.warnings...)
	if err != nil {
		c.warn(0, WarnSource, err.Error())
	}

	for _, w := range c.warnings {
		l.logger.Warn("alias asset warning", "source", c.source, "line", w.Line, "kind", w.Kind, "detail", w.Detail)
	}
	l.logger.Info("port catalog loaded",
		"source", c.source,
		"identities", c.Len(),
		"aliases", c.AliasCount(),
		"regions", c.RegionCount(),
		"warnings", len(c.warnings),
	)
	return c
}

func (l *Loader) degraded(source string, err error) *Catalog {
	c := Build(nil, l.opts)
	c.source = source
	c.degraded = true
	if err != nil {
		c.warn(0, WarnSource, err.Error())
	}
	return c
}
