package content

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/conneroisu/coachsite/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Manager is the sole owner of loaded content. It reads each kind from its
// Source at most once, normalizes and validates it, and serves the cached
// value until ClearCache is called.
//
// Load methods never fail: read errors are logged and turned into an empty
// list (or the default site configuration) that is not cached, so the next
// call retries. Validation problems are logged as warnings and the content is
// served anyway.
type Manager struct {
	source Source
	logger logging.Logger

	mu sync.RWMutex
	// generation increments on every ClearCache; a read started under an
	// older generation must not populate the cache.
	generation   uint64
	services     []Service
	testimonials []Testimonial
	blogPosts    []BlogPost
	siteConfig   *SiteConfig
	loaded       map[Kind]bool

	inflight    singleflight.Group
	readTimeout time.Duration
}

// DefaultReadTimeout bounds a single read of one content kind.
const DefaultReadTimeout = 30 * time.Second

// NewManager creates a content manager reading from source.
func NewManager(source Source, logger logging.Logger) *Manager {
	if source == nil {
		panic("content: source cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		source:      source,
		logger:      logger.WithComponent("content"),
		loaded:      make(map[Kind]bool, len(Kinds)),
		readTimeout: DefaultReadTimeout,
	}
}

// ClearCache drops every cached kind so the next Load call re-reads the source.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	m.generation++
	m.services = nil
	m.testimonials = nil
	m.blogPosts = nil
	m.siteConfig = nil
	clear(m.loaded)
	m.mu.Unlock()

	for _, kind := range Kinds {
		m.inflight.Forget(string(kind))
	}
}

// Cached reports whether kind is currently held in the cache.
func (m *Manager) Cached(kind Kind) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded[kind]
}

// LoadServices returns the services, reading them on first use.
func (m *Manager) LoadServices(ctx context.Context) []Service {
	v, err := m.load(ctx, KindServices, func() interface{} { return m.services }, func(ctx context.Context) (interface{}, func(), error) {
		services, err := m.source.Services(ctx)
		if err != nil {
			return nil, nil, err
		}
		m.warn(ctx, KindServices, ValidateServices(services))
		if services == nil {
			services = []Service{}
		}
		return services, func() { m.services = services }, nil
	})
	if err != nil {
		return []Service{}
	}
	return v.([]Service)
}

// LoadTestimonials returns the testimonials with dateGiven parsed.
func (m *Manager) LoadTestimonials(ctx context.Context) []Testimonial {
	v, err := m.load(ctx, KindTestimonials, func() interface{} { return m.testimonials }, func(ctx context.Context) (interface{}, func(), error) {
		raw, err := m.source.Testimonials(ctx)
		if err != nil {
			return nil, nil, err
		}
		testimonials, dateWarnings := NormalizeTestimonials(raw)
		m.warnDates(ctx, KindTestimonials, dateWarnings)
		m.warn(ctx, KindTestimonials, ValidateTestimonials(testimonials))
		if testimonials == nil {
			testimonials = []Testimonial{}
		}
		return testimonials, func() { m.testimonials = testimonials }, nil
	})
	if err != nil {
		return []Testimonial{}
	}
	return v.([]Testimonial)
}

// LoadBlogPosts returns the published posts, most recent first. Drafts and
// archived posts are never returned.
func (m *Manager) LoadBlogPosts(ctx context.Context) []BlogPost {
	v, err := m.load(ctx, KindBlogPosts, func() interface{} { return m.blogPosts }, func(ctx context.Context) (interface{}, func(), error) {
		raw, err := m.source.BlogPosts(ctx)
		if err != nil {
			return nil, nil, err
		}
		normalized, dateWarnings := NormalizeBlogPosts(raw)
		m.warnDates(ctx, KindBlogPosts, dateWarnings)

		posts := filter(normalized, func(p *BlogPost) bool {
			return p.Status == StatusPublished
		})
		SortByPublishDate(posts)

		m.warn(ctx, KindBlogPosts, ValidateBlogPosts(posts))
		return posts, func() { m.blogPosts = posts }, nil
	})
	if err != nil {
		return []BlogPost{}
	}
	return v.([]BlogPost)
}

// LoadSiteConfig returns the site configuration, or a fresh copy of
// DefaultSiteConfig when it cannot be read.
func (m *Manager) LoadSiteConfig(ctx context.Context) *SiteConfig {
	v, err := m.load(ctx, KindSiteConfig, func() interface{} { return m.siteConfig }, func(ctx context.Context) (interface{}, func(), error) {
		cfg, err := m.source.SiteConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		if cfg == nil {
			return nil, nil, errors.NewIOError(errors.ErrCodeContentRead, "source returned no site config", nil)
		}
		m.warn(ctx, KindSiteConfig, ValidateSiteConfig(cfg))
		return cfg, func() { m.siteConfig = cfg }, nil
	})
	if err != nil {
		return DefaultSiteConfig()
	}
	return v.(*SiteConfig)
}

// readFunc reads one kind and returns the value plus a setter that stores it
// in its cache slot. The setter runs with m.mu held.
type readFunc func(ctx context.Context) (interface{}, func(), error)

// load returns the cached value of kind or reads it. Concurrent misses share
// one in-flight read, and the result is cached unless the cache was cleared
// while reading. cached runs with m.mu held.
//
// The shared read is detached from the caller's cancellation so one caller
// going away does not fail the read for the others; each caller still stops
// waiting when its own ctx is done.
func (m *Manager) load(ctx context.Context, kind Kind, cached func() interface{}, read readFunc) (interface{}, error) {
	m.mu.RLock()
	if m.loaded[kind] {
		v := cached()
		m.mu.RUnlock()
		return v, nil
	}
	generation := m.generation
	m.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	ch := m.inflight.DoChan(string(kind), func() (interface{}, error) {
		// A read that finished between the check above and DoChan already
		// filled the slot.
		m.mu.RLock()
		if m.loaded[kind] {
			v := cached()
			m.mu.RUnlock()
			return v, nil
		}
		m.mu.RUnlock()

		readCtx, cancel := context.WithTimeout(detached, m.readTimeout)
		defer cancel()

		op := logging.StartOperation(m.logger.With("kind", string(kind)), "load")
		defer op.End(readCtx)

		value, store, err := read(readCtx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		if m.generation == generation {
			store()
			m.loaded[kind] = true
		}
		m.mu.Unlock()

		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			m.logger.Error(ctx, res.Err, "Failed to load content", "kind", string(kind))
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		m.logger.Warn(ctx, ctx.Err(), "Stopped waiting for content", "kind", string(kind))
		return nil, ctx.Err()
	}
}

func (m *Manager) warn(ctx context.Context, kind Kind, result ValidationResult) {
	if result.IsValid {
		return
	}
	m.logger.Warn(ctx, nil, "Content validation warnings",
		"kind", string(kind),
		"count", len(result.Errors),
		"errors", result.Errors,
	)
}

func (m *Manager) warnDates(ctx context.Context, kind Kind, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	m.logger.Warn(ctx, nil, "Content date warnings",
		"kind", string(kind),
		"errors", warnings,
	)
}

// SortByPublishDate orders posts most recent first, keeping the source
// order of posts published at the same instant.
func SortByPublishDate(posts []BlogPost) {
	slices.SortStableFunc(posts, func(a, b BlogPost) int {
		return b.PublishDate.Compare(a.PublishDate)
	})
}
