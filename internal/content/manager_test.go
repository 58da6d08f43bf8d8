package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerPanicsOnNilSource(t *testing.T) {
	assert.Panics(t, func() { NewManager(nil, nil) })
}

func TestLoadServices(t *testing.T) {
	src := &fakeSource{services: sampleServices()}
	m := NewManager(src, newRecordingLogger())
	ctx := context.Background()

	first := m.LoadServices(ctx)
	require.Len(t, first, 2)
	assert.Equal(t, sampleServices(), first)

	second := m.LoadServices(ctx)
	assert.Same(t, &first[0], &second[0], "second call should return the cached slice")
	assert.Equal(t, int32(1), src.servicesReads.Load())
	assert.True(t, m.Cached(KindServices))
}

func TestLoadServicesReadFailure(t *testing.T) {
	log := newRecordingLogger()
	src := &fakeSource{err: errSourceDown}
	m := NewManager(src, log)
	ctx := context.Background()

	services := m.LoadServices(ctx)
	assert.NotNil(t, services)
	assert.Empty(t, services)

	errs := log.byLevel("error")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].err, errSourceDown)
	assert.Equal(t, "services", errs[0].fields["kind"])

	assert.False(t, m.Cached(KindServices), "failures must not be cached")
	m.LoadServices(ctx)
	assert.Equal(t, int32(2), src.servicesReads.Load())
}

func TestLoadServicesValidationWarnings(t *testing.T) {
	log := newRecordingLogger()
	services := sampleServices()
	services[1].Title = ""
	m := NewManager(&fakeSource{services: services}, log)

	got := m.LoadServices(context.Background())
	assert.Len(t, got, 2, "invalid content is still served")

	warns := log.byLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "Content validation warnings", warns[0].msg)
	assert.Equal(t, "services", warns[0].fields["kind"])
	assert.Contains(t, warns[0].fields["errors"], "Service at index 1 is missing required field: title")
}

func TestLoadTestimonials(t *testing.T) {
	src := &fakeSource{testimonials: sampleTestimonials()}
	m := NewManager(src, newRecordingLogger())
	ctx := context.Background()

	got := m.LoadTestimonials(ctx)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].DateGiven)
	assert.True(t, got[0].DateGiven.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Test Client 1", got[0].ClientName)
	assert.Equal(t, 5.0, *got[0].Rating)

	again := m.LoadTestimonials(ctx)
	assert.Same(t, &got[0], &again[0])
	assert.Equal(t, int32(1), src.testimonialsReads.Load())
}

func TestLoadTestimonialsBadDate(t *testing.T) {
	log := newRecordingLogger()
	raw := sampleTestimonials()
	raw[1].DateGiven = "last tuesday"
	m := NewManager(&fakeSource{testimonials: raw}, log)

	got := m.LoadTestimonials(context.Background())
	require.Len(t, got, 2)
	assert.Nil(t, got[1].DateGiven)

	warns := log.byLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "Content date warnings", warns[0].msg)
}

func TestLoadBlogPostsFiltersAndSorts(t *testing.T) {
	src := &fakeSource{posts: []RawBlogPost{
		rawPost("old", "2024-01-15T00:00:00.000Z", StatusPublished),
		rawPost("draft", "2024-02-01T00:00:00.000Z", StatusDraft),
		rawPost("new", "2024-03-01", StatusPublished),
		rawPost("gone", "2024-04-01", StatusArchived),
		rawPost("mid", "2024-02-10T12:00:00Z", StatusPublished),
	}}
	m := NewManager(src, newRecordingLogger())

	got := m.LoadBlogPosts(context.Background())
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
	assert.True(t, got[2].PublishDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestLoadBlogPostsOnlyDraftNewer(t *testing.T) {
	src := &fakeSource{posts: []RawBlogPost{
		rawPost("1", "2024-01-15T00:00:00.000Z", StatusPublished),
		rawPost("2", "2024-02-01T00:00:00.000Z", StatusDraft),
	}}
	m := NewManager(src, newRecordingLogger())

	got := m.LoadBlogPosts(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestLoadBlogPostsValidatesPublishedOnly(t *testing.T) {
	log := newRecordingLogger()
	draft := rawPost("draft", "not a date", StatusDraft)
	draft.Title = ""
	src := &fakeSource{posts: []RawBlogPost{
		rawPost("ok", "2024-01-15", StatusPublished),
		draft,
	}}
	m := NewManager(src, log)

	m.LoadBlogPosts(context.Background())

	for _, w := range log.byLevel("warn") {
		assert.NotEqual(t, "Content validation warnings", w.msg, "drafts are not validated")
	}
}

func TestLoadSiteConfig(t *testing.T) {
	src := &fakeSource{siteConfig: sampleSiteConfig()}
	m := NewManager(src, newRecordingLogger())
	ctx := context.Background()

	cfg := m.LoadSiteConfig(ctx)
	assert.Equal(t, "Test Site", cfg.SiteName)
	assert.Same(t, cfg, m.LoadSiteConfig(ctx))
	assert.Equal(t, int32(1), src.siteConfigReads.Load())
}

func TestLoadSiteConfigFallsBackToDefault(t *testing.T) {
	log := newRecordingLogger()
	src := &fakeSource{err: errSourceDown}
	m := NewManager(src, log)
	ctx := context.Background()

	cfg := m.LoadSiteConfig(ctx)
	require.NotNil(t, cfg)
	assert.Equal(t, "Life Coaching Website", cfg.SiteName)
	assert.Len(t, cfg.Navigation, 4)
	assert.Len(t, log.byLevel("error"), 1)

	cfg.SiteName = "mutated"
	assert.Equal(t, "Life Coaching Website", m.LoadSiteConfig(ctx).SiteName, "fallback must be a fresh copy")
	assert.Equal(t, int32(2), src.siteConfigReads.Load())
}

func TestLoadSiteConfigNil(t *testing.T) {
	m := NewManager(&fakeSource{}, newRecordingLogger())
	assert.Equal(t, "Life Coaching Website", m.LoadSiteConfig(context.Background()).SiteName)
	assert.False(t, m.Cached(KindSiteConfig))
}

func TestClearCache(t *testing.T) {
	src := &fakeSource{
		services:     sampleServices(),
		testimonials: sampleTestimonials(),
		posts:        []RawBlogPost{rawPost("1", "2024-01-15", StatusPublished)},
		siteConfig:   sampleSiteConfig(),
	}
	m := NewManager(src, newRecordingLogger())
	ctx := context.Background()

	m.LoadServices(ctx)
	m.LoadTestimonials(ctx)
	m.LoadBlogPosts(ctx)
	m.LoadSiteConfig(ctx)
	for _, kind := range Kinds {
		assert.True(t, m.Cached(kind), kind)
	}

	m.ClearCache()
	for _, kind := range Kinds {
		assert.False(t, m.Cached(kind), kind)
	}

	m.LoadServices(ctx)
	m.LoadTestimonials(ctx)
	m.LoadBlogPosts(ctx)
	m.LoadSiteConfig(ctx)
	assert.Equal(t, int32(2), src.servicesReads.Load())
	assert.Equal(t, int32(2), src.testimonialsReads.Load())
	assert.Equal(t, int32(2), src.postsReads.Load())
	assert.Equal(t, int32(2), src.siteConfigReads.Load())
}

func TestClearCacheOnEmptyCache(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)
	assert.NotPanics(t, m.ClearCache)
}

func TestConcurrentLoadsShareOneRead(t *testing.T) {
	src := &fakeSource{
		services: sampleServices(),
		gate:     make(chan struct{}),
		entered:  make(chan struct{}, 1),
	}
	m := NewManager(src, newRecordingLogger())
	ctx := context.Background()

	const callers = 16
	results := make([][]Service, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.LoadServices(ctx)
		}(i)
	}

	<-src.entered
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.servicesReads.Load())
	for _, r := range results {
		require.Len(t, r, 2)
		assert.Same(t, &results[0][0], &r[0])
	}
}

func TestClearCacheDuringReadDoesNotCacheStaleResult(t *testing.T) {
	src := &fakeSource{
		services: sampleServices(),
		gate:     make(chan struct{}),
		entered:  make(chan struct{}, 1),
	}
	m := NewManager(src, newRecordingLogger())
	ctx := context.Background()

	done := make(chan []Service)
	go func() { done <- m.LoadServices(ctx) }()

	<-src.entered
	m.ClearCache()
	close(src.gate)

	assert.Len(t, <-done, 2, "the in-flight caller still gets its result")
	assert.False(t, m.Cached(KindServices))

	m.LoadServices(ctx)
	assert.Equal(t, int32(2), src.servicesReads.Load())
	assert.True(t, m.Cached(KindServices))
}

func TestLoadWithEmbeddedSource(t *testing.T) {
	m := NewManager(NewEmbeddedSource(), newRecordingLogger())
	ctx := context.Background()

	assert.NotEmpty(t, m.LoadServices(ctx))
	assert.NotEmpty(t, m.LoadTestimonials(ctx))

	posts := m.LoadBlogPosts(ctx)
	require.NotEmpty(t, posts)
	for i, p := range posts {
		assert.Equal(t, StatusPublished, p.Status)
		if i > 0 {
			assert.False(t, p.PublishDate.After(posts[i-1].PublishDate))
		}
	}

	assert.Equal(t, "Andrea Gray Coaching", m.LoadSiteConfig(ctx).SiteName)
}

func TestSortByPublishDateStable(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	posts := []BlogPost{
		{ID: "a", PublishDate: day},
		{ID: "b", PublishDate: day.AddDate(0, 0, 1)},
		{ID: "c", PublishDate: day},
	}
	SortByPublishDate(posts)
	assert.Equal(t, "b", posts[0].ID)
	assert.Equal(t, "a", posts[1].ID)
	assert.Equal(t, "c", posts[2].ID)
}

func TestCancelledCallerDoesNotFailSharedRead(t *testing.T) {
	src := &fakeSource{
		services: sampleServices(),
		gate:     make(chan struct{}),
		entered:  make(chan struct{}, 1),
	}
	log := newRecordingLogger()
	m := NewManager(src, log)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan []Service)
	go func() { leader <- m.LoadServices(leaderCtx) }()
	<-src.entered

	follower := make(chan []Service)
	go func() { follower <- m.LoadServices(context.Background()) }()

	cancel()
	assert.Empty(t, <-leader, "a cancelled caller stops waiting")

	close(src.gate)
	got := <-follower
	require.Len(t, got, 2)
	assert.Equal(t, int32(1), src.servicesReads.Load())
	assert.True(t, m.Cached(KindServices))
	assert.Empty(t, log.byLevel("error"))
}

func TestFailedLoadStillLogsTiming(t *testing.T) {
	log := newRecordingLogger()
	m := NewManager(&fakeSource{err: errSourceDown}, log)

	m.LoadServices(context.Background())

	var timed bool
	for _, e := range log.byLevel("debug") {
		if e.msg == "Operation completed" {
			timed = true
			assert.Contains(t, e.fields, "duration_ms")
		}
	}
	assert.True(t, timed)
	assert.Len(t, log.byLevel("error"), 1)
}
