package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/coachsite/internal/logging"
)

// fakeSource is a Source with canned data, injectable failures and per-kind
// read counters.
type fakeSource struct {
	services     []Service
	testimonials []RawTestimonial
	posts        []RawBlogPost
	siteConfig   *SiteConfig
	err          error

	// gate, when set, blocks every read until it is closed.
	gate    chan struct{}
	entered chan struct{}

	servicesReads     atomic.Int32
	testimonialsReads atomic.Int32
	postsReads        atomic.Int32
	siteConfigReads   atomic.Int32
}

func (f *fakeSource) wait(ctx context.Context) error {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *fakeSource) Services(ctx context.Context) ([]Service, error) {
	f.servicesReads.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.services, nil
}

func (f *fakeSource) Testimonials(ctx context.Context) ([]RawTestimonial, error) {
	f.testimonialsReads.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.testimonials, nil
}

func (f *fakeSource) BlogPosts(ctx context.Context) ([]RawBlogPost, error) {
	f.postsReads.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.posts, nil
}

func (f *fakeSource) SiteConfig(ctx context.Context) (*SiteConfig, error) {
	f.siteConfigReads.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.siteConfig, nil
}

var errSourceDown = errors.New("source unavailable")

// logEntry is one record captured by recordingLogger.
type logEntry struct {
	level  string
	msg    string
	err    error
	fields map[string]interface{}
}

// recordingLogger captures warnings and errors for assertions.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (r *recordingLogger) record(level string, err error, msg string, fields []interface{}) {
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		if k, ok := fields[i].(string); ok {
			m[k] = fields[i+1]
		}
	}
	r.mu.Lock()
	*r.entries = append(*r.entries, logEntry{level: level, msg: msg, err: err, fields: m})
	r.mu.Unlock()
}

func (r *recordingLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	r.record("debug", nil, msg, fields)
}
func (r *recordingLogger) Info(ctx context.Context, msg string, fields ...interface{}) {}
func (r *recordingLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record("warn", err, msg, fields)
}
func (r *recordingLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record("error", err, msg, fields)
}
func (r *recordingLogger) With(fields ...interface{}) logging.Logger { return r }
func (r *recordingLogger) WithComponent(string) logging.Logger { return r }

func (r *recordingLogger) byLevel(level string) []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logEntry
	for _, e := range *r.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func ratingPtr(r float64) *float64 { return &r }

func sampleServices() []Service {
	return []Service{
		{
			ID:           "test-service-1",
			Title:        "Test Service 1",
			Description:  "Test description",
			Features:     []string{"Feature 1", "Feature 2"},
			Category:     CategoryIndividual,
			Availability: boolPtr(true),
		},
		{
			ID:           "test-service-2",
			Title:        "Test Service 2",
			Description:  "Test description 2",
			Features:     []string{"Feature 3", "Feature 4"},
			Category:     CategoryGroup,
			Availability: boolPtr(false),
		},
	}
}

func sampleTestimonials() []RawTestimonial {
	return []RawTestimonial{
		{
			Testimonial: Testimonial{ID: "1", ClientName: "Test Client 1", Content: "Great service!", Rating: ratingPtr(5), Featured: true},
			DateGiven:   "2024-01-15T00:00:00.000Z",
		},
		{
			Testimonial: Testimonial{ID: "2", ClientName: "Test Client 2", Content: "Excellent coaching!", Rating: ratingPtr(4)},
			DateGiven:   "2024-01-10T00:00:00.000Z",
		},
	}
}

func rawPost(id, date string, status PostStatus) RawBlogPost {
	return RawBlogPost{
		BlogPost: BlogPost{
			ID:       id,
			Title:    "Post " + id,
			Excerpt:  "Excerpt " + id,
			Content:  "Content " + id,
			Category: "personal-development",
			Status:   status,
		},
		PublishDate: date,
	}
}

func sampleSiteConfig() *SiteConfig {
	return &SiteConfig{
		SiteName:    "Test Site",
		Tagline:     "Test Tagline",
		Description: "Test Description",
		Author:      Author{Name: "Test Author", Title: "Test Title", Bio: "Test Bio", Credentials: []string{"Test Credential"}},
		Contact:     ContactInfo{Email: "test@example.com"},
		Navigation:  []NavMenuItem{{ID: "home", Label: "Home", Href: "#home"}},
		SEO: SEOConfig{
			DefaultTitle:       "Test Site",
			TitleTemplate:      "%s | Test",
			DefaultDescription: "Test Description",
			SiteURL:            "https://test.com",
		},
	}
}
