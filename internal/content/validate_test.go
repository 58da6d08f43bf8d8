package content

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateServices(t *testing.T) {
	tests := []struct {
		name     string
		services []Service
		valid    bool
		errors   []string
	}{
		{
			name:     "valid services",
			services: sampleServices(),
			valid:    true,
			errors:   []string{},
		},
		{
			name:     "empty list",
			services: []Service{},
			valid:    true,
			errors:   []string{},
		},
		{
			name:   "nil list",
			errors: []string{"Services must be an array"},
		},
		{
			name:     "missing fields",
			services: []Service{{ID: "x"}},
			errors: []string{
				"Service at index 0 is missing required field: title",
				"Service at index 0 is missing required field: description",
				"Service at index 0 features must be an array",
			},
		},
		{
			name: "unknown category",
			services: []Service{
				{ID: "x", Title: "X", Description: "d", Features: []string{}, Category: "retreat"},
			},
			errors: []string{"Service at index 0 has invalid category: retreat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateServices(tt.services)
			assert.Equal(t, tt.valid, result.IsValid)
			assert.Equal(t, tt.errors, result.Errors)
		})
	}
}

func TestValidateTestimonialsRating(t *testing.T) {
	base := func(rating *float64) []Testimonial {
		return []Testimonial{{ID: "1", ClientName: "C", Content: "Great", Rating: rating}}
	}

	tests := []struct {
		name   string
		rating *float64
		valid  bool
	}{
		{"absent", nil, true},
		{"one", ratingPtr(1), true},
		{"five", ratingPtr(5), true},
		{"zero", ratingPtr(0), false},
		{"six", ratingPtr(6), false},
		{"negative", ratingPtr(-2), false},
		{"whole float", ratingPtr(4.0), true},
		{"fractional", ratingPtr(4.5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateTestimonials(base(tt.rating))
			assert.Equal(t, tt.valid, result.IsValid)
			if !tt.valid {
				assert.Equal(t, []string{
					"Testimonial at index 0 has invalid rating: " + strconv.FormatFloat(*tt.rating, 'f', -1, 64) + " (must be a whole number 1-5)",
				}, result.Errors)
			}
		})
	}
}

func TestValidateTestimonialsMissingFields(t *testing.T) {
	result := ValidateTestimonials([]Testimonial{{}})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"Testimonial at index 0 is missing required field: id",
		"Testimonial at index 0 is missing required field: clientName",
		"Testimonial at index 0 is missing required field: content",
	}, result.Errors)

	assert.Equal(t, []string{"Testimonials must be an array"}, ValidateTestimonials(nil).Errors)
}

func TestValidateBlogPosts(t *testing.T) {
	good := BlogPost{
		ID:          "1",
		Title:       "T",
		Excerpt:     "E",
		PublishDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Category:    "career",
		Status:      StatusPublished,
	}
	assert.True(t, ValidateBlogPosts([]BlogPost{good}).IsValid)

	noDate := good
	noDate.PublishDate = time.Time{}
	badStatus := good
	badStatus.Status = "pending"

	result := ValidateBlogPosts([]BlogPost{good, noDate, badStatus})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"Blog post at index 1 is missing required field: publishDate",
		"Blog post at index 2 has invalid status: pending",
	}, result.Errors)

	assert.Equal(t, []string{"Blog posts must be an array"}, ValidateBlogPosts(nil).Errors)
}

func TestValidateSiteConfig(t *testing.T) {
	assert.True(t, ValidateSiteConfig(sampleSiteConfig()).IsValid)
	assert.True(t, ValidateSiteConfig(DefaultSiteConfig()).IsValid)

	assert.Equal(t, []string{"Site config is missing"}, ValidateSiteConfig(nil).Errors)

	result := ValidateSiteConfig(&SiteConfig{})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"Site config is missing required field: siteName",
		"Site config is missing required field: author.name",
		"Site config is missing required field: contact.email",
		"Site config navigation must be an array",
	}, result.Errors)
}
