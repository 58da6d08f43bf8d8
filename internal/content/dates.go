package content

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when converting source date strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate converts a content date string into a time. Dates without a zone
// are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or RFC 3339)", s)
}

// NormalizeTestimonials converts raw testimonials into their normalized
// shape. Unparseable dates are dropped and reported as warnings.
func NormalizeTestimonials(raw []RawTestimonial) ([]Testimonial, []string) {
	if raw == nil {
		return nil, nil
	}
	var warnings []string
	out := make([]Testimonial, len(raw))
	for i, r := range raw {
		t := r.Testimonial
		t.DateGiven = nil
		if r.DateGiven != "" {
			parsed, err := ParseDate(r.DateGiven)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Testimonial at index %d has invalid dateGiven: %v", i, err))
			} else {
				t.DateGiven = &parsed
			}
		}
		out[i] = t
	}
	return out, warnings
}

// NormalizeBlogPosts converts raw posts into their normalized shape without
// filtering or reordering. An unparseable publishDate leaves the zero time.
func NormalizeBlogPosts(raw []RawBlogPost) ([]BlogPost, []string) {
	if raw == nil {
		return nil, nil
	}
	var warnings []string
	out := make([]BlogPost, len(raw))
	for i, r := range raw {
		p := r.BlogPost
		p.PublishDate = time.Time{}
		p.LastModified = nil

		if r.PublishDate != "" {
			parsed, err := ParseDate(r.PublishDate)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Blog post at index %d has invalid publishDate: %v", i, err))
			} else {
				p.PublishDate = parsed
			}
		}
		if r.LastModified != "" {
			parsed, err := ParseDate(r.LastModified)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Blog post at index %d has invalid lastModified: %v", i, err))
			} else {
				p.LastModified = &parsed
			}
		}
		out[i] = p
	}
	return out, warnings
}
