package content

import (
	"strings"

	"golang.org/x/text/cases"
)

// filter returns the elements of list for which keep is true, in order.
// The result is never nil and never aliases list.
func filter[T any](list []T, keep func(*T) bool) []T {
	out := make([]T, 0, len(list))
	for i := range list {
		if keep(&list[i]) {
			out = append(out, list[i])
		}
	}
	return out
}

// FilterServicesByCategory returns the services whose category equals category exactly.
func FilterServicesByCategory(services []Service, category string) []Service {
	return filter(services, func(s *Service) bool {
		return string(s.Category) == category
	})
}

// GetAvailableServices drops services explicitly marked unavailable. A
// service without an availability flag counts as available.
func GetAvailableServices(services []Service) []Service {
	return filter(services, func(s *Service) bool {
		return s.Availability == nil || *s.Availability
	})
}

// GetFeaturedTestimonials returns the testimonials flagged as featured.
func GetFeaturedTestimonials(testimonials []Testimonial) []Testimonial {
	return filter(testimonials, func(t *Testimonial) bool {
		return t.Featured
	})
}

// GetFeaturedBlogPosts returns the posts flagged as featured.
func GetFeaturedBlogPosts(posts []BlogPost) []BlogPost {
	return filter(posts, func(p *BlogPost) bool {
		return p.Featured
	})
}

// GetBlogPostsByCategory returns the posts whose category equals category exactly.
func GetBlogPostsByCategory(posts []BlogPost, category string) []BlogPost {
	return filter(posts, func(p *BlogPost) bool {
		return p.Category == category
	})
}

// SearchBlogPosts matches query case-insensitively as a substring of the
// title, excerpt, any tag or the category.
func SearchBlogPosts(posts []BlogPost, query string) []BlogPost {
	fold := cases.Fold()
	q := fold.String(query)
	contains := func(s string) bool {
		return strings.Contains(fold.String(s), q)
	}

	return filter(posts, func(p *BlogPost) bool {
		if contains(p.Title) || contains(p.Excerpt) || contains(p.Category) {
			return true
		}
		for _, tag := range p.Tags {
			if contains(tag) {
				return true
			}
		}
		return false
	})
}

// FindBlogPost looks a post up by id.
func FindBlogPost(posts []BlogPost, id string) (BlogPost, bool) {
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return BlogPost{}, false
}

// FindService looks a service up by id.
func FindService(services []Service, id string) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}
