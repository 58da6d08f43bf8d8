package content

import (
	"fmt"
	"math"
	"strconv"
)

// ValidationResult is the outcome of a structural content check. Errors lists
// every violation found, in source order.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func newResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateServices checks required fields and the category enumeration.
func ValidateServices(services []Service) ValidationResult {
	if services == nil {
		return newResult([]string{"Services must be an array"})
	}

	var errs []string
	for i, s := range services {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("Service at index %d is missing required field: id", i))
		}
		if s.Title == "" {
			errs = append(errs, fmt.Sprintf("Service at index %d is missing required field: title", i))
		}
		if s.Description == "" {
			errs = append(errs, fmt.Sprintf("Service at index %d is missing required field: description", i))
		}
		if s.Features == nil {
			errs = append(errs, fmt.Sprintf("Service at index %d features must be an array", i))
		}
		if s.Category != "" && !s.Category.Valid() {
			errs = append(errs, fmt.Sprintf("Service at index %d has invalid category: %s", i, s.Category))
		}
	}
	return newResult(errs)
}

// ValidateTestimonials checks required fields and that a present rating is
// a whole number within 1 to 5.
func ValidateTestimonials(testimonials []Testimonial) ValidationResult {
	if testimonials == nil {
		return newResult([]string{"Testimonials must be an array"})
	}

	var errs []string
	for i, t := range testimonials {
		if t.ID == "" {
			errs = append(errs, fmt.Sprintf("Testimonial at index %d is missing required field: id", i))
		}
		if t.ClientName == "" {
			errs = append(errs, fmt.Sprintf("Testimonial at index %d is missing required field: clientName", i))
		}
		if t.Content == "" {
			errs = append(errs, fmt.Sprintf("Testimonial at index %d is missing required field: content", i))
		}
		if t.Rating != nil && !validRating(*t.Rating) {
			errs = append(errs, fmt.Sprintf("Testimonial at index %d has invalid rating: %s (must be a whole number 1-5)",
				i, strconv.FormatFloat(*t.Rating, 'f', -1, 64)))
		}
	}
	return newResult(errs)
}

func validRating(r float64) bool {
	return r >= 1 && r <= 5 && r == math.Trunc(r)
}

// ValidateBlogPosts checks required fields and the status enumeration.
func ValidateBlogPosts(posts []BlogPost) ValidationResult {
	if posts == nil {
		return newResult([]string{"Blog posts must be an array"})
	}

	var errs []string
	for i, p := range posts {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("Blog post at index %d is missing required field: id", i))
		}
		if p.Title == "" {
			errs = append(errs, fmt.Sprintf("Blog post at index %d is missing required field: title", i))
		}
		if p.Excerpt == "" {
			errs = append(errs, fmt.Sprintf("Blog post at index %d is missing required field: excerpt", i))
		}
		if p.PublishDate.IsZero() {
			errs = append(errs, fmt.Sprintf("Blog post at index %d is missing required field: publishDate", i))
		}
		if p.Category == "" {
			errs = append(errs, fmt.Sprintf("Blog post at index %d is missing required field: category", i))
		}
		if p.Status != "" && !p.Status.Valid() {
			errs = append(errs, fmt.Sprintf("Blog post at index %d has invalid status: %s", i, p.Status))
		}
	}
	return newResult(errs)
}

// ValidateSiteConfig checks the fields the site cannot render without.
func ValidateSiteConfig(cfg *SiteConfig) ValidationResult {
	if cfg == nil {
		return newResult([]string{"Site config is missing"})
	}

	var errs []string
	if cfg.SiteName == "" {
		errs = append(errs, "Site config is missing required field: siteName")
	}
	if cfg.Author.Name == "" {
		errs = append(errs, "Site config is missing required field: author.name")
	}
	if cfg.Contact.Email == "" {
		errs = append(errs, "Site config is missing required field: contact.email")
	}
	if cfg.Navigation == nil {
		errs = append(errs, "Site config navigation must be an array")
	}
	return newResult(errs)
}
