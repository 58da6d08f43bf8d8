package content

import (
	"strings"
	"time"
)

// Kind names one of the four content types.
type Kind string

const (
	KindServices     Kind = "services"
	KindTestimonials Kind = "testimonials"
	KindBlogPosts    Kind = "blog-posts"
	KindSiteConfig   Kind = "site-config"
)

// Kinds lists every content type in load order.
var Kinds = []Kind{KindServices, KindTestimonials, KindBlogPosts, KindSiteConfig}

// ServiceCategory groups coaching offerings.
type ServiceCategory string

const (
	CategoryIndividual ServiceCategory = "individual"
	CategoryGroup      ServiceCategory = "group"
	CategoryWorkshop   ServiceCategory = "workshop"
	CategoryPackage    ServiceCategory = "package"
)

// Valid reports whether c is one of the known categories.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryIndividual, CategoryGroup, CategoryWorkshop, CategoryPackage:
		return true
	}
	return false
}

// PostStatus is the publication state of a blog post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Service is a coaching offering.
type Service struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description" yaml:"description"`
	Features       []string        `json:"features" yaml:"features"`
	Duration       string          `json:"duration,omitempty" yaml:"duration,omitempty"`
	Price          string          `json:"price,omitempty" yaml:"price,omitempty"`
	Category       ServiceCategory `json:"category,omitempty" yaml:"category,omitempty"`
	Availability   *bool           `json:"availability,omitempty" yaml:"availability,omitempty"`
	CallToAction   string          `json:"callToAction,omitempty" yaml:"callToAction,omitempty"`
	TargetAudience string          `json:"targetAudience,omitempty" yaml:"targetAudience,omitempty"`
}

// BeforeAfter describes a client's situation before and after coaching.
type BeforeAfter struct {
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// Testimonial is client feedback. DateGiven is nil when the source had none.
// Rating is decoded as any number so that a malformed value is reported by
// validation instead of failing the whole document.
type Testimonial struct {
	ID          string       `json:"id" yaml:"id"`
	ClientName  string       `json:"clientName" yaml:"clientName"`
	Content     string       `json:"content" yaml:"content"`
	Outcome     string       `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	ClientPhoto string       `json:"clientPhoto,omitempty" yaml:"clientPhoto,omitempty"`
	Rating      *float64     `json:"rating,omitempty" yaml:"rating,omitempty"`
	ServiceUsed string       `json:"serviceUsed,omitempty" yaml:"serviceUsed,omitempty"`
	DateGiven   *time.Time   `json:"dateGiven,omitempty" yaml:"-"`
	Featured    bool         `json:"featured,omitempty" yaml:"featured,omitempty"`
	ClientTitle string       `json:"clientTitle,omitempty" yaml:"clientTitle,omitempty"`
	Location    string       `json:"location,omitempty" yaml:"location,omitempty"`
	BeforeAfter *BeforeAfter `json:"beforeAfter,omitempty" yaml:"beforeAfter,omitempty"`
}

// RawTestimonial is a testimonial as stored in the source, dates still strings.
type RawTestimonial struct {
	Testimonial `yaml:",inline"`
	DateGiven   string `json:"dateGiven,omitempty" yaml:"dateGiven,omitempty"`
}

// BlogPost is an article. PublishDate is the zero time when the source date
// was missing or unparseable.
type BlogPost struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Excerpt        string     `json:"excerpt" yaml:"excerpt"`
	Content        string     `json:"content" yaml:"content"`
	PublishDate    time.Time  `json:"publishDate" yaml:"-"`
	Category       string     `json:"category" yaml:"category"`
	Featured       bool       `json:"featured,omitempty" yaml:"featured,omitempty"`
	Author         string     `json:"author,omitempty" yaml:"author,omitempty"`
	Tags           []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	ReadTime       int        `json:"readTime,omitempty" yaml:"readTime,omitempty"`
	Status         PostStatus `json:"status,omitempty" yaml:"status,omitempty"`
	SEOTitle       string     `json:"seoTitle,omitempty" yaml:"seoTitle,omitempty"`
	SEODescription string     `json:"seoDescription,omitempty" yaml:"seoDescription,omitempty"`
	FeaturedImage  string     `json:"featuredImage,omitempty" yaml:"featuredImage,omitempty"`
	LastModified   *time.Time `json:"lastModified,omitempty" yaml:"-"`
}

// RawBlogPost is a blog post as stored in the source, dates still strings.
type RawBlogPost struct {
	BlogPost     `yaml:",inline"`
	PublishDate  string `json:"publishDate" yaml:"publishDate"`
	LastModified string `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
}

// NavMenuItem is one entry of the site navigation.
type NavMenuItem struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Href     string `json:"href" yaml:"href"`
	External bool   `json:"external,omitempty" yaml:"external,omitempty"`
}

// SocialMediaLink points at one of the coach's social profiles.
type SocialMediaLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
	Label    string `json:"label" yaml:"label"`
}

// Address is a postal address; every part is optional.
type Address struct {
	Street  string `json:"street,omitempty" yaml:"street,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" yaml:"zipCode,omitempty"`
}

// ContactInfo holds the public contact details.
type ContactInfo struct {
	Email         string            `json:"email" yaml:"email"`
	Phone         string            `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address       *Address          `json:"address,omitempty" yaml:"address,omitempty"`
	SocialMedia   []SocialMediaLink `json:"socialMedia,omitempty" yaml:"socialMedia,omitempty"`
	BusinessHours map[string]string `json:"businessHours,omitempty" yaml:"businessHours,omitempty"`
}

// Author describes the coach.
type Author struct {
	Name        string   `json:"name" yaml:"name"`
	Title       string   `json:"title" yaml:"title"`
	Bio         string   `json:"bio" yaml:"bio"`
	Photo       string   `json:"photo,omitempty" yaml:"photo,omitempty"`
	Credentials []string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// SEOConfig is the default search-engine metadata.
type SEOConfig struct {
	DefaultTitle       string `json:"defaultTitle" yaml:"defaultTitle"`
	TitleTemplate      string `json:"titleTemplate" yaml:"titleTemplate"`
	DefaultDescription string `json:"defaultDescription" yaml:"defaultDescription"`
	SiteURL            string `json:"siteUrl" yaml:"siteUrl"`
	OGImage            string `json:"ogImage,omitempty" yaml:"ogImage,omitempty"`
}

// SiteConfig is the site-wide configuration content.
type SiteConfig struct {
	SiteName    string        `json:"siteName" yaml:"siteName"`
	Tagline     string        `json:"tagline" yaml:"tagline"`
	Description string        `json:"description" yaml:"description"`
	Author      Author        `json:"author" yaml:"author"`
	Contact     ContactInfo   `json:"contact" yaml:"contact"`
	Navigation  []NavMenuItem `json:"navigation" yaml:"navigation"`
	SEO         SEOConfig     `json:"seo" yaml:"seo"`
}

// PageTitle applies the SEO title template to a page name. An empty page
// yields the default title.
func (c *SiteConfig) PageTitle(page string) string {
	if page == "" {
		return c.SEO.DefaultTitle
	}
	if strings.Contains(c.SEO.TitleTemplate, "%s") {
		return strings.Replace(c.SEO.TitleTemplate, "%s", page, 1)
	}
	return page
}
