package content

// DefaultSiteConfig is served when the site configuration cannot be read, so
// consumers never see a nil configuration. Each call returns a fresh value.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		SiteName:    "Life Coaching Website",
		Tagline:     "Professional Life Coaching Services",
		Description: "Transform your life with professional coaching services.",
		Author: Author{
			Name:        "Life Coach",
			Title:       "Certified Life Coach",
			Bio:         "Professional life coach helping clients achieve their goals.",
			Credentials: []string{},
		},
		Contact: ContactInfo{
			Email:       "hello@lifecoach.com",
			SocialMedia: []SocialMediaLink{},
		},
		Navigation: []NavMenuItem{
			{ID: "home", Label: "Home", Href: "#hero"},
			{ID: "about", Label: "About", Href: "#about"},
			{ID: "services", Label: "Services", Href: "#services"},
			{ID: "contact", Label: "Contact", Href: "#contact"},
		},
		SEO: SEOConfig{
			DefaultTitle:       "Life Coaching Website",
			TitleTemplate:      "%s | Life Coaching",
			DefaultDescription: "Professional life coaching services.",
			SiteURL:            "https://lifecoach.com",
		},
	}
}
