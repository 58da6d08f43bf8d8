// Package content loads, normalizes, validates and caches the site content:
// coaching services, client testimonials, blog posts and the site
// configuration.
//
// A Manager is built once by the composition root around a Source and shared
// by every consumer:
//
//	manager := content.NewManager(content.NewDirSource("./content"), logger)
//	posts := manager.LoadBlogPosts(ctx)
//	featured := content.GetFeaturedBlogPosts(posts)
//
// Load methods never return errors. A source that cannot be read yields an
// empty list, or DefaultSiteConfig for the site configuration, and the
// failure is logged. Structural problems found by the Validate functions are
// logged as warnings while the content is still served.
//
// The filter and search helpers are pure functions over loaded lists. They
// never modify their input and always return a new slice.
package content
