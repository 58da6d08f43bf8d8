// Package fixtures embeds the default site content served when no content
// directory is configured.
package fixtures

import "embed"

// FS holds services.json, testimonials.json, blog-posts.json and
// site-config.json.
//
//go:embed *.json
var FS embed.FS
