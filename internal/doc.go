// Package internal contains the implementation packages of coachsite.
//
// # Package Organization
//
//   - content: loading, normalization, validation and caching of services,
//     testimonials, blog posts and the site configuration
//   - render: Markdown to HTML for blog posts, with read time estimates
//   - server: JSON API, contact relay endpoint and live reload websocket
//   - mail: enquiry composition and SMTP delivery
//   - inbox: SQLite log of every accepted enquiry
//   - watcher: debounced file system notifications for content files
//   - config: Viper-backed settings with validation
//   - errors: structured errors shared across packages
//   - logging: structured logging on top of log/slog
//   - version: build metadata
package internal
