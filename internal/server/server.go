// Package server exposes site content over a JSON API, relays contact form
// enquiries and pushes live reload notifications to websocket clients.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/content"
	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/conneroisu/coachsite/internal/inbox"
	"github.com/conneroisu/coachsite/internal/logging"
	"github.com/conneroisu/coachsite/internal/mail"
	"github.com/conneroisu/coachsite/internal/render"
	"github.com/conneroisu/coachsite/internal/watcher"
	"github.com/go-chi/chi/v5"
)

// Options carries the collaborators a Server is built from.
type Options struct {
	Config  *config.Config
	Content *content.Manager
	Mailer  mail.Mailer

	// Inbox is optional; enquiries are not recorded when it is nil.
	Inbox  *inbox.Store
	Logger logging.Logger
}

// Server is the HTTP front of the site.
type Server struct {
	config   *config.Config
	content  *content.Manager
	renderer *render.Renderer
	mailer   mail.Mailer
	inbox    *inbox.Store
	logger   logging.Logger

	hub         *Hub
	contactRate *RateLimiter
	watcher     *watcher.FileWatcher
	router      chi.Router

	httpServer   *http.Server
	serverMutex  sync.Mutex
	shutdownOnce sync.Once
}

// UpdateMessage is pushed to websocket clients.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageContentUpdated tells clients to refetch content.
const MessageContentUpdated = "content-updated"

// New creates a server. Config and Content are required.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "server config is required")
	}
	if opts.Content == nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "content manager is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	mailer := opts.Mailer
	if mailer == nil {
		mailer = mail.NewLogMailer(logger)
	}

	s := &Server{
		config:   opts.Config,
		content:  opts.Content,
		renderer: render.New(),
		mailer:   mailer,
		inbox:    opts.Inbox,
		logger:   logger,
		hub:      NewHub(logger),
	}
	if opts.Config.Contact.RateLimit > 0 {
		s.contactRate = NewRateLimiter(RateLimit{
			RequestsPerMinute: opts.Config.Contact.RateLimit,
			BurstLimit:        opts.Config.Contact.RateLimit,
		})
	}
	s.router = s.routes()

	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the server until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	if s.config.Content.Watch && s.config.Content.Dir != "" {
		if err := s.startWatcher(ctx); err != nil {
			// Live reload is optional; keep serving without it.
			s.logger.Warn(ctx, err, "Content watcher disabled", "dir", s.config.Content.Dir)
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Server.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	httpServer := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Server listening",
		"addr", httpServer.Addr,
		"environment", s.config.Server.Environment,
	)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.WrapIO(err, errors.ErrCodeInternalError, "server stopped", httpServer.Addr)
	}
	return nil
}

func (s *Server) startWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(s.config.Content.Debounce, s.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.ContentFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		s.handleContentChange(ctx, events)
		return nil
	})

	if err := fw.AddRecursive(s.config.Content.Dir); err != nil {
		_ = fw.Stop()
		return err
	}
	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}

	s.watcher = fw
	s.logger.Info(ctx, "Watching content for changes", "dir", s.config.Content.Dir)
	return nil
}

func (s *Server) handleContentChange(ctx context.Context, events []watcher.ChangeEvent) {
	paths := make([]string, 0, len(events))
	for _, e := range events {
		paths = append(paths, e.Path)
	}
	s.logger.Info(ctx, "Content changed, clearing cache", "files", paths)
	s.content.ClearCache()
	s.notifyContentUpdated("")
}

func (s *Server) notifyContentUpdated(target string) {
	s.hub.Broadcast(UpdateMessage{
		Type:      MessageContentUpdated,
		Target:    target,
		Timestamp: time.Now(),
	})
}

// Shutdown stops the watcher, disconnects websocket clients and drains the
// HTTP server. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop content watcher")
			}
		}
		if s.contactRate != nil {
			s.contactRate.Stop()
		}
		s.hub.Close()

		s.serverMutex.Lock()
		httpServer := s.httpServer
		s.serverMutex.Unlock()
		if httpServer != nil {
			shutdownErr = httpServer.Shutdown(ctx)
		}
	})
	return shutdownErr
}
