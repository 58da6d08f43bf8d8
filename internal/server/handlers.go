package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conneroisu/coachsite/internal/content"
	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/conneroisu/coachsite/internal/render"
	"github.com/conneroisu/coachsite/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(s.cors)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/site", s.handleSite)
		r.Get("/services", s.handleServices)
		r.Get("/services/{id}", s.handleService)
		r.Get("/testimonials", s.handleTestimonials)
		r.Get("/blog", s.handleBlogPosts)
		r.Get("/blog/{id}", s.handleBlogPost)
		if !s.config.Server.IsProduction() {
			r.Post("/cache/clear", s.handleClearCache)
		}
	})

	// Every method reaches the contact handler so it can answer 405 itself.
	r.Group(func(r chi.Router) {
		if s.contactRate != nil {
			r.Use(s.contactRate.Middleware)
		}
		r.HandleFunc("/contact", s.handleContact)
		r.HandleFunc("/contact.php", s.handleContact)
	})

	return r
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// writeSiteError answers with the status mapped from err and its message.
func writeSiteError(w http.ResponseWriter, err error, fallback string) {
	message := fallback
	var se *errors.SiteError
	if errors.As(err, &se) && se.Message != "" {
		message = se.Message
	}
	writeError(w, errors.HTTPStatus(err), message)
}

type healthResponse struct {
	Status      string          `json:"status"`
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Cache       map[string]bool `json:"cache"`
	Clients     int             `json:"clients"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cache := make(map[string]bool, len(content.Kinds))
	for _, kind := range content.Kinds {
		cache[string(kind)] = s.content.Cached(kind)
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Version:     version.GetShortVersion(),
		Environment: s.config.Server.Environment,
		Cache:       cache,
		Clients:     s.hub.ClientCount(),
		Timestamp:   time.Now(),
	})
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.LoadSiteConfig(r.Context()))
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	services := s.content.LoadServices(r.Context())
	query := r.URL.Query()
	if category := query.Get("category"); category != "" {
		services = content.FilterServicesByCategory(services, category)
	}
	if query.Get("available") == "true" {
		services = content.GetAvailableServices(services)
	}
	writeJSON(w, http.StatusOK, services)
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	service, ok := content.FindService(s.content.LoadServices(r.Context()), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	writeJSON(w, http.StatusOK, service)
}

func (s *Server) handleTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials := s.content.LoadTestimonials(r.Context())
	if r.URL.Query().Get("featured") == "true" {
		testimonials = content.GetFeaturedTestimonials(testimonials)
	}
	writeJSON(w, http.StatusOK, testimonials)
}

func (s *Server) handleBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts := s.content.LoadBlogPosts(r.Context())
	query := r.URL.Query()
	if q := query.Get("q"); q != "" {
		posts = content.SearchBlogPosts(posts, q)
	}
	if category := query.Get("category"); category != "" {
		posts = content.GetBlogPostsByCategory(posts, category)
	}
	if query.Get("featured") == "true" {
		posts = content.GetFeaturedBlogPosts(posts)
	}
	writeJSON(w, http.StatusOK, posts)
}

type blogPostResponse struct {
	*render.Post
	PageTitle string `json:"pageTitle"`
}

func (s *Server) handleBlogPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, ok := content.FindBlogPost(s.content.LoadBlogPosts(ctx), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Blog post not found")
		return
	}

	rendered, err := s.renderer.Post(post)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to render blog post", "id", post.ID)
		writeSiteError(w, err, "Failed to render blog post")
		return
	}

	title := post.SEOTitle
	if title == "" {
		title = post.Title
	}
	writeJSON(w, http.StatusOK, blogPostResponse{
		Post:      rendered,
		PageTitle: s.content.LoadSiteConfig(ctx).PageTitle(title),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.content.ClearCache()
	s.notifyContentUpdated("")
	s.logger.Info(r.Context(), "Content cache cleared on request")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Cache cleared",
	})
}
