package httpapp

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/devsocial/devsocial/internal/ai"
	"github.com/devsocial/devsocial/internal/auth"
	"github.com/devsocial/devsocial/internal/config"
	"github.com/devsocial/devsocial/internal/engagement"
	"github.com/devsocial/devsocial/internal/feed"
	"github.com/devsocial/devsocial/internal/media"
	"github.com/devsocial/devsocial/internal/metrics"
	"github.com/devsocial/devsocial/internal/rate"
	"github.com/devsocial/devsocial/internal/store"

	_ "github.com/devsocial/devsocial/docs" // swagger docs
)

// APIVersion is reported by GET /api/.
const APIVersion = "1.0.0"

// Deps are the services a Server routes to. Store, Auth, Engagement and Feed
// are required; the rest fall back to safe defaults.
type Deps struct {
	Store      store.Store
	Auth       *auth.Service
	Engagement *engagement.Service
	Feed       *feed.Service
	AI         *ai.Service
	Media      *media.Store
	Limiter    rate.Limiter
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

type Server struct {
	store      store.Store
	auth       *auth.Service
	engagement *engagement.Service
	feed       *feed.Service
	ai         *ai.Service
	media      *media.Store
	limiter    rate.Limiter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	cfg        config.Config
	handler    http.Handler
}

func NewServer(deps Deps, cfg config.Config) *Server {
	s := &Server{
		store:      deps.Store,
		auth:       deps.Auth,
		engagement: deps.Engagement,
		feed:       deps.Feed,
		ai:         deps.AI,
		media:      deps.Media,
		limiter:    deps.Limiter,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        cfg,
	}
	if s.ai == nil {
		s.ai = ai.NewService(nil, s.metrics, s.logger)
	}
	if s.limiter == nil {
		s.limiter = rate.NewMemory()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.handler = s.cors(s.routes())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { notFound(w) })
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { methodNotAllowed(w) })
	r.Use(s.instrument)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleGetStats).Methods(http.MethodGet)
	api.HandleFunc("/admin/reconcile", s.handleAdminReconcile).Methods(http.MethodPost)
	api.HandleFunc("/openapi.json", s.serveOpenAPIJSON).Methods(http.MethodGet)
	api.HandleFunc("/openapi.yaml", s.serveOpenAPIYAML).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	api.HandleFunc("/users/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/username/{username}", s.handleGetUserByUsername).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/follow", s.handleToggleFollow).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/is-following", s.handleIsFollowing).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/followers", s.handleFollowers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/following", s.handleFollowing).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/posts", s.handleUserPosts).Methods(http.MethodGet)

	// /posts/feed must be registered before /posts/{id}.
	api.HandleFunc("/posts", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/feed", s.handleHomeFeed).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", s.handleGetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", s.handleDeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{id}/like", s.handleToggleLike).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comments", s.handleCreateComment).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comments", s.handleListComments).Methods(http.MethodGet)

	api.HandleFunc("/search/posts", s.handleSearchPosts).Methods(http.MethodGet)
	api.HandleFunc("/search/users", s.handleSearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/hashtags/{tag}/posts", s.handleHashtagPosts).Methods(http.MethodGet)
	api.HandleFunc("/trending/hashtags", s.handleTrending).Methods(http.MethodGet)

	api.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/mark-read", s.handleMarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/unread-count", s.handleUnreadCount).Methods(http.MethodGet)

	api.HandleFunc("/ai/check-content", s.handleCheckContent).Methods(http.MethodPost)
	api.HandleFunc("/ai/explain-code", s.handleExplainCode).Methods(http.MethodPost)
	api.HandleFunc("/ai/detect-bugs", s.handleDetectBugs).Methods(http.MethodPost)
	api.HandleFunc("/ai/generate-caption", s.handleGenerateCaption).Methods(http.MethodPost)
	api.HandleFunc("/ai/career-guidance", s.handleCareerGuidance).Methods(http.MethodPost)

	api.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/uploads/{name}", s.handleServeUpload).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument logs each matched request and records it under its route
// template so path parameters do not explode label cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(route, r.Method, rec.status, elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	allowAll := len(s.cfg.CORSOrigins) == 0
	allowed := make(map[string]bool, len(s.cfg.CORSOrigins))
	for _, o := range s.cfg.CORSOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			h := w.Header()
			if allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Admin-Secret")
		}
		if r.Method == http.MethodOptions && strings.TrimSpace(r.Header.Get("Access-Control-Request-Method")) != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
