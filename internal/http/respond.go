package httpapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/devsocial/devsocial/internal/ai"
	"github.com/devsocial/devsocial/internal/auth"
	"github.com/devsocial/devsocial/internal/engagement"
	"github.com/devsocial/devsocial/internal/feed"
	"github.com/devsocial/devsocial/internal/media"
	"github.com/devsocial/devsocial/internal/rate"
	"github.com/devsocial/devsocial/internal/store"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *auth.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateUser),
		errors.Is(err, engagement.ErrInvalidOperation),
		errors.Is(err, engagement.ErrInvalidInput),
		errors.Is(err, media.ErrTypeNotAllowed),
		errors.Is(err, media.ErrInvalidName),
		errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, engagement.ErrForbidden):
		return http.StatusForbidden
	case auth.IsUnauthorized(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status statusFor picks. notFound names the missing
// resource ("Post not found") for 404s.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status := statusFor(err)
	var msg string
	var verr *auth.ValidationError
	switch {
	case status == http.StatusNotFound && notFound != "":
		msg = notFound
	case errors.As(err, &verr):
		msg = verr.Msg
	case errors.Is(err, ai.ErrNotConfigured):
		msg = ai.ErrNotConfigured.Error()
	case errors.Is(err, ai.ErrUnavailable):
		msg = ai.ErrUnavailable.Error()
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	default:
		msg = detail(err)
	}
	writeError(w, status, errors.New(msg))
}

// detail returns the last segment of a wrapped error message, capitalized.
func detail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	secs := int(retry.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": secs,
	})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return def
}

// pageParams reads skip and limit. Clamping happens in the feed package.
func pageParams(r *http.Request) (skip, limit int) {
	q := r.URL.Query()
	return parseIntDefault(q.Get("skip"), 0), parseIntDefault(q.Get("limit"), 0)
}

func (s *Server) allowRateLimit(w http.ResponseWriter, r *http.Request, action string, perMinute int) bool {
	key := fmt.Sprintf("%s:ip:%s", action, s.clientIP(r))
	if ok, retry := s.limiter.Allow(key, rate.PerMinute(perMinute)); !ok {
		writeRateLimit(w, retry)
		return false
	}
	return true
}

// requireAuth resolves the caller or writes 401. Store failures while
// resolving go through fail.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := s.auth.Resolve(r.Context(), r.Header.Get("Authorization"), auth.Required)
	if err != nil {
		if auth.IsUnauthorized(err) {
			writeError(w, http.StatusUnauthorized, err)
		} else {
			s.fail(w, r, err, "")
		}
		return auth.Identity{}, false
	}
	return *id, true
}

// viewer resolves the caller when a valid token is present and is anonymous
// otherwise.
func (s *Server) viewer(r *http.Request) feed.Viewer {
	id, err := s.auth.Resolve(r.Context(), r.Header.Get("Authorization"), auth.Optional)
	if err != nil {
		s.logger.Warn("resolve viewer failed", "path", r.URL.Path, "error", err)
	}
	if id == nil {
		return ""
	}
	return feed.Viewer(id.UserID)
}

func (s *Server) clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
