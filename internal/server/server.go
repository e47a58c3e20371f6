package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/temple-portal/internal/auth"
	"github.com/iwvelando/temple-portal/internal/content"
	"github.com/iwvelando/temple-portal/internal/metrics"
	"github.com/iwvelando/temple-portal/internal/realtime"
	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// maxJSONBodyBytes bounds JSON request bodies; uploads use the configured
// upload size instead.
const maxJSONBodyBytes = 1 << 20

// Dependencies are the services the HTTP handler exposes. Auth, Hub and
// Metrics are optional.
type Dependencies struct {
	Logger        *zap.Logger
	Content       *content.Service
	Auth          *auth.Authenticator
	Hub           *realtime.Hub
	Metrics       *metrics.Metrics
	MediaDir      string
	MediaURL      string
	MaxUploadSize int64
	Version       string
}

type handler struct {
	logger        *zap.Logger
	content       *content.Service
	auth          *auth.Authenticator
	metrics       *metrics.Metrics
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the public site, the
// content API, and the administrator API.
func NewHandler(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := deps.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(deps.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		content:       deps.Content,
		auth:          deps.Auth,
		metrics:       deps.Metrics,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	app := http.NewServeMux()

	app.HandleFunc("GET /api/version", h.handleVersion)
	app.HandleFunc("GET /api/tamil-date", h.handleTamilDate)
	app.HandleFunc("GET /api/calendar/transitions", h.handleTransitions)
	app.HandleFunc("GET /api/notices", h.handlePublicNotices)
	app.HandleFunc("GET /api/poojas", h.handleListPoojas)
	app.HandleFunc("GET /api/poojas/highlight", h.handleHighlight)
	app.HandleFunc("GET /api/committee", h.handleListMembers)
	app.HandleFunc("GET /api/gallery", h.handleListMedia)
	app.HandleFunc("POST /api/admin/login", h.handleLogin)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/admin/notices", h.handleAdminNotices)
	admin.HandleFunc("POST /api/admin/notices", h.handleAddNotice)
	admin.HandleFunc("PUT /api/admin/notices/{id}", h.handleUpdateNotice)
	admin.HandleFunc("DELETE /api/admin/notices/{id}", h.handleDeleteNotice)
	admin.HandleFunc("POST /api/admin/poojas", h.handleSavePooja)
	admin.HandleFunc("PUT /api/admin/poojas/{id}", h.handleSavePooja)
	admin.HandleFunc("DELETE /api/admin/poojas/{id}", h.handleDeletePooja)
	admin.HandleFunc("GET /api/admin/poojas/{id}/form", h.handlePoojaForm)
	admin.HandleFunc("POST /api/admin/poojas/restore", h.handleRestorePoojas)
	admin.HandleFunc("POST /api/admin/committee", h.handleAddMember)
	admin.HandleFunc("DELETE /api/admin/committee/{id}", h.handleDeleteMember)
	admin.HandleFunc("POST /api/admin/gallery/upload", h.handleUploadMedia)
	admin.HandleFunc("POST /api/admin/gallery/link", h.handleLinkMedia)
	admin.HandleFunc("DELETE /api/admin/gallery/{id}", h.handleDeleteMedia)
	if h.auth != nil {
		app.Handle("/api/admin/", h.auth.Middleware(recordRoute(admin)))
	} else {
		app.HandleFunc("/api/admin/", func(w http.ResponseWriter, r *http.Request) {
			h.respondErrorWithOp(w, http.StatusServiceUnavailable, "administrator sign-in is not configured", "server.admin")
		})
	}

	if deps.MediaDir != "" {
		prefix := deps.MediaURL
		if prefix == "" {
			prefix = "/media/"
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		app.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(deps.MediaDir))))
	}

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	app.Handle("/", http.FileServer(http.FS(sub)))

	mux := http.NewServeMux()
	if deps.Hub != nil {
		mux.Handle("GET /ws", deps.Hub)
	}
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
	mux.Handle("/", h.instrument(app))
	return mux
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

type routeKey struct{}

// recordRoute reports the pattern matched by next back to instrument.
// Middleware between the two muxes may hand next a copy of the request, so
// the outer request never sees the inner pattern.
func recordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if route, ok := r.Context().Value(routeKey{}).(*string); ok && r.Pattern != "" {
			*route = r.Pattern
		}
	})
}

func (h *handler) instrument(next http.Handler) http.Handler {
	if h.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		var inner string
		r = r.WithContext(context.WithValue(r.Context(), routeKey{}, &inner))
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if inner != "" {
			route = inner
		}
		if route == "" {
			route = "unmatched"
		}
		h.metrics.ObserveRequest(route, r.Method, fmt.Sprintf("%d", rec.status), time.Since(start))
	})
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", content.ErrValidation, err)
	}
	return nil
}

// respondServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged in full and reported generically.
func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, content.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, content.ErrGalleryFull):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrDisabled), errors.Is(err, content.ErrStorageUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	h.respondErrorWithOp(w, status, msg, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Info("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
