// Package api exposes the HTTP interface consumed by the map frontend.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hclin/camradar/internal/camera"
	"github.com/hclin/camradar/internal/metrics"
	"github.com/hclin/camradar/internal/proxy"
)

// Discovery is the camera lookup surface the server fronts.
// *discovery.Service satisfies it.
type Discovery interface {
	ListCamerasNear(ctx context.Context, lat, lon float64) ([]camera.Summary, error)
	ResolveCameraDetail(ctx context.Context, id string) (*camera.Detail, error)
	CachedCamera(id string) (camera.Record, bool)
	SnapshotURL(id string) string
}

// Server wires HTTP handlers to the discovery service.
type Server struct {
	router    chi.Router
	discovery Discovery
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(discovery Discovery, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{discovery: discovery, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, metrics.MetricsPath, metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/cameras", func(r chi.Router) {
			r.Get("/", s.listCameras)
			r.Route("/{camera_id}", func(r chi.Router) {
				r.Get("/", s.getCameraDetail)
				r.Get("/cached", s.getCachedCamera)
				r.Get("/snapshot", s.getSnapshotURL)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// All state is in-memory; once the process is up it is ready.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) listCameras(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r.URL.Query().Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	lon, err := parseCoord(r.URL.Query().Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lon")
		return
	}
	cameras, err := s.discovery.ListCamerasNear(r.Context(), lat, lon)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	if cameras == nil {
		cameras = []camera.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cameras": cameras, "count": len(cameras)})
}

func (s *Server) getCameraDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "camera_id")
	detail, err := s.discovery.ResolveCameraDetail(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "camera has no published coordinates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"camera": detail})
}

func (s *Server) getCachedCamera(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "camera_id")
	rec, ok := s.discovery.CachedCamera(id)
	if !ok {
		writeError(w, http.StatusNotFound, "camera not cached")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"camera": rec})
}

func (s *Server) getSnapshotURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "camera_id")
	writeJSON(w, http.StatusOK, map[string]string{"url": s.discovery.SnapshotURL(id)})
}

// writeLookupError maps discovery failures onto upstream-flavored statuses.
func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	s.logger.Warn("lookup failed", zap.Error(err))
	var httpErr *proxy.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
		writeError(w, http.StatusNotFound, "origin page not found")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func parseCoord(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("missing coordinate")
	}
	return strconv.ParseFloat(raw, 64)
}
