// Package chi exposes the derived photo indices over HTTP.
package chi

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/domain"
	"github.com/oldto/oldto/internal/etag"
	"github.com/oldto/oldto/internal/index"
	"github.com/oldto/oldto/internal/state"
)

// byLocationRadiusKm is the legacy point-query radius: a stored location
// must lie within this distance of the requested coordinate to be returned.
const byLocationRadiusKm = 0.005

// jsIdent validates the ?var= callback name. Anything else would let a
// request inject arbitrary script into the JS-wrapped payload.
var jsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Server serves read-only queries against the currently published snapshot.
type Server struct {
	state  *state.Holder
	logger *zap.Logger
}

// NewServer creates an HTTP API server over the snapshot holder.
func NewServer(st *state.Holder, logger *zap.Logger) *Server {
	return &Server{state: st, logger: logger}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/locations_ex.json", s.LocationCounts)
	r.Get("/api/locations/{location}", s.Location)
	r.Get("/api/images_ex.json", s.FeaturedImages)
	r.Get("/api/images/{image}", s.Image)

	// Legacy aliases kept for old clients.
	r.Get("/api/oldtoronto/lat_lng_counts", s.LocationCounts)
	r.Get("/api/oldtoronto/by_location", s.ByLocation)

	r.Get("/healthz", s.Health)
	r.Get("/metrics", s.Metrics)
}

// LocationCounts handles GET /api/locations_ex.json: the per-location year
// histogram, optionally wrapped in a JS variable assignment via ?var=.
func (s *Server) LocationCounts(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	if s.notModified(w, r, snap.ETag) {
		return
	}

	varName := r.URL.Query().Get("var")
	if varName == "" {
		writeRaw(w, "application/json", snap.YearsJSON)
		return
	}
	if !jsIdent.MatchString(varName) {
		writeError(w, http.StatusBadRequest, "bad_request", "var must be a valid JS identifier")
		return
	}

	w.Header().Set("Content-Type", "text/javascript")
	_, _ = w.Write([]byte("var " + varName + " = "))
	_, _ = w.Write(snap.YearsJSON)
	_, _ = w.Write([]byte(";\n"))
}

// Location handles GET /api/locations/{location}.json: every image recorded
// at one canonical location key.
func (s *Server) Location(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	key, ok := trimJSON(chi.URLParam(r, "location"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", domain.ErrLocationNotFound.Error())
		return
	}
	images, err := snap.Location(key)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if s.notModified(w, r, snap.ETag) {
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// FeaturedImages handles GET /api/images_ex.json: the ranked featured list.
func (s *Server) FeaturedImages(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	if s.notModified(w, r, snap.ETag) {
		return
	}
	writeRaw(w, "application/json", snap.FeaturedJSON)
}

// Image handles GET /api/images/{image}.json: one flattened image record.
func (s *Server) Image(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	id, ok := trimJSON(chi.URLParam(r, "image"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", domain.ErrImageNotFound.Error())
		return
	}
	props, err := snap.Image(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if s.notModified(w, r, snap.ETag) {
		return
	}
	writeJSON(w, http.StatusOK, props)
}

// ByLocation handles GET /api/oldtoronto/by_location?lat=..&lng=..: images
// at any stored location within a few meters of the requested point. The
// fuzz absorbs float formatting differences between clients.
func (s *Server) ByLocation(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "lat and lng must be decimal degrees")
		return
	}
	if s.notModified(w, r, snap.ETag) {
		return
	}
	writeJSON(w, http.StatusOK, snap.Near(lat, lng, byLocationRadiusKm))
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Current()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"features":  snap.Features,
		"locations": len(snap.Locations),
		"images":    len(snap.Images),
		"featured":  len(snap.Featured),
		"etag":      snap.ETag,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// snapshot fetches the current snapshot, answering 503 when the first load
// has not completed yet.
func (s *Server) snapshot(w http.ResponseWriter) (*index.Snapshot, bool) {
	snap := s.state.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "index not loaded yet")
		return nil, false
	}
	return snap, true
}

// notModified stamps the ETag header and answers 304 when If-None-Match
// already carries the current fingerprint.
func (s *Server) notModified(w http.ResponseWriter, r *http.Request, tag string) bool {
	w.Header().Set("ETag", strconv.Quote(tag))
	if etag.Match(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

// trimJSON strips the mandatory .json suffix from a path parameter.
func trimJSON(param string) (string, bool) {
	key, ok := strings.CutSuffix(param, ".json")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func writeRaw(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps lookup sentinels to HTTP statuses without exposing
// internals for anything unexpected.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLocationNotFound), errors.Is(err, domain.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
