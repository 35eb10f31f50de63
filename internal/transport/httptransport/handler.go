package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/awmpietro/golang-case-classification/internal/app"
	"github.com/awmpietro/golang-case-classification/internal/transport/classifydto"
)

type Handler struct {
	svc    app.ClassificationService
	logger zerolog.Logger
}

func NewHandler(svc app.ClassificationService, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the classification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/classify", h.Classify)
	r.Post("/describe", h.Describe)
	r.Get("/diseases", h.Diseases)
}

// NewRouter builds the service router. metrics is mounted on /metrics when
// not nil.
func NewRouter(h *Handler, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	h.Register(r)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var in classifydto.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, classifydto.ErrorBody("invalid json", err))
		return
	}

	res, err := h.svc.Classify(in.ToApp())
	if err != nil {
		writeJSON(w, classifydto.Status(err), classifydto.ErrorBody("classification failed", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	var in classifydto.DescribeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, classifydto.ErrorBody("invalid json", err))
		return
	}
	if in.Locale == "" {
		in.Locale = r.Header.Get("Accept-Language")
	}

	res, err := h.svc.Describe(in.ToApp())
	if err != nil {
		writeJSON(w, classifydto.Status(err), classifydto.ErrorBody("describe failed", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Diseases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classifydto.DiseasesResponse{Diseases: h.svc.Diseases()})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
