package facilitator

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/402labs/facilitator"
)

// NewRouter builds the facilitator's HTTP surface: POST / and POST
// /facilitator both run the settlement pipeline, GET / and GET /health
// report liveness. CORS is permissive, matching a service meant to be
// called directly from a browser-resident agent.
func NewRouter(p *Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-402-Receipt", "X-PAYMENT"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	h := &handler{pipeline: p}
	r.Get("/", h.health)
	r.Get("/health", h.health)
	r.Post("/", h.settle)
	r.Post("/facilitator", h.settle)

	return r
}

type handler struct {
	pipeline *Pipeline
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"service":  ServiceName,
		"version":  ServiceVersion,
		"mockMode": h.pipeline.MockMode,
	})
}

func (h *handler) settle(w http.ResponseWriter, r *http.Request) {
	logger := slog.Default()

	var payload x402.FacilitatorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.pipeline.Run(r.Context(), payload)
	if err != nil {
		var rejected *Rejected
		if ok := asRejected(err, &rejected); ok {
			writeError(w, http.StatusBadRequest, rejected.Reason)
			return
		}
		logger.Error("settlement failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

func asRejected(err error, target **Rejected) bool {
	r, ok := err.(*Rejected)
	if !ok {
		return false
	}
	*target = r
	return true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
