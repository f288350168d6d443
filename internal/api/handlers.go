// Package api binds the orchestration core to its REST surface. Handlers do
// no business logic themselves: they validate transport concerns, call one
// core operation, and surface its typed outcome as a status code.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"fleetd/internal/deployment"
	"fleetd/internal/registry"
	"fleetd/pkg/auth"
	"fleetd/pkg/models"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	registry     *registry.Registry
	deployments  *deployment.Manager
	jwtManager   *auth.JWTManager
	advertiseURL string
}

// NewHandler creates a new HTTP handler.
func NewHandler(reg *registry.Registry, dm *deployment.Manager, jwtManager *auth.JWTManager, advertiseURL string) *Handler {
	return &Handler{
		registry:     reg,
		deployments:  dm,
		jwtManager:   jwtManager,
		advertiseURL: advertiseURL,
	}
}

// Router creates and configures the HTTP router.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/nodes/register", h.RegisterNode).Methods(http.MethodPost)
	api.HandleFunc("/nodes", h.ListNodes).Methods(http.MethodGet)
	api.HandleFunc("/nodes/{node_id}", h.GetNode).Methods(http.MethodGet)
	api.HandleFunc("/nodes/{node_id}/heartbeat", h.Heartbeat).Methods(http.MethodPost)

	api.HandleFunc("/deployments", h.CreateDeployment).Methods(http.MethodPost)
	api.HandleFunc("/deployments", h.ListDeployments).Methods(http.MethodGet)
	api.HandleFunc("/deployments/{deployment_id}", h.GetDeployment).Methods(http.MethodGet)
	api.HandleFunc("/deployments/{deployment_id}", h.DeleteDeployment).Methods(http.MethodDelete)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// bearerToken extracts the bearer credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeCoreError maps the core's typed outcomes onto status codes. Anything
// unrecognized is an internal error; the typed message is never leaked then.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNodeNotFound),
		errors.Is(err, models.ErrDeploymentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrNodeMismatch):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.Error().Err(err).Msg("Internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
