package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"fleetd/internal/metrics"
	"fleetd/pkg/models"
)

// RegisterNode handles POST /api/v1/nodes/register. Registration is the
// unauthenticated bootstrap operation: the response carries the token every
// later heartbeat must present.
func (h *Handler) RegisterNode(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.registry.RegisterOrUpdate(r.Context(), req.Name, req.Address, req.Capabilities)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		writeCoreError(w, err)
		return
	}

	token, err := h.jwtManager.IssueNodeToken(node.ID, node.Name)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		writeCoreError(w, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	log.Info().
		Str("node_id", node.ID).
		Str("name", node.Name).
		Str("address", node.Address).
		Msg("Node registered")

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		NodeID:          node.ID,
		NodeToken:       token,
		ControlPlaneURL: h.advertiseURL,
	})
}

// ListNodes handles GET /api/v1/nodes.
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.registry.List(r.Context())
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// GetNode handles GET /api/v1/nodes/{node_id}.
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := mux.Vars(r)["node_id"]

	node, err := h.registry.Get(r.Context(), nodeID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Heartbeat handles POST /api/v1/nodes/{node_id}/heartbeat. The bearer token
// must verify and must be bound to the target node; a mismatch is a distinct
// authorization failure, not an invalid token.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	nodeID := mux.Vars(r)["node_id"]

	token, ok := bearerToken(r)
	if !ok {
		metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
		metrics.HeartbeatsTotal.WithLabelValues("unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "missing authentication token")
		return
	}

	claims, err := h.jwtManager.VerifyNodeToken(token)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		metrics.HeartbeatsTotal.WithLabelValues("unauthorized").Inc()
		writeCoreError(w, err)
		return
	}
	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

	if claims.NodeID != nodeID {
		metrics.HeartbeatsTotal.WithLabelValues("forbidden").Inc()
		writeCoreError(w, models.ErrNodeMismatch)
		return
	}

	var m models.Metrics
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		metrics.HeartbeatsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.RecordHeartbeat(r.Context(), nodeID, m); err != nil {
		metrics.HeartbeatsTotal.WithLabelValues("error").Inc()
		writeCoreError(w, err)
		return
	}

	metrics.HeartbeatsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, models.HeartbeatResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
