package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"fleetd/internal/metrics"
	"fleetd/pkg/models"
)

// CreateDeployment handles POST /api/v1/deployments.
func (h *Handler) CreateDeployment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.DeploymentsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.deployments.Create(r.Context(), req)
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues("error").Inc()
		writeCoreError(w, err)
		return
	}

	if d.NodeID == models.NodeUnassigned {
		metrics.PlacementDecisionsTotal.WithLabelValues("unassigned").Inc()
	} else {
		metrics.PlacementDecisionsTotal.WithLabelValues("placed").Inc()
	}
	metrics.DeploymentsTotal.WithLabelValues("ok").Inc()

	log.Info().
		Str("deployment_id", d.ID).
		Str("node_id", d.NodeID).
		Str("status", string(d.Status)).
		Msg("Deployment created")

	writeJSON(w, http.StatusAccepted, deploymentResponse(d, "Deployment request accepted and queued for processing"))
}

// ListDeployments handles GET /api/v1/deployments.
func (h *Handler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	deployments, err := h.deployments.List(r.Context())
	if err != nil {
		writeCoreError(w, err)
		return
	}

	responses := make([]models.DeploymentResponse, len(deployments))
	for i, d := range deployments {
		responses[i] = deploymentResponse(d, fmt.Sprintf("Deployment on node %s", d.NodeID))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetDeployment handles GET /api/v1/deployments/{deployment_id}.
func (h *Handler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deployment_id"]

	d, err := h.deployments.Get(r.Context(), id)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deploymentResponse(d, fmt.Sprintf("Deployment %q on node %s", d.TemplateID, d.NodeID)))
}

// DeleteDeployment handles DELETE /api/v1/deployments/{deployment_id}. The
// record survives; only its lifecycle advances.
func (h *Handler) DeleteDeployment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deployment_id"]

	d, err := h.deployments.Delete(r.Context(), id)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	log.Info().Str("deployment_id", d.ID).Msg("Deployment marked for deletion")
	writeJSON(w, http.StatusOK, deploymentResponse(d, "Deployment marked for deletion"))
}

func deploymentResponse(d *models.Deployment, message string) models.DeploymentResponse {
	return models.DeploymentResponse{
		DeploymentID: d.ID,
		NodeID:       d.NodeID,
		Status:       d.Status,
		Message:      message,
	}
}
