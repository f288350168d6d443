// Package deployment owns deployment records and their lifecycle. Placement
// happens once, at creation time; there is no rebalancing.
package deployment

import (
	"context"
	"time"

	"fleetd/internal/database"
	"fleetd/internal/placement"
	"fleetd/internal/registry"
	"fleetd/pkg/models"
)

// Manager is the single owner of deployment records. It reads the node
// registry only to obtain placement snapshots.
type Manager struct {
	deployments database.DeploymentRepository
	registry    *registry.Registry
	engine      *placement.Engine
	now         func() time.Time
}

// NewManager creates a deployment manager.
func NewManager(deployments database.DeploymentRepository, reg *registry.Registry, engine *placement.Engine) *Manager {
	return &Manager{
		deployments: deployments,
		registry:    reg,
		engine:      engine,
		now:         time.Now,
	}
}

// Create validates the request, places the workload on the best-fit node from
// the current registry snapshot, and persists the record. Duplicate ids fail
// with models.ErrAlreadyExists; ids are never recycled, so a previously
// deleted or failed deployment still blocks its id.
//
// When no node satisfies the requirements the record is stored against the
// unassigned sentinel with status pending: the request is queued, not failed.
func (m *Manager) Create(ctx context.Context, req models.CreateDeploymentRequest) (*models.Deployment, error) {
	if req.DeploymentID == "" {
		return nil, models.NewValidationError("deployment_id", "must not be empty")
	}
	if req.TemplateID == "" {
		return nil, models.NewValidationError("template_id", "must not be empty")
	}
	action := req.Action
	if action == "" {
		action = models.DeploymentActionApply
	}
	if action != models.DeploymentActionApply && action != models.DeploymentActionRemove {
		return nil, models.NewValidationError("action", "must be apply or remove")
	}

	nodes, err := m.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	deployment := &models.Deployment{
		ID:           req.DeploymentID,
		TemplateID:   req.TemplateID,
		RenderedSpec: req.RenderedSpec,
		Env:          req.Env,
		Action:       action,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if nodeID, ok := m.engine.SelectNode(nodes, req.Requirements); ok {
		deployment.NodeID = nodeID
		deployment.Status = models.DeploymentStatusAccepted
	} else {
		deployment.NodeID = models.NodeUnassigned
		deployment.Status = models.DeploymentStatusPending
	}

	if err := m.deployments.Create(ctx, deployment); err != nil {
		return nil, err
	}
	return deployment, nil
}

// Get returns a single deployment by id.
func (m *Manager) Get(ctx context.Context, id string) (*models.Deployment, error) {
	return m.deployments.Get(ctx, id)
}

// List returns all deployments in insertion order.
func (m *Manager) List(ctx context.Context) ([]*models.Deployment, error) {
	return m.deployments.List(ctx)
}

// Delete marks a deployment for teardown: status moves to deleting and the
// action flips to remove so the assigned agent tears the workload down. The
// record itself is retained for audit.
func (m *Manager) Delete(ctx context.Context, id string) (*models.Deployment, error) {
	deployment, err := m.deployments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	deployment.Status = models.DeploymentStatusDeleting
	deployment.Action = models.DeploymentActionRemove
	deployment.UpdatedAt = m.now().UTC()

	if err := m.deployments.Update(ctx, deployment); err != nil {
		return nil, err
	}
	return deployment, nil
}
