package database

import (
	"time"

	"github.com/uptrace/bun"

	"fleetd/pkg/models"
)

// Node represents a node row using Bun ORM
type Node struct {
	bun.BaseModel `bun:"table:nodes"`

	ID           string              `bun:"id,pk"`
	Name         string              `bun:"name,unique,notnull"`
	Address      string              `bun:"address,notnull"`
	Capabilities models.Capabilities `bun:"capabilities,type:json,notnull"`
	Metrics      *models.Metrics     `bun:"metrics,type:json"`
	Status       string              `bun:"status,notnull,default:'online'"`
	LastSeen     time.Time           `bun:"last_seen,notnull"`
	CreatedAt    time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database Node to domain model
func (n *Node) ToModel() *models.Node {
	return &models.Node{
		ID:           n.ID,
		Name:         n.Name,
		Address:      n.Address,
		Capabilities: n.Capabilities,
		Metrics:      n.Metrics,
		Status:       models.NodeStatus(n.Status),
		LastSeen:     n.LastSeen,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

// NodeFromModel converts domain model to database Node
func NodeFromModel(m *models.Node) *Node {
	return &Node{
		ID:           m.ID,
		Name:         m.Name,
		Address:      m.Address,
		Capabilities: m.Capabilities,
		Metrics:      m.Metrics,
		Status:       string(m.Status),
		LastSeen:     m.LastSeen,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Deployment represents a deployment row using Bun ORM
type Deployment struct {
	bun.BaseModel `bun:"table:deployments"`

	ID           string            `bun:"id,pk"`
	NodeID       string            `bun:"node_id,notnull"`
	TemplateID   string            `bun:"template_id,notnull"`
	RenderedSpec string            `bun:"rendered_spec,notnull"`
	Env          map[string]string `bun:"env,type:json"`
	Status       string            `bun:"status,notnull,default:'pending'"`
	Action       string            `bun:"action,notnull"`
	CreatedAt    time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database Deployment to domain model
func (d *Deployment) ToModel() *models.Deployment {
	return &models.Deployment{
		ID:           d.ID,
		NodeID:       d.NodeID,
		TemplateID:   d.TemplateID,
		RenderedSpec: d.RenderedSpec,
		Env:          d.Env,
		Status:       models.DeploymentStatus(d.Status),
		Action:       models.DeploymentAction(d.Action),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// DeploymentFromModel converts domain model to database Deployment
func DeploymentFromModel(m *models.Deployment) *Deployment {
	return &Deployment{
		ID:           m.ID,
		NodeID:       m.NodeID,
		TemplateID:   m.TemplateID,
		RenderedSpec: m.RenderedSpec,
		Env:          m.Env,
		Status:       string(m.Status),
		Action:       string(m.Action),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
