package models

import (
	"time"
)

// NodeStatus is the liveness state of a registered node.
type NodeStatus string

const (
	NodeStatusOnline  NodeStatus = "online"
	NodeStatusOffline NodeStatus = "offline"
)

// DeploymentStatus tracks a deployment through its lifecycle.
type DeploymentStatus string

const (
	DeploymentStatusPending  DeploymentStatus = "pending"
	DeploymentStatusAccepted DeploymentStatus = "accepted"
	DeploymentStatusFailed   DeploymentStatus = "failed"
	DeploymentStatusDeleting DeploymentStatus = "deleting"
)

// DeploymentAction is the operation the assigned agent should perform.
type DeploymentAction string

const (
	DeploymentActionApply  DeploymentAction = "apply"
	DeploymentActionRemove DeploymentAction = "remove"
)

// NodeUnassigned is the sentinel node id used when placement found no
// candidate for a deployment.
const NodeUnassigned = "unassigned"

// GPU describes a single GPU device reported by a node.
type GPU struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// Runtime describes a container/orchestration runtime present on a node.
type Runtime struct {
	Version string `json:"version"`
}

// Capabilities is the static descriptor a node reports at registration.
// Core fields are typed; Extra carries vendor-specific fields so payloads
// round-trip without loss.
type Capabilities struct {
	OS       string             `json:"os"`
	CPUCount int                `json:"cpu_count"`
	MemMB    int64              `json:"mem_mb"`
	DiskMB   int64              `json:"disk_mb,omitempty"`
	GPUs     []GPU              `json:"gpus"`
	Runtimes map[string]Runtime `json:"runtimes,omitempty"`
	Extra    map[string]any     `json:"extra,omitempty"`
}

// Metrics is the utilization snapshot carried by a heartbeat. It is
// overwritten wholesale on every heartbeat, never merged.
type Metrics struct {
	CPUPercent       float64        `json:"cpu_usage"`
	MemPercent       float64        `json:"mem_usage"`
	DiskFreeMB       int64          `json:"disk_free_mb"`
	RunningWorkloads []string       `json:"running_workloads,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// Node is one registered worker tracked by the control plane.
type Node struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Capabilities Capabilities `json:"capabilities"`
	Metrics      *Metrics     `json:"metrics,omitempty"`
	Status       NodeStatus   `json:"status"`
	LastSeen     time.Time    `json:"last_seen"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasGPU reports whether the node advertises at least one GPU.
func (n *Node) HasGPU() bool {
	return len(n.Capabilities.GPUs) > 0
}

// Deployment is one requested workload placement. Records are never
// physically removed; deletion only advances the lifecycle.
type Deployment struct {
	ID           string            `json:"id"`
	NodeID       string            `json:"node_id"`
	TemplateID   string            `json:"template_id"`
	RenderedSpec string            `json:"rendered_spec"`
	Env          map[string]string `json:"env,omitempty"`
	Status       DeploymentStatus  `json:"status"`
	Action       DeploymentAction  `json:"action"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Requirements are the hard placement constraints of a deployment. The only
// interpreted tag today is "gpu"; unknown tags are treated as satisfied.
type Requirements struct {
	Tags []string `json:"tags,omitempty"`
}

// NodeClaims is the verified content of a node identity token.
type NodeClaims struct {
	NodeID    string
	NodeName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RegisterRequest is the payload an agent sends to register itself.
type RegisterRequest struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Capabilities Capabilities `json:"capabilities"`
}

// RegisterResponse carries the node identity and credential back to the agent.
type RegisterResponse struct {
	NodeID          string `json:"node_id"`
	NodeToken       string `json:"node_token"`
	ControlPlaneURL string `json:"control_plane_url"`
}

// HeartbeatResponse acknowledges a heartbeat.
type HeartbeatResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateDeploymentRequest is the operator-facing deployment submission.
type CreateDeploymentRequest struct {
	DeploymentID string            `json:"deployment_id"`
	TemplateID   string            `json:"template_id"`
	RenderedSpec string            `json:"rendered_spec"`
	Env          map[string]string `json:"env,omitempty"`
	Action       DeploymentAction  `json:"action"`
	Requirements Requirements      `json:"requirements,omitempty"`
}

// DeploymentResponse is the operator-facing view of a deployment.
type DeploymentResponse struct {
	DeploymentID string           `json:"deployment_id"`
	NodeID       string           `json:"node_id"`
	Status       DeploymentStatus `json:"status"`
	Message      string           `json:"message,omitempty"`
}
