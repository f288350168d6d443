// Package registry holds the authoritative set of known nodes, their
// capabilities, liveness, and latest reported metrics.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"fleetd/internal/database"
	"fleetd/pkg/models"
)

// Registry is the single owner of node records. All mutations go through its
// operations; writes for the same node are serialized with a per-id lock so
// capability and metric overwrites are never torn, while distinct nodes
// proceed independently. A per-name lock additionally covers id allocation
// for first-time registrations.
type Registry struct {
	nodes database.NodeRepository
	locks *xsync.MapOf[string, *sync.Mutex]
	now   func() time.Time
}

// New creates a registry backed by the given node repository.
func New(nodes database.NodeRepository) *Registry {
	return &Registry{
		nodes: nodes,
		locks: xsync.NewMapOf[string, *sync.Mutex](),
		now:   time.Now,
	}
}

func (r *Registry) lockFor(key string) *sync.Mutex {
	mu, _ := r.locks.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	return mu
}

// RegisterOrUpdate registers a node by name, or updates it in place when the
// name is already known. The node id is allocated once and stays stable
// across re-registrations; repeated identical calls are idempotent.
func (r *Registry) RegisterOrUpdate(ctx context.Context, name, address string, capabilities models.Capabilities) (*models.Node, error) {
	if name == "" {
		return nil, models.NewValidationError("name", "must not be empty")
	}
	if address == "" {
		return nil, models.NewValidationError("address", "must not be empty")
	}

	// The name lock only covers id allocation, so two first-time
	// registrations of the same name cannot both insert. Updates to a known
	// node take the id lock shared with RecordHeartbeat: the two mutation
	// paths never interleave their read-modify-write cycles for one node.
	nameMu := r.lockFor("name:" + name)
	nameMu.Lock()
	defer nameMu.Unlock()

	existing, err := r.nodes.GetByName(ctx, name)
	if errors.Is(err, models.ErrNodeNotFound) {
		now := r.now().UTC()
		node := &models.Node{
			ID:           uuid.NewString(),
			Name:         name,
			Address:      address,
			Capabilities: capabilities,
			Status:       models.NodeStatusOnline,
			LastSeen:     now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.nodes.Create(ctx, node); err != nil {
			return nil, err
		}
		return node, nil
	}
	if err != nil {
		return nil, err
	}

	mu := r.lockFor("id:" + existing.ID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the id lock; a heartbeat may have written between the
	// name lookup and here.
	node, err := r.nodes.Get(ctx, existing.ID)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	node.Address = address
	node.Capabilities = capabilities
	node.Status = models.NodeStatusOnline
	node.LastSeen = now
	node.UpdatedAt = now
	if err := r.nodes.Update(ctx, node); err != nil {
		return nil, err
	}
	return node, nil
}

// RecordHeartbeat replaces the node's metrics wholesale and refreshes its
// liveness. The node must already exist; heartbeats never create nodes.
func (r *Registry) RecordHeartbeat(ctx context.Context, nodeID string, metrics models.Metrics) error {
	mu := r.lockFor("id:" + nodeID)
	mu.Lock()
	defer mu.Unlock()

	node, err := r.nodes.Get(ctx, nodeID)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	node.Metrics = &metrics
	node.Status = models.NodeStatusOnline
	node.LastSeen = now
	node.UpdatedAt = now

	return r.nodes.Update(ctx, node)
}

// Get returns a single node by id.
func (r *Registry) Get(ctx context.Context, nodeID string) (*models.Node, error) {
	return r.nodes.Get(ctx, nodeID)
}

// List returns a point-in-time snapshot of all nodes in insertion order.
func (r *Registry) List(ctx context.Context) ([]*models.Node, error) {
	return r.nodes.List(ctx)
}

// SweepLiveness marks every node that has not been seen within timeout as
// offline and reports how many nodes changed state. This is the only path
// that transitions a node away from online.
func (r *Registry) SweepLiveness(ctx context.Context, timeout time.Duration) (int, error) {
	now := r.now().UTC()
	return r.nodes.MarkOfflineBefore(ctx, now.Add(-timeout), now)
}
