// Package placement selects the best-fit node for a deployment from a
// snapshot of registry nodes. Selection is a pure function of the snapshot,
// the requirements, and the configured weights.
package placement

import (
	"fleetd/pkg/models"
)

// Weights are the scoring weights of the engine. They are engine
// configuration, never per-request input.
type Weights struct {
	Memory float64
	Disk   float64
	GPU    float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Memory: 1.0,
		Disk:   0.5,
		GPU:    2.0,
	}
}

// Engine scores candidate nodes and picks the best one.
type Engine struct {
	weights Weights
}

// NewEngine creates a placement engine with the given weights.
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// SelectNode returns the id of the highest-scoring node that satisfies every
// requirement tag, or ok=false when no node qualifies. Ties break in favor of
// the earlier node in the snapshot, so the result is deterministic for a
// fixed snapshot and weight configuration.
func (e *Engine) SelectNode(nodes []*models.Node, requirements models.Requirements) (string, bool) {
	candidates := e.filterNodes(nodes, requirements)
	if len(candidates) == 0 {
		return "", false
	}

	best := e.scoreNodes(candidates)
	return best.ID, true
}
