package placement

import (
	"fleetd/pkg/models"
)

// scoreNodes returns the highest-scoring candidate. A strictly greater score
// is required to displace the current best, which gives first-wins tie
// breaking over the input order.
func (e *Engine) scoreNodes(candidates []*models.Node) *models.Node {
	best := candidates[0]
	bestScore := e.scoreNode(best)

	for _, node := range candidates[1:] {
		if score := e.scoreNode(node); score > bestScore {
			best = node
			bestScore = score
		}
	}
	return best
}

// scoreNode computes the weighted resource score of a single node. Missing
// capability fields contribute zero.
func (e *Engine) scoreNode(node *models.Node) float64 {
	caps := node.Capabilities

	return float64(caps.MemMB)*e.weights.Memory +
		float64(caps.DiskMB)*e.weights.Disk +
		float64(len(caps.GPUs))*e.weights.GPU
}
