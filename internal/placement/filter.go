package placement

import (
	"fleetd/pkg/models"
)

// TagGPU requires the node to advertise at least one GPU.
const TagGPU = "gpu"

// filterNodes returns the nodes satisfying every hard requirement, in
// snapshot order.
func (e *Engine) filterNodes(nodes []*models.Node, requirements models.Requirements) []*models.Node {
	candidates := make([]*models.Node, 0, len(nodes))

	for _, node := range nodes {
		if e.checkNode(node, requirements) {
			candidates = append(candidates, node)
		}
	}
	return candidates
}

// checkNode runs the per-tag predicate checks. Unknown tags are treated as
// satisfied so new tags can roll out ahead of engine support.
func (e *Engine) checkNode(node *models.Node, requirements models.Requirements) bool {
	for _, tag := range requirements.Tags {
		switch tag {
		case TagGPU:
			if !node.HasGPU() {
				return false
			}
		}
	}
	return true
}
