package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"fleetd/internal/database"
	"fleetd/pkg/models"
)

// Collector periodically updates gauge metrics from database state
type Collector struct {
	db       *database.DB
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(db *database.DB, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 30 * time.Second // Default collection interval
	}

	return &Collector{
		db:       db,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic metrics collection
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect initial metrics immediately
	c.collectMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.collectMetrics(ctx)
		}
	}
}

// Stop stops the metrics collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

// collectMetrics updates all gauge metrics from current system state
func (c *Collector) collectMetrics(ctx context.Context) {
	if err := c.collectNodeMetrics(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to collect node metrics")
	}

	if err := c.collectDeploymentMetrics(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to collect deployment metrics")
	}
}

// collectNodeMetrics updates the per-status node gauges
func (c *Collector) collectNodeMetrics(ctx context.Context) error {
	nodes, err := c.db.Nodes.List(ctx)
	if err != nil {
		return err
	}

	counts := map[models.NodeStatus]int{
		models.NodeStatusOnline:  0,
		models.NodeStatusOffline: 0,
	}
	for _, node := range nodes {
		counts[node.Status]++
	}

	for status, count := range counts {
		NodesTotal.WithLabelValues(string(status)).Set(float64(count))
	}
	return nil
}

// collectDeploymentMetrics updates the per-status deployment gauges
func (c *Collector) collectDeploymentMetrics(ctx context.Context) error {
	deployments, err := c.db.Deployments.List(ctx)
	if err != nil {
		return err
	}

	counts := map[models.DeploymentStatus]int{
		models.DeploymentStatusPending:  0,
		models.DeploymentStatusAccepted: 0,
		models.DeploymentStatusFailed:   0,
		models.DeploymentStatusDeleting: 0,
	}
	for _, d := range deployments {
		counts[d.Status]++
	}

	for status, count := range counts {
		DeploymentsByStatus.WithLabelValues(string(status)).Set(float64(count))
	}
	return nil
}
