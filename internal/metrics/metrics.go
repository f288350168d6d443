package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Control plane metrics collectors
var (
	// Node lifecycle

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_node_registrations_total",
			Help: "Total number of node registration requests",
		},
		[]string{"outcome"},
	)

	HeartbeatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_node_heartbeats_total",
			Help: "Total number of node heartbeat requests",
		},
		[]string{"outcome"},
	)

	NodesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetd_nodes",
			Help: "Current number of registered nodes by status",
		},
		[]string{"status"},
	)

	NodesOffline = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetd_nodes_swept_offline_total",
			Help: "Total number of nodes marked offline by the liveness sweep",
		},
	)

	// Deployments

	DeploymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_deployments_total",
			Help: "Total number of deployment create requests",
		},
		[]string{"outcome"},
	)

	DeploymentsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetd_deployments",
			Help: "Current number of deployment records by status",
		},
		[]string{"status"},
	)

	PlacementDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_placement_decisions_total",
			Help: "Total number of placement decisions by result",
		},
		[]string{"result"},
	)

	// Authentication

	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetd_token_verifications_total",
			Help: "Total number of node token verification attempts",
		},
		[]string{"status"},
	)
)
