// fleetseed populates a fleetd database with demo nodes and a demo
// deployment for local development.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fleetd/internal/database"
	"fleetd/internal/deployment"
	"fleetd/internal/placement"
	"fleetd/internal/registry"
	"fleetd/pkg/models"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	dsn := flag.String("dsn", "file:./fleetd.db", "database DSN to seed")
	flag.Parse()

	db, err := database.New(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	ctx := context.Background()
	reg := registry.New(db.Nodes)
	dm := deployment.NewManager(db.Deployments, reg, placement.NewEngine(placement.DefaultWeights()))

	seedNodes := []struct {
		name         string
		address      string
		capabilities models.Capabilities
	}{
		{
			name:    "worker-01",
			address: "192.168.1.10",
			capabilities: models.Capabilities{
				OS:       "linux",
				CPUCount: 8,
				MemMB:    32000,
				DiskMB:   200000,
				GPUs:     []models.GPU{},
				Runtimes: map[string]models.Runtime{"docker": {Version: "24.0.7"}},
			},
		},
		{
			name:    "worker-02",
			address: "192.168.1.11",
			capabilities: models.Capabilities{
				OS:       "linux",
				CPUCount: 16,
				MemMB:    64000,
				DiskMB:   500000,
				GPUs: []models.GPU{
					{ID: "gpu-0", Model: "NVIDIA A10"},
				},
				Runtimes: map[string]models.Runtime{"docker": {Version: "24.0.7"}},
			},
		},
	}

	for _, s := range seedNodes {
		node, err := reg.RegisterOrUpdate(ctx, s.name, s.address, s.capabilities)
		if err != nil {
			log.Fatal().Err(err).Str("name", s.name).Msg("Failed to seed node")
		}
		log.Info().Str("node_id", node.ID).Str("name", node.Name).Msg("Seeded node")
	}

	d, err := dm.Create(ctx, models.CreateDeploymentRequest{
		DeploymentID: "deploy-demo-postgres",
		TemplateID:   "postgres",
		RenderedSpec: "services:\n  postgres:\n    image: postgres:16\n",
		Env:          map[string]string{"POSTGRES_PASSWORD": "devonly"},
		Action:       models.DeploymentActionApply,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Demo deployment not created (may already exist)")
		return
	}

	log.Info().
		Str("deployment_id", d.ID).
		Str("node_id", d.NodeID).
		Str("status", string(d.Status)).
		Msg("Seeded deployment")
}
