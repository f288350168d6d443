package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fleetd/internal/api"
	"fleetd/internal/database"
	"fleetd/internal/deployment"
	"fleetd/internal/metrics"
	"fleetd/internal/placement"
	"fleetd/internal/registry"
	"fleetd/pkg/auth"
	"fleetd/pkg/config"
	"fleetd/pkg/httpserver"
)

func init() {
	// Configure zerolog for human-friendly console output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	configPath := flag.String("config", "", "path to fleetd.yaml")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg = config.Default()
		err = cfg.Validate()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, perr := zerolog.ParseLevel(cfg.Log.Level); perr == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Msg("Starting fleetd control plane")

	db, err := database.New(cfg.Database.DSN, database.WithDebug(cfg.Database.Debug))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecretKey, cfg.Auth.TokenTTL)
	reg := registry.New(db.Nodes)
	engine := placement.NewEngine(placement.Weights{
		Memory: cfg.Placement.WeightMemory,
		Disk:   cfg.Placement.WeightDisk,
		GPU:    cfg.Placement.WeightGPU,
	})
	dm := deployment.NewManager(db.Deployments, reg, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Liveness.Enabled {
		go runLivenessSweep(ctx, reg, cfg.Liveness.Interval, cfg.Liveness.Timeout)
	}

	collector := metrics.NewCollector(db, 30*time.Second)
	go collector.Start(ctx)
	defer collector.Stop()

	handler := api.NewHandler(reg, dm, jwtManager, cfg.Server.AdvertiseURL)

	server := httpserver.New(
		cfg.Server.Addr,
		handler.Router(),
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("advertise_url", cfg.Server.AdvertiseURL).
		Bool("liveness_sweep", cfg.Liveness.Enabled).
		Msg("Control plane listening")

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// runLivenessSweep periodically marks nodes offline when their heartbeats go
// silent for longer than timeout.
func runLivenessSweep(ctx context.Context, reg *registry.Registry, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			swept, err := reg.SweepLiveness(ctx, timeout)
			if err != nil {
				log.Error().Err(err).Msg("Liveness sweep failed")
				continue
			}
			if swept > 0 {
				metrics.NodesOffline.Add(float64(swept))
				log.Warn().Int("nodes", swept).Msg("Marked silent nodes offline")
			}
		case <-ctx.Done():
			return
		}
	}
}
