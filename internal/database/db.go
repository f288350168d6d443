package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// DB wraps bun.DB and provides repository access.
type DB struct {
	db *bun.DB

	// Repositories
	Nodes       NodeRepository
	Deployments DeploymentRepository
}

// Option is a functional option for configuring the database
type Option func(*DB)

// WithDebug enables query logging for debugging
func WithDebug(enabled bool) Option {
	return func(db *DB) {
		if enabled {
			db.db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
			))
			log.Info().Msg("Bun query logging enabled")
		}
	}
}

// New creates a new Bun-based database connection
func New(dsn string, opts ...Option) (*DB, error) {
	// Open SQLite connection using sqliteshim (compatible with modernc.org/sqlite)
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY under
	// concurrent writes and keeps :memory: databases on one handle.
	sqldb.SetMaxOpenConns(1)

	db := &DB{
		db: bun.NewDB(sqldb, sqlitedialect.New()),
	}

	// Apply options
	for _, opt := range opts {
		opt(db)
	}

	// Initialize repositories
	db.Nodes = NewNodeRepository(db.db)
	db.Deployments = NewDeploymentRepository(db.db)

	// Run migrations
	if err := db.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("Database initialized successfully")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.db.Close()
}

// DB returns the underlying bun.DB instance for advanced operations
func (db *DB) DB() *bun.DB {
	return db.db
}

// Migrate runs database migrations
func (db *DB) Migrate(ctx context.Context) error {
	log.Info().Msg("Running database migrations")

	models := []interface{}{
		(*Node)(nil),
		(*Deployment)(nil),
	}

	for _, model := range models {
		if _, err := db.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Secondary indexes: node names form a unique natural key, deployments
	// are queried by their target node. The unique name index backs the
	// registration identity, so failing to create it is fatal.
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name)",
		"CREATE INDEX IF NOT EXISTS idx_nodes_status ON nodes(status)",
		"CREATE INDEX IF NOT EXISTS idx_deployments_node_id ON deployments(node_id)",
		"CREATE INDEX IF NOT EXISTS idx_deployments_status ON deployments(status)",
	}

	for _, idx := range indexes {
		if _, err := db.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
