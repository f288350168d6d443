package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"fleetd/pkg/models"
)

// NodeRepository provides database operations for nodes
type NodeRepository interface {
	Get(ctx context.Context, id string) (*models.Node, error)
	GetByName(ctx context.Context, name string) (*models.Node, error)
	List(ctx context.Context) ([]*models.Node, error)
	Create(ctx context.Context, node *models.Node) error
	Update(ctx context.Context, node *models.Node) error
	MarkOfflineBefore(ctx context.Context, cutoff, at time.Time) (int, error)
}

type nodeRepository struct {
	db *bun.DB
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(db *bun.DB) NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) Get(ctx context.Context, id string) (*models.Node, error) {
	node := new(Node)
	err := r.db.NewSelect().
		Model(node).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNodeNotFound
	}
	if err != nil {
		return nil, err
	}

	return node.ToModel(), nil
}

func (r *nodeRepository) GetByName(ctx context.Context, name string) (*models.Node, error) {
	node := new(Node)
	err := r.db.NewSelect().
		Model(node).
		Where("name = ?", name).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNodeNotFound
	}
	if err != nil {
		return nil, err
	}

	return node.ToModel(), nil
}

func (r *nodeRepository) List(ctx context.Context) ([]*models.Node, error) {
	var nodes []*Node
	err := r.db.NewSelect().
		Model(&nodes).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	result := make([]*models.Node, len(nodes))
	for i, n := range nodes {
		result[i] = n.ToModel()
	}
	return result, nil
}

func (r *nodeRepository) Create(ctx context.Context, node *models.Node) error {
	dbNode := NodeFromModel(node)
	_, err := r.db.NewInsert().
		Model(dbNode).
		Exec(ctx)
	return err
}

func (r *nodeRepository) Update(ctx context.Context, node *models.Node) error {
	dbNode := NodeFromModel(node)
	res, err := r.db.NewUpdate().
		Model(dbNode).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNodeNotFound
	}
	return nil
}

// MarkOfflineBefore flips every online node whose last_seen is older than
// cutoff to offline in a single statement and returns how many rows changed.
// Swept rows are stamped with the caller's clock at.
func (r *nodeRepository) MarkOfflineBefore(ctx context.Context, cutoff, at time.Time) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*Node)(nil)).
		Set("status = ?", string(models.NodeStatusOffline)).
		Set("updated_at = ?", at).
		Where("status = ?", string(models.NodeStatusOnline)).
		Where("last_seen < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// DeploymentRepository provides database operations for deployments
type DeploymentRepository interface {
	Get(ctx context.Context, id string) (*models.Deployment, error)
	List(ctx context.Context) ([]*models.Deployment, error)
	Create(ctx context.Context, deployment *models.Deployment) error
	Update(ctx context.Context, deployment *models.Deployment) error
}

type deploymentRepository struct {
	db *bun.DB
}

// NewDeploymentRepository creates a new deployment repository
func NewDeploymentRepository(db *bun.DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

func (r *deploymentRepository) Get(ctx context.Context, id string) (*models.Deployment, error) {
	deployment := new(Deployment)
	err := r.db.NewSelect().
		Model(deployment).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDeploymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return deployment.ToModel(), nil
}

func (r *deploymentRepository) List(ctx context.Context) ([]*models.Deployment, error) {
	var deployments []*Deployment
	err := r.db.NewSelect().
		Model(&deployments).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	result := make([]*models.Deployment, len(deployments))
	for i, d := range deployments {
		result[i] = d.ToModel()
	}
	return result, nil
}

// Create inserts a deployment, failing with models.ErrAlreadyExists when the
// id is already taken. The conflict clause makes the existence check and the
// insert a single atomic statement, so two concurrent creates with the same
// id cannot both succeed.
func (r *deploymentRepository) Create(ctx context.Context, deployment *models.Deployment) error {
	dbDeployment := DeploymentFromModel(deployment)
	res, err := r.db.NewInsert().
		Model(dbDeployment).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("deployment %s: %w", deployment.ID, models.ErrAlreadyExists)
	}
	return nil
}

func (r *deploymentRepository) Update(ctx context.Context, deployment *models.Deployment) error {
	dbDeployment := DeploymentFromModel(deployment)
	res, err := r.db.NewUpdate().
		Model(dbDeployment).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrDeploymentNotFound
	}
	return nil
}
