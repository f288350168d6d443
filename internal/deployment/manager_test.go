package deployment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetd/internal/database"
	"fleetd/internal/placement"
	"fleetd/internal/registry"
	"fleetd/pkg/models"
)

func setupTestManager(t *testing.T) (*Manager, *registry.Registry) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	reg := registry.New(db.Nodes)
	engine := placement.NewEngine(placement.DefaultWeights())
	return NewManager(db.Deployments, reg, engine), reg
}

func registerNode(t *testing.T, reg *registry.Registry, name string, memMB int64, gpus ...models.GPU) *models.Node {
	t.Helper()

	node, err := reg.RegisterOrUpdate(context.Background(), name, "192.168.1.10", models.Capabilities{
		OS:       "linux",
		CPUCount: 8,
		MemMB:    memMB,
		DiskMB:   100000,
		GPUs:     gpus,
	})
	require.NoError(t, err)
	return node
}

func createRequest(id string) models.CreateDeploymentRequest {
	return models.CreateDeploymentRequest{
		DeploymentID: id,
		TemplateID:   "postgres",
		RenderedSpec: "services:\n  postgres:\n    image: postgres:16\n",
		Env:          map[string]string{"POSTGRES_PASSWORD": "secret"},
		Action:       models.DeploymentActionApply,
	}
}

func TestManager_CreatePlacesOnBestNode(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "small", 16000)
	big := registerNode(t, reg, "big", 64000)

	d, err := dm.Create(ctx, createRequest("deploy-1"))
	require.NoError(t, err)

	assert.Equal(t, big.ID, d.NodeID)
	assert.Equal(t, models.DeploymentStatusAccepted, d.Status)
	assert.Equal(t, models.DeploymentActionApply, d.Action)
}

func TestManager_CreateWithGPURequirement(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "big", 64000)
	gpu := registerNode(t, reg, "gpu", 16000, models.GPU{ID: "gpu-0", Model: "NVIDIA A10"})

	req := createRequest("deploy-1")
	req.Requirements = models.Requirements{Tags: []string{placement.TagGPU}}

	d, err := dm.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, gpu.ID, d.NodeID)
}

func TestManager_CreateWithNoCandidateQueues(t *testing.T) {
	dm, _ := setupTestManager(t)
	ctx := context.Background()

	// No nodes registered at all.
	d, err := dm.Create(ctx, createRequest("deploy-1"))
	require.NoError(t, err)

	assert.Equal(t, models.NodeUnassigned, d.NodeID)
	assert.Equal(t, models.DeploymentStatusPending, d.Status)
}

func TestManager_CreateDuplicateID(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "worker", 32000)

	first, err := dm.Create(ctx, createRequest("deploy-1"))
	require.NoError(t, err)

	dup := createRequest("deploy-1")
	dup.TemplateID = "redis"
	_, err = dm.Create(ctx, dup)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	// The original record is untouched.
	got, err := dm.Get(ctx, "deploy-1")
	require.NoError(t, err)
	assert.Equal(t, first.TemplateID, got.TemplateID)
	assert.Equal(t, first.NodeID, got.NodeID)
}

func TestManager_IDsAreNeverRecycled(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "worker", 32000)

	_, err := dm.Create(ctx, createRequest("deploy-1"))
	require.NoError(t, err)

	_, err = dm.Delete(ctx, "deploy-1")
	require.NoError(t, err)

	// Even a deleted deployment still blocks its id.
	_, err = dm.Create(ctx, createRequest("deploy-1"))
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestManager_CreateValidation(t *testing.T) {
	dm, _ := setupTestManager(t)
	ctx := context.Background()

	req := createRequest("")
	_, err := dm.Create(ctx, req)
	assert.True(t, models.IsValidation(err))

	req = createRequest("deploy-1")
	req.TemplateID = ""
	_, err = dm.Create(ctx, req)
	assert.True(t, models.IsValidation(err))

	req = createRequest("deploy-1")
	req.Action = "restart"
	_, err = dm.Create(ctx, req)
	assert.True(t, models.IsValidation(err))
}

func TestManager_CreateDefaultsActionToApply(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "worker", 32000)

	req := createRequest("deploy-1")
	req.Action = ""

	d, err := dm.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.DeploymentActionApply, d.Action)
}

func TestManager_DeleteMarksNotRemoves(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "worker", 32000)

	_, err := dm.Create(ctx, createRequest("deploy-1"))
	require.NoError(t, err)

	deleted, err := dm.Delete(ctx, "deploy-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeploymentStatusDeleting, deleted.Status)
	assert.Equal(t, models.DeploymentActionRemove, deleted.Action)

	// Still retrievable after deletion.
	got, err := dm.Get(ctx, "deploy-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeploymentStatusDeleting, got.Status)
	assert.Equal(t, models.DeploymentActionRemove, got.Action)
}

func TestManager_DeleteUnknown(t *testing.T) {
	dm, _ := setupTestManager(t)

	_, err := dm.Delete(context.Background(), "no-such-deployment")
	assert.ErrorIs(t, err, models.ErrDeploymentNotFound)
}

func TestManager_GetUnknown(t *testing.T) {
	dm, _ := setupTestManager(t)

	_, err := dm.Get(context.Background(), "no-such-deployment")
	assert.ErrorIs(t, err, models.ErrDeploymentNotFound)
}

func TestManager_ListInsertionOrder(t *testing.T) {
	dm, reg := setupTestManager(t)
	ctx := context.Background()

	registerNode(t, reg, "worker", 32000)

	ids := []string{"deploy-a", "deploy-b", "deploy-c"}
	for _, id := range ids {
		_, err := dm.Create(ctx, createRequest(id))
		require.NoError(t, err)
	}

	deployments, err := dm.List(ctx)
	require.NoError(t, err)
	require.Len(t, deployments, 3)
	for i, id := range ids {
		assert.Equal(t, id, deployments[i].ID)
	}
}
