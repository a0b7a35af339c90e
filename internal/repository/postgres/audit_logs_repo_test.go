package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/db"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/testutil"
)

func TestAuditLogsInsertAndRead(t *testing.T) {
	ctx := context.Background()
	pool, err := db.NewPool(ctx, testutil.StartPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = db.RunMigrations(ctx, pool, zap.NewNop())
	require.NoError(t, err)

	repo := NewAuditLogs(pool)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	first := models.AuditEvent{
		ID: uuid.NewString(), ActorID: uuid.NewString(), Action: "game.create",
		EntityType: "game", EntityID: "g1", CreatedAt: base,
	}
	second := models.AuditEvent{
		ID: uuid.NewString(), ActorID: first.ActorID, Action: "game.settle",
		EntityType: "game", EntityID: "g1", RequestID: "req-1",
		Details: map[string]any{"result": "home"}, CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))
	// same id again is a no-op
	require.NoError(t, repo.Insert(ctx, second))
	require.NoError(t, repo.Insert(ctx, models.AuditEvent{
		ID: uuid.NewString(), Action: "game.create", EntityType: "game", EntityID: "g2", CreatedAt: base,
	}))

	got, err := repo.ForEntity(ctx, "game", "g1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "game.settle", got[0].Action)
	assert.Equal(t, "home", got[0].Details["result"])
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.True(t, got[1].CreatedAt.Equal(base))
	assert.Empty(t, got[1].Details)
}
