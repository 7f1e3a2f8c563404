package plans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rentflow-backend/internal/testdb"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

func TestActive(t *testing.T) {
	client := testdb.Open(t)
	conn := client.DB()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	plan := testdb.SeedPlan(t, conn, "Weekly", "200", "500")
	got, err := svc.Active(ctx, nil, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.JoiningFee.Equal(testdb.Money("200")))

	require.NoError(t, conn.Model(&models.Plan{}).Where("id = ?", plan.ID).Update("active", false).Error)
	_, err = svc.Active(ctx, nil, plan.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Active(ctx, nil, plan.ID+100)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
