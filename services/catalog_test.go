package services

import (
	"context"
	"testing"

	"edutrack/errs"
	"edutrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.catalog.Create(ctx, TrainingInput{Name: " ", Fee: 1})
	assert.True(t, errs.Is(err, errs.KindValidation))
	_, err = env.catalog.Create(ctx, TrainingInput{Name: "x", Fee: 1, Discount: 120})
	assert.True(t, errs.Is(err, errs.KindValidation))

	tr, err := env.catalog.Create(ctx, TrainingInput{
		Name:   "Kubernetes Operations",
		Fee:    250000,
		Level:  "advanced",
		Skills: []string{"kubectl", "helm"},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TRNG-\d{12}-[0-9A-F]{6}$`, tr.Code)
	assert.Equal(t, models.TrainingActive, tr.Status)

	updated, err := env.catalog.Update(ctx, tr.ID, TrainingInput{Name: "Kubernetes Ops", Fee: 200000, Discount: 25, Level: "advanced"})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), updated.FinalPrice())

	got, err := env.catalog.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes Ops", got.Name)

	_, err = env.catalog.Update(ctx, 999, TrainingInput{Name: "x"})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	require.NoError(t, env.catalog.Archive(ctx, tr.ID))
	assert.True(t, errs.Is(env.catalog.Archive(ctx, 999), errs.KindNotFound))

	active, err := env.catalog.List(ctx, TrainingFilter{Status: models.TrainingActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := env.catalog.List(ctx, TrainingFilter{Status: models.TrainingArchived, Keyword: "kube"})
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestUpdateDoesNotTouchAggregates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tr := env.training(t, 100000, 0, 12)
	reg := env.completed(t, tr.ID, "u-1")
	_, err := env.attendance.Set(ctx, reg.Participants[0].ID, true)
	require.NoError(t, err)

	_, err = env.catalog.Update(ctx, tr.ID, TrainingInput{Name: "Renamed", Fee: 100000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.reloadTraining(t, tr.ID).Graduates)
}

func TestRecomputeAllCorrectsDrift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tr := env.training(t, 100000, 0, 12)
	other := env.training(t, 100000, 0, 12)
	reg := env.completed(t, tr.ID, "u-1")
	_, err := env.attendance.Set(ctx, reg.Participants[0].ID, true)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.Training{}).Where("id = ?", tr.ID).
		UpdateColumns(map[string]interface{}{"graduates": 40, "rating": 1.5}).Error)

	drifted, err := env.catalog.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, drifted)

	fixed := env.reloadTraining(t, tr.ID)
	assert.Equal(t, int64(1), fixed.Graduates)
	assert.Zero(t, fixed.Rating)
	assert.Zero(t, env.reloadTraining(t, other.ID).Graduates)

	drifted, err = env.catalog.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, drifted)
}
