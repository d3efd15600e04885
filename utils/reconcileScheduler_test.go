package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingReconciler struct {
	calls int
	err   error
}

func (r *countingReconciler) RecomputeAll(ctx context.Context) (int, error) {
	r.calls++
	return 1, r.err
}

func TestSchedulerRunOnce(t *testing.T) {
	rec := &countingReconciler{}
	s := NewScheduler("", rec, time.UTC)

	s.RunOnce()
	rec.err = errors.New("db down")
	s.RunOnce()

	assert.Equal(t, 2, rec.calls)
}

func TestSchedulerStart(t *testing.T) {
	rec := &countingReconciler{}

	assert.NoError(t, NewScheduler("", rec, time.UTC).Start())
	assert.Error(t, NewScheduler("not a cron", rec, time.UTC).Start())

	s := NewScheduler("0 3 * * *", rec, time.UTC)
	assert.NoError(t, s.Start())
	s.Stop()
	assert.Equal(t, 0, rec.calls)
}
