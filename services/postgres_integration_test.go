//go:build integration

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"edutrack/database"
	"edutrack/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
)

// TestConcurrentAttendanceIssuesOneCertificate races many attended=true calls
// for the same participant. The unique index on the participant must leave
// exactly one certificate behind.
func TestConcurrentAttendanceIssuesOneCertificate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("edutrack"),
		tcpostgres.WithUsername("edutrack"),
		tcpostgres.WithPassword("edutrack"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := database.Open(postgres.Open(dsn), false)
	require.NoError(t, err)

	env := wireTestEnv(t, db)
	tr := env.training(t, 100000, 0, 12)
	reg := env.completed(t, tr.ID, "u-1")
	participantID := reg.Participants[0].ID

	const goroutines = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.attendance.Set(ctx, participantID, true)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errs.Is(err, errs.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, goroutines-1, conflicts)
	assert.Equal(t, int64(1), env.certificateCount(t, participantID))
	assert.Equal(t, int64(1), env.reloadTraining(t, tr.ID).Graduates)
	env.assertConsistent(t)

	assert.Eventually(t, func() bool { return len(env.notifier.Events()) == 1 }, 5*time.Second, 50*time.Millisecond)
}
