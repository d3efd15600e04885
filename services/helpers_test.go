package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"edutrack/cache"
	"edutrack/database"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.CertificateIssued
	err    error
}

func (f *fakeNotifier) CertificateIssued(_ context.Context, ev models.CertificateIssued) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeNotifier) Close() error { return nil }

func (f *fakeNotifier) Events() []models.CertificateIssued {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CertificateIssued(nil), f.events...)
}

var dbSeq atomic.Int64

// testEnv wires every service against a private in-memory SQLite database.
type testEnv struct {
	db         *gorm.DB
	ids        *utils.IDGenerator
	settings   Settings
	metrics    *metrics.Metrics
	notifier   *fakeNotifier
	catalog    *Catalog
	regs       *Registrations
	certs      *Certificates
	attendance *Attendance
	reviews    *Reviews
	userCerts  *UserCertificates
}

func newTestEnv(t *testing.T, mutate ...func(*Settings)) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.Open(sqlite.Open(dsn), false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return wireTestEnv(t, db, mutate...)
}

func wireTestEnv(t *testing.T, db *gorm.DB, mutate ...func(*Settings)) *testEnv {
	t.Helper()
	require.NoError(t, database.RunMigrations(db))

	settings := Settings{
		EnforceCatalogPrice: true,
		ValidityUnit:        utils.UnitMonths,
		Location:            utils.FixedZone(7),
		CertificateBaseURL:  "https://edu.example.com/certificates",
		Brand:               "Training Team",
	}
	for _, m := range mutate {
		m(&settings)
	}

	env := &testEnv{
		db:       db,
		ids:      utils.NewIDGenerator(7),
		settings: settings,
		metrics:  metrics.New(prometheus.NewRegistry()),
		notifier: &fakeNotifier{},
	}
	env.catalog = NewCatalog(db, env.ids, cache.Noop{}, env.metrics)
	env.regs = NewRegistrations(db, env.ids, settings, env.metrics)
	env.certs = NewCertificates(db, env.ids, settings, cache.Noop{}, env.notifier, env.metrics)
	env.attendance = NewAttendance(db, env.certs, env.metrics)
	env.reviews = NewReviews(db, env.ids, cache.Noop{}, env.metrics)
	env.userCerts = NewUserCertificates(db, env.ids, settings, env.metrics)
	return env
}

func (e *testEnv) user(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.User{ID: id, FullName: name, Email: id + "@example.com"}).Error)
}

func (e *testEnv) training(t *testing.T, fee int64, discount, validity int) *models.Training {
	t.Helper()
	tr, err := e.catalog.Create(context.Background(), TrainingInput{
		Name:           "Network Fundamentals",
		Fee:            fee,
		Discount:       discount,
		ValidityPeriod: validity,
		Level:          "beginner",
	})
	require.NoError(t, err)
	return tr
}

func (e *testEnv) register(t *testing.T, trainingID uint, users ...string) *models.Registration {
	t.Helper()
	reg, err := e.regs.Create(context.Background(), RegistrationInput{
		TrainingID:       trainingID,
		RegistrantID:     users[0],
		TrainingDate:     time.Now().AddDate(0, 0, 7),
		ParticipantCount: len(users),
		Participants:     users,
	})
	require.NoError(t, err)
	return reg
}

// completed returns a registration already moved to Completed.
func (e *testEnv) completed(t *testing.T, trainingID uint, users ...string) *models.Registration {
	t.Helper()
	reg := e.register(t, trainingID, users...)
	_, err := e.regs.UpdateStatus(context.Background(), reg.ID, models.StatusCompleted)
	require.NoError(t, err)
	return reg
}

func (e *testEnv) reloadTraining(t *testing.T, id uint) models.Training {
	t.Helper()
	var tr models.Training
	require.NoError(t, e.db.First(&tr, id).Error)
	return tr
}

func (e *testEnv) reloadParticipant(t *testing.T, id uint) models.RegistrationParticipant {
	t.Helper()
	var p models.RegistrationParticipant
	require.NoError(t, e.db.First(&p, id).Error)
	return p
}

func (e *testEnv) certificateCount(t *testing.T, participantID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Certificate{}).Where("registration_participant_id = ?", participantID).Count(&n).Error)
	return n
}

// assertConsistent checks that has_certificate mirrors certificate rows and
// that every training's graduates matches the number of certified participants.
func (e *testEnv) assertConsistent(t *testing.T) {
	t.Helper()

	var participants []models.RegistrationParticipant
	require.NoError(t, e.db.Find(&participants).Error)
	for _, p := range participants {
		require.Equal(t, p.HasCertificate, e.certificateCount(t, p.ID) == 1, "participant %d", p.ID)
	}

	var trainings []models.Training
	require.NoError(t, e.db.Find(&trainings).Error)
	for _, tr := range trainings {
		var n int64
		require.NoError(t, e.db.Model(&models.RegistrationParticipant{}).
			Joins("JOIN registration ON registration.id = registration_participant.registration_id").
			Where("registration.training_id = ? AND registration_participant.has_certificate = ?", tr.ID, true).
			Count(&n).Error)
		require.Equal(t, n, tr.Graduates, "training %d", tr.ID)
	}
}
