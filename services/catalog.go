package services

import (
	"context"
	"math"
	"strings"

	"edutrack/cache"
	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TrainingInput is the writable part of a catalog entry. Graduates and rating
// are derived and cannot be set.
type TrainingInput struct {
	Name           string
	Description    string
	Duration       int
	Fee            int64
	Discount       int
	ValidityPeriod int
	TermCondition  string
	Level          string
	Skills         []string
	Images         []string
	CreatedBy      string
}

func (in TrainingInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return errs.Validation("training_name is required")
	case in.Fee < 0:
		return errs.Validation("training_fees must not be negative")
	case in.Discount < 0 || in.Discount > 100:
		return errs.Validation("discount must be between 0 and 100")
	case in.Duration < 0:
		return errs.Validation("duration must not be negative")
	case in.ValidityPeriod < 0:
		return errs.Validation("validity_period must not be negative")
	}
	return nil
}

type TrainingFilter struct {
	Status  models.TrainingStatus
	Level   string
	Keyword string
	Page
}

// Catalog is the training store.
type Catalog struct {
	db      *gorm.DB
	ids     *utils.IDGenerator
	cache   cache.TrainingCache
	metrics *metrics.Metrics
}

func NewCatalog(db *gorm.DB, ids *utils.IDGenerator, c cache.TrainingCache, m *metrics.Metrics) *Catalog {
	if c == nil {
		c = cache.Noop{}
	}
	return &Catalog{db: db, ids: ids, cache: c, metrics: m}
}

func (s *Catalog) Create(ctx context.Context, in TrainingInput) (*models.Training, error) {
	var training *models.Training
	err := operation(ctx, s.metrics, "catalog.create", func(ctx context.Context) error {
		if err := in.validate(); err != nil {
			return err
		}
		t := models.Training{Code: s.ids.New(utils.PrefixTraining), Status: models.TrainingActive}
		in.applyTo(&t)
		if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
			return conflictOnDuplicate(err, "training code already exists, retry")
		}
		training = &t
		return nil
	})
	return training, err
}

func (s *Catalog) Update(ctx context.Context, id uint, in TrainingInput) (*models.Training, error) {
	var training *models.Training
	err := operation(ctx, s.metrics, "catalog.update", func(ctx context.Context) error {
		if err := in.validate(); err != nil {
			return err
		}
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var t models.Training
			if err := tx.First(&t, id).Error; err != nil {
				return notFound(err, "Training not found")
			}
			in.applyTo(&t)
			err := tx.Model(&t).
				Select("Name", "Description", "Duration", "Fee", "Discount", "ValidityPeriod",
					"TermCondition", "Level", "Skills", "Images", "CreatedBy").
				Updates(&t).Error
			if err != nil {
				return err
			}
			training = &t
			return nil
		})
	})
	if err == nil {
		s.cache.Invalidate(ctx, id)
	}
	return training, err
}

func (in TrainingInput) applyTo(t *models.Training) {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = in.Description
	t.Duration = in.Duration
	t.Fee = in.Fee
	t.Discount = in.Discount
	t.ValidityPeriod = in.ValidityPeriod
	t.TermCondition = in.TermCondition
	t.Level = in.Level
	t.Skills = in.Skills
	t.Images = in.Images
	if in.CreatedBy != "" && t.CreatedBy == "" {
		t.CreatedBy = in.CreatedBy
	}
}

// Archive hides a training from new registrations. Existing registrations,
// certificates and reviews are kept.
func (s *Catalog) Archive(ctx context.Context, id uint) error {
	err := operation(ctx, s.metrics, "catalog.archive", func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Model(&models.Training{}).Where("id = ?", id).Update("status", models.TrainingArchived)
		if res.Error != nil {
			return errs.Storage(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("Training not found")
		}
		return nil
	})
	if err == nil {
		s.cache.Invalidate(ctx, id)
	}
	return err
}

func (s *Catalog) Get(ctx context.Context, id uint) (*models.Training, error) {
	if t, ok := s.cache.Get(ctx, id); ok {
		return t, nil
	}
	var t models.Training
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err, "Training not found")
	}
	s.cache.Set(ctx, &t)
	return &t, nil
}

func (s *Catalog) List(ctx context.Context, f TrainingFilter) ([]models.Training, error) {
	q := s.db.WithContext(ctx).Model(&models.Training{})
	if f.Status != 0 {
		q = q.Where("status = ?", f.Status)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(code) LIKE ?)", p, p, p)
	}
	var trainings []models.Training
	if err := f.Page.apply(q).Order("created_at DESC").Find(&trainings).Error; err != nil {
		return nil, errs.Storage(err)
	}
	return trainings, nil
}

// Recompute re-derives graduates and rating for one training.
func (s *Catalog) Recompute(ctx context.Context, trainingID uint) error {
	err := operation(ctx, s.metrics, "catalog.recompute", func(ctx context.Context) error {
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			if err := recomputeGraduates(tx, trainingID); err != nil {
				return err
			}
			return recomputeRating(tx, trainingID)
		})
	})
	if err == nil {
		s.cache.Invalidate(ctx, trainingID)
	}
	return err
}

// RecomputeAll re-derives the aggregates of every training and returns how
// many trainings had drifted.
func (s *Catalog) RecomputeAll(ctx context.Context) (int, error) {
	var before []models.Training
	if err := s.db.WithContext(ctx).Select("id", "graduates", "rating").Find(&before).Error; err != nil {
		return 0, errs.Storage(err)
	}

	drifted := 0
	for _, t := range before {
		if err := s.Recompute(ctx, t.ID); err != nil {
			return drifted, err
		}
		var after models.Training
		if err := s.db.WithContext(ctx).Select("id", "graduates", "rating").First(&after, t.ID).Error; err != nil {
			return drifted, errs.Storage(err)
		}
		if after.Graduates != t.Graduates || after.Rating != t.Rating {
			drifted++
			log.Warn().Str("component", "catalog").Uint("training_id", t.ID).
				Int64("graduates_was", t.Graduates).Int64("graduates", after.Graduates).
				Float64("rating_was", t.Rating).Float64("rating", after.Rating).
				Msg("aggregate drift")
		}
	}
	return drifted, nil
}

// recomputeGraduates counts certificate holders across all registrations of
// the training. It must run in the transaction of the triggering write.
func recomputeGraduates(tx *gorm.DB, trainingID uint) error {
	var n int64
	err := tx.Model(&models.RegistrationParticipant{}).
		Joins("JOIN registration ON registration.id = registration_participant.registration_id AND registration.deleted_at IS NULL").
		Where("registration.training_id = ? AND registration_participant.has_certificate = ?", trainingID, true).
		Count(&n).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Training{}).Where("id = ?", trainingID).UpdateColumn("graduates", n).Error
}

// recomputeRating sets rating to the mean review score rounded to two places,
// or zero when there are no reviews.
func recomputeRating(tx *gorm.DB, trainingID uint) error {
	var avg float64
	err := tx.Model(&models.Review{}).
		Where("training_id = ?", trainingID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	rating := math.Round(avg*100) / 100
	return tx.Model(&models.Training{}).Where("id = ?", trainingID).UpdateColumn("rating", rating).Error
}
