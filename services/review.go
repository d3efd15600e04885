package services

import (
	"context"
	"strings"

	"edutrack/cache"
	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/utils"

	"gorm.io/gorm"
)

type ReviewInput struct {
	ParticipantID uint
	Score         int
	Description   string
}

// Reviews records participant feedback and keeps the training rating current.
type Reviews struct {
	db      *gorm.DB
	ids     *utils.IDGenerator
	cache   cache.TrainingCache
	metrics *metrics.Metrics
}

func NewReviews(db *gorm.DB, ids *utils.IDGenerator, c cache.TrainingCache, m *metrics.Metrics) *Reviews {
	if c == nil {
		c = cache.Noop{}
	}
	return &Reviews{db: db, ids: ids, cache: c, metrics: m}
}

// Create stores a review from a certified participant and recomputes the
// training rating in the same transaction.
func (s *Reviews) Create(ctx context.Context, in ReviewInput) (*models.Review, error) {
	var review models.Review
	err := operation(ctx, s.metrics, "review.create", func(ctx context.Context) error {
		in.Description = strings.TrimSpace(in.Description)
		switch {
		case in.ParticipantID == 0:
			return errs.Validation("registration_participant_id is required")
		case in.Score < 1 || in.Score > 5:
			return errs.Validation("score must be between 1 and 5")
		case in.Description == "":
			return errs.Validation("review_description is required")
		}

		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var p models.RegistrationParticipant
			if err := tx.Preload("Registration").First(&p, in.ParticipantID).Error; err != nil {
				return notFound(err, "Participant not found")
			}
			if !p.HasCertificate {
				return errs.Precondition("Participant must have a certificate to review")
			}
			if p.Registration == nil {
				return errs.NotFound("Registration not found")
			}

			var existing int64
			if err := tx.Model(&models.Review{}).Where("registration_participant_id = ?", p.ID).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return errs.Conflict("Participant has already reviewed this training")
			}

			review = models.Review{
				Code:                      s.ids.New(utils.PrefixReview),
				RegistrationParticipantID: p.ID,
				TrainingID:                p.Registration.TrainingID,
				Score:                     in.Score,
				Description:               in.Description,
				ReviewDate:                s.ids.Now(),
			}
			if err := tx.Omit("Participant").Create(&review).Error; err != nil {
				return conflictOnDuplicate(err, "review code collision, retry")
			}
			return recomputeRating(tx, review.TrainingID)
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordedReview()
	s.cache.Invalidate(ctx, review.TrainingID)
	return &review, nil
}

func (s *Reviews) List(ctx context.Context, page Page) ([]models.Review, error) {
	var reviews []models.Review
	if err := page.apply(s.db.WithContext(ctx)).Order("review_date DESC").Find(&reviews).Error; err != nil {
		return nil, errs.Storage(err)
	}
	return reviews, nil
}

func (s *Reviews) ListByTraining(ctx context.Context, trainingID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Where("training_id = ?", trainingID).Order("review_date DESC").Find(&reviews).Error
	if err != nil {
		return nil, errs.Storage(err)
	}
	return reviews, nil
}

func (s *Reviews) GetByParticipant(ctx context.Context, participantID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Where("registration_participant_id = ?", participantID).First(&review).Error; err != nil {
		return nil, notFound(err, "Review not found")
	}
	return &review, nil
}
