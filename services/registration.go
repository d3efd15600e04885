package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/utils"

	"gorm.io/gorm"
)

type RegistrationInput struct {
	TrainingID       uint
	RegistrantID     string
	TrainingDate     time.Time
	ParticipantCount int
	Participants     []string // user ids
	FinalPrice       *int64
	TrainingFees     *int64
	PaymentProof     *string
}

func (in RegistrationInput) validate() error {
	switch {
	case in.TrainingID == 0:
		return errs.Validation("training_id is required")
	case strings.TrimSpace(in.RegistrantID) == "":
		return errs.Validation("registrant_id is required")
	case in.TrainingDate.IsZero():
		return errs.Validation("training_date is required")
	case in.ParticipantCount <= 0:
		return errs.Validation("participant_count must be greater than 0")
	case len(in.Participants) == 0:
		return errs.Validation("participants must not be empty")
	case in.ParticipantCount != len(in.Participants):
		return errs.Validation("participant_count must match the number of participants")
	}
	seen := make(map[string]bool, len(in.Participants))
	for _, userID := range in.Participants {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			return errs.Validation("participant user_id is required")
		}
		if seen[userID] {
			return errs.Validation(fmt.Sprintf("participant %s is listed twice", userID))
		}
		seen[userID] = true
	}
	if in.FinalPrice != nil && *in.FinalPrice < 0 || in.TrainingFees != nil && *in.TrainingFees < 0 {
		return errs.Validation("price must not be negative")
	}
	return nil
}

type RegistrationFilter struct {
	Statuses             []models.RegistrationStatus
	Keyword              string
	TrainingID           uint
	RegistrantID         string
	RegistrantName       string
	TrainingName         string
	TrainingDateFrom     *time.Time
	TrainingDateTo       *time.Time
	RegistrationDateFrom *time.Time
	RegistrationDateTo   *time.Time
	SortBy               string
	SortOrder            string
	Page
}

var registrationSortFields = map[string]string{
	"registration_id":   "registration.code",
	"registrant_name":   "u.full_name",
	"training_name":     "training.name",
	"training_date":     "registration.training_date",
	"registration_date": "registration.registration_date",
	"participant_count": "registration.participant_count",
}

// Registrations manages bookings and their status lifecycle.
type Registrations struct {
	db       *gorm.DB
	ids      *utils.IDGenerator
	settings Settings
	metrics  *metrics.Metrics
}

func NewRegistrations(db *gorm.DB, ids *utils.IDGenerator, settings Settings, m *metrics.Metrics) *Registrations {
	return &Registrations{db: db, ids: ids, settings: settings, metrics: m}
}

// Create inserts the registration and one participant row per user, all or
// nothing.
func (s *Registrations) Create(ctx context.Context, in RegistrationInput) (*models.Registration, error) {
	var created *models.Registration
	err := operation(ctx, s.metrics, "registration.create", func(ctx context.Context) error {
		if err := in.validate(); err != nil {
			return err
		}
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var training models.Training
			if err := tx.First(&training, in.TrainingID).Error; err != nil {
				return notFound(err, "Training not found")
			}
			if training.Status != models.TrainingActive {
				return errs.Precondition("Training is not open for registration")
			}

			unit, err := s.unitPrice(training, in)
			if err != nil {
				return err
			}

			reg := models.Registration{
				Code:             s.ids.New(utils.PrefixRegistration),
				TrainingID:       training.ID,
				RegistrantID:     strings.TrimSpace(in.RegistrantID),
				TrainingDate:     in.TrainingDate,
				ParticipantCount: in.ParticipantCount,
				TotalPayment:     unit * int64(in.ParticipantCount),
				PaymentProof:     in.PaymentProof,
				Status:           models.StatusPending,
				RegistrationDate: s.ids.Now(),
			}
			if err := tx.Omit("Participants", "Training").Create(&reg).Error; err != nil {
				return conflictOnDuplicate(err, "registration code collision, retry")
			}

			participants := make([]models.RegistrationParticipant, len(in.Participants))
			for i, userID := range in.Participants {
				participants[i] = models.RegistrationParticipant{
					Code:           s.ids.New(utils.PrefixParticipant),
					RegistrationID: reg.ID,
					UserID:         strings.TrimSpace(userID),
				}
			}
			if err := tx.Create(&participants).Error; err != nil {
				return conflictOnDuplicate(err, "participant code collision, retry")
			}

			reg.Participants = participants
			reg.Training = &training
			created = &reg
			return nil
		})
	})
	return created, err
}

// unitPrice is the per-participant price. With catalog pricing enforced the
// catalog figure wins and any caller figure must agree with it; otherwise
// the caller's final price, or its training fee, is trusted.
func (s *Registrations) unitPrice(training models.Training, in RegistrationInput) (int64, error) {
	if s.settings.EnforceCatalogPrice {
		if in.FinalPrice != nil && *in.FinalPrice != training.FinalPrice() {
			return 0, errs.Validation("final_price does not match the catalog price")
		}
		if in.FinalPrice == nil && in.TrainingFees != nil && *in.TrainingFees != training.Fee {
			return 0, errs.Validation("training_fees does not match the catalog fee")
		}
		return training.FinalPrice(), nil
	}
	switch {
	case in.FinalPrice != nil:
		return *in.FinalPrice, nil
	case in.TrainingFees != nil:
		return *in.TrainingFees, nil
	}
	return 0, errs.Validation("final_price or training_fees is required")
}

// UpdateStatus moves a registration to status. Entering Completed stamps
// completed_date; leaving it never clears the stamp.
func (s *Registrations) UpdateStatus(ctx context.Context, id uint, status models.RegistrationStatus) (*models.Registration, error) {
	var updated *models.Registration
	err := operation(ctx, s.metrics, "registration.update_status", func(ctx context.Context) error {
		if !status.Valid() {
			return errs.Validation("Invalid status value")
		}
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var reg models.Registration
			if err := tx.First(&reg, id).Error; err != nil {
				return notFound(err, "Registration not found")
			}
			if reg.Status == status {
				updated = &reg
				return nil
			}
			if !reg.Status.CanTransitionTo(status) {
				return errs.Precondition(fmt.Sprintf("cannot change registration from %s to %s", reg.Status, status))
			}

			changes := map[string]interface{}{"status": status}
			if status == models.StatusCompleted {
				completed := s.ids.Now()
				changes["completed_date"] = completed
				reg.CompletedDate = &completed
			}
			if err := tx.Model(&reg).Updates(changes).Error; err != nil {
				return err
			}
			reg.Status = status
			updated = &reg
			return nil
		})
	})
	return updated, err
}

// AttachPaymentProof stores the URL of an uploaded payment proof.
func (s *Registrations) AttachPaymentProof(ctx context.Context, id uint, url string) error {
	return operation(ctx, s.metrics, "registration.payment_proof", func(ctx context.Context) error {
		url = strings.TrimSpace(url)
		if url == "" {
			return errs.Validation("file URL is required")
		}
		res := s.db.WithContext(ctx).Model(&models.Registration{}).Where("id = ?", id).Update("payment_proof", url)
		if res.Error != nil {
			return errs.Storage(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("Registration not found")
		}
		return nil
	})
}

func (s *Registrations) Get(ctx context.Context, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).
		Preload("Training").
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&reg, id).Error
	if err != nil {
		return nil, notFound(err, "Registration not found")
	}
	regs := []models.Registration{reg}
	if err := decorateRegistrations(s.db.WithContext(ctx), regs); err != nil {
		return nil, errs.Storage(err)
	}
	return &regs[0], nil
}

// List returns every registration, newest first.
func (s *Registrations) List(ctx context.Context) ([]models.Registration, error) {
	return s.Search(ctx, RegistrationFilter{})
}

// ParseStatuses parses a ?status=1,4 style list into validated statuses.
func ParseStatuses(raw string) ([]models.RegistrationStatus, error) {
	statuses, err := models.ParseRegistrationStatuses(raw)
	if err != nil {
		return nil, errs.Validation(err.Error())
	}
	return statuses, nil
}

// ListByStatus returns registrations whose status is one of statuses.
func (s *Registrations) ListByStatus(ctx context.Context, statuses []models.RegistrationStatus) ([]models.Registration, error) {
	if len(statuses) == 0 {
		return nil, errs.Validation("status parameter is required")
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, errs.Validation("Invalid status value")
		}
	}
	return s.Search(ctx, RegistrationFilter{Statuses: statuses})
}

func (s *Registrations) Search(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	q := s.db.WithContext(ctx).Model(&models.Registration{}).
		Joins("JOIN training ON training.id = registration.training_id").
		Joins("LEFT JOIN users u ON u.id = registration.registrant_id")

	if len(f.Statuses) > 0 {
		q = q.Where("registration.status IN ?", f.Statuses)
	}
	if f.TrainingID != 0 {
		q = q.Where("registration.training_id = ?", f.TrainingID)
	}
	if f.RegistrantID != "" {
		q = q.Where("registration.registrant_id = ?", f.RegistrantID)
	}
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		q = q.Where("(LOWER(registration.code) LIKE ? OR LOWER(u.full_name) LIKE ? OR LOWER(training.name) LIKE ?)", p, p, p)
	}
	if f.RegistrantName != "" {
		q = q.Where("LOWER(u.full_name) LIKE ?", likePattern(f.RegistrantName))
	}
	if f.TrainingName != "" {
		q = q.Where("LOWER(training.name) LIKE ?", likePattern(f.TrainingName))
	}
	if f.TrainingDateFrom != nil {
		q = q.Where("registration.training_date >= ?", *f.TrainingDateFrom)
	}
	if f.TrainingDateTo != nil {
		q = q.Where("registration.training_date <= ?", *f.TrainingDateTo)
	}
	if f.RegistrationDateFrom != nil {
		q = q.Where("registration.registration_date >= ?", *f.RegistrationDateFrom)
	}
	if f.RegistrationDateTo != nil {
		q = q.Where("registration.registration_date <= ?", *f.RegistrationDateTo)
	}

	order := orderClause(registrationSortFields, f.SortBy, f.SortOrder, "registration.registration_date")
	var regs []models.Registration
	err := f.Page.apply(q).
		Order(order).
		Preload("Training").
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Find(&regs).Error
	if err != nil {
		return nil, errs.Storage(err)
	}
	if err := decorateRegistrations(s.db.WithContext(ctx), regs); err != nil {
		return nil, errs.Storage(err)
	}
	return regs, nil
}

// decorateRegistrations fills registrant and participant names from users.
func decorateRegistrations(db *gorm.DB, regs []models.Registration) error {
	var ids []string
	for _, r := range regs {
		ids = append(ids, r.RegistrantID)
		for _, p := range r.Participants {
			ids = append(ids, p.UserID)
		}
	}
	users, err := usersByID(db, ids)
	if err != nil {
		return err
	}
	for i := range regs {
		regs[i].RegistrantName = users[regs[i].RegistrantID].FullName
		for j := range regs[i].Participants {
			p := &regs[i].Participants[j]
			p.ParticipantName = users[p.UserID].FullName
			p.Email = users[p.UserID].Email
		}
	}
	return nil
}

func usersByID(db *gorm.DB, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
