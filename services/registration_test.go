package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"edutrack/errs"
	"edutrack/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RegistrationSuite struct {
	suite.Suite
	env      *testEnv
	training *models.Training
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.env.user(s.T(), "u-ana", "Ana Putri")
	s.env.user(s.T(), "u-budi", "Budi Santoso")
	s.training = s.env.training(s.T(), 100000, 0, 12)
}

func (s *RegistrationSuite) input(users ...string) RegistrationInput {
	return RegistrationInput{
		TrainingID:       s.training.ID,
		RegistrantID:     users[0],
		TrainingDate:     time.Now().AddDate(0, 1, 0),
		ParticipantCount: len(users),
		Participants:     users,
	}
}

// TestTotalPayment creates a two person registration for a 100000 training.
func (s *RegistrationSuite) TestTotalPayment() {
	reg, err := s.env.regs.Create(context.Background(), s.input("u-ana", "u-budi"))
	s.Require().NoError(err)

	s.Equal(int64(200000), reg.TotalPayment)
	s.Equal(models.StatusPending, reg.Status)
	s.Len(reg.Participants, 2)
	s.Regexp(`^REGT-\d{12}-[0-9A-F]{6}$`, reg.Code)
	for _, p := range reg.Participants {
		s.Regexp(`^REGP-\d{12}-[0-9A-F]{6}$`, p.Code)
		s.Nil(p.AttendanceStatus)
		s.False(p.HasCertificate)
	}

	got, err := s.env.regs.Get(context.Background(), reg.ID)
	s.Require().NoError(err)
	s.Equal("Ana Putri", got.RegistrantName)
	s.Equal("Budi Santoso", got.Participants[1].ParticipantName)
}

func (s *RegistrationSuite) TestCatalogPricing() {
	discounted := s.env.training(s.T(), 150000, 10, 0)

	s.Run("catalog discount applied", func() {
		in := s.input("u-ana")
		in.TrainingID = discounted.ID
		reg, err := s.env.regs.Create(context.Background(), in)
		s.Require().NoError(err)
		s.Equal(int64(135000), reg.TotalPayment)
	})

	s.Run("mismatched final price rejected", func() {
		in := s.input("u-ana")
		in.TrainingID = discounted.ID
		price := int64(1)
		in.FinalPrice = &price
		_, err := s.env.regs.Create(context.Background(), in)
		s.True(errs.Is(err, errs.KindValidation), "got %v", err)
	})

	s.Run("matching final price accepted", func() {
		in := s.input("u-budi")
		in.TrainingID = discounted.ID
		price := int64(135000)
		in.FinalPrice = &price
		_, err := s.env.regs.Create(context.Background(), in)
		s.NoError(err)
	})
}

func (s *RegistrationSuite) TestCallerPricingWhenNotEnforced() {
	env := newTestEnv(s.T(), func(st *Settings) { st.EnforceCatalogPrice = false })
	tr := env.training(s.T(), 100000, 0, 0)

	fees := int64(80000)
	reg, err := env.regs.Create(context.Background(), RegistrationInput{
		TrainingID:       tr.ID,
		RegistrantID:     "u-1",
		TrainingDate:     time.Now(),
		ParticipantCount: 3,
		Participants:     []string{"u-1", "u-2", "u-3"},
		TrainingFees:     &fees,
	})
	s.Require().NoError(err)
	s.Equal(int64(240000), reg.TotalPayment)

	_, err = env.regs.Create(context.Background(), RegistrationInput{
		TrainingID:       tr.ID,
		RegistrantID:     "u-1",
		TrainingDate:     time.Now(),
		ParticipantCount: 1,
		Participants:     []string{"u-1"},
	})
	s.True(errs.Is(err, errs.KindValidation))
}

func (s *RegistrationSuite) TestCreateValidation() {
	cases := map[string]func(*RegistrationInput){
		"missing training":   func(in *RegistrationInput) { in.TrainingID = 0 },
		"missing registrant": func(in *RegistrationInput) { in.RegistrantID = " " },
		"missing date":       func(in *RegistrationInput) { in.TrainingDate = time.Time{} },
		"zero count":         func(in *RegistrationInput) { in.ParticipantCount = 0 },
		"no participants":    func(in *RegistrationInput) { in.Participants = nil },
		"count mismatch":     func(in *RegistrationInput) { in.ParticipantCount = 3 },
		"duplicate user":     func(in *RegistrationInput) { in.Participants = []string{"u-ana", "u-ana"} },
		"blank participant":  func(in *RegistrationInput) { in.Participants = []string{"u-ana", ""} },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			in := s.input("u-ana", "u-budi")
			mutate(&in)
			_, err := s.env.regs.Create(context.Background(), in)
			s.True(errs.Is(err, errs.KindValidation), "got %v", err)
		})
	}
	s.assertRegistrationCount(0)
}

func (s *RegistrationSuite) TestCreateRequiresActiveTraining() {
	in := s.input("u-ana")
	in.TrainingID = 9999
	_, err := s.env.regs.Create(context.Background(), in)
	s.True(errs.Is(err, errs.KindNotFound))

	s.Require().NoError(s.env.catalog.Archive(context.Background(), s.training.ID))
	_, err = s.env.regs.Create(context.Background(), s.input("u-ana"))
	s.True(errs.Is(err, errs.KindPrecondition))
}

// TestCreateIsAtomic fails the participant insert and expects no registration
// row to survive.
func (s *RegistrationSuite) TestCreateIsAtomic() {
	err := s.env.db.Callback().Create().Before("gorm:create").Register("test:fail_participants", func(tx *gorm.DB) {
		if tx.Statement.Table == "registration_participant" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	s.Require().NoError(err)

	_, err = s.env.regs.Create(context.Background(), s.input("u-ana", "u-budi"))
	s.True(errs.Is(err, errs.KindStorage), "got %v", err)
	s.Equal("Internal server error", errs.Message(err))
	s.assertRegistrationCount(0)
}

func (s *RegistrationSuite) assertRegistrationCount(want int64) {
	var n int64
	s.Require().NoError(s.env.db.Model(&models.Registration{}).Count(&n).Error)
	s.Equal(want, n)
}

func (s *RegistrationSuite) TestUpdateStatus() {
	ctx := context.Background()
	reg, err := s.env.regs.Create(ctx, s.input("u-ana"))
	s.Require().NoError(err)

	s.Run("unknown registration", func() {
		_, err := s.env.regs.UpdateStatus(ctx, 9999, models.StatusApproved)
		s.True(errs.Is(err, errs.KindNotFound))
	})

	s.Run("out of range", func() {
		_, err := s.env.regs.UpdateStatus(ctx, reg.ID, models.RegistrationStatus(6))
		s.True(errs.Is(err, errs.KindValidation))
	})

	s.Run("completion stamps completed_date", func() {
		updated, err := s.env.regs.UpdateStatus(ctx, reg.ID, models.StatusCompleted)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, updated.Status)
		s.Require().NotNil(updated.CompletedDate)
	})

	s.Run("disallowed transition", func() {
		_, err := s.env.regs.UpdateStatus(ctx, reg.ID, models.StatusCancelled)
		s.True(errs.Is(err, errs.KindPrecondition), "got %v", err)
	})

	s.Run("reopening keeps completed_date", func() {
		updated, err := s.env.regs.UpdateStatus(ctx, reg.ID, models.StatusInProgress)
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, updated.Status)

		got, err := s.env.regs.Get(ctx, reg.ID)
		s.Require().NoError(err)
		s.NotNil(got.CompletedDate)
	})

	s.Run("same status is a no-op", func() {
		updated, err := s.env.regs.UpdateStatus(ctx, reg.ID, models.StatusInProgress)
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, updated.Status)
	})
}

func (s *RegistrationSuite) TestListByStatusAndSearch() {
	ctx := context.Background()
	first, err := s.env.regs.Create(ctx, s.input("u-ana"))
	s.Require().NoError(err)
	second, err := s.env.regs.Create(ctx, s.input("u-budi"))
	s.Require().NoError(err)
	_, err = s.env.regs.UpdateStatus(ctx, second.ID, models.StatusCompleted)
	s.Require().NoError(err)

	completed, err := s.env.regs.ListByStatus(ctx, []models.RegistrationStatus{models.StatusCompleted})
	s.Require().NoError(err)
	s.Require().Len(completed, 1)
	s.Equal(second.ID, completed[0].ID)
	s.Len(completed[0].Participants, 1)

	both, err := s.env.regs.ListByStatus(ctx, []models.RegistrationStatus{models.StatusPending, models.StatusCompleted})
	s.Require().NoError(err)
	s.Len(both, 2)

	_, err = s.env.regs.ListByStatus(ctx, []models.RegistrationStatus{models.RegistrationStatus(9)})
	s.True(errs.Is(err, errs.KindValidation))

	parsed, err := ParseStatuses("1, 4")
	s.Require().NoError(err)
	s.Equal([]models.RegistrationStatus{models.StatusPending, models.StatusCompleted}, parsed)
	_, err = ParseStatuses("1,x")
	s.True(errs.Is(err, errs.KindValidation))

	all, err := s.env.regs.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	byName, err := s.env.regs.Search(ctx, RegistrationFilter{Keyword: "putri"})
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal(first.ID, byName[0].ID)

	sorted, err := s.env.regs.Search(ctx, RegistrationFilter{SortBy: "registrant_name", SortOrder: "asc"})
	s.Require().NoError(err)
	s.Require().Len(sorted, 2)
	s.Equal("Ana Putri", sorted[0].RegistrantName)
}

func (s *RegistrationSuite) TestAttachPaymentProof() {
	ctx := context.Background()
	reg, err := s.env.regs.Create(ctx, s.input("u-ana"))
	s.Require().NoError(err)

	s.Require().NoError(s.env.regs.AttachPaymentProof(ctx, reg.ID, "https://files.example.com/proof.png"))
	got, err := s.env.regs.Get(ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal("https://files.example.com/proof.png", *got.PaymentProof)

	s.True(errs.Is(s.env.regs.AttachPaymentProof(ctx, reg.ID, ""), errs.KindValidation))
	s.True(errs.Is(s.env.regs.AttachPaymentProof(ctx, 9999, "x"), errs.KindNotFound))
}
