package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edutrack/cache"
	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/notifier"
	"edutrack/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CertificateFilter struct {
	Number       string
	FullName     string
	TrainingName string
	TrainingID   uint
	UserID       string
	IssuedOn     *time.Time
	ExpiredOn    *time.Time
	Keyword      string
	Page
}

// CertificatePreview describes a certificate email rendered without sending.
type CertificatePreview struct {
	ParticipantID     uint
	CertificateNumber string
	IssuedDate        time.Time
	ExpiredDate       *time.Time
}

// Certificates is the only writer of certificate rows and of the participant
// has_certificate flag.
type Certificates struct {
	db       *gorm.DB
	ids      *utils.IDGenerator
	settings Settings
	cache    cache.TrainingCache
	notifier notifier.Notifier
	metrics  *metrics.Metrics
}

func NewCertificates(db *gorm.DB, ids *utils.IDGenerator, settings Settings, c cache.TrainingCache, n notifier.Notifier, m *metrics.Metrics) *Certificates {
	if c == nil {
		c = cache.Noop{}
	}
	return &Certificates{db: db, ids: ids, settings: settings, cache: c, notifier: n, metrics: m}
}

// IssueFor issues a certificate to an attending participant. issued defaults
// to now; certFile is an optional URL of the rendered document.
func (s *Certificates) IssueFor(ctx context.Context, participantID uint, issued *time.Time, certFile *string) (*models.Certificate, error) {
	var (
		cert  *models.Certificate
		event *models.CertificateIssued
	)
	err := operation(ctx, s.metrics, "certificate.issue", func(ctx context.Context) error {
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			at := s.ids.Now()
			if issued != nil {
				at = *issued
			}
			var err error
			cert, event, err = s.issueInTx(tx, participantID, at)
			if err != nil {
				return err
			}
			if certFile != nil {
				cert.CertFile = certFile
				return tx.Model(cert).UpdateColumn("cert_file", *certFile).Error
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.afterIssue(ctx, []models.CertificateIssued{*event}, cert.TrainingID)
	s.decorate(cert)
	return cert, nil
}

// issueInTx inserts the certificate, raises the participant flag and
// recomputes the training's graduates, all on tx.
func (s *Certificates) issueInTx(tx *gorm.DB, participantID uint, issued time.Time) (*models.Certificate, *models.CertificateIssued, error) {
	var p models.RegistrationParticipant
	if err := tx.Preload("Registration.Training").First(&p, participantID).Error; err != nil {
		return nil, nil, notFound(err, "Participant not found")
	}
	if p.AttendanceStatus == nil || !*p.AttendanceStatus {
		return nil, nil, errs.Precondition("Participant has not attended the training")
	}
	if p.Registration == nil || p.Registration.Training == nil {
		return nil, nil, errs.NotFound("Training not found")
	}

	var existing int64
	if err := tx.Model(&models.Certificate{}).Where("registration_participant_id = ?", p.ID).Count(&existing).Error; err != nil {
		return nil, nil, err
	}
	if existing > 0 {
		return nil, nil, errs.Conflict("Certificate already exists for this participant")
	}

	training := p.Registration.Training
	expired, err := utils.ExpiryDate(issued, training.ValidityPeriod, s.settings.ValidityUnit)
	if err != nil {
		return nil, nil, err
	}

	cert := models.Certificate{
		Number:                    s.ids.New(utils.PrefixCertNumber),
		RegistrationParticipantID: p.ID,
		TrainingID:                training.ID,
		UserID:                    p.UserID,
		IssuedDate:                issued,
		ExpiredDate:               expired,
		TrainingName:              training.Name,
	}
	if err := tx.Create(&cert).Error; err != nil {
		return nil, nil, conflictOnDuplicate(err, "Certificate already exists for this participant")
	}
	err = tx.Model(&models.RegistrationParticipant{}).
		Where("id = ?", p.ID).
		UpdateColumn("has_certificate", true).Error
	if err != nil {
		return nil, nil, err
	}
	if err := recomputeGraduates(tx, training.ID); err != nil {
		return nil, nil, err
	}

	var user models.User
	if err := tx.Where("id = ?", p.UserID).Limit(1).Find(&user).Error; err != nil {
		return nil, nil, err
	}
	cert.ParticipantName = user.FullName

	event := &models.CertificateIssued{
		CertificateID:     cert.ID,
		CertificateNumber: cert.Number,
		ParticipantName:   user.FullName,
		Email:             user.Email,
		TrainingName:      training.Name,
		IssuedDate:        cert.IssuedDate,
		ExpiredDate:       cert.ExpiredDate,
	}
	return &cert, event, nil
}

// Revoke deletes a certificate, clears the participant flag and recomputes
// the training's graduates.
func (s *Certificates) Revoke(ctx context.Context, certificateID uint) error {
	var trainingID uint
	err := operation(ctx, s.metrics, "certificate.revoke", func(ctx context.Context) error {
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var cert models.Certificate
			if err := tx.First(&cert, certificateID).Error; err != nil {
				return notFound(err, "Certificate not found")
			}
			trainingID = cert.TrainingID
			return s.revokeInTx(tx, &cert)
		})
	})
	if err != nil {
		return err
	}
	s.metrics.RevokedCertificates(1)
	s.cache.Invalidate(ctx, trainingID)
	return nil
}

func (s *Certificates) revokeInTx(tx *gorm.DB, cert *models.Certificate) error {
	if err := tx.Delete(&models.Certificate{}, cert.ID).Error; err != nil {
		return err
	}
	err := tx.Model(&models.RegistrationParticipant{}).
		Where("id = ?", cert.RegistrationParticipantID).
		UpdateColumn("has_certificate", false).Error
	if err != nil {
		return err
	}
	return recomputeGraduates(tx, cert.TrainingID)
}

// AttachFile records the URL of the rendered certificate document.
func (s *Certificates) AttachFile(ctx context.Context, certificateID uint, url string) (*models.Certificate, error) {
	var cert models.Certificate
	err := operation(ctx, s.metrics, "certificate.attach_file", func(ctx context.Context) error {
		url = strings.TrimSpace(url)
		if url == "" {
			return errs.Validation("cert_file is required")
		}
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			if err := tx.First(&cert, certificateID).Error; err != nil {
				return notFound(err, "Certificate not found")
			}
			cert.CertFile = &url
			return tx.Model(&cert).UpdateColumn("cert_file", url).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return s.withNames(ctx, &cert)
}

func (s *Certificates) Get(ctx context.Context, certificateID uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).First(&cert, certificateID).Error; err != nil {
		return nil, notFound(err, "Certificate not found")
	}
	return s.withNames(ctx, &cert)
}

// GetByNumber is the public verification lookup.
func (s *Certificates) GetByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).Where("number = ?", strings.TrimSpace(number)).First(&cert).Error; err != nil {
		return nil, notFound(err, "Certificate not found")
	}
	return s.withNames(ctx, &cert)
}

func (s *Certificates) List(ctx context.Context) ([]models.Certificate, error) {
	return s.Search(ctx, CertificateFilter{})
}

func (s *Certificates) Search(ctx context.Context, f CertificateFilter) ([]models.Certificate, error) {
	q := s.db.WithContext(ctx).Model(&models.Certificate{}).
		Joins("JOIN training ON training.id = certificate.training_id").
		Joins("LEFT JOIN users u ON u.id = certificate.user_id")

	if f.Number != "" {
		q = q.Where("LOWER(certificate.number) LIKE ?", likePattern(f.Number))
	}
	if f.FullName != "" {
		q = q.Where("LOWER(u.full_name) LIKE ?", likePattern(f.FullName))
	}
	if f.TrainingName != "" {
		q = q.Where("LOWER(training.name) LIKE ?", likePattern(f.TrainingName))
	}
	if f.TrainingID != 0 {
		q = q.Where("certificate.training_id = ?", f.TrainingID)
	}
	if f.UserID != "" {
		q = q.Where("certificate.user_id = ?", f.UserID)
	}
	if f.IssuedOn != nil {
		from, to := utils.DayRange(*f.IssuedOn, s.settings.Location)
		q = q.Where("certificate.issued_date BETWEEN ? AND ?", from, to)
	}
	if f.ExpiredOn != nil {
		from, to := utils.DayRange(*f.ExpiredOn, s.settings.Location)
		q = q.Where("certificate.expired_date BETWEEN ? AND ?", from, to)
	}
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		q = q.Where("(LOWER(certificate.number) LIKE ? OR LOWER(u.full_name) LIKE ? OR LOWER(training.name) LIKE ?)", p, p, p)
	}

	var certs []models.Certificate
	if err := f.Page.apply(q).Order("certificate.issued_date DESC").Find(&certs).Error; err != nil {
		return nil, errs.Storage(err)
	}
	if err := s.fillNames(s.db.WithContext(ctx), certs); err != nil {
		return nil, errs.Storage(err)
	}
	return certs, nil
}

// Preview renders the certificate email for a participant without sending it.
func (s *Certificates) Preview(ctx context.Context, in CertificatePreview) (utils.RenderedEmail, error) {
	if in.ParticipantID == 0 || strings.TrimSpace(in.CertificateNumber) == "" {
		return utils.RenderedEmail{}, errs.Validation("registration_participant_id and certificate_number are required")
	}
	var p models.RegistrationParticipant
	if err := s.db.WithContext(ctx).Preload("Registration.Training").First(&p, in.ParticipantID).Error; err != nil {
		return utils.RenderedEmail{}, notFound(err, "Data not found")
	}
	users, err := usersByID(s.db.WithContext(ctx), []string{p.UserID})
	if err != nil {
		return utils.RenderedEmail{}, errs.Storage(err)
	}
	issued := in.IssuedDate
	if issued.IsZero() {
		issued = s.ids.Now()
	}
	ev := models.CertificateIssued{
		CertificateNumber: in.CertificateNumber,
		ParticipantName:   users[p.UserID].FullName,
		Email:             users[p.UserID].Email,
		IssuedDate:        issued,
		ExpiredDate:       in.ExpiredDate,
	}
	if p.Registration != nil && p.Registration.Training != nil {
		ev.TrainingName = p.Registration.Training.Name
	}
	return utils.RenderCertificateEmail(ev, s.settings.CertificateBaseURL, s.settings.Brand)
}

// Resend delivers the issuance notification for an existing certificate
// again. Unlike issuance, a delivery failure is returned to the caller.
func (s *Certificates) Resend(ctx context.Context, number string) error {
	if strings.TrimSpace(number) == "" {
		return errs.Validation("Missing certificate_number")
	}
	cert, err := s.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	users, err := usersByID(s.db.WithContext(ctx), []string{cert.UserID})
	if err != nil {
		return errs.Storage(err)
	}
	ev := models.CertificateIssued{
		CertificateID:     cert.ID,
		CertificateNumber: cert.Number,
		ParticipantName:   cert.ParticipantName,
		Email:             users[cert.UserID].Email,
		TrainingName:      cert.TrainingName,
		IssuedDate:        cert.IssuedDate,
		ExpiredDate:       cert.ExpiredDate,
	}
	if err := s.notifier.CertificateIssued(ctx, ev); err != nil {
		return fmt.Errorf("deliver certificate email: %w", err)
	}
	return nil
}

// afterIssue runs once the issuing transaction has committed.
func (s *Certificates) afterIssue(ctx context.Context, events []models.CertificateIssued, trainingIDs ...uint) {
	s.metrics.IssuedCertificates(len(events))
	s.cache.Invalidate(ctx, trainingIDs...)
	if len(events) == 0 || s.notifier == nil {
		return
	}
	go s.deliver(context.WithoutCancel(ctx), events)
}

func (s *Certificates) deliver(ctx context.Context, events []models.CertificateIssued) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, ev := range events {
		if err := s.notifier.CertificateIssued(ctx, ev); err != nil {
			log.Error().Str("component", "notifier").Err(err).
				Str("certificate_number", ev.CertificateNumber).
				Msg("certificate notification failed")
		}
	}
}

func (s *Certificates) withNames(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	certs := []models.Certificate{*cert}
	if err := s.fillNames(s.db.WithContext(ctx), certs); err != nil {
		return nil, errs.Storage(err)
	}
	return &certs[0], nil
}

func (s *Certificates) fillNames(db *gorm.DB, certs []models.Certificate) error {
	if len(certs) == 0 {
		return nil
	}
	userIDs := make([]string, 0, len(certs))
	trainingIDs := make([]uint, 0, len(certs))
	for _, c := range certs {
		userIDs = append(userIDs, c.UserID)
		trainingIDs = append(trainingIDs, c.TrainingID)
	}
	users, err := usersByID(db, userIDs)
	if err != nil {
		return err
	}
	var trainings []models.Training
	if err := db.Unscoped().Select("id", "name").Where("id IN ?", trainingIDs).Find(&trainings).Error; err != nil {
		return err
	}
	names := make(map[uint]string, len(trainings))
	for _, t := range trainings {
		names[t.ID] = t.Name
	}
	for i := range certs {
		certs[i].ParticipantName = users[certs[i].UserID].FullName
		certs[i].TrainingName = names[certs[i].TrainingID]
		s.decorate(&certs[i])
	}
	return nil
}

// decorate sets the read-time validity status.
func (s *Certificates) decorate(cert *models.Certificate) {
	cert.Status = validity(cert.ExpiredDate, s.ids.Now(), s.settings.Location)
}
