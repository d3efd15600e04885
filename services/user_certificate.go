package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/utils"

	"gorm.io/gorm"
)

type UserCertificateInput struct {
	UserID            *string
	FullName          string
	CertType          string
	Issuer            string
	IssuedDate        time.Time
	ExpiredDate       *time.Time
	CertificateNumber string
	CertFile          string
}

type UserCertificateFilter struct {
	UserID string
	State  models.UserCertificateState
	Page
}

// UserCertificates keeps certificates issued outside the platform. Holders
// submit them for review; admins record them already approved.
type UserCertificates struct {
	db       *gorm.DB
	ids      *utils.IDGenerator
	settings Settings
	metrics  *metrics.Metrics
}

func NewUserCertificates(db *gorm.DB, ids *utils.IDGenerator, settings Settings, m *metrics.Metrics) *UserCertificates {
	return &UserCertificates{db: db, ids: ids, settings: settings, metrics: m}
}

// Create stores an external certificate. approved is set for admin entries.
func (s *UserCertificates) Create(ctx context.Context, in UserCertificateInput, approved bool) (*models.UserCertificate, error) {
	var cert models.UserCertificate
	err := operation(ctx, s.metrics, "user_certificate.create", func(ctx context.Context) error {
		in.FullName = strings.TrimSpace(in.FullName)
		in.CertType = strings.TrimSpace(in.CertType)
		in.Issuer = strings.TrimSpace(in.Issuer)
		in.CertificateNumber = strings.TrimSpace(in.CertificateNumber)
		in.CertFile = strings.TrimSpace(in.CertFile)
		if in.FullName == "" || in.CertType == "" || in.Issuer == "" || in.IssuedDate.IsZero() ||
			in.CertificateNumber == "" || in.CertFile == "" {
			return errs.Validation("Incomplete certificate data")
		}
		if in.ExpiredDate != nil && in.ExpiredDate.Before(in.IssuedDate) {
			return errs.Validation("expired_date must not be before issued_date")
		}
		if in.UserID != nil && strings.TrimSpace(*in.UserID) == "" {
			in.UserID = nil
		}

		state := models.UserCertificateSubmitted
		if approved {
			state = models.UserCertificateApproved
		}
		cert = models.UserCertificate{
			Code:              s.ids.New(utils.PrefixUserCert),
			UserID:            in.UserID,
			FullName:          in.FullName,
			CertType:          in.CertType,
			Issuer:            in.Issuer,
			IssuedDate:        in.IssuedDate,
			ExpiredDate:       in.ExpiredDate,
			CertificateNumber: in.CertificateNumber,
			CertFile:          in.CertFile,
			State:             state,
		}
		return errs.Storage(s.db.WithContext(ctx).Create(&cert).Error)
	})
	if err != nil {
		return nil, err
	}
	s.decorate(&cert)
	return &cert, nil
}

// Approve makes a submitted certificate visible in the public directory.
func (s *UserCertificates) Approve(ctx context.Context, id uint) (*models.UserCertificate, error) {
	var cert models.UserCertificate
	err := operation(ctx, s.metrics, "user_certificate.approve", func(ctx context.Context) error {
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			if err := tx.First(&cert, id).Error; err != nil {
				return notFound(err, "User certificate not found")
			}
			if cert.State == models.UserCertificateApproved {
				return nil
			}
			cert.State = models.UserCertificateApproved
			return tx.Model(&models.UserCertificate{}).Where("id = ?", cert.ID).
				UpdateColumn("state", models.UserCertificateApproved).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.decorate(&cert)
	return &cert, nil
}

func (s *UserCertificates) List(ctx context.Context, f UserCertificateFilter) ([]models.UserCertificate, error) {
	q := s.db.WithContext(ctx).Model(&models.UserCertificate{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.State != 0 {
		q = q.Where("state = ?", f.State)
	}

	var certs []models.UserCertificate
	if err := f.Page.apply(q).Order("issued_date DESC").Order("id DESC").Find(&certs).Error; err != nil {
		return nil, errs.Storage(err)
	}
	for i := range certs {
		s.decorate(&certs[i])
	}
	return certs, nil
}

func (s *UserCertificates) decorate(cert *models.UserCertificate) {
	cert.Status = validity(cert.ExpiredDate, s.ids.Now(), s.settings.Location)
}

func validity(expired *time.Time, today time.Time, loc *time.Location) models.CertificateStatus {
	if utils.StillValid(expired, today, loc) {
		return models.CertificateValid
	}
	return models.CertificateExpired
}

// DirectoryFilter narrows the combined certificate directory. Title matches
// the training name of platform certificates and the type of external ones.
type DirectoryFilter struct {
	Number    string
	FullName  string
	Title     string
	IssuedOn  *time.Time
	ExpiredOn *time.Time
	Keyword   string
	Page
}

// Directory lists platform certificates together with approved external
// ones, newest first.
func (s *Certificates) Directory(ctx context.Context, f DirectoryFilter) ([]models.CertificateEntry, error) {
	platform, err := s.Search(ctx, CertificateFilter{
		Number:       f.Number,
		FullName:     f.FullName,
		TrainingName: f.Title,
		IssuedOn:     f.IssuedOn,
		ExpiredOn:    f.ExpiredOn,
		Keyword:      f.Keyword,
	})
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.UserCertificate{}).
		Where("state = ?", models.UserCertificateApproved)
	if f.Number != "" {
		q = q.Where("LOWER(certificate_number) LIKE ?", likePattern(f.Number))
	}
	if f.FullName != "" {
		q = q.Where("LOWER(full_name) LIKE ?", likePattern(f.FullName))
	}
	if f.Title != "" {
		q = q.Where("LOWER(cert_type) LIKE ?", likePattern(f.Title))
	}
	if f.IssuedOn != nil {
		from, to := utils.DayRange(*f.IssuedOn, s.settings.Location)
		q = q.Where("issued_date BETWEEN ? AND ?", from, to)
	}
	if f.ExpiredOn != nil {
		from, to := utils.DayRange(*f.ExpiredOn, s.settings.Location)
		q = q.Where("expired_date BETWEEN ? AND ?", from, to)
	}
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		q = q.Where("(LOWER(certificate_number) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(cert_type) LIKE ?)", p, p, p)
	}
	var external []models.UserCertificate
	if err := q.Find(&external).Error; err != nil {
		return nil, errs.Storage(err)
	}

	entries := make([]models.CertificateEntry, 0, len(platform)+len(external))
	for _, c := range platform {
		entries = append(entries, platformEntry(c))
	}
	today := s.ids.Now()
	for _, c := range external {
		entries = append(entries, externalEntry(c, validity(c.ExpiredDate, today, s.settings.Location)))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].IssuedDate.After(entries[j].IssuedDate)
	})
	return pageSlice(entries, f.Page), nil
}

// LookupNumber finds a certificate number in the platform certificates
// first, then among approved external ones.
func (s *Certificates) LookupNumber(ctx context.Context, number string) (*models.CertificateEntry, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errs.Validation("certificate_number is required")
	}
	cert, err := s.GetByNumber(ctx, number)
	if err == nil {
		entry := platformEntry(*cert)
		return &entry, nil
	}
	if errs.KindOf(err) != errs.KindNotFound {
		return nil, err
	}

	var ext models.UserCertificate
	err = s.db.WithContext(ctx).
		Where("certificate_number = ? AND state = ?", number, models.UserCertificateApproved).
		First(&ext).Error
	if err != nil {
		return nil, notFound(err, "Certificate not found")
	}
	entry := externalEntry(ext, validity(ext.ExpiredDate, s.ids.Now(), s.settings.Location))
	return &entry, nil
}

func platformEntry(c models.Certificate) models.CertificateEntry {
	return models.CertificateEntry{
		ID:                c.ID,
		CertificateNumber: c.Number,
		FullName:          c.ParticipantName,
		Title:             c.TrainingName,
		IssuedDate:        c.IssuedDate,
		ExpiredDate:       c.ExpiredDate,
		CertFile:          c.CertFile,
		Type:              models.SourcePlatform,
		Status:            c.Status,
	}
}

func externalEntry(c models.UserCertificate, status models.CertificateStatus) models.CertificateEntry {
	file := c.CertFile
	return models.CertificateEntry{
		ID:                c.ID,
		CertificateNumber: c.CertificateNumber,
		FullName:          c.FullName,
		Title:             c.CertType,
		IssuedDate:        c.IssuedDate,
		ExpiredDate:       c.ExpiredDate,
		CertFile:          &file,
		Type:              models.SourceExternal,
		Status:            status,
	}
}

func pageSlice[T any](items []T, p Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(items) {
			return []T{}
		}
		items = items[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
