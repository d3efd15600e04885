package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/models"

	"gorm.io/gorm"
)

type AttendanceResult struct {
	Participant        *models.RegistrationParticipant `json:"participant"`
	Certificate        *models.Certificate             `json:"certificate,omitempty"`
	DeletedCertificate *uint                           `json:"deleted_certificate,omitempty"`
}

type BulkAttendanceResult struct {
	Updated               int                  `json:"updated"`
	GeneratedCertificates []models.Certificate `json:"generated_certificates"`
	DeletedCertificates   []uint               `json:"deleted_certificates"`
}

// Participant list modes.
const (
	ModeOnProgress = "onprogress"
	ModeCompleted  = "completed"
)

type ParticipantFilter struct {
	// AttendanceStatus is "true", "false", "null" or empty for any.
	AttendanceStatus string
	HasCertificate   *bool
	Mode             string
	Keyword          string
	TrainingDateFrom *time.Time
	TrainingDateTo   *time.Time
	RegistrationFrom *time.Time
	RegistrationTo   *time.Time
	SortBy           string
	SortOrder        string
	Page
}

// ParticipantRecord is one participant of a completed registration together
// with its training, certificate and review state.
type ParticipantRecord struct {
	ID                uint       `json:"ID"`
	ParticipantCode   string     `json:"registration_participant_id"`
	UserID            string     `json:"user_id"`
	FullName          string     `json:"fullname"`
	Email             string     `json:"email"`
	AttendanceStatus  *bool      `json:"attendance_status"`
	HasCertificate    bool       `json:"has_certificate"`
	RegistrationID    uint       `json:"registration_ref"`
	RegistrationCode  string     `json:"registration_id"`
	Status            int        `json:"status"`
	RegistrationDate  time.Time  `json:"registration_date"`
	TrainingDate      time.Time  `json:"training_date"`
	TrainingID        uint       `json:"training_id"`
	TrainingName      string     `json:"training_name"`
	CertificateID     *uint      `json:"certificate_id"`
	CertificateNumber *string    `json:"certificate_number"`
	IssuedDate        *time.Time `json:"issued_date"`
	ExpiredDate       *time.Time `json:"expired_date"`
	HasReview         bool       `json:"has_review"`
}

type GraduationStat struct {
	TrainingID        uint   `json:"training_id"`
	TrainingName      string `json:"training_name"`
	TotalGraduates    int64  `json:"total_graduates"`
	TotalParticipants int64  `json:"total_participants"`
}

var participantSortFields = map[string]string{
	"fullname":                    "u.full_name",
	"registration_participant_id": "rp.code",
	"registration_date":           "r.registration_date",
	"training_date":               "r.training_date",
	"training_name":               "t.name",
}

const participantColumns = `rp.id AS id, rp.code AS participant_code, rp.user_id AS user_id,
	u.full_name AS full_name, u.email AS email,
	rp.attendance_status AS attendance_status, rp.has_certificate AS has_certificate,
	r.id AS registration_id, r.code AS registration_code, r.status AS status,
	r.registration_date AS registration_date, r.training_date AS training_date,
	t.id AS training_id, t.name AS training_name,
	c.id AS certificate_id, c.number AS certificate_number,
	c.issued_date AS issued_date, c.expired_date AS expired_date,
	EXISTS (SELECT 1 FROM review v WHERE v.registration_participant_id = rp.id AND v.deleted_at IS NULL) AS has_review`

// Attendance records whether participants of completed registrations
// attended, issuing or revoking their certificates accordingly.
type Attendance struct {
	db      *gorm.DB
	certs   *Certificates
	metrics *metrics.Metrics
}

func NewAttendance(db *gorm.DB, certs *Certificates, m *metrics.Metrics) *Attendance {
	return &Attendance{db: db, certs: certs, metrics: m}
}

// Set marks one participant. attended=true issues a certificate and fails if
// one exists; attended=false revokes any certificate.
func (s *Attendance) Set(ctx context.Context, participantID uint, attended bool) (*AttendanceResult, error) {
	var (
		result  AttendanceResult
		events  []models.CertificateIssued
		touched uint
	)
	err := operation(ctx, s.metrics, "attendance.set", func(ctx context.Context) error {
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var p models.RegistrationParticipant
			if err := tx.Preload("Registration").First(&p, participantID).Error; err != nil {
				return notFound(err, "Participant not found")
			}
			if p.Registration == nil || p.Registration.Status != models.StatusCompleted {
				return errs.Precondition("Attendance can only be set for completed registrations")
			}
			touched = p.Registration.TrainingID

			var existing []models.Certificate
			if err := tx.Where("registration_participant_id = ?", p.ID).Find(&existing).Error; err != nil {
				return err
			}
			if attended && len(existing) > 0 {
				return errs.Conflict("Certificate already exists for this participant")
			}
			for i := range existing {
				if err := s.certs.revokeInTx(tx, &existing[i]); err != nil {
					return err
				}
				id := existing[i].ID
				result.DeletedCertificate = &id
			}

			err := tx.Model(&models.RegistrationParticipant{}).
				Where("id = ?", p.ID).
				UpdateColumn("attendance_status", attended).Error
			if err != nil {
				return err
			}

			if attended {
				cert, ev, err := s.certs.issueInTx(tx, p.ID, s.certs.ids.Now())
				if err != nil {
					return err
				}
				result.Certificate = cert
				events = append(events, *ev)
			}

			if err := tx.First(&p, p.ID).Error; err != nil {
				return err
			}
			p.Registration = nil
			result.Participant = &p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if result.DeletedCertificate != nil {
		s.metrics.RevokedCertificates(1)
	}
	s.certs.afterIssue(ctx, events, touched)
	if result.Certificate != nil {
		s.certs.decorate(result.Certificate)
	}
	return &result, nil
}

// SetBulk applies Set to every id in one transaction. Any missing participant,
// non-completed registration or, for attended=true, existing certificate fails
// the whole batch.
func (s *Attendance) SetBulk(ctx context.Context, ids []uint, attended bool) (*BulkAttendanceResult, error) {
	result := BulkAttendanceResult{
		GeneratedCertificates: []models.Certificate{},
		DeletedCertificates:   []uint{},
	}
	var (
		events  []models.CertificateIssued
		touched []uint
	)
	err := operation(ctx, s.metrics, "attendance.set_bulk", func(ctx context.Context) error {
		ids = dedupe(ids)
		if len(ids) == 0 {
			return errs.Validation("registration_participant_ids must not be empty")
		}
		return inTx(ctx, s.db, func(tx *gorm.DB) error {
			var participants []models.RegistrationParticipant
			if err := tx.Preload("Registration").Where("id IN ?", ids).Order("id").Find(&participants).Error; err != nil {
				return err
			}
			if missing := missingIDs(ids, participants); len(missing) > 0 {
				return errs.NotFound(fmt.Sprintf("Participant not found: %s", joinIDs(missing)))
			}

			trainings := make(map[uint]bool)
			for _, p := range participants {
				if p.Registration == nil || p.Registration.Status != models.StatusCompleted {
					return errs.Precondition(fmt.Sprintf("Participant %s does not belong to a completed registration", p.Code))
				}
				trainings[p.Registration.TrainingID] = true
			}
			for id := range trainings {
				touched = append(touched, id)
			}

			var existing []models.Certificate
			if err := tx.Where("registration_participant_id IN ?", ids).Find(&existing).Error; err != nil {
				return err
			}
			if attended && len(existing) > 0 {
				return errs.Conflict(fmt.Sprintf("Certificate already exists for participant id %d", existing[0].RegistrationParticipantID))
			}
			for i := range existing {
				if err := s.certs.revokeInTx(tx, &existing[i]); err != nil {
					return err
				}
				result.DeletedCertificates = append(result.DeletedCertificates, existing[i].ID)
			}

			res := tx.Model(&models.RegistrationParticipant{}).Where("id IN ?", ids).UpdateColumn("attendance_status", attended)
			if res.Error != nil {
				return res.Error
			}
			result.Updated = len(ids)

			if attended {
				issued := s.certs.ids.Now()
				for _, p := range participants {
					cert, ev, err := s.certs.issueInTx(tx, p.ID, issued)
					if err != nil {
						return err
					}
					result.GeneratedCertificates = append(result.GeneratedCertificates, *cert)
					events = append(events, *ev)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RevokedCertificates(len(result.DeletedCertificates))
	s.certs.afterIssue(ctx, events, touched...)
	for i := range result.GeneratedCertificates {
		s.certs.decorate(&result.GeneratedCertificates[i])
	}
	return &result, nil
}

// CompletedParticipants lists participants of completed registrations.
func (s *Attendance) CompletedParticipants(ctx context.Context, f ParticipantFilter) ([]ParticipantRecord, error) {
	q := s.participantQuery(ctx).Where("r.status = ?", models.StatusCompleted)

	switch f.AttendanceStatus {
	case "true", "false":
		q = q.Where("rp.attendance_status = ?", f.AttendanceStatus == "true")
	case "null":
		q = q.Where("rp.attendance_status IS NULL")
	case "":
	default:
		return nil, errs.Validation("attendance_status must be true, false or null")
	}
	if f.HasCertificate != nil {
		q = q.Where("rp.has_certificate = ?", *f.HasCertificate)
	}
	switch f.Mode {
	case ModeOnProgress:
		q = q.Where("(rp.attendance_status IS NULL OR (rp.attendance_status = ? AND rp.has_certificate = ?))", true, false)
	case ModeCompleted:
		q = q.Where("(rp.attendance_status = ? OR (rp.attendance_status = ? AND rp.has_certificate = ?))", false, true, true)
	case "":
	default:
		return nil, errs.Validation("mode must be onprogress or completed")
	}
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		q = q.Where("(LOWER(u.full_name) LIKE ? OR LOWER(rp.code) LIKE ? OR LOWER(t.name) LIKE ?)", p, p, p)
	}
	if f.RegistrationFrom != nil {
		q = q.Where("r.registration_date >= ?", *f.RegistrationFrom)
	}
	if f.RegistrationTo != nil {
		q = q.Where("r.registration_date <= ?", *f.RegistrationTo)
	}
	if f.TrainingDateFrom != nil {
		q = q.Where("r.training_date >= ?", *f.TrainingDateFrom)
	}
	if f.TrainingDateTo != nil {
		q = q.Where("r.training_date <= ?", *f.TrainingDateTo)
	}

	var out []ParticipantRecord
	order := orderClause(participantSortFields, f.SortBy, f.SortOrder, "r.training_date")
	if err := f.Page.apply(q).Order(order).Scan(&out).Error; err != nil {
		return nil, errs.Storage(err)
	}
	return out, nil
}

// UserHistory lists every enrollment of a user, newest training first.
func (s *Attendance) UserHistory(ctx context.Context, userID string, status *models.RegistrationStatus) ([]ParticipantRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.Validation("user_id is required")
	}
	q := s.participantQuery(ctx).Where("rp.user_id = ?", userID)
	if status != nil {
		if !status.Valid() {
			return nil, errs.Validation("Invalid status value")
		}
		q = q.Where("r.status = ?", *status)
	}
	var out []ParticipantRecord
	if err := q.Order("r.training_date DESC").Scan(&out).Error; err != nil {
		return nil, errs.Storage(err)
	}
	return out, nil
}

// GraduationStats reports graduates and participants of completed
// registrations per training.
func (s *Attendance) GraduationStats(ctx context.Context) ([]GraduationStat, error) {
	var out []GraduationStat
	err := s.db.WithContext(ctx).
		Table("registration_participant AS rp").
		Select(`t.id AS training_id, t.name AS training_name,
			SUM(CASE WHEN rp.has_certificate = ? THEN 1 ELSE 0 END) AS total_graduates,
			COUNT(*) AS total_participants`, true).
		Joins("JOIN registration r ON r.id = rp.registration_id AND r.deleted_at IS NULL").
		Joins("JOIN training t ON t.id = r.training_id").
		Where("rp.deleted_at IS NULL AND r.status = ?", models.StatusCompleted).
		Group("t.id, t.name").
		Order("total_graduates DESC, t.id").
		Scan(&out).Error
	if err != nil {
		return nil, errs.Storage(err)
	}
	return out, nil
}

func (s *Attendance) participantQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("registration_participant AS rp").
		Select(participantColumns).
		Joins("JOIN registration r ON r.id = rp.registration_id AND r.deleted_at IS NULL").
		Joins("JOIN training t ON t.id = r.training_id").
		Joins("LEFT JOIN users u ON u.id = rp.user_id").
		Joins("LEFT JOIN certificate c ON c.registration_participant_id = rp.id").
		Where("rp.deleted_at IS NULL")
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(want []uint, found []models.RegistrationParticipant) []uint {
	have := make(map[uint]bool, len(found))
	for _, p := range found {
		have[p.ID] = true
	}
	var missing []uint
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
