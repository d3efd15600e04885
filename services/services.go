// Package services holds the enrollment lifecycle: catalog, registrations,
// attendance, certificates and reviews. Every mutating operation runs in a
// single database transaction and returns errs-typed errors.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"edutrack/config"
	"edutrack/errs"
	"edutrack/metrics"
	"edutrack/tracing"
	"edutrack/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Settings are the policy knobs shared by the services.
type Settings struct {
	EnforceCatalogPrice bool
	ValidityUnit        string
	Location            *time.Location
	CertificateBaseURL  string
	Brand               string
}

func NewSettings(cfg *config.Config) Settings {
	unit := cfg.CertValidityUnit
	if !utils.ValidUnit(unit) {
		log.Warn().Str("unit", unit).Msg("unknown CERT_VALIDITY_UNIT, using months")
		unit = utils.UnitMonths
	}
	return Settings{
		EnforceCatalogPrice: cfg.EnforceCatalogPrice,
		ValidityUnit:        unit,
		Location:            utils.FixedZone(cfg.TimezoneOffsetHours),
		CertificateBaseURL:  cfg.CertificateBaseURL,
		Brand:               cfg.EmailSenderName,
	}
}

// operation runs fn inside a span, records its outcome and logs unexpected
// storage failures with their cause.
func operation(ctx context.Context, m *metrics.Metrics, name string, fn func(ctx context.Context) error) error {
	started := time.Now()
	ctx, span := tracing.Start(ctx, name)
	err := fn(ctx)
	tracing.End(span, err)

	outcome := "ok"
	if err != nil {
		outcome = errs.KindOf(err).String()
	}
	m.Observe(name, outcome, time.Since(started))

	if err != nil && !isRuleViolation(err) {
		component, _, _ := strings.Cut(name, ".")
		log.Error().Str("component", component).Str("operation", name).Err(err).Msg("operation failed")
	}
	return err
}

func isRuleViolation(err error) bool {
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindPrecondition, errs.KindConflict, errs.KindNotFound:
		return true
	}
	return false
}

// inTx runs fn in a transaction on db. Any error rolls the transaction back;
// typed errors keep their kind and everything else becomes a storage error.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return errs.Storage(db.WithContext(ctx).Transaction(fn))
}

// notFound converts gorm.ErrRecordNotFound into a NotFound error with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(msg)
	}
	return errs.Storage(err)
}

// conflictOnDuplicate converts a unique violation into a Conflict error with msg.
func conflictOnDuplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict(msg)
	}
	return errs.Storage(err)
}

func likePattern(keyword string) string {
	return "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
}

// orderClause resolves a caller-supplied sort key through an allow list.
func orderClause(allowed map[string]string, sortBy, sortOrder, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = fallback
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Page bounds a list query. Zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
