package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Display code prefixes.
const (
	PrefixTraining     = "TRNG"
	PrefixRegistration = "REGT"
	PrefixParticipant  = "REGP"
	PrefixCertNumber   = "CERTNO"
	PrefixReview       = "REVW"
	PrefixUserCert     = "UCRT"
)

// IDGenerator issues human readable display codes of the form
// PREFIX-YYYYMMDDHHMM-XXXXXX. The timestamp is rendered in a fixed offset zone
// and the suffix is the first six hex characters of a random UUID, upper cased.
// Codes are not primary keys; uniqueness is enforced by the database.
type IDGenerator struct {
	loc *time.Location
	now func() time.Time
}

func NewIDGenerator(offsetHours int) *IDGenerator {
	return &IDGenerator{
		loc: FixedZone(offsetHours),
		now: time.Now,
	}
}

// WithClock returns a copy of g that reads time from now.
func (g *IDGenerator) WithClock(now func() time.Time) *IDGenerator {
	cp := *g
	cp.now = now
	return &cp
}

func (g *IDGenerator) New(prefix string) string {
	stamp := g.now().In(g.loc).Format("200601021504")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, stamp, suffix)
}

// Now returns the current time in the generator's zone.
func (g *IDGenerator) Now() time.Time {
	return g.now().In(g.loc)
}

// FixedZone returns a zone named after its UTC offset, e.g. "UTC+7".
func FixedZone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return time.FixedZone(name, offsetHours*60*60)
}
