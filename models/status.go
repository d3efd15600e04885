package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RegistrationStatus is the lifecycle of a Registration. The numeric values are
// persisted and exposed on the wire.
type RegistrationStatus int

const (
	StatusPending    RegistrationStatus = 1
	StatusApproved   RegistrationStatus = 2
	StatusInProgress RegistrationStatus = 3
	StatusCompleted  RegistrationStatus = 4
	StatusCancelled  RegistrationStatus = 5
)

var statusNames = map[RegistrationStatus]string{
	StatusPending:    "Pending",
	StatusApproved:   "Approved",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

// allowed lists the statuses reachable from each status. Completed may be
// reopened to InProgress and Cancelled may be reinstated to Pending.
var allowed = map[RegistrationStatus][]RegistrationStatus{
	StatusPending:    {StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled},
	StatusApproved:   {StatusPending, StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusApproved, StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusInProgress},
	StatusCancelled:  {StatusPending},
}

func (s RegistrationStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s RegistrationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RegistrationStatus(%d)", int(s))
}

// CanTransitionTo reports whether a registration in s may move to next.
// Re-applying the current status is always allowed.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, candidate := range allowed[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseRegistrationStatus accepts the numeric wire form ("1".."5").
func ParseRegistrationStatus(raw string) (RegistrationStatus, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid status value %q", raw)
	}
	s := RegistrationStatus(n)
	if !s.Valid() {
		return 0, fmt.Errorf("invalid status value %d", n)
	}
	return s, nil
}

// ParseRegistrationStatuses parses a comma separated list such as "1,4".
func ParseRegistrationStatuses(raw string) ([]RegistrationStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("status parameter is required")
	}
	parts := strings.Split(raw, ",")
	out := make([]RegistrationStatus, 0, len(parts))
	for _, p := range parts {
		s, err := ParseRegistrationStatus(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
