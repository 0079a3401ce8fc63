package models

import (
	"time"

	id "amparo/pkg/domain"
)

// PeriodStatus is the administrative state of a validity period.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// Period is an administratively configured date window governing new-claim
// admission. Edited by administrators; read-only to the claims core.
type Period struct {
	ID        id.PeriodID
	Year      int
	Status    PeriodStatus
	StartDate time.Time
	EndDate   time.Time
}

// Contains reports whether date falls inside the inclusive [start, end]
// window, comparing by calendar day.
func (p *Period) Contains(date time.Time) bool {
	day := truncateToDay(date)
	return !day.Before(truncateToDay(p.StartDate)) && !day.After(truncateToDay(p.EndDate))
}

// IsOpen reports whether the period admits new claims.
func (p *Period) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
