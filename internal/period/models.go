// Package period models reporting periods: the administrative windows within
// which institutions may finalize approval decisions for a publishing year.
package period

import "time"

// Status is the lifecycle state of a reporting period relative to a point in
// time. Only StatusOpen permits approval mutation.
type Status string

const (
	// StatusNoPeriod means no period is configured for the year.
	StatusNoPeriod Status = "no_period"
	// StatusNotOpened means the period exists but its window has not started.
	StatusNotOpened Status = "not_opened"
	// StatusOpen means the window is open for approval work.
	StatusOpen Status = "open"
	// StatusClosed means the reporting deadline has passed.
	StatusClosed Status = "closed"
)

// Period is one publishing year's reporting window.
type Period struct {
	Year          int       `json:"year"`
	StartDate     time.Time `json:"start_date"`
	ReportingDate time.Time `json:"reporting_date"`
}

// StatusAt derives the window state at a point in time.
func (p Period) StatusAt(now time.Time) Status {
	switch {
	case now.Before(p.StartDate):
		return StatusNotOpened
	case now.After(p.ReportingDate):
		return StatusClosed
	default:
		return StatusOpen
	}
}
