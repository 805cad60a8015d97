// Package sla computes remediation due dates from the configured
// per-severity timeline table and classifies findings by temporal urgency.
// Every function here is pure: the caller supplies the settings document
// and the reference time, so classification never hides a clock or a
// database read.
package sla

import (
	"fmt"
	"time"

	"github.com/monizb/vmp/models"
)

// Default windows for the derived scheduling queries. The timeline table
// itself is configurable; these secondary windows are not (yet), matching
// the behavior the dashboard has always had.
const (
	DefaultDueSoonWindowDays   = 7
	DefaultRetestOffsetDays    = 30
	DefaultRetestLookaheadDays = 30
)

const (
	MinTimelineDays = 1
	MaxTimelineDays = 365
)

// ValidationError reports a rejected timeline entry, naming the severity
// so the settings UI can point at the offending field.
type ValidationError struct {
	Severity string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("timeline for %s %s", e.Severity, e.Reason)
}

// ComputeDueDate returns discoveredAt plus the configured number of
// calendar days for the severity, or nil when auto-assignment is disabled
// or the severity has no timeline entry. Unknown severities are not an
// error: they simply get no due date.
func ComputeDueDate(settings models.DueDateSettings, severity string, discoveredAt time.Time) *time.Time {
	if !settings.AutoAssignDueDates {
		return nil
	}
	days, ok := settings.DueDateTimelines[severity]
	if !ok || days <= 0 {
		return nil
	}
	due := discoveredAt.AddDate(0, 0, days)
	return &due
}

// exempt reports whether a finding's status takes it out of overdue and
// due-soon classification entirely.
func exempt(status string) bool {
	return status == models.StatusFixed || status == models.StatusClosed
}

// IsOverdue reports whether the finding's due date has passed. Fixed and
// Closed findings are never overdue, and a finding without a due date
// cannot be late.
func IsOverdue(v models.Vulnerability, now time.Time) bool {
	if exempt(v.Status) || v.DueDate == nil {
		return false
	}
	return v.DueDate.Before(now)
}

// IsDueWithinWindow reports whether the due date falls strictly between
// now and now+windowDays. A finding due exactly now is overdue territory,
// not upcoming, so both bounds are exclusive.
func IsDueWithinWindow(v models.Vulnerability, now time.Time, windowDays int) bool {
	if exempt(v.Status) || v.DueDate == nil {
		return false
	}
	end := now.AddDate(0, 0, windowDays)
	return v.DueDate.After(now) && v.DueDate.Before(end)
}

// IsRetestEligible reports whether a fixed finding enters its retest
// window within the lookahead period. The retest is expected
// retestOffsetDays after the resolution date.
func IsRetestEligible(v models.Vulnerability, now time.Time, retestOffsetDays, lookaheadDays int) bool {
	if v.Status != models.StatusFixed || v.ResolvedDate == nil {
		return false
	}
	retestAt := v.ResolvedDate.AddDate(0, 0, retestOffsetDays)
	end := now.AddDate(0, 0, lookaheadDays)
	return retestAt.After(now) && retestAt.Before(end)
}

// ValidateTimelines rejects timeline entries outside [1, 365] days or
// keyed by a severity the platform does not know. The first offending
// entry is reported; map iteration order makes "first" arbitrary, which
// is fine since any single failure rejects the whole update.
func ValidateTimelines(timelines map[string]int) error {
	for severity, days := range timelines {
		if !models.ValidSeverity(severity) {
			return &ValidationError{Severity: severity, Reason: "is not a recognized severity"}
		}
		if days < MinTimelineDays || days > MaxTimelineDays {
			return &ValidationError{
				Severity: severity,
				Reason:   fmt.Sprintf("must be between %d and %d days", MinTimelineDays, MaxTimelineDays),
			}
		}
	}
	return nil
}

// MergeSettings applies a partial update onto existing settings. Timeline
// entries are merged per severity; absent fields keep their current
// values. Callers validate before merging.
func MergeSettings(current models.DueDateSettings, autoAssign *bool, timelines map[string]int) models.DueDateSettings {
	merged := current
	if autoAssign != nil {
		merged.AutoAssignDueDates = *autoAssign
	}
	if len(timelines) > 0 {
		out := make(map[string]int, len(current.DueDateTimelines)+len(timelines))
		for k, v := range current.DueDateTimelines {
			out[k] = v
		}
		for k, v := range timelines {
			out[k] = v
		}
		merged.DueDateTimelines = out
	}
	merged.UpdatedAt = time.Now().UTC()
	return merged
}
