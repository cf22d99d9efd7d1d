// Package derive computes read-only views over milestone collections.
// Nothing here is cached; callers recompute on every read.
package derive

import (
	"math"
	"slices"
	"time"

	"github.com/tgienger/milestones/internal/models"
)

// DateLayout is the on-disk format of a milestone due date
const DateLayout = "2006-01-02"

// ParseDueDate parses a YYYY-MM-DD date in loc. Empty or malformed input returns false.
func ParseDueDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ForProject returns the milestones owned by projectID, in collection order
func ForProject(ms []models.Milestone, projectID string) []models.Milestone {
	out := make([]models.Milestone, 0, len(ms))
	for _, m := range ms {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out
}

// SortByDueDate returns a copy sorted by ascending due date.
// Milestones without a usable date go last, keeping their relative order.
func SortByDueDate(ms []models.Milestone) []models.Milestone {
	out := slices.Clone(ms)
	slices.SortStableFunc(out, func(a, b models.Milestone) int {
		at, aok := ParseDueDate(a.DueDate, time.UTC)
		bt, bok := ParseDueDate(b.DueDate, time.UTC)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		return at.Compare(bt)
	})
	return out
}

// CompletionPercentage is the rounded share of completed milestones, 0 for none
func CompletionPercentage(ms []models.Milestone) int {
	if len(ms) == 0 {
		return 0
	}
	done := 0
	for _, m := range ms {
		if m.Status == models.StatusCompleted {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(ms))))
}

// IsOverdue reports whether the due day ended before now's calendar day.
// Empty or malformed dates are never overdue.
func IsOverdue(dueDate string, now time.Time) bool {
	due, ok := ParseDueDate(dueDate, now.Location())
	if !ok {
		return false
	}
	y, mo, d := now.Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// ShowOverdue is IsOverdue with completed milestones suppressed
func ShowOverdue(m models.Milestone, now time.Time) bool {
	return m.Status != models.StatusCompleted && IsOverdue(m.DueDate, now)
}

// CountOverdue counts milestones that would show an overdue marker
func CountOverdue(ms []models.Milestone, now time.Time) int {
	n := 0
	for _, m := range ms {
		if ShowOverdue(m, now) {
			n++
		}
	}
	return n
}

// GroupByStatus partitions ms into one bucket per status, preserving order.
// Every status key is present even when its bucket is empty.
func GroupByStatus(ms []models.Milestone) map[models.Status][]models.Milestone {
	groups := make(map[models.Status][]models.Milestone, len(models.Statuses))
	for _, s := range models.Statuses {
		groups[s] = []models.Milestone{}
	}
	for _, m := range ms {
		groups[m.Status] = append(groups[m.Status], m)
	}
	return groups
}
