// Package period computes budget period boundaries. The functions here
// are pure; anchoring at an explicit instant keeps the rest of the
// period lifecycle deterministic under a fake clock.
package period

import (
	"time"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
)

// Window bounds a single budget period. End is inclusive: the last
// nanosecond of the day, month, or year containing the anchor.
type Window struct {
	Start time.Time
	End   time.Time
}

// Compute returns the period window containing anchor for the given
// period type. The anchor's location is preserved.
func Compute(periodType models.PeriodType, anchor time.Time) (Window, error) {
	var start time.Time

	switch periodType {
	case models.PeriodTypeDaily:
		start = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
		return Window{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
	case models.PeriodTypeMonthly:
		start = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	case models.PeriodTypeYearly:
		start = time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, anchor.Location())
		return Window{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}, nil
	default:
		return Window{}, apperrors.WithMessage(apperrors.ErrInvalidPeriodType, "Unrecognized period type: "+string(periodType))
	}
}

// Next returns the window immediately following w. It advances from the
// start date, not the inclusive end: starts are midnights and survive a
// round-trip through the store unchanged, while a sub-second end read
// back may have been truncated to the store's timestamp precision.
func Next(periodType models.PeriodType, w Window) (Window, error) {
	switch periodType {
	case models.PeriodTypeDaily:
		return Compute(periodType, w.Start.AddDate(0, 0, 1))
	case models.PeriodTypeMonthly:
		return Compute(periodType, w.Start.AddDate(0, 1, 0))
	case models.PeriodTypeYearly:
		return Compute(periodType, w.Start.AddDate(1, 0, 0))
	default:
		return Window{}, apperrors.WithMessage(apperrors.ErrInvalidPeriodType, "Unrecognized period type: "+string(periodType))
	}
}
