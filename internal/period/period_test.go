package period

import (
	"testing"
	"time"

	"funbudget/internal/models"
	"funbudget/internal/testutil"
)

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func TestCompute(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		w, err := Compute(models.PeriodTypeDaily, date(2024, time.January, 31, 14, 30, 0))
		testutil.AssertNoError(t, err)

		wantStart := date(2024, time.January, 31, 0, 0, 0)
		wantEnd := date(2024, time.February, 1, 0, 0, 0).Add(-time.Nanosecond)
		if !w.Start.Equal(wantStart) {
			t.Errorf("expected start %v, got %v", wantStart, w.Start)
		}
		if !w.End.Equal(wantEnd) {
			t.Errorf("expected end %v, got %v", wantEnd, w.End)
		}
	})

	t.Run("monthly", func(t *testing.T) {
		w, err := Compute(models.PeriodTypeMonthly, date(2024, time.February, 15, 9, 0, 0))
		testutil.AssertNoError(t, err)

		if !w.Start.Equal(date(2024, time.February, 1, 0, 0, 0)) {
			t.Errorf("unexpected start %v", w.Start)
		}
		// 2024 is a leap year
		if !w.End.Equal(date(2024, time.March, 1, 0, 0, 0).Add(-time.Nanosecond)) {
			t.Errorf("unexpected end %v", w.End)
		}
	})

	t.Run("yearly", func(t *testing.T) {
		w, err := Compute(models.PeriodTypeYearly, date(2024, time.July, 4, 12, 0, 0))
		testutil.AssertNoError(t, err)

		if !w.Start.Equal(date(2024, time.January, 1, 0, 0, 0)) {
			t.Errorf("unexpected start %v", w.Start)
		}
		if !w.End.Equal(date(2025, time.January, 1, 0, 0, 0).Add(-time.Nanosecond)) {
			t.Errorf("unexpected end %v", w.End)
		}
	})

	t.Run("anchor_inside_window", func(t *testing.T) {
		anchor := date(2024, time.June, 10, 23, 59, 59)
		for _, pt := range []models.PeriodType{models.PeriodTypeDaily, models.PeriodTypeMonthly, models.PeriodTypeYearly} {
			w, err := Compute(pt, anchor)
			testutil.AssertNoError(t, err)
			if anchor.Before(w.Start) || anchor.After(w.End) {
				t.Errorf("%s: anchor %v outside window [%v, %v]", pt, anchor, w.Start, w.End)
			}
		}
	})

	t.Run("invalid_period_type", func(t *testing.T) {
		_, err := Compute(models.PeriodType("WEEKLY"), date(2024, time.January, 1, 0, 0, 0))
		testutil.AssertAppError(t, err, "INVALID_PERIOD_TYPE")
	})
}

func TestNext(t *testing.T) {
	t.Run("daily_follows_immediately", func(t *testing.T) {
		w, err := Compute(models.PeriodTypeDaily, date(2024, time.January, 31, 8, 0, 0))
		testutil.AssertNoError(t, err)

		next, err := Next(models.PeriodTypeDaily, w)
		testutil.AssertNoError(t, err)

		if !next.Start.Equal(date(2024, time.February, 1, 0, 0, 0)) {
			t.Errorf("expected next start 2024-02-01T00:00:00, got %v", next.Start)
		}
	})

	t.Run("tolerates_truncated_end", func(t *testing.T) {
		// A window read back from a store that keeps microseconds: the
		// end is a nanosecond short of the computed one. Advancing from
		// the start keeps the next window correct anyway.
		w := Window{
			Start: date(2025, time.March, 1, 0, 0, 0),
			End:   time.Date(2025, time.March, 31, 23, 59, 59, 999999000, time.UTC),
		}
		next, err := Next(models.PeriodTypeMonthly, w)
		testutil.AssertNoError(t, err)

		if !next.Start.Equal(date(2025, time.April, 1, 0, 0, 0)) {
			t.Errorf("expected next start 2025-04-01, got %v", next.Start)
		}
	})

	t.Run("invalid_period_type", func(t *testing.T) {
		_, err := Next(models.PeriodType("WEEKLY"), Window{})
		testutil.AssertAppError(t, err, "INVALID_PERIOD_TYPE")
	})

	t.Run("monthly_year_boundary", func(t *testing.T) {
		w, err := Compute(models.PeriodTypeMonthly, date(2023, time.December, 20, 0, 0, 0))
		testutil.AssertNoError(t, err)

		next, err := Next(models.PeriodTypeMonthly, w)
		testutil.AssertNoError(t, err)

		if !next.Start.Equal(date(2024, time.January, 1, 0, 0, 0)) {
			t.Errorf("expected next start 2024-01-01, got %v", next.Start)
		}
	})
}
