package timeparse

import (
	"fmt"
	"time"
)

// Policy selects the increment used to push a past-dated range forward.
type Policy int

const (
	// StepDay assumes the same time on a later day.
	StepDay Policy = iota
	// StepYear assumes the model picked the wrong year for an explicit date.
	StepYear
)

// Iteration caps per policy. Day steps need at most a leap year's worth of
// shifts for any start within the last year; year steps only a handful.
const (
	maxDaySteps  = 400
	maxYearSteps = 10
)

func (p Policy) String() string {
	switch p {
	case StepDay:
		return "day"
	case StepYear:
		return "year"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// EnsureFuture shifts start and end forward together until start is strictly
// after now, preserving the duration end-start exactly. A start already in the
// future is returned unchanged. The loop is capped per policy; exceeding the
// cap returns an error instead of spinning.
func EnsureFuture(start, end, now time.Time, policy Policy) (time.Time, time.Time, error) {
	if start.After(now) {
		return start, end, nil
	}

	duration := end.Sub(start)

	var step func(time.Time) time.Time
	var limit int
	switch policy {
	case StepYear:
		step = func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }
		limit = maxYearSteps
	default:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
		limit = maxDaySteps
	}

	for i := 0; i < limit; i++ {
		start = step(start)
		if start.After(now) {
			return start, start.Add(duration), nil
		}
	}

	return time.Time{}, time.Time{}, fmt.Errorf(
		"could not shift %s into the future with %s steps", start.Format(time.RFC3339), policy)
}
