package srs

import "time"

const (
	QualityMin = 0
	QualityMax = 5

	EaseFloor           = 1.3
	InitialEase         = 2.5
	InitialIntervalDays = 1
)

// State is the spaced-repetition tuple carried by every word. It is updated
// by Schedule on each grading event; a word is due when NextReviewDate is on
// or before the current date.
type State struct {
	DifficultyLevel int
	NextReviewDate  time.Time
	ReviewCount     int
	EaseFactor      float64
	IntervalDays    int
}

// NewState returns the state a word carries at first sighting: due today,
// one-day interval, default ease.
func NewState(today time.Time) State {
	return State{
		DifficultyLevel: 1,
		NextReviewDate:  Date(today),
		ReviewCount:     0,
		EaseFactor:      InitialEase,
		IntervalDays:    InitialIntervalDays,
	}
}

func ValidQuality(quality int) bool {
	return quality >= QualityMin && quality <= QualityMax
}

// Schedule computes the state after one grading event. quality must already
// be validated against [QualityMin, QualityMax].
//
// A pass (quality >= 3) walks the 1 -> 6 -> interval*ease bootstrap curve and
// adjusts the ease factor, floored at EaseFloor. A fail resets the interval
// to one day and pulls the pre-increment count back by one, so a word with
// ReviewCount=5 ends the failed review still at 5 after the increment below.
// The ease factor is untouched on failure.
func Schedule(state State, quality int, today time.Time) State {
	next := state

	if quality >= 3 {
		switch state.ReviewCount {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(float64(state.IntervalDays) * state.EaseFactor)
		}
		next.EaseFactor = floorEase(state.EaseFactor + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02)))
	} else {
		next.IntervalDays = 1
		next.ReviewCount = maxInt(0, state.ReviewCount-1)
	}

	next.ReviewCount++
	next.IntervalDays = maxInt(1, next.IntervalDays)
	next.NextReviewDate = Date(today).AddDate(0, 0, next.IntervalDays)
	return next
}

// Due reports whether the state is due for review on the given date.
func (s State) Due(today time.Time) bool {
	return !s.NextReviewDate.After(Date(today))
}

// Date truncates a timestamp to midnight UTC. Review dates are compared at
// calendar-day granularity.
func Date(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func floorEase(ease float64) float64 {
	if ease < EaseFloor {
		return EaseFloor
	}
	return ease
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
