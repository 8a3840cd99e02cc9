package spaced_repetition

import (
	"strings"
	"time"

	"github.com/example/linguabot/pkg/models"
)

// Grade is the user's three-level answer to a review prompt
type Grade string

const (
	GradeHard Grade = "hard"
	GradeGood Grade = "good"
	GradeEasy Grade = "easy"
)

// ParseGrade maps a grade name to a Grade. Unknown names are returned as-is
// and handled by Process as a reset.
func ParseGrade(s string) Grade {
	return Grade(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether g is one of the three recognized grades
func (g Grade) Valid() bool {
	switch g {
	case GradeHard, GradeGood, GradeEasy:
		return true
	}
	return false
}

// ThreeLevel implements the three-button interval policy
type ThreeLevel struct {
	// Interval multipliers per grade
	HardMultiplier float64
	GoodMultiplier float64
	EasyMultiplier float64
	// Ease factor deltas per grade
	HardEaseDelta float64
	GoodEaseDelta float64
	EasyEaseDelta float64
	// Lower bound for the ease factor
	MinEaseFactor float64
	// Upper bound for the interval in days
	MaxInterval int
}

// NewThreeLevel returns the policy with its default constants
func NewThreeLevel() *ThreeLevel {
	return &ThreeLevel{
		HardMultiplier: 1.2,
		GoodMultiplier: 2.5,
		EasyMultiplier: 3.5,
		HardEaseDelta:  -0.2,
		GoodEaseDelta:  0.1,
		EasyEaseDelta:  0.3,
		MinEaseFactor:  models.MinEaseFactor,
		MaxInterval:    36500,
	}
}

// Process returns the schedule that follows s after grade g was given at now.
// It does not modify s and performs no I/O.
func (p *ThreeLevel) Process(s models.Schedule, g Grade, now time.Time) models.Schedule {
	next := s

	switch g {
	case GradeHard:
		next.Interval = scale(s.Interval, p.HardMultiplier)
		next.EaseFactor = p.clampEase(s.EaseFactor + p.HardEaseDelta)
	case GradeGood:
		next.Interval = scale(s.Interval, p.GoodMultiplier)
		next.EaseFactor = p.clampEase(s.EaseFactor + p.GoodEaseDelta)
	case GradeEasy:
		next.Interval = scale(s.Interval, p.EasyMultiplier)
		next.EaseFactor = p.clampEase(s.EaseFactor + p.EasyEaseDelta)
	default:
		next.Interval = 1
		next.EaseFactor = p.clampEase(s.EaseFactor)
	}

	// Every grade moves the card at least one day ahead
	if next.Interval < 1 {
		next.Interval = 1
	}
	if p.MaxInterval > 0 && next.Interval > p.MaxInterval {
		next.Interval = p.MaxInterval
	}

	next.Repetitions = s.Repetitions + 1
	next.NextReview = now.AddDate(0, 0, next.Interval)
	return next
}

func (p *ThreeLevel) clampEase(ef float64) float64 {
	if ef < p.MinEaseFactor {
		return p.MinEaseFactor
	}
	return ef
}

// scale multiplies the interval and truncates toward zero
func scale(interval int, multiplier float64) int {
	if interval < 0 {
		interval = 0
	}
	return int(float64(interval) * multiplier)
}

// IsLearned reports whether a schedule counts as learned for progress reporting
func IsLearned(s models.Schedule) bool {
	return s.IsLearned()
}
