package encouragement

import (
	"math"
	"time"
)

type Category string

const (
	CategoryRelapse     Category = "relapse"
	CategoryEarly       Category = "early"
	CategoryMilestone   Category = "milestone"
	CategoryLongTerm    Category = "longTerm"
	CategoryGoalNear    Category = "goalNear"
	CategoryGoalReached Category = "goalReached"
)

var categories = []Category{
	CategoryRelapse,
	CategoryEarly,
	CategoryMilestone,
	CategoryLongTerm,
	CategoryGoalNear,
	CategoryGoalReached,
}

func (c Category) valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

const Day = 24 * time.Hour

// Goal labels accepted on a drink event.
const (
	GoalOneWeek     = "1 week"
	GoalOneMonth    = "1 month"
	GoalThreeMonths = "3 months"
	GoalSixMonths   = "6 months"
	GoalOneYear     = "1 year"
)

var goalDays = map[string]int{
	GoalOneWeek:     7,
	GoalOneMonth:    30,
	GoalThreeMonths: 90,
	GoalSixMonths:   180,
	GoalOneYear:     365,
}

// GoalLabels lists the goal labels in ascending order of length.
func GoalLabels() []string {
	return []string{GoalOneWeek, GoalOneMonth, GoalThreeMonths, GoalSixMonths, GoalOneYear}
}

// GoalDays maps a goal label to its target day count.
func GoalDays(label string) (int, bool) {
	d, ok := goalDays[label]
	return d, ok
}

// ElapsedDays returns the whole days between since and now, never negative.
func ElapsedDays(since, now time.Time) int {
	diff := now.Sub(since)
	if diff < 0 {
		return 0
	}
	return int(diff / Day)
}

// Classify buckets elapsed days since the last drink. First match wins.
func Classify(elapsedDays int) Category {
	switch {
	case elapsedDays < 1:
		return CategoryRelapse
	case elapsedDays < 7:
		return CategoryEarly
	case elapsedDays < 30:
		return CategoryMilestone
	default:
		return CategoryLongTerm
	}
}

// GoalCategory reports the goal override for elapsedDays, if any.
// A reached goal maps to CategoryGoalReached; a goal within
// max(3, ceil(target*0.1)) days maps to CategoryGoalNear.
func GoalCategory(elapsedDays int, goalLabel string) (Category, bool) {
	target, ok := GoalDays(goalLabel)
	if !ok {
		return "", false
	}
	if elapsedDays >= target {
		return CategoryGoalReached, true
	}
	window := int(math.Ceil(float64(target) * 0.1))
	if window < 3 {
		window = 3
	}
	if target-elapsedDays <= window {
		return CategoryGoalNear, true
	}
	return "", false
}

// ResolveCategory picks the message category for elapsedDays, letting a goal
// override take priority over the plain elapsed-time bucket.
func ResolveCategory(elapsedDays int, goalLabel string) Category {
	if c, ok := GoalCategory(elapsedDays, goalLabel); ok {
		return c
	}
	return Classify(elapsedDays)
}
