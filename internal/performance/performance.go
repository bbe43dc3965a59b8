// Package performance computes personal records and progress summaries
// from a member's workout logs. Everything here is pure aggregation over
// slices; no I/O and no repository access.
package performance

import (
	"sort"
	"time"

	"mkhwan/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trend classifies recent progress direction.
type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

// trendThresholdPercent is the band around zero inside which a change
// still counts as STABLE.
const trendThresholdPercent = 5.0

// HistoryPoint is one observation of an exercise's best weight on a day.
type HistoryPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

// ExerciseProgress summarizes a member's record on one exercise.
type ExerciseProgress struct {
	ExerciseID     primitive.ObjectID    `json:"exerciseId"`
	ExerciseTitle  string                `json:"exerciseTitle"`
	Classification domain.Classification `json:"classification,omitempty"`
	ValueType      domain.WorkoutValueType `json:"valueType,omitempty"`
	CurrentPR      float64               `json:"currentPr"`
	GrowthRate     float64               `json:"growthRate"` // Percent, first vs last entry
	History        []HistoryPoint        `json:"history"`
}

// GrowthTrend is the classified direction of a trailing window.
type GrowthTrend struct {
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"changePercent"`
}

// CategoryPR is the best recorded value within one classification bucket.
// Value is kilograms for weight buckets and seconds for time buckets.
type CategoryPR struct {
	Classification domain.Classification `json:"classification"`
	ExerciseTitle  string                `json:"exerciseTitle"`
	Value          float64               `json:"value"`
	Achieved       time.Time             `json:"achieved"`
}

// ExtractPRs groups logs by exercise and computes, per exercise, the
// current PR (max recorded weight), the full chronological history, and
// the overall growth rate. Logs without an exercise reference are skipped.
// The exercises map supplies title/classification metadata and may be
// incomplete; missing entries just leave those fields empty.
func ExtractPRs(logs []domain.WorkoutLog, exercises map[primitive.ObjectID]domain.Exercise) []ExerciseProgress {
	byExercise := make(map[primitive.ObjectID][]domain.WorkoutLog)
	var order []primitive.ObjectID
	for _, log := range logs {
		if log.ExerciseID == nil {
			continue
		}
		id := *log.ExerciseID
		if _, seen := byExercise[id]; !seen {
			order = append(order, id)
		}
		byExercise[id] = append(byExercise[id], log)
	}

	progress := make([]ExerciseProgress, 0, len(order))
	for _, id := range order {
		exerciseLogs := byExercise[id]
		sort.SliceStable(exerciseLogs, func(i, j int) bool {
			return exerciseLogs[i].LogDate.Before(exerciseLogs[j].LogDate)
		})

		history := make([]HistoryPoint, len(exerciseLogs))
		var pr float64
		for i, log := range exerciseLogs {
			history[i] = HistoryPoint{Date: log.LogDate, Weight: log.MaxWeight}
			if log.MaxWeight > pr {
				pr = log.MaxWeight
			}
		}

		entry := ExerciseProgress{
			ExerciseID: id,
			CurrentPR:  pr,
			GrowthRate: CalculateGrowthRate(history),
			History:    history,
		}
		if ex, ok := exercises[id]; ok {
			entry.ExerciseTitle = ex.Title
			entry.Classification = ex.Classification
			entry.ValueType = ex.ValueType
		}
		progress = append(progress, entry)
	}
	return progress
}

// CalculateGrowthRate returns the percent change between the first and
// last history entries. Empty history or a zero first entry yields 0,
// guarding the division.
func CalculateGrowthRate(history []HistoryPoint) float64 {
	if len(history) == 0 {
		return 0
	}
	first := history[0].Weight
	last := history[len(history)-1].Weight
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// RecentGrowthTrend filters history to a trailing window of months and
// classifies the direction of change. The window covers the current
// calendar month plus the preceding months-1 full months, so its edge does
// not drift with the day of month. Fewer than two points in the window
// yields STABLE with 0% change.
func RecentGrowthTrend(history []HistoryPoint, months int) GrowthTrend {
	return recentGrowthTrend(time.Now().UTC(), history, months)
}

func recentGrowthTrend(now time.Time, history []HistoryPoint, months int) GrowthTrend {
	cutoff := monthStart(now).AddDate(0, -(months - 1), 0)

	var window []HistoryPoint
	for _, point := range history {
		if !point.Date.Before(cutoff) {
			window = append(window, point)
		}
	}
	if len(window) < 2 {
		return GrowthTrend{Trend: TrendStable, ChangePercent: 0}
	}

	change := CalculateGrowthRate(window)
	switch {
	case change > trendThresholdPercent:
		return GrowthTrend{Trend: TrendUp, ChangePercent: change}
	case change < -trendThresholdPercent:
		return GrowthTrend{Trend: TrendDown, ChangePercent: change}
	default:
		return GrowthTrend{Trend: TrendStable, ChangePercent: change}
	}
}

// bigThreeClasses are the three main lifts.
var bigThreeClasses = []domain.Classification{
	domain.ClassSquat,
	domain.ClassBench,
	domain.ClassDeadlift,
}

// hyroxClasses are the Hyrox race stations.
var hyroxClasses = []domain.Classification{
	domain.ClassRun,
	domain.ClassSkiErg,
	domain.ClassSledPush,
	domain.ClassSledPull,
	domain.ClassBurpee,
	domain.ClassRow,
	domain.ClassFarmers,
	domain.ClassLunge,
	domain.ClassWallBall,
}

// BigThreePRs buckets progress into squat/bench/deadlift by the exercise's
// classification tag and picks the heaviest PR per bucket. Buckets with no
// logged exercise are absent from the result.
func BigThreePRs(logs []domain.WorkoutLog, exercises map[primitive.ObjectID]domain.Exercise) map[domain.Classification]CategoryPR {
	return bestByClassification(logs, exercises, bigThreeClasses)
}

// HyroxPRs buckets progress into the Hyrox stations. Time-measured
// exercises take the fastest (minimum) duration; everything else takes
// the heaviest weight, matching BigThreePRs.
func HyroxPRs(logs []domain.WorkoutLog, exercises map[primitive.ObjectID]domain.Exercise) map[domain.Classification]CategoryPR {
	return bestByClassification(logs, exercises, hyroxClasses)
}

func bestByClassification(
	logs []domain.WorkoutLog,
	exercises map[primitive.ObjectID]domain.Exercise,
	classes []domain.Classification,
) map[domain.Classification]CategoryPR {
	wanted := make(map[domain.Classification]bool, len(classes))
	for _, class := range classes {
		wanted[class] = true
	}

	best := make(map[domain.Classification]CategoryPR)
	for _, log := range logs {
		if log.ExerciseID == nil {
			continue
		}
		ex, ok := exercises[*log.ExerciseID]
		if !ok || !wanted[ex.Classification] {
			continue
		}

		timeBased := ex.ValueType == domain.ValueTime
		var value float64
		if timeBased {
			if log.TotalDuration <= 0 {
				continue
			}
			value = float64(log.TotalDuration)
		} else {
			if log.MaxWeight <= 0 {
				continue
			}
			value = log.MaxWeight
		}

		current, exists := best[ex.Classification]
		better := !exists
		if exists {
			if timeBased {
				better = value < current.Value
			} else {
				better = value > current.Value
			}
		}
		if better {
			best[ex.Classification] = CategoryPR{
				Classification: ex.Classification,
				ExerciseTitle:  ex.Title,
				Value:          value,
				Achieved:       log.LogDate,
			}
		}
	}
	return best
}

// IntensityStats counts logs per self-reported intensity.
func IntensityStats(logs []domain.WorkoutLog) map[domain.Intensity]int {
	stats := make(map[domain.Intensity]int)
	for _, log := range logs {
		stats[log.Intensity]++
	}
	return stats
}

// MonthlyFrequency buckets logs by calendar month over the trailing
// number of months. Keys are "YYYY-MM"; months without logs are present
// with a zero count so charts render a continuous axis.
func MonthlyFrequency(logs []domain.WorkoutLog, months int) map[string]int {
	return monthlyFrequency(time.Now().UTC(), logs, months)
}

func monthlyFrequency(now time.Time, logs []domain.WorkoutLog, months int) map[string]int {
	if months <= 0 {
		return map[string]int{}
	}

	// Step from the first of the month. Stepping from the reference date
	// itself normalizes month-end dates into a neighboring month (Aug 31
	// minus two months is Jul 1), double-keying some buckets and never
	// creating others.
	start := monthStart(now)
	freq := make(map[string]int, months)
	for i := 0; i < months; i++ {
		freq[start.AddDate(0, -i, 0).Format("2006-01")] = 0
	}

	cutoff := start.AddDate(0, -(months - 1), 0)
	for _, log := range logs {
		if log.LogDate.Before(cutoff) {
			continue
		}
		key := log.LogDate.Format("2006-01")
		if _, tracked := freq[key]; tracked {
			freq[key]++
		}
	}
	return freq
}

// monthStart truncates t to the first instant of its calendar month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
