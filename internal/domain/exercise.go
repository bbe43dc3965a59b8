package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutValueType describes which metric an exercise is measured by.
type WorkoutValueType string

const (
	ValueWeight   WorkoutValueType = "WEIGHT"
	ValueReps     WorkoutValueType = "REPS"
	ValueTime     WorkoutValueType = "TIME"
	ValueDistance WorkoutValueType = "DISTANCE"
)

// Classification tags an exercise with a well-known movement so that
// progress can be bucketed without string-matching on free-text titles.
type Classification string

const (
	ClassSquat     Classification = "squat"
	ClassBench     Classification = "bench_press"
	ClassDeadlift  Classification = "deadlift"
	ClassRun       Classification = "run"
	ClassSkiErg    Classification = "ski_erg"
	ClassSledPush  Classification = "sled_push"
	ClassSledPull  Classification = "sled_pull"
	ClassBurpee    Classification = "burpee_broad_jump"
	ClassRow       Classification = "rowing"
	ClassFarmers   Classification = "farmers_carry"
	ClassLunge     Classification = "sandbag_lunge"
	ClassWallBall  Classification = "wall_ball"
	ClassUntagged  Classification = ""
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID        primitive.ObjectID `bson:"coachId" json:"coachId"` // Coach who created/owns this exercise
	Title          string             `bson:"title" json:"title"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"` // e.g., "Barbell", "Machine", "Cardio"
	ValueType      WorkoutValueType   `bson:"valueType" json:"valueType"`
	Classification Classification     `bson:"classification,omitempty" json:"classification,omitempty"`
	MediaKey       string             `bson:"mediaKey,omitempty" json:"-"` // Object key in the media bucket
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// classificationKeywords maps title substrings (English and Korean) to a
// classification. Kept only as a backfill heuristic for exercises created
// without an explicit tag; runtime bucketing always goes through the tag.
var classificationKeywords = []struct {
	class    Classification
	keywords []string
}{
	{ClassBench, []string{"bench", "벤치"}},
	{ClassDeadlift, []string{"deadlift", "데드"}},
	{ClassSquat, []string{"squat", "스쿼트"}},
	{ClassSkiErg, []string{"ski", "스키"}},
	{ClassSledPush, []string{"sled push", "슬레드 푸시"}},
	{ClassSledPull, []string{"sled pull", "슬레드 풀"}},
	{ClassBurpee, []string{"burpee", "버피"}},
	{ClassRow, []string{"row", "로잉"}},
	{ClassFarmers, []string{"farmer", "파머스"}},
	{ClassLunge, []string{"lunge", "런지"}},
	{ClassWallBall, []string{"wall ball", "월볼"}},
	{ClassRun, []string{"run", "러닝", "달리기"}},
}

// ClassifyExerciseName guesses a classification from a free-text title.
// First match wins; unrecognized titles stay untagged.
func ClassifyExerciseName(title string) Classification {
	lower := strings.ToLower(title)
	for _, entry := range classificationKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.class
			}
		}
	}
	return ClassUntagged
}
