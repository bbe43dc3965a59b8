package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutFormat describes how a routine block is performed and scored.
type WorkoutFormat string

const (
	FormatStrength WorkoutFormat = "STRENGTH"
	FormatForTime  WorkoutFormat = "FOR_TIME"
	FormatAMRAP    WorkoutFormat = "AMRAP"
	FormatEMOM     WorkoutFormat = "EMOM"
	FormatCustom   WorkoutFormat = "CUSTOM"
)

// ValidWorkoutFormat reports whether f is one of the known formats.
func ValidWorkoutFormat(f WorkoutFormat) bool {
	switch f {
	case FormatStrength, FormatForTime, FormatAMRAP, FormatEMOM, FormatCustom:
		return true
	}
	return false
}

// RoutineBlock is a named, reusable ordered list of exercises. Items are
// embedded in the block document; their array position is the display order.
type RoutineBlock struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID            primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name               string             `bson:"name" json:"name"`
	Format             WorkoutFormat      `bson:"format" json:"format"`
	TargetValue        string             `bson:"targetValue,omitempty" json:"targetValue,omitempty"` // e.g., "20 min cap", "5 rounds"
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	LeaderboardEnabled bool               `bson:"leaderboardEnabled" json:"leaderboardEnabled"`
	Items              []RoutineItem      `bson:"items" json:"items"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RoutineItem is one exercise entry within a routine block, together with
// the coach-specified target recommendation. The recommendation shape
// varies by workout format, so it is a loose key-value map rather than a
// rigid record; only the keys required by the format's template are
// checked at the boundary.
type RoutineItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID     primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Recommendation map[string]any     `bson:"recommendation,omitempty" json:"recommendation,omitempty"`
}

// recommendationTemplates lists the keys a recommendation must carry for
// each workout format. Presence is checked, not value types.
var recommendationTemplates = map[WorkoutFormat][]string{
	FormatStrength: {"sets", "reps"},
	FormatForTime:  {"rounds"},
	FormatAMRAP:    {"reps"},
	FormatEMOM:     {"intervalSeconds", "reps"},
	FormatCustom:   {},
}

// ValidateRecommendation checks that rec carries every key the format's
// template requires. A nil rec is only valid for formats with no
// required keys.
func ValidateRecommendation(format WorkoutFormat, rec map[string]any) error {
	required, ok := recommendationTemplates[format]
	if !ok {
		return fmt.Errorf("unknown workout format %q", format)
	}
	for _, key := range required {
		if _, present := rec[key]; !present {
			return fmt.Errorf("recommendation is missing required field %q for format %s", key, format)
		}
	}
	return nil
}

// StripEmptyRecommendation drops nil and empty-string values before
// persisting, so optional fields the client left blank never hit storage.
func StripEmptyRecommendation(rec map[string]any) map[string]any {
	if rec == nil {
		return nil
	}
	cleaned := make(map[string]any, len(rec))
	for key, value := range rec {
		if value == nil {
			continue
		}
		if s, isStr := value.(string); isStr && s == "" {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}
