package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Intensity is the member's self-reported effort for a workout log.
type Intensity string

const (
	IntensityLow    Intensity = "LOW"
	IntensityMedium Intensity = "MEDIUM"
	IntensityHigh   Intensity = "HIGH"
)

// ValidIntensity reports whether i is one of the known intensities.
func ValidIntensity(i Intensity) bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	}
	return false
}

// WorkoutLog is a member-submitted workout result. When BlueprintID is set
// the log counts as homework for that planning day and becomes reviewable
// by the coach owning the blueprint's program. Content is an opaque
// per-exercise payload (sets, reps, ...) interpreted only for display.
type WorkoutLog struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID  `bson:"userId" json:"userId"`
	BlueprintID      *primitive.ObjectID `bson:"blueprintId,omitempty" json:"blueprintId,omitempty"`
	ExerciseID       *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`
	LogDate          time.Time           `bson:"logDate" json:"logDate"`
	Content          map[string]any      `bson:"content,omitempty" json:"content,omitempty"`
	Intensity        Intensity           `bson:"intensity" json:"intensity"`
	MaxWeight        float64             `bson:"maxWeight" json:"maxWeight"`       // Heaviest single set, kg
	TotalVolume      float64             `bson:"totalVolume" json:"totalVolume"`   // Sum of weight*reps, kg
	TotalDuration    int                 `bson:"totalDuration" json:"totalDuration"` // Seconds
	CoachComment     string              `bson:"coachComment,omitempty" json:"coachComment,omitempty"`
	IsCheckedByCoach bool                `bson:"isCheckedByCoach" json:"isCheckedByCoach"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
