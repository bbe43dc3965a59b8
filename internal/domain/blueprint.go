package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxDaysPerPhase caps how many days a single phase can hold. The planner
// renders a phase as a weekly grid, so this is a UI-driven limit rather
// than a storage constraint.
const MaxDaysPerPhase = 7

// Blueprint is a single (phase, day) planning cell within a program.
// The (ProgramID, PhaseNumber, DayNumber) triple is unique.
//
// RoutineBlockIDs and Sections are ordered arrays; their position in the
// array IS the display order. Reordering rewrites the whole array in one
// document update, so a half-applied order is never observable.
type Blueprint struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProgramID       primitive.ObjectID   `bson:"programId" json:"programId"`
	PhaseNumber     int                  `bson:"phaseNumber" json:"phaseNumber"`
	DayNumber       int                  `bson:"dayNumber" json:"dayNumber"`
	DayTitle        string               `bson:"dayTitle,omitempty" json:"dayTitle,omitempty"`
	Notes           string               `bson:"notes,omitempty" json:"notes,omitempty"` // Coach notes for the day
	RoutineBlockIDs []primitive.ObjectID `bson:"routineBlockIds" json:"routineBlockIds"`
	Sections        []Section            `bson:"sections" json:"sections"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsRestDay reports whether the day has no routine blocks assigned.
// There is no stored flag for this; it is purely a display rule.
func (b *Blueprint) IsRestDay() bool {
	return len(b.RoutineBlockIDs) == 0
}

// Section is a freeform titled note attached to a blueprint, ordered among
// its siblings. Content is opaque rich-text HTML produced by the editor.
type Section struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Content string             `bson:"content,omitempty" json:"content,omitempty"`
}
