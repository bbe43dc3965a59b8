package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program represents a training program sold and curated by a coach.
// Programs are never hard-deleted through visible flows; taking one off
// the market happens via the IsPublic/IsForSale flags.
type Program struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID           primitive.ObjectID `bson:"coachId" json:"coachId"` // Owning coach
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	CurriculumSummary string             `bson:"curriculumSummary,omitempty" json:"curriculumSummary,omitempty"`
	Price             int64              `bson:"price" json:"price"` // Smallest currency unit
	ProgramType       string             `bson:"programType,omitempty" json:"programType,omitempty"`
	Difficulty        string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g., "Novice", "Medium", "Advanced"
	DurationWeeks     int                `bson:"durationWeeks" json:"durationWeeks"`
	DaysPerWeek       int                `bson:"daysPerWeek" json:"daysPerWeek"`
	AccessPeriodDays  int                `bson:"accessPeriodDays" json:"accessPeriodDays"` // 0 = unlimited access
	IsPublic          bool               `bson:"isPublic" json:"isPublic"`
	IsForSale         bool               `bson:"isForSale" json:"isForSale"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
