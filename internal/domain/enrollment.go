package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentStatus type for the member subscription lifecycle.
// There is no enforced transition graph; a coach may move an enrollment
// between any two states.
type EnrollmentStatus string

const (
	EnrollmentActive  EnrollmentStatus = "ACTIVE"
	EnrollmentExpired EnrollmentStatus = "EXPIRED"
	EnrollmentPaused  EnrollmentStatus = "PAUSED"
)

// ValidEnrollmentStatus reports whether s is one of the known statuses.
func ValidEnrollmentStatus(s EnrollmentStatus) bool {
	switch s {
	case EnrollmentActive, EnrollmentExpired, EnrollmentPaused:
		return true
	}
	return false
}

// Enrollment is a member's subscription record to a specific program.
type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	Status    EnrollmentStatus   `bson:"status" json:"status"`
	StartDate *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"` // Nil until the coach sets it
	EndDate   *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`     // Nil = unlimited
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
