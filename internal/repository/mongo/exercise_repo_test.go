package mongo

import (
	"testing"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchQueryEscapesFreeText(t *testing.T) {
	// Regex metacharacters in user input must match literally, not blow
	// up the query.
	query := searchQuery(repository.ExerciseSearchFilter{Search: "squat (1rm"})

	title, ok := query["title"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `squat \(1rm`, title["$regex"])
	assert.Equal(t, "i", title["$options"])
}

func TestSearchQueryFilterGroups(t *testing.T) {
	coachID := primitive.NewObjectID()
	query := searchQuery(repository.ExerciseSearchFilter{
		CoachID:    coachID,
		Categories: []string{"Barbell", "Machine"},
		ValueTypes: []domain.WorkoutValueType{domain.ValueWeight},
	})

	assert.Equal(t, coachID, query["coachId"])
	assert.Equal(t, bson.M{"$in": []string{"Barbell", "Machine"}}, query["category"])
	assert.Equal(t, bson.M{"$in": []domain.WorkoutValueType{domain.ValueWeight}}, query["valueType"])
	assert.NotContains(t, query, "title")
}
