package mongo

import (
	"context"
	"errors"
	"time"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository backed by MongoDB.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a new workout log.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log user ID is required")
	}

	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a workout log by its ID.
func (r *mongoWorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetByUserID retrieves a user's logs in chronological order, optionally
// filtered to one exercise. Chronological order is what the performance
// extractor expects.
func (r *mongoWorkoutLogRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error) {
	filter := bson.M{"userId": userID}
	if exerciseID != nil {
		filter["exerciseId"] = *exerciseID
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "logDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.WorkoutLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetByBlueprintID retrieves homework submissions for one planning day,
// newest submission first.
func (r *mongoWorkoutLogRepository) GetByBlueprintID(ctx context.Context, blueprintID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"blueprintId": blueprintID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.WorkoutLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CountByBlueprintIDs returns total and coach-checked submission counts
// across the given planning days.
func (r *mongoWorkoutLogRepository) CountByBlueprintIDs(ctx context.Context, blueprintIDs []primitive.ObjectID) (int64, int64, error) {
	if len(blueprintIDs) == 0 {
		return 0, 0, nil
	}

	filter := bson.M{"blueprintId": bson.M{"$in": blueprintIDs}}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, 0, err
	}

	filter["isCheckedByCoach"] = true
	checked, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, 0, err
	}
	return total, checked, nil
}

// Update rewrites the member-editable fields of a log. The filter pins the
// owner, so a foreign log is reported as not found.
func (r *mongoWorkoutLogRepository) Update(ctx context.Context, log *domain.WorkoutLog) error {
	if log.ID == primitive.NilObjectID || log.UserID == primitive.NilObjectID {
		return errors.New("workout log ID and user ID are required for update")
	}

	filter := bson.M{"_id": log.ID, "userId": log.UserID}
	update := bson.M{
		"$set": bson.M{
			"blueprintId":   log.BlueprintID,
			"exerciseId":    log.ExerciseID,
			"logDate":       log.LogDate,
			"content":       log.Content,
			"intensity":     log.Intensity,
			"maxWeight":     log.MaxWeight,
			"totalVolume":   log.TotalVolume,
			"totalDuration": log.TotalDuration,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a log, ensuring it belongs to the given user.
func (r *mongoWorkoutLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "userId": userID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetCoachComment stores the coach's review comment on a log.
func (r *mongoWorkoutLogRepository) SetCoachComment(ctx context.Context, id primitive.ObjectID, comment string) error {
	update := bson.M{
		"$set": bson.M{
			"coachComment": comment,
			"updatedAt":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetCheckFlag stores the coach's checked flag on a log.
func (r *mongoWorkoutLogRepository) SetCheckFlag(ctx context.Context, id primitive.ObjectID, checked bool) error {
	update := bson.M{
		"$set": bson.M{
			"isCheckedByCoach": checked,
			"updatedAt":        time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutLogIndexes creates necessary indexes for the workout_logs collection.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "logDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "blueprintId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
