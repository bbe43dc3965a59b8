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

const enrollmentCollectionName = "enrollments"

// mongoEnrollmentRepository implements repository.EnrollmentRepository
type mongoEnrollmentRepository struct {
	collection *mongo.Collection
}

// NewMongoEnrollmentRepository creates a new Enrollment repository backed by MongoDB.
func NewMongoEnrollmentRepository(db *mongo.Database) repository.EnrollmentRepository {
	return &mongoEnrollmentRepository{
		collection: db.Collection(enrollmentCollectionName),
	}
}

// Create inserts a new enrollment. One enrollment per (user, program).
func (r *mongoEnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error) {
	if enrollment.UserID == primitive.NilObjectID || enrollment.ProgramID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("enrollment user ID and program ID are required")
	}

	enrollment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, enrollment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves an enrollment by its ID.
func (r *mongoEnrollmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// GetByProgramID retrieves all enrollments for a program, newest first.
func (r *mongoEnrollmentRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Enrollment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// GetByUserAndProgram retrieves a member's enrollment in one program.
func (r *mongoEnrollmentRepository) GetByUserAndProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Enrollment, error) {
	filter := bson.M{"userId": userID, "programId": programID}

	var enrollment domain.Enrollment
	err := r.collection.FindOne(ctx, filter).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// UpdateStatus sets the status unconditionally; any state is reachable
// from any state.
func (r *mongoEnrollmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.EnrollmentStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
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

// SetStartDate sets or clears (nil) the start date.
func (r *mongoEnrollmentRepository) SetStartDate(ctx context.Context, id primitive.ObjectID, date *time.Time) error {
	return r.setDateField(ctx, id, "startDate", date)
}

// SetEndDate sets or clears (nil) the end date.
func (r *mongoEnrollmentRepository) SetEndDate(ctx context.Context, id primitive.ObjectID, date *time.Time) error {
	return r.setDateField(ctx, id, "endDate", date)
}

func (r *mongoEnrollmentRepository) setDateField(ctx context.Context, id primitive.ObjectID, field string, date *time.Time) error {
	var update bson.M
	if date == nil {
		update = bson.M{
			"$unset": bson.M{field: ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				field:       date.UTC(),
				"updatedAt": time.Now().UTC(),
			},
		}
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

// CountByStatus returns enrollment counts per status for a program.
func (r *mongoEnrollmentRepository) CountByStatus(ctx context.Context, programID primitive.ObjectID) (map[domain.EnrollmentStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"programId": programID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.EnrollmentStatus `bson:"_id"`
		Count  int64                   `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[domain.EnrollmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// GetExpiring returns enrollments whose endDate falls within [from, to].
// Enrollments with no endDate never expire and are excluded by the range
// filter itself.
func (r *mongoEnrollmentRepository) GetExpiring(ctx context.Context, programID primitive.ObjectID, from, to time.Time) ([]domain.Enrollment, error) {
	filter := bson.M{
		"programId": programID,
		"endDate":   bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []domain.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ExpireOverdue flips ACTIVE enrollments whose endDate has passed to EXPIRED.
func (r *mongoEnrollmentRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":  domain.EnrollmentActive,
		"endDate": bson.M{"$lt": now.UTC()},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.EnrollmentExpired,
			"updatedAt": now.UTC(),
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureEnrollmentIndexes creates necessary indexes for the enrollments collection.
func EnsureEnrollmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "programId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
