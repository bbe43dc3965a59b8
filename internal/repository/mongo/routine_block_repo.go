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

const routineBlockCollectionName = "routine_blocks"

// mongoRoutineBlockRepository implements repository.RoutineBlockRepository
type mongoRoutineBlockRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineBlockRepository creates a new RoutineBlock repository backed by MongoDB.
func NewMongoRoutineBlockRepository(db *mongo.Database) repository.RoutineBlockRepository {
	return &mongoRoutineBlockRepository{
		collection: db.Collection(routineBlockCollectionName),
	}
}

// Create inserts a new routine block.
func (r *mongoRoutineBlockRepository) Create(ctx context.Context, block *domain.RoutineBlock) (primitive.ObjectID, error) {
	if block.Name == "" || block.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine block name and coach ID are required")
	}

	block.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now
	if block.Items == nil {
		block.Items = []domain.RoutineItem{}
	}

	result, err := r.collection.InsertOne(ctx, block)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a routine block by its ID.
func (r *mongoRoutineBlockRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineBlock, error) {
	var block domain.RoutineBlock
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&block)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &block, nil
}

// GetByIDs retrieves routine blocks for a set of IDs. Order of the result
// is unspecified; callers that care about order re-sequence by ID.
func (r *mongoRoutineBlockRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.RoutineBlock, error) {
	if len(ids) == 0 {
		return []domain.RoutineBlock{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blocks []domain.RoutineBlock
	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// GetByCoachID retrieves all routine blocks owned by a coach, newest first.
func (r *mongoRoutineBlockRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.RoutineBlock, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blocks []domain.RoutineBlock
	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Update modifies block attributes. Items and CoachID are not rewritten
// here; item mutations go through the dedicated item methods.
func (r *mongoRoutineBlockRepository) Update(ctx context.Context, block *domain.RoutineBlock) error {
	if block.ID == primitive.NilObjectID {
		return errors.New("routine block ID is required for update")
	}
	if block.Name == "" {
		return errors.New("routine block name cannot be empty")
	}

	update := bson.M{
		"$set": bson.M{
			"name":               block.Name,
			"format":             block.Format,
			"targetValue":        block.TargetValue,
			"description":        block.Description,
			"leaderboardEnabled": block.LeaderboardEnabled,
			"updatedAt":          time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": block.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a routine block, ensuring it belongs to the given coach.
func (r *mongoRoutineBlockRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "coachId": coachID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AppendItem appends an item to the end of the block's item list.
func (r *mongoRoutineBlockRepository) AppendItem(ctx context.Context, id primitive.ObjectID, item domain.RoutineItem) error {
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
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

// RemoveItem deletes one item from the block.
func (r *mongoRoutineBlockRepository) RemoveItem(ctx context.Context, id, itemID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"_id": itemID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
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

// SetItems rewrites the whole item list in one update.
func (r *mongoRoutineBlockRepository) SetItems(ctx context.Context, id primitive.ObjectID, items []domain.RoutineItem) error {
	if items == nil {
		items = []domain.RoutineItem{}
	}
	update := bson.M{
		"$set": bson.M{
			"items":     items,
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

// EnsureRoutineBlockIndexes creates necessary indexes for the routine_blocks collection.
func EnsureRoutineBlockIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
