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

const blueprintCollectionName = "blueprints"

// mongoBlueprintRepository implements repository.BlueprintRepository
type mongoBlueprintRepository struct {
	collection *mongo.Collection
}

// NewMongoBlueprintRepository creates a new Blueprint repository backed by MongoDB.
func NewMongoBlueprintRepository(db *mongo.Database) repository.BlueprintRepository {
	return &mongoBlueprintRepository{
		collection: db.Collection(blueprintCollectionName),
	}
}

// InsertMany inserts a batch of blueprint cells (one createPhase call).
func (r *mongoBlueprintRepository) InsertMany(ctx context.Context, blueprints []domain.Blueprint) error {
	if len(blueprints) == 0 {
		return errors.New("no blueprints to insert")
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(blueprints))
	for i := range blueprints {
		blueprints[i].ID = primitive.NewObjectID()
		blueprints[i].CreatedAt = now
		blueprints[i].UpdatedAt = now
		if blueprints[i].RoutineBlockIDs == nil {
			blueprints[i].RoutineBlockIDs = []primitive.ObjectID{}
		}
		if blueprints[i].Sections == nil {
			blueprints[i].Sections = []domain.Section{}
		}
		docs[i] = blueprints[i]
	}

	_, err := r.collection.InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a blueprint by its ID.
func (r *mongoBlueprintRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Blueprint, error) {
	var blueprint domain.Blueprint
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&blueprint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &blueprint, nil
}

// GetByProgramID retrieves all cells of a program sorted by (phase, day).
func (r *mongoBlueprintRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Blueprint, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "phaseNumber", Value: 1},
		{Key: "dayNumber", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blueprints []domain.Blueprint
	if err = cursor.All(ctx, &blueprints); err != nil {
		return nil, err
	}
	return blueprints, nil
}

// GetByProgramPhaseDay retrieves a single cell by its grid position.
func (r *mongoBlueprintRepository) GetByProgramPhaseDay(ctx context.Context, programID primitive.ObjectID, phase, day int) (*domain.Blueprint, error) {
	filter := bson.M{
		"programId":   programID,
		"phaseNumber": phase,
		"dayNumber":   day,
	}

	var blueprint domain.Blueprint
	err := r.collection.FindOne(ctx, filter).Decode(&blueprint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &blueprint, nil
}

// PhaseExists reports whether the program already has cells for the phase.
func (r *mongoBlueprintRepository) PhaseExists(ctx context.Context, programID primitive.ObjectID, phase int) (bool, error) {
	filter := bson.M{"programId": programID, "phaseNumber": phase}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaxDayInPhase returns the highest dayNumber and the cell count of a phase.
func (r *mongoBlueprintRepository) MaxDayInPhase(ctx context.Context, programID primitive.ObjectID, phase int) (int, int, error) {
	filter := bson.M{"programId": programID, "phaseNumber": phase}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	findOptions := options.FindOne().SetSort(bson.D{{Key: "dayNumber", Value: -1}})
	var top domain.Blueprint
	if err := r.collection.FindOne(ctx, filter, findOptions).Decode(&top); err != nil {
		return 0, 0, err
	}
	return top.DayNumber, int(count), nil
}

// DeleteByPhase removes every cell of the phase and returns how many.
func (r *mongoBlueprintRepository) DeleteByPhase(ctx context.Context, programID primitive.ObjectID, phase int) (int64, error) {
	filter := bson.M{"programId": programID, "phaseNumber": phase}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Delete removes a single day cell.
func (r *mongoBlueprintRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateMeta partially updates dayTitle and notes. A nil pointer leaves
// the field untouched; a pointer to "" clears it (stored field removed
// since both carry omitempty).
func (r *mongoBlueprintRepository) UpdateMeta(ctx context.Context, id primitive.ObjectID, dayTitle, notes *string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if dayTitle != nil {
		set["dayTitle"] = *dayTitle
	}
	if notes != nil {
		set["notes"] = *notes
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AppendRoutineBlock appends blockID to the end of the block order.
// The filter excludes documents that already hold the block, so a
// duplicate assign surfaces as ErrDuplicate instead of a double entry.
func (r *mongoBlueprintRepository) AppendRoutineBlock(ctx context.Context, id, blockID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "routineBlockIds": bson.M{"$ne": blockID}}
	update := bson.M{
		"$push": bson.M{"routineBlockIds": blockID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the blueprint is missing or the block is already assigned.
		exists, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if countErr != nil {
			return countErr
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrDuplicate
	}
	return nil
}

// RemoveRoutineBlock removes one block from the order. The remaining
// entries keep their relative order; no renumbering is needed.
func (r *mongoBlueprintRepository) RemoveRoutineBlock(ctx context.Context, id, blockID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"routineBlockIds": blockID},
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

// SetRoutineBlockOrder rewrites the whole block order in one update.
func (r *mongoBlueprintRepository) SetRoutineBlockOrder(ctx context.Context, id primitive.ObjectID, blockIDs []primitive.ObjectID) error {
	if blockIDs == nil {
		blockIDs = []primitive.ObjectID{}
	}
	update := bson.M{
		"$set": bson.M{
			"routineBlockIds": blockIDs,
			"updatedAt":       time.Now().UTC(),
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

// ClearRoutineBlocks removes all block associations in one update.
func (r *mongoBlueprintRepository) ClearRoutineBlocks(ctx context.Context, id primitive.ObjectID) error {
	return r.SetRoutineBlockOrder(ctx, id, nil)
}

// AppendSection appends a section to the end of the section order.
func (r *mongoBlueprintRepository) AppendSection(ctx context.Context, id primitive.ObjectID, section domain.Section) error {
	update := bson.M{
		"$push": bson.M{"sections": section},
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

// UpdateSection rewrites the title and content of one section in place.
func (r *mongoBlueprintRepository) UpdateSection(ctx context.Context, id primitive.ObjectID, section domain.Section) error {
	filter := bson.M{"_id": id, "sections._id": section.ID}
	update := bson.M{
		"$set": bson.M{
			"sections.$.title":   section.Title,
			"sections.$.content": section.Content,
			"updatedAt":          time.Now().UTC(),
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

// RemoveSection deletes one section from the blueprint.
func (r *mongoBlueprintRepository) RemoveSection(ctx context.Context, id, sectionID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"sections": bson.M{"_id": sectionID}},
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

// SetSections rewrites the whole section order in one update.
func (r *mongoBlueprintRepository) SetSections(ctx context.Context, id primitive.ObjectID, sections []domain.Section) error {
	if sections == nil {
		sections = []domain.Section{}
	}
	update := bson.M{
		"$set": bson.M{
			"sections":  sections,
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

// EnsureBlueprintIndexes creates necessary indexes for the blueprints collection.
func EnsureBlueprintIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One cell per (program, phase, day) grid position.
			Keys: bson.D{
				{Key: "programId", Value: 1},
				{Key: "phaseNumber", Value: 1},
				{Key: "dayNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
