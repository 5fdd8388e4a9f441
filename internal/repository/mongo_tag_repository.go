package repository

import (
	"context"
	"errors"

	"github.com/yourorg/qa-platform/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	// TagCollection holds tag documents
	TagCollection = "Tag"
	// QuestionCollection holds question documents referencing tags by ObjectID
	QuestionCollection = "Question"
)

// MongoTagRepository handles tag queries against MongoDB
type MongoTagRepository struct {
	tags      *mongo.Collection
	questions *mongo.Collection
	logger    *zap.Logger
}

// NewMongoTagRepository creates a new MongoDB tag repository
func NewMongoTagRepository(db *mongo.Database, logger *zap.Logger) *MongoTagRepository {
	return &MongoTagRepository{
		tags:      db.Collection(TagCollection),
		questions: db.Collection(QuestionCollection),
		logger:    logger,
	}
}

type tagDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
}

type tagRefCount struct {
	TagID primitive.ObjectID `bson:"_id"`
	Count int                `bson:"count"`
}

// FindByName retrieves a tag by its name
func (r *MongoTagRepository) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	var doc tagDocument
	err := r.tags.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get tag by name", zap.Error(err), zap.String("name", name))
		return nil, err
	}

	tag, err := storedTag(doc.Name, doc.Description)
	if err != nil {
		r.logger.Error("Stored tag failed validation", zap.Error(err), zap.String("id", doc.ID.Hex()))
		return nil, err
	}

	return tag, nil
}

// CountQuestionsByTag loads all tags, groups question tag references, and merges both
func (r *MongoTagRepository) CountQuestionsByTag(ctx context.Context) (*model.TagCountMap, error) {
	cursor, err := r.tags.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.logger.Error("Failed to list tags", zap.Error(err))
		return nil, err
	}

	var tags []tagDocument
	if err := cursor.All(ctx, &tags); err != nil {
		r.logger.Error("Failed to decode tags", zap.Error(err))
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err = r.questions.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate question tags", zap.Error(err))
		return nil, err
	}

	var refs []tagRefCount
	if err := cursor.All(ctx, &refs); err != nil {
		r.logger.Error("Failed to decode question tag counts", zap.Error(err))
		return nil, err
	}

	return mergeTagCounts(tags, refs), nil
}

// mergeTagCounts folds per-tag-id reference counts into an ordered name map.
// References to ids missing from tags are dropped.
func mergeTagCounts(tags []tagDocument, refs []tagRefCount) *model.TagCountMap {
	byID := make(map[primitive.ObjectID]int, len(refs))
	for _, ref := range refs {
		byID[ref.TagID] += ref.Count
	}

	counts := model.NewTagCountMap()
	for _, tag := range tags {
		counts.Add(tag.Name, byID[tag.ID])
	}
	return counts
}
