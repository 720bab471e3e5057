package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/buzztalks/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveStories(ctx context.Context) ([]models.Story, error)
	MarkViewed(ctx context.Context, storyID, userID string) error
}

type mongoStoryRepository struct {
	collection *mongo.Collection
}

// NewMongoStoryRepository creates a new story repository over the "stories"
// collection.
func NewMongoStoryRepository(db *mongo.Database) StoryRepository {
	return &mongoStoryRepository{collection: db.Collection("stories")}
}

// CreateStory inserts a story with a 24h expiry window.
func (r *mongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(models.StoryTTL)
	if story.ViewedBy == nil {
		story.ViewedBy = []string{}
	}
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

// GetActiveStories returns stories that have not expired, newest first.
// Expiry is enforced here by the query filter; expired documents are never
// deleted, they just stop matching.
func (r *mongoStoryRepository) GetActiveStories(ctx context.Context) ([]models.Story, error) {
	filter := bson.M{"expiresAt": bson.M{"$gt": time.Now()}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// MarkViewed adds the viewer to the story's viewedBy set.
func (r *mongoStoryRepository) MarkViewed(ctx context.Context, storyID, userID string) error {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return fmt.Errorf("invalid story ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$addToSet": bson.M{"viewedBy": userID}})
	return err
}
