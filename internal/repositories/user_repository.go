package repositories

import (
	"context"
	"fmt"
	"regexp"

	"github.com/buzztalks/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrProfileNotFound is returned when a referenced user profile does not
// exist. Callers enriching records treat it as a soft miss and render
// fallback defaults instead of failing.
var ErrProfileNotFound = fmt.Errorf("user profile not found")

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfileByID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, fields bson.M) error
	SearchProfiles(ctx context.Context, query string, limit int64) ([]models.UserProfile, error)
	GetAllProfiles(ctx context.Context, limit int64) ([]models.UserProfile, error)
	IncrementPostsCount(ctx context.Context, userID string, delta int) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

func (r *MongoUserRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	_, err := r.collection.InsertOne(ctx, profile)
	return err
}

func (r *MongoUserRepository) GetProfileByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile merges the given fields into the profile document.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, userID string, fields bson.M) error {
	if len(fields) == 0 {
		return nil
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// searchFilter builds the case-insensitive substring match on username and
// bio. The query string is quoted so regex metacharacters in user input are
// matched literally instead of being evaluated.
func searchFilter(query string) bson.M {
	pattern := regexp.QuoteMeta(query)
	return bson.M{"$or": bson.A{
		bson.M{"username": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"bio": bson.M{"$regex": pattern, "$options": "i"}},
	}}
}

// SearchProfiles matches the query string case-insensitively against
// username and bio. The match runs server-side instead of pulling the whole
// collection to the client.
func (r *MongoUserRepository) SearchProfiles(ctx context.Context, query string, limit int64) ([]models.UserProfile, error) {
	cursor, err := r.collection.Find(ctx, searchFilter(query), options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.UserProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *MongoUserRepository) GetAllProfiles(ctx context.Context, limit int64) ([]models.UserProfile, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "followersCount", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.UserProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *MongoUserRepository) IncrementPostsCount(ctx context.Context, userID string, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": bson.M{"postsCount": delta}})
	return err
}
