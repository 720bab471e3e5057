package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/buzztalks/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Follow errors
var (
	ErrAlreadyFollowing = fmt.Errorf("already following this user")
	ErrFollowNotFound   = fmt.Errorf("follow relationship not found")
)

// FollowRepository defines the interface for follow-graph operations.
//
// Follow and Unfollow are the only multi-write mutations in the system that
// are atomic: the edge, both denormalized counters and (on follow) the
// notification commit or roll back together.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB. It holds
// the database rather than a single collection because the follow batch
// spans follows, users and notifications.
type MongoFollowRepository struct {
	db *mongo.Database
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{db: db}
}

// Follow inserts the follow edge, bumps both counters and writes the
// recipient's notification in one transaction. The existence pre-check runs
// inside the transaction to narrow the duplicate-edge race window.
func (r *MongoFollowRepository) Follow(ctx context.Context, followerID, followingID string) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		follows := r.db.Collection("follows")

		count, err := follows.CountDocuments(sc, bson.M{"followerId": followerID, "followingId": followingID})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAlreadyFollowing
		}

		now := time.Now()
		if _, err := follows.InsertOne(sc, &models.Follow{
			ID:          primitive.NewObjectID(),
			FollowerID:  followerID,
			FollowingID: followingID,
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}

		users := r.db.Collection("users")
		if _, err := users.UpdateOne(sc, bson.M{"_id": followerID}, bson.M{"$inc": bson.M{"followingCount": 1}}); err != nil {
			return nil, err
		}
		if _, err := users.UpdateOne(sc, bson.M{"_id": followingID}, bson.M{"$inc": bson.M{"followersCount": 1}}); err != nil {
			return nil, err
		}

		_, err = r.db.Collection("notifications").InsertOne(sc, &models.Notification{
			ID:         primitive.NewObjectID(),
			UserID:     followingID,
			FromUserID: followerID,
			Type:       models.NotificationFollow,
			Read:       false,
			CreatedAt:  now,
		})
		return nil, err
	})
	return err
}

// Unfollow removes the edge and decrements both counters in one transaction.
// No notification is produced on unfollow.
func (r *MongoFollowRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.db.Collection("follows").DeleteMany(sc, bson.M{"followerId": followerID, "followingId": followingID})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, ErrFollowNotFound
		}

		users := r.db.Collection("users")
		if _, err := users.UpdateOne(sc, bson.M{"_id": followerID}, bson.M{"$inc": bson.M{"followingCount": -1}}); err != nil {
			return nil, err
		}
		_, err = users.UpdateOne(sc, bson.M{"_id": followingID}, bson.M{"$inc": bson.M{"followersCount": -1}})
		return nil, err
	})
	return err
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	count, err := r.db.Collection("follows").CountDocuments(ctx, bson.M{"followerId": followerID, "followingId": followingID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoFollowRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.edgeIDs(ctx, bson.M{"followingId": userID}, func(f models.Follow) string { return f.FollowerID })
}

func (r *MongoFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return r.edgeIDs(ctx, bson.M{"followerId": userID}, func(f models.Follow) string { return f.FollowingID })
}

func (r *MongoFollowRepository) edgeIDs(ctx context.Context, filter bson.M, pick func(models.Follow) string) ([]string, error) {
	cursor, err := r.db.Collection("follows").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var edges []models.Follow
	if err = cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, pick(e))
	}
	return ids, nil
}
