package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is an edge in the follow graph, stored in the MongoDB "follows"
// collection. Uniqueness of (FollowerID, FollowingID) is checked before
// insert rather than enforced by an index.
type Follow struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FollowerID  string             `json:"followerId" bson:"followerId"`
	FollowingID string             `json:"followingId" bson:"followingId"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
