package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is a document in the MongoDB "stories" collection. A story stays
// visible for 24 hours; expiry is enforced by the query filter, not by
// deletion, so stale rows persist but stop matching.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  string             `json:"authorId" bson:"authorId"`
	MediaURL  string             `json:"mediaUrl" bson:"mediaUrl"`
	MediaType string             `json:"mediaType" bson:"mediaType"` // "image" or "video"
	ViewedBy  []string           `json:"viewedBy" bson:"viewedBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
}

// StoryTTL is how long a story remains queryable after creation.
const StoryTTL = 24 * time.Hour

// CreateStoryRequest defines the request body for adding a story
type CreateStoryRequest struct {
	MediaURL  string `json:"mediaUrl" validate:"required,url"`
	MediaType string `json:"mediaType" validate:"required,oneof=image video"`
}
