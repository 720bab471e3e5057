package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a feed post stored in the MongoDB "posts" collection. Reels share
// the same shape and live in the "reels" collection.
//
// Likes holds the user IDs that liked the post; CommentsCount is a
// denormalized counter maintained by increment side-effects when comments are
// added or removed, not recomputed on read, so it can drift from the live
// comment count.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID      string             `json:"authorId" bson:"authorId"`
	MediaURL      string             `json:"mediaUrl" bson:"mediaUrl"`
	MediaType     string             `json:"mediaType" bson:"mediaType"` // "image" or "video"
	Caption       string             `json:"caption" bson:"caption"`
	Hashtags      []string           `json:"hashtags" bson:"hashtags"`
	Location      string             `json:"location,omitempty" bson:"location,omitempty"`
	Likes         []string           `json:"likes" bson:"likes"`
	CommentsCount int                `json:"commentsCount" bson:"commentsCount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreatePostRequest defines the request body for creating a post or a reel.
// Hashtags are not part of the request; they are extracted from the caption
// at write time.
type CreatePostRequest struct {
	MediaURL  string `json:"mediaUrl" validate:"required,url"`
	MediaType string `json:"mediaType" validate:"required,oneof=image video"`
	Caption   string `json:"caption" validate:"max=2200"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=100"`
}
