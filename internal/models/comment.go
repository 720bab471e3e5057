package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a document in the MongoDB "comments" collection.
//
// ParentID, when set, references a top-level comment on the same post.
// Threading is a single level deep: replying to a reply is rejected at
// create time.
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    string             `json:"postId" bson:"postId"`
	AuthorID  string             `json:"authorId" bson:"authorId"`
	Content   string             `json:"content" bson:"content"`
	ParentID  string             `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Likes     []string           `json:"likes" bson:"likes"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ParentID string `json:"parentId,omitempty"`
}
