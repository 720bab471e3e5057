package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMessage = "message"
	NotificationMention = "mention"
)

// Notification is a document in the MongoDB "notifications" collection.
// Notifications are created as a side-effect of another mutation and are not
// transactionally tied to it, except for follow notifications which ride the
// follow transaction.
type Notification struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"userId"` // recipient
	FromUserID string             `json:"fromUserId" bson:"fromUserId"`
	Type       string             `json:"type" bson:"type"`
	PostID     string             `json:"postId,omitempty" bson:"postId,omitempty"`
	CommentID  string             `json:"commentId,omitempty" bson:"commentId,omitempty"`
	Content    string             `json:"content,omitempty" bson:"content,omitempty"`
	Read       bool               `json:"read" bson:"read"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
