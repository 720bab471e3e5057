package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a direct-message thread between exactly two users, stored
// in the MongoDB "conversations" collection. LastMessage, LastMessageAt and
// LastSenderID are denormalized from the newest message so the conversation
// list can render without fetching messages.
type Conversation struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Participants  []string           `json:"participants" bson:"participants"`
	LastMessage   string             `json:"lastMessage" bson:"lastMessage"`
	LastMessageAt time.Time          `json:"lastMessageAt" bson:"lastMessageAt"`
	LastSenderID  string             `json:"lastSenderId" bson:"lastSenderId"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// Message is a document in the MongoDB "messages" collection. Read flips
// false to true when the non-sender fetches the conversation; there is no
// separate delivery acknowledgement.
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID string             `json:"conversationId" bson:"conversationId"`
	SenderID       string             `json:"senderId" bson:"senderId"`
	Content        string             `json:"content" bson:"content"`
	MediaURL       string             `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	Read           bool               `json:"read" bson:"read"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateConversationRequest opens (or returns) the conversation with a peer
type CreateConversationRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	Content  string `json:"content" validate:"max=2000"`
	MediaURL string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
}
