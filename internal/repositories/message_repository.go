package repositories

import (
	"context"
	"time"

	"github.com/buzztalks/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository defines the interface for message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessagesByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	MarkReadForRecipient(ctx context.Context, conversationID, recipientID string) error
	CountUnread(ctx context.Context, conversationID, recipientID string) (int64, error)
}

type mongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new message repository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{collection: db.Collection("messages")}
}

func (r *mongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	msg.Read = false
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// GetMessagesByConversation returns all messages in a conversation, oldest
// first.
func (r *mongoMessageRepository) GetMessagesByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err = cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkReadForRecipient flips every unread message not sent by the recipient
// to read. Called when the recipient opens the conversation.
func (r *mongoMessageRepository) MarkReadForRecipient(ctx context.Context, conversationID, recipientID string) error {
	filter := bson.M{
		"conversationId": conversationID,
		"senderId":       bson.M{"$ne": recipientID},
		"read":           false,
	}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return err
}

// CountUnread counts messages in one conversation addressed to the
// recipient that are still unread. The unread badge sums this across the
// user's conversations, one query each.
func (r *mongoMessageRepository) CountUnread(ctx context.Context, conversationID, recipientID string) (int64, error) {
	filter := bson.M{
		"conversationId": conversationID,
		"senderId":       bson.M{"$ne": recipientID},
		"read":           false,
	}
	return r.collection.CountDocuments(ctx, filter)
}
