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

// ErrConversationNotFound is returned when a conversation does not exist.
var ErrConversationNotFound = fmt.Errorf("conversation not found")

// ConversationRepository defines the interface for conversation operations
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*models.Conversation, error)
	GetConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	FindByParticipants(ctx context.Context, userID, otherUserID string) (*models.Conversation, error)
	UpdateLastMessage(ctx context.Context, id, lastMessage, lastSenderID string, at time.Time) error
}

type mongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates a new conversation repository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &mongoConversationRepository{collection: db.Collection("conversations")}
}

func (r *mongoConversationRepository) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	conv.ID = primitive.NewObjectID()
	conv.CreatedAt = time.Now()
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = conv.CreatedAt
	}
	_, err := r.collection.InsertOne(ctx, conv)
	return err
}

func (r *mongoConversationRepository) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID format: %w", err)
	}

	var conv models.Conversation
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// GetConversationsForUser returns every conversation the user participates
// in, most recent activity first.
func (r *mongoConversationRepository) GetConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err = cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// FindByParticipants scans the user's conversations for one that also
// includes the other user. There is no unique index on the participant pair;
// this lookup is how "existing conversation" is resolved.
func (r *mongoConversationRepository) FindByParticipants(ctx context.Context, userID, otherUserID string) (*models.Conversation, error) {
	convs, err := r.GetConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		for _, p := range convs[i].Participants {
			if p == otherUserID {
				return &convs[i], nil
			}
		}
	}
	return nil, ErrConversationNotFound
}

// UpdateLastMessage merges the denormalized last-message fields.
func (r *mongoConversationRepository) UpdateLastMessage(ctx context.Context, id, lastMessage, lastSenderID string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid conversation ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{
		"lastMessage":   lastMessage,
		"lastMessageAt": at,
		"lastSenderId":  lastSenderID,
	}})
	return err
}
