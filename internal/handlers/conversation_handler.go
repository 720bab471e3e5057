package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/buzztalks/backend/internal/aggregate"
	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// mediaOnlyPlaceholder is shown as the conversation preview when a message
// carries media and no text. The notification for the same message uses a
// different phrasing addressed to the recipient.
const (
	mediaOnlyPlaceholder  = "📸 Image"
	mediaNotificationText = "📸 Sent you an image"
)

// ConversationHandler handles direct-message HTTP requests
type ConversationHandler struct {
	conversationRepository repositories.ConversationRepository
	messageRepository      repositories.MessageRepository
	notificationRepository repositories.NotificationRepository
	enricher               *enrich.Enricher
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, notifRepo repositories.NotificationRepository, enricher *enrich.Enricher) *ConversationHandler {
	return &ConversationHandler{
		conversationRepository: convRepo,
		messageRepository:      msgRepo,
		notificationRepository: notifRepo,
		enricher:               enricher,
	}
}

// RegisterConversationRoutes registers messaging routes
func (h *ConversationHandler) RegisterConversationRoutes(g *echo.Group) {
	g.GET("/conversations", h.GetConversations)
	g.POST("/conversations", h.CreateConversation)
	g.GET("/conversations/:id/messages", h.GetMessages)
	g.POST("/conversations/:id/messages", h.SendMessage)
	g.GET("/conversations/unread-count", h.GetUnreadCount)
}

// EnrichedConversation is a conversation joined with the other participant's
// profile and the caller's unread count.
type EnrichedConversation struct {
	models.Conversation
	OtherUser   *models.UserProfile `json:"otherUser"`
	UnreadCount int64               `json:"unreadCount"`
}

// GetConversations lists the caller's conversations, most recent activity
// first, each with the peer profile and unread count joined on.
func (h *ConversationHandler) GetConversations(c echo.Context) error {
	profileID := profileIDFromContext(c)

	convs, err := h.conversationRepository.GetConversationsForUser(c.Request().Context(), profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	otherIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		otherIDs = append(otherIDs, otherParticipant(conv, profileID))
	}
	profiles, err := h.enricher.Profiles(c.Request().Context(), otherIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]EnrichedConversation, 0, len(convs))
	for i, conv := range convs {
		unread, err := h.messageRepository.CountUnread(c.Request().Context(), conv.ID.Hex(), profileID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		enriched = append(enriched, EnrichedConversation{
			Conversation: conv,
			OtherUser:    enrich.Fallback(profiles, otherIDs[i]),
			UnreadCount:  unread,
		})
	}
	return c.JSON(http.StatusOK, enriched)
}

// CreateConversation opens a conversation with another user, or returns the
// existing one if the pair already has a thread.
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	profileID := profileIDFromContext(c)

	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.UserID == profileID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot start a conversation with yourself")
	}

	existing, err := h.conversationRepository.FindByParticipants(c.Request().Context(), profileID, req.UserID)
	if err == nil {
		return c.JSON(http.StatusOK, existing)
	}
	if err != repositories.ErrConversationNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	conv := &models.Conversation{Participants: []string{profileID, req.UserID}}
	if err := h.conversationRepository.CreateConversation(c.Request().Context(), conv); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, conv)
}

// GetMessages returns the conversation's messages oldest first and marks
// every message addressed to the caller as read. Opening the thread is the
// read acknowledgement.
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	profileID := profileIDFromContext(c)
	convID := c.Param("id")

	conv, err := h.conversationRepository.GetConversationByID(c.Request().Context(), convID)
	if err != nil {
		if err == repositories.ErrConversationNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !contains(conv.Participants, profileID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not a participant of this conversation")
	}

	if err := h.messageRepository.MarkReadForRecipient(c.Request().Context(), convID, profileID); err != nil {
		log.Printf("conversation: mark read failed for %s: %v", convID, err)
	}

	msgs, err := h.messageRepository.GetMessagesByConversation(c.Request().Context(), convID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}

// SendMessage appends a message to the conversation, refreshes the
// denormalized last-message fields and notifies the other participant. The
// three writes run in sequence without a transaction.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	profileID := profileIDFromContext(c)
	convID := c.Param("id")

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Content == "" && req.MediaURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message must have content or media")
	}

	conv, err := h.conversationRepository.GetConversationByID(c.Request().Context(), convID)
	if err != nil {
		if err == repositories.ErrConversationNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !contains(conv.Participants, profileID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not a participant of this conversation")
	}

	msg := &models.Message{
		ConversationID: convID,
		SenderID:       profileID,
		Content:        req.Content,
		MediaURL:       req.MediaURL,
	}
	if err := h.messageRepository.CreateMessage(c.Request().Context(), msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	preview := req.Content
	if preview == "" {
		preview = mediaOnlyPlaceholder
	}
	if err := h.conversationRepository.UpdateLastMessage(context.Background(), convID, preview, profileID, msg.CreatedAt); err != nil {
		log.Printf("conversation: last-message update failed for %s: %v", convID, err)
	}

	recipient := otherParticipant(*conv, profileID)
	if recipient != "" && recipient != profileID {
		notifContent := req.Content
		if notifContent == "" {
			notifContent = mediaNotificationText
		}
		notif := &models.Notification{
			UserID:     recipient,
			FromUserID: profileID,
			Type:       models.NotificationMessage,
			Content:    notifContent,
		}
		if err := h.notificationRepository.CreateNotification(context.Background(), notif); err != nil {
			log.Printf("conversation: notification write failed for %s: %v", convID, err)
		}
	}

	return c.JSON(http.StatusCreated, msg)
}

// GetUnreadCount returns the total unread messages across the caller's
// conversations.
func (h *ConversationHandler) GetUnreadCount(c echo.Context) error {
	profileID := profileIDFromContext(c)

	convs, err := h.conversationRepository.GetConversationsForUser(c.Request().Context(), profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]string, 0, len(convs))
	for _, conv := range convs {
		ids = append(ids, conv.ID.Hex())
	}
	total, err := aggregate.SumUnread(c.Request().Context(), h.messageRepository, ids, profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": total})
}

func otherParticipant(conv models.Conversation, userID string) string {
	for _, p := range conv.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
