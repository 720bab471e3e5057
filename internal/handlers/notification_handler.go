package handlers

import (
	"net/http"

	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// notificationFetchLimit caps how many notifications the list endpoint
// returns.
const notificationFetchLimit = 50

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	enricher               *enrich.Enricher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, enricher *enrich.Enricher) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		enricher:               enricher,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkRead)
	g.PUT("/notifications/read-all", h.MarkAllRead)
}

// EnrichedNotification is a notification joined with the actor's profile.
type EnrichedNotification struct {
	models.Notification
	FromUser *models.UserProfile `json:"fromUser"`
}

// GetNotifications returns the caller's newest notifications with actor
// profiles joined on.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	profileID := profileIDFromContext(c)

	notifications, err := h.notificationRepository.GetForUser(c.Request().Context(), profileID, notificationFetchLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	fromIDs := make([]string, 0, len(notifications))
	for _, n := range notifications {
		fromIDs = append(fromIDs, n.FromUserID)
	}
	profiles, err := h.enricher.Profiles(c.Request().Context(), fromIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]EnrichedNotification, 0, len(notifications))
	for _, n := range notifications {
		enriched = append(enriched, EnrichedNotification{
			Notification: n,
			FromUser:     enrich.Fallback(profiles, n.FromUserID),
		})
	}
	return c.JSON(http.StatusOK, enriched)
}

// GetUnreadCount returns the caller's unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	profileID := profileIDFromContext(c)
	count, err := h.notificationRepository.CountUnread(c.Request().Context(), profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": count})
}

// MarkRead marks a single notification as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notificationRepository.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every notification of the caller as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	profileID := profileIDFromContext(c)
	if err := h.notificationRepository.MarkAllRead(c.Request().Context(), profileID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
