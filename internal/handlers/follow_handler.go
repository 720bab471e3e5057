package handlers

import (
	"net/http"

	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests. Follow is the one
// mutation whose fan-out (edge, two counters, notification) is atomic,
// carried by the repository's transaction.
type FollowHandler struct {
	followRepository repositories.FollowRepository
	enricher         *enrich.Enricher
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, enricher *enrich.Enricher) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		enricher:         enricher,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/follow/status", h.GetFollowStatus)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := profileIDFromContext(c)
	targetID := c.Param("id")

	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	if err := h.followRepository.Follow(c.Request().Context(), currentUserID, targetID); err != nil {
		if err == repositories.ErrAlreadyFollowing {
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"following": true})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := profileIDFromContext(c)
	targetID := c.Param("id")

	if err := h.followRepository.Unfollow(c.Request().Context(), currentUserID, targetID); err != nil {
		if err == repositories.ErrFollowNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Follow relationship not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"following": false})
}

// GetFollowStatus reports whether the caller follows the target user
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	currentUserID := profileIDFromContext(c)
	targetID := c.Param("id")

	following, err := h.followRepository.IsFollowing(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// GetFollowers lists the profiles following the target user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	ids, err := h.followRepository.GetFollowerIDs(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondProfiles(c, ids)
}

// GetFollowing lists the profiles the target user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	ids, err := h.followRepository.GetFollowingIDs(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondProfiles(c, ids)
}

func (h *FollowHandler) respondProfiles(c echo.Context, ids []string) error {
	profiles, err := h.enricher.Profiles(c.Request().Context(), ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]*models.UserProfile, 0, len(ids))
	for _, id := range ids {
		out = append(out, enrich.Fallback(profiles, id))
	}
	return c.JSON(http.StatusOK, out)
}
