package handlers

import (
	"net/http"

	"github.com/buzztalks/backend/internal/aggregate"
	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	storyRepository repositories.StoryRepository
	enricher        *enrich.Enricher
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository, enricher *enrich.Enricher) *StoryHandler {
	return &StoryHandler{
		storyRepository: storyRepo,
		enricher:        enricher,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.GetActiveStories)
	g.POST("/stories/:id/view", h.MarkViewed)
}

// EnrichedStoryGroup is one author's active stories with their profile.
type EnrichedStoryGroup struct {
	Author  *models.UserProfile `json:"author"`
	Stories []models.Story      `json:"stories"`
}

// CreateStory publishes a story that stays visible for 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	profileID := profileIDFromContext(c)

	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	story := &models.Story{
		AuthorID:  profileID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	}
	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, story)
}

// GetActiveStories returns unexpired stories grouped per author, authors
// with the freshest story first.
func (h *StoryHandler) GetActiveStories(c echo.Context) error {
	stories, err := h.storyRepository.GetActiveStories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	groups := aggregate.GroupStoriesByAuthor(stories)
	authorIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		authorIDs = append(authorIDs, g.AuthorID)
	}
	profiles, err := h.enricher.Profiles(c.Request().Context(), authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]EnrichedStoryGroup, 0, len(groups))
	for _, g := range groups {
		enriched = append(enriched, EnrichedStoryGroup{
			Author:  enrich.Fallback(profiles, g.AuthorID),
			Stories: g.Stories,
		})
	}
	return c.JSON(http.StatusOK, enriched)
}

// MarkViewed records the caller as a viewer of the story
func (h *StoryHandler) MarkViewed(c echo.Context) error {
	profileID := profileIDFromContext(c)
	if err := h.storyRepository.MarkViewed(c.Request().Context(), c.Param("id"), profileID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
