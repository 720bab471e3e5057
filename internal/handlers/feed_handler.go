package handlers

import (
	"net/http"
	"strconv"

	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed and explore HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	reelRepository repositories.PostRepository
	enricher       *enrich.Enricher
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo, reelRepo repositories.PostRepository, enricher *enrich.Enricher) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		reelRepository: reelRepo,
		enricher:       enricher,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/reels/feed", h.GetReelsFeed)
	g.GET("/explore", h.Explore)
}

// EnrichedPost is a post joined with its author profile and the caller's
// like state.
type EnrichedPost struct {
	models.Post
	Author  *models.UserProfile `json:"author"`
	IsLiked bool                `json:"isLiked"`
}

// GetFeed returns enriched feed posts, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	return h.servePosts(c, h.postRepository)
}

// GetReelsFeed returns enriched reels, newest first
func (h *FeedHandler) GetReelsFeed(c echo.Context) error {
	return h.servePosts(c, h.reelRepository)
}

func (h *FeedHandler) servePosts(c echo.Context, repo repositories.PostRepository) error {
	currentUserID := profileIDFromContext(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	skip := int64((page - 1) * limit)

	posts, err := repo.GetAllPosts(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched, err := h.enrichPosts(c, currentUserID, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts": enriched,
		"page":  page,
		"limit": limit,
	})
}

// Explore returns posts matching a hashtag, or the global newest posts when
// no tag is given.
func (h *FeedHandler) Explore(c echo.Context) error {
	currentUserID := profileIDFromContext(c)
	tag := c.QueryParam("hashtag")

	var (
		posts []models.Post
		err   error
	)
	if tag != "" {
		posts, err = h.postRepository.GetPostsByHashtag(c.Request().Context(), tag, 50)
	} else {
		posts, err = h.postRepository.GetAllPosts(c.Request().Context(), 0, 50)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched, err := h.enrichPosts(c, currentUserID, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": enriched})
}

// enrichPosts joins author profiles onto posts with one point-read per
// distinct author. A missing author joins as a fallback profile.
func (h *FeedHandler) enrichPosts(c echo.Context, currentUserID string, posts []models.Post) ([]EnrichedPost, error) {
	profiles, err := h.enricher.Profiles(c.Request().Context(), enrich.AuthorIDs(posts))
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedPost, 0, len(posts))
	for _, p := range posts {
		enriched = append(enriched, EnrichedPost{
			Post:    p,
			Author:  enrich.Fallback(profiles, p.AuthorID),
			IsLiked: contains(p.Likes, currentUserID),
		})
	}
	return enriched, nil
}
