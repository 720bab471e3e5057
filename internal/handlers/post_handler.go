package handlers

import (
	"context"
	"net/http"

	"github.com/buzztalks/backend/internal/aggregate"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests for posts. A second instance backed by
// the "reels" collection serves reels with identical semantics.
type PostHandler struct {
	postRepository  repositories.PostRepository
	userRepository  repositories.UserRepository
	basePath        string // "/posts" or "/reels"
	countsOnProfile bool   // only feed posts count toward profile postsCount
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, basePath string, countsOnProfile bool) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		userRepository:  userRepo,
		basePath:        basePath,
		countsOnProfile: countsOnProfile,
	}
}

// RegisterPostRoutes registers post CRUD routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST(h.basePath, h.CreatePost)
	g.GET(h.basePath+"/:id", h.GetPost)
	g.DELETE(h.basePath+"/:id", h.DeletePost)
	g.GET("/users/:id"+h.basePath, h.GetPostsByAuthor)
}

// CreatePost creates a post authored by the caller. Hashtags are extracted
// from the caption at write time and stored on the document.
func (h *PostHandler) CreatePost(c echo.Context) error {
	profileID := profileIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID:  profileID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		Caption:   req.Caption,
		Hashtags:  aggregate.ExtractHashtags(req.Caption),
		Location:  req.Location,
		Likes:     []string{},
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.countsOnProfile {
		// Denormalized counter update; best-effort, not atomic with the insert.
		go h.userRepository.IncrementPostsCount(context.Background(), profileID, 1)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post the caller authored. Live subscriptions drop
// the document from their result sets on the next snapshot.
func (h *PostHandler) DeletePost(c echo.Context) error {
	profileID := profileIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if post.AuthorID != profileID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.countsOnProfile {
		go h.userRepository.IncrementPostsCount(context.Background(), profileID, -1)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetPostsByAuthor lists a user's posts, newest first
func (h *PostHandler) GetPostsByAuthor(c echo.Context) error {
	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), c.Param("id"), 0, 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(http.StatusOK, posts)
}
