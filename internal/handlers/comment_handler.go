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

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
	enricher               *enrich.Enricher
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, notifRepo repositories.NotificationRepository, enricher *enrich.Enricher) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
		enricher:               enricher,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// EnrichedThread is a comment thread with author profiles joined on.
type EnrichedThread struct {
	Comment models.Comment      `json:"comment"`
	Author  *models.UserProfile `json:"author"`
	Replies []EnrichedComment   `json:"replies"`
}

// EnrichedComment is a single comment with its author profile.
type EnrichedComment struct {
	models.Comment
	Author *models.UserProfile `json:"author"`
}

// CreateComment adds a comment (or a one-level reply) to a post. The
// post's denormalized commentsCount is incremented and the post author is
// notified; neither write is atomic with the comment insert.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	profileID := profileIDFromContext(c)
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	// A reply must reference an existing top-level comment on this post.
	if req.ParentID != "" {
		parent, err := h.commentRepository.GetCommentByID(c.Request().Context(), req.ParentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment not found")
		}
		if parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different post")
		}
		if parent.ParentID != "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Replies cannot be nested")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: profileID,
		Content:  req.Content,
		ParentID: req.ParentID,
		Likes:    []string{},
	}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementCommentsCount(context.Background(), postID, 1); err != nil {
		// Counter drift: the comment exists but the count is stale.
		log.Printf("comment: counter increment failed for post %s: %v", postID, err)
	}

	if post.AuthorID != profileID {
		content := truncateRunes(req.Content, 100)
		notif := &models.Notification{
			UserID:     post.AuthorID,
			FromUserID: profileID,
			Type:       models.NotificationComment,
			PostID:     postID,
			CommentID:  comment.ID.Hex(),
			Content:    content,
		}
		if err := h.notificationRepository.CreateNotification(context.Background(), notif); err != nil {
			log.Printf("comment: notification write failed for post %s: %v", postID, err)
		}
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID returns the post's comments threaded one level deep,
// with author profiles joined on (one point-read per distinct author).
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")

	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorIDs := make([]string, 0, len(comments))
	for _, cm := range comments {
		authorIDs = append(authorIDs, cm.AuthorID)
	}
	profiles, err := h.enricher.Profiles(c.Request().Context(), authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	threads := aggregate.ThreadComments(comments)
	enriched := make([]EnrichedThread, 0, len(threads))
	for _, t := range threads {
		replies := make([]EnrichedComment, 0, len(t.Replies))
		for _, r := range t.Replies {
			replies = append(replies, EnrichedComment{Comment: r, Author: enrich.Fallback(profiles, r.AuthorID)})
		}
		enriched = append(enriched, EnrichedThread{
			Comment: t.Comment,
			Author:  enrich.Fallback(profiles, t.Comment.AuthorID),
			Replies: replies,
		})
	}

	return c.JSON(http.StatusOK, enriched)
}

// DeleteComment removes a comment the caller authored and decrements the
// post's comment counter.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	profileID := profileIDFromContext(c)
	commentID := c.Param("id")

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		if err == repositories.ErrCommentNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if comment.AuthorID != profileID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementCommentsCount(context.Background(), comment.PostID, -1); err != nil {
		log.Printf("comment: counter decrement failed for post %s: %v", comment.PostID, err)
	}

	return c.NoContent(http.StatusNoContent)
}
