package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggles on posts, reels and comments.
//
// A toggle reads the current like-set and flips the caller's membership:
// {unset} -> add -> {set}, {set} -> remove -> {unset}. The add/remove and
// the notification are separate writes; concurrent toggles from two
// sessions are not serialized, last writer wins.
type LikeHandler struct {
	postRepository         repositories.PostRepository
	reelRepository         repositories.PostRepository
	commentRepository      repositories.CommentRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo, reelRepo repositories.PostRepository, commentRepo repositories.CommentRepository, notifRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		postRepository:         postRepo,
		reelRepository:         reelRepo,
		commentRepository:      commentRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.TogglePostLike)
	g.POST("/reels/:id/like", h.ToggleReelLike)
	g.POST("/comments/:id/like", h.ToggleCommentLike)
}

// TogglePostLike toggles the caller's like on a post
func (h *LikeHandler) TogglePostLike(c echo.Context) error {
	return h.togglePost(c, h.postRepository, true)
}

// ToggleReelLike toggles the caller's like on a reel. Reel likes produce
// no notification.
func (h *LikeHandler) ToggleReelLike(c echo.Context) error {
	return h.togglePost(c, h.reelRepository, false)
}

func (h *LikeHandler) togglePost(c echo.Context, repo repositories.PostRepository, notify bool) error {
	profileID := profileIDFromContext(c)
	postID := c.Param("id")

	post, err := repo.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	liked := contains(post.Likes, profileID)
	count := len(post.Likes)

	if liked {
		if err := repo.RemoveLike(c.Request().Context(), postID, profileID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"liked": false, "likesCount": count - 1})
	}

	if err := repo.AddLike(c.Request().Context(), postID, profileID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notify the author, unless the actor is liking their own post. The
	// notification is a separate write and may be lost if we crash here.
	if notify && post.AuthorID != profileID {
		notif := &models.Notification{
			UserID:     post.AuthorID,
			FromUserID: profileID,
			Type:       models.NotificationLike,
			PostID:     postID,
		}
		if err := h.notificationRepository.CreateNotification(context.Background(), notif); err != nil {
			log.Printf("like: notification write failed for post %s: %v", postID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"liked": true, "likesCount": count + 1})
}

// ToggleCommentLike toggles the caller's like on a comment. Comment likes
// produce no notification.
func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	profileID := profileIDFromContext(c)
	commentID := c.Param("id")

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		if err == repositories.ErrCommentNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	liked := contains(comment.Likes, profileID)
	count := len(comment.Likes)

	if liked {
		if err := h.commentRepository.RemoveLike(c.Request().Context(), commentID, profileID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"liked": false, "likesCount": count - 1})
	}

	if err := h.commentRepository.AddLike(c.Request().Context(), commentID, profileID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": true, "likesCount": count + 1})
}
