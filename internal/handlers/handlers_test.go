package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/buzztalks/backend/internal/middleware"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the handler tests.

type fakePostRepo struct {
	posts     map[string]*models.Post
	failLikes bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*models.Post{}}
}

func (r *fakePostRepo) add(authorID string, likes ...string) *models.Post {
	p := &models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Likes:     append([]string{}, likes...),
		CreatedAt: time.Now(),
	}
	r.posts[p.ID.Hex()] = p
	return p
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	r.posts[post.ID.Hex()] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) GetPostsByAuthor(_ context.Context, authorID string, _, _ int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) GetAllPosts(_ context.Context, _, _ int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePostRepo) GetPostsByHashtag(_ context.Context, tag string, _ int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if contains(p.Hashtags, tag) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID string) error {
	if r.failLikes {
		return fmt.Errorf("write failed")
	}
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	if !contains(p.Likes, userID) {
		p.Likes = append(p.Likes, userID)
	}
	return nil
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID string) error {
	if r.failLikes {
		return fmt.Errorf("write failed")
	}
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	out := p.Likes[:0]
	for _, u := range p.Likes {
		if u != userID {
			out = append(out, u)
		}
	}
	p.Likes = out
	return nil
}

func (r *fakePostRepo) IncrementCommentsCount(_ context.Context, postID string, delta int) error {
	if p, ok := r.posts[postID]; ok {
		p.CommentsCount += delta
	}
	return nil
}

type fakeCommentRepo struct {
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string]*models.Comment{}}
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, c *models.Comment) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	r.comments[c.ID.Hex()] = c
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) AddLike(_ context.Context, commentID, userID string) error {
	c, ok := r.comments[commentID]
	if !ok {
		return repositories.ErrCommentNotFound
	}
	if !contains(c.Likes, userID) {
		c.Likes = append(c.Likes, userID)
	}
	return nil
}

func (r *fakeCommentRepo) RemoveLike(_ context.Context, commentID, userID string) error {
	c, ok := r.comments[commentID]
	if !ok {
		return repositories.ErrCommentNotFound
	}
	out := c.Likes[:0]
	for _, u := range c.Likes {
		if u != userID {
			out = append(out, u)
		}
	}
	c.Likes = out
	return nil
}

type fakeNotificationRepo struct {
	created []models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) GetForUser(_ context.Context, userID string, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(r.created) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.created[i].UserID == userID {
			out = append(out, r.created[i])
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, notif := range r.created {
		if notif.UserID == userID && !notif.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	for i := range r.created {
		if r.created[i].ID.Hex() == id {
			r.created[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range r.created {
		if r.created[i].UserID == userID {
			r.created[i].Read = true
		}
	}
	return nil
}

type fakeFollowRepo struct {
	edges map[string]bool // followerID|followingID
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: map[string]bool{}}
}

func edgeKey(follower, following string) string { return follower + "|" + following }

func (r *fakeFollowRepo) Follow(_ context.Context, followerID, followingID string) error {
	key := edgeKey(followerID, followingID)
	if r.edges[key] {
		return repositories.ErrAlreadyFollowing
	}
	r.edges[key] = true
	return nil
}

func (r *fakeFollowRepo) Unfollow(_ context.Context, followerID, followingID string) error {
	key := edgeKey(followerID, followingID)
	if !r.edges[key] {
		return repositories.ErrFollowNotFound
	}
	delete(r.edges, key)
	return nil
}

func (r *fakeFollowRepo) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	return r.edges[edgeKey(followerID, followingID)], nil
}

func (r *fakeFollowRepo) GetFollowerIDs(_ context.Context, userID string) ([]string, error) {
	var out []string
	for key := range r.edges {
		parts := strings.SplitN(key, "|", 2)
		if parts[1] == userID {
			out = append(out, parts[0])
		}
	}
	return out, nil
}

func (r *fakeFollowRepo) GetFollowingIDs(_ context.Context, userID string) ([]string, error) {
	var out []string
	for key := range r.edges {
		parts := strings.SplitN(key, "|", 2)
		if parts[0] == userID {
			out = append(out, parts[1])
		}
	}
	return out, nil
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// newTestContext builds an authenticated echo context for userID.
func newTestContext(t *testing.T, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ProfileIDKey, userID)
	return c, rec
}
