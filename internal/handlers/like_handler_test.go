package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/buzztalks/backend/internal/models"
	"github.com/labstack/echo/v4"
)

func likeResponse(t *testing.T, body []byte) (liked bool, count int) {
	t.Helper()
	var res struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likesCount"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res.Liked, res.LikesCount
}

func TestTogglePostLikeRoundTrip(t *testing.T) {
	postRepo := newFakePostRepo()
	notifRepo := &fakeNotificationRepo{}
	h := NewLikeHandler(postRepo, newFakePostRepo(), newFakeCommentRepo(), notifRepo)

	post := postRepo.add("author", "someone-else")

	// First toggle: like.
	c, rec := newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/like", "", "viewer")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())
	if err := h.TogglePostLike(c); err != nil {
		t.Fatalf("TogglePostLike: %v", err)
	}
	liked, count := likeResponse(t, rec.Body.Bytes())
	if !liked || count != 2 {
		t.Errorf("first toggle: liked=%v count=%d, want true 2", liked, count)
	}

	// Second toggle: unlike, back to the starting count.
	c, rec = newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/like", "", "viewer")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())
	if err := h.TogglePostLike(c); err != nil {
		t.Fatalf("TogglePostLike: %v", err)
	}
	liked, count = likeResponse(t, rec.Body.Bytes())
	if liked || count != 1 {
		t.Errorf("second toggle: liked=%v count=%d, want false 1", liked, count)
	}

	// Only the like produced a notification, addressed to the author.
	if len(notifRepo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifRepo.created))
	}
	n := notifRepo.created[0]
	if n.UserID != "author" || n.FromUserID != "viewer" || n.Type != models.NotificationLike {
		t.Errorf("notification = %+v", n)
	}
}

func TestToggleReelLikeNoNotification(t *testing.T) {
	reelRepo := newFakePostRepo()
	notifRepo := &fakeNotificationRepo{}
	h := NewLikeHandler(newFakePostRepo(), reelRepo, newFakeCommentRepo(), notifRepo)

	reel := reelRepo.add("author")

	c, rec := newTestContext(t, http.MethodPost, "/reels/"+reel.ID.Hex()+"/like", "", "viewer")
	c.SetParamNames("id")
	c.SetParamValues(reel.ID.Hex())
	if err := h.ToggleReelLike(c); err != nil {
		t.Fatalf("ToggleReelLike: %v", err)
	}

	liked, count := likeResponse(t, rec.Body.Bytes())
	if !liked || count != 1 {
		t.Errorf("liked=%v count=%d, want true 1", liked, count)
	}
	// Unlike post likes, reel likes never notify the author.
	if len(notifRepo.created) != 0 {
		t.Errorf("reel likes must not notify, got %d notifications", len(notifRepo.created))
	}
}

func TestTogglePostLikeSelfNoNotification(t *testing.T) {
	postRepo := newFakePostRepo()
	notifRepo := &fakeNotificationRepo{}
	h := NewLikeHandler(postRepo, newFakePostRepo(), newFakeCommentRepo(), notifRepo)

	post := postRepo.add("author")

	c, _ := newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/like", "", "author")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())
	if err := h.TogglePostLike(c); err != nil {
		t.Fatalf("TogglePostLike: %v", err)
	}

	if len(notifRepo.created) != 0 {
		t.Errorf("liking your own post must not notify, got %d notifications", len(notifRepo.created))
	}
}

func TestTogglePostLikeNotFound(t *testing.T) {
	h := NewLikeHandler(newFakePostRepo(), newFakePostRepo(), newFakeCommentRepo(), &fakeNotificationRepo{})

	c, _ := newTestContext(t, http.MethodPost, "/posts/missing/like", "", "viewer")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.TogglePostLike(c)
	if err == nil {
		t.Fatal("expected error for missing post")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestToggleCommentLike(t *testing.T) {
	commentRepo := newFakeCommentRepo()
	notifRepo := &fakeNotificationRepo{}
	h := NewLikeHandler(newFakePostRepo(), newFakePostRepo(), commentRepo, notifRepo)

	cm := &models.Comment{PostID: "p1", AuthorID: "author", Content: "nice", Likes: []string{}}
	if err := commentRepo.CreateComment(nil, cm); err != nil {
		t.Fatal(err)
	}

	c, rec := newTestContext(t, http.MethodPost, "/comments/"+cm.ID.Hex()+"/like", "", "viewer")
	c.SetParamNames("id")
	c.SetParamValues(cm.ID.Hex())
	if err := h.ToggleCommentLike(c); err != nil {
		t.Fatalf("ToggleCommentLike: %v", err)
	}

	liked, count := likeResponse(t, rec.Body.Bytes())
	if !liked || count != 1 {
		t.Errorf("liked=%v count=%d, want true 1", liked, count)
	}
	if len(notifRepo.created) != 0 {
		t.Errorf("comment likes must not notify")
	}
}
