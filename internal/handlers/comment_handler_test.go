package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/models"
	"github.com/labstack/echo/v4"
)

func newCommentHandler(postRepo *fakePostRepo, commentRepo *fakeCommentRepo, notifRepo *fakeNotificationRepo) *CommentHandler {
	return NewCommentHandler(commentRepo, postRepo, notifRepo, enrich.New(noProfiles{}))
}

func TestCreateCommentFanOut(t *testing.T) {
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	notifRepo := &fakeNotificationRepo{}
	h := newCommentHandler(postRepo, commentRepo, notifRepo)

	post := postRepo.add("author")

	c, rec := newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/comments", `{"content":"great shot"}`, "viewer")
	c.SetParamNames("post_id")
	c.SetParamValues(post.ID.Hex())
	if err := h.CreateComment(c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	stored, _ := postRepo.GetPostByID(nil, post.ID.Hex())
	if stored.CommentsCount != 1 {
		t.Errorf("commentsCount = %d, want 1", stored.CommentsCount)
	}

	if len(notifRepo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifRepo.created))
	}
	n := notifRepo.created[0]
	if n.UserID != "author" || n.Type != models.NotificationComment || n.Content != "great shot" {
		t.Errorf("notification = %+v", n)
	}
}

func TestCreateCommentNotificationTruncatesOnRuneBoundary(t *testing.T) {
	postRepo := newFakePostRepo()
	notifRepo := &fakeNotificationRepo{}
	h := newCommentHandler(postRepo, newFakeCommentRepo(), notifRepo)

	post := postRepo.add("author")

	// 120 two-byte runes: a byte-boundary cut at 100 would split one.
	content := strings.Repeat("é", 120)
	c, _ := newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/comments",
		`{"content":"`+content+`"}`, "viewer")
	c.SetParamNames("post_id")
	c.SetParamValues(post.ID.Hex())
	if err := h.CreateComment(c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if len(notifRepo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifRepo.created))
	}
	got := notifRepo.created[0].Content
	if !utf8.ValidString(got) {
		t.Errorf("notification content is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("notification content runes = %d, want 100", n)
	}
}

func TestCreateCommentOnOwnPostNoNotification(t *testing.T) {
	postRepo := newFakePostRepo()
	notifRepo := &fakeNotificationRepo{}
	h := newCommentHandler(postRepo, newFakeCommentRepo(), notifRepo)

	post := postRepo.add("author")

	c, _ := newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/comments", `{"content":"my own note"}`, "author")
	c.SetParamNames("post_id")
	c.SetParamValues(post.ID.Hex())
	if err := h.CreateComment(c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if len(notifRepo.created) != 0 {
		t.Errorf("commenting your own post must not notify")
	}
}

func TestCreateReplyNestingRejected(t *testing.T) {
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	h := newCommentHandler(postRepo, commentRepo, &fakeNotificationRepo{})

	post := postRepo.add("author")

	top := &models.Comment{PostID: post.ID.Hex(), AuthorID: "u1", Content: "top", Likes: []string{}}
	commentRepo.CreateComment(nil, top)
	reply := &models.Comment{PostID: post.ID.Hex(), AuthorID: "u2", Content: "reply", ParentID: top.ID.Hex(), Likes: []string{}}
	commentRepo.CreateComment(nil, reply)

	// Replying to a reply must be rejected: threading is one level deep.
	c, _ := newTestContext(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/comments",
		`{"content":"nested","parentId":"`+reply.ID.Hex()+`"}`, "u3")
	c.SetParamNames("post_id")
	c.SetParamValues(post.ID.Hex())

	err := h.CreateComment(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("nested reply should be 400, got %v", err)
	}
}

func TestGetCommentsThreaded(t *testing.T) {
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	h := newCommentHandler(postRepo, commentRepo, &fakeNotificationRepo{})

	post := postRepo.add("author")
	top := &models.Comment{PostID: post.ID.Hex(), AuthorID: "u1", Content: "top", Likes: []string{}}
	commentRepo.CreateComment(nil, top)
	reply := &models.Comment{PostID: post.ID.Hex(), AuthorID: "u2", Content: "reply", ParentID: top.ID.Hex(), Likes: []string{}}
	commentRepo.CreateComment(nil, reply)

	c, rec := newTestContext(t, http.MethodGet, "/posts/"+post.ID.Hex()+"/comments", "", "viewer")
	c.SetParamNames("post_id")
	c.SetParamValues(post.ID.Hex())
	if err := h.GetCommentsByPostID(c); err != nil {
		t.Fatalf("GetCommentsByPostID: %v", err)
	}

	var threads []EnrichedThread
	if err := json.Unmarshal(rec.Body.Bytes(), &threads); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("threads = %d, want 1", len(threads))
	}
	if len(threads[0].Replies) != 1 || threads[0].Replies[0].Content != "reply" {
		t.Errorf("reply not nested under its parent: %+v", threads[0])
	}
	// Author missing from the store still renders a placeholder.
	if threads[0].Author == nil || threads[0].Author.Username != "unknown" {
		t.Errorf("missing author must fall back, got %+v", threads[0].Author)
	}
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	h := newCommentHandler(postRepo, commentRepo, &fakeNotificationRepo{})

	post := postRepo.add("author")
	cm := &models.Comment{PostID: post.ID.Hex(), AuthorID: "u1", Content: "mine", Likes: []string{}}
	commentRepo.CreateComment(nil, cm)

	c, _ := newTestContext(t, http.MethodDelete, "/comments/"+cm.ID.Hex(), "", "intruder")
	c.SetParamNames("id")
	c.SetParamValues(cm.ID.Hex())
	err := h.DeleteComment(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusForbidden {
		t.Errorf("foreign delete should be 403, got %v", err)
	}

	c, _ = newTestContext(t, http.MethodDelete, "/comments/"+cm.ID.Hex(), "", "u1")
	c.SetParamNames("id")
	c.SetParamValues(cm.ID.Hex())
	if err := h.DeleteComment(c); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if _, err := commentRepo.GetCommentByID(nil, cm.ID.Hex()); err == nil {
		t.Error("comment should be gone")
	}
}
