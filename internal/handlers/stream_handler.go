package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/buzztalks/backend/internal/live"
	"github.com/buzztalks/backend/internal/optimistic"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collections a client may subscribe to over the stream gateway.
var streamableCollections = map[string]bool{
	"posts":         true,
	"reels":         true,
	"comments":      true,
	"stories":       true,
	"notifications": true,
	"conversations": true,
	"messages":      true,
}

// StreamHandler is the WebSocket gateway for live query subscriptions and
// optimistic like toggles. Each connection owns its subscriptions and its
// toggle state; nothing is shared across connections.
type StreamHandler struct {
	hub            *live.Hub
	postRepository repositories.PostRepository
	reelRepository repositories.PostRepository
	upgrader       websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(hub *live.Hub, postRepo, reelRepo repositories.PostRepository) *StreamHandler {
	return &StreamHandler{
		hub:            hub,
		postRepository: postRepo,
		reelRepository: reelRepo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterStreamRoutes registers the WebSocket endpoint
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/ws", h.Stream)
}

type clientFrame struct {
	Type       string      `json:"type"`
	ID         string      `json:"id,omitempty"`
	Query      *queryFrame `json:"query,omitempty"`
	Collection string      `json:"collection,omitempty"`
	DocID      string      `json:"docId,omitempty"`
}

type queryFrame struct {
	Collection string        `json:"collection"`
	Filters    []filterFrame `json:"filters"`
	OrderBy    string        `json:"orderBy"`
	Desc       bool          `json:"desc"`
	Limit      int           `json:"limit"`
}

type filterFrame struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

type serverFrame struct {
	Type       string   `json:"type"`
	ID         string   `json:"id,omitempty"`
	Docs       []bson.M `json:"docs,omitempty"`
	State      string   `json:"state,omitempty"`
	Collection string   `json:"collection,omitempty"`
	DocID      string   `json:"docId,omitempty"`
	Liked      *bool    `json:"liked,omitempty"`
	LikesCount *int     `json:"likesCount,omitempty"`
	Pending    *bool    `json:"pending,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// streamSession is the per-connection state: open subscriptions keyed by the
// client-chosen id, and like toggles keyed by collection/docId.
type streamSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	userID  string

	mu      sync.Mutex
	subs    map[string]func()
	toggles map[string]*optimistic.Toggle
}

func (s *streamSession) send(f serverFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(f); err != nil {
		log.Printf("stream: write failed for user %s: %v", s.userID, err)
	}
}

func (s *streamSession) close() {
	s.mu.Lock()
	for _, cancel := range s.subs {
		cancel()
	}
	s.subs = map[string]func(){}
	s.mu.Unlock()
}

// Stream upgrades the request and serves the frame protocol until the client
// disconnects. Disconnect cancels every subscription the connection opened.
func (h *StreamHandler) Stream(c echo.Context) error {
	profileID := profileIDFromContext(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sess := &streamSession{
		conn:    conn,
		userID:  profileID,
		subs:    map[string]func(){},
		toggles: map[string]*optimistic.Toggle{},
	}
	defer func() {
		sess.close()
		conn.Close()
	}()

	ctx := c.Request().Context()
	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("stream: read failed for user %s: %v", profileID, err)
			}
			return nil
		}

		switch frame.Type {
		case "subscribe":
			h.handleSubscribe(ctx, sess, frame)
		case "unsubscribe":
			sess.mu.Lock()
			if cancel, ok := sess.subs[frame.ID]; ok {
				cancel()
				delete(sess.subs, frame.ID)
			}
			sess.mu.Unlock()
		case "like":
			h.handleLike(ctx, sess, frame)
		default:
			sess.send(serverFrame{Type: "error", ID: frame.ID, Message: "unknown frame type"})
		}
	}
}

func (h *StreamHandler) handleSubscribe(ctx context.Context, sess *streamSession, frame clientFrame) {
	if frame.ID == "" || frame.Query == nil {
		sess.send(serverFrame{Type: "error", ID: frame.ID, Message: "subscribe requires id and query"})
		return
	}
	if !streamableCollections[frame.Query.Collection] {
		sess.send(serverFrame{Type: "error", ID: frame.ID, Message: "collection not streamable"})
		return
	}

	q := live.Query{
		Collection: frame.Query.Collection,
		OrderBy:    frame.Query.OrderBy,
		Desc:       frame.Query.Desc,
		Limit:      frame.Query.Limit,
	}
	for _, f := range frame.Query.Filters {
		q.Filters = append(q.Filters, live.Filter{Field: f.Field, Op: live.Op(f.Op), Value: f.Value})
	}

	id := frame.ID
	collection := frame.Query.Collection
	cancel, err := h.hub.Subscribe(ctx, q,
		func(docs []bson.M) {
			sess.reconcileToggles(collection, docs)
			sess.send(serverFrame{Type: "snapshot", ID: id, Docs: docs})
		},
		func(s live.State) {
			sess.send(serverFrame{Type: "state", ID: id, State: string(s)})
		},
	)
	if err != nil {
		sess.send(serverFrame{Type: "error", ID: id, Message: err.Error()})
		return
	}

	sess.mu.Lock()
	if old, ok := sess.subs[id]; ok {
		old()
	}
	sess.subs[id] = cancel
	sess.mu.Unlock()
}

// handleLike flips a like optimistically, echoes the pending state to the
// client, then performs the write. A failed write rolls back and re-echoes.
// A later snapshot covering the document overrides both.
func (h *StreamHandler) handleLike(ctx context.Context, sess *streamSession, frame clientFrame) {
	var repo repositories.PostRepository
	switch frame.Collection {
	case "posts":
		repo = h.postRepository
	case "reels":
		repo = h.reelRepository
	default:
		sess.send(serverFrame{Type: "error", Message: "like target must be posts or reels"})
		return
	}

	key := frame.Collection + "/" + frame.DocID

	sess.mu.Lock()
	toggle, ok := sess.toggles[key]
	sess.mu.Unlock()
	if !ok {
		post, err := repo.GetPostByID(ctx, frame.DocID)
		if err != nil {
			sess.send(serverFrame{Type: "error", Message: "like target not found"})
			return
		}
		toggle = optimistic.NewToggle(contains(post.Likes, sess.userID), len(post.Likes))
		sess.mu.Lock()
		sess.toggles[key] = toggle
		sess.mu.Unlock()
	}

	liked, count := toggle.Flip()
	sess.send(likeFrame(frame.Collection, frame.DocID, liked, count, true))

	var err error
	if liked {
		err = repo.AddLike(ctx, frame.DocID, sess.userID)
	} else {
		err = repo.RemoveLike(ctx, frame.DocID, sess.userID)
	}
	if err != nil {
		toggle.Fail()
		sess.send(likeFrame(frame.Collection, frame.DocID, toggle.Value(), toggle.Count(), false))
		return
	}
	sess.send(likeFrame(frame.Collection, frame.DocID, liked, count, false))
}

// reconcileToggles folds an authoritative snapshot into any like toggles it
// covers. The snapshot wins over pending local state.
func (s *streamSession) reconcileToggles(collection string, docs []bson.M) {
	if collection != "posts" && collection != "reels" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.toggles) == 0 {
		return
	}

	for _, doc := range docs {
		id, ok := doc["_id"].(primitive.ObjectID)
		if !ok {
			continue
		}
		toggle, ok := s.toggles[collection+"/"+id.Hex()]
		if !ok {
			continue
		}
		likes := likeSet(doc["likes"])
		liked := false
		for _, u := range likes {
			if u == s.userID {
				liked = true
				break
			}
		}
		toggle.Observe(liked, len(likes))
	}
}

func likeSet(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case bson.A:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func likeFrame(collection, docID string, liked bool, count int, pending bool) serverFrame {
	return serverFrame{
		Type:       "like",
		Collection: collection,
		DocID:      docID,
		Liked:      &liked,
		LikesCount: &count,
		Pending:    &pending,
	}
}
