package live

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// State describes the health of a subscription's server connection. It is
// delivered out-of-band so a stalled stream is visible to the consumer
// instead of failing silently.
type State string

// Subscription states
const (
	StateLive         State = "live"
	StateDisconnected State = "disconnected"
	StateClosed       State = "closed"
)

// SnapshotFunc receives the full, current result set of the subscribed
// query. It is invoked once immediately on subscribe and again after every
// relevant change.
type SnapshotFunc func(docs []bson.M)

// StateFunc receives connection-state transitions.
type StateFunc func(s State)

// Hub opens change-stream-backed query subscriptions against a MongoDB
// database. Subscriptions are independent: two identical queries open two
// server streams, and nothing is cached across them.
type Hub struct {
	db *mongo.Database
}

// NewHub creates a Hub over the given database.
func NewHub(db *mongo.Database) *Hub {
	return &Hub{db: db}
}

// Subscribe registers a live listener for the query. The callback fires once
// with the current matches, then after every insert, update, replace or
// delete that can affect the result set. The returned function cancels the
// subscription and must be called when the consumer goes away, or the server
// stream leaks.
//
// There is no automatic reconnect: a broken stream reports
// StateDisconnected via onState and the subscription ends.
func (h *Hub) Subscribe(ctx context.Context, q Query, onSnapshot SnapshotFunc, onState StateFunc) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	coll := h.db.Collection(q.Collection)

	// The stream must be open before the initial query runs. A write landing
	// between the two then arrives as a change event and triggers a requery;
	// in the other order it would be in neither the snapshot nor the stream.
	streamOpts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := coll.Watch(subCtx, mongo.Pipeline{}, streamOpts)
	if err != nil {
		cancel()
		return nil, err
	}

	docs, err := h.runQuery(subCtx, coll, q)
	if err != nil {
		stream.Close(context.Background())
		cancel()
		return nil, err
	}

	if onState != nil {
		onState(StateLive)
	}
	onSnapshot(docs)

	go func() {
		defer stream.Close(context.Background())

		for stream.Next(subCtx) {
			var event struct {
				OperationType string `bson:"operationType"`
				FullDocument  bson.M `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("live: subscription %s: decode event: %v", id, err)
				continue
			}
			if !relevant(q, event.OperationType, event.FullDocument) {
				continue
			}

			docs, err := h.runQuery(subCtx, coll, q)
			if err != nil {
				if subCtx.Err() != nil {
					break
				}
				log.Printf("live: subscription %s: requery: %v", id, err)
				if onState != nil {
					onState(StateDisconnected)
				}
				return
			}
			onSnapshot(docs)
		}

		if subCtx.Err() != nil {
			if onState != nil {
				onState(StateClosed)
			}
			return
		}
		if err := stream.Err(); err != nil {
			log.Printf("live: subscription %s: stream error: %v", id, err)
		}
		if onState != nil {
			onState(StateDisconnected)
		}
	}()

	return cancel, nil
}

func (h *Hub) runQuery(ctx context.Context, coll *mongo.Collection, q Query) ([]bson.M, error) {
	findOpts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		findOpts.SetLimit(int64(q.Limit))
	}

	cursor, err := coll.Find(ctx, q.ToBSON(), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}
	return docs, nil
}

// relevant decides whether a change event can alter the query's result set.
// Inserts of non-matching documents are skipped; updates, replaces and
// deletes always requery because the document may have just left the result
// set.
func relevant(q Query, opType string, fullDoc bson.M) bool {
	switch opType {
	case "insert":
		return fullDoc == nil || q.Matches(fullDoc)
	case "update", "replace", "delete", "invalidate":
		return true
	default:
		return false
	}
}
