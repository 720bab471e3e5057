package live

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestToBSON(t *testing.T) {
	now := time.Now()
	q := Query{
		Collection: "stories",
		Filters: []Filter{
			{Field: "authorId", Op: OpEq, Value: "u1"},
			{Field: "expiresAt", Op: OpGt, Value: now},
			{Field: "participants", Op: OpArrayContains, Value: "u2"},
			{Field: "read", Op: OpNe, Value: true},
		},
	}

	got := q.ToBSON()
	want := bson.M{
		"authorId":     "u1",
		"expiresAt":    bson.M{"$gt": now},
		"participants": "u2",
		"read":         bson.M{"$ne": true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToBSON = %v, want %v", got, want)
	}
}

func TestMatches(t *testing.T) {
	now := time.Now()
	doc := bson.M{
		"authorId":  "u1",
		"likes":     []string{"u2", "u3"},
		"count":     int32(4),
		"read":      false,
		"expiresAt": now.Add(time.Hour),
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"eq match", Filter{"authorId", OpEq, "u1"}, true},
		{"eq miss", Filter{"authorId", OpEq, "u9"}, false},
		{"ne match", Filter{"authorId", OpNe, "u9"}, true},
		{"ne miss", Filter{"authorId", OpNe, "u1"}, false},
		{"lt", Filter{"count", OpLt, 5}, true},
		{"lte boundary", Filter{"count", OpLte, 4}, true},
		{"gt miss", Filter{"count", OpGt, 4}, false},
		{"gte boundary", Filter{"count", OpGte, 4}, true},
		{"time gt", Filter{"expiresAt", OpGt, now}, true},
		{"time gt miss", Filter{"expiresAt", OpGt, now.Add(2 * time.Hour)}, false},
		{"array contains", Filter{"likes", OpArrayContains, "u3"}, true},
		{"array contains miss", Filter{"likes", OpArrayContains, "u1"}, false},
		{"bool eq", Filter{"read", OpEq, false}, true},
		{"missing field", Filter{"nope", OpEq, "x"}, false},
		{"missing field under ne", Filter{"nope", OpNe, "x"}, true},
		{"missing field under gt", Filter{"nope", OpGt, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{Filters: []Filter{tt.filter}}
			if got := q.Matches(doc); got != tt.want {
				t.Errorf("Matches with %+v = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

// A != filter matches documents that lack the field entirely, the way the
// server-side $ne does. An insert of such a document must therefore count as
// relevant to the subscription, not be pre-filtered.
func TestInsertWithMissingFieldRelevantUnderNe(t *testing.T) {
	q := Query{
		Collection: "messages",
		Filters:    []Filter{{Field: "read", Op: OpNe, Value: true}},
	}
	doc := bson.M{"content": "no read field yet"}

	if !q.Matches(doc) {
		t.Error("document without the field must match under !=")
	}
	if !relevant(q, "insert", doc) {
		t.Error("insert of a matching document must trigger a requery")
	}
}

func TestMatchesConjunction(t *testing.T) {
	doc := bson.M{"authorId": "u1", "read": false}
	q := Query{Filters: []Filter{
		{Field: "authorId", Op: OpEq, Value: "u1"},
		{Field: "read", Op: OpEq, Value: true},
	}}
	if q.Matches(doc) {
		t.Error("all filters must hold, not just one")
	}
}

func TestApplySortsAndLimits(t *testing.T) {
	docs := []bson.M{
		{"name": "b", "createdAt": time.Unix(200, 0), "active": true},
		{"name": "a", "createdAt": time.Unix(300, 0), "active": true},
		{"name": "c", "createdAt": time.Unix(100, 0), "active": false},
		{"name": "d", "createdAt": time.Unix(400, 0), "active": true},
	}

	q := Query{
		Filters: []Filter{{Field: "active", Op: OpEq, Value: true}},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   2,
	}

	out := q.Apply(docs)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0]["name"] != "d" || out[1]["name"] != "a" {
		t.Errorf("order = [%v, %v], want [d, a]", out[0]["name"], out[1]["name"])
	}
}

func TestApplyAscendingNoLimit(t *testing.T) {
	docs := []bson.M{
		{"n": int64(3)},
		{"n": int64(1)},
		{"n": int64(2)},
	}
	q := Query{OrderBy: "n"}
	out := q.Apply(docs)
	if out[0]["n"] != int64(1) || out[2]["n"] != int64(3) {
		t.Errorf("ascending sort broken: %v", out)
	}
}

// A story expires exactly 24h after creation: at the boundary instant the
// strict greater-than filter stops matching.
func TestStoryExpiryBoundary(t *testing.T) {
	created := time.Unix(1000, 0)
	expires := created.Add(24 * time.Hour)
	doc := bson.M{"expiresAt": expires}

	active := Query{Filters: []Filter{{Field: "expiresAt", Op: OpGt, Value: expires.Add(-time.Second)}}}
	if !active.Matches(doc) {
		t.Error("story must be visible just before expiry")
	}

	expired := Query{Filters: []Filter{{Field: "expiresAt", Op: OpGt, Value: expires}}}
	if expired.Matches(doc) {
		t.Error("story must stop matching at the expiry instant")
	}
}
