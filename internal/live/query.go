package live

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op is a filter operator. The set mirrors what the document store's query
// surface offers.
type Op string

// Supported filter operators
const (
	OpEq            Op = "=="
	OpNe            Op = "!="
	OpLt            Op = "<"
	OpLte           Op = "<="
	OpGt            Op = ">"
	OpGte           Op = ">="
	OpArrayContains Op = "array-contains"
)

// Filter is a single field condition.
type Filter struct {
	Field string      `json:"field"`
	Op    Op          `json:"op"`
	Value interface{} `json:"value"`
}

// Query describes a server-side query: collection, conjunctive filters,
// optional ordering and an optional limit. A Query both translates to a
// MongoDB filter and evaluates in memory, so a subscription can judge the
// relevance of a change event without a round trip.
type Query struct {
	Collection string   `json:"collection"`
	Filters    []Filter `json:"filters,omitempty"`
	OrderBy    string   `json:"orderBy,omitempty"`
	Desc       bool     `json:"desc,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// ToBSON translates the filters into a MongoDB filter document.
func (q Query) ToBSON() bson.M {
	filter := bson.M{}
	for _, f := range q.Filters {
		switch f.Op {
		case OpEq, OpArrayContains:
			// equality against an array field is membership in MongoDB
			filter[f.Field] = f.Value
		case OpNe:
			filter[f.Field] = bson.M{"$ne": f.Value}
		case OpLt:
			filter[f.Field] = bson.M{"$lt": f.Value}
		case OpLte:
			filter[f.Field] = bson.M{"$lte": f.Value}
		case OpGt:
			filter[f.Field] = bson.M{"$gt": f.Value}
		case OpGte:
			filter[f.Field] = bson.M{"$gte": f.Value}
		}
	}
	return filter
}

// Matches reports whether a single document satisfies every filter.
//
// A document lacking the filtered field matches only under !=. That mirrors
// the server: $ne matches documents where the field is absent, every other
// operator does not. Matches must agree with what the Find would return, or
// the hub would pre-filter inserts the server-side query includes.
func (q Query) Matches(doc bson.M) bool {
	for _, f := range q.Filters {
		fieldVal, ok := doc[f.Field]
		if !ok {
			if f.Op == OpNe {
				continue
			}
			return false
		}
		switch f.Op {
		case OpEq:
			if compare(fieldVal, f.Value) != 0 {
				return false
			}
		case OpNe:
			if compare(fieldVal, f.Value) == 0 {
				return false
			}
		case OpLt:
			if compare(fieldVal, f.Value) >= 0 {
				return false
			}
		case OpLte:
			if compare(fieldVal, f.Value) > 0 {
				return false
			}
		case OpGt:
			if compare(fieldVal, f.Value) <= 0 {
				return false
			}
		case OpGte:
			if compare(fieldVal, f.Value) < 0 {
				return false
			}
		case OpArrayContains:
			if !arrayContains(fieldVal, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Apply filters, orders and limits a document set in memory, producing the
// same result the server-side query would.
func (q Query) Apply(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// compare orders two scalar values of the kinds that appear in documents:
// strings, times and numbers. Unequal but unordered values compare as 1 so
// equality checks still work.
func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0
			}
			if !av {
				return -1
			}
			return 1
		}
	case time.Time:
		if bt, ok := asTime(b); ok {
			at := av
			if at.Before(bt) {
				return -1
			}
			if at.After(bt) {
				return 1
			}
			return 0
		}
	case primitive.DateTime:
		return compare(av.Time(), b)
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(av.Hex(), bv.Hex())
		}
		if bv, ok := b.(string); ok {
			return strings.Compare(av.Hex(), bv)
		}
	}
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			if af < bf {
				return -1
			}
			if af > bf {
				return 1
			}
			return 0
		}
	}
	if a == b {
		return 0
	}
	return 1
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func arrayContains(field, value interface{}) bool {
	switch arr := field.(type) {
	case []string:
		for _, v := range arr {
			if compare(v, value) == 0 {
				return true
			}
		}
	case []interface{}:
		for _, v := range arr {
			if compare(v, value) == 0 {
				return true
			}
		}
	case bson.A:
		for _, v := range arr {
			if compare(v, value) == 0 {
				return true
			}
		}
	}
	return false
}
