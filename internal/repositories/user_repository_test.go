package repositories

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func searchPattern(t *testing.T, filter bson.M, field string) string {
	t.Helper()
	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("filter shape: %v", filter)
	}
	for _, clause := range or {
		m := clause.(bson.M)
		if cond, ok := m[field]; ok {
			return cond.(bson.M)["$regex"].(string)
		}
	}
	t.Fatalf("no %s clause in %v", field, filter)
	return ""
}

func TestSearchFilterQuotesMetacharacters(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"alice", "alice"},
		{"a.c", `a\.c`},
		{"(", `\(`},
		{"go+lang*", `go\+lang\*`},
	}

	for _, tt := range tests {
		filter := searchFilter(tt.query)
		if got := searchPattern(t, filter, "username"); got != tt.want {
			t.Errorf("searchFilter(%q) username pattern = %q, want %q", tt.query, got, tt.want)
		}
		if got := searchPattern(t, filter, "bio"); got != tt.want {
			t.Errorf("searchFilter(%q) bio pattern = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSearchFilterCaseInsensitive(t *testing.T) {
	filter := searchFilter("Alice")
	or := filter["$or"].(bson.A)
	for _, clause := range or {
		for _, cond := range clause.(bson.M) {
			if opts := cond.(bson.M)["$options"]; opts != "i" {
				t.Errorf("$options = %v, want i", opts)
			}
		}
	}
}
