package enrich

import (
	"context"
	"testing"

	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
)

type countingReader struct {
	profiles map[string]*models.UserProfile
	reads    int
}

func (r *countingReader) GetProfileByID(_ context.Context, userID string) (*models.UserProfile, error) {
	r.reads++
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return p, nil
}

func TestProfilesDeduplicatesReads(t *testing.T) {
	reader := &countingReader{profiles: map[string]*models.UserProfile{
		"u1": {UserID: "u1", Username: "alice"},
		"u2": {UserID: "u2", Username: "bob"},
		"u3": {UserID: "u3", Username: "carol"},
	}}
	e := New(reader)

	// 50 records by 3 distinct authors must cost 3 reads.
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, []string{"u1", "u2", "u3"}[i%3])
	}

	profiles, err := e.Profiles(context.Background(), ids)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	if reader.reads != 3 {
		t.Errorf("reads = %d, want 3", reader.reads)
	}
	if len(profiles) != 3 {
		t.Errorf("got %d profiles, want 3", len(profiles))
	}
	if profiles["u2"].Username != "bob" {
		t.Errorf("u2 = %q, want bob", profiles["u2"].Username)
	}
}

func TestProfilesSkipsMissing(t *testing.T) {
	reader := &countingReader{profiles: map[string]*models.UserProfile{
		"u1": {UserID: "u1", Username: "alice"},
	}}
	e := New(reader)

	profiles, err := e.Profiles(context.Background(), []string{"u1", "deleted", ""})
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	if _, ok := profiles["deleted"]; ok {
		t.Error("missing profile must be absent from the result, not an error")
	}
	if len(profiles) != 1 {
		t.Errorf("got %d profiles, want 1", len(profiles))
	}
}

func TestFallback(t *testing.T) {
	profiles := map[string]*models.UserProfile{
		"u1": {UserID: "u1", Username: "alice"},
	}

	if got := Fallback(profiles, "u1"); got.Username != "alice" {
		t.Errorf("existing profile: got %q", got.Username)
	}
	got := Fallback(profiles, "gone")
	if got.UserID != "gone" || got.Username != "unknown" {
		t.Errorf("fallback = %+v, want placeholder for gone", got)
	}
}

func TestAuthorIDs(t *testing.T) {
	posts := []models.Post{{AuthorID: "a"}, {AuthorID: "b"}, {AuthorID: "a"}}
	ids := AuthorIDs(posts)
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "a" {
		t.Errorf("AuthorIDs = %v", ids)
	}
}
