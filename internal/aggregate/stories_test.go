package aggregate

import (
	"testing"

	"github.com/buzztalks/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGroupStoriesByAuthor(t *testing.T) {
	// Input is newest-first; alice has the freshest story but bob posted in
	// between, so groups come out [alice, bob] with alice holding two.
	stories := []models.Story{
		{ID: primitive.NewObjectID(), AuthorID: "alice"},
		{ID: primitive.NewObjectID(), AuthorID: "bob"},
		{ID: primitive.NewObjectID(), AuthorID: "alice"},
	}

	groups := GroupStoriesByAuthor(stories)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].AuthorID != "alice" || groups[1].AuthorID != "bob" {
		t.Errorf("group order = [%s, %s], want [alice, bob]", groups[0].AuthorID, groups[1].AuthorID)
	}
	if len(groups[0].Stories) != 2 {
		t.Errorf("alice should hold 2 stories, got %d", len(groups[0].Stories))
	}
	if groups[0].Stories[0].ID != stories[0].ID {
		t.Errorf("stories within a group must keep input order")
	}
}

func TestGroupStoriesByAuthorEmpty(t *testing.T) {
	groups := GroupStoriesByAuthor(nil)
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}
