// Package enrich joins referenced user profiles onto already-fetched
// records. De-duplication of point-reads is the whole point: a batch of 50
// comments by 3 authors costs 3 profile reads, not 50.
package enrich

import (
	"context"

	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
)

// ProfileReader is the single point-read the enricher needs.
type ProfileReader interface {
	GetProfileByID(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Enricher batch-fetches profiles by distinct ID.
type Enricher struct {
	reader ProfileReader
}

// New creates an Enricher over the given reader.
func New(reader ProfileReader) *Enricher {
	return &Enricher{reader: reader}
}

// Profiles fetches each distinct ID in ids exactly once and returns the
// found profiles keyed by ID. A missing profile is simply absent from the
// map; callers render fallback defaults rather than failing.
func (e *Enricher) Profiles(ctx context.Context, ids []string) (map[string]*models.UserProfile, error) {
	profiles := make(map[string]*models.UserProfile, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		profile, err := e.reader.GetProfileByID(ctx, id)
		if err != nil {
			if err == repositories.ErrProfileNotFound {
				continue
			}
			return nil, err
		}
		profiles[id] = profile
	}
	return profiles, nil
}

// AuthorIDs collects the author reference from a batch of posts.
func AuthorIDs(posts []models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	return ids
}

// Fallback returns the profile for id, or a placeholder with default
// display values when the referenced profile no longer exists.
func Fallback(profiles map[string]*models.UserProfile, id string) *models.UserProfile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return &models.UserProfile{UserID: id, Username: "unknown"}
}
