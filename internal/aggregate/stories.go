package aggregate

import "github.com/buzztalks/backend/internal/models"

// StoryGroup is one author's active stories, newest first.
type StoryGroup struct {
	AuthorID string         `json:"authorId"`
	Stories  []models.Story `json:"stories"`
}

// GroupStoriesByAuthor buckets stories per author, preserving the order in
// which authors first appear in the input (which is recency order when the
// input is sorted newest-first).
func GroupStoriesByAuthor(stories []models.Story) []StoryGroup {
	index := make(map[string]int)
	groups := make([]StoryGroup, 0)

	for _, s := range stories {
		i, ok := index[s.AuthorID]
		if !ok {
			i = len(groups)
			index[s.AuthorID] = i
			groups = append(groups, StoryGroup{AuthorID: s.AuthorID})
		}
		groups[i].Stories = append(groups[i].Stories, s)
	}
	return groups
}
