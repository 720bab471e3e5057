package aggregate

import "github.com/buzztalks/backend/internal/models"

// Thread is a top-level comment with its direct replies. Rendering nests
// replies exactly one level under their parent, whatever depth the stored
// parent chain claims.
type Thread struct {
	Comment models.Comment   `json:"comment"`
	Replies []models.Comment `json:"replies"`
}

// ThreadComments partitions a flat, chronologically ordered comment list
// into top-level threads. A reply is grouped under the comment its ParentID
// names and appears nowhere else; replies referencing a missing parent are
// dropped.
func ThreadComments(comments []models.Comment) []Thread {
	replies := make(map[string][]models.Comment)
	for _, c := range comments {
		if c.ParentID != "" {
			replies[c.ParentID] = append(replies[c.ParentID], c)
		}
	}

	threads := make([]Thread, 0, len(comments))
	for _, c := range comments {
		if c.ParentID != "" {
			continue
		}
		threads = append(threads, Thread{
			Comment: c,
			Replies: replies[c.ID.Hex()],
		})
	}
	return threads
}
