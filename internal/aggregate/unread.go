package aggregate

import "context"

// UnreadCounter counts unread messages addressed to a recipient within one
// conversation.
type UnreadCounter interface {
	CountUnread(ctx context.Context, conversationID, recipientID string) (int64, error)
}

// SumUnread totals unread messages for the user across the given
// conversations. One count query per conversation: O(conversations),
// recomputed on every refresh of the conversation list.
func SumUnread(ctx context.Context, counter UnreadCounter, conversationIDs []string, userID string) (int64, error) {
	var total int64
	for _, id := range conversationIDs {
		n, err := counter.CountUnread(ctx, id, userID)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
