package aggregate

import (
	"context"
	"fmt"
	"testing"
)

type fakeUnreadCounter struct {
	counts map[string]int64
	calls  []string
	err    error
}

func (f *fakeUnreadCounter) CountUnread(_ context.Context, conversationID, _ string) (int64, error) {
	f.calls = append(f.calls, conversationID)
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[conversationID], nil
}

func TestSumUnread(t *testing.T) {
	counter := &fakeUnreadCounter{counts: map[string]int64{"c1": 3, "c2": 0, "c3": 7}}

	total, err := SumUnread(context.Background(), counter, []string{"c1", "c2", "c3"}, "user-1")
	if err != nil {
		t.Fatalf("SumUnread: %v", err)
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
	if len(counter.calls) != 3 {
		t.Errorf("expected one count query per conversation, got %d", len(counter.calls))
	}
}

func TestSumUnreadNoConversations(t *testing.T) {
	counter := &fakeUnreadCounter{}
	total, err := SumUnread(context.Background(), counter, nil, "user-1")
	if err != nil {
		t.Fatalf("SumUnread: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestSumUnreadPropagatesError(t *testing.T) {
	counter := &fakeUnreadCounter{err: fmt.Errorf("count failed")}
	if _, err := SumUnread(context.Background(), counter, []string{"c1"}, "user-1"); err == nil {
		t.Fatal("expected error")
	}
}
