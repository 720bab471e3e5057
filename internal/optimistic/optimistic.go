// Package optimistic models the update-then-reconcile pattern for a toggled
// field as an explicit two-phase state machine: a local flip is pending
// until either the write fails (roll back) or the next authoritative
// snapshot arrives (snapshot always wins).
package optimistic

// Toggle tracks the locally displayed state of one like-style toggle and
// its count.
type Toggle struct {
	value   bool
	count   int
	pending bool

	// pre-flip state, for rollback
	prevValue bool
	prevCount int
}

// NewToggle starts from the last confirmed server state.
func NewToggle(value bool, count int) *Toggle {
	return &Toggle{value: value, count: count}
}

// Flip applies the user's toggle locally before the write resolves and
// returns the new displayed state.
func (t *Toggle) Flip() (value bool, count int) {
	t.prevValue, t.prevCount = t.value, t.count
	t.value = !t.value
	if t.value {
		t.count++
	} else {
		t.count--
	}
	t.pending = true
	return t.value, t.count
}

// Fail rolls the display back to its pre-flip state. No automatic retry.
func (t *Toggle) Fail() {
	if !t.pending {
		return
	}
	t.value, t.count = t.prevValue, t.prevCount
	t.pending = false
}

// Observe reconciles against an authoritative snapshot. The snapshot always
// wins, whatever local state is pending.
func (t *Toggle) Observe(value bool, count int) {
	t.value, t.count = value, count
	t.pending = false
}

// Value returns the currently displayed toggle state.
func (t *Toggle) Value() bool { return t.value }

// Count returns the currently displayed count.
func (t *Toggle) Count() int { return t.count }

// Pending reports whether a local flip awaits confirmation.
func (t *Toggle) Pending() bool { return t.pending }
