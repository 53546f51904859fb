package reconcile

// Record is an entity the reconciler can correlate by id and compare by value.
type Record[T any] interface {
	Key() string
	Equal(other T) bool
}

// Changes is the outcome of diffing one collection.
type Changes[T any] struct {
	// Upserts are records of next whose id is new, plus, when updates are
	// tracked, records whose value changed.
	Upserts []T
	// Removed are ids of prev that next no longer has.
	Removed []string
}

func (c Changes[T]) Empty() bool {
	return len(c.Upserts) == 0 && len(c.Removed) == 0
}

// Diff correlates prev and next by id. With trackUpdates false an id present
// on both sides is assumed unchanged. An id is never in both Upserts and
// Removed: removal requires absence from next.
func Diff[T Record[T]](prev, next []T, trackUpdates bool) Changes[T] {
	old := make(map[string]T, len(prev))
	for _, p := range prev {
		old[p.Key()] = p
	}

	var ch Changes[T]
	present := make(map[string]struct{}, len(next))
	for _, n := range next {
		present[n.Key()] = struct{}{}
		o, existed := old[n.Key()]
		switch {
		case !existed:
			ch.Upserts = append(ch.Upserts, n)
		case trackUpdates && !o.Equal(n):
			ch.Upserts = append(ch.Upserts, n)
		}
	}

	for _, p := range prev {
		if _, ok := present[p.Key()]; !ok {
			ch.Removed = append(ch.Removed, p.Key())
		}
	}
	return ch
}

// sameSlice reports whether next is the very slice value prev was: same
// backing array and length. Callers that change a collection must build a
// new slice; a slice edited in place is treated as unchanged.
func sameSlice[T any](prev, next []T) bool {
	if len(prev) != len(next) {
		return false
	}
	if len(prev) == 0 {
		return true
	}
	return &prev[0] == &next[0]
}
