package analysis

// StageResult is either the value a stage produced or the reason it
// degraded. Stage unavailability is data, not an error: the orchestrator
// sequences on values and reasons and never unwinds.
type StageResult[T any] struct {
	value  T
	reason string
	ok     bool
}

// Ok wraps a successful stage value.
func Ok[T any](v T) StageResult[T] {
	return StageResult[T]{value: v, ok: true}
}

// Degraded records why a stage could not contribute.
func Degraded[T any](reason string) StageResult[T] {
	return StageResult[T]{reason: reason}
}

func (r StageResult[T]) OK() bool { return r.ok }

// Value returns the stage output; only meaningful when OK.
func (r StageResult[T]) Value() T { return r.value }

// Reason returns the degradation reason; empty when OK.
func (r StageResult[T]) Reason() string { return r.reason }
