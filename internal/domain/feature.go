package domain

// Feature carries the outcome of an optional report enrichment. A feature
// that failed or had too little data is Unavailable and its section is
// omitted from the report.
type Feature[T any] struct {
	Value  T
	OK     bool
	Reason string
}

// Available wraps a successfully produced value
func Available[T any](v T) Feature[T] {
	return Feature[T]{Value: v, OK: true}
}

// Unavailable records why a feature has no value
func Unavailable[T any](reason string) Feature[T] {
	return Feature[T]{Reason: reason}
}
