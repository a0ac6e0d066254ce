package filters

import "net/url"

// Resolution is the outcome of resolving a listing request against the
// filter set stored for the session.
type Resolution[F any] struct {
	// Active is the filter set to apply to this request.
	Active F
	// Next is the set to store for the session; nil means remove it.
	Next *F
	// Cleared is true when the request asked to reset the stored filters.
	Cleared bool
	// Changed is true when Next differs from what was passed in as stored.
	Changed bool
}

// Resolve applies the session filter rules:
//   - a non-empty "clear" parameter drops the stored set and yields the zero set;
//   - any other query parameter replaces the stored set with one parsed from q;
//   - a bare request reuses the stored set, or the zero set when none exists.
func Resolve[F any](q url.Values, stored *F, parse func(url.Values) F) Resolution[F] {
	var zero F

	if q.Get("clear") != "" {
		return Resolution[F]{Active: zero, Cleared: true, Changed: stored != nil}
	}

	if len(q) > 0 {
		f := parse(q)
		return Resolution[F]{Active: f, Next: &f, Changed: true}
	}

	if stored == nil {
		return Resolution[F]{Active: zero}
	}
	return Resolution[F]{Active: *stored, Next: stored}
}
