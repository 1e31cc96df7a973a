package stream

// Append returns a new history slice with r appended, evicting the oldest
// entries when the result would exceed capacity. The input slice is never
// mutated; appends are strictly sequential per stream so no ordering
// tie-break is needed.
func Append[R any](history []R, r R, capacity int) []R {
	if capacity <= 0 {
		return nil
	}
	if drop := len(history) + 1 - capacity; drop > 0 {
		history = history[drop:]
	}
	out := make([]R, 0, len(history)+1)
	out = append(out, history...)
	return append(out, r)
}
