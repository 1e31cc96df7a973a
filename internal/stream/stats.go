package stream

import "subzero-monitor/telemetry/internal/domain"

// Field declares one numeric metric tracked for a stream's rolling
// aggregates.
type Field[R any] struct {
	Name  string
	Value func(r R) float64
}

// ComputeStats recomputes avg/min/max for every declared field over the full
// history. An empty history yields zero values for every field, never NaN.
// Full recompute is fine at the current buffer bound; revisit with an
// eviction-aware running aggregate if the capacity ever grows.
func ComputeStats[R any](history []R, fields []Field[R]) map[string]domain.FieldStats {
	stats := make(map[string]domain.FieldStats, len(fields))
	for _, f := range fields {
		var s domain.FieldStats
		if len(history) > 0 {
			first := f.Value(history[0])
			s.Min, s.Max = first, first
			sum := first
			for _, r := range history[1:] {
				v := f.Value(r)
				sum += v
				if v < s.Min {
					s.Min = v
				}
				if v > s.Max {
					s.Max = v
				}
			}
			s.Avg = sum / float64(len(history))
		}
		stats[f.Name] = s
	}
	return stats
}
