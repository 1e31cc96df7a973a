package domain

type Status string

const (
	StatusUnknown  Status = "UNKNOWN"
	StatusHealthy  Status = "HEALTHY"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// Rule is one threshold predicate in a stream's classification table.
type Rule[R any] struct {
	Status Status
	Match  func(r R) bool
}

// Classify evaluates rules in order and returns the status of the first
// match. Tables list critical rules first so the highest severity wins when
// several conditions hold at once. A reading matching no rule is healthy.
func Classify[R any](rules []Rule[R], r R) Status {
	for _, rule := range rules {
		if rule.Match(r) {
			return rule.Status
		}
	}
	return StatusHealthy
}
