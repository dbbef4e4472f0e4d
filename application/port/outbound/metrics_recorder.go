package outbound

// Outcome labels reported to MetricsRecorder.
const (
	OutcomeSuccess   = "success"
	OutcomeForbidden = "forbidden"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
	OutcomeBlocked   = "blocked"
)

type MetricsRecorder interface {
	AuthAttempt(outcome string)
	Mutation(table, action, outcome string)
	PersistenceFailure()
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) AuthAttempt(string)              {}
func (NopMetrics) Mutation(string, string, string) {}
func (NopMetrics) PersistenceFailure()             {}
