package models

type OutcomeKind int

const (
	OutcomeInserted OutcomeKind = iota + 1
	OutcomeUpdated
	OutcomeDeadLettered
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDeadLettered:
		return "dead_lettered"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of one resource: stored (inserted or
// updated) or dead-lettered with a reason.
type Outcome struct {
	Kind    OutcomeKind
	Reason  DeadLetterReason
	Details []string
}

func (o Outcome) Stored() bool {
	return o.Kind == OutcomeInserted || o.Kind == OutcomeUpdated
}
