package resolve

// OutcomeKind classifies a resolution outcome event.
type OutcomeKind string

// Outcome kinds emitted during a resolution pass.
const (
	// OutcomeResolved marks a cluster merged into a canonical record.
	OutcomeResolved OutcomeKind = "resolved"
	// OutcomeAmbiguous marks a cluster whose weakest pairwise link fell
	// below the threshold; transitive unions pulled it together anyway.
	OutcomeAmbiguous OutcomeKind = "ambiguous_cluster"
	// OutcomeNormalizationWarning marks a field degraded to unknown,
	// e.g. an unrecognized unit.
	OutcomeNormalizationWarning OutcomeKind = "normalization_warning"
	// OutcomeMalformedISBN marks a record excluded from ISBN-family
	// clustering because its ISBN failed validation.
	OutcomeMalformedISBN OutcomeKind = "malformed_isbn"
	// OutcomeMergeFailure marks a cluster that could not be merged.
	OutcomeMergeFailure OutcomeKind = "merge_failure"
)

// Outcome is one structured resolution event. The engine emits these for
// the reporting collaborator; it does not format or deliver them.
type Outcome struct {
	Kind     OutcomeKind `json:"kind" yaml:"kind"`
	RecordID string      `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Family   string      `json:"family,omitempty" yaml:"family,omitempty"`
	Detail   string      `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// State is the lifecycle position of a batch.
type State string

// Batch states, in order.
const (
	StateFetched    State = "fetched"
	StateNormalized State = "normalized"
	StateClustered  State = "clustered"
	StateMerged     State = "merged"
	StateReported   State = "reported"
)
