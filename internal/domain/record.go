package domain

import "time"

// TriageRecord is the persisted audit row for a scored request. Records are
// insert-only; results have no further lifecycle.
type TriageRecord struct {
	ID                  string
	RequestID           string
	Severity            Severity
	Trade               string
	PriorityScore       float64
	CombinedHazard      float64
	Confidence          float64
	Tier                SlaTier
	ResponseDeadline    time.Time
	ResolutionDeadline  time.Time
	AppliedFactors      []PriorityFactor
	AppliedInteractions []InteractionEffect
	CalculationTrace    string
	CreatedAt           time.Time
}
