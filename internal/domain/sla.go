package domain

import "time"

// SlaTier is the urgency bucket derived from the priority score. It is a
// distinct type from Severity: the tier is recomputed from the score and may
// disagree with the classifier's label.
type SlaTier string

const (
	TierLow       SlaTier = "LOW"
	TierMedium    SlaTier = "MEDIUM"
	TierHigh      SlaTier = "HIGH"
	TierEmergency SlaTier = "EMERGENCY"
)

// SlaResult carries binding deadlines for a scored request.
// Invariant: ResponseDeadline <= ResolutionDeadline.
type SlaResult struct {
	Tier               SlaTier   `json:"tier"`
	ResponseDeadline   time.Time `json:"response_deadline"`
	ResolutionDeadline time.Time `json:"resolution_deadline"`
	ResponseHours      int       `json:"response_hours"`
	ResolutionHours    int       `json:"resolution_hours"`
	BusinessHoursOnly  bool      `json:"business_hours_only"`
	VendorTier         string    `json:"vendor_tier"`
}
