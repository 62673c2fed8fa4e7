package dto

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TriageRequest payload for the full scoring pipeline.
type TriageRequest struct {
	RequestID      string               `json:"request_id,omitempty"`
	Severity       domain.Severity      `json:"severity"`
	Trade          string               `json:"trade"`
	Description    string               `json:"description"`
	KeyFactors     []string             `json:"key_factors"`
	Context        domain.ContextBundle `json:"context"`
	SubmissionTime *time.Time           `json:"submission_time,omitempty"`
}

// PriorityScoreRequest payload for score-only calls.
type PriorityScoreRequest struct {
	Severity    domain.Severity      `json:"severity"`
	Trade       string               `json:"trade"`
	Description string               `json:"description"`
	KeyFactors  []string             `json:"key_factors"`
	Context     domain.ContextBundle `json:"context"`
}

// SlaRequest payload for deadline-only calls. Calendar fields override the
// configured business-hours calendar; weekdays use time.Weekday numbering
// (0=Sunday .. 6=Saturday).
type SlaRequest struct {
	PriorityScore      float64   `json:"priority_score"`
	SubmissionTime     time.Time `json:"submission_time"`
	BusinessHoursStart *int      `json:"business_hours_start,omitempty"`
	BusinessHoursEnd   *int      `json:"business_hours_end,omitempty"`
	BusinessWeekdays   []int     `json:"business_weekdays,omitempty"`
}

// TriageResponse pairs the priority result with its SLA deadlines.
type TriageResponse struct {
	RequestID string                `json:"request_id"`
	Priority  domain.PriorityResult `json:"priority"`
	Sla       domain.SlaResult      `json:"sla"`
}

// TriageRecordResponse is the persisted audit view of a scored request.
type TriageRecordResponse struct {
	ID                 string          `json:"id"`
	RequestID          string          `json:"request_id"`
	Severity           domain.Severity `json:"severity"`
	Trade              string          `json:"trade"`
	PriorityScore      float64         `json:"priority_score"`
	Confidence         float64         `json:"confidence"`
	Tier               domain.SlaTier  `json:"tier"`
	ResponseDeadline   time.Time       `json:"response_deadline"`
	ResolutionDeadline time.Time       `json:"resolution_deadline"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TokenRequest payload for client-credentials token exchange.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
