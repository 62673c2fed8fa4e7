package handlers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/sla"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// TriageHandler exposes the scoring pipeline endpoints.
type TriageHandler struct {
	service         *service.TriageService
	defaultCalendar sla.BusinessCalendar
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triageService *service.TriageService, calendar sla.BusinessCalendar) *TriageHandler {
	return &TriageHandler{service: triageService, defaultCalendar: calendar}
}

// Triage POST /v1/triage.
func (h *TriageHandler) Triage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Severity == "" || strings.TrimSpace(req.Trade) == "" {
		return apperrors.NewValidationError("severity and trade required", nil)
	}

	input := service.TriageInput{
		RequestID: req.RequestID,
		Classification: domain.ClassificationResult{
			Severity:    req.Severity,
			Trade:       req.Trade,
			Description: req.Description,
			KeyFactors:  req.KeyFactors,
		},
		Context: req.Context,
	}
	if req.SubmissionTime != nil {
		input.SubmittedAt = *req.SubmissionTime
	}

	outcome, err := h.service.Triage(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": triageResponse(outcome)})
}

// ScorePriority POST /v1/priority/score.
func (h *TriageHandler) ScorePriority(c *fiber.Ctx) error {
	var req dto.PriorityScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Severity == "" || strings.TrimSpace(req.Trade) == "" {
		return apperrors.NewValidationError("severity and trade required", nil)
	}

	result := h.service.ScorePriority(domain.ClassificationResult{
		Severity:    req.Severity,
		Trade:       req.Trade,
		Description: req.Description,
		KeyFactors:  req.KeyFactors,
	}, req.Context)
	return c.JSON(fiber.Map{"data": result})
}

// MapDeadlines POST /v1/sla/deadlines.
func (h *TriageHandler) MapDeadlines(c *fiber.Ctx) error {
	var req dto.SlaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if math.IsNaN(req.PriorityScore) || math.IsInf(req.PriorityScore, 0) {
		return apperrors.NewValidationError("priority_score must be a finite number", nil)
	}
	if req.SubmissionTime.IsZero() {
		return apperrors.NewValidationError("submission_time required", nil)
	}

	if !hasCalendarOverride(req) {
		return c.JSON(fiber.Map{"data": h.service.MapDeadlines(req.PriorityScore, req.SubmissionTime)})
	}

	calendar := h.defaultCalendar
	if req.BusinessHoursStart != nil {
		calendar.StartHour = *req.BusinessHoursStart
	}
	if req.BusinessHoursEnd != nil {
		calendar.EndHour = *req.BusinessHoursEnd
	}
	if len(req.BusinessWeekdays) > 0 {
		weekdays := make([]time.Weekday, 0, len(req.BusinessWeekdays))
		for _, day := range req.BusinessWeekdays {
			weekdays = append(weekdays, time.Weekday(day))
		}
		calendar.Weekdays = weekdays
	}

	mapper, err := sla.NewMapper(calendar)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": mapper.MapToDeadlines(req.PriorityScore, req.SubmissionTime)})
}

// GetRecord GET /v1/triage/records/:request_id.
func (h *TriageHandler) GetRecord(c *fiber.Ctx) error {
	requestID := c.Params("request_id")
	if requestID == "" {
		return apperrors.NewValidationError("request_id required", nil)
	}
	record, err := h.service.RecordForRequest(c.Context(), requestID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recordResponse(record)})
}

// ListRecords GET /v1/triage/records.
func (h *TriageHandler) ListRecords(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	records, err := h.service.RecentRecords(c.Context(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.TriageRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, recordResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func hasCalendarOverride(req dto.SlaRequest) bool {
	return req.BusinessHoursStart != nil || req.BusinessHoursEnd != nil || len(req.BusinessWeekdays) > 0
}

func triageResponse(outcome *service.TriageOutcome) dto.TriageResponse {
	return dto.TriageResponse{
		RequestID: outcome.RequestID,
		Priority:  outcome.Priority,
		Sla:       outcome.Sla,
	}
}

func recordResponse(record *domain.TriageRecord) dto.TriageRecordResponse {
	return dto.TriageRecordResponse{
		ID:                 record.ID,
		RequestID:          record.RequestID,
		Severity:           record.Severity,
		Trade:              record.Trade,
		PriorityScore:      record.PriorityScore,
		Confidence:         record.Confidence,
		Tier:               record.Tier,
		ResponseDeadline:   record.ResponseDeadline,
		ResolutionDeadline: record.ResolutionDeadline,
		CreatedAt:          record.CreatedAt,
	}
}
