package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/priority"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/sla"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// ResultCache caches triage outcomes keyed by request identity. A miss
// returns (nil, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TriageService runs the scoring pipeline: hazard engine, SLA mapper, audit
// persistence and event publication. The engine and mapper are pure; all
// side effects live here.
type TriageService struct {
	engine     *priority.Engine
	mapper     *sla.Mapper
	records    repository.TriageRecordRepository
	cache      ResultCache
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	Engine     *priority.Engine
	Mapper     *sla.Mapper
	RecordRepo repository.TriageRecordRepository
	Cache      ResultCache
	CacheTTL   time.Duration
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// TriageInput describes one maintenance request to score.
type TriageInput struct {
	RequestID      string
	Classification domain.ClassificationResult
	Context        domain.ContextBundle
	SubmittedAt    time.Time
}

// TriageOutcome pairs the priority result with its SLA deadlines.
type TriageOutcome struct {
	RequestID string                `json:"request_id"`
	Priority  domain.PriorityResult `json:"priority"`
	Sla       domain.SlaResult      `json:"sla"`
}

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	return &TriageService{
		engine:     deps.Engine,
		mapper:     deps.Mapper,
		records:    deps.RecordRepo,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Triage scores a request and maps the score to deadlines. Identical inputs
// (same request id, classification, context and submission time) are served
// from cache when one is configured; the pipeline is deterministic, so the
// cached outcome is the one that would have been recomputed.
func (s *TriageService) Triage(ctx context.Context, input TriageInput) (*TriageOutcome, error) {
	if input.RequestID == "" {
		input.RequestID = uuid.NewString()
	}
	if input.SubmittedAt.IsZero() {
		input.SubmittedAt = time.Now().UTC()
	}

	cacheKey := cacheKeyFor(input)
	if cached := s.cachedOutcome(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	priorityResult := s.engine.Score(input.Classification, input.Context)
	slaResult := s.mapper.MapToDeadlines(priorityResult.PriorityScore, input.SubmittedAt)

	outcome := &TriageOutcome{
		RequestID: input.RequestID,
		Priority:  priorityResult,
		Sla:       slaResult,
	}

	if s.records != nil {
		record := &domain.TriageRecord{
			RequestID:           input.RequestID,
			Severity:            priorityResult.Severity,
			Trade:               input.Classification.Trade,
			PriorityScore:       priorityResult.PriorityScore,
			CombinedHazard:      priorityResult.CombinedHazard,
			Confidence:          priorityResult.Confidence,
			Tier:                slaResult.Tier,
			ResponseDeadline:    slaResult.ResponseDeadline,
			ResolutionDeadline:  slaResult.ResolutionDeadline,
			AppliedFactors:      priorityResult.AppliedFactors,
			AppliedInteractions: priorityResult.AppliedInteractions,
			CalculationTrace:    priorityResult.CalculationTrace,
		}
		if err := s.records.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.metrics.RecordTriage(string(slaResult.Tier))
	s.storeOutcome(ctx, cacheKey, outcome)
	s.publishOutcome(ctx, input.Classification.Trade, outcome)
	return outcome, nil
}

// ScorePriority runs the hazard engine alone.
func (s *TriageService) ScorePriority(classification domain.ClassificationResult, bundle domain.ContextBundle) domain.PriorityResult {
	return s.engine.Score(classification, bundle)
}

// MapDeadlines runs the SLA mapper alone against the configured calendar.
func (s *TriageService) MapDeadlines(priorityScore float64, submittedAt time.Time) domain.SlaResult {
	return s.mapper.MapToDeadlines(priorityScore, submittedAt)
}

// RecordForRequest returns the latest persisted outcome for a request id.
func (s *TriageService) RecordForRequest(ctx context.Context, requestID string) (*domain.TriageRecord, error) {
	if s.records == nil {
		return nil, apperrors.NewNotFound("triage record", nil)
	}
	record, err := s.records.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return record, nil
}

// RecentRecords lists the latest persisted triage outcomes.
func (s *TriageService) RecentRecords(ctx context.Context, limit int) ([]domain.TriageRecord, error) {
	if s.records == nil {
		return []domain.TriageRecord{}, nil
	}
	records, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func (s *TriageService) cachedOutcome(ctx context.Context, key string) *TriageOutcome {
	if s.cache == nil || key == "" {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("triage cache read failed", zap.Error(err))
		return nil
	}
	if raw == nil {
		return nil
	}
	var outcome TriageOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		s.logger.Warn("triage cache entry corrupt", zap.Error(err))
		return nil
	}
	return &outcome
}

func (s *TriageService) storeOutcome(ctx context.Context, key string, outcome *TriageOutcome) {
	if s.cache == nil || key == "" {
		return
	}
	raw, err := json.Marshal(outcome)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("triage cache write failed", zap.Error(err))
	}
}

func (s *TriageService) publishOutcome(ctx context.Context, trade string, outcome *TriageOutcome) {
	if s.dispatcher == nil {
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestTriaged,
		RequestID: outcome.RequestID,
		Payload: events.RequestTriagedPayload{
			Severity:           outcome.Priority.Severity,
			Trade:              trade,
			PriorityScore:      outcome.Priority.PriorityScore,
			Tier:               outcome.Sla.Tier,
			ResponseDeadline:   outcome.Sla.ResponseDeadline,
			ResolutionDeadline: outcome.Sla.ResolutionDeadline,
			VendorTier:         outcome.Sla.VendorTier,
		},
	})
	if outcome.Sla.Tier == domain.TierEmergency {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventEmergencyDetected,
			RequestID: outcome.RequestID,
			Payload: events.EmergencyDetectedPayload{
				PriorityScore:    outcome.Priority.PriorityScore,
				ResponseDeadline: outcome.Sla.ResponseDeadline,
			},
		})
	}
}

func (s *TriageService) publishEvent(ctx context.Context, event events.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// cacheKeyFor hashes the full request identity so retries hit the cache and
// any payload change misses it.
func cacheKeyFor(input TriageInput) string {
	payload, err := json.Marshal(struct {
		RequestID      string                      `json:"request_id"`
		Classification domain.ClassificationResult `json:"classification"`
		Context        domain.ContextBundle        `json:"context"`
		SubmittedAt    string                      `json:"submitted_at"`
	}{
		RequestID:      input.RequestID,
		Classification: input.Classification,
		Context:        input.Context,
		SubmittedAt:    input.SubmittedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return "triage:" + hex.EncodeToString(sum[:])
}
