package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TriageRecordRepository stores audit rows for scored requests.
type TriageRecordRepository interface {
	Create(ctx context.Context, record *domain.TriageRecord) error
	GetByRequestID(ctx context.Context, requestID string) (*domain.TriageRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.TriageRecord, error)
}

type triageRecordRepository struct {
	pool *pgxpool.Pool
}

// NewTriageRecordRepository builds repository.
func NewTriageRecordRepository(pool *pgxpool.Pool) TriageRecordRepository {
	return &triageRecordRepository{pool: pool}
}

func (r *triageRecordRepository) Create(ctx context.Context, record *domain.TriageRecord) error {
	const query = `
        INSERT INTO triage_records (
            request_id, severity, trade, priority_score, combined_hazard, confidence,
            tier, response_deadline, resolution_deadline,
            applied_factors, applied_interactions, calculation_trace)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.RequestID,
		record.Severity,
		record.Trade,
		record.PriorityScore,
		record.CombinedHazard,
		record.Confidence,
		record.Tier,
		record.ResponseDeadline,
		record.ResolutionDeadline,
		record.AppliedFactors,
		record.AppliedInteractions,
		record.CalculationTrace,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *triageRecordRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.TriageRecord, error) {
	const query = `
        SELECT id, request_id, severity, trade, priority_score, combined_hazard, confidence,
               tier, response_deadline, resolution_deadline,
               applied_factors, applied_interactions, calculation_trace, created_at
        FROM triage_records WHERE request_id=$1
        ORDER BY created_at DESC LIMIT 1`
	var record domain.TriageRecord
	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&record.ID,
		&record.RequestID,
		&record.Severity,
		&record.Trade,
		&record.PriorityScore,
		&record.CombinedHazard,
		&record.Confidence,
		&record.Tier,
		&record.ResponseDeadline,
		&record.ResolutionDeadline,
		&record.AppliedFactors,
		&record.AppliedInteractions,
		&record.CalculationTrace,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *triageRecordRepository) ListRecent(ctx context.Context, limit int) ([]domain.TriageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, request_id, severity, trade, priority_score, combined_hazard, confidence,
               tier, response_deadline, resolution_deadline,
               applied_factors, applied_interactions, calculation_trace, created_at
        FROM triage_records ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TriageRecord
	for rows.Next() {
		var record domain.TriageRecord
		if err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.Severity,
			&record.Trade,
			&record.PriorityScore,
			&record.CombinedHazard,
			&record.Confidence,
			&record.Tier,
			&record.ResponseDeadline,
			&record.ResolutionDeadline,
			&record.AppliedFactors,
			&record.AppliedInteractions,
			&record.CalculationTrace,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
