package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"finanzaviz/pkg/models"
)

// ErrNotFound reports that no analysis is persisted for the client.
var ErrNotFound = errors.New("analysis not found")

// AnalysisRepository is the persistence contract the pipeline depends on:
// save/load one analysis keyed by client id.
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *models.FinancialAnalysis) error
	Load(ctx context.Context, clientID string) (*models.FinancialAnalysis, error)
}

// AnalysisRepo is the Postgres-backed implementation.
type AnalysisRepo struct{}

var _ AnalysisRepository = (*AnalysisRepo)(nil)

// NewAnalysisRepo creates a new repository instance.
func NewAnalysisRepo() *AnalysisRepo {
	return &AnalysisRepo{}
}

// Save upserts the analysis document for its client. A client holds at most
// one current analysis; a new run replaces the previous one atomically.
func (r *AnalysisRepo) Save(ctx context.Context, analysis *models.FinancialAnalysis) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO financial_analysis (client_id, analysis_id, analysis_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id)
		DO UPDATE SET
			analysis_id = EXCLUDED.analysis_id,
			analysis_json = EXCLUDED.analysis_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, analysis.ClientID, analysis.ID, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Load retrieves the persisted analysis for a client.
func (r *AnalysisRepo) Load(ctx context.Context, clientID string) (*models.FinancialAnalysis, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `SELECT analysis_json FROM financial_analysis WHERE client_id = $1;`
	err := pool.QueryRow(ctx, query, clientID).Scan(&jsonData)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var analysis models.FinancialAnalysis
	if err := json.Unmarshal(jsonData, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored analysis: %w", err)
	}
	return &analysis, nil
}
