// Package registry keeps the client roster in a local SQLite database.
// Registration data is immutable once written; only the last-analysis
// timestamp is updated, when an analysis run completes.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"finanzaviz/pkg/models"
)

// ErrNotFound reports an unknown client id.
var ErrNotFound = errors.New("client not found")

// ClientStore is the client-registry contract the pipeline and handlers
// depend on.
type ClientStore interface {
	Register(ctx context.Context, c models.Client) (models.Client, error)
	Get(ctx context.Context, id string) (models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	TouchLastAnalysis(ctx context.Context, id, date string) error
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id                 TEXT PRIMARY KEY,
	razao_social       TEXT NOT NULL,
	nome_fantasia      TEXT NOT NULL,
	cnpj               TEXT NOT NULL,
	cnae               TEXT NOT NULL,
	last_analysis_date TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore implements ClientStore on a single-file SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ ClientStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the registry database at dbFile.
func NewSQLiteStore(dbFile string) (*SQLiteStore, error) {
	absPath, err := filepath.Abs(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply registry schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Register stores a new client. An empty id gets a generated one.
func (s *SQLiteStore) Register(ctx context.Context, c models.Client) (models.Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO clients (id, razao_social, nome_fantasia, cnpj, cnae, last_analysis_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.RazaoSocial, c.NomeFantasia, c.CNPJ, c.CNAE, c.LastAnalysisDate)
	if err != nil {
		return models.Client{}, fmt.Errorf("failed to register client: %w", err)
	}
	return c, nil
}

// Get looks up one client by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (models.Client, error) {
	var c models.Client
	query := `SELECT id, razao_social, nome_fantasia, cnpj, cnae, last_analysis_date FROM clients WHERE id = $1`
	err := s.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, ErrNotFound
	}
	if err != nil {
		return models.Client{}, fmt.Errorf("failed to load client: %w", err)
	}
	return c, nil
}

// List returns every registered client, newest registration last.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	query := `SELECT id, razao_social, nome_fantasia, cnpj, cnae, last_analysis_date FROM clients ORDER BY rowid`
	if err := s.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// TouchLastAnalysis records the completion date of the latest analysis run.
func (s *SQLiteStore) TouchLastAnalysis(ctx context.Context, id, date string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE clients SET last_analysis_date = $1 WHERE id = $2`, date, id)
	if err != nil {
		return fmt.Errorf("failed to update last analysis date: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
