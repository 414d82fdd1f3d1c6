package deal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/property-finance/internal/analysis"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps deals in a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("deal store path must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create deal store directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open deal store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("opened deal store",
		zap.String("op", "deal.NewSQLiteStore"),
		zap.String("path", path),
	)
	return &SQLiteStore{db: db, path: path, now: time.Now, logger: logger}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS deals (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS deal_calculations (
			deal_id TEXT NOT NULL,
			calculator TEXT NOT NULL,
			inputs_json TEXT NOT NULL,
			metrics_json TEXT NOT NULL,
			analysis_json TEXT,
			saved_at INTEGER NOT NULL,
			PRIMARY KEY (deal_id, calculator)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to prepare deal store schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, profile Profile) (*Profile, error) {
	p, err := prepare(profile, s.now().UTC())
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (id, name, address, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Address, p.Notes, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}
	s.logger.Debug("created deal",
		zap.String("op", "deal.SQLiteStore.Create"),
		zap.String("id", p.ID),
	)
	return &p, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, notes, created_at, updated_at FROM deals WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deal %s: %w", id, err)
	}

	p.Calculations, err = s.calculations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, notes, created_at, updated_at FROM deals`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read deal: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	// The connection is released before loading calculations.
	_ = rows.Close()

	for i := range profiles {
		profiles[i].Calculations, err = s.calculations(ctx, profiles[i].ID)
		if err != nil {
			return nil, err
		}
	}
	sortProfiles(profiles)
	if profiles == nil {
		profiles = []Profile{}
	}
	return profiles, nil
}

func (s *SQLiteStore) SaveCalculation(ctx context.Context, id string, calc Calculation) (*Profile, error) {
	if err := checkCalculation(calc); err != nil {
		return nil, err
	}
	now := s.now().UTC()

	inputs, err := json.Marshal(nonNilInputs(calc.Inputs))
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}
	metrics, err := json.Marshal(nonNilMetrics(calc.Metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	var analysisJSON sql.NullString
	if calc.Analysis != nil {
		raw, err := json.Marshal(calc.Analysis)
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
		analysisJSON = sql.NullString{String: string(raw), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE deals SET updated_at = ? WHERE id = ?`, now.UnixNano(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update deal %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update deal %s: %w", id, err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO deal_calculations
			(deal_id, calculator, inputs_json, metrics_json, analysis_json, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(deal_id, calculator) DO UPDATE SET
			inputs_json = excluded.inputs_json,
			metrics_json = excluded.metrics_json,
			analysis_json = excluded.analysis_json,
			saved_at = excluded.saved_at`,
		id, calc.Calculator, string(inputs), string(metrics), analysisJSON, now.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s calculation: %w", calc.Calculator, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit calculation: %w", err)
	}

	s.logger.Debug("saved calculation",
		zap.String("op", "deal.SQLiteStore.SaveCalculation"),
		zap.String("id", id),
		zap.String("calculator", calc.Calculator),
	)
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deal %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to delete deal %s: %w", id, err)
	} else if n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM deal_calculations WHERE deal_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete calculations of %s: %w", id, err)
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) calculations(ctx context.Context, id string) ([]Calculation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT calculator, inputs_json, metrics_json, analysis_json, saved_at
		FROM deal_calculations WHERE deal_id = ? ORDER BY calculator`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load calculations of %s: %w", id, err)
	}
	defer rows.Close()

	calcs := []Calculation{}
	for rows.Next() {
		var (
			calc         Calculation
			inputs       string
			metrics      string
			analysisJSON sql.NullString
			savedAt      int64
		)
		if err := rows.Scan(&calc.Calculator, &inputs, &metrics, &analysisJSON, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to read calculation: %w", err)
		}
		if err := json.Unmarshal([]byte(inputs), &calc.Inputs); err != nil {
			return nil, fmt.Errorf("failed to decode %s inputs: %w", calc.Calculator, err)
		}
		if err := json.Unmarshal([]byte(metrics), &calc.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode %s metrics: %w", calc.Calculator, err)
		}
		if analysisJSON.Valid {
			calc.Analysis = &analysis.Analysis{}
			if err := json.Unmarshal([]byte(analysisJSON.String), calc.Analysis); err != nil {
				return nil, fmt.Errorf("failed to decode %s analysis: %w", calc.Calculator, err)
			}
		}
		calc.SavedAt = time.Unix(0, savedAt).UTC()
		calcs = append(calcs, calc)
	}
	return calcs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (Profile, error) {
	var (
		p         Profile
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Notes, &createdAt, &updatedAt); err != nil {
		return Profile{}, err
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	p.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return p, nil
}

func nonNilInputs(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilMetrics(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
