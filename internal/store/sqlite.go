package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cryptopilot/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trading cycles with their terminal outcome
	CREATE TABLE IF NOT EXISTS cycles (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		outcome TEXT NOT NULL,
		trade_count INTEGER NOT NULL,
		net_pnl REAL NOT NULL,
		emergency_stop INTEGER NOT NULL DEFAULT 0
	);

	-- One row per validation pass of a cycle
	CREATE TABLE IF NOT EXISTS validation_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		decision TEXT NOT NULL,
		reason TEXT NOT NULL,
		UNIQUE(cycle_id, attempt)
	);

	-- Accepted recommendations per cycle
	CREATE TABLE IF NOT EXISTS recommendations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		priority TEXT NOT NULL,
		reasoning TEXT,
		technical_score REAL NOT NULL,
		confidence TEXT NOT NULL,
		UNIQUE(cycle_id, symbol)
	);

	-- Executed fills
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		shares REAL NOT NULL,
		price REAL NOT NULL,
		fee REAL NOT NULL,
		reason TEXT,
		cycle_id TEXT
	);

	-- Current position state per symbol
	CREATE TABLE IF NOT EXISTS positions (
		symbol TEXT PRIMARY KEY,
		shares REAL NOT NULL,
		average_cost REAL NOT NULL,
		peak_price REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at);
	CREATE INDEX IF NOT EXISTS idx_attempts_cycle ON validation_attempts(cycle_id);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol, timestamp);
	CREATE INDEX IF NOT EXISTS idx_trades_cycle ON trades(cycle_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCycle persists a cycle record with its validation attempts.
func (s *SQLiteStore) SaveCycle(ctx context.Context, cycle *models.CycleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	emergency := 0
	if cycle.EmergencyStop {
		emergency = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cycles (id, started_at, finished_at, outcome, trade_count, net_pnl, emergency_stop)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, cycle.ID, cycle.StartedAt, cycle.FinishedAt, string(cycle.Outcome), cycle.TradeCount, cycle.NetPnL, emergency)
	if err != nil {
		return fmt.Errorf("failed to save cycle: %w", err)
	}

	for _, attempt := range cycle.Attempts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO validation_attempts (cycle_id, attempt, timestamp, decision, reason)
			VALUES (?, ?, ?, ?, ?)
		`, cycle.ID, attempt.Attempt, attempt.Timestamp, string(attempt.Decision), attempt.Reason)
		if err != nil {
			return fmt.Errorf("failed to save validation attempt: %w", err)
		}
	}

	return tx.Commit()
}

// GetCycles retrieves cycle records with their validation histories.
func (s *SQLiteStore) GetCycles(ctx context.Context, filter CycleFilter) ([]models.CycleRecord, error) {
	query := "SELECT id, started_at, finished_at, outcome, trade_count, net_pnl, emergency_stop FROM cycles WHERE 1=1"
	args := []interface{}{}

	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(filter.Outcome))
	}
	if !filter.StartDate.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND started_at <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []models.CycleRecord
	for rows.Next() {
		var c models.CycleRecord
		var outcome string
		var emergency int
		if err := rows.Scan(&c.ID, &c.StartedAt, &c.FinishedAt, &outcome, &c.TradeCount, &c.NetPnL, &emergency); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		c.Outcome = models.ValidationDecision(outcome)
		c.EmergencyStop = emergency == 1
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cycles {
		attempts, err := s.getAttempts(ctx, cycles[i].ID)
		if err != nil {
			return nil, err
		}
		cycles[i].Attempts = attempts
	}
	return cycles, nil
}

func (s *SQLiteStore) getAttempts(ctx context.Context, cycleID string) ([]models.ValidationAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attempt, timestamp, decision, reason FROM validation_attempts
		WHERE cycle_id = ? ORDER BY attempt
	`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.ValidationAttempt
	for rows.Next() {
		var a models.ValidationAttempt
		var decision string
		if err := rows.Scan(&a.Attempt, &a.Timestamp, &decision, &a.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan validation attempt: %w", err)
		}
		a.Decision = models.ValidationDecision(decision)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// SaveRecommendations persists the accepted recommendation set of a cycle.
func (s *SQLiteStore) SaveRecommendations(ctx context.Context, cycleID string, recs map[string]models.Recommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO recommendations (cycle_id, symbol, action, priority, reasoning, technical_score, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, cycleID, rec.Symbol, string(rec.Action), string(rec.Priority), rec.Reasoning, rec.TechnicalScore, string(rec.Confidence))
		if err != nil {
			return fmt.Errorf("failed to save recommendation: %w", err)
		}
	}
	return tx.Commit()
}

// GetRecommendations retrieves the recommendation set of a cycle.
func (s *SQLiteStore) GetRecommendations(ctx context.Context, cycleID string) (map[string]models.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, action, priority, reasoning, technical_score, confidence
		FROM recommendations WHERE cycle_id = ?
	`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	recs := make(map[string]models.Recommendation)
	for rows.Next() {
		var r models.Recommendation
		var action, priority, confidence string
		if err := rows.Scan(&r.Symbol, &action, &priority, &r.Reasoning, &r.TechnicalScore, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		r.Action = models.Action(action)
		r.Priority = models.Priority(priority)
		r.Confidence = models.Confidence(confidence)
		recs[r.Symbol] = r
	}
	return recs, rows.Err()
}

// LogTrade records an executed fill.
func (s *SQLiteStore) LogTrade(ctx context.Context, trade *models.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, timestamp, symbol, action, shares, price, fee, reason, cycle_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Timestamp, trade.Symbol, string(trade.Action), trade.Shares, trade.Price, trade.Fee, trade.Reason, trade.CycleID)
	if err != nil {
		return fmt.Errorf("failed to log trade: %w", err)
	}
	return nil
}

// GetTrades retrieves trades from the database.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT id, timestamp, symbol, action, shares, price, fee, reason, cycle_id FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, string(filter.Action))
	}
	if filter.CycleID != "" {
		query += " AND cycle_id = ?"
		args = append(args, filter.CycleID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var action string
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Symbol, &action, &t.Shares, &t.Price, &t.Fee, &t.Reason, &t.CycleID); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Action = models.Action(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SavePosition upserts the current state of one position.
func (s *SQLiteStore) SavePosition(ctx context.Context, pos *models.PositionState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (symbol, shares, average_cost, peak_price, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			shares = excluded.shares,
			average_cost = excluded.average_cost,
			peak_price = excluded.peak_price,
			updated_at = CURRENT_TIMESTAMP
	`, pos.Symbol, pos.Shares, pos.AverageCost, pos.PeakPrice)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// GetPositions retrieves all persisted positions.
func (s *SQLiteStore) GetPositions(ctx context.Context) (map[string]*models.PositionState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, shares, average_cost, peak_price FROM positions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make(map[string]*models.PositionState)
	for rows.Next() {
		var p models.PositionState
		if err := rows.Scan(&p.Symbol, &p.Shares, &p.AverageCost, &p.PeakPrice); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions[p.Symbol] = &p
	}
	return positions, rows.Err()
}
