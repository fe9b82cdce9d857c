// Package storage is the local SQLite store: the persisted session
// credential, the dashboard draft ledger and the worker's transaction
// mirror. Backend-owned data never originates here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finman/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Credential returns the persisted bearer token, or "" when none is stored.
func (r *SQLiteRepository) Credential(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `SELECT token FROM session WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return token, nil
}

// SaveCredential persists the bearer token, replacing any previous one.
func (r *SQLiteRepository) SaveCredential(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, token, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP`,
		token)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCredential(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// DraftSettings holds the locally-kept salary and savings values.
type DraftSettings struct {
	Salary  core.Money
	Savings core.Money
}

func (r *SQLiteRepository) DraftSettings(ctx context.Context) (DraftSettings, error) {
	var s DraftSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT salary_cents, savings_cents FROM draft_settings WHERE id = 1`).
		Scan(&s.Salary.Cents, &s.Savings.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return DraftSettings{}, nil
	}
	if err != nil {
		return DraftSettings{}, fmt.Errorf("read draft settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveDraftSettings(ctx context.Context, s DraftSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_settings (id, salary_cents, savings_cents) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET salary_cents = excluded.salary_cents, savings_cents = excluded.savings_cents`,
		s.Salary.Cents, s.Savings.Cents)
	if err != nil {
		return fmt.Errorf("save draft settings: %w", err)
	}
	return nil
}

// DraftExpense is one locally-kept expense line of the dashboard draft
// ledger, disjoint from the backend's transaction records.
type DraftExpense struct {
	ID          int64
	Description string
	Amount      core.Money
}

func (r *SQLiteRepository) ListDraftExpenses(ctx context.Context) ([]DraftExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents FROM draft_expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list draft expenses: %w", err)
	}
	defer rows.Close()

	var out []DraftExpense
	for rows.Next() {
		var d DraftExpense
		if err := rows.Scan(&d.ID, &d.Description, &d.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan draft expense: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draft expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddDraftExpense(ctx context.Context, description string, amount core.Money) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO draft_expenses (description, amount_cents) VALUES (?, ?)`,
		description, amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("add draft expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("draft expense id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteDraftExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM draft_expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete draft expense: %w", err)
	}
	return nil
}

// ReplaceMirror swaps the whole transaction mirror for a fresh snapshot
// fetched from the backend. The mirror is reporting data only.
func (r *SQLiteRepository) ReplaceMirror(ctx context.Context, txs []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mirror_transactions`); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}
	for _, t := range txs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO mirror_transactions (transaction_id, description, amount_cents, tx_date, category, is_recurring, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			t.ID, t.Description, t.Amount.Cents, t.Date.Wire(), t.Category, boolToInt(t.IsRecurring))
		if err != nil {
			return fmt.Errorf("insert mirror row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror replace: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirror replaced", "count", len(txs))
	return nil
}

// MirrorSummary reports what the worker last snapshotted.
type MirrorSummary struct {
	Count     int
	Total     core.Money
	FetchedAt time.Time
}

func (r *SQLiteRepository) MirrorSummary(ctx context.Context) (MirrorSummary, error) {
	var s MirrorSummary
	var fetched sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0), MAX(fetched_at)
		FROM mirror_transactions`).
		Scan(&s.Count, &s.Total.Cents, &fetched)
	if err != nil {
		return MirrorSummary{}, fmt.Errorf("read mirror summary: %w", err)
	}
	if fetched.Valid {
		if t, err := time.Parse("2006-01-02 15:04:05", fetched.String); err == nil {
			s.FetchedAt = t
		}
	}
	return s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
