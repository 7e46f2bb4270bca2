// Package postgres is the pgx-backed Store implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centimo/centimo/internal/domain"
	"github.com/centimo/centimo/internal/store"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database described by connString.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool, used by tests.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the pipeline's tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS statements (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	card_id        TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	file_type      TEXT NOT NULL DEFAULT 'application/pdf',
	status         TEXT NOT NULL DEFAULT 'processing',
	failure_reason TEXT,
	retry_count    INT NOT NULL DEFAULT 0,
	uploaded_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	statement_id TEXT REFERENCES statements(id) ON DELETE CASCADE,
	card_id      TEXT NOT NULL,
	category_id  TEXT,
	merchant     TEXT NOT NULL,
	description  TEXT NOT NULL,
	amount_minor BIGINT NOT NULL,
	currency     TEXT NOT NULL,
	type         TEXT NOT NULL,
	date         DATE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_statement ON transactions(statement_id);

CREATE TABLE IF NOT EXISTS category_keywords (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	category_id       TEXT NOT NULL,
	keyword           TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'active',
	categorized_count INT NOT NULL DEFAULT 0,
	failure_reason    TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_category_keywords_user ON category_keywords(user_id, created_at);
`

func (s *Store) GetStatement(ctx context.Context, id string) (*domain.Statement, error) {
	const q = `
		SELECT id, user_id, card_id, file_name, file_type, status,
		       COALESCE(failure_reason, ''), retry_count, uploaded_at
		FROM statements
		WHERE id = $1
	`
	var st domain.Statement
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&st.ID, &st.UserID, &st.CardID, &st.FileName, &st.FileType,
		&st.Status, &st.FailureReason, &st.RetryCount, &st.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("statement %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetStatement: %w", err)
	}
	return &st, nil
}

func (s *Store) MarkStatementCompleted(ctx context.Context, id string) error {
	const q = `
		UPDATE statements
		SET status = $2, failure_reason = NULL
		WHERE id = $1 AND status <> $3
	`
	tag, err := s.pool.Exec(ctx, q, id, domain.StatementCompleted, domain.StatementCompleted)
	if err != nil {
		return fmt.Errorf("MarkStatementCompleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("MarkStatementCompleted: statement %s is already completed or missing", id)
	}
	return nil
}

func (s *Store) MarkStatementFailed(ctx context.Context, id, reason string) error {
	const q = `
		UPDATE statements
		SET status = $2, failure_reason = $3
		WHERE id = $1 AND status <> $4
	`
	tag, err := s.pool.Exec(ctx, q, id, domain.StatementFailed, reason, domain.StatementCompleted)
	if err != nil {
		return fmt.Errorf("MarkStatementFailed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("MarkStatementFailed: statement %s is already completed or missing", id)
	}
	return nil
}

func (s *Store) InsertTransactions(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	const q = `
		INSERT INTO transactions
			(id, user_id, statement_id, card_id, category_id, merchant,
			 description, amount_minor, currency, type, date)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)
	`
	batch := &pgx.Batch{}
	for _, t := range txns {
		batch.Queue(q, t.ID, t.UserID, t.StatementID, t.CardID, t.CategoryID,
			t.Merchant, t.Description, t.AmountMinor, t.Currency, t.Type, t.Date)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range txns {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("InsertTransactions: %w", err)
		}
	}
	return nil
}

func (s *Store) DeleteStatementTransactions(ctx context.Context, statementID string) error {
	const q = `DELETE FROM transactions WHERE statement_id = $1`
	if _, err := s.pool.Exec(ctx, q, statementID); err != nil {
		return fmt.Errorf("DeleteStatementTransactions: %w", err)
	}
	return nil
}

const transactionColumns = `
	id, user_id, COALESCE(statement_id, ''), card_id, COALESCE(category_id, ''),
	merchant, description, amount_minor, currency, type,
	COALESCE(date, 'epoch'::date), created_at
`

func (s *Store) ListUncategorized(ctx context.Context, userID string) ([]domain.Transaction, error) {
	q := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND category_id IS NULL
		ORDER BY date DESC, id`
	return s.queryTransactions(ctx, q, userID)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	q := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, id`
	return s.queryTransactions(ctx, q, userID)
}

func (s *Store) queryTransactions(ctx context.Context, q string, args ...any) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("queryTransactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.StatementID, &t.CardID, &t.CategoryID,
			&t.Merchant, &t.Description, &t.AmountMinor, &t.Currency, &t.Type,
			&t.Date, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("queryTransactions: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queryTransactions: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateTransactionCategory(ctx context.Context, userID, txnID, categoryID string) error {
	const q = `
		UPDATE transactions
		SET category_id = NULLIF($3, '')
		WHERE id = $1 AND user_id = $2
	`
	tag, err := s.pool.Exec(ctx, q, txnID, userID, categoryID)
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", txnID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListUsersWithUncategorized(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT user_id FROM transactions WHERE category_id IS NULL ORDER BY user_id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListUsersWithUncategorized: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("ListUsersWithUncategorized: scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsersWithUncategorized: %w", err)
	}
	return users, nil
}

func (s *Store) GetKeyword(ctx context.Context, id string) (*domain.CategoryKeyword, error) {
	const q = `
		SELECT id, user_id, category_id, keyword, status, categorized_count,
		       COALESCE(failure_reason, ''), created_at
		FROM category_keywords
		WHERE id = $1
	`
	var kw domain.CategoryKeyword
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&kw.ID, &kw.UserID, &kw.CategoryID, &kw.Keyword, &kw.Status,
		&kw.CategorizedCount, &kw.FailureReason, &kw.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("keyword %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetKeyword: %w", err)
	}
	return &kw, nil
}

func (s *Store) ListKeywordsByUser(ctx context.Context, userID string) ([]domain.CategoryKeyword, error) {
	const q = `
		SELECT id, user_id, category_id, keyword, status, categorized_count,
		       COALESCE(failure_reason, ''), created_at
		FROM category_keywords
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("ListKeywordsByUser: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryKeyword
	for rows.Next() {
		var kw domain.CategoryKeyword
		if err := rows.Scan(
			&kw.ID, &kw.UserID, &kw.CategoryID, &kw.Keyword, &kw.Status,
			&kw.CategorizedCount, &kw.FailureReason, &kw.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListKeywordsByUser: scan: %w", err)
		}
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListKeywordsByUser: %w", err)
	}
	return out, nil
}

func (s *Store) MarkKeywordActive(ctx context.Context, id string, categorizedCount int) error {
	const q = `
		UPDATE category_keywords
		SET status = $2, categorized_count = $3, failure_reason = NULL
		WHERE id = $1 AND status <> $4
	`
	tag, err := s.pool.Exec(ctx, q, id, domain.KeywordActive, categorizedCount, domain.KeywordActive)
	if err != nil {
		return fmt.Errorf("MarkKeywordActive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("MarkKeywordActive: keyword %s is already active or missing", id)
	}
	return nil
}

func (s *Store) MarkKeywordFailed(ctx context.Context, id, reason string) error {
	const q = `
		UPDATE category_keywords
		SET status = $2, failure_reason = $3
		WHERE id = $1 AND status <> $4
	`
	tag, err := s.pool.Exec(ctx, q, id, domain.KeywordFailed, reason, domain.KeywordActive)
	if err != nil {
		return fmt.Errorf("MarkKeywordFailed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("MarkKeywordFailed: keyword %s is already active or missing", id)
	}
	return nil
}

// Ensure Store implements the full persistence surface.
var _ store.Store = (*Store)(nil)
