// Package store defines the persistence interfaces the pipeline depends on.
// The pipeline only ever needs simple select/insert/update operations; the
// concrete backends live in the postgres and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/centimo/centimo/internal/domain"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// StatementStore covers the statement rows the orchestrator reads and writes.
type StatementStore interface {
	GetStatement(ctx context.Context, id string) (*domain.Statement, error)

	// MarkStatementCompleted sets status=completed and clears the failure
	// reason. It fails if the statement is already terminal.
	MarkStatementCompleted(ctx context.Context, id string) error

	// MarkStatementFailed sets status=failed with a human-readable reason.
	MarkStatementFailed(ctx context.Context, id, reason string) error
}

// TransactionStore covers the ledger rows.
type TransactionStore interface {
	// InsertTransactions inserts all rows in one batch.
	InsertTransactions(ctx context.Context, txns []domain.Transaction) error

	// DeleteStatementTransactions removes rows previously produced for a
	// statement; the orchestrator calls it before re-inserting so a job
	// retry cannot double-insert.
	DeleteStatementTransactions(ctx context.Context, statementID string) error

	// ListUncategorized returns a user's transactions with no category.
	ListUncategorized(ctx context.Context, userID string) ([]domain.Transaction, error)

	// ListByUser returns all of a user's transactions.
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)

	// UpdateTransactionCategory sets one transaction's category, scoped to
	// the owning user.
	UpdateTransactionCategory(ctx context.Context, userID, txnID, categoryID string) error

	// ListUsersWithUncategorized returns the ids of users who have at least
	// one uncategorized transaction; the scheduled sweep iterates these.
	ListUsersWithUncategorized(ctx context.Context) ([]string, error)
}

// KeywordStore covers the categorization rules.
type KeywordStore interface {
	GetKeyword(ctx context.Context, id string) (*domain.CategoryKeyword, error)

	// ListKeywordsByUser returns a user's keywords ordered by creation time
	// ascending: the oldest rule has the highest matching priority.
	ListKeywordsByUser(ctx context.Context, userID string) ([]domain.CategoryKeyword, error)

	// MarkKeywordActive resolves a categorizing keyword to active and
	// records how many transactions the job actually updated.
	MarkKeywordActive(ctx context.Context, id string, categorizedCount int) error

	// MarkKeywordFailed resolves a categorizing keyword to failed.
	MarkKeywordFailed(ctx context.Context, id, reason string) error
}

// Store is the full persistence surface used by the pipeline.
type Store interface {
	StatementStore
	TransactionStore
	KeywordStore
}
