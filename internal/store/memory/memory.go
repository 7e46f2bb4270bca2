// Package memory is an in-memory Store implementation. It backs tests and the
// inline CLI runner; data is lost on process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/centimo/centimo/internal/domain"
	"github.com/centimo/centimo/internal/store"
)

// Store keeps all rows in maps guarded by one mutex. Methods hand out copies
// so callers cannot mutate shared state.
type Store struct {
	mu           sync.RWMutex
	statements   map[string]*domain.Statement
	transactions map[string]*domain.Transaction
	keywords     map[string]*domain.CategoryKeyword
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		statements:   make(map[string]*domain.Statement),
		transactions: make(map[string]*domain.Transaction),
		keywords:     make(map[string]*domain.CategoryKeyword),
	}
}

// PutStatement seeds or replaces a statement row.
func (s *Store) PutStatement(st domain.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := st
	s.statements[st.ID] = &cp
}

// PutKeyword seeds or replaces a keyword row.
func (s *Store) PutKeyword(kw domain.CategoryKeyword) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := kw
	s.keywords[kw.ID] = &cp
}

// PutTransaction seeds or replaces a transaction row.
func (s *Store) PutTransaction(txn domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := txn
	s.transactions[txn.ID] = &cp
}

func (s *Store) GetStatement(ctx context.Context, id string) (*domain.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statements[id]
	if !ok {
		return nil, fmt.Errorf("statement %s: %w", id, store.ErrNotFound)
	}
	cp := *st
	return &cp, nil
}

func (s *Store) MarkStatementCompleted(ctx context.Context, id string) error {
	return s.transitionStatement(id, domain.StatementCompleted, "")
}

func (s *Store) MarkStatementFailed(ctx context.Context, id, reason string) error {
	return s.transitionStatement(id, domain.StatementFailed, reason)
}

func (s *Store) transitionStatement(id string, next domain.StatementStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.statements[id]
	if !ok {
		return fmt.Errorf("statement %s: %w", id, store.ErrNotFound)
	}
	if !st.Status.CanTransitionTo(next) {
		return fmt.Errorf("statement %s: illegal transition %s -> %s", id, st.Status, next)
	}
	st.Status = next
	st.FailureReason = reason
	return nil
}

func (s *Store) InsertTransactions(ctx context.Context, txns []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, txn := range txns {
		if txn.ID == "" {
			return fmt.Errorf("transaction without id")
		}
		cp := txn
		s.transactions[txn.ID] = &cp
	}
	return nil
}

func (s *Store) DeleteStatementTransactions(ctx context.Context, statementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, txn := range s.transactions {
		if txn.StatementID == statementID {
			delete(s.transactions, id)
		}
	}
	return nil
}

func (s *Store) ListUncategorized(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.listTransactions(userID, true), nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.listTransactions(userID, false), nil
}

func (s *Store) listTransactions(userID string, onlyUncategorized bool) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, txn := range s.transactions {
		if txn.UserID != userID {
			continue
		}
		if onlyUncategorized && txn.CategoryID != "" {
			continue
		}
		out = append(out, *txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) UpdateTransactionCategory(ctx context.Context, userID, txnID, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[txnID]
	if !ok || txn.UserID != userID {
		return fmt.Errorf("transaction %s: %w", txnID, store.ErrNotFound)
	}
	txn.CategoryID = categoryID
	return nil
}

func (s *Store) ListUsersWithUncategorized(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, txn := range s.transactions {
		if txn.CategoryID == "" {
			seen[txn.UserID] = struct{}{}
		}
	}
	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

func (s *Store) GetKeyword(ctx context.Context, id string) (*domain.CategoryKeyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kw, ok := s.keywords[id]
	if !ok {
		return nil, fmt.Errorf("keyword %s: %w", id, store.ErrNotFound)
	}
	cp := *kw
	return &cp, nil
}

func (s *Store) ListKeywordsByUser(ctx context.Context, userID string) ([]domain.CategoryKeyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CategoryKeyword
	for _, kw := range s.keywords {
		if kw.UserID == userID {
			out = append(out, *kw)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkKeywordActive(ctx context.Context, id string, categorizedCount int) error {
	return s.transitionKeyword(id, domain.KeywordActive, categorizedCount, "")
}

func (s *Store) MarkKeywordFailed(ctx context.Context, id, reason string) error {
	return s.transitionKeyword(id, domain.KeywordFailed, 0, reason)
}

func (s *Store) transitionKeyword(id string, next domain.KeywordStatus, count int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kw, ok := s.keywords[id]
	if !ok {
		return fmt.Errorf("keyword %s: %w", id, store.ErrNotFound)
	}
	if !kw.Status.CanTransitionTo(next) {
		return fmt.Errorf("keyword %s: illegal transition %s -> %s", id, kw.Status, next)
	}
	kw.Status = next
	kw.FailureReason = reason
	if next == domain.KeywordActive {
		kw.CategorizedCount = count
	}
	return nil
}

// Ensure Store implements the full persistence surface.
var _ store.Store = (*Store)(nil)
