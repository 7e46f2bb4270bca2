// Package pipeline turns extracted statement text into categorized ledger
// rows and keeps statement and keyword lifecycles consistent while doing it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/centimo/centimo/internal/categorize"
	"github.com/centimo/centimo/internal/domain"
	"github.com/centimo/centimo/internal/jobs"
	"github.com/centimo/centimo/internal/logger"
	"github.com/centimo/centimo/internal/store"
)

// updateChunkSize bounds how many category updates are applied per batch so
// one bad row cannot abort a whole keyword run.
const updateChunkSize = 100

// CandidateExtractor produces transaction candidates from statement text.
// *aiextract.Extractor is the production implementation.
type CandidateExtractor interface {
	ExtractTransactions(ctx context.Context, statementText string) ([]domain.Candidate, int32, error)
}

// Processor executes the pipeline's background jobs against a Store.
type Processor struct {
	store     store.Store
	extractor CandidateExtractor
}

// NewProcessor wires the processor with its persistence and extraction deps.
func NewProcessor(st store.Store, extractor CandidateExtractor) *Processor {
	return &Processor{store: st, extractor: extractor}
}

// ProcessStatement runs the full statement pipeline: validate, AI-extract,
// categorize, insert, mark completed. Any error marks the statement failed
// with the error message and is returned so the job runtime can retry; each
// retry re-runs the whole sequence, and the delete-before-insert keeps the
// insert step idempotent across retries.
func (p *Processor) ProcessStatement(ctx context.Context, payload jobs.ProcessStatementPayload) error {
	log := logger.FromContext(ctx).With().
		Str("statement_id", payload.StatementID).
		Str("user_id", payload.UserID).
		Logger()

	st, err := p.store.GetStatement(ctx, payload.StatementID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Retrying cannot make the statement row appear.
			return jobs.NonRetryable(fmt.Errorf("ProcessStatement: validate: %w", err))
		}
		return fmt.Errorf("ProcessStatement: validate: %w", err)
	}
	if st.Status == domain.StatementCompleted {
		log.Info().Msg("statement already completed, skipping")
		return nil
	}

	if err := p.processStatement(ctx, log, payload); err != nil {
		if markErr := p.store.MarkStatementFailed(ctx, payload.StatementID, err.Error()); markErr != nil {
			log.Error().Err(markErr).Msg("failed to record statement failure")
		}
		return fmt.Errorf("ProcessStatement: %w", err)
	}
	return nil
}

func (p *Processor) processStatement(ctx context.Context, log zerolog.Logger, payload jobs.ProcessStatementPayload) error {
	if payload.ExtractedText == "" {
		return fmt.Errorf("statement text is empty")
	}

	candidates, tokens, err := p.extractor.ExtractTransactions(ctx, payload.ExtractedText)
	if err != nil {
		return fmt.Errorf("extract transactions: %w", err)
	}
	log.Info().
		Int("candidates", len(candidates)).
		Int32("model_tokens", tokens).
		Msg("model extraction finished")

	rules, err := p.store.ListKeywordsByUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("load keyword rules: %w", err)
	}

	now := time.Now()
	categorized := 0
	txns := make([]domain.Transaction, 0, len(candidates))
	for _, c := range candidates {
		categoryID := categorize.Categorize(c.Description, c.Merchant, rules)
		if categoryID != "" {
			categorized++
		}
		txns = append(txns, domain.Transaction{
			ID:          uuid.New().String(),
			UserID:      payload.UserID,
			StatementID: payload.StatementID,
			CardID:      payload.CardID,
			CategoryID:  categoryID,
			Merchant:    c.Merchant,
			Description: c.Description,
			AmountMinor: domain.ExpenseAmountMinor(c.Amount),
			Currency:    c.Currency,
			Type:        domain.TypeExpense,
			Date:        c.Date,
			CreatedAt:   now,
		})
	}

	// Remove rows from any earlier attempt so a retry cannot double-insert.
	if err := p.store.DeleteStatementTransactions(ctx, payload.StatementID); err != nil {
		return fmt.Errorf("clear previous rows: %w", err)
	}
	if err := p.store.InsertTransactions(ctx, txns); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}

	if err := p.store.MarkStatementCompleted(ctx, payload.StatementID); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	log.Info().
		Int("inserted", len(txns)).
		Int("categorized", categorized).
		Msg("statement processed")
	return nil
}

// CategorizeByKeyword applies a newly created keyword to the user's
// uncategorized transactions and resolves the keyword's lifecycle. The
// recorded categorized_count is the number of rows actually updated in this
// run, not the number of matches.
func (p *Processor) CategorizeByKeyword(ctx context.Context, payload jobs.CategorizeByKeywordPayload) error {
	log := logger.FromContext(ctx).With().
		Str("keyword_id", payload.KeywordID).
		Str("user_id", payload.UserID).
		Logger()

	txns, err := p.store.ListUncategorized(ctx, payload.UserID)
	if err != nil {
		return p.failKeyword(ctx, log, payload.KeywordID, fmt.Errorf("list uncategorized: %w", err))
	}

	matches := categorize.MatchesForKeyword(txns, payload.Keyword, payload.CategoryID)
	updated := p.applyMatches(ctx, log, payload.UserID, matches)

	if err := p.store.MarkKeywordActive(ctx, payload.KeywordID, updated); err != nil {
		return fmt.Errorf("CategorizeByKeyword: %w", err)
	}
	log.Info().Int("matched", len(matches)).Int("updated", updated).Msg("keyword applied")
	return nil
}

// ReassignKeyword re-applies an edited keyword across all of the user's
// transactions, moving matches to the keyword's new category regardless of
// what category they carried before.
func (p *Processor) ReassignKeyword(ctx context.Context, payload jobs.ReassignKeywordPayload) error {
	log := logger.FromContext(ctx).With().
		Str("keyword_id", payload.KeywordID).
		Str("user_id", payload.UserID).
		Logger()

	txns, err := p.store.ListByUser(ctx, payload.UserID)
	if err != nil {
		return p.failKeyword(ctx, log, payload.KeywordID, fmt.Errorf("list transactions: %w", err))
	}

	matches := categorize.MatchesForKeyword(txns, payload.Keyword, payload.NewCategoryID)
	updated := p.applyMatches(ctx, log, payload.UserID, matches)

	if err := p.store.MarkKeywordActive(ctx, payload.KeywordID, updated); err != nil {
		return fmt.Errorf("ReassignKeyword: %w", err)
	}
	log.Info().Int("matched", len(matches)).Int("updated", updated).Msg("keyword reassigned")
	return nil
}

func (p *Processor) failKeyword(ctx context.Context, log zerolog.Logger, keywordID string, cause error) error {
	if markErr := p.store.MarkKeywordFailed(ctx, keywordID, cause.Error()); markErr != nil {
		log.Error().Err(markErr).Msg("failed to record keyword failure")
	}
	return cause
}

// applyMatches updates categories in chunks, tolerating per-row failures so
// one bad row does not abort the run. It returns the number of rows updated.
func (p *Processor) applyMatches(ctx context.Context, log zerolog.Logger, userID string, matches []categorize.Match) int {
	updated := 0
	for start := 0; start < len(matches); start += updateChunkSize {
		end := start + updateChunkSize
		if end > len(matches) {
			end = len(matches)
		}
		for _, m := range matches[start:end] {
			if err := p.store.UpdateTransactionCategory(ctx, userID, m.TransactionID, m.CategoryID); err != nil {
				log.Warn().Err(err).Str("transaction_id", m.TransactionID).Msg("category update skipped")
				continue
			}
			updated++
		}
	}
	return updated
}

// SweepUncategorized re-runs the keyword engine over every user that still
// has uncategorized transactions. The scheduled sweep picks up rows that were
// inserted before their matching keyword existed.
func (p *Processor) SweepUncategorized(ctx context.Context) error {
	log := logger.FromContext(ctx)

	users, err := p.store.ListUsersWithUncategorized(ctx)
	if err != nil {
		return fmt.Errorf("SweepUncategorized: %w", err)
	}

	total := 0
	for _, userID := range users {
		rules, err := p.store.ListKeywordsByUser(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("sweep skipped user")
			continue
		}
		txns, err := p.store.ListUncategorized(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("sweep skipped user")
			continue
		}
		for _, txn := range txns {
			categoryID := categorize.Categorize(txn.Description, txn.Merchant, rules)
			if categoryID == "" {
				continue
			}
			if err := p.store.UpdateTransactionCategory(ctx, userID, txn.ID, categoryID); err != nil {
				log.Warn().Err(err).Str("transaction_id", txn.ID).Msg("sweep update skipped")
				continue
			}
			total++
		}
	}
	log.Info().Int("users", len(users)).Int("updated", total).Msg("uncategorized sweep finished")
	return nil
}
