// Package aiextract turns extracted statement text into typed transaction
// candidates via a text-generation model. The model's output is never
// trusted: the response is located and parsed defensively, and every field is
// coerced with an explicit fallback so one malformed field never fails the
// whole batch.
package aiextract

import (
	"context"
	"errors"
	"fmt"

	"github.com/centimo/centimo/internal/domain"
)

// ErrInvalidResponse marks a model response with no parseable JSON array.
var ErrInvalidResponse = errors.New("aiextract: invalid model response")

// Extractor runs the extraction prompt against a TextGenerator.
type Extractor struct {
	gen             TextGenerator
	defaultCurrency string
}

// New creates an Extractor. defaultCurrency is used when the model omits a
// currency on a transaction.
func New(gen TextGenerator, defaultCurrency string) *Extractor {
	return &Extractor{gen: gen, defaultCurrency: defaultCurrency}
}

// ExtractTransactions sends a single extraction request for the statement
// text and parses the completion into candidates. The returned token count is
// the call's total usage, for observability.
func (e *Extractor) ExtractTransactions(ctx context.Context, statementText string) ([]domain.Candidate, int32, error) {
	prompt := buildExtractionPrompt(statementText)

	text, tokens, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, 0, fmt.Errorf("ExtractTransactions: %w", err)
	}

	candidates, err := parseResponse(text, e.defaultCurrency)
	if err != nil {
		return nil, tokens, fmt.Errorf("ExtractTransactions: %w", err)
	}
	return candidates, tokens, nil
}
