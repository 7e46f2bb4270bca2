package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{195.50, 19550},
		{44.9, 4490},
		{0.1, 10},
		{29.99, 2999},
		{1129.999, 113000}, // rounds to cents before shifting
		{0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MinorUnits(tc.amount), "amount %v", tc.amount)
	}
}

func TestExpenseAmountMinor(t *testing.T) {
	// Magnitude sign is ignored: statement rows are always outflows.
	assert.Equal(t, int64(-19550), ExpenseAmountMinor(195.50))
	assert.Equal(t, int64(-19550), ExpenseAmountMinor(-195.50))
	assert.Equal(t, int64(0), ExpenseAmountMinor(0))
}

func TestStatementTransitions(t *testing.T) {
	assert.True(t, StatementProcessing.CanTransitionTo(StatementCompleted))
	assert.True(t, StatementProcessing.CanTransitionTo(StatementFailed))
	assert.True(t, StatementFailed.CanTransitionTo(StatementCompleted), "retry may still succeed")
	assert.True(t, StatementFailed.CanTransitionTo(StatementFailed), "retry may update the reason")
	assert.False(t, StatementCompleted.CanTransitionTo(StatementFailed))
	assert.False(t, StatementCompleted.CanTransitionTo(StatementProcessing))
	assert.False(t, StatementFailed.CanTransitionTo(StatementProcessing), "no re-opening")
}

func TestKeywordTransitions(t *testing.T) {
	assert.True(t, KeywordCategorizing.CanTransitionTo(KeywordActive))
	assert.True(t, KeywordCategorizing.CanTransitionTo(KeywordFailed))
	assert.True(t, KeywordFailed.CanTransitionTo(KeywordActive), "retry may still succeed")
	assert.False(t, KeywordActive.CanTransitionTo(KeywordFailed))
	assert.False(t, KeywordActive.CanTransitionTo(KeywordCategorizing))
}
