// Package categorize implements keyword-rule matching of transactions to
// categories. Matching is a plain substring test over normalized text and the
// first rule that matches wins; there is no scoring or best-match logic, so a
// user can always predict which rule fired.
package categorize

import (
	"strings"

	"github.com/centimo/centimo/internal/domain"
	"github.com/centimo/centimo/internal/textnorm"
)

// Categorize returns the category id of the first rule whose normalized
// keyword is contained in the transaction's normalized search text, or ""
// when no rule matches. Rules must already be in priority order (oldest
// first).
func Categorize(description, merchant string, rules []domain.CategoryKeyword) string {
	search := textnorm.SearchText(description, merchant)
	if search == "" {
		return ""
	}
	for _, rule := range rules {
		kw := textnorm.Normalize(rule.Keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(search, kw) {
			return rule.CategoryID
		}
	}
	return ""
}

// CategorizeAll applies Categorize independently to each candidate and
// returns the chosen category ids in the same order. There is no
// cross-candidate state.
func CategorizeAll(candidates []domain.Candidate, rules []domain.CategoryKeyword) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = Categorize(c.Description, c.Merchant, rules)
	}
	return out
}

// Match pairs a transaction with the category a keyword assigns it to.
type Match struct {
	TransactionID string
	CategoryID    string
}

// MatchesForKeyword is the inverse query: given a single keyword, it returns
// every transaction whose search text contains it, regardless of the
// transaction's current category, each paired with the target category id.
// Used by both the categorize-new-keyword and reassign-keyword jobs.
func MatchesForKeyword(transactions []domain.Transaction, keyword, categoryID string) []Match {
	kw := textnorm.Normalize(keyword)
	if kw == "" {
		return nil
	}
	var matches []Match
	for _, txn := range transactions {
		search := textnorm.SearchText(txn.Description, txn.Merchant)
		if strings.Contains(search, kw) {
			matches = append(matches, Match{TransactionID: txn.ID, CategoryID: categoryID})
		}
	}
	return matches
}
