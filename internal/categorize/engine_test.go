package categorize

import (
	"testing"

	"github.com/centimo/centimo/internal/domain"
)

func rule(categoryID, keyword string) domain.CategoryKeyword {
	return domain.CategoryKeyword{CategoryID: categoryID, Keyword: keyword}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	rules := []domain.CategoryKeyword{
		rule("cat-transport", "uber"),
		rule("cat-food", "eats"),
	}

	// "UBER EATS ORDER" matches both rules; the first one must win.
	got := Categorize("UBER EATS ORDER", "Uber Eats", rules)
	if got != "cat-transport" {
		t.Errorf("Categorize = %q, want %q", got, "cat-transport")
	}
}

func TestCategorize_PartialAndAccentInsensitive(t *testing.T) {
	rules := []domain.CategoryKeyword{rule("cat-coffee", "café")}

	tests := []struct {
		description string
		merchant    string
		want        string
	}{
		{"CAFE ARABICA MIRAFLORES", "", "cat-coffee"},
		{"visita al CAFÉ", "", "cat-coffee"},
		{"STARBUCKS", "Starbucks", ""},
	}

	for _, tt := range tests {
		if got := Categorize(tt.description, tt.merchant, rules); got != tt.want {
			t.Errorf("Categorize(%q, %q) = %q, want %q", tt.description, tt.merchant, got, tt.want)
		}
	}
}

func TestCategorize_EmptyRules(t *testing.T) {
	if got := Categorize("UBER TRIP", "Uber", nil); got != "" {
		t.Errorf("Categorize with no rules = %q, want empty", got)
	}
	if got := Categorize("", "", []domain.CategoryKeyword{rule("c", "uber")}); got != "" {
		t.Errorf("Categorize with empty input = %q, want empty", got)
	}
}

func TestCategorize_SkipsBlankKeywords(t *testing.T) {
	rules := []domain.CategoryKeyword{
		rule("cat-blank", "   "),
		rule("cat-real", "uber"),
	}
	if got := Categorize("UBER TRIP", "", rules); got != "cat-real" {
		t.Errorf("Categorize = %q, want %q", got, "cat-real")
	}
}

func TestCategorizeAll_Independent(t *testing.T) {
	rules := []domain.CategoryKeyword{rule("cat-transport", "uber")}
	candidates := []domain.Candidate{
		{Description: "UBER TRIP 123", Merchant: "Uber"},
		{Description: "STARBUCKS COFFEE"},
	}

	got := CategorizeAll(candidates, rules)
	if len(got) != 2 {
		t.Fatalf("CategorizeAll returned %d results, want 2", len(got))
	}
	if got[0] != "cat-transport" || got[1] != "" {
		t.Errorf("CategorizeAll = %v, want [cat-transport, \"\"]", got)
	}
}

func TestMatchesForKeyword(t *testing.T) {
	transactions := []domain.Transaction{
		{ID: "t1", Description: "UBER TRIP 123", Merchant: "Uber", CategoryID: "cat-old"},
		{ID: "t2", Description: "UBER EATS ORDER", Merchant: "Uber Eats"},
		{ID: "t3", Description: "STARBUCKS COFFEE"},
	}

	matches := MatchesForKeyword(transactions, "uber", "cat-transport")
	if len(matches) != 2 {
		t.Fatalf("MatchesForKeyword returned %d matches, want 2", len(matches))
	}
	if matches[0].TransactionID != "t1" || matches[1].TransactionID != "t2" {
		t.Errorf("unexpected matched ids: %+v", matches)
	}
	for _, m := range matches {
		if m.CategoryID != "cat-transport" {
			t.Errorf("match %s has category %q, want cat-transport", m.TransactionID, m.CategoryID)
		}
	}
}

func TestMatchesForKeyword_BlankKeyword(t *testing.T) {
	transactions := []domain.Transaction{{ID: "t1", Description: "anything"}}
	if matches := MatchesForKeyword(transactions, "  ", "cat"); matches != nil {
		t.Errorf("blank keyword matched %d transactions, want none", len(matches))
	}
}
