package aiextract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/centimo/centimo/internal/domain"
)

// fencedArrayRe pulls a JSON array out of a ```/```json fenced block.
var fencedArrayRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

// locateArray finds the JSON-array-shaped substring of a model response:
// fenced code block first, then the span from the first '[' to the last ']'.
// Returns "" when no array-shaped substring exists.
func locateArray(raw string) string {
	s := strings.TrimSpace(raw)

	if m := fencedArrayRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

// parseResponse converts the raw model completion into candidates.
func parseResponse(raw, defaultCurrency string) ([]domain.Candidate, error) {
	arrayText := locateArray(raw)
	if arrayText == "" {
		return nil, fmt.Errorf("%w: no JSON array in output", ErrInvalidResponse)
	}

	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(arrayText), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, coerceCandidate(item, defaultCurrency))
	}
	return candidates, nil
}

// coerceCandidate builds a typed candidate from one parsed element. Every
// field has a safe fallback: a malformed field degrades that one value, it
// never fails the batch.
func coerceCandidate(item map[string]interface{}, defaultCurrency string) domain.Candidate {
	merchant := stringField(item, "merchant", "")
	if merchant == "" {
		merchant = "Unknown"
	}

	description := stringField(item, "description", "")
	if description == "" {
		description = merchant
	}

	currency := strings.ToUpper(stringField(item, "currency", ""))
	if currency == "" {
		currency = defaultCurrency
	}

	amount := numberField(item, "amount")
	if amount < 0 {
		amount = -amount
	}

	return domain.Candidate{
		Date:        dateField(item, "date"),
		Merchant:    merchant,
		Description: description,
		Amount:      amount,
		Currency:    currency,
	}
}

func stringField(m map[string]interface{}, key, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(s)
}

// numberField reads a number, tolerating models that quote numerics.
// Anything non-numeric coerces to 0.
func numberField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

// dateField parses an ISO date, falling back to the zero time when absent or
// malformed.
func dateField(m map[string]interface{}, key string) time.Time {
	s := stringField(m, key, "")
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
