package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercases", "UBER TRIP", "uber trip"},
		{"accents folded", "Café Máncora", "cafe mancora"},
		{"slash date prefix", "01/15 STARBUCKS LIMA", "starbucks lima"},
		{"iso date prefix", "2025-01-15 STARBUCKS LIMA", "starbucks lima"},
		{"bracketed code", "[TX-99182] NETFLIX.COM", "netflix.com"},
		{"debit marker", "PAGO *DEBIT* LUZ DEL SUR", "pago luz del sur"},
		{"credit marker", "*CREDIT* DEVOLUCION", "devolucion"},
		{"purchase prefix", "PURCHASE WONG SAN ISIDRO", "wong san isidro"},
		{"compra prefix", "Compra Tottus Miraflores", "tottus miraflores"},
		{"whitespace collapse", "  UBER   EATS \t ORDER ", "uber eats order"},
		{"bracket exposes slash date", "[REF] 01/15 MAKRO LIMA", "makro lima"},
		{"bracket exposes iso date", "[TX] 2025-01-15 NETFLIX.COM", "netflix.com"},
		{"purchase exposes slash date", "PURCHASE 01/15 MAKRO LIMA", "makro lima"},
		{"stacked artifacts", "[REF] PURCHASE 01/15 [A] COMPRA WONG", "wong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"01/15 PURCHASE Café Máncora *DEBIT*",
		"2025-03-02 [REF] COMPRA   Uber  Eats",
		"[REF] 01/15 MAKRO LIMA",
		"PURCHASE 01/15 MAKRO LIMA",
		"[TX] 2025-01-15 NETFLIX.COM",
		"plain text",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalize_AccentVariantsCollapse(t *testing.T) {
	variants := []string{"café", "cafe", "CAFÉ", "Café"}
	want := Normalize(variants[0])
	for _, v := range variants {
		if got := Normalize(v); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestSearchText(t *testing.T) {
	tests := []struct {
		name        string
		description string
		merchant    string
		want        string
	}{
		{"both parts", "UBER EATS ORDER", "Uber Eats", "uber eats order uber eats"},
		{"no merchant", "STARBUCKS COFFEE", "", "starbucks coffee"},
		{"no description", "", "Uber", "uber"},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchText(tt.description, tt.merchant); got != tt.want {
				t.Errorf("SearchText(%q, %q) = %q, want %q", tt.description, tt.merchant, got, tt.want)
			}
		})
	}
}
