package repository

import (
	"regexp"
	"testing"
)

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "DIPIRONA", "dipirona"},
		{"strips acute accent", "Dipirona Sódica", "dipirona sodica"},
		{"strips cedilla and tilde", "Solução de Limão", "solucao de limao"},
		{"plain ascii untouched", "paracetamol 500mg", "paracetamol 500mg"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeProductName(tt.in); got != tt.want {
				t.Errorf("NormalizeProductName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^PO-[A-Z]{2}[1-9]\d{4}$`)
	got := GenerateOrderNumber()
	if !re.MatchString(got) {
		t.Errorf("GenerateOrderNumber() = %q, want match for %s", got, re)
	}
}

func TestGenerateAccessTokenIsOpaque(t *testing.T) {
	a := GenerateAccessToken()
	b := GenerateAccessToken()
	if a == "" || b == "" {
		t.Fatal("expected non-empty tokens")
	}
	if a == b {
		t.Errorf("expected distinct tokens, got %q twice", a)
	}
	if len(a) != 36 {
		t.Errorf("token length = %d, want 36", len(a))
	}
}
