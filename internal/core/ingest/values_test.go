package ingest

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"1234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1234,5", "1234.5"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"R$ 10,00", "10"},
		{"-5,25", "-5.25"},
		{"", "0"},
		{"abc", "0"},
		{"1,2,3", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseValue(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseValue(%q) = %s, esperado %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("2.500,75")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("2500.75")) {
		t.Errorf("ParseAmount = %s", got)
	}

	for _, in := range []string{"", "  ", "abc", "1,2,3"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) deveria falhar com ErrInvalidAmount, obteve %v", in, err)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "Sim", " sim ", "1", "yes", "YES"} {
		if !ParseFlag(v) {
			t.Errorf("ParseFlag(%q) deveria ser verdadeiro", v)
		}
	}
	for _, v := range []string{"", "false", "não", "0", "no", "s", "talvez"} {
		if ParseFlag(v) {
			t.Errorf("ParseFlag(%q) deveria ser falso", v)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"Série":       "SERIE",
		"num_doc":     "NUM DOC",
		"  Nº  Doc. ": "N DOC",
		"Monofásico?": "MONOFASICO",
		"chv_nfe":     "CHV NFE",
	}
	for in, want := range tests {
		if got := normalizeText(in); got != want {
			t.Errorf("normalizeText(%q) = %q, esperado %q", in, got, want)
		}
	}
}
