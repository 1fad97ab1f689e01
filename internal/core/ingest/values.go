package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// ErrInvalidAmount is returned by ParseAmount for unreadable values.
var ErrInvalidAmount = errors.New("valor monetário inválido")

// normalizeText strips accents and punctuation so "Nº Doc." and "num_doc"
// compare as "N DOC" and "NUM DOC".
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// ParseValue reads a monetary value written either as 1234.56 or in the
// Brazilian form 1.234,56. Anything unreadable becomes zero.
func ParseValue(val string) decimal.Decimal {
	d, err := ParseAmount(val)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmount is the strict form of ParseValue: blank or unreadable input
// is an error. When both separators appear the last one is the decimal mark.
func ParseAmount(val string) (decimal.Decimal, error) {
	s := strings.TrimSpace(val)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
	}
	return d, nil
}

var truthy = map[string]bool{"true": true, "sim": true, "1": true, "yes": true}

// ParseFlag accepts true/sim/1/yes in any case; everything else is false.
func ParseFlag(val string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(val))]
}
