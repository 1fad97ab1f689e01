// Package nfekey decodes the fields of a 44-digit NF-e access key that the
// apuração needs: the competência and the issuer CNPJ.
//
// Layout (positions are 0-based): cUF [0,2) AAMM [2,6) CNPJ [6,20) mod [20,22)
// série [22,25) nNF [25,34) tpEmis [34] cNF [35,43) cDV [43].
package nfekey

import (
	"strings"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
)

// KeyLength is the size of a well-formed access key.
const KeyLength = 44

// PeriodOf returns the "MM-YY" competência encoded in the key, or
// domain.UnknownPeriod when the key is too short.
func PeriodOf(key string) domain.PeriodKey {
	key = strings.TrimSpace(key)
	if len(key) < KeyLength {
		return domain.UnknownPeriod
	}
	return domain.PeriodKey(key[4:6] + "-" + key[2:4])
}

// OrganizationIDOf returns the issuer CNPJ formatted as ##.###.###/####-##.
func OrganizationIDOf(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if len(key) < KeyLength {
		return "", false
	}
	return FormatCNPJ(key[6:20]), true
}

// FormatCNPJ groups a 14 character CNPJ as 2-3-3-4-2. Other lengths are
// returned untouched.
func FormatCNPJ(cnpj string) string {
	if len(cnpj) != 14 {
		return cnpj
	}
	return cnpj[0:2] + "." + cnpj[2:5] + "." + cnpj[5:8] + "/" + cnpj[8:12] + "-" + cnpj[12:14]
}
