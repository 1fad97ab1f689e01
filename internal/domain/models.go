// internal/domain/models.go
package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PeriodKey identifies a competência in the "MM-YY" form.
type PeriodKey string

// UnknownPeriod is used for records whose access key cannot be decoded.
const UnknownPeriod PeriodKey = "Desconhecido"

// DefaultSeries is the bucket for records without a series.
const DefaultSeries = "Única"

// Less orders periods chronologically (year, then month). Unknown and
// malformed keys sort after every valid period.
func (p PeriodKey) Less(other PeriodKey) bool {
	py, pm, pok := p.parts()
	oy, om, ook := other.parts()
	switch {
	case pok && ook:
		if py != oy {
			return py < oy
		}
		return pm < om
	case pok != ook:
		return pok
	default:
		return string(p) < string(other)
	}
}

func (p PeriodKey) parts() (year, month int, ok bool) {
	s := string(p)
	if len(s) != 5 || s[2] != '-' {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}

// Field flags which columns were present in the source for a LineItem.
type Field uint8

const (
	FieldCFOP Field = 1 << iota
	FieldValue
	FieldSeries
	FieldNumber
	FieldMonofasico
	FieldKey
)

// LineItem is a single invoice item after the parsing step. Absent columns
// leave the zero value in place and the matching bit unset in Present.
type LineItem struct {
	CFOP       string          `json:"cfop"`
	Value      decimal.Decimal `json:"vl_item"`
	Series     string          `json:"ser"`
	Number     string          `json:"num_doc"`
	Monofasico bool            `json:"monofasico"`
	AccessKey  string          `json:"chv_nfe"`
	Present    Field           `json:"-"`
}

// Has reports whether the field was present in the source record.
func (l LineItem) Has(f Field) bool {
	return l.Present&f != 0
}

// ReturnsState is an immutable snapshot of a returns overlay.
type ReturnsState struct {
	Amounts   map[string]decimal.Decimal `json:"amounts"`
	Confirmed bool                       `json:"confirmed"`
}

// Total sums the overlay amounts.
func (s ReturnsState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s.Amounts {
		total = total.Add(v)
	}
	return total
}

// CategoryTotals holds the four revenue categories.
type CategoryTotals struct {
	TaxedNormal          decimal.Decimal `json:"tributado_normal"`
	TaxedMonofasico      decimal.Decimal `json:"tributado_monofasico"`
	SubstituteNormal     decimal.Decimal `json:"substituto_normal"`
	SubstituteMonofasico decimal.Decimal `json:"substituto_monofasico"`
}

// Sum returns the revenue total of the four categories.
func (c CategoryTotals) Sum() decimal.Decimal {
	return c.TaxedNormal.Add(c.TaxedMonofasico).Add(c.SubstituteNormal).Add(c.SubstituteMonofasico)
}

// CFOPTotal is one row of the per-CFOP table.
type CFOPTotal struct {
	CFOP  string          `json:"cfop"`
	Total decimal.Decimal `json:"total"`
}

// SeriesGaps lists the missing numbers of a series.
type SeriesGaps struct {
	Series  string `json:"serie"`
	Missing []int  `json:"faltantes"`
}

// ReturnsSummary is only attached to reports where returns apply.
type ReturnsSummary struct {
	Total decimal.Decimal `json:"total"`
	Net   decimal.Decimal `json:"liquido"`
}

// PeriodReport is the aggregation output for one period.
type PeriodReport struct {
	Period       PeriodKey       `json:"periodo"`
	Gaps         []SeriesGaps    `json:"faltantes"`
	CFOPTotals   []CFOPTotal     `json:"totais_cfop"`
	Categories   CategoryTotals  `json:"categorias"`
	RevenueTotal decimal.Decimal `json:"total_faturamento"`
	ReturnsTotal decimal.Decimal `json:"-"`
	NetTotal     decimal.Decimal `json:"-"`
	HasReturns   bool            `json:"tem_devolucoes"`
	Returns      *ReturnsSummary `json:"devolucoes,omitempty"`
}

// MissingStatus is the export status of a missing number.
type MissingStatus string

const (
	StatusMissing   MissingStatus = "FALTANTE"
	StatusCancelled MissingStatus = "CANC/INUT"
)

// MissingEntry is a (number, status) pair for the export.
type MissingEntry struct {
	Number int           `json:"numero"`
	Status MissingStatus `json:"situacao"`
}

// SeriesExport groups the export rows of a series.
type SeriesExport struct {
	Series  string         `json:"serie"`
	Entries []MissingEntry `json:"numeros"`
}

// PeriodExport is what the report assembler consumes.
type PeriodExport struct {
	Report PeriodReport   `json:"relatorio"`
	Series []SeriesExport `json:"series"`
}

// UploadedFile is a named input handed to ingestion.
type UploadedFile struct {
	Name string
	Data []byte
}

// SessionSummary describes a report session after ingestion.
type SessionSummary struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"cnpj,omitempty"`
	Periods        []PeriodKey `json:"periodos"`
	Records        int         `json:"registros"`
}
