package billing

import (
	"sort"
	"strings"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/nfekey"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/returns"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/sequence"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/shopspring/decimal"
)

// CFOPs that make up the revenue categories. Anything outside these sets
// still shows in the CFOP table but not in the revenue total.
var (
	taxedCFOPs      = map[string]bool{"5101": true, "5102": true, "6101": true, "6102": true}
	substituteCFOPs = map[string]bool{"5405": true, "6404": true}
)

// Aggregate builds the report of one period from its line items and the
// current returns overlay. It never fails: values that did not parse are
// already zero, and absent columns simply leave their part of the report
// empty so partial fiscal data stays usable.
func Aggregate(items []domain.LineItem, overlay domain.ReturnsState) domain.PeriodReport {
	var report domain.PeriodReport

	report.Gaps = seriesGaps(items)

	byCFOP := make(map[string]decimal.Decimal)
	for _, item := range items {
		if !item.Has(domain.FieldCFOP) {
			continue
		}
		byCFOP[item.CFOP] = byCFOP[item.CFOP].Add(item.Value)

		switch {
		case taxedCFOPs[item.CFOP] && item.Monofasico:
			report.Categories.TaxedMonofasico = report.Categories.TaxedMonofasico.Add(item.Value)
		case taxedCFOPs[item.CFOP]:
			report.Categories.TaxedNormal = report.Categories.TaxedNormal.Add(item.Value)
		case substituteCFOPs[item.CFOP] && item.Monofasico:
			report.Categories.SubstituteMonofasico = report.Categories.SubstituteMonofasico.Add(item.Value)
		case substituteCFOPs[item.CFOP]:
			report.Categories.SubstituteNormal = report.Categories.SubstituteNormal.Add(item.Value)
		}
	}

	report.CFOPTotals = make([]domain.CFOPTotal, 0, len(byCFOP))
	for cfop, total := range byCFOP {
		report.CFOPTotals = append(report.CFOPTotals, domain.CFOPTotal{CFOP: cfop, Total: total})
	}
	sort.Slice(report.CFOPTotals, func(i, j int) bool {
		return report.CFOPTotals[i].CFOP < report.CFOPTotals[j].CFOP
	})

	report.RevenueTotal = report.Categories.Sum()
	report.ReturnsTotal = overlay.Total()
	report.NetTotal = report.RevenueTotal.Sub(report.ReturnsTotal)
	report.HasReturns = overlay.Confirmed || hasReturnCFOP(items)
	if report.HasReturns {
		report.Returns = &domain.ReturnsSummary{Total: report.ReturnsTotal, Net: report.NetTotal}
	}
	return report
}

func seriesGaps(items []domain.LineItem) []domain.SeriesGaps {
	numbers := seriesNumbers(items)
	gaps := make([]domain.SeriesGaps, 0, len(numbers))
	for series, nums := range numbers {
		gaps = append(gaps, domain.SeriesGaps{Series: series, Missing: sequence.Missing(nums)})
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].Series < gaps[j].Series })
	return gaps
}

// seriesNumbers collects the parsed document numbers of each series.
func seriesNumbers(items []domain.LineItem) map[string][]int {
	numbers := make(map[string][]int)
	for _, item := range items {
		if !item.Has(domain.FieldNumber) {
			continue
		}
		n, ok := sequence.FirstNumber(item.Number)
		if !ok {
			continue
		}
		series := strings.TrimSpace(item.Series)
		if series == "" {
			series = domain.DefaultSeries
		}
		numbers[series] = append(numbers[series], n)
	}
	return numbers
}

// hasReturnCFOP matches by prefix so that variants of the return CFOPs count.
func hasReturnCFOP(items []domain.LineItem) bool {
	for _, item := range items {
		if !item.Has(domain.FieldCFOP) {
			continue
		}
		for _, code := range returns.Codes {
			if strings.HasPrefix(item.CFOP, code) {
				return true
			}
		}
	}
	return false
}

// PartitionByPeriod groups items by the competência of their access key.
// Periods are returned in chronological order with the unknown bucket last.
func PartitionByPeriod(items []domain.LineItem) (map[domain.PeriodKey][]domain.LineItem, []domain.PeriodKey) {
	partitions := make(map[domain.PeriodKey][]domain.LineItem)
	var periods []domain.PeriodKey
	for _, item := range items {
		period := nfekey.PeriodOf(item.AccessKey)
		if _, ok := partitions[period]; !ok {
			periods = append(periods, period)
		}
		partitions[period] = append(partitions[period], item)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Less(periods[j]) })
	return partitions, periods
}

// DetectOrganization returns the CNPJ of the first item with a decodable key.
func DetectOrganization(items []domain.LineItem) (string, bool) {
	for _, item := range items {
		if id, ok := nfekey.OrganizationIDOf(item.AccessKey); ok {
			return id, true
		}
	}
	return "", false
}
