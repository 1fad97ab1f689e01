package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func sampleExports(withReturns bool) []domain.PeriodExport {
	report := domain.PeriodReport{
		Period: "01-24",
		Gaps:   []domain.SeriesGaps{{Series: "A", Missing: []int{3, 5}}},
		CFOPTotals: []domain.CFOPTotal{
			{CFOP: "5101", Total: decimal.NewFromInt(100)},
			{CFOP: "5949", Total: decimal.NewFromInt(20)},
		},
		Categories:   domain.CategoryTotals{TaxedNormal: decimal.NewFromInt(100)},
		RevenueTotal: decimal.NewFromInt(100),
		NetTotal:     decimal.NewFromInt(100),
	}
	if withReturns {
		report.HasReturns = true
		report.ReturnsTotal = decimal.NewFromInt(15)
		report.NetTotal = decimal.NewFromInt(85)
		report.Returns = &domain.ReturnsSummary{Total: report.ReturnsTotal, Net: report.NetTotal}
	}
	return []domain.PeriodExport{{
		Report: report,
		Series: []domain.SeriesExport{{
			Series: "A",
			Entries: []domain.MissingEntry{
				{Number: 3, Status: domain.StatusMissing},
				{Number: 5, Status: domain.StatusCancelled},
			},
		}},
	}}
}

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Apuração 01-24" {
		t.Fatalf("abas = %v", sheets)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func flatten(rows [][]string) string {
	var lines []string
	for _, r := range rows {
		lines = append(lines, strings.Join(r, "|"))
	}
	return strings.Join(lines, "\n")
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook("12.345.678/0001-99", sampleExports(false))
	if err != nil {
		t.Fatal(err)
	}
	content := flatten(readSheet(t, data))

	for _, want := range []string{"Competência|01-24", "CNPJ|12.345.678/0001-99", "Tributado normal", "A|3|FALTANTE", "A|5|CANC/INUT", "5949"} {
		if !strings.Contains(content, want) {
			t.Errorf("planilha sem %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "Total líquido") {
		t.Errorf("sem devoluções o líquido não deveria aparecer:\n%s", content)
	}
}

func TestWorkbookWithReturns(t *testing.T) {
	data, err := Workbook("", sampleExports(true))
	if err != nil {
		t.Fatal(err)
	}
	content := flatten(readSheet(t, data))
	if !strings.Contains(content, "Total devoluções") || !strings.Contains(content, "Total líquido") {
		t.Errorf("devoluções deveriam aparecer:\n%s", content)
	}
	if strings.Contains(content, "CNPJ") {
		t.Errorf("CNPJ vazio não deveria ser escrito")
	}
}

func TestWorkbookEmpty(t *testing.T) {
	data, err := Workbook("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("planilha vazia deveria ser gerada")
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleExports(true))
	if err != nil {
		t.Fatal(err)
	}
	text, err := charmap.Windows1252.NewDecoder().String(string(data))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("esperava 3 linhas, obteve %d:\n%s", len(lines), text)
	}
	if lines[0] != "Competência;Série;Número;Situação;Total faturamento;Total líquido" {
		t.Errorf("cabeçalho = %q", lines[0])
	}
	if lines[2] != "01-24;A;5;CANC/INUT;100,00;85,00" {
		t.Errorf("linha = %q", lines[2])
	}
}

func TestCSVWithoutReturnsLeavesNetEmpty(t *testing.T) {
	data, err := CSV(sampleExports(false))
	if err != nil {
		t.Fatal(err)
	}
	text, err := charmap.Windows1252.NewDecoder().String(string(data))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 || !strings.HasSuffix(lines[1], ";100,00;") {
		t.Errorf("linhas = %q", lines)
	}
}
