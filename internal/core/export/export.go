// Package export renders period reports for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// sheetName turns a period into a valid sheet name ("01-24" -> "Apuração 01-24").
func sheetName(period domain.PeriodKey) string {
	name := []rune("Apuração " + string(period))
	if len(name) > 31 {
		name = name[:31]
	}
	return string(name)
}

// FormatMoney writes a value with two decimals and a comma separator.
func FormatMoney(val decimal.Decimal) string {
	return strings.Replace(val.StringFixed(2), ".", ",", 1)
}

// Workbook writes one sheet per period with the category totals, the CFOP
// table and the missing numbers with their status. Returns and net totals
// are only written for periods where returns apply.
func Workbook(organization string, exports []domain.PeriodExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	if len(exports) == 0 {
		if err := f.SetCellValue("Sheet1", "A1", "Nenhuma competência apurada"); err != nil {
			return nil, err
		}
	}

	for i, exp := range exports {
		name := sheetName(exp.Report.Period)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writePeriod(f, name, organization, exp, bold, money); err != nil {
			return nil, fmt.Errorf("erro ao gerar aba %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) write(style int, values ...interface{}) {
	if w.err != nil {
		return
	}
	w.row++
	cell, _ := excelize.CoordinatesToCellName(1, w.row)
	if w.err = w.f.SetSheetRow(w.sheet, cell, &values); w.err != nil {
		return
	}
	if style != 0 {
		end, _ := excelize.CoordinatesToCellName(len(values), w.row)
		w.err = w.f.SetCellStyle(w.sheet, cell, end, style)
	}
}

func (w *sheetWriter) money(style int, label string, val decimal.Decimal) {
	if w.err != nil {
		return
	}
	w.write(0, label, val.InexactFloat64())
	if w.err == nil {
		cell, _ := excelize.CoordinatesToCellName(2, w.row)
		w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
}

func (w *sheetWriter) skip() {
	w.row++
}

func writePeriod(f *excelize.File, sheet, organization string, exp domain.PeriodExport, bold, money int) error {
	r := exp.Report
	w := &sheetWriter{f: f, sheet: sheet}

	w.write(bold, "Competência", string(r.Period))
	if organization != "" {
		w.write(bold, "CNPJ", organization)
	}
	w.skip()

	w.money(money, "Tributado normal", r.Categories.TaxedNormal)
	w.money(money, "Tributado monofásico", r.Categories.TaxedMonofasico)
	w.money(money, "Substituto normal", r.Categories.SubstituteNormal)
	w.money(money, "Substituto monofásico", r.Categories.SubstituteMonofasico)
	w.money(money, "Total faturamento", r.RevenueTotal)
	if r.Returns != nil {
		w.money(money, "Total devoluções", r.Returns.Total)
		w.money(money, "Total líquido", r.Returns.Net)
	}
	w.skip()

	w.write(bold, "CFOP", "Valor")
	for _, t := range r.CFOPTotals {
		w.money(money, t.CFOP, t.Total)
	}
	w.skip()

	w.write(bold, "Série", "Número", "Situação")
	for _, s := range exp.Series {
		for _, e := range s.Entries {
			w.write(0, s.Series, e.Number, string(e.Status))
		}
	}

	if w.err != nil {
		return w.err
	}
	return f.SetColWidth(sheet, "A", "C", 24)
}

// CSV lists every missing number of every period, Windows-1252 encoded and
// separated by ';'. The net column stays empty for periods without returns.
func CSV(exports []domain.PeriodExport) ([]byte, error) {
	var buffer bytes.Buffer
	encoded := transform.NewWriter(&buffer, charmap.Windows1252.NewEncoder())
	writer := csv.NewWriter(encoded)
	writer.Comma = ';'

	header := []string{"Competência", "Série", "Número", "Situação", "Total faturamento", "Total líquido"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, exp := range exports {
		r := exp.Report
		net := ""
		if r.Returns != nil {
			net = FormatMoney(r.Returns.Net)
		}
		for _, s := range exp.Series {
			for _, e := range s.Entries {
				record := []string{
					string(r.Period),
					s.Series,
					fmt.Sprint(e.Number),
					string(e.Status),
					FormatMoney(r.RevenueTotal),
					net,
				}
				if err := writer.Write(record); err != nil {
					return nil, err
				}
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	if err := encoded.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
