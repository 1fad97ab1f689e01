// Package ingest turns uploaded spreadsheets and NF-e XML files into line
// items. Every field goes through an explicit parsing step that maps
// unreadable values to a documented default instead of failing.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// maxHeaderSearch is how many leading rows are scanned for the header.
const maxHeaderSearch = 40

var (
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrHeaderNotFound    = errors.New("cabeçalho com as colunas da apuração não encontrado")
	ErrNoItems           = errors.New("nenhum item encontrado nos arquivos enviados")
)

// Service defines the ingestion operations.
type Service interface {
	ParseFiles(files []domain.UploadedFile) ([]domain.LineItem, error)
}

type service struct {
	logger *zap.Logger
}

// NewService creates a new ingestion service.
func NewService(logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{logger: logger}
}

// ParseFiles reads every file and concatenates their items. Spreadsheets
// that cannot be read abort the upload; broken XML files are skipped so one
// bad invoice does not discard the batch.
func (svc *service) ParseFiles(files []domain.UploadedFile) ([]domain.LineItem, error) {
	var items []domain.LineItem
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		var (
			parsed []domain.LineItem
			err    error
		)
		switch ext {
		case ".xml":
			parsed, err = svc.parseNFe(file.Data)
			if err != nil {
				svc.logger.Warn("XML ignorado", zap.String("file", file.Name), zap.Error(err))
				continue
			}
		case ".csv", ".txt":
			parsed, err = svc.parseRows(svc.readCSV(file.Data))
		case ".xlsx":
			parsed, err = svc.parseRows(svc.readXLSX(file.Data))
		case ".xls":
			parsed, err = svc.parseRows(svc.readXLS(file.Data))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler %s: %w", file.Name, err)
		}
		svc.logger.Debug("arquivo lido", zap.String("file", file.Name), zap.Int("items", len(parsed)))
		items = append(items, parsed...)
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

func (svc *service) readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := data
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("erro ao decodificar CSV: %w", err)
		}
		text = decoded
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// sniffDelimiter picks ';' or ',' from the first line.
func sniffDelimiter(text []byte) rune {
	first := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	if bytes.Count(first, []byte(";")) >= bytes.Count(first, []byte(",")) && bytes.Contains(first, []byte(";")) {
		return ';'
	}
	if bytes.Contains(first, []byte("\t")) && !bytes.Contains(first, []byte(",")) {
		return '\t'
	}
	return ','
}

func (svc *service) readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("planilha sem abas")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func (svc *service) readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		if _, errX := excelize.OpenReader(bytes.NewReader(data)); errX == nil {
			return svc.readXLSX(data)
		}
		return nil, err
	}

	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, errors.New("planilha sem abas")
	}
	var rows [][]string
	for _, row := range sheets[0].GetRows() {
		var cols []string
		for _, cell := range row.GetCols() {
			cols = append(cols, cell.GetString())
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

// parseRows locates the header row and converts the remaining rows.
func (svc *service) parseRows(rows [][]string, err error) ([]domain.LineItem, error) {
	if err != nil {
		return nil, err
	}
	headerIdx, resolved := findHeader(rows)
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}

	var present domain.Field
	for field := range resolved {
		present |= field
	}

	var items []domain.LineItem
	for _, row := range rows[headerIdx+1:] {
		if isBlank(row) {
			continue
		}
		get := func(f domain.Field) string {
			idx, ok := resolved[f]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		items = append(items, domain.LineItem{
			CFOP:       get(domain.FieldCFOP),
			Value:      ParseValue(get(domain.FieldValue)),
			Series:     get(domain.FieldSeries),
			Number:     get(domain.FieldNumber),
			Monofasico: ParseFlag(get(domain.FieldMonofasico)),
			AccessKey:  get(domain.FieldKey),
			Present:    present,
		})
	}
	return items, nil
}

// findHeader returns the first row that resolves at least two known columns.
func findHeader(rows [][]string) (int, map[domain.Field]int) {
	limit := maxHeaderSearch
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if isBlank(rows[i]) {
			continue
		}
		if resolved := resolveColumns(rows[i]); len(resolved) >= 2 {
			return i, resolved
		}
	}
	return -1, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseNFe produces one line item per det of an authorized NF-e. PIS CST 04
// (revenda monofásica) marks the item as monofásico.
func (svc *service) parseNFe(data []byte) ([]domain.LineItem, error) {
	var nfeProc domain.NFeProc
	if err := xml.Unmarshal(data, &nfeProc); err != nil {
		return nil, fmt.Errorf("falha ao fazer parse do XML: %w", err)
	}
	infNFe := nfeProc.NFe.InfNFe
	if infNFe.Ide.NNF == "" {
		return nil, errors.New("XML inválido ou não é uma NF-e")
	}

	key := strings.TrimSpace(nfeProc.ProtNFe.InfProt.ChNFe)
	if key == "" {
		key = strings.TrimPrefix(infNFe.ID, "NFe")
	}

	const all = domain.FieldCFOP | domain.FieldValue | domain.FieldSeries | domain.FieldNumber | domain.FieldMonofasico | domain.FieldKey
	items := make([]domain.LineItem, 0, len(infNFe.Det))
	for _, det := range infNFe.Det {
		items = append(items, domain.LineItem{
			CFOP:       strings.TrimSpace(det.Prod.CFOP),
			Value:      ParseValue(det.Prod.VProd),
			Series:     strings.TrimSpace(infNFe.Ide.Serie),
			Number:     strings.TrimSpace(infNFe.Ide.NNF),
			Monofasico: det.PISCST() == "04",
			AccessKey:  key,
			Present:    all,
		})
	}
	return items, nil
}
