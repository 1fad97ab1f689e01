package ingest

import (
	"errors"
	"testing"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const chave = "43240112345678000199550010000000051000000051"

func newTestService() Service {
	return NewService(zap.NewNop())
}

func TestParseCSV(t *testing.T) {
	data := "cfop;vl_item;ser;num_doc;monofasico;chv_nfe\n" +
		"5101;100,50;1;000010;sim;" + chave + "\n" +
		";;;;;\n" +
		"5405;abc;;NF 11;nao;\n"
	items, err := newTestService().ParseFiles([]domain.UploadedFile{{Name: "itens.csv", Data: []byte(data)}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("esperava 2 itens, obteve %d", len(items))
	}

	first := items[0]
	if first.CFOP != "5101" || !first.Value.Equal(decimal.RequireFromString("100.5")) || !first.Monofasico {
		t.Errorf("primeiro item = %+v", first)
	}
	if first.Series != "1" || first.Number != "000010" || first.AccessKey != chave {
		t.Errorf("primeiro item = %+v", first)
	}
	if !items[1].Value.IsZero() || items[1].Monofasico {
		t.Errorf("valor inválido deveria virar zero: %+v", items[1])
	}
	for _, f := range []domain.Field{domain.FieldCFOP, domain.FieldValue, domain.FieldSeries, domain.FieldNumber, domain.FieldMonofasico, domain.FieldKey} {
		if !items[1].Has(f) {
			t.Errorf("campo %d deveria estar presente", f)
		}
	}
}

func TestParseCSVLatin1AndComma(t *testing.T) {
	text := "CFOP,Série,Número,Valor\n5102,A,7,\"12.5\"\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		t.Fatal(err)
	}
	items, err := newTestService().ParseFiles([]domain.UploadedFile{{Name: "ITENS.CSV", Data: []byte(latin1)}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Series != "A" || items[0].Number != "7" {
		t.Fatalf("itens = %+v", items)
	}
	if items[0].Has(domain.FieldKey) || items[0].Has(domain.FieldMonofasico) {
		t.Errorf("colunas ausentes não deveriam estar marcadas: %b", items[0].Present)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Relatório de itens"},
		{},
		{"CFOP", "VL_ITEM", "SER", "NUM_DOC", "MONOFASICO", "CHV_NFE"},
		{"5101", 100.25, "1", 15, true, chave},
		{"6404", 50, "1", 17, false, chave},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	items, err := newTestService().ParseFiles([]domain.UploadedFile{{Name: "itens.xlsx", Data: buf.Bytes()}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("esperava 2 itens, obteve %d: %+v", len(items), items)
	}
	if !items[0].Value.Equal(decimal.RequireFromString("100.25")) || !items[0].Monofasico || items[0].Number != "15" {
		t.Errorf("primeiro item = %+v", items[0])
	}
	if items[1].CFOP != "6404" || items[1].Monofasico || items[1].AccessKey != chave {
		t.Errorf("segundo item = %+v", items[1])
	}
}

const nfeXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe` + chave + `" versao="4.00">
      <ide><serie>1</serie><nNF>5</nNF></ide>
      <det nItem="1">
        <prod><CFOP>5405</CFOP><vProd>80.00</vProd></prod>
        <imposto><PIS><PISNT><CST>04</CST></PISNT></PIS></imposto>
      </det>
      <det nItem="2">
        <prod><CFOP>5102</CFOP><vProd>20.00</vProd></prod>
        <imposto><PIS><PISAliq><CST>01</CST></PISAliq></PIS></imposto>
      </det>
    </infNFe>
  </NFe>
  <protNFe><infProt><chNFe>` + chave + `</chNFe></infProt></protNFe>
</nfeProc>`

func TestParseNFeXML(t *testing.T) {
	files := []domain.UploadedFile{
		{Name: "nota.xml", Data: []byte(nfeXML)},
		{Name: "quebrado.xml", Data: []byte("<nfeProc><NFe>")},
	}
	items, err := newTestService().ParseFiles(files)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("esperava 2 itens, obteve %d", len(items))
	}
	if items[0].CFOP != "5405" || !items[0].Monofasico || !items[0].Value.Equal(decimal.NewFromInt(80)) {
		t.Errorf("item 1 = %+v", items[0])
	}
	if items[1].Monofasico || items[1].Series != "1" || items[1].Number != "5" || items[1].AccessKey != chave {
		t.Errorf("item 2 = %+v", items[1])
	}
}

func TestParseFilesErrors(t *testing.T) {
	svc := newTestService()

	_, err := svc.ParseFiles([]domain.UploadedFile{{Name: "itens.pdf", Data: []byte("x")}})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("esperava ErrUnsupportedFormat, obteve %v", err)
	}

	_, err = svc.ParseFiles([]domain.UploadedFile{{Name: "itens.csv", Data: []byte("a;b\n1;2\n")}})
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Errorf("esperava ErrHeaderNotFound, obteve %v", err)
	}

	_, err = svc.ParseFiles([]domain.UploadedFile{{Name: "vazio.xml", Data: []byte("nada")}})
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("esperava ErrNoItems, obteve %v", err)
	}

	_, err = svc.ParseFiles([]domain.UploadedFile{{Name: "itens.xlsx", Data: []byte("não é xlsx")}})
	if err == nil {
		t.Error("xlsx inválido deveria falhar")
	}
}

func TestSniffDelimiter(t *testing.T) {
	if sniffDelimiter([]byte("a;b;c\n1,2;3")) != ';' {
		t.Error("esperava ';'")
	}
	if sniffDelimiter([]byte("a,b,c")) != ',' {
		t.Error("esperava ','")
	}
	if sniffDelimiter([]byte("a\tb")) != '\t' {
		t.Error("esperava tab")
	}
}
