package ingest

import (
	"testing"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
)

func TestResolveColumnsExact(t *testing.T) {
	header := []string{"cfop", "vl_item", "ser", "num_doc", "monofasico", "chv_nfe"}
	got := resolveColumns(header)
	want := map[domain.Field]int{
		domain.FieldCFOP:       0,
		domain.FieldValue:      1,
		domain.FieldSeries:     2,
		domain.FieldNumber:     3,
		domain.FieldMonofasico: 4,
		domain.FieldKey:        5,
	}
	for f, idx := range want {
		if got[f] != idx {
			t.Errorf("campo %d na coluna %d, esperado %d", f, got[f], idx)
		}
	}
}

func TestResolveColumnsKeywordsAndAccents(t *testing.T) {
	header := []string{"Observação", "Chave de Acesso NF-e", "Série", "Número da Nota", "Valor do Item (R$)", "CFOP Saída"}
	got := resolveColumns(header)

	checks := map[domain.Field]int{
		domain.FieldKey:    1,
		domain.FieldSeries: 2,
		domain.FieldNumber: 3,
		domain.FieldValue:  4,
		domain.FieldCFOP:   5,
	}
	for f, idx := range checks {
		if got[f] != idx {
			t.Errorf("campo %d na coluna %d, esperado %d (resolvido: %v)", f, got[f], idx, got)
		}
	}
	if _, ok := got[domain.FieldMonofasico]; ok {
		t.Errorf("monofásico não deveria ser resolvido: %v", got)
	}
}

func TestResolveColumnsFuzzyFallback(t *testing.T) {
	header := []string{"CFOP", "VLITEM", "OBS"}
	got := resolveColumns(header)
	if idx, ok := got[domain.FieldValue]; !ok || idx != 1 {
		t.Errorf("esperava VLITEM resolvido por aproximação, obteve %v", got)
	}
	if _, ok := got[domain.FieldSeries]; ok {
		t.Errorf("OBS não deveria virar série: %v", got)
	}
}

func TestResolveColumnsDoesNotReuseHeader(t *testing.T) {
	got := resolveColumns([]string{"CFOP"})
	if len(got) != 1 {
		t.Errorf("uma coluna só pode atender um campo: %v", got)
	}
}
