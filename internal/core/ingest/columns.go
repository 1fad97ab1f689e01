package ingest

import (
	"strings"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/schollz/closestmatch"
)

// column describes how a source header is recognised. exact holds the
// normalised names compared for equality, keywords are matched by
// containment and fuzzy is the name handed to closestmatch as last resort.
type column struct {
	field    domain.Field
	exact    []string
	keywords []string
	fuzzy    string
}

// Resolution order matters: a header claimed by one field is not offered to
// the next ones.
var columns = []column{
	{
		field:    domain.FieldKey,
		exact:    []string{"CHV NFE", "CHAVE NFE", "CHAVE", "CHAVE ACESSO", "CHNFE", "CHAVE DE ACESSO"},
		keywords: []string{"CHAVE", "CHV"},
		fuzzy:    "CHV NFE",
	},
	{
		field:    domain.FieldCFOP,
		exact:    []string{"CFOP", "COD CFOP", "CODIGO CFOP"},
		keywords: []string{"CFOP"},
		fuzzy:    "CFOP",
	},
	{
		field:    domain.FieldValue,
		exact:    []string{"VL ITEM", "VALOR ITEM", "VLR ITEM", "VALOR", "VPROD", "VL PROD", "VALOR PRODUTO"},
		keywords: []string{"VL ITEM", "VALOR ITEM", "VLR ITEM", "VALOR DO ITEM"},
		fuzzy:    "VL ITEM",
	},
	{
		field:    domain.FieldNumber,
		exact:    []string{"NUM DOC", "NUMERO DOCUMENTO", "NUMERO", "NNF", "NUM NF", "NUMERO NF", "NOTA", "N DOC"},
		keywords: []string{"NUM DOC", "NUMERO DOC", "NUMERO DO DOC", "NUMERO NOTA", "NUMERO DA NOTA", "NUMERO NF"},
		fuzzy:    "NUM DOC",
	},
	{
		field:    domain.FieldSeries,
		exact:    []string{"SER", "SERIE", "SERIE NF"},
		keywords: []string{"SERIE"},
		fuzzy:    "SERIE",
	},
	{
		field:    domain.FieldMonofasico,
		exact:    []string{"MONOFASICO", "MONO", "IND MONOFASICO"},
		keywords: []string{"MONOFASIC"},
		fuzzy:    "MONOFASICO",
	},
}

// resolveColumns maps each known field to the index of its header column.
// Fields without a matching header are left out of the result.
func resolveColumns(header []string) map[domain.Field]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeText(h)
	}

	claimed := make(map[int]bool)
	resolved := make(map[domain.Field]int)

	for _, col := range columns {
		if idx := findExact(normalized, claimed, col.exact); idx >= 0 {
			resolved[col.field] = idx
			claimed[idx] = true
		}
	}
	for _, col := range columns {
		if _, ok := resolved[col.field]; ok {
			continue
		}
		if idx := findKeyword(normalized, claimed, col.keywords); idx >= 0 {
			resolved[col.field] = idx
			claimed[idx] = true
		}
	}
	for _, col := range columns {
		if _, ok := resolved[col.field]; ok {
			continue
		}
		if idx := findFuzzy(normalized, claimed, col.fuzzy); idx >= 0 {
			resolved[col.field] = idx
			claimed[idx] = true
		}
	}
	return resolved
}

func findExact(headers []string, claimed map[int]bool, names []string) int {
	for _, name := range names {
		for idx, h := range headers {
			if !claimed[idx] && h == name {
				return idx
			}
		}
	}
	return -1
}

func findKeyword(headers []string, claimed map[int]bool, keywords []string) int {
	for _, kw := range keywords {
		for idx, h := range headers {
			if !claimed[idx] && strings.Contains(h, kw) {
				return idx
			}
		}
	}
	return -1
}

// findFuzzy only accepts candidates that start with the same letter and have
// a similar length, closestmatch always returns something otherwise.
func findFuzzy(headers []string, claimed map[int]bool, name string) int {
	var candidates []string
	index := make(map[string]int)
	for idx, h := range headers {
		if claimed[idx] || h == "" {
			continue
		}
		if _, dup := index[h]; dup {
			continue
		}
		index[h] = idx
		candidates = append(candidates, h)
	}
	if len(candidates) == 0 {
		return -1
	}

	cm := closestmatch.New(candidates, []int{2, 3})
	match := cm.Closest(name)
	if match == "" || match[0] != name[0] {
		return -1
	}
	diff := len(match) - len(name)
	if diff < -2 || diff > 2 {
		return -1
	}
	return index[match]
}
