package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/ingest"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type returnEntry struct {
	CFOP  string
	Value decimal.Decimal
}

// loadReturnsFile reads a YAML map of CFOP to amount, e.g.
//
//	1202: 150.00
//	"2202": "1.234,56"
//
// Entries come back sorted by CFOP.
func loadReturnsFile(path string) ([]returnEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler %s: %w", path, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("arquivo de devoluções inválido %s: %w", path, err)
	}

	entries := make([]returnEntry, 0, len(raw))
	for cfop, val := range raw {
		value, err := ingest.ParseAmount(val)
		if err != nil {
			return nil, fmt.Errorf("CFOP %s: %w", cfop, err)
		}
		entries = append(entries, returnEntry{CFOP: strings.TrimSpace(cfop), Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CFOP < entries[j].CFOP })
	return entries, nil
}
