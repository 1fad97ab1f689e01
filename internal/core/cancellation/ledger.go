// Package cancellation tracks missing document numbers that were cancelled or
// voided (inutilizados) on purpose. Marks only change how a number is
// reported; they never remove it from a gap list nor touch any total.
package cancellation

import (
	"sort"
	"strconv"
	"sync"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
)

// Key builds the ledger key for a missing number, e.g. "01-24-A-5".
func Key(period domain.PeriodKey, series string, number int) string {
	return string(period) + "-" + series + "-" + strconv.Itoa(number)
}

// Ledger is a set of marked keys, safe for concurrent use. Keys are not
// checked against any gap list; callers only mark keys taken from one.
type Ledger struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{keys: make(map[string]struct{})}
}

func (l *Ledger) Mark(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[key] = struct{}{}
}

func (l *Ledger) Unmark(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, key)
}

func (l *Ledger) IsMarked(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[key]
	return ok
}

// Status maps a key to its export status.
func (l *Ledger) Status(key string) domain.MissingStatus {
	if l.IsMarked(key) {
		return domain.StatusCancelled
	}
	return domain.StatusMissing
}

// Keys returns the marked keys sorted.
func (l *Ledger) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load adds keys read from a repository.
func (l *Ledger) Load(keys []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.keys[k] = struct{}{}
	}
}
