// Package returns holds the manually entered devoluções that are subtracted
// from every period's revenue.
package returns

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/shopspring/decimal"
)

// Codes are the CFOPs accepted by the overlay, in display order.
var Codes = []string{"1202", "2202", "1411", "2411"}

var (
	ErrUnknownCode    = errors.New("cfop de devolução não suportado")
	ErrNegativeAmount = errors.New("valor de devolução não pode ser negativo")
)

// Overlay is safe for concurrent use. Negative amounts are rejected and leave
// the previous value in place.
type Overlay struct {
	mu        sync.RWMutex
	amounts   map[string]decimal.Decimal
	confirmed bool
}

// NewOverlay returns an overlay with every code at zero.
func NewOverlay() *Overlay {
	o := &Overlay{}
	o.reset()
	return o
}

func (o *Overlay) reset() {
	o.amounts = make(map[string]decimal.Decimal, len(Codes))
	for _, code := range Codes {
		o.amounts[code] = decimal.Zero
	}
	o.confirmed = false
}

// IsCode reports whether code is one of the overlay slots.
func IsCode(code string) bool {
	for _, c := range Codes {
		if c == code {
			return true
		}
	}
	return false
}

// SetAmount stores the amount for a returns CFOP.
func (o *Overlay) SetAmount(code string, value decimal.Decimal) error {
	if !IsCode(code) {
		return fmt.Errorf("%w: %s", ErrUnknownCode, code)
	}
	if value.IsNegative() {
		return fmt.Errorf("%w: %s=%s", ErrNegativeAmount, code, value.String())
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.amounts[code] = value
	return nil
}

// Confirm marks that returns apply to every period.
func (o *Overlay) Confirm() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.confirmed = true
}

// Reset zeroes every amount and clears the confirmation.
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reset()
}

// Total sums the four amounts.
func (o *Overlay) Total() decimal.Decimal {
	return o.State().Total()
}

// State returns a copy of the overlay to hand to the aggregation.
func (o *Overlay) State() domain.ReturnsState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	amounts := make(map[string]decimal.Decimal, len(o.amounts))
	for k, v := range o.amounts {
		amounts[k] = v
	}
	return domain.ReturnsState{Amounts: amounts, Confirmed: o.confirmed}
}
