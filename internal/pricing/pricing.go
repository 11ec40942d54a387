// Package pricing recomputes cart totals from line items. Totals are never
// patched incrementally: every mutation is followed by a full recompute, so a
// missed update path can never leave subtotal and lines out of sync.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nikolayk812/pos-checkout/internal/domain"
)

// taxRate is the IGV sales tax applied to every sale.
var taxRate = decimal.New(18, -2)

// Recalculate rewrites every line subtotal and the cart's subtotal, tax and
// total from the current lines.
func Recalculate(cart *domain.Cart) {
	unit := domain.PEN
	if len(cart.Lines) > 0 {
		unit = cart.Lines[0].UnitPrice.Currency
	}

	subtotal := decimal.Zero
	for i, line := range cart.Lines {
		lineSubtotal := line.UnitPrice.MulInt(line.Quantity)
		cart.Lines[i].LineSubtotal = lineSubtotal
		subtotal = subtotal.Add(lineSubtotal.Amount)
	}

	tax := subtotal.Mul(taxRate).Round(2)

	cart.Subtotal = domain.NewMoney(subtotal, unit)
	cart.TaxAmount = domain.NewMoney(tax, unit)
	cart.Total = domain.NewMoney(subtotal.Add(tax), unit)
}
