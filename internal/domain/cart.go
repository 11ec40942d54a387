package domain

// CartLine is one product entry in an in-progress sale.
type CartLine struct {
	ProductID    int64
	Quantity     int
	UnitPrice    Money
	LineSubtotal Money
}

// Cart is the sale being assembled across round trips. Lines are ordered by
// first add and keyed uniquely by product id. Subtotal, TaxAmount and Total
// are derived values, recomputed in full after every mutation.
type Cart struct {
	Lines         []CartLine
	CustomerID    *int64
	DocumentType  DocumentType
	PaymentMethod PaymentMethod

	Subtotal  Money
	TaxAmount Money
	Total     Money
}

// NewCart returns an empty cart with the walk-in defaults.
func NewCart() Cart {
	return Cart{
		DocumentType:  DocumentTypeReceipt,
		PaymentMethod: PaymentMethodCash,
		Subtotal:      ZeroMoney(PEN),
		TaxAmount:     ZeroMoney(PEN),
		Total:         ZeroMoney(PEN),
	}
}

func (c *Cart) Line(productID int64) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// ReservedQuantity is how much of a product this cart already holds.
func (c *Cart) ReservedQuantity(productID int64) int {
	line, ok := c.Line(productID)
	if !ok {
		return 0
	}
	return line.Quantity
}

// UpsertLine merges a quantity into an existing line or appends a new one.
// An existing line keeps the unit price captured on first add; price changes
// elsewhere never retroactively alter an in-progress cart.
func (c *Cart) UpsertLine(productID int64, quantity int, unitPrice Money) {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			c.Lines[i].Quantity += quantity
			return
		}
	}

	c.Lines = append(c.Lines, CartLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
}

// RemoveLine is idempotent: removing an absent product is a no-op.
func (c *Cart) RemoveLine(productID int64) bool {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all lines but keeps the document type, payment method and
// assigned customer.
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
