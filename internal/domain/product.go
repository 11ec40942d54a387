package domain

// Product is owned by the catalog collaborator; the checkout core reads it
// and decrements Stock only inside a committed sale transaction.
type Product struct {
	ID         int64
	Name       string
	ScanCode   string
	Brand      string
	CategoryID int64
	CostPrice  Money
	SalePrice  Money
	Stock      int
	Active     bool
}
