// Package stock is the single authority for "is this quantity fulfillable".
// The add-time check is advisory only; the commit path re-checks against the
// locked product row inside its own transaction.
package stock

import (
	"context"
	"fmt"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

type Guard struct {
	catalog port.ProductCatalog
}

func NewGuard(catalog port.ProductCatalog) *Guard {
	return &Guard{catalog: catalog}
}

// CheckAvailability verifies that requested units of a product can be added
// on top of what the cart already reserves. It returns the product so the
// caller can snapshot its price.
func (g *Guard) CheckAvailability(ctx context.Context, productID int64, requested, alreadyReserved int) (domain.Product, error) {
	if requested <= 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	product, err := g.catalog.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog.FindByID: %w", err)
	}

	available := product.Stock - alreadyReserved
	if requested > available {
		return domain.Product{}, domain.InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: available,
		}
	}

	return product, nil
}
