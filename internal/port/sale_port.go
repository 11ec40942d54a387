package port

import (
	"context"

	"github.com/nikolayk812/pos-checkout/internal/domain"
)

// SaleTx is the unit of work available inside a sale commit transaction.
// Everything done through it either commits as a whole or rolls back as a
// whole, including stock decrements.
type SaleTx interface {
	InsertSaleWithLines(ctx context.Context, sale domain.Sale) (int64, error)

	// ProductForUpdate reads the authoritative product row, locked until
	// the enclosing transaction ends.
	ProductForUpdate(ctx context.Context, productID int64) (domain.Product, error)

	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

type SaleStore interface {
	// InTx runs fn inside one serializable transaction; any error from fn
	// rolls back every change made through the SaleTx.
	InTx(ctx context.Context, fn func(tx SaleTx) error) error

	// MaxDocumentNumber returns the highest assigned sequence number in a
	// series, or nil if the series is empty.
	MaxDocumentNumber(ctx context.Context, series domain.DocumentType) (*int, error)

	UpdateDocumentNumber(ctx context.Context, saleID int64, number string) error

	FindByID(ctx context.Context, id int64) (domain.Sale, error)
}
