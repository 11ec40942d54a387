package port

import (
	"context"

	"github.com/nikolayk812/pos-checkout/internal/domain"
)

type ProductCatalog interface {
	FindByID(ctx context.Context, id int64) (domain.Product, error)
	FindByScanCode(ctx context.Context, code string) (domain.Product, error)
	Search(ctx context.Context, text string) ([]domain.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
	UpdateStock(ctx context.Context, product domain.Product) error
}
