package port

import (
	"context"

	"github.com/nikolayk812/pos-checkout/internal/domain"
)

type CustomerDirectory interface {
	FindByID(ctx context.Context, id int64) (domain.Customer, error)
	Search(ctx context.Context, text string) ([]domain.Customer, error)

	// Create returns domain.ErrDuplicateDocumentNumber if the document
	// number already exists.
	Create(ctx context.Context, customer domain.Customer) (int64, error)
}
