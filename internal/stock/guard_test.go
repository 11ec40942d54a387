package stock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/stock"
)

type fakeCatalog struct {
	products map[int64]domain.Product
}

func (f *fakeCatalog) FindByID(_ context.Context, id int64) (domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeCatalog) FindByScanCode(context.Context, string) (domain.Product, error) {
	return domain.Product{}, domain.ErrProductNotFound
}

func (f *fakeCatalog) Search(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) DecrementStock(context.Context, int64, int) error { return nil }

func (f *fakeCatalog) UpdateStock(context.Context, domain.Product) error { return nil }

func TestCheckAvailability(t *testing.T) {
	catalog := &fakeCatalog{products: map[int64]domain.Product{
		1: {
			ID:        1,
			Stock:     10,
			SalePrice: domain.NewMoney(decimal.RequireFromString("4.50"), domain.PEN),
		},
	}}
	guard := stock.NewGuard(catalog)

	tests := []struct {
		name            string
		productID       int64
		requested       int
		alreadyReserved int
		wantErr         error
	}{
		{
			name:      "within stock: ok",
			productID: 1,
			requested: 10,
		},
		{
			name:      "zero quantity: invalid",
			productID: 1,
			requested: 0,
			wantErr:   domain.ErrInvalidQuantity,
		},
		{
			name:      "negative quantity: invalid",
			productID: 1,
			requested: -3,
			wantErr:   domain.ErrInvalidQuantity,
		},
		{
			name:      "exceeds stock",
			productID: 1,
			requested: 11,
			wantErr:   domain.InsufficientStockError{ProductID: 1, Requested: 11, Available: 10},
		},
		{
			name:            "cart reservation counts against availability",
			productID:       1,
			requested:       5,
			alreadyReserved: 6,
			wantErr:         domain.InsufficientStockError{ProductID: 1, Requested: 5, Available: 4},
		},
		{
			name:            "exactly the remaining availability: ok",
			productID:       1,
			requested:       4,
			alreadyReserved: 6,
		},
		{
			name:      "unknown product",
			productID: 42,
			requested: 1,
			wantErr:   domain.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()

			product, err := guard.CheckAvailability(ctx, tt.productID, tt.requested, tt.alreadyReserved)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.productID, product.ID)
			assert.False(t, product.SalePrice.IsZero())
		})
	}
}
