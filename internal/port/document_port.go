package port

import (
	"context"

	"github.com/nikolayk812/pos-checkout/internal/domain"
)

// DocumentRenderer produces the printable receipt or invoice. It is only
// called for a committed, numbered sale.
type DocumentRenderer interface {
	Render(ctx context.Context, sale domain.Sale, products []domain.Product) ([]byte, error)
}

// NotificationSender delivers the rendered document to the customer. A
// failure here never invalidates the committed sale.
type NotificationSender interface {
	SendReceipt(ctx context.Context, email string, sale domain.Sale, document []byte) error
}
