package checkout

import (
	"context"
	"fmt"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

// Numberer assigns per-series sequential document numbers such as
// F001-000001 (invoices) and B001-000001 (receipts).
type Numberer struct {
	store port.SaleStore
}

func NewNumberer(store port.SaleStore) *Numberer {
	return &Numberer{store: store}
}

// Assign computes max existing number in the series plus one and writes it to
// the already-committed sale.
//
// The max read is not serialized with the sale commit: two concurrent commits
// in the same series can read the same max and produce a duplicate number.
// Strict gaplessness is not guaranteed here.
func (n *Numberer) Assign(ctx context.Context, saleID int64, docType domain.DocumentType) (string, error) {
	last, err := n.store.MaxDocumentNumber(ctx, docType)
	if err != nil {
		return "", fmt.Errorf("store.MaxDocumentNumber: %w", err)
	}

	next := 1
	if last != nil {
		next = *last + 1
	}

	number := fmt.Sprintf("%s-%06d", docType.Series(), next)

	if err := n.store.UpdateDocumentNumber(ctx, saleID, number); err != nil {
		return "", fmt.Errorf("store.UpdateDocumentNumber: %w", err)
	}

	return number, nil
}
