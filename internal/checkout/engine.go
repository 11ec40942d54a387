// Package checkout turns a finalized cart into a persisted sale.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

// State is where the commit path currently is. Failed is terminal and
// reachable from any non-terminal state.
type State string

const (
	StateValidating     State = "validating"
	StatePersisting     State = "persisting"
	StateStockAdjusting State = "stock_adjusting"
	StateCommitted      State = "committed"
	StateFailed         State = "failed"
)

// CommitRequest carries everything the commit path needs. The customer is
// resolved by the caller when the cart has one assigned; identity is always
// explicit, never ambient.
type CommitRequest struct {
	Cart          domain.Cart
	ClerkID       int64
	Customer      *domain.Customer
	EmailDelivery bool
}

type Engine struct {
	store  port.SaleStore
	logger *zap.Logger
}

func NewEngine(store port.SaleStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Commit validates the request, then persists the sale header, all lines and
// every stock decrement in one transaction. Any failure past validation rolls
// the whole sale back; a sale is never left half-applied.
func (e *Engine) Commit(ctx context.Context, req CommitRequest) (int64, error) {
	state := StateValidating

	if err := validate(req); err != nil {
		e.logFailed(state, err)
		return 0, err
	}

	sale := saleFromCart(req)

	var saleID int64
	err := e.store.InTx(ctx, func(tx port.SaleTx) error {
		state = StatePersisting
		id, err := tx.InsertSaleWithLines(ctx, sale)
		if err != nil {
			return fmt.Errorf("tx.InsertSaleWithLines: %w", err)
		}

		// The add-time stock check was advisory; this one is
		// authoritative. Stock may have been consumed since.
		state = StateStockAdjusting
		for _, line := range sale.Lines {
			product, err := tx.ProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("tx.ProductForUpdate: %w", err)
			}

			if product.Stock < line.Quantity {
				return domain.InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: product.Stock,
				}
			}

			if err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("tx.DecrementStock: %w", err)
			}
		}

		saleID = id
		return nil
	})
	if err != nil {
		e.logFailed(state, err)

		var stockErr domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			return 0, stockErr
		}
		return 0, domain.PersistenceError{Err: err}
	}

	e.logger.Info("sale committed",
		zap.Int64("sale_id", saleID),
		zap.Int64("clerk_id", req.ClerkID),
		zap.String("document_type", string(sale.DocumentType)),
		zap.String("total", sale.Total.Amount.String()),
		zap.String("state", string(StateCommitted)))

	return saleID, nil
}

func validate(req CommitRequest) error {
	if req.Cart.IsEmpty() {
		return domain.ErrEmptyCart
	}
	if req.ClerkID == 0 {
		return domain.ErrMissingClerk
	}
	if req.EmailDelivery && req.Customer == nil {
		return domain.ErrCustomerRequired
	}

	switch req.Cart.DocumentType {
	case domain.DocumentTypeInvoice:
		// An invoice cannot be issued to a walk-in.
		if req.Customer == nil || !req.Customer.CanReceive(domain.DocumentTypeInvoice) {
			return domain.ErrDocumentCustomerMismatch
		}
	case domain.DocumentTypeReceipt:
		if req.Customer != nil && !req.Customer.CanReceive(domain.DocumentTypeReceipt) {
			return domain.ErrDocumentCustomerMismatch
		}
	}

	return nil
}

func saleFromCart(req CommitRequest) domain.Sale {
	sale := domain.Sale{
		CustomerID:    req.Cart.CustomerID,
		ClerkID:       req.ClerkID,
		CreatedAt:     time.Now(),
		DocumentType:  req.Cart.DocumentType,
		PaymentMethod: req.Cart.PaymentMethod,
		Subtotal:      req.Cart.Subtotal,
		TaxAmount:     req.Cart.TaxAmount,
		Total:         req.Cart.Total,
	}

	for _, line := range req.Cart.Lines {
		sale.Lines = append(sale.Lines, domain.SaleLine{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineSubtotal: line.LineSubtotal,
		})
	}

	return sale
}

func (e *Engine) logFailed(from State, err error) {
	e.logger.Warn("sale commit failed",
		zap.String("state", string(from)),
		zap.String("next_state", string(StateFailed)),
		zap.Error(err))
}
