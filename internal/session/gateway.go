// Package session is the single entry point for every cart-mutation request.
// Each operation resumes the cart from the carried-forward token, mutates it,
// and hands back a token the next request can carry forward again.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nikolayk812/pos-checkout/internal/checkout"
	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/metrics"
	"github.com/nikolayk812/pos-checkout/internal/port"
	"github.com/nikolayk812/pos-checkout/internal/pricing"
	"github.com/nikolayk812/pos-checkout/internal/stock"
)

// Result is what every mutation hands back: the reissued token, the cart it
// encodes, and transient display lists populated by the search operations.
// Display lists never feed back into the cart's totals.
type Result struct {
	Token string
	Cart  domain.Cart

	Products  []domain.Product
	Customers []domain.Customer
}

// FinalizeResult reports a committed sale. NotificationError is non-fatal:
// the sale stands regardless of delivery.
type FinalizeResult struct {
	Token string
	Cart  domain.Cart

	SaleID            int64
	DocumentNumber    string
	EmailSent         bool
	NotificationError string
}

type Gateway struct {
	catalog   port.ProductCatalog
	customers port.CustomerDirectory
	sales     port.SaleStore
	guard     *stock.Guard
	engine    *checkout.Engine
	numberer  *checkout.Numberer
	renderer  port.DocumentRenderer
	notifier  port.NotificationSender
	logger    *zap.Logger
	metrics   *metrics.CheckoutMetrics
}

func NewGateway(
	catalog port.ProductCatalog,
	customers port.CustomerDirectory,
	sales port.SaleStore,
	renderer port.DocumentRenderer,
	notifier port.NotificationSender,
	logger *zap.Logger,
	m *metrics.CheckoutMetrics,
) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		catalog:   catalog,
		customers: customers,
		sales:     sales,
		guard:     stock.NewGuard(catalog),
		engine:    checkout.NewEngine(sales, logger),
		numberer:  checkout.NewNumberer(sales),
		renderer:  renderer,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
	}
}

// resume rebuilds the cart from the token, falling back to a fresh cart when
// the token is absent or unparseable.
func (g *Gateway) resume(token string) (uuid.UUID, domain.Cart) {
	if id, cart, ok := decodeToken(token); ok {
		return id, cart
	}

	return uuid.New(), domain.NewCart()
}

// reissue encodes the cart back into a token, preserving the cart state even
// when the operation itself failed.
func (g *Gateway) reissue(id uuid.UUID, cart domain.Cart) Result {
	token, err := encodeToken(id, cart)
	if err != nil {
		// Marshalling a cart cannot realistically fail; keep the raw
		// cart so the caller at least renders the current state.
		g.logger.Error("cart token encode failed", zap.Error(err))
	}

	return Result{Token: token, Cart: cart}
}

// SearchProducts resolves a scan code exactly when one matches, otherwise
// falls back to a text search. The cart itself is not mutated.
func (g *Gateway) SearchProducts(ctx context.Context, clerk domain.Clerk, token, query string) (Result, error) {
	id, cart := g.resume(token)
	result := g.reissue(id, cart)

	query = strings.TrimSpace(query)
	if query == "" {
		return result, nil
	}

	if product, err := g.catalog.FindByScanCode(ctx, query); err == nil {
		result.Products = []domain.Product{product}
		return result, nil
	} else if !errors.Is(err, domain.ErrProductNotFound) {
		return result, fmt.Errorf("catalog.FindByScanCode: %w", err)
	}

	products, err := g.catalog.Search(ctx, query)
	if err != nil {
		return result, fmt.Errorf("catalog.Search: %w", err)
	}

	result.Products = products
	return result, nil
}

func (g *Gateway) SearchCustomers(ctx context.Context, clerk domain.Clerk, token, query string) (Result, error) {
	id, cart := g.resume(token)
	result := g.reissue(id, cart)

	query = strings.TrimSpace(query)
	if query == "" {
		return result, nil
	}

	customers, err := g.customers.Search(ctx, query)
	if err != nil {
		return result, fmt.Errorf("customers.Search: %w", err)
	}

	result.Customers = customers
	return result, nil
}

// AddLine reserves quantity of a product in the cart. Quantity already in the
// cart counts against availability; the unit price is snapshotted on first
// add.
func (g *Gateway) AddLine(ctx context.Context, clerk domain.Clerk, token string, productID int64, quantity int) (Result, error) {
	id, cart := g.resume(token)

	product, err := g.guard.CheckAvailability(ctx, productID, quantity, cart.ReservedQuantity(productID))
	if err != nil {
		return g.reissue(id, cart), err
	}

	cart.UpsertLine(productID, quantity, product.SalePrice)
	pricing.Recalculate(&cart)

	g.logger.Debug("line added",
		zap.String("cart_id", id.String()),
		zap.Int64("clerk_id", clerk.ID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))

	return g.reissue(id, cart), nil
}

func (g *Gateway) RemoveLine(ctx context.Context, clerk domain.Clerk, token string, productID int64) (Result, error) {
	id, cart := g.resume(token)

	cart.RemoveLine(productID)
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

func (g *Gateway) AssignCustomer(ctx context.Context, clerk domain.Clerk, token string, customerID int64) (Result, error) {
	id, cart := g.resume(token)

	if _, err := g.customers.FindByID(ctx, customerID); err != nil {
		return g.reissue(id, cart), fmt.Errorf("customers.FindByID: %w", err)
	}

	cart.CustomerID = &customerID
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

func (g *Gateway) UnassignCustomer(ctx context.Context, clerk domain.Clerk, token string) (Result, error) {
	id, cart := g.resume(token)

	cart.CustomerID = nil
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

// RegisterCustomerAndAssign creates a walk-in customer with a DNI document
// and assigns it to the cart. On a duplicate document number the cart is
// preserved and the error surfaced.
func (g *Gateway) RegisterCustomerAndAssign(ctx context.Context, clerk domain.Clerk, token, names, dni string) (Result, error) {
	id, cart := g.resume(token)

	names = strings.TrimSpace(names)
	dni = strings.TrimSpace(dni)
	if names == "" || dni == "" {
		return g.reissue(id, cart), fmt.Errorf("names and document number are required")
	}

	customerID, err := g.customers.Create(ctx, domain.Customer{
		DocumentType:   domain.CustomerDocumentDNI,
		DocumentNumber: dni,
		Names:          names,
		RegisteredAt:   time.Now(),
	})
	if err != nil {
		return g.reissue(id, cart), fmt.Errorf("customers.Create: %w", err)
	}

	cart.CustomerID = &customerID
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

func (g *Gateway) SetDocumentType(ctx context.Context, clerk domain.Clerk, token string, docType domain.DocumentType) (Result, error) {
	id, cart := g.resume(token)

	if !docType.Valid() {
		return g.reissue(id, cart), fmt.Errorf("unknown document type %q", docType)
	}

	cart.DocumentType = docType
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

func (g *Gateway) SetPaymentMethod(ctx context.Context, clerk domain.Clerk, token string, method domain.PaymentMethod) (Result, error) {
	id, cart := g.resume(token)

	if !method.Valid() {
		return g.reissue(id, cart), fmt.Errorf("unknown payment method %q", method)
	}

	cart.PaymentMethod = method
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

// Clear drops all lines but keeps the document type, payment method and
// customer selection.
func (g *Gateway) Clear(ctx context.Context, clerk domain.Clerk, token string) (Result, error) {
	id, cart := g.resume(token)

	cart.Clear()
	pricing.Recalculate(&cart)

	return g.reissue(id, cart), nil
}

// Cancel discards the cart entirely and hands back a fresh one.
func (g *Gateway) Cancel(ctx context.Context, clerk domain.Clerk, token string) (Result, error) {
	cart := domain.NewCart()
	return g.reissue(uuid.New(), cart), nil
}

// Finalize commits the cart. On any error the token still carries the intact
// cart so the clerk can adjust and retry; only a committed sale clears it.
func (g *Gateway) Finalize(ctx context.Context, clerk domain.Clerk, token string, emailDelivery bool) (FinalizeResult, error) {
	id, cart := g.resume(token)
	started := time.Now()

	var customer *domain.Customer
	if cart.CustomerID != nil {
		found, err := g.customers.FindByID(ctx, *cart.CustomerID)
		if err != nil {
			return g.preserved(id, cart), fmt.Errorf("customers.FindByID: %w", err)
		}
		customer = &found
	}

	saleID, err := g.engine.Commit(ctx, checkout.CommitRequest{
		Cart:          cart,
		ClerkID:       clerk.ID,
		Customer:      customer,
		EmailDelivery: emailDelivery,
	})
	if err != nil {
		g.observe("failed", started)
		return g.preserved(id, cart), err
	}

	result := FinalizeResult{SaleID: saleID}

	number, err := g.numberer.Assign(ctx, saleID, cart.DocumentType)
	if err != nil {
		// The sale is already committed; numbering is retried by the
		// next document lookup, not by rolling anything back.
		g.logger.Error("document numbering failed",
			zap.Int64("sale_id", saleID),
			zap.Error(err))
	} else {
		result.DocumentNumber = number
	}

	if emailDelivery {
		result.EmailSent, result.NotificationError = g.deliver(ctx, saleID, customer)
	}

	g.observe("committed", started)

	fresh := g.reissue(uuid.New(), domain.NewCart())
	result.Token = fresh.Token
	result.Cart = fresh.Cart

	return result, nil
}

// deliver renders the committed document and emails it. Failures are reported
// on the result, never as an error: the sale stands.
func (g *Gateway) deliver(ctx context.Context, saleID int64, customer *domain.Customer) (bool, string) {
	if customer == nil || customer.Email == "" {
		return false, "customer has no registered email"
	}

	sale, err := g.sales.FindByID(ctx, saleID)
	if err != nil {
		return false, fmt.Sprintf("load sale: %v", err)
	}

	products := make([]domain.Product, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		product, err := g.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			return false, fmt.Sprintf("load product %d: %v", line.ProductID, err)
		}
		products = append(products, product)
	}

	document, err := g.renderer.Render(ctx, sale, products)
	if err != nil {
		return false, fmt.Sprintf("render document: %v", err)
	}

	if err := g.notifier.SendReceipt(ctx, customer.Email, sale, document); err != nil {
		g.logger.Warn("receipt delivery failed",
			zap.Int64("sale_id", saleID),
			zap.Error(err))
		return false, err.Error()
	}

	return true, ""
}

func (g *Gateway) preserved(id uuid.UUID, cart domain.Cart) FinalizeResult {
	kept := g.reissue(id, cart)
	return FinalizeResult{Token: kept.Token, Cart: kept.Cart}
}

func (g *Gateway) observe(status string, started time.Time) {
	if g.metrics == nil {
		return
	}

	g.metrics.Commits.WithLabelValues(status).Inc()
	g.metrics.LatencyMS.WithLabelValues(status).Observe(float64(time.Since(started).Milliseconds()))
}
