package session_test

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

type fakeCatalog struct {
	products map[int64]*domain.Product
}

func newFakeCatalog(products ...domain.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[int64]*domain.Product{}}
	for _, p := range products {
		p := p
		c.products[p.ID] = &p
	}
	return c
}

func (c *fakeCatalog) FindByID(_ context.Context, id int64) (domain.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return *product, nil
}

func (c *fakeCatalog) FindByScanCode(_ context.Context, code string) (domain.Product, error) {
	for _, product := range c.products {
		if product.ScanCode == code {
			return *product, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (c *fakeCatalog) Search(_ context.Context, text string) ([]domain.Product, error) {
	var found []domain.Product
	for _, product := range c.products {
		if strings.Contains(strings.ToLower(product.Name), strings.ToLower(text)) {
			found = append(found, *product)
		}
	}
	return found, nil
}

func (c *fakeCatalog) DecrementStock(_ context.Context, id int64, quantity int) error {
	product, ok := c.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if product.Stock < quantity {
		return domain.InsufficientStockError{ProductID: id, Requested: quantity, Available: product.Stock}
	}
	product.Stock -= quantity
	return nil
}

func (c *fakeCatalog) UpdateStock(_ context.Context, product domain.Product) error {
	stored, ok := c.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	stored.Stock = product.Stock
	return nil
}

type fakeDirectory struct {
	customers map[int64]domain.Customer
	nextID    int64
}

func newFakeDirectory(customers ...domain.Customer) *fakeDirectory {
	d := &fakeDirectory{customers: map[int64]domain.Customer{}}
	for _, c := range customers {
		d.customers[c.ID] = c
		if c.ID > d.nextID {
			d.nextID = c.ID
		}
	}
	return d
}

func (d *fakeDirectory) FindByID(_ context.Context, id int64) (domain.Customer, error) {
	customer, ok := d.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (d *fakeDirectory) Search(_ context.Context, text string) ([]domain.Customer, error) {
	var found []domain.Customer
	for _, customer := range d.customers {
		if strings.Contains(strings.ToLower(customer.Names), strings.ToLower(text)) ||
			strings.Contains(customer.DocumentNumber, text) {
			found = append(found, customer)
		}
	}
	return found, nil
}

func (d *fakeDirectory) Create(_ context.Context, customer domain.Customer) (int64, error) {
	for _, existing := range d.customers {
		if existing.DocumentNumber == customer.DocumentNumber {
			return 0, domain.ErrDuplicateDocumentNumber
		}
	}

	d.nextID++
	customer.ID = d.nextID
	d.customers[customer.ID] = customer
	return customer.ID, nil
}

// fakeStore applies staged mutations only when the transaction function
// succeeds, mirroring the real store's rollback behavior. Stock lives in the
// shared catalog so commit-time decrements are visible to it.
type fakeStore struct {
	catalog    *fakeCatalog
	sales      map[int64]domain.Sale
	nextSaleID int64
}

func newFakeStore(catalog *fakeCatalog) *fakeStore {
	return &fakeStore{catalog: catalog, sales: map[int64]domain.Sale{}}
}

func (s *fakeStore) InTx(_ context.Context, fn func(tx port.SaleTx) error) error {
	tx := &fakeTx{store: s, decrements: map[int64]int{}}

	if err := fn(tx); err != nil {
		return err
	}

	if tx.inserted != nil {
		s.nextSaleID++
		sale := *tx.inserted
		sale.ID = s.nextSaleID
		s.sales[sale.ID] = sale
	}
	for id, qty := range tx.decrements {
		s.catalog.products[id].Stock -= qty
	}

	return nil
}

func (s *fakeStore) MaxDocumentNumber(_ context.Context, series domain.DocumentType) (*int, error) {
	var max *int
	for _, sale := range s.sales {
		if sale.DocumentType != series || sale.DocumentNumber == nil {
			continue
		}

		parts := strings.SplitN(*sale.DocumentNumber, "-", 2)
		if len(parts) != 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		if max == nil || n > *max {
			max = &n
		}
	}
	return max, nil
}

func (s *fakeStore) UpdateDocumentNumber(_ context.Context, saleID int64, number string) error {
	sale, ok := s.sales[saleID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	sale.DocumentNumber = &number
	s.sales[saleID] = sale
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (domain.Sale, error) {
	sale, ok := s.sales[id]
	if !ok {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return sale, nil
}

type fakeTx struct {
	store      *fakeStore
	inserted   *domain.Sale
	decrements map[int64]int
}

func (t *fakeTx) InsertSaleWithLines(_ context.Context, sale domain.Sale) (int64, error) {
	t.inserted = &sale
	return t.store.nextSaleID + 1, nil
}

func (t *fakeTx) ProductForUpdate(ctx context.Context, productID int64) (domain.Product, error) {
	product, err := t.store.catalog.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	product.Stock -= t.decrements[productID]
	return product, nil
}

func (t *fakeTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	product, err := t.ProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if product.Stock < quantity {
		return domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: product.Stock}
	}

	t.decrements[productID] += quantity
	return nil
}

type fakeRenderer struct {
	err error
}

func (r *fakeRenderer) Render(_ context.Context, sale domain.Sale, _ []domain.Product) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("pdf:" + strconv.FormatInt(sale.ID, 10)), nil
}

type fakeNotifier struct {
	err  error
	sent []string
}

func (n *fakeNotifier) SendReceipt(_ context.Context, email string, _ domain.Sale, _ []byte) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, email)
	return nil
}

var errNotifierDown = errors.New("smtp relay unavailable")
