package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

// memStore mimics the transactional semantics of the real store: mutations
// made through a SaleTx are staged and applied only when fn succeeds.
type memStore struct {
	products   map[int64]*domain.Product
	sales      map[int64]domain.Sale
	nextSaleID int64

	failInsert bool
}

func newMemStore(products ...domain.Product) *memStore {
	s := &memStore{
		products: map[int64]*domain.Product{},
		sales:    map[int64]domain.Sale{},
	}
	for _, p := range products {
		p := p
		s.products[p.ID] = &p
	}
	return s
}

func (s *memStore) InTx(_ context.Context, fn func(tx port.SaleTx) error) error {
	tx := &memTx{store: s, decrements: map[int64]int{}}

	if err := fn(tx); err != nil {
		return err // staged changes discarded
	}

	if tx.inserted != nil {
		s.nextSaleID++
		sale := *tx.inserted
		sale.ID = s.nextSaleID
		s.sales[sale.ID] = sale
	}
	for id, qty := range tx.decrements {
		s.products[id].Stock -= qty
	}

	return nil
}

func (s *memStore) MaxDocumentNumber(_ context.Context, series domain.DocumentType) (*int, error) {
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

func (s *memStore) UpdateDocumentNumber(_ context.Context, saleID int64, number string) error {
	sale, ok := s.sales[saleID]
	if !ok {
		return domain.ErrSaleNotFound
	}

	sale.DocumentNumber = &number
	s.sales[saleID] = sale
	return nil
}

func (s *memStore) FindByID(_ context.Context, id int64) (domain.Sale, error) {
	sale, ok := s.sales[id]
	if !ok {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return sale, nil
}

type memTx struct {
	store      *memStore
	inserted   *domain.Sale
	decrements map[int64]int
}

func (t *memTx) InsertSaleWithLines(_ context.Context, sale domain.Sale) (int64, error) {
	if t.store.failInsert {
		return 0, errors.New("insert failed")
	}

	t.inserted = &sale
	return t.store.nextSaleID + 1, nil
}

func (t *memTx) ProductForUpdate(_ context.Context, productID int64) (domain.Product, error) {
	product, ok := t.store.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	staged := *product
	staged.Stock -= t.decrements[productID]
	return staged, nil
}

func (t *memTx) DecrementStock(_ context.Context, productID int64, quantity int) error {
	product, err := t.ProductForUpdate(context.Background(), productID)
	if err != nil {
		return err
	}

	if product.Stock < quantity {
		return fmt.Errorf("stock underflow for product %d", productID)
	}

	t.decrements[productID] += quantity
	return nil
}
