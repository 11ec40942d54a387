package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

const productColumns = `id, name, scan_code, brand, category_id, cost_price_amount,
	sale_price_amount, price_currency, stock, active`

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProduct(pool *pgxpool.Pool) port.ProductCatalog {
	return &productRepository{pool: pool}
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scanProduct: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByScanCode(ctx context.Context, code string) (domain.Product, error) {
	if code == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}

	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE scan_code = $1`, code)

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scanProduct: %w", err)
	}

	return product, nil
}

func (r *productRepository) Search(ctx context.Context, text string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE active AND (name ILIKE '%' || $1 || '%' OR scan_code ILIKE '%' || $1 || '%')
		 ORDER BY name`, text)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	return decrementStock(ctx, r.pool, id, quantity)
}

func (r *productRepository) UpdateStock(ctx context.Context, product domain.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = $2 WHERE id = $1`, product.ID, product.Stock)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// execer is the subset of pgx shared by a pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// decrementStock refuses to take stock below zero; the conditional update is
// what holds the non-negative invariant under concurrent sales.
func decrementStock(ctx context.Context, q execer, id int64, quantity int) error {
	tag, err := q.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		id, quantity)
	if err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.InsufficientStockError{ProductID: id, Requested: quantity}
	}

	return nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		product      domain.Product
		costPrice    decimal.Decimal
		salePrice    decimal.Decimal
		currencyCode string
	)

	err := row.Scan(&product.ID, &product.Name, &product.ScanCode, &product.Brand,
		&product.CategoryID, &costPrice, &salePrice, &currencyCode,
		&product.Stock, &product.Active)
	if err != nil {
		return domain.Product{}, err
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	product.CostPrice = domain.NewMoney(costPrice, unit)
	product.SalePrice = domain.NewMoney(salePrice, unit)

	return product, nil
}
