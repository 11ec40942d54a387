package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

type saleRepository struct {
	pool *pgxpool.Pool
}

func NewSale(pool *pgxpool.Pool) port.SaleStore {
	return &saleRepository{pool: pool}
}

// InTx runs fn in a serializable transaction. Stock decrements and the sale
// insert share the transaction so a late stock failure undoes everything.
func (r *saleRepository) InTx(ctx context.Context, fn func(tx port.SaleTx) error) error {
	_, err := withTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(saleTx{tx: tx})
	})
	return err
}

func (r *saleRepository) MaxDocumentNumber(ctx context.Context, series domain.DocumentType) (*int, error) {
	var last *int32
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(CAST(RIGHT(document_number, 6) AS INT))
		 FROM sales
		 WHERE document_type = $1 AND document_number IS NOT NULL`,
		string(series)).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("pool.QueryRow: %w", err)
	}

	if last == nil {
		return nil, nil
	}

	n := int(*last)
	return &n, nil
}

func (r *saleRepository) UpdateDocumentNumber(ctx context.Context, saleID int64, number string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sales SET document_number = $2 WHERE id = $1`, saleID, number)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

func (r *saleRepository) FindByID(ctx context.Context, id int64) (domain.Sale, error) {
	var (
		sale         domain.Sale
		currencyCode string
		subtotal     decimal.Decimal
		tax          decimal.Decimal
		total        decimal.Decimal
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, clerk_id, created_at, document_type, document_number,
		        payment_method, subtotal_amount, tax_amount, total_amount, currency
		 FROM sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.CustomerID, &sale.ClerkID, &sale.CreatedAt,
			&sale.DocumentType, &sale.DocumentNumber, &sale.PaymentMethod,
			&subtotal, &tax, &total, &currencyCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	sale.Subtotal = domain.NewMoney(subtotal, unit)
	sale.TaxAmount = domain.NewMoney(tax, unit)
	sale.Total = domain.NewMoney(total, unit)

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, unit_price_amount, line_subtotal_amount
		 FROM sale_lines WHERE sale_id = $1 ORDER BY product_id`, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line      domain.SaleLine
			unitPrice decimal.Decimal
			lineSub   decimal.Decimal
		)
		if err := rows.Scan(&line.ProductID, &line.Quantity, &unitPrice, &lineSub); err != nil {
			return domain.Sale{}, fmt.Errorf("rows.Scan: %w", err)
		}

		line.UnitPrice = domain.NewMoney(unitPrice, unit)
		line.LineSubtotal = domain.NewMoney(lineSub, unit)
		sale.Lines = append(sale.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Sale{}, fmt.Errorf("rows.Err: %w", err)
	}

	return sale, nil
}

type saleTx struct {
	tx pgx.Tx
}

func (s saleTx) InsertSaleWithLines(ctx context.Context, sale domain.Sale) (int64, error) {
	var saleID int64
	err := s.tx.QueryRow(ctx,
		`INSERT INTO sales (customer_id, clerk_id, created_at, document_type, payment_method,
		                    subtotal_amount, tax_amount, total_amount, currency)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		sale.CustomerID, sale.ClerkID, sale.CreatedAt,
		string(sale.DocumentType), string(sale.PaymentMethod),
		sale.Subtotal.Amount, sale.TaxAmount.Amount, sale.Total.Amount,
		sale.Total.Currency.String()).
		Scan(&saleID)
	if err != nil {
		return 0, fmt.Errorf("tx.QueryRow: %w", err)
	}

	for _, line := range sale.Lines {
		_, err := s.tx.Exec(ctx,
			`INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price_amount, line_subtotal_amount)
			 VALUES ($1, $2, $3, $4, $5)`,
			saleID, line.ProductID, line.Quantity,
			line.UnitPrice.Amount, line.LineSubtotal.Amount)
		if err != nil {
			return 0, fmt.Errorf("tx.Exec: %w", err)
		}
	}

	return saleID, nil
}

func (s saleTx) ProductForUpdate(ctx context.Context, productID int64) (domain.Product, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT id, name, scan_code, brand, category_id, cost_price_amount,
		        sale_price_amount, price_currency, stock, active
		 FROM products WHERE id = $1
		 FOR UPDATE`, productID)

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scanProduct: %w", err)
	}

	return product, nil
}

func (s saleTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return decrementStock(ctx, s.tx, productID, quantity)
}
