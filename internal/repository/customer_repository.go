package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

const customerColumns = `id, document_type, document_number, names, last_names,
	phone, email, address, registered_at`

type customerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomer(pool *pgxpool.Pool) port.CustomerDirectory {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) FindByID(ctx context.Context, id int64) (domain.Customer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)

	customer, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("scanCustomer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) Search(ctx context.Context, text string) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+`
		 FROM customers
		 WHERE names ILIKE '%' || $1 || '%'
		    OR last_names ILIKE '%' || $1 || '%'
		    OR document_number ILIKE '%' || $1 || '%'
		 ORDER BY names, last_names`, text)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanCustomer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) Create(ctx context.Context, customer domain.Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (document_type, document_number, names, last_names,
		                        phone, email, address, registered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		string(customer.DocumentType), customer.DocumentNumber,
		customer.Names, customer.LastNames, customer.Phone,
		customer.Email, customer.Address, customer.RegisteredAt).
		Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, domain.ErrDuplicateDocumentNumber
		}
		return 0, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return id, nil
}

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var customer domain.Customer
	err := row.Scan(&customer.ID, &customer.DocumentType, &customer.DocumentNumber,
		&customer.Names, &customer.LastNames, &customer.Phone,
		&customer.Email, &customer.Address, &customer.RegisteredAt)
	if err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}
