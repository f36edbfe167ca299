package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/norafoods/storefront/internal/domain"
)

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository создаёт PostgreSQL-реализацию адресной книги.
func NewAddressRepository(store *Store) domain.AddressRepository {
	return &addressRepository{db: store.DB()}
}

const addressColumns = `id, customer_id, name, phone, line1, line2, city, state, pincode, created_at`

func scanAddress(row interface{ Scan(...interface{}) error }) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID, &a.CustomerID, &a.Name, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.Pincode, &a.CreatedAt,
	)
	return a, err
}

func (r *addressRepository) Create(address domain.Address) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (`+addressColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		address.ID, address.CustomerID, address.Name, address.Phone,
		address.Line1, address.Line2, address.City, address.State,
		address.Pincode, address.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// Get возвращает адрес только его владельцу: фильтр по customer_id в самом
// запросе, чужой адрес неотличим от несуществующего.
func (r *addressRepository) Get(id, customerID string) (domain.Address, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	address, err := scanAddress(r.db.QueryRowContext(ctx, `
		SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND customer_id = $2
	`, id, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, domain.ErrAddressNotFound
		}
		return domain.Address{}, fmt.Errorf("select address: %w", err)
	}
	return address, nil
}

func (r *addressRepository) ListByCustomer(customerID string) ([]domain.Address, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+addressColumns+` FROM addresses
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}
	return addresses, nil
}

func (r *addressRepository) Update(address domain.Address) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET name = $1, phone = $2, line1 = $3, line2 = $4,
		    city = $5, state = $6, pincode = $7
		WHERE id = $8 AND customer_id = $9
	`,
		address.Name, address.Phone, address.Line1, address.Line2,
		address.City, address.State, address.Pincode,
		address.ID, address.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("address rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

func (r *addressRepository) Delete(id, customerID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM addresses WHERE id = $1 AND customer_id = $2
	`, id, customerID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("address rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

var _ domain.AddressRepository = (*addressRepository)(nil)
