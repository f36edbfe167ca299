package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/norafoods/storefront/internal/domain"
)

const opTimeout = 5 * time.Second

type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию каталога. Она же
// обслуживает операции над остатками: один репозиторий — одна таблица.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{db: store.DB()}
}

const productColumns = `
	id, name, slug, category, price_minor, pack_size, stock,
	shelf_life, ingredients, description, image_url, bestseller,
	created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Category, &p.PriceMinor, &p.PackSize, &p.Stock,
		&p.ShelfLife, &p.Ingredients, &p.Description, &p.ImageURL, &p.Bestseller,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *ProductRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		product.ID, product.Name, product.Slug, product.Category,
		product.PriceMinor, product.PackSize, product.Stock,
		product.ShelfLife, product.Ingredients, product.Description,
		product.ImageURL, product.Bestseller, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) GetBySlug(slug string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE slug = $1
	`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product by slug: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) List(filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.BestsellersOnly {
		query += " AND bestseller"
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, slug = $2, category = $3, price_minor = $4,
		    pack_size = $5, stock = $6, shelf_life = $7, ingredients = $8,
		    description = $9, image_url = $10, bestseller = $11, updated_at = $12
		WHERE id = $13
	`,
		product.Name, product.Slug, product.Category, product.PriceMinor,
		product.PackSize, product.Stock, product.ShelfLife, product.Ingredients,
		product.Description, product.ImageURL, product.Bestseller, product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SetBestsellers снимает флаг со всех товаров и выставляет переданным одной
// транзакцией: частичных назначений слотов не бывает.
func (r *ProductRepository) SetBestsellers(ids []string) error {
	if len(ids) > domain.BestsellerSlots {
		return domain.ErrBestsellerLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE products SET bestseller = FALSE WHERE bestseller`); err != nil {
		return fmt.Errorf("reset bestsellers: %w", err)
	}

	for _, id := range ids {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `UPDATE products SET bestseller = TRUE WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("set bestseller %s: %w", id, err)
		}
		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("bestseller rows affected: %w", err)
		}
		if affected == 0 {
			err = domain.ErrProductNotFound
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bestsellers: %w", err)
	}
	return nil
}

// Decrement списывает остатки по всем позициям заявки одной транзакцией.
// Условие stock >= qty в самом UPDATE защищает от гонок конкурентных
// сабмитов; любая нехватка откатывает всё списание.
func (r *ProductRepository) Decrement(adjustments []domain.StockAdjustment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, adj := range adjustments {
		if adj.Quantity <= 0 {
			err = domain.ErrInsufficientStock
			return err
		}
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, adj.Quantity, adj.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock %s: %w", adj.ProductID, err)
		}
		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("stock rows affected: %w", err)
		}
		if affected == 0 {
			err = domain.ErrInsufficientStock
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stock decrement: %w", err)
	}
	return nil
}

// Restore возвращает ранее списанные остатки.
func (r *ProductRepository) Restore(adjustments []domain.StockAdjustment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, adj := range adjustments {
		if _, err = tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $1 WHERE id = $2
		`, adj.Quantity, adj.ProductID); err != nil {
			return fmt.Errorf("restore stock %s: %w", adj.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stock restore: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var (
	_ domain.ProductRepository = (*ProductRepository)(nil)
	_ domain.StockService      = (*ProductRepository)(nil)
)
