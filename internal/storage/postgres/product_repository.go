package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const productColumns = `id, name, description, price_minor, quantity, category, image_id, created_at, updated_at`

// Колонки сортировки whitelisted: значение подставляется в текст запроса.
var productSortColumns = map[domain.ProductSortField]string{
	domain.ProductSortByName:      "name",
	domain.ProductSortByPrice:     "price_minor",
	domain.ProductSortByQuantity:  "quantity",
	domain.ProductSortByCategory:  "category",
	domain.ProductSortByCreatedAt: "created_at",
}

type productRepository struct {
	q dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		product  domain.Product
		category string
		imageID  sql.NullString
	)
	if err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.PriceMinor,
		&product.Quantity, &category, &imageID, &product.CreatedAt, &product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	product.Category = domain.ProductCategory(category)
	product.ImageID = imageID.String
	return product, nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		product.ID, product.Name, product.Description, product.PriceMinor, product.Quantity,
		string(product.Category), nullableString(product.ImageID), product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: name %q", domain.ErrProductExists, product.Name)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	return r.getBy(ctx, "id", id)
}

func (r *productRepository) GetByName(ctx context.Context, name string) (domain.Product, error) {
	return r.getBy(ctx, "name", name)
}

func (r *productRepository) getBy(ctx context.Context, column, value string) (domain.Product, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	product, err := scanProduct(r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+column+` = $1`, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product by %s: %w", column, err)
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	query = query.Normalize()
	page := domain.ProductPage{Page: query.Page, PageSize: query.PageSize}

	where := ""
	args := []any{}
	if query.Category != "" {
		where = "WHERE category = $1"
		args = append(args, string(query.Category))
	}

	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&page.TotalItems); err != nil {
		return domain.ProductPage{}, fmt.Errorf("count products: %w", err)
	}

	direction := "DESC"
	if query.Ascending {
		direction = "ASC"
	}
	orderBy := fmt.Sprintf("%s %s, id %s", productSortColumns[query.SortBy], direction, direction)

	args = append(args, query.PageSize, query.Offset())
	limitArg := len(args) - 1
	rows, err := r.q.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM products %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderBy, limitArg, limitArg+1,
	), args...)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	page.Items = make([]domain.Product, 0, query.PageSize)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return domain.ProductPage{}, fmt.Errorf("scan product row: %w", err)
		}
		page.Items = append(page.Items, product)
	}
	if err := rows.Err(); err != nil {
		return domain.ProductPage{}, fmt.Errorf("iterate product rows: %w", err)
	}
	return page, nil
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET name = $2,
		    description = $3,
		    price_minor = $4,
		    quantity = $5,
		    category = $6,
		    image_id = $7,
		    updated_at = $8
		WHERE id = $1
	`,
		product.ID, product.Name, product.Description, product.PriceMinor, product.Quantity,
		string(product.Category), nullableString(product.ImageID), product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: name %q", domain.ErrProductExists, product.Name)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return expectAffected(res, domain.ErrProductNotFound)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(res, domain.ErrProductNotFound)
}

func (r *productRepository) IDsByImage(ctx context.Context, imageID string) ([]string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT id FROM products WHERE image_id = $1 ORDER BY id`, imageID)
	if err != nil {
		return nil, fmt.Errorf("select products by image: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products by image: %w", err)
	}
	return ids, nil
}

func (r *productRepository) Stock(ctx context.Context, id string) (int64, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var quantity int64
	err := r.q.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1`, id).Scan(&quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrProductNotFound
		}
		return 0, fmt.Errorf("select product stock: %w", err)
	}
	return quantity, nil
}

// LockStock блокирует строки товаров в порядке возрастания ID: конкурирующие
// размещения берут блокировки в одном порядке и не взаимоблокируются.
func (r *productRepository) LockStock(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("lock product stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locked product: %w", err)
		}
		result[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked products: %w", err)
	}
	return result, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id string, amount int64) error {
	return r.adjust(ctx, id, -amount)
}

func (r *productRepository) IncrementStock(ctx context.Context, id string, amount int64) error {
	return r.adjust(ctx, id, amount)
}

func (r *productRepository) adjust(ctx context.Context, id string, delta int64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + $2,
		    updated_at = $3
		WHERE id = $1
	`, id, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust product stock: %w", err)
	}
	return expectAffected(res, domain.ErrProductNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
