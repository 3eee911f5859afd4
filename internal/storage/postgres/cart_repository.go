package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepository хранит корзину и её позиции как один агрегат:
// позиции всегда пишутся и удаляются вместе с корзиной.
type cartRepository struct {
	q dbtx
}

func (r *cartRepository) Create(ctx context.Context, cart domain.Cart) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	return atomically(ctx, r.q, func(q dbtx) error {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO carts (id, created_at, updated_at) VALUES ($1,$2,$3)
		`, cart.ID, cart.CreatedAt, cart.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("cart %s already exists", cart.ID)
			}
			return fmt.Errorf("insert cart: %w", err)
		}
		return insertCartLines(ctx, q, cart)
	})
}

func (r *cartRepository) Get(ctx context.Context, id string) (domain.Cart, error) {
	return r.load(ctx, id, false)
}

// GetForUpdate блокирует строку корзины до конца транзакции.
func (r *cartRepository) GetForUpdate(ctx context.Context, id string) (domain.Cart, error) {
	return r.load(ctx, id, true)
}

func (r *cartRepository) load(ctx context.Context, id string, forUpdate bool) (domain.Cart, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	query := `SELECT id, created_at, updated_at FROM carts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var cart domain.Cart
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, product_id, quantity, added_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Quantity, &line.AddedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart lines: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart domain.Cart) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	return atomically(ctx, r.q, func(q dbtx) error {
		if err := touchCart(ctx, q, cart.ID, cart.UpdatedAt); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
			return fmt.Errorf("replace cart lines: %w", err)
		}
		return insertCartLines(ctx, q, cart)
	})
}

// Clear удаляет все позиции корзины одним запросом, сама корзина остаётся.
func (r *cartRepository) Clear(ctx context.Context, id string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	return atomically(ctx, r.q, func(q dbtx) error {
		if err := touchCart(ctx, q, id, time.Now().UTC()); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, id); err != nil {
			return fmt.Errorf("clear cart lines: %w", err)
		}
		return nil
	})
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	return atomically(ctx, r.q, func(q dbtx) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, id); err != nil {
			return fmt.Errorf("delete cart lines: %w", err)
		}
		res, err := q.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return expectAffected(res, domain.ErrCartNotFound)
	})
}

func touchCart(ctx context.Context, q dbtx, id string, updatedAt time.Time) error {
	res, err := q.ExecContext(ctx, `UPDATE carts SET updated_at = $2 WHERE id = $1`, id, updatedAt)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	return expectAffected(res, domain.ErrCartNotFound)
}

func insertCartLines(ctx context.Context, q dbtx, cart domain.Cart) error {
	for _, line := range cart.Lines {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO cart_lines (id, cart_id, product_id, quantity, added_at)
			VALUES ($1,$2,$3,$4,$5)
		`, line.ID, cart.ID, line.ProductID, line.Quantity, line.AddedAt); err != nil {
			return fmt.Errorf("insert cart line: %w", err)
		}
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
