package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepository хранит корзины вместе с позициями как единый агрегат.
type cartRepository struct {
	ex executor
}

func (r *cartRepository) Create(ctx context.Context, cart domain.Cart) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		if _, exists := d.carts[cart.ID]; exists {
			return fmt.Errorf("cart %s already exists", cart.ID)
		}
		d.carts[cart.ID] = cart.Clone()
		j.record(func() { delete(d.carts, cart.ID) })
		return nil
	})
}

func (r *cartRepository) Get(ctx context.Context, id string) (domain.Cart, error) {
	var out domain.Cart
	err := r.ex.view(ctx, func(d *dataset) error {
		cart, ok := d.carts[id]
		if !ok {
			return domain.ErrCartNotFound
		}
		out = cart.Clone()
		return nil
	})
	return out, err
}

// GetForUpdate совпадает с Get: эксклюзивная блокировка берётся на уровне транзакции.
func (r *cartRepository) GetForUpdate(ctx context.Context, id string) (domain.Cart, error) {
	return r.Get(ctx, id)
}

func (r *cartRepository) Save(ctx context.Context, cart domain.Cart) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.carts[cart.ID]
		if !ok {
			return domain.ErrCartNotFound
		}
		d.carts[cart.ID] = cart.Clone()
		j.record(func() { d.carts[cart.ID] = current })
		return nil
	})
}

func (r *cartRepository) Clear(ctx context.Context, id string) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.carts[id]
		if !ok {
			return domain.ErrCartNotFound
		}
		cleared := current.Clone()
		cleared.Lines = nil
		d.carts[id] = cleared
		j.record(func() { d.carts[id] = current })
		return nil
	})
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.carts[id]
		if !ok {
			return domain.ErrCartNotFound
		}
		delete(d.carts, id)
		j.record(func() { d.carts[id] = current })
		return nil
	})
}

var _ domain.CartRepository = (*cartRepository)(nil)
