package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productRepository — in-memory каталог с уникальным индексом по имени.
type productRepository struct {
	ex executor
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		if _, exists := d.products[product.ID]; exists {
			return fmt.Errorf("%w: id %s", domain.ErrProductExists, product.ID)
		}
		if _, taken := d.productNames[product.Name]; taken {
			return fmt.Errorf("%w: name %q", domain.ErrProductExists, product.Name)
		}
		d.products[product.ID] = product
		d.productNames[product.Name] = product.ID
		j.record(func() {
			delete(d.products, product.ID)
			delete(d.productNames, product.Name)
		})
		return nil
	})
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	var out domain.Product
	err := r.ex.view(ctx, func(d *dataset) error {
		product, ok := d.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		out = product
		return nil
	})
	return out, err
}

func (r *productRepository) GetByName(ctx context.Context, name string) (domain.Product, error) {
	var out domain.Product
	err := r.ex.view(ctx, func(d *dataset) error {
		id, ok := d.productNames[name]
		if !ok {
			return domain.ErrProductNotFound
		}
		out = d.products[id]
		return nil
	})
	return out, err
}

// List фильтрует по категории, сортирует и режет страницу. При равенстве
// ключа сортировки порядок фиксируется по ID.
func (r *productRepository) List(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	query = query.Normalize()
	page := domain.ProductPage{Page: query.Page, PageSize: query.PageSize}

	err := r.ex.view(ctx, func(d *dataset) error {
		matched := make([]domain.Product, 0, len(d.products))
		for _, product := range d.products {
			if query.Category != "" && product.Category != query.Category {
				continue
			}
			matched = append(matched, product)
		}

		sort.Slice(matched, func(i, j int) bool {
			cmp := compareProducts(matched[i], matched[j], query.SortBy)
			if cmp == 0 {
				return matched[i].ID < matched[j].ID
			}
			if query.Ascending {
				return cmp < 0
			}
			return cmp > 0
		})

		page.TotalItems = len(matched)
		start := query.Offset()
		if start >= len(matched) {
			page.Items = []domain.Product{}
			return nil
		}
		end := start + query.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = append([]domain.Product(nil), matched[start:end]...)
		return nil
	})
	return page, err
}

func compareProducts(a, b domain.Product, field domain.ProductSortField) int {
	switch field {
	case domain.ProductSortByPrice:
		return compareInt64(a.PriceMinor, b.PriceMinor)
	case domain.ProductSortByQuantity:
		return compareInt64(a.Quantity, b.Quantity)
	case domain.ProductSortByCategory:
		return strings.Compare(string(a.Category), string(b.Category))
	case domain.ProductSortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.products[product.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if product.Name != current.Name {
			if _, taken := d.productNames[product.Name]; taken {
				return fmt.Errorf("%w: name %q", domain.ErrProductExists, product.Name)
			}
			delete(d.productNames, current.Name)
			d.productNames[product.Name] = product.ID
		}
		d.products[product.ID] = product
		j.record(func() {
			delete(d.productNames, product.Name)
			d.productNames[current.Name] = current.ID
			d.products[current.ID] = current
		})
		return nil
	})
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		delete(d.products, id)
		delete(d.productNames, current.Name)
		j.record(func() {
			d.products[id] = current
			d.productNames[current.Name] = id
		})

		// Позиции корзин, ссылающиеся на удалённый товар, удаляются вместе с ним.
		for cartID, cart := range d.carts {
			updated := cart.Clone()
			if err := updated.RemoveLine(id, time.Now().UTC()); err != nil {
				continue
			}
			d.carts[cartID] = updated
			j.record(func() { d.carts[cartID] = cart })
		}
		return nil
	})
}

func (r *productRepository) IDsByImage(ctx context.Context, imageID string) ([]string, error) {
	var ids []string
	err := r.ex.view(ctx, func(d *dataset) error {
		for id, product := range d.products {
			if imageID != "" && product.ImageID == imageID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

func (r *productRepository) Stock(ctx context.Context, id string) (int64, error) {
	product, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.Quantity, nil
}

// LockStock в памяти просто читает товары: транзакция уже держит эксклюзивную блокировку.
func (r *productRepository) LockStock(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	err := r.ex.view(ctx, func(d *dataset) error {
		for _, id := range ids {
			if product, ok := d.products[id]; ok {
				out[id] = product
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepository) DecrementStock(ctx context.Context, id string, amount int64) error {
	return r.adjust(ctx, id, -amount)
}

func (r *productRepository) IncrementStock(ctx context.Context, id string, amount int64) error {
	return r.adjust(ctx, id, amount)
}

func (r *productRepository) adjust(ctx context.Context, id string, delta int64) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		product, ok := d.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product.Quantity += delta
		d.products[id] = product
		j.record(func() {
			restored := d.products[id]
			restored.Quantity -= delta
			d.products[id] = restored
		})
		return nil
	})
}

var _ domain.ProductRepository = (*productRepository)(nil)
