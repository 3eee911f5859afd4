package resilience

import (
	"context"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// GuardedCache пропускает чтение и запись кэша через breaker, чтобы
// недоступный Redis не добавлял таймаут к каждому запросу каталога.
// Инвалидация выполняется всегда: пропущенная инвалидация оставила бы
// устаревшую карточку до истечения TTL.
type GuardedCache struct {
	cache   domain.ProductCache
	breaker *CircuitBreaker
}

// NewGuardedCache оборачивает cache.
func NewGuardedCache(cache domain.ProductCache, breaker *CircuitBreaker) *GuardedCache {
	return &GuardedCache{cache: cache, breaker: breaker}
}

func (c *GuardedCache) Get(ctx context.Context, id string) (domain.Product, bool, error) {
	var (
		product domain.Product
		found   bool
	)
	err := c.breaker.Execute(func() error {
		var err error
		product, found, err = c.cache.Get(ctx, id)
		return err
	})
	return product, found, err
}

func (c *GuardedCache) Set(ctx context.Context, product domain.Product) error {
	return c.breaker.Execute(func() error {
		return c.cache.Set(ctx, product)
	})
}

func (c *GuardedCache) Invalidate(ctx context.Context, ids ...string) error {
	err := c.cache.Invalidate(ctx, ids...)
	c.breaker.Record(err)
	return err
}

var _ domain.ProductCache = (*GuardedCache)(nil)
