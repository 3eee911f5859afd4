package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultProductTTL = 5 * time.Minute

// ProductCache хранит карточки товаров в виде JSON со сроком жизни.
type ProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewProductCache создаёт кэш. ttl <= 0 заменяется значением по умолчанию.
func NewProductCache(client redis.Cmdable, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id string) string {
	return keyPrefix + "product:" + id
}

// Get возвращает карточку и признак попадания.
func (c *ProductCache) Get(ctx context.Context, id string) (domain.Product, bool, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("get cached product %s: %w", id, err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// Повреждённую запись считаем промахом, её перезапишет следующий Set.
		return domain.Product{}, false, nil
	}
	return product, true, nil
}

// Set сохраняет карточку.
func (c *ProductCache) Set(ctx context.Context, product domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product %s: %w", product.ID, err)
	}
	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache product %s: %w", product.ID, err)
	}
	return nil
}

// Invalidate удаляет карточки одной командой DEL.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate %d cached products: %w", len(ids), err)
	}
	return nil
}

var _ domain.ProductCache = (*ProductCache)(nil)
