// Package catalog управляет товарами и их изображениями.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// ProductInput — изменяемые поля товара.
type ProductInput struct {
	Name        string
	Description string
	PriceMinor  int64
	Quantity    int64
	Category    domain.ProductCategory
}

// Service реализует операции каталога. Чтение одного товара идёт через
// кэш, параллельные промахи по одному ID схлопываются в один запрос к хранилищу.
type Service struct {
	store   domain.Store
	cache   domain.ProductCache
	metrics *metrics.WorkflowMetrics
	loads   singleflight.Group
	logger  *log.Entry
	now     func() time.Time
	newID   func() string
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache включает кэш карточек товаров.
func WithCache(cache domain.ProductCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithMetrics включает учёт обращений к кэшу.
func WithMetrics(m *metrics.WorkflowMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// New создаёт сервис каталога.
func New(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.WithField("component", "catalog-service"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProduct добавляет товар. Имя должно быть уникальным.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	now := s.now()
	product := domain.Product{ID: s.newID(), CreatedAt: now}
	apply(&product, in, now)
	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.logger.WithFields(log.Fields{"product_id": product.ID, "name": product.Name}).Info("product created")
	return product, nil
}

// GetProduct возвращает товар по ID, используя кэш при его наличии.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if s.cache == nil {
		return s.store.Products().Get(ctx, id)
	}

	product, ok, err := s.cache.Get(ctx, id)
	switch {
	case err != nil:
		s.recordLookup(metrics.CacheError)
		s.logger.WithError(err).WithField("product_id", id).Warn("product cache read failed")
	case ok:
		s.recordLookup(metrics.CacheHit)
		return product, nil
	default:
		s.recordLookup(metrics.CacheMiss)
	}

	// Загрузку разделяют все ожидающие вызовы: отмена первого не должна ронять остальных.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(id, func() (any, error) {
		loaded, err := s.store.Products().Get(loadCtx, id)
		if err != nil {
			return domain.Product{}, err
		}
		if err := s.cache.Set(loadCtx, loaded); err != nil {
			s.logger.WithError(err).WithField("product_id", id).Warn("product cache write failed")
		}
		return loaded, nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

// GetProductByName ищет товар по точному имени.
func (s *Service) GetProductByName(ctx context.Context, name string) (domain.Product, error) {
	return s.store.Products().GetByName(ctx, strings.TrimSpace(name))
}

// ListProducts возвращает страницу каталога.
func (s *Service) ListProducts(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	if query.Category != "" && !query.Category.Valid() {
		return domain.ProductPage{}, &domain.ValidationError{Fields: []domain.FieldError{{
			Field: "category",
			Err:   domain.ErrProductCategoryInvalid,
		}}}
	}
	return s.store.Products().List(ctx, query.Normalize())
}

// UpdateProduct перезаписывает поля товара по ID. Изображение и дата создания сохраняются.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	return s.update(ctx, func(ctx context.Context, products domain.ProductRepository) (domain.Product, error) {
		return products.Get(ctx, id)
	}, in)
}

// UpdateProductByName перезаписывает поля товара, найденного по имени.
func (s *Service) UpdateProductByName(ctx context.Context, name string, in ProductInput) (domain.Product, error) {
	return s.update(ctx, func(ctx context.Context, products domain.ProductRepository) (domain.Product, error) {
		return products.GetByName(ctx, name)
	}, in)
}

func (s *Service) update(ctx context.Context, load func(context.Context, domain.ProductRepository) (domain.Product, error), in ProductInput) (domain.Product, error) {
	var updated domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		product, err := load(ctx, tx.Products())
		if err != nil {
			return err
		}
		apply(&product, in, s.now())
		if err := product.Validate(); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx, updated.ID)
	return updated, nil
}

// DeleteProduct удаляет товар вместе с его изображением.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.delete(ctx, func(ctx context.Context, products domain.ProductRepository) (domain.Product, error) {
		return products.Get(ctx, id)
	})
}

// DeleteProductByName удаляет товар, найденный по имени.
func (s *Service) DeleteProductByName(ctx context.Context, name string) error {
	return s.delete(ctx, func(ctx context.Context, products domain.ProductRepository) (domain.Product, error) {
		return products.GetByName(ctx, name)
	})
}

func (s *Service) delete(ctx context.Context, load func(context.Context, domain.ProductRepository) (domain.Product, error)) error {
	var deleted domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		product, err := load(ctx, tx.Products())
		if err != nil {
			return err
		}
		if err := tx.Products().Delete(ctx, product.ID); err != nil {
			return err
		}
		if err := dropImage(ctx, tx, product.ImageID); err != nil {
			return err
		}
		deleted = product
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, deleted.ID)
	s.logger.WithField("product_id", deleted.ID).Info("product deleted")
	return nil
}

// SetProductImage привязывает изображение к товару. Предыдущее изображение удаляется.
func (s *Service) SetProductImage(ctx context.Context, productID, imageID string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		product, err := tx.Products().Get(ctx, productID)
		if err != nil {
			return err
		}
		if _, err := tx.Images().Get(ctx, imageID); err != nil {
			return err
		}
		if product.ImageID == imageID {
			return nil
		}

		previous := product.ImageID
		product.ImageID = imageID
		product.UpdatedAt = s.now()
		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}
		return dropImage(ctx, tx, previous)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

// ProductImage возвращает изображение товара; ok=false, если изображения нет.
func (s *Service) ProductImage(ctx context.Context, productID string) (domain.Image, bool, error) {
	product, err := s.store.Products().Get(ctx, productID)
	if err != nil {
		return domain.Image{}, false, err
	}
	if product.ImageID == "" {
		return domain.Image{}, false, nil
	}
	image, err := s.store.Images().Get(ctx, product.ImageID)
	if err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			return domain.Image{}, false, nil
		}
		return domain.Image{}, false, err
	}
	return image, true, nil
}

// RemoveProductImage отвязывает изображение от товара и удаляет его.
func (s *Service) RemoveProductImage(ctx context.Context, productID string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		product, err := tx.Products().Get(ctx, productID)
		if err != nil {
			return err
		}
		if product.ImageID == "" {
			return nil
		}

		previous := product.ImageID
		product.ImageID = ""
		product.UpdatedAt = s.now()
		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}
		return dropImage(ctx, tx, previous)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

// CreateImage сохраняет изображение в base64.
func (s *Service) CreateImage(ctx context.Context, content string) (domain.Image, error) {
	now := s.now()
	image := domain.Image{ID: s.newID(), Content: content, CreatedAt: now, UpdatedAt: now}
	if err := image.Validate(); err != nil {
		return domain.Image{}, err
	}
	if err := s.store.Images().Create(ctx, image); err != nil {
		return domain.Image{}, fmt.Errorf("create image: %w", err)
	}
	return image, nil
}

// GetImage возвращает изображение по ID.
func (s *Service) GetImage(ctx context.Context, id string) (domain.Image, error) {
	return s.store.Images().Get(ctx, id)
}

// UpdateImage заменяет содержимое изображения.
func (s *Service) UpdateImage(ctx context.Context, id, content string) (domain.Image, error) {
	var updated domain.Image
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		image, err := tx.Images().Get(ctx, id)
		if err != nil {
			return err
		}
		image.Content = content
		image.UpdatedAt = s.now()
		if err := image.Validate(); err != nil {
			return err
		}
		if err := tx.Images().Update(ctx, image); err != nil {
			return err
		}
		updated = image
		return nil
	})
	return updated, err
}

// DeleteImage удаляет изображение; товары, ссылавшиеся на него, остаются без изображения,
// а их карточки вытесняются из кэша.
func (s *Service) DeleteImage(ctx context.Context, id string) error {
	var affected []string
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		ids, err := tx.Products().IDsByImage(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Images().Delete(ctx, id); err != nil {
			return err
		}
		affected = ids
		return nil
	})
	if err != nil {
		return err
	}
	if len(affected) > 0 {
		s.invalidate(ctx, affected...)
	}
	return nil
}

func apply(product *domain.Product, in ProductInput, now time.Time) {
	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.PriceMinor = in.PriceMinor
	product.Quantity = in.Quantity
	product.Category = in.Category
	product.UpdatedAt = now
}

func dropImage(ctx context.Context, tx domain.Tx, imageID string) error {
	if imageID == "" {
		return nil
	}
	if err := tx.Images().Delete(ctx, imageID); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
		return fmt.Errorf("delete image %s: %w", imageID, err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, ids ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.WithError(err).WithField("product_ids", ids).Warn("product cache invalidation failed")
	}
}

func (s *Service) recordLookup(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}
