// Package cart управляет корзинами и их позициями.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// LineView — позиция корзины вместе с текущей карточкой товара.
type LineView struct {
	domain.CartLine
	Product domain.Product
}

// View — корзина с раскрытыми товарами, упорядоченная по ID позиций.
type View struct {
	ID        string
	Lines     []LineView
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service выполняет операции над корзиной. Каждое изменение идёт в отдельной
// транзакции с блокировкой корзины.
type Service struct {
	store     domain.Store
	logger    *log.Entry
	now       func() time.Time
	newCartID func() string
	newLineID func() string
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

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New создаёт сервис корзин.
func New(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    log.WithField("component", "cart-service"),
		now:       func() time.Time { return time.Now().UTC() },
		newCartID: uuid.NewString,
		newLineID: newLineID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newLineID использует UUIDv7: сортировка по ID совпадает с порядком добавления.
func newLineID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Create создаёт пустую корзину.
func (s *Service) Create(ctx context.Context) (domain.Cart, error) {
	now := s.now()
	cart := domain.Cart{ID: s.newCartID(), CreatedAt: now, UpdatedAt: now}
	if err := s.store.Carts().Create(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	s.logger.WithField("cart_id", cart.ID).Debug("cart created")
	return cart, nil
}

// Get возвращает корзину с карточками товаров.
func (s *Service) Get(ctx context.Context, cartID string) (View, error) {
	cart, err := s.store.Carts().Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}

	view := View{ID: cart.ID, CreatedAt: cart.CreatedAt, UpdatedAt: cart.UpdatedAt, Lines: make([]LineView, 0, len(cart.Lines))}
	for _, line := range cart.Lines {
		product, err := s.store.Products().Get(ctx, line.ProductID)
		if err != nil {
			return View{}, fmt.Errorf("load product of line %s: %w", line.ID, err)
		}
		view.Lines = append(view.Lines, LineView{CartLine: line, Product: product})
	}
	return view, nil
}

// AddLine добавляет товар в корзину; повторное добавление увеличивает количество.
func (s *Service) AddLine(ctx context.Context, cartID, productID string, quantity int64) (domain.CartLine, error) {
	var line domain.CartLine
	err := s.mutate(ctx, cartID, productID, func(cart *domain.Cart, now time.Time) error {
		var err error
		line, err = cart.AddLine(productID, quantity, s.newLineID(), now)
		return err
	})
	if err != nil {
		return domain.CartLine{}, err
	}
	s.logger.WithFields(log.Fields{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   line.Quantity,
	}).Debug("cart line added")
	return line, nil
}

// GetLine возвращает позицию товара в корзине.
func (s *Service) GetLine(ctx context.Context, cartID, productID string) (LineView, error) {
	cart, err := s.store.Carts().Get(ctx, cartID)
	if err != nil {
		return LineView{}, err
	}
	product, err := s.store.Products().Get(ctx, productID)
	if err != nil {
		return LineView{}, err
	}
	line, err := cart.Line(productID)
	if err != nil {
		return LineView{}, err
	}
	return LineView{CartLine: line, Product: product}, nil
}

// SetLineQuantity заменяет количество позиции.
func (s *Service) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int64) (domain.CartLine, error) {
	var line domain.CartLine
	err := s.mutate(ctx, cartID, productID, func(cart *domain.Cart, now time.Time) error {
		var err error
		line, err = cart.SetLineQuantity(productID, quantity, now)
		return err
	})
	if err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

// RemoveLine удаляет позицию товара.
func (s *Service) RemoveLine(ctx context.Context, cartID, productID string) error {
	return s.mutate(ctx, cartID, productID, func(cart *domain.Cart, now time.Time) error {
		return cart.RemoveLine(productID, now)
	})
}

// Clear удаляет все позиции, не удаляя корзину.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.Carts().GetForUpdate(ctx, cartID); err != nil {
			return err
		}
		return tx.Carts().Clear(ctx, cartID)
	})
}

// Delete очищает корзину и удаляет её.
func (s *Service) Delete(ctx context.Context, cartID string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.Carts().GetForUpdate(ctx, cartID); err != nil {
			return err
		}
		if err := tx.Carts().Clear(ctx, cartID); err != nil {
			return err
		}
		return tx.Carts().Delete(ctx, cartID)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("cart_id", cartID).Debug("cart deleted")
	return nil
}

// mutate загружает корзину с блокировкой, проверяет существование товара,
// применяет fn и сохраняет позиции.
func (s *Service) mutate(ctx context.Context, cartID, productID string, fn func(cart *domain.Cart, now time.Time) error) error {
	if cartID == "" {
		return domain.ErrCartIDRequired
	}
	if productID == "" {
		return domain.ErrProductIDRequired
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		cart, err := tx.Carts().GetForUpdate(ctx, cartID)
		if err != nil {
			return err
		}
		if _, err := tx.Products().Get(ctx, productID); err != nil {
			return err
		}
		if err := fn(&cart, s.now()); err != nil {
			return err
		}
		return tx.Carts().Save(ctx, cart)
	})
}
