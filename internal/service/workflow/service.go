// Package workflow реализует жизненный цикл заказа: размещение корзины с
// атомарным списанием остатков, оплату, отмену и завершение.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const defaultListLimit = 50

// Service — конечный автомат заказа поверх транзакционного хранилища.
type Service struct {
	store           domain.Store
	cache           domain.ProductCache
	metrics         *metrics.WorkflowMetrics
	logger          *log.Entry
	now             func() time.Time
	newID           func() string
	restockOnCancel bool
}

// New создаёт сервис заказов.
func New(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.WithField("component", "order-workflow"),
		now:    defaultClock,
		newID:  defaultOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place превращает корзину в заказ. Внутри одной транзакции: блокирует корзину
// и строки товаров, проверяет все позиции, затем списывает все позиции, снимает
// снимок, очищает корзину и создаёт заказ в AWAITING_PAYMENT.
// При нехватке хотя бы одного товара ничего не меняется.
func (s *Service) Place(ctx context.Context, cartID string) (order domain.Order, err error) {
	if cartID == "" {
		return domain.Order{}, domain.ErrCartIDRequired
	}
	defer s.observe(metrics.OperationPlace)(&err, nil)

	now := s.now()
	var (
		productIDs []string
		units      int64
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		cart, err := tx.Carts().GetForUpdate(ctx, cartID)
		if err != nil {
			return err
		}
		productIDs = cart.ProductIDs()

		products, err := tx.Products().LockStock(ctx, productIDs)
		if err != nil {
			return err
		}
		if err := checkStock(cart, products); err != nil {
			return err
		}

		for _, line := range cart.Lines {
			if err := tx.Products().DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("decrement stock of %s: %w", line.ProductID, err)
			}
			units += line.Quantity
		}

		items, err := cart.Snapshot(products)
		if err != nil {
			return err
		}
		order = domain.NewOrder(s.newID(), cart.ID, items, now)
		if problems := order.ValidateInvariants(); len(problems) > 0 {
			return fmt.Errorf("order invariants violated: %w", errors.Join(problems...))
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Carts().Clear(ctx, cart.ID); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, kafka.NewOrderEvent(kafka.EventTypeOrderPlaced, order, now))
	})
	if err != nil {
		s.logger.WithError(err).WithField("cart_id", cartID).Debug("order placement rejected")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordUnitsReserved(units)
	}
	s.invalidate(ctx, productIDs)
	s.appendTimeline(ctx, order.ID, domain.TimelineOrderPlaced, "", now)
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"cart_id":      cartID,
		"items":        len(order.Items),
		"amount_minor": order.AmountMinor,
	}).Info("order placed")
	return order, nil
}

// Get возвращает заказ.
func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, domain.ErrOrderIDRequired
	}
	return s.store.Orders().Get(ctx, orderID)
}

// ListByCart возвращает заказы, размещённые из корзины, от новых к старым.
func (s *Service) ListByCart(ctx context.Context, cartID string, limit int) ([]domain.Order, error) {
	if cartID == "" {
		return nil, domain.ErrCartIDRequired
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.store.Orders().ListByCart(ctx, cartID, limit)
}

// Pay переводит заказ AWAITING_PAYMENT -> DELIVERED. Для DELIVERED ничего не
// меняет и ошибкой не является.
func (s *Service) Pay(ctx context.Context, orderID string) (order domain.Order, err error) {
	if orderID == "" {
		return domain.Order{}, domain.ErrOrderIDRequired
	}
	changed := false
	defer s.observe(metrics.OperationPay)(&err, &changed)

	now := s.now()
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		current, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		order = current
		if !order.Pay(now) {
			return nil
		}
		if err := tx.Orders().Save(ctx, order); err != nil {
			return err
		}
		order.Version++
		changed = true
		return s.enqueue(ctx, tx, kafka.NewOrderEvent(kafka.EventTypeOrderPaid, order, now))
	})
	if err != nil {
		return domain.Order{}, err
	}

	if changed {
		s.appendTimeline(ctx, order.ID, domain.TimelineOrderPaid, "", now)
		s.logger.WithField("order_id", order.ID).Info("order paid")
	}
	return order, nil
}

// Cancel удаляет заказ в любом статусе. Остатки возвращаются только при
// включённой опции WithRestockOnCancel.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (err error) {
	if orderID == "" {
		return domain.ErrOrderIDRequired
	}
	defer s.observe(metrics.OperationCancel)(&err, nil)

	now := s.now()
	var (
		restocked []string
		units     int64
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if s.restockOnCancel {
			for _, item := range order.Items {
				err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity)
				if errors.Is(err, domain.ErrProductNotFound) {
					// товар удалён из каталога после размещения
					continue
				}
				if err != nil {
					return fmt.Errorf("restock %s: %w", item.ProductID, err)
				}
				restocked = append(restocked, item.ProductID)
				units += item.Quantity
			}
		}

		if err := tx.Orders().Delete(ctx, orderID); err != nil {
			return err
		}
		event := kafka.NewOrderEvent(kafka.EventTypeOrderCanceled, order, now)
		event.Restocked = s.restockOnCancel
		return s.enqueue(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	s.appendTimeline(ctx, orderID, domain.TimelineOrderCanceled, reason, now)
	if len(restocked) > 0 {
		if s.metrics != nil {
			s.metrics.RecordUnitsRestored(units)
		}
		s.invalidate(ctx, restocked)
		s.appendTimeline(ctx, orderID, domain.TimelineStockRestored, "", now)
	}
	s.logger.WithFields(log.Fields{
		"order_id":  orderID,
		"reason":    reason,
		"restocked": len(restocked),
	}).Info("order canceled")
	return nil
}

// Finish удаляет заказ, если он доставлен; иначе возвращает ErrBadOrderState
// и заказ остаётся без изменений.
func (s *Service) Finish(ctx context.Context, orderID string) (err error) {
	if orderID == "" {
		return domain.ErrOrderIDRequired
	}
	defer s.observe(metrics.OperationFinish)(&err, nil)

	now := s.now()
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.EnsureFinishable(); err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, orderID); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, kafka.NewOrderEvent(kafka.EventTypeOrderFinished, order, now))
	})
	if err != nil {
		return err
	}

	s.appendTimeline(ctx, orderID, domain.TimelineOrderFinished, "", now)
	s.logger.WithField("order_id", orderID).Info("order finished")
	return nil
}

// CheckAvailability сравнивает корзину с текущими остатками без блокировок
// и без изменений. Результат носит справочный характер: Place проверяет заново.
func (s *Service) CheckAvailability(ctx context.Context, cartID string) (Availability, error) {
	if cartID == "" {
		return Availability{}, domain.ErrCartIDRequired
	}
	cart, err := s.store.Carts().Get(ctx, cartID)
	if err != nil {
		return Availability{}, err
	}

	products := make(map[string]domain.Product, len(cart.Lines))
	for _, id := range cart.ProductIDs() {
		product, err := s.store.Products().Get(ctx, id)
		if err != nil {
			return Availability{}, err
		}
		products[id] = product
	}

	missing, err := shortages(cart, products)
	if err != nil {
		return Availability{}, err
	}
	return Availability{CartID: cart.ID, Available: len(missing) == 0, Shortages: missing}, nil
}

// Timeline возвращает историю заказа. История сохраняется и после удаления заказа.
func (s *Service) Timeline(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	if orderID == "" {
		return nil, domain.ErrOrderIDRequired
	}
	events, err := s.store.Timeline().List(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		if _, err := s.store.Orders().Get(ctx, orderID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// observe возвращает функцию, фиксирующую результат операции в метриках.
// changed == nil означает, что у операции нет холостого исхода.
func (s *Service) observe(operation string) func(errp *error, changed *bool) {
	if s.metrics == nil {
		return func(*error, *bool) {}
	}
	done := s.metrics.StartOperation(operation)
	return func(errp *error, changed *bool) {
		result := metrics.Outcome(*errp)
		if result == metrics.ResultOK && changed != nil && !*changed {
			result = metrics.ResultNoop
		}
		done(result)
	}
}
