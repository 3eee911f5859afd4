package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// dataset — всё состояние in-memory хранилища. Доступ только под Store.mu.
type dataset struct {
	products     map[string]domain.Product
	productNames map[string]string
	carts        map[string]domain.Cart
	orders       map[string]domain.Order
	images       map[string]domain.Image
	outbox       map[string]*outboxRecord
	outboxSeq    int64
}

// journal копит обратные операции для отката неудачной транзакции.
type journal struct {
	undo []func()
}

func (j *journal) record(fn func()) {
	j.undo = append(j.undo, fn)
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// executor выполняет операции репозиториев: либо под собственной блокировкой
// хранилища, либо внутри уже открытой транзакции.
type executor interface {
	exec(ctx context.Context, fn func(d *dataset, j *journal) error) error
	view(ctx context.Context, fn func(d *dataset) error) error
}

// Store — in-memory реализация domain.Store для локального запуска и тестов.
// Транзакции сериализуются одной блокировкой, что даёт те же гарантии,
// что и блокировка строк в PostgreSQL.
type Store struct {
	mu       sync.RWMutex
	data     *dataset
	timeline *timelineRepositoryInMemory
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		data: &dataset{
			products:     make(map[string]domain.Product),
			productNames: make(map[string]string),
			carts:        make(map[string]domain.Cart),
			orders:       make(map[string]domain.Order),
			images:       make(map[string]domain.Image),
			outbox:       make(map[string]*outboxRecord),
		},
		timeline: newTimelineRepository(),
	}
}

func (s *Store) exec(ctx context.Context, fn func(d *dataset, j *journal) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	j := &journal{}
	if err := fn(s.data, j); err != nil {
		j.rollback()
		return err
	}
	return nil
}

func (s *Store) view(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// WithinTx выполняет fn под эксклюзивной блокировкой хранилища.
// Если fn вернула ошибку, все её изменения откатываются.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{data: s.data, journal: &journal{}}
	if err := fn(ctx, tx); err != nil {
		tx.journal.rollback()
		return err
	}
	return nil
}

func (s *Store) Products() domain.ProductRepository { return &productRepository{ex: s} }
func (s *Store) Carts() domain.CartRepository       { return &cartRepository{ex: s} }
func (s *Store) Orders() domain.OrderRepository     { return &orderRepository{ex: s} }
func (s *Store) Images() domain.ImageRepository     { return &imageRepository{ex: s} }
func (s *Store) Outbox() domain.OutboxRepository    { return &outboxRepository{ex: s} }

// Timeline возвращает репозиторий таймлайна; он живёт вне транзакций.
func (s *Store) Timeline() domain.TimelineRepository { return s.timeline }

// storeTx — транзакция, открытая WithinTx. Блокировка уже удерживается.
type storeTx struct {
	data    *dataset
	journal *journal
}

func (t *storeTx) exec(ctx context.Context, fn func(d *dataset, j *journal) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.data, t.journal)
}

func (t *storeTx) view(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.data)
}

func (t *storeTx) Products() domain.ProductRepository { return &productRepository{ex: t} }
func (t *storeTx) Carts() domain.CartRepository       { return &cartRepository{ex: t} }
func (t *storeTx) Orders() domain.OrderRepository     { return &orderRepository{ex: t} }
func (t *storeTx) Images() domain.ImageRepository     { return &imageRepository{ex: t} }
func (t *storeTx) Outbox() domain.OutboxRepository    { return &outboxRepository{ex: t} }

var (
	_ domain.Store = (*Store)(nil)
	_ domain.Tx    = (*storeTx)(nil)
)
