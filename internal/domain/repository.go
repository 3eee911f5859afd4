package domain

import "context"

// ProductRepository описывает хранилище каталога и счётчиков остатков.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductExists, если имя уже занято.
	Create(ctx context.Context, product Product) error
	// Get возвращает товар по ID или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// GetByName возвращает товар по уникальному имени или ErrProductNotFound.
	GetByName(ctx context.Context, name string) (Product, error)
	// List возвращает страницу каталога.
	List(ctx context.Context, query ProductQuery) (ProductPage, error)
	// Update перезаписывает поля товара, включая остаток.
	Update(ctx context.Context, product Product) error
	// Delete удаляет товар или возвращает ErrProductNotFound.
	Delete(ctx context.Context, id string) error
	// IDsByImage возвращает ID товаров, ссылающихся на изображение, по возрастанию.
	IDsByImage(ctx context.Context, imageID string) ([]string, error)

	// Stock возвращает доступный остаток товара.
	Stock(ctx context.Context, id string) (int64, error)
	// LockStock читает товары для последующего изменения остатков. Внутри транзакции
	// строки блокируются в порядке возрастания ID. Отсутствующие ID в результат не попадают.
	LockStock(ctx context.Context, ids []string) (map[string]Product, error)
	// DecrementStock уменьшает остаток на amount без проверки нижней границы:
	// проверку выполняет вызывающий код до списания.
	DecrementStock(ctx context.Context, id string, amount int64) error
	// IncrementStock возвращает amount единиц на склад.
	IncrementStock(ctx context.Context, id string, amount int64) error
}

// CartRepository описывает хранилище корзин.
type CartRepository interface {
	Create(ctx context.Context, cart Cart) error
	// Get возвращает корзину или ErrCartNotFound.
	Get(ctx context.Context, id string) (Cart, error)
	// GetForUpdate читает корзину с блокировкой до конца транзакции.
	GetForUpdate(ctx context.Context, id string) (Cart, error)
	// Save заменяет набор позиций корзины.
	Save(ctx context.Context, cart Cart) error
	// Clear удаляет все позиции корзины одной операцией.
	Clear(ctx context.Context, id string) error
	// Delete удаляет корзину вместе с позициями.
	Delete(ctx context.Context, id string) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id string) (Order, error)
	// GetForUpdate читает заказ с блокировкой до конца транзакции.
	GetForUpdate(ctx context.Context, id string) (Order, error)
	// ListByCart возвращает заказы, размещённые из корзины, от новых к старым.
	ListByCart(ctx context.Context, cartID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(ctx context.Context, order Order) error
	// Delete удаляет заказ или возвращает ErrOrderNotFound.
	Delete(ctx context.Context, id string) error
}

// ImageRepository хранит изображения товаров.
type ImageRepository interface {
	Create(ctx context.Context, image Image) error
	Get(ctx context.Context, id string) (Image, error)
	Update(ctx context.Context, image Image) error
	Delete(ctx context.Context, id string) error
}

// Tx — набор репозиториев, привязанных к одной транзакции хранилища.
type Tx interface {
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Images() ImageRepository
	Outbox() OutboxRepository
}

// Transactor выполняет fn атомарно: при ошибке ни одно изменение fn не становится видимым.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Store — полный набор хранилищ сервиса.
type Store interface {
	Transactor
	Tx
	Timeline() TimelineRepository
}
