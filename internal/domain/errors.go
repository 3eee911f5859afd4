package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — базовая ошибка отсутствующей сущности (товар, корзина, заказ, изображение).
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound возвращается, если товар с указанным ID или именем отсутствует.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrCartNotFound возвращается, если корзина не найдена.
	ErrCartNotFound = fmt.Errorf("cart %w", ErrNotFound)
	// ErrCartLineNotFound возвращается, если в корзине нет позиции для товара.
	ErrCartLineNotFound = fmt.Errorf("cart line %w", ErrNotFound)
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
	// ErrImageNotFound возвращается, если изображение не найдено.
	ErrImageNotFound = fmt.Errorf("image %w", ErrNotFound)

	// ErrInsufficientStock — запрошенное количество превышает доступный остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrBadOrderState — операция недопустима в текущем статусе заказа.
	ErrBadOrderState = errors.New("bad order state")
	// ErrProductExists — товар с таким именем уже есть в каталоге.
	ErrProductExists = errors.New("product already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")

	// Ошибки валидации входных данных.
	ErrProductNameRequired     = errors.New("product name is required")
	ErrProductDescriptionLong  = fmt.Errorf("product description must not exceed %d characters", MaxDescriptionLength)
	ErrProductPriceNegative    = errors.New("product price must be non-negative")
	ErrProductQuantityNegative = errors.New("product quantity must be non-negative")
	ErrProductCategoryInvalid  = errors.New("product category is invalid")
	ErrImageContentRequired    = errors.New("image content is required")
	ErrImageContentTooLarge    = fmt.Errorf("image content must not exceed %d bytes", MaxImageContentSize)
	ErrQuantityInvalid         = errors.New("quantity must be greater than zero")
	ErrQuantityTooLarge        = errors.New("line quantity is too large")
	ErrCartIDRequired          = errors.New("cart_id is required")
	ErrOrderIDRequired         = errors.New("order_id is required")
	ErrProductIDRequired       = errors.New("product_id is required")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError детализирует отказ размещения по конкретному товару.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Is позволяет сравнивать ошибку с ErrInsufficientStock через errors.Is.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError объединяет нарушения валидации по полям.
type ValidationError struct {
	Fields []FieldError
}

// FieldError — нарушение одного поля.
type FieldError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msg := "validation failed: "
	for i, f := range e.Fields {
		if i > 0 {
			msg += "; "
		}
		msg += f.Field + ": " + f.Err.Error()
	}
	return msg
}

// Unwrap возвращает исходные ошибки полей для errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		errs = append(errs, f.Err)
	}
	return errs
}

func (e *ValidationError) add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsNotFound проверяет, относится ли ошибка к отсутствующей сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsBadOrderState проверяет, является ли ошибка недопустимым переходом статуса.
func IsBadOrderState(err error) bool {
	return errors.Is(err, ErrBadOrderState)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsValidation проверяет, является ли ошибка нарушением валидации входных данных.
func IsValidation(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}
	return errors.Is(err, ErrQuantityInvalid) ||
		errors.Is(err, ErrQuantityTooLarge) ||
		errors.Is(err, ErrCartIDRequired) ||
		errors.Is(err, ErrOrderIDRequired) ||
		errors.Is(err, ErrProductIDRequired)
}
