package domain

import (
	"math"
	"sort"
	"time"
)

// CartLine — позиция корзины: товар и желаемое количество.
type CartLine struct {
	// ID упорядочен по времени создания (UUIDv7), поэтому сортировка по ID совпадает с порядком добавления.
	ID        string
	ProductID string
	Quantity  int64
	AddedAt   time.Time
}

// Cart — изменяемая корзина покупателя. На каждый товар не более одной позиции.
type Cart struct {
	ID        string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line возвращает позицию корзины для товара.
func (c *Cart) Line(productID string) (CartLine, error) {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.Lines[idx], nil
	}
	return CartLine{}, ErrCartLineNotFound
}

// AddLine увеличивает количество существующей позиции или создаёт новую с lineID.
func (c *Cart) AddLine(productID string, quantity int64, lineID string, now time.Time) (CartLine, error) {
	if productID == "" {
		return CartLine{}, ErrProductIDRequired
	}
	if quantity <= 0 {
		return CartLine{}, ErrQuantityInvalid
	}

	idx := c.indexOf(productID)
	if idx >= 0 && quantity > math.MaxInt64-c.Lines[idx].Quantity {
		return CartLine{}, ErrQuantityTooLarge
	}

	c.UpdatedAt = now
	if idx >= 0 {
		c.Lines[idx].Quantity += quantity
		return c.Lines[idx], nil
	}

	line := CartLine{ID: lineID, ProductID: productID, Quantity: quantity, AddedAt: now}
	c.Lines = append(c.Lines, line)
	c.sortLines()
	return line, nil
}

// SetLineQuantity заменяет количество позиции целиком (не прибавляет).
func (c *Cart) SetLineQuantity(productID string, quantity int64, now time.Time) (CartLine, error) {
	if quantity <= 0 {
		return CartLine{}, ErrQuantityInvalid
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return CartLine{}, ErrCartLineNotFound
	}
	c.Lines[idx].Quantity = quantity
	c.UpdatedAt = now
	return c.Lines[idx], nil
}

// RemoveLine удаляет позицию товара из корзины.
func (c *Cart) RemoveLine(productID string, now time.Time) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrCartLineNotFound
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	c.UpdatedAt = now
	return nil
}

// Clear удаляет все позиции. Повторный вызов ничего не меняет.
func (c *Cart) Clear(now time.Time) {
	if len(c.Lines) == 0 {
		return
	}
	c.Lines = nil
	c.UpdatedAt = now
}

// ProductIDs возвращает идентификаторы товаров корзины в возрастающем порядке.
func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		ids = append(ids, line.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot строит отвязанную копию содержимого корзины с данными товаров на текущий момент.
// Результат не ссылается ни на позиции корзины, ни на переданные товары.
func (c *Cart) Snapshot(products map[string]Product) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		items = append(items, OrderItem{
			ID:             line.ID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Category:       product.Category,
			UnitPriceMinor: product.PriceMinor,
			Quantity:       line.Quantity,
		})
	}
	return items, nil
}

// Clone возвращает глубокую копию корзины.
func (c Cart) Clone() Cart {
	clone := c
	if c.Lines != nil {
		clone.Lines = make([]CartLine, len(c.Lines))
		copy(clone.Lines, c.Lines)
	}
	return clone
}

func (c *Cart) indexOf(productID string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) sortLines() {
	sort.Slice(c.Lines, func(i, j int) bool { return c.Lines[i].ID < c.Lines[j].ID })
}
