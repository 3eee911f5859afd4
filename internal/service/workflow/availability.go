package workflow

import (
	"errors"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Availability — результат проверки корзины по текущим остаткам.
type Availability struct {
	CartID    string
	Available bool
	Shortages []domain.InsufficientStockError
}

// shortages сравнивает каждую позицию с остатком. Товар, отсутствующий в products,
// даёт ErrProductNotFound.
func shortages(cart domain.Cart, products map[string]domain.Product) ([]domain.InsufficientStockError, error) {
	var result []domain.InsufficientStockError
	for _, line := range cart.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		if line.Quantity > product.Quantity {
			result = append(result, domain.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: product.Quantity,
			})
		}
	}
	return result, nil
}

// checkStock — первый проход размещения: ни одна позиция не должна превышать остаток.
func checkStock(cart domain.Cart, products map[string]domain.Product) error {
	missing, err := shortages(cart, products)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	errs := make([]error, 0, len(missing))
	for i := range missing {
		errs = append(errs, &missing[i])
	}
	return errors.Join(errs...)
}
