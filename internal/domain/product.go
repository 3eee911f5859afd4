package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ProductCategory — категория товара в каталоге.
type ProductCategory string

const (
	ProductCategoryFood        ProductCategory = "FOOD"
	ProductCategoryClothes     ProductCategory = "CLOTHES"
	ProductCategoryElectronics ProductCategory = "ELECTRONICS"
	ProductCategoryOther       ProductCategory = "OTHER"
)

// MaxDescriptionLength ограничивает длину описания товара в символах.
const MaxDescriptionLength = 4096

// Valid проверяет, что категория относится к поддерживаемым значениям.
func (c ProductCategory) Valid() bool {
	switch c {
	case ProductCategoryFood, ProductCategoryClothes, ProductCategoryElectronics, ProductCategoryOther:
		return true
	default:
		return false
	}
}

// ParseProductCategory нормализует строковое значение категории.
func ParseProductCategory(raw string) (ProductCategory, bool) {
	category := ProductCategory(strings.ToUpper(strings.TrimSpace(raw)))
	return category, category.Valid()
}

// Product — товар каталога. Quantity — доступный к продаже остаток,
// единственное поле, которое меняет workflow заказа.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceMinor  int64
	Quantity    int64
	Category    ProductCategory
	// ImageID пуст, если у товара нет изображения.
	ImageID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет поля товара перед записью в каталог.
func (p *Product) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		verr.add("name", ErrProductNameRequired)
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		verr.add("description", ErrProductDescriptionLong)
	}
	if p.PriceMinor < 0 {
		verr.add("price", ErrProductPriceNegative)
	}
	if p.Quantity < 0 {
		verr.add("quantity", ErrProductQuantityNegative)
	}
	if !p.Category.Valid() {
		verr.add("category", ErrProductCategoryInvalid)
	}
	return verr.orNil()
}

// ProductSortField — поле сортировки списка товаров.
type ProductSortField string

const (
	ProductSortByName      ProductSortField = "name"
	ProductSortByPrice     ProductSortField = "price"
	ProductSortByQuantity  ProductSortField = "quantity"
	ProductSortByCategory  ProductSortField = "category"
	ProductSortByCreatedAt ProductSortField = "created_at"
)

const (
	// DefaultPageSize используется, если размер страницы не задан.
	DefaultPageSize = 5
	// MaxPageSize ограничивает размер страницы списка товаров.
	MaxPageSize = 100
)

// ProductQuery описывает страницу каталога: фильтр по категории и сортировку.
type ProductQuery struct {
	Page      int
	PageSize  int
	SortBy    ProductSortField
	Ascending bool
	// Category пуста, если фильтр не задан.
	Category ProductCategory
}

// Normalize подставляет значения по умолчанию и обрезает выход за границы.
func (q ProductQuery) Normalize() ProductQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	switch q.SortBy {
	case ProductSortByName, ProductSortByPrice, ProductSortByQuantity, ProductSortByCategory, ProductSortByCreatedAt:
	default:
		q.SortBy = ProductSortByName
	}
	return q
}

// Offset возвращает число пропускаемых записей для страницы.
func (q ProductQuery) Offset() int {
	return q.Page * q.PageSize
}

// ProductPage — результат постраничного запроса каталога.
type ProductPage struct {
	Items      []Product
	Page       int
	PageSize   int
	TotalItems int
}

// TotalPages вычисляет число страниц для текущего размера.
func (p ProductPage) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalItems + p.PageSize - 1) / p.PageSize
}
