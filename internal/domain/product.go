package domain

import "time"

// Product — карточка товара витрины.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Slug — человекочитаемый идентификатор для страницы товара.
	Slug string `json:"slug"`
	// Category — имя категории из справочника категорий.
	Category string `json:"category"`
	// PriceMinor — цена в минимальных денежных единицах.
	PriceMinor int64 `json:"price_minor"`
	// PackSize — фасовка в свободной форме, например "500 g".
	PackSize string `json:"pack_size,omitempty"`
	// Stock — доступный остаток; источник потолка для корзины.
	Stock       int32  `json:"stock"`
	ShelfLife   string `json:"shelf_life,omitempty"`
	Ingredients string `json:"ingredients,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	// Bestseller — товар занимает один из фиксированных слотов на главной.
	Bestseller bool      `json:"bestseller"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BestsellerSlots — фиксированное количество слотов под бестселлеры на главной.
const BestsellerSlots = 3

// Validate проверяет обязательные поля карточки товара.
func (p *Product) Validate() []error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Slug == "" {
		errs = append(errs, ErrSlugRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrLinePriceInvalid)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrLineQtyInvalid)
	}
	return errs
}

// CartLine делает из карточки товара снапшот для корзины. Количество
// выставляет сама корзина при добавлении.
func (p *Product) CartLine() CartLine {
	return CartLine{
		ProductID:      p.ID,
		Name:           p.Name,
		ImageURL:       p.ImageURL,
		UnitPriceMinor: p.PriceMinor,
		StockCeiling:   p.Stock,
	}
}

// Category — элемент справочника категорий товаров.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductFilter ограничивает выборку товаров на витрине.
type ProductFilter struct {
	// Category — фильтр по имени категории; пустое значение — без фильтра.
	Category string
	// BestsellersOnly оставляет только товары из слотов бестселлеров.
	BestsellersOnly bool
}
