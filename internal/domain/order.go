package domain

import "time"

// OrderStatus описывает жизненный цикл заказа после оформления.
// Перечень фиксированный; меняет статус только админка.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, подтверждение ожидается в мессенджере.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ подтверждён и собирается.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ получен покупателем.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус входит в фиксированный перечень.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatus — состояние оплаты; сама оплата происходит вне системы,
// админ лишь фиксирует факт.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Valid проверяет, что статус оплаты поддерживается.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// OrderLine — замороженная копия строки корзины на момент оформления.
type OrderLine struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	// Name — имя товара на момент покупки; не зависит от дальнейших правок карточки.
	Name string `json:"name"`
	// Qty — количество единиц товара.
	Qty int32 `json:"qty"`
	// PriceAtPurchaseMinor — цена за единицу на момент покупки; не меняется
	// при последующих изменениях цены товара.
	PriceAtPurchaseMinor int64 `json:"price_at_purchase_minor"`
	// CreatedAt фиксирует момент оформления позиции.
	CreatedAt time.Time `json:"created_at"`
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Status     OrderStatus   `json:"status"`
	Payment    PaymentStatus `json:"payment_status"`
	// TotalMinor — сумма позиций на момент подтверждения, без доставки.
	TotalMinor int64 `json:"total_minor"`
	// ShippingAddress — копия выбранного адреса на момент оформления.
	ShippingAddress Address     `json:"shipping_address"`
	Lines           []OrderLine `json:"lines,omitempty"`
	// Version нужен для optimistic locking при обновлениях из админки.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrInvalidOrderStatus)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if o.ShippingAddress.Name == "" || o.ShippingAddress.Line1 == "" {
		errs = append(errs, ErrAddressRequired)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceAtPurchaseMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(line.Qty) * line.PriceAtPurchaseMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
