package kafka

import "time"

// EventType определяет тип события витрины.
type EventType string

const (
	// EventTypeOrderPlaced — заказ успешно оформлен покупателем.
	EventTypeOrderPlaced EventType = "order.placed"
	// EventTypeOrderStatusChanged — админ сменил статус заказа.
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	// EventTypeOrderPaymentMarked — админ отметил факт оплаты.
	EventTypeOrderPaymentMarked EventType = "order.payment_marked"
	// EventTypeCheckoutFailed — конвейер оформления прервался.
	EventTypeCheckoutFailed EventType = "checkout.failed"
)

// Topics для Kafka.
const (
	TopicOrderEvents    = "nora.order.events"
	TopicCheckoutEvents = "nora.checkout.events"
)

// OrderEvent представляет событие заказа для downstream-потребителей
// (уведомления, аналитика). Публикация всегда best-effort.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, customerID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}
