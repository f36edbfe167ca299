package domain

import "time"

// TimelineEvent описывает событие в жизненном цикле заказа: оформление,
// смены статуса из админки, пометку об оплате.
type TimelineEvent struct {
	OrderID  string    `json:"order_id"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}
