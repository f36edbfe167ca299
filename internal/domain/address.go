package domain

import "time"

// Address — адрес доставки из адресной книги покупателя. В заказ попадает
// копией по значению, чтобы правки адресной книги не меняли историю заказов.
type Address struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	// Line2 — необязательная вторая строка адреса.
	Line2     string    `json:"line2,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate проверяет обязательные поля адреса.
func (a *Address) Validate() error {
	if a.Name == "" || a.Phone == "" || a.Line1 == "" ||
		a.City == "" || a.State == "" || a.Pincode == "" {
		return ErrAddressRequired
	}
	return nil
}
