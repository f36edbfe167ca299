// Пакет whatsapp собирает текст подтверждения заказа и ссылку на чат.
// Ответ мессенджера никогда не ожидается и не разбирается: это ручная
// передача заказа оператору магазина.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/norafoods/storefront/internal/domain"
)

// Builder конструирует предзаполненное сообщение по фиксированному шаблону.
type Builder struct {
	// storeName попадает в заголовок сообщения.
	storeName string
	// phone — номер получателя в международном формате без "+".
	phone string
	// currency — символ валюты для отображения сумм.
	currency string
	// deliveryNote — подпись о доставке; тариф считает оператор вручную.
	deliveryNote string
}

// NewBuilder создаёт билдер сообщений для магазина.
func NewBuilder(storeName, phone, currency, deliveryNote string) *Builder {
	if currency == "" {
		currency = "₹"
	}
	if deliveryNote == "" {
		deliveryNote = "To be calculated (₹70/kg)"
	}
	return &Builder{
		storeName:    storeName,
		phone:        phone,
		currency:     currency,
		deliveryNote: deliveryNote,
	}
}

// OrderMessage собирает текст подтверждения: шапка с номером заказа,
// контакты покупателя, список позиций и сумма без доставки.
func (b *Builder) OrderMessage(order domain.Order) string {
	var items strings.Builder
	for i, line := range order.Lines {
		fmt.Fprintf(&items, "%d. %s (x%d) - %s%d\n",
			i+1, line.Name, line.Qty, b.currency, line.PriceAtPurchaseMinor*int64(line.Qty))
	}

	addr := order.ShippingAddress
	return fmt.Sprintf(`*New Order Request - %s* ⫷⫸
Order ID: #%s
--------------------------------
*Customer Details:*
→ %s
→ %s
→ %s, %s, %s
--------------------------------
*Items:*
%s--------------------------------
*Item Total:* %s%d
*Delivery:* %s
--------------------------------
*Payment:* To be discussed on chat`,
		b.storeName, order.ID,
		addr.Name, addr.Phone,
		addr.Line1, addr.City, addr.Pincode,
		items.String(),
		b.currency, order.TotalMinor,
		b.deliveryNote,
	)
}

// OrderURL возвращает ссылку wa.me с предзаполненным текстом.
func (b *Builder) OrderURL(order domain.Order) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		b.phone, url.QueryEscape(b.OrderMessage(order)))
}
