package whatsapp_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/messaging/whatsapp"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID:         "7fd2",
		TotalMinor: 250,
		ShippingAddress: domain.Address{
			Name:    "Asha",
			Phone:   "+91 90000 00000",
			Line1:   "12 Hill Road",
			City:    "Kochi",
			Pincode: "682001",
		},
		Lines: []domain.OrderLine{
			{Name: "Mango Pickle", Qty: 2, PriceAtPurchaseMinor: 100},
			{Name: "Chilli Powder", Qty: 1, PriceAtPurchaseMinor: 50},
		},
	}
}

func TestOrderMessage(t *testing.T) {
	builder := whatsapp.NewBuilder("Nora Foods", "917306874286", "₹", "")
	message := builder.OrderMessage(sampleOrder())

	for _, want := range []string{
		"*New Order Request - Nora Foods*",
		"Order ID: #7fd2",
		"→ Asha",
		"→ +91 90000 00000",
		"→ 12 Hill Road, Kochi, 682001",
		"1. Mango Pickle (x2) - ₹200",
		"2. Chilli Powder (x1) - ₹50",
		"*Item Total:* ₹250",
		"*Delivery:* To be calculated (₹70/kg)",
		"*Payment:* To be discussed on chat",
	} {
		if !strings.Contains(message, want) {
			t.Fatalf("message is missing %q:\n%s", want, message)
		}
	}
}

func TestOrderURL(t *testing.T) {
	builder := whatsapp.NewBuilder("Nora Foods", "917306874286", "₹", "")
	rawURL := builder.OrderURL(sampleOrder())

	if !strings.HasPrefix(rawURL, "https://wa.me/917306874286?text=") {
		t.Fatalf("unexpected url prefix: %s", rawURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("url does not parse: %v", err)
	}
	text := parsed.Query().Get("text")
	if !strings.Contains(text, "Order ID: #7fd2") {
		t.Fatalf("decoded text is missing order id: %s", text)
	}
}
