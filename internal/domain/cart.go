package domain

// CartLine — одна позиция в корзине покупателя.
type CartLine struct {
	// ProductID — идентификатор товара; в корзине не бывает двух строк с одним товаром.
	ProductID string `json:"product_id"`
	// Name и ImageURL — снапшот для отображения, чтобы корзина жила без сети.
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	// UnitPriceMinor — цена за единицу в минимальных денежных единицах.
	UnitPriceMinor int64 `json:"unit_price_minor"`
	// Quantity всегда в пределах [1, StockCeiling].
	Quantity int32 `json:"quantity"`
	// StockCeiling — последний известный остаток товара; потолок для Quantity.
	// Обновляется только при повторном добавлении товара, поэтому может отставать
	// от серверного остатка: авторитетная проверка происходит при оформлении.
	StockCeiling int32 `json:"stock_ceiling"`
}

// Subtotal возвращает стоимость строки: цена за единицу * количество.
func (l CartLine) Subtotal() int64 {
	return l.UnitPriceMinor * int64(l.Quantity)
}

// QuantityAdmissible — общее правило допустимости количества: положительное
// целое, не превышающее последний известный остаток. Локально правило
// рекомендательное, авторитетным оно становится только при списании остатков.
func QuantityAdmissible(qty, stockCeiling int32) bool {
	return qty >= 1 && qty <= stockCeiling
}

// Cart — выбор покупателя до оформления заказа. Порядок строк — порядок
// добавления (важен для отображения, на сумму не влияет).
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// AddItem добавляет товар в корзину. Для нового товара создаётся строка с
// количеством 1, если остаток это позволяет; для уже добавленного — количество
// увеличивается на 1, не выходя за потолок остатка. Отказ не меняет состояние.
func (c *Cart) AddItem(item CartLine) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != item.ProductID {
			continue
		}
		// Потолок освежаем данными из последней выборки товара.
		line := c.Lines[i]
		line.StockCeiling = item.StockCeiling
		if !QuantityAdmissible(line.Quantity+1, line.StockCeiling) {
			return ErrStockCeilingExceeded
		}
		line.Quantity++
		c.Lines[i] = line
		return nil
	}

	if !QuantityAdmissible(1, item.StockCeiling) {
		return ErrOutOfStock
	}
	item.Quantity = 1
	c.Lines = append(c.Lines, item)
	return nil
}

// RemoveItem удаляет строку безусловно; отсутствие строки ошибкой не считается.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity выставляет количество точно. Ноль и меньше эквивалентны
// удалению строки; превышение потолка отклоняется без изменения состояния.
func (c *Cart) UpdateQuantity(productID string, quantity int32) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
		if !QuantityAdmissible(quantity, c.Lines[i].StockCeiling) {
			return ErrStockCeilingExceeded
		}
		c.Lines[i].Quantity = quantity
		return nil
	}
	return nil
}

// Clear опустошает корзину безусловно.
func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalMinor возвращает сумму по всем строкам; для пустой корзины — 0.
// Чистая функция без побочных эффектов.
func (c *Cart) TotalMinor() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

// Line возвращает строку по товару, если она есть.
func (c *Cart) Line(productID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// IsEmpty — true, если в корзине нет ни одной строки.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// StockAdjustments строит заявку на списание остатков: пара (товар, количество)
// на каждую строку корзины.
func (c *Cart) StockAdjustments() []StockAdjustment {
	adjustments := make([]StockAdjustment, 0, len(c.Lines))
	for _, line := range c.Lines {
		adjustments = append(adjustments, StockAdjustment{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return adjustments
}
