package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора покупателя.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_minor must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrLineQtyInvalid = errors.New("line quantity must be greater than zero")
	// Ошибка, если зафиксированная цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match lines sum")
	// ErrInvalidOrderStatus возвращается при попытке выставить статус вне фиксированного перечня.
	ErrInvalidOrderStatus = errors.New("unknown order status")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")

	// ErrOutOfStock — товара нет в наличии, добавлять в корзину нечего.
	ErrOutOfStock = errors.New("item is out of stock")
	// ErrStockCeilingExceeded — запрошенное количество превышает последний известный остаток.
	ErrStockCeilingExceeded = errors.New("quantity exceeds known stock")
	// ErrCartEmpty — оформление заказа с пустой корзиной невозможно.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrCartNotFound возвращается хранилищем корзин, если снапшота для сессии нет.
	ErrCartNotFound = errors.New("cart not found")

	// ErrInsufficientStock — авторитетное списание остатков отклонило заявку целиком.
	ErrInsufficientStock = errors.New("some items are out of stock, refresh cart")

	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists — товар с таким ID или slug уже создан.
	ErrProductExists = errors.New("product already exists")
	// ErrSlugRequired — у товара обязателен slug для витрины.
	ErrSlugRequired = errors.New("product slug is required")
	// ErrProductNameRequired — товар без имени на витрину не попадает.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrBestsellerLimit — слотов под бестселлеры фиксированное количество.
	ErrBestsellerLimit = errors.New("too many bestseller slots")

	// ErrCategoryNotFound возвращается, если категория не найдена.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryExists — категория с таким именем уже есть.
	ErrCategoryExists = errors.New("category already exists")

	// ErrAddressNotFound возвращается, если адрес не найден или принадлежит другому покупателю.
	ErrAddressNotFound = errors.New("address not found")
	// ErrAddressRequired — для перехода к подтверждению нужен выбранный адрес.
	ErrAddressRequired = errors.New("shipping address is required")

	// ErrProfileNotFound возвращается, если профиль пользователя отсутствует.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrForbidden — у пользователя нет прав на операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated — запрос без действующей сессии.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrIdempotencyKeyRequired — пустой idempotency-key недопустим.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — для записи нужен hash запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован, ответ нужно переиспользовать.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — тот же ключ пришёл с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key is used with a different request")
	// ErrIdempotencyKeyNotFound — записи по ключу нет.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")

	// ErrSubmissionInFlight — повторный сабмит, пока предыдущий не завершён.
	ErrSubmissionInFlight = errors.New("order submission is already in progress")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsNotFound объединяет "не найдено" по всем сущностям витрины.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrAddressNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrCartNotFound)
}

// IsAdvisory помечает локальные отказы корзины: состояние не изменилось,
// пользователю показывается подсказка, поток не прерывается.
func IsAdvisory(err error) bool {
	return errors.Is(err, ErrOutOfStock) || errors.Is(err, ErrStockCeilingExceeded)
}
