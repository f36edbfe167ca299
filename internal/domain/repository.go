package domain

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductExists при дубле ID или slug.
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// GetBySlug возвращает товар по slug для страницы товара.
	GetBySlug(slug string) (Product, error)
	// List возвращает товары витрины с опциональным фильтром.
	List(filter ProductFilter) ([]Product, error)
	// Update перезаписывает карточку товара.
	Update(product Product) error
	// Delete удаляет товар.
	Delete(id string) error
	// SetBestsellers снимает флаг со всех товаров и выставляет его переданным
	// (не больше BestsellerSlots) одной операцией.
	SetBestsellers(ids []string) error
}

// CategoryRepository описывает справочник категорий.
type CategoryRepository interface {
	Create(category Category) error
	List() ([]Category, error)
	Delete(id string) error
}

// OrderRepository описывает требования к хранилищу заказов.
// Create и AddLines разнесены сознательно: оформление заказа выполняет их
// как отдельные шаги конвейера с компенсацией между ними.
type OrderRepository interface {
	// Create сохраняет строку заказа без позиций.
	Create(order Order) error
	// AddLines дописывает позиции к уже созданному заказу.
	AddLines(orderID string, lines []OrderLine) error
	// Get возвращает заказ c позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы покупателя, свежие первыми.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// List возвращает все заказы для админки, опционально по статусу.
	List(status OrderStatus, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
	// Delete удаляет заказ; используется только компенсацией при неудачном оформлении.
	Delete(id string) error
}

// AddressRepository описывает адресную книгу покупателя.
type AddressRepository interface {
	Create(address Address) error
	// Get возвращает адрес, проверяя принадлежность покупателю.
	Get(id, customerID string) (Address, error)
	ListByCustomer(customerID string) ([]Address, error)
	Update(address Address) error
	Delete(id, customerID string) error
}

// ProfileRepository хранит профили пользователей и их роли.
type ProfileRepository interface {
	Get(id string) (Profile, error)
	// Upsert создаёт профиль при первом входе и обновляет при последующих.
	Upsert(profile Profile) error
}
