// Пакет checkout ведёт покупателя от выбора адреса до оформленного заказа.
// Конвейер сабмита выполняет три зависимых записи строго по порядку:
// списание остатков → строка заказа → позиции заказа. Атомарной транзакции
// на весь конвейер нет, поэтому поздние сбои компенсируются явно.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/cart"
	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/messaging/kafka"
	"github.com/norafoods/storefront/internal/messaging/whatsapp"
	"github.com/norafoods/storefront/internal/metrics"
)

// State — состояние последовательности оформления.
type State string

const (
	// StateSelectingAddress — покупатель выбирает адрес доставки.
	StateSelectingAddress State = "selecting_address"
	// StateReviewingSummary — покупатель видит сводку и может подтвердить заказ.
	StateReviewingSummary State = "reviewing_summary"
	// StateSubmitting — конвейер записей выполняется; повторный сабмит отклоняется.
	StateSubmitting State = "submitting"
	// StateCompleted — заказ оформлен; терминальное состояние попытки.
	StateCompleted State = "completed"
	// StateFailed — конвейер прервался; Retry возвращает к сводке.
	StateFailed State = "failed"
)

// Шаги конвейера для метрик и логов.
const (
	StepDecrementStock   = "decrement_stock"
	StepCreateOrder      = "create_order"
	StepCreateOrderLines = "create_order_lines"
	StepClearCart        = "clear_cart"
)

const timelineEventOrderPlaced = "OrderPlaced"

// Result — итог успешного сабмита: заказ и ссылка для передачи в мессенджер.
type Result struct {
	Order domain.Order
	// MessageURL открывается покупателем; ответа система не ждёт.
	MessageURL string
}

// Deps — зависимости последовательности оформления.
type Deps struct {
	Carts     *cart.Store
	Addresses domain.AddressRepository
	Stock     domain.StockService
	Orders    domain.OrderRepository
	Timeline  domain.TimelineRepository
	Messenger *whatsapp.Builder
	Metrics   *metrics.CheckoutMetrics
	// Producer опционален: события публикуются best-effort.
	Producer *kafka.Producer
	Logger   *log.Entry
}

// Sequencer хранит состояние одной последовательности оформления для пары
// (покупатель, сессия корзины).
type Sequencer struct {
	mu         sync.Mutex
	state      State
	customerID string
	sessionID  string
	addressID  string
	lastErr    error

	deps   Deps
	logger *log.Entry
}

// NewSequencer создаёт последовательность в начальном состоянии выбора адреса.
func NewSequencer(customerID, sessionID string, deps Deps) *Sequencer {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Sequencer{
		state:      StateSelectingAddress,
		customerID: customerID,
		sessionID:  sessionID,
		deps:       deps,
		logger: logger.WithFields(log.Fields{
			"customer_id": customerID,
			"session_id":  sessionID,
		}),
	}
}

// State возвращает текущее состояние последовательности.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectedAddressID возвращает выбранный адрес, если он есть.
func (s *Sequencer) SelectedAddressID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addressID
}

// LastError возвращает причину последнего перехода в StateFailed.
func (s *Sequencer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SelectAddress фиксирует адрес доставки и переводит последовательность к
// сводке заказа. Адрес обязан принадлежать покупателю.
func (s *Sequencer) SelectAddress(addressID string) error {
	if addressID == "" {
		return domain.ErrAddressRequired
	}
	if _, err := s.deps.Addresses.Get(addressID, s.customerID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSelectingAddress, StateReviewingSummary:
		s.addressID = addressID
		s.state = StateReviewingSummary
		return nil
	case StateSubmitting:
		return domain.ErrSubmissionInFlight
	default:
		// Терминальные состояния адрес не меняют.
		return domain.ErrSubmissionInFlight
	}
}

// Back возвращает последовательность к выбору адреса, пока сабмит не начался.
func (s *Sequencer) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReviewingSummary {
		s.state = StateSelectingAddress
	}
}

// Retry возвращает проваленную попытку к сводке для повторного подтверждения.
func (s *Sequencer) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFailed {
		s.state = StateReviewingSummary
		s.lastErr = nil
	}
}

// Submit выполняет конвейер оформления. Вход разрешён только из сводки;
// параллельный сабмит той же последовательности отклоняется сразу.
func (s *Sequencer) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateReviewingSummary:
		// ok
	case StateSubmitting:
		s.mu.Unlock()
		return Result{}, domain.ErrSubmissionInFlight
	case StateSelectingAddress:
		s.mu.Unlock()
		return Result{}, domain.ErrAddressRequired
	default:
		s.mu.Unlock()
		return Result{}, domain.ErrSubmissionInFlight
	}
	addressID := s.addressID
	s.state = StateSubmitting
	s.mu.Unlock()

	result, err := s.run(ctx, addressID)

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
	} else {
		s.state = StateCompleted
		s.lastErr = nil
	}
	s.mu.Unlock()

	return result, err
}

// run — сам конвейер; состояние снаружи уже переведено в StateSubmitting.
func (s *Sequencer) run(ctx context.Context, addressID string) (Result, error) {
	start := time.Now()
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSubmissionStarted()
	}
	defer func() {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordSubmissionDuration(time.Since(start))
		}
	}()

	currentCart, err := s.deps.Carts.Get(ctx, s.sessionID)
	if err != nil {
		return Result{}, s.fail(err)
	}
	if currentCart.IsEmpty() {
		return Result{}, s.fail(domain.ErrCartEmpty)
	}

	address, err := s.deps.Addresses.Get(addressID, s.customerID)
	if err != nil {
		return Result{}, s.fail(err)
	}

	// Шаг 1: авторитетное списание остатков, атомарное по всем позициям.
	// При отказе корзина остаётся нетронутой.
	adjustments := currentCart.StockAdjustments()
	if err := s.step(StepDecrementStock, func() error {
		return s.deps.Stock.Decrement(adjustments)
	}); err != nil {
		s.logger.WithError(err).Warn("stock decrement rejected the submission")
		return Result{}, s.fail(err)
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:              uuid.NewString(),
		CustomerID:      s.customerID,
		Status:          domain.OrderStatusPending,
		Payment:         domain.PaymentStatusPending,
		TotalMinor:      currentCart.TotalMinor(),
		ShippingAddress: address,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Шаг 2: строка заказа. При сбое возвращаем списанные остатки.
	if err := s.step(StepCreateOrder, func() error {
		return s.deps.Orders.Create(order)
	}); err != nil {
		s.logger.WithError(err).Error("failed to create order")
		s.compensate(adjustments, "")
		return Result{}, s.fail(err)
	}

	// Шаг 3: позиции с ценой на момент покупки. При сбое аннулируем заказ
	// и возвращаем остатки, чтобы не оставить заказ без позиций.
	lines := make([]domain.OrderLine, 0, len(currentCart.Lines))
	for _, cartLine := range currentCart.Lines {
		lines = append(lines, domain.OrderLine{
			ID:                   uuid.NewString(),
			ProductID:            cartLine.ProductID,
			Name:                 cartLine.Name,
			Qty:                  cartLine.Quantity,
			PriceAtPurchaseMinor: cartLine.UnitPriceMinor,
			CreatedAt:            now,
		})
	}
	if err := s.step(StepCreateOrderLines, func() error {
		return s.deps.Orders.AddLines(order.ID, lines)
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to create order lines")
		s.compensate(adjustments, order.ID)
		return Result{}, s.fail(err)
	}
	order.Lines = lines

	s.appendTimeline(order.ID, timelineEventOrderPlaced, string(order.Status))

	// Шаг 4: очистка корзины. Заказ уже оформлен, поэтому сбой здесь не
	// откатывает конвейер — снапшот просто переживёт лишнюю перезагрузку.
	if err := s.step(StepClearCart, func() error {
		return s.deps.Carts.Clear(ctx, s.sessionID)
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to clear cart after submission")
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSubmissionCompleted()
	}
	s.publishEvent(kafka.EventTypeOrderPlaced, order, map[string]interface{}{
		"total_minor": order.TotalMinor,
		"lines":       len(order.Lines),
	})
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"total_minor": order.TotalMinor,
	}).Info("order submitted")

	result := Result{Order: order}
	if s.deps.Messenger != nil {
		result.MessageURL = s.deps.Messenger.OrderURL(order)
	}
	return result, nil
}

// step замеряет длительность одного шага конвейера.
func (s *Sequencer) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordStepDuration(name, time.Since(start))
	}
	return err
}

// compensate возвращает списанные остатки и, если заказ уже создан, удаляет его.
func (s *Sequencer) compensate(adjustments []domain.StockAdjustment, orderID string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordCompensation()
	}
	if orderID != "" {
		if err := s.deps.Orders.Delete(orderID); err != nil {
			s.logger.WithError(err).WithField("order_id", orderID).Error("failed to void order during compensation")
		}
	}
	if err := s.deps.Stock.Restore(adjustments); err != nil {
		s.logger.WithError(err).Error("failed to restore stock during compensation")
	}
}

func (s *Sequencer) fail(err error) error {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSubmissionFailed()
	}
	s.publishEvent(kafka.EventTypeCheckoutFailed, domain.Order{CustomerID: s.customerID}, map[string]interface{}{
		"reason": err.Error(),
	})
	return err
}

func (s *Sequencer) appendTimeline(orderID, eventType, reason string) {
	if s.deps.Timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := s.deps.Timeline.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to append timeline event")
	}
}

func (s *Sequencer) publishEvent(eventType kafka.EventType, order domain.Order, metadata map[string]interface{}) {
	if s.deps.Producer == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)
	topic := kafka.TopicOrderEvents
	if eventType == kafka.EventTypeCheckoutFailed {
		topic = kafka.TopicCheckoutEvents
	}
	if err := s.deps.Producer.PublishEvent(topic, order.CustomerID, event); err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("failed to publish checkout event")
	}
}
