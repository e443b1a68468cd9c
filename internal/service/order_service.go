package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asquebay/order-tracking-api/internal/model"
)

// DefaultLimit — сколько заказов отдаётся списком, если лимит не указан
const DefaultLimit uint64 = 1000

// OrderService инкапсулирует работу с заказами поверх репозитория
// REST, GraphQL и Kafka пользуются одним и тем же сервисом
type OrderService struct {
	repo OrderRepository
	log  *slog.Logger
}

// NewOrderService создаёт новый экземпляр сервиса заказов
// он принимает интерфейс, а не конкретный тип, для гибкости и тестируемости
func NewOrderService(repo OrderRepository, log *slog.Logger) *OrderService {
	return &OrderService{
		repo: repo,
		log:  log,
	}
}

// CreateOrder проверяет входные данные и сохраняет новый заказ
func (s *OrderService) CreateOrder(ctx context.Context, in model.OrderCreate) (model.Order, error) {
	const op = "service.OrderService.CreateOrder"
	log := s.log.With(slog.String("op", op))

	if err := in.Validate(); err != nil {
		log.Debug("order rejected", slog.String("error", err.Error()))
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.create(ctx, log, op, in.ToOrder())
}

// AddOrder сохраняет уже собранный заказ (так создаёт заказы GraphQL)
func (s *OrderService) AddOrder(ctx context.Context, order model.Order) (model.Order, error) {
	const op = "service.OrderService.AddOrder"
	log := s.log.With(slog.String("op", op))

	order.ID = 0
	order.Items = model.NormalizeItems(order.Items)
	if err := order.Validate(); err != nil {
		log.Debug("order rejected", slog.String("error", err.Error()))
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.create(ctx, log, op, order)
}

func (s *OrderService) create(ctx context.Context, log *slog.Logger, op string, order model.Order) (model.Order, error) {
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		log.Error("failed to save order to repository", slog.String("error", err.Error()))
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order created", slog.Int64("order_id", created.ID))
	return created, nil
}

// GetOrder получает заказ по его id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		s.logFailure(op, id, err)
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// ListOrders возвращает все заказы с учётом skip и limit
func (s *OrderService) ListOrders(ctx context.Context, skip, limit uint64) ([]model.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.repo.FetchAll(ctx, skip, limitOrDefault(limit))
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// ListActiveOrders возвращает заказы с active = true
func (s *OrderService) ListActiveOrders(ctx context.Context, limit uint64) ([]model.Order, error) {
	const op = "service.OrderService.ListActiveOrders"

	orders, err := s.repo.FetchActive(ctx, limitOrDefault(limit))
	if err != nil {
		s.log.Error("failed to list active orders", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// ListOrdersByStatus возвращает заказы с указанным статусом
func (s *OrderService) ListOrdersByStatus(ctx context.Context, status model.Status, limit uint64) ([]model.Order, error) {
	const op = "service.OrderService.ListOrdersByStatus"

	if _, err := model.ParseStatus(string(status)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.repo.FetchByStatus(ctx, status, limitOrDefault(limit))
	if err != nil {
		s.log.Error("failed to list orders by status", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// ReplaceOrder перезаписывает все изменяемые поля заказа (REST PATCH)
func (s *OrderService) ReplaceOrder(ctx context.Context, id int64, in model.OrderCreate) (model.Order, error) {
	const op = "service.OrderService.ReplaceOrder"

	if err := in.Validate(); err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	order := in.ToOrder()
	order.ID = id
	return s.update(ctx, op, order)
}

// UpdateOrder применяет частичное обновление (GraphQL updateOrder)
// поля, которых нет в patch, остаются без изменений
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, patch model.OrderPatch) (model.Order, error) {
	const op = "service.OrderService.UpdateOrder"

	current, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		s.logFailure(op, id, err)
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Empty() {
		return current, nil
	}

	order := patch.Apply(current)
	if err := order.Validate(); err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.update(ctx, op, order)
}

// DeactivateOrder помечает заказ неактивным вместо удаления строки (REST DELETE)
func (s *OrderService) DeactivateOrder(ctx context.Context, id int64) (model.Order, error) {
	const op = "service.OrderService.DeactivateOrder"

	order, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		s.logFailure(op, id, err)
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	order.Active = false
	return s.update(ctx, op, order)
}

// DeleteOrder удаляет строку заказа насовсем (GraphQL deleteOrder)
// возвращает заказ в том виде, в котором он был до удаления
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) (model.Order, error) {
	const op = "service.OrderService.DeleteOrder"

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logFailure(op, id, err)
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order deleted", slog.String("op", op), slog.Int64("order_id", id))
	return deleted, nil
}

func (s *OrderService) update(ctx context.Context, op string, order model.Order) (model.Order, error) {
	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		s.logFailure(op, order.ID, err)
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order updated", slog.String("op", op), slog.Int64("order_id", updated.ID))
	return updated, nil
}

// logFailure не логирует как ошибку, если заказ просто не найден
func (s *OrderService) logFailure(op string, id int64, err error) {
	log := s.log.With(slog.String("op", op), slog.Int64("order_id", id))
	if errors.Is(err, model.ErrOrderNotFound) {
		log.Debug("order not found")
		return
	}
	log.Error("repository call failed", slog.String("error", err.Error()))
}

func limitOrDefault(limit uint64) uint64 {
	if limit == 0 {
		return DefaultLimit
	}
	return limit
}
