package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/asquebay/order-tracking-api/internal/model"
)

// OrderRepository — потокобезопасное in-memory хранилище заказов
// используется при storage.driver: memory и в тестах транспорта
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]model.Order
	// lastID только растёт, поэтому id удалённых заказов не переиспользуются
	lastID int64
}

// NewOrderRepository создаёт пустое хранилище
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[int64]model.Order)}
}

// Create добавляет заказ и выдаёт ему следующий id
func (r *OrderRepository) Create(_ context.Context, order model.Order) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	order.ID = r.lastID
	order = clone(order)
	r.orders[order.ID] = order

	return clone(order), nil
}

// FetchByID извлекает заказ по его id
func (r *OrderRepository) FetchByID(_ context.Context, id int64) (model.Order, error) {
	const op = "repository.memory.order.FetchByID"

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("%s: %w", op, model.ErrOrderNotFound)
	}
	return clone(order), nil
}

// FetchAll возвращает заказы по возрастанию id
func (r *OrderRepository) FetchAll(_ context.Context, skip, limit uint64) ([]model.Order, error) {
	return r.filter(skip, limit, func(model.Order) bool { return true }), nil
}

// FetchActive возвращает только активные заказы
func (r *OrderRepository) FetchActive(_ context.Context, limit uint64) ([]model.Order, error) {
	return r.filter(0, limit, func(o model.Order) bool { return o.Active }), nil
}

// FetchByStatus возвращает заказы с указанным статусом
func (r *OrderRepository) FetchByStatus(_ context.Context, status model.Status, limit uint64) ([]model.Order, error) {
	return r.filter(0, limit, func(o model.Order) bool { return o.Status == status }), nil
}

// Update перезаписывает изменяемые поля существующего заказа
func (r *OrderRepository) Update(_ context.Context, order model.Order) (model.Order, error) {
	const op = "repository.memory.order.Update"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return model.Order{}, fmt.Errorf("%s: %w", op, model.ErrOrderNotFound)
	}
	order = clone(order)
	r.orders[order.ID] = order

	return clone(order), nil
}

// Delete удаляет заказ и возвращает его последнее состояние
func (r *OrderRepository) Delete(_ context.Context, id int64) (model.Order, error) {
	const op = "repository.memory.order.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("%s: %w", op, model.ErrOrderNotFound)
	}
	delete(r.orders, id)

	return order, nil
}

func (r *OrderRepository) filter(skip, limit uint64, keep func(model.Order) bool) []model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.orders))
	for id, o := range r.orders {
		if keep(o) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if skip >= uint64(len(ids)) {
		return []model.Order{}
	}
	ids = ids[skip:]
	if limit < uint64(len(ids)) {
		ids = ids[:limit]
	}

	out := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(r.orders[id]))
	}
	return out
}

// clone не даёт вызывающему коду менять позиции, лежащие в хранилище
func clone(o model.Order) model.Order {
	o.Items = model.NormalizeItems(o.Items)
	return o
}
