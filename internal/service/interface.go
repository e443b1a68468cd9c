package service

import (
	"context"

	"github.com/asquebay/order-tracking-api/internal/model"
)

//go:generate mockgen -source=interface.go -destination=mocks/repository_mock.go -package=mocks

// OrderRepository определяет контракт для хранилища заказов
// not found сигнализируется через model.ErrOrderNotFound
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FetchByID(ctx context.Context, id int64) (model.Order, error)
	FetchAll(ctx context.Context, skip, limit uint64) ([]model.Order, error)
	FetchActive(ctx context.Context, limit uint64) ([]model.Order, error)
	FetchByStatus(ctx context.Context, status model.Status, limit uint64) ([]model.Order, error)
	Update(ctx context.Context, order model.Order) (model.Order, error)
	Delete(ctx context.Context, id int64) (model.Order, error)
}
