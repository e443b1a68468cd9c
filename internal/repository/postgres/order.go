package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/asquebay/order-tracking-api/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const ordersTable = "orders"

var orderColumns = []string{"id", "address", "recipient_name", "active", "status", "items"}

// OrderRepository инкапсулирует логику работы с заказами в БД
// каждая операция — ровно один SQL-запрос, транзакций между операциями нет
type OrderRepository struct {
	db DB
	sq squirrel.StatementBuilderType
}

// NewOrderRepository создает новый экземпляр репозитория
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func returning() string {
	return "RETURNING " + strings.Join(orderColumns, ", ")
}

// Create сохраняет новый заказ и возвращает его вместе с выданным id
func (r *OrderRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	const op = "repository.postgres.order.Create"

	items, err := encodeItems(order.Items)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Insert(ordersTable).
		Columns("address", "recipient_name", "active", "status", "items").
		Values(order.Address, order.RecipientName, order.Active, string(order.Status), items).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	created, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to insert order: %w", op, err)
	}
	return created, nil
}

// FetchByID извлекает один заказ по его id
func (r *OrderRepository) FetchByID(ctx context.Context, id int64) (model.Order, error) {
	const op = "repository.postgres.order.FetchByID"

	sql, args, err := r.sq.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	order, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("%s: %w", op, model.ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("%s: failed to query order: %w", op, err)
	}
	return order, nil
}

// FetchAll возвращает заказы по возрастанию id, пропуская skip и не больше limit
func (r *OrderRepository) FetchAll(ctx context.Context, skip, limit uint64) ([]model.Order, error) {
	const op = "repository.postgres.order.FetchAll"

	return r.list(ctx, op, r.selectOrders().Offset(skip).Limit(limit))
}

// FetchActive возвращает только активные заказы
func (r *OrderRepository) FetchActive(ctx context.Context, limit uint64) ([]model.Order, error) {
	const op = "repository.postgres.order.FetchActive"

	return r.list(ctx, op, r.selectOrders().Where(squirrel.Eq{"active": true}).Limit(limit))
}

// FetchByStatus возвращает заказы с указанным статусом
func (r *OrderRepository) FetchByStatus(ctx context.Context, status model.Status, limit uint64) ([]model.Order, error) {
	const op = "repository.postgres.order.FetchByStatus"

	return r.list(ctx, op, r.selectOrders().Where(squirrel.Eq{"status": string(status)}).Limit(limit))
}

// Update полностью перезаписывает изменяемые поля заказа с order.ID
func (r *OrderRepository) Update(ctx context.Context, order model.Order) (model.Order, error) {
	const op = "repository.postgres.order.Update"

	items, err := encodeItems(order.Items)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Update(ordersTable).
		SetMap(map[string]any{
			"address":        order.Address,
			"recipient_name": order.RecipientName,
			"active":         order.Active,
			"status":         string(order.Status),
			"items":          items,
		}).
		Where(squirrel.Eq{"id": order.ID}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	updated, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("%s: %w", op, model.ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("%s: failed to update order: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет строку заказа насовсем и возвращает её последнее состояние
func (r *OrderRepository) Delete(ctx context.Context, id int64) (model.Order, error) {
	const op = "repository.postgres.order.Delete"

	sql, args, err := r.sq.Delete(ordersTable).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	deleted, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("%s: %w", op, model.ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("%s: failed to delete order: %w", op, err)
	}
	return deleted, nil
}

func (r *OrderRepository) selectOrders() squirrel.SelectBuilder {
	return r.sq.Select(orderColumns...).From(ordersTable).OrderBy("id")
}

func (r *OrderRepository) list(ctx context.Context, op string, q squirrel.SelectBuilder) ([]model.Order, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query orders: %w", op, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan order row: %w", op, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to iterate orders: %w", op, err)
	}

	return orders, nil
}

// scanOrder читает строку в порядке orderColumns; подходит и для pgx.Row, и для pgx.Rows
func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o      model.Order
		status string
		items  []byte
	)
	if err := row.Scan(&o.ID, &o.Address, &o.RecipientName, &o.Active, &status, &items); err != nil {
		return model.Order{}, err
	}
	o.Status = model.Status(status)

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return model.Order{}, fmt.Errorf("failed to decode items of order %d: %w", o.ID, err)
	}
	o.Items = model.NormalizeItems(o.Items)

	return o, nil
}

// позиции хранятся в JSONB-колонке, nil сохраняем как пустой массив
func encodeItems(items []model.Item) ([]byte, error) {
	b, err := json.Marshal(model.NormalizeItems(items))
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return b, nil
}
