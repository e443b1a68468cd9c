package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/asquebay/order-tracking-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB запоминает последний запрос и отдаёт заранее подготовленные строки
type fakeDB struct {
	sql  string
	args []any

	rows [][]any
	err  error
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows, pos: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.sql, f.args = sql, args
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: f.rows[0]}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return pgconn.NewCommandTag("CREATE TABLE"), f.err
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.pos], dest)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *[]byte:
			*d = []byte(v.(string))
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

func orderRow(id int64, address string, active bool, status model.Status, items string) []any {
	return []any{id, address, "John Doe", active, string(status), items}
}

func TestOrderRepository_Create(t *testing.T) {
	db := &fakeDB{rows: [][]any{orderRow(1, "123 Example Street", true, model.StatusReceived, `[{"item":"Computer","quantity":1}]`)}}
	repo := NewOrderRepository(db)

	got, err := repo.Create(context.Background(), model.Order{
		Address:       "123 Example Street",
		RecipientName: "John Doe",
		Active:        true,
		Status:        model.StatusReceived,
		Items:         []model.Item{{Item: "Computer", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO orders (address,recipient_name,active,status,items) VALUES ($1,$2,$3,$4,$5) RETURNING id, address, recipient_name, active, status, items",
		db.sql)
	require.Len(t, db.args, 5)
	assert.Equal(t, "ORDER_RECEIVED", db.args[3])
	assert.JSONEq(t, `[{"item":"Computer","quantity":1}]`, string(db.args[4].([]byte)))

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, []model.Item{{Item: "Computer", Quantity: 1}}, got.Items)
}

func TestOrderRepository_Create_NilItemsStoredAsEmptyArray(t *testing.T) {
	db := &fakeDB{rows: [][]any{orderRow(2, "a", true, model.StatusReceived, `[]`)}}
	repo := NewOrderRepository(db)

	got, err := repo.Create(context.Background(), model.Order{Address: "a", RecipientName: "b", Status: model.StatusReceived})
	require.NoError(t, err)

	assert.Equal(t, "[]", string(db.args[4].([]byte)))
	assert.NotNil(t, got.Items)
}

func TestOrderRepository_FetchByID(t *testing.T) {
	db := &fakeDB{rows: [][]any{orderRow(5, "x", false, model.StatusShipped, `[]`)}}
	repo := NewOrderRepository(db)

	got, err := repo.FetchByID(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, address, recipient_name, active, status, items FROM orders WHERE id = $1", db.sql)
	assert.Equal(t, []any{int64(5)}, db.args)
	assert.Equal(t, model.StatusShipped, got.Status)
	assert.False(t, got.Active)
}

func TestOrderRepository_FetchByID_NotFound(t *testing.T) {
	repo := NewOrderRepository(&fakeDB{})

	_, err := repo.FetchByID(context.Background(), 42)
	require.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_FetchByID_DriverError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewOrderRepository(&fakeDB{err: boom})

	_, err := repo.FetchByID(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_FetchAll(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		orderRow(1, "a", true, model.StatusReceived, `[]`),
		orderRow(2, "b", false, model.StatusShipped, `[{"item":"Pillow","quantity":3}]`),
	}}
	repo := NewOrderRepository(db)

	got, err := repo.FetchAll(context.Background(), 10, 1000)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, address, recipient_name, active, status, items FROM orders ORDER BY id LIMIT 1000 OFFSET 10", db.sql)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Address)
	assert.Equal(t, 3, got[1].Items[0].Quantity)
}

func TestOrderRepository_FetchAll_Empty(t *testing.T) {
	repo := NewOrderRepository(&fakeDB{})

	got, err := repo.FetchAll(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOrderRepository_FetchActive(t *testing.T) {
	db := &fakeDB{}
	repo := NewOrderRepository(db)

	_, err := repo.FetchActive(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, address, recipient_name, active, status, items FROM orders WHERE active = $1 ORDER BY id LIMIT 50", db.sql)
	assert.Equal(t, []any{true}, db.args)
}

func TestOrderRepository_FetchByStatus(t *testing.T) {
	db := &fakeDB{}
	repo := NewOrderRepository(db)

	_, err := repo.FetchByStatus(context.Background(), model.StatusOutForDelivery, 1000)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, address, recipient_name, active, status, items FROM orders WHERE status = $1 ORDER BY id LIMIT 1000", db.sql)
	assert.Equal(t, []any{"ORDER_OUT_FOR_DELIVERY"}, db.args)
}

func TestOrderRepository_Update(t *testing.T) {
	db := &fakeDB{rows: [][]any{orderRow(3, "125 Example Street", true, model.StatusProcessing, `[]`)}}
	repo := NewOrderRepository(db)

	got, err := repo.Update(context.Background(), model.Order{
		ID:            3,
		Address:       "125 Example Street",
		RecipientName: "Timmy Doe",
		Active:        true,
		Status:        model.StatusProcessing,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE orders SET active = $1, address = $2, items = $3, recipient_name = $4, status = $5 WHERE id = $6 RETURNING id, address, recipient_name, active, status, items",
		db.sql)
	assert.Equal(t, int64(3), db.args[5])
	assert.Equal(t, "125 Example Street", got.Address)
}

func TestOrderRepository_Update_NotFound(t *testing.T) {
	repo := NewOrderRepository(&fakeDB{})

	_, err := repo.Update(context.Background(), model.Order{ID: 9, Status: model.StatusReceived})
	require.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_Delete(t *testing.T) {
	db := &fakeDB{rows: [][]any{orderRow(4, "gone", true, model.StatusReceived, `[]`)}}
	repo := NewOrderRepository(db)

	got, err := repo.Delete(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM orders WHERE id = $1 RETURNING id, address, recipient_name, active, status, items", db.sql)
	assert.Equal(t, "gone", got.Address)

	_, err = NewOrderRepository(&fakeDB{}).Delete(context.Background(), 4)
	require.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_CorruptItems(t *testing.T) {
	repo := NewOrderRepository(&fakeDB{rows: [][]any{orderRow(1, "a", true, model.StatusReceived, `{not json`)}})

	_, err := repo.FetchByID(context.Background(), 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, model.ErrOrderNotFound)
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.Contains(t, db.sql, "CREATE TABLE IF NOT EXISTS orders")

	db.err = errors.New("permission denied")
	require.ErrorContains(t, EnsureSchema(context.Background(), db), "permission denied")
}
