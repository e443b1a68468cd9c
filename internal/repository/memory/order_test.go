package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/asquebay/order-tracking-api/internal/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOrder(status model.Status, active bool) model.Order {
	return model.Order{
		Address:       gofakeit.Street(),
		RecipientName: gofakeit.Name(),
		Active:        active,
		Status:        status,
		Items:         []model.Item{{Item: gofakeit.ProductName(), Quantity: gofakeit.Number(1, 5)}},
	}
}

func TestOrderRepository_CreateAndFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	in := fakeOrder(model.StatusReceived, true)
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := repo.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	// изменение возвращённого значения не должно влиять на хранилище
	got.Items[0].Quantity = 100
	again, err := repo.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Items[0].Quantity, again.Items[0].Quantity)
}

func TestOrderRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	for _, o := range []model.Order{
		fakeOrder(model.StatusReceived, true),
		fakeOrder(model.StatusShipped, false),
		fakeOrder(model.StatusShipped, true),
		fakeOrder(model.StatusProcessing, true),
	} {
		_, err := repo.Create(ctx, o)
		require.NoError(t, err)
	}

	all, err := repo.FetchAll(ctx, 0, 1000)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, o := range all {
		assert.Equal(t, int64(i+1), o.ID)
	}

	page, err := repo.FetchAll(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)

	beyond, err := repo.FetchAll(ctx, 10, 1000)
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	active, err := repo.FetchActive(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, active, 3)
	for _, o := range active {
		assert.True(t, o.Active)
	}

	shipped, err := repo.FetchByStatus(ctx, model.StatusShipped, 1)
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, int64(2), shipped[0].ID)
}

func TestOrderRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	created, err := repo.Create(ctx, fakeOrder(model.StatusReceived, true))
	require.NoError(t, err)

	created.Address = "125 Example Street"
	created.Active = false
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "125 Example Street", updated.Address)
	assert.False(t, updated.Active)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = repo.FetchByID(ctx, created.ID)
	require.ErrorIs(t, err, model.ErrOrderNotFound)
	_, err = repo.Update(ctx, created)
	require.ErrorIs(t, err, model.ErrOrderNotFound)
	_, err = repo.Delete(ctx, created.ID)
	require.ErrorIs(t, err, model.ErrOrderNotFound)

	// id удалённого заказа не выдаётся повторно
	next, err := repo.Create(ctx, fakeOrder(model.StatusReceived, true))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestOrderRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, fakeOrder(model.StatusReceived, true))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := repo.FetchAll(ctx, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	assert.Equal(t, int64(50), all[49].ID)
}
