package model_test

import (
	"errors"
	"testing"

	"github.com/asquebay/order-tracking-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestOrderCreate_Validate_Valid(t *testing.T) {
	c := model.OrderCreate{
		Address:       "123 Example Street",
		RecipientName: "John Doe",
		Active:        boolPtr(true),
		Status:        model.StatusReceived,
		Items:         []model.Item{{Item: "Computer", Quantity: 1}},
	}
	require.NoError(t, c.Validate())
}

func TestOrderCreate_Validate_Invalid(t *testing.T) {
	c := model.OrderCreate{
		Status: "ORDER_LOST",
		Items:  []model.Item{{Item: "", Quantity: -1}},
	}

	err := c.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrValidation))

	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "address")
	assert.Contains(t, ve.Fields, "recipient_name")
	assert.Contains(t, ve.Fields, "status")
	assert.Contains(t, ve.Fields, "items[0].item")
	assert.Contains(t, ve.Fields, "items[0].quantity")
}

func TestOrderCreate_ToOrder_Defaults(t *testing.T) {
	o := model.OrderCreate{Address: "a", RecipientName: "r"}.ToOrder()

	assert.True(t, o.Active)
	assert.Equal(t, model.StatusReceived, o.Status)
	assert.NotNil(t, o.Items)
	assert.Empty(t, o.Items)
}

func TestOrderCreate_ToOrder_Explicit(t *testing.T) {
	o := model.OrderCreate{
		Address:       "a",
		RecipientName: "r",
		Active:        boolPtr(false),
		Status:        model.StatusShipped,
		Items:         []model.Item{{Item: "Pillow", Quantity: 3}},
	}.ToOrder()

	assert.False(t, o.Active)
	assert.Equal(t, model.StatusShipped, o.Status)
	assert.Equal(t, []model.Item{{Item: "Pillow", Quantity: 3}}, o.Items)
}

func TestParseStatus(t *testing.T) {
	for _, s := range model.Statuses {
		got, err := model.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := model.ParseStatus("order_shipped")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestOrderPatch_Apply(t *testing.T) {
	base := model.Order{
		ID:            7,
		Address:       "old street",
		RecipientName: "Jane",
		Active:        true,
		Status:        model.StatusReceived,
		Items:         []model.Item{{Item: "Lamp", Quantity: 1}},
	}

	patch := model.OrderPatch{
		Address: model.Some("new street"),
		Status:  model.Some(model.StatusShipped),
	}
	got := patch.Apply(base)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "new street", got.Address)
	assert.Equal(t, "Jane", got.RecipientName)
	assert.True(t, got.Active)
	assert.Equal(t, model.StatusShipped, got.Status)
	assert.Equal(t, base.Items, got.Items)
	assert.False(t, patch.Empty())
	assert.True(t, model.OrderPatch{}.Empty())
}

func TestOrderPatch_Apply_ClearsItems(t *testing.T) {
	base := model.Order{Items: []model.Item{{Item: "Lamp", Quantity: 1}}}

	got := model.OrderPatch{Items: model.Some[[]model.Item](nil)}.Apply(base)

	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}
