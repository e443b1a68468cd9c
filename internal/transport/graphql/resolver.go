package graphql

import (
	"errors"
	"fmt"

	"github.com/asquebay/order-tracking-api/internal/model"

	gql "github.com/graphql-go/graphql"
)

var errInternal = errors.New("internal server error")

type resolver struct {
	svc OrderService
}

func (r *resolver) orders(p gql.ResolveParams) (interface{}, error) {
	orders, err := r.svc.ListOrders(p.Context, 0, 0)
	if err != nil {
		return nil, publicError(err, 0)
	}
	return orders, nil
}

func (r *resolver) order(p gql.ResolveParams) (interface{}, error) {
	id := int64(p.Args["id"].(int))

	order, err := r.svc.GetOrder(p.Context, id)
	if err != nil {
		return nil, publicError(err, id)
	}
	return order, nil
}

func (r *resolver) addOrder(p gql.ResolveParams) (interface{}, error) {
	items, err := itemsArg(p.Args["items"])
	if err != nil {
		return nil, err
	}

	order := model.Order{
		Address:       stringArg(p.Args, "address"),
		RecipientName: stringArg(p.Args, "recipientName"),
		Active:        true,
		Status:        model.StatusProcessing,
		Items:         items,
	}
	if v, ok := p.Args["active"].(bool); ok {
		order.Active = v
	}
	if v, ok := p.Args["status"].(model.Status); ok {
		order.Status = v
	}

	created, err := r.svc.AddOrder(p.Context, order)
	if err != nil {
		return nil, publicError(err, 0)
	}
	return created, nil
}

func (r *resolver) updateOrder(p gql.ResolveParams) (interface{}, error) {
	id := int64(p.Args["id"].(int))

	patch, err := patchFromArgs(p)
	if err != nil {
		return nil, err
	}

	updated, err := r.svc.UpdateOrder(p.Context, id, patch)
	if err != nil {
		return nil, publicError(err, id)
	}
	return updated, nil
}

func (r *resolver) deleteOrder(p gql.ResolveParams) (interface{}, error) {
	id := int64(p.Args["id"].(int))

	deleted, err := r.svc.DeleteOrder(p.Context, id)
	if err != nil {
		return nil, publicError(err, id)
	}
	return deleted, nil
}

// patchFromArgs переводит аргументы updateOrder в OrderPatch
// graphql-go не кладёт в Args ни пропущенные аргументы, ни переменные со значением null,
// поэтому и то и другое оставляет поле без изменений
func patchFromArgs(p gql.ResolveParams) (model.OrderPatch, error) {
	var patch model.OrderPatch

	if v, ok := p.Args["address"].(string); ok {
		patch.Address = model.Some(v)
	}
	if v, ok := p.Args["recipientName"].(string); ok {
		patch.RecipientName = model.Some(v)
	}
	if v, ok := p.Args["items"]; ok && v != nil {
		items, err := itemsArg(v)
		if err != nil {
			return model.OrderPatch{}, err
		}
		patch.Items = model.Some(items)
	}
	if v, ok := p.Args["active"].(bool); ok {
		patch.Active = model.Some(v)
	}
	if v, ok := p.Args["status"].(model.Status); ok {
		patch.Status = model.Some(v)
	}

	return patch, nil
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func itemsArg(v interface{}) ([]model.Item, error) {
	raw, _ := v.([]interface{})
	items := make([]model.Item, 0, len(raw))
	for i, el := range raw {
		m, ok := el.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("items[%d]: expected an object", i)
		}
		name, _ := m["item"].(string)
		quantity, _ := m["quantity"].(int)
		items = append(items, model.Item{Item: name, Quantity: quantity})
	}
	return items, nil
}

// publicError убирает из ошибки внутренние подробности перед отдачей клиенту
func publicError(err error, id int64) error {
	if errors.Is(err, model.ErrOrderNotFound) {
		return fmt.Errorf("order not found with id %d", id)
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return errInternal
}
