package graphql

import (
	"context"
	"fmt"
	"math"

	"github.com/asquebay/order-tracking-api/internal/model"
	"github.com/asquebay/order-tracking-api/internal/service"

	gql "github.com/graphql-go/graphql"
)

// OrderService — то, что нужно резолверам от сервисного слоя
type OrderService interface {
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	ListOrders(ctx context.Context, skip, limit uint64) ([]model.Order, error)
	AddOrder(ctx context.Context, order model.Order) (model.Order, error)
	UpdateOrder(ctx context.Context, id int64, patch model.OrderPatch) (model.Order, error)
	DeleteOrder(ctx context.Context, id int64) (model.Order, error)
}

var statusEnum = gql.NewEnum(gql.EnumConfig{
	Name:        "OrderStatus",
	Description: "Delivery progress of an order",
	Values: gql.EnumValueConfigMap{
		string(model.StatusReceived):       &gql.EnumValueConfig{Value: model.StatusReceived},
		string(model.StatusProcessing):     &gql.EnumValueConfig{Value: model.StatusProcessing},
		string(model.StatusOutForDelivery): &gql.EnumValueConfig{Value: model.StatusOutForDelivery},
		string(model.StatusShipped):        &gql.EnumValueConfig{Value: model.StatusShipped},
	},
})

var itemType = gql.NewObject(gql.ObjectConfig{
	Name: "Item",
	Fields: gql.Fields{
		"item": &gql.Field{
			Type:    gql.NewNonNull(gql.String),
			Resolve: itemField(func(i model.Item) any { return i.Item }),
		},
		"quantity": &gql.Field{
			Type:    gql.NewNonNull(gql.Int),
			Resolve: itemField(func(i model.Item) any { return i.Quantity }),
		},
	},
})

var itemInputType = gql.NewInputObject(gql.InputObjectConfig{
	Name: "ItemInput",
	Fields: gql.InputObjectConfigFieldMap{
		"item":     &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"quantity": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.Int)},
	},
})

// в GraphQL поле называется recipientName, в REST и в БД — recipient_name
var orderType = gql.NewObject(gql.ObjectConfig{
	Name: "Order",
	Fields: gql.Fields{
		"id": &gql.Field{
			Type:    gql.NewNonNull(gql.Int),
			Resolve: orderID,
		},
		"address": &gql.Field{
			Type:    gql.NewNonNull(gql.String),
			Resolve: orderField(func(o model.Order) any { return o.Address }),
		},
		"recipientName": &gql.Field{
			Type:    gql.NewNonNull(gql.String),
			Resolve: orderField(func(o model.Order) any { return o.RecipientName }),
		},
		"active": &gql.Field{
			Type:    gql.NewNonNull(gql.Boolean),
			Resolve: orderField(func(o model.Order) any { return o.Active }),
		},
		"status": &gql.Field{
			Type:    gql.NewNonNull(statusEnum),
			Resolve: orderField(func(o model.Order) any { return o.Status }),
		},
		"items": &gql.Field{
			Type:    gql.NewNonNull(gql.NewList(gql.NewNonNull(itemType))),
			Resolve: orderField(func(o model.Order) any { return model.NormalizeItems(o.Items) }),
		},
	},
})

func orderField(get func(model.Order) any) gql.FieldResolveFn {
	return func(p gql.ResolveParams) (interface{}, error) {
		switch o := p.Source.(type) {
		case model.Order:
			return get(o), nil
		case *model.Order:
			return get(*o), nil
		}
		return nil, nil
	}
}

// orderID не даёт id молча превратиться в null: graphql-go сериализует Int только в пределах int32
func orderID(p gql.ResolveParams) (interface{}, error) {
	id, _ := orderField(func(o model.Order) any { return o.ID })(p)
	v, ok := id.(int64)
	if !ok {
		return nil, nil
	}
	if v > math.MaxInt32 {
		return nil, fmt.Errorf("order id %d does not fit GraphQL Int", v)
	}
	return int(v), nil
}

func itemField(get func(model.Item) any) gql.FieldResolveFn {
	return func(p gql.ResolveParams) (interface{}, error) {
		if i, ok := p.Source.(model.Item); ok {
			return get(i), nil
		}
		return nil, nil
	}
}

// NewSchema собирает схему поверх сервиса заказов
func NewSchema(svc OrderService) (gql.Schema, error) {
	r := &resolver{svc: svc}

	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"orders": &gql.Field{
				Type:        gql.NewNonNull(gql.NewList(gql.NewNonNull(orderType))),
				Description: fmt.Sprintf("Orders sorted by id, at most %d per request", service.DefaultLimit),
				Resolve:     r.orders,
			},
			"order": &gql.Field{
				Type:        orderType,
				Description: "One order by id, null when it does not exist",
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
				},
				Resolve: r.order,
			},
		},
	})

	mutation := gql.NewObject(gql.ObjectConfig{
		Name: "Mutation",
		Fields: gql.Fields{
			"addOrder": &gql.Field{
				Type: orderType,
				Args: gql.FieldConfigArgument{
					"address":       &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"recipientName": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"items":         &gql.ArgumentConfig{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(itemInputType)))},
					"active":        &gql.ArgumentConfig{Type: gql.Boolean, DefaultValue: true},
					"status":        &gql.ArgumentConfig{Type: statusEnum, DefaultValue: model.StatusProcessing},
				},
				Resolve: r.addOrder,
			},
			"updateOrder": &gql.Field{
				Type:        orderType,
				Description: "Overwrites only the supplied fields",
				Args: gql.FieldConfigArgument{
					"id":            &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
					"address":       &gql.ArgumentConfig{Type: gql.String},
					"recipientName": &gql.ArgumentConfig{Type: gql.String},
					"items":         &gql.ArgumentConfig{Type: gql.NewList(gql.NewNonNull(itemInputType))},
					"active":        &gql.ArgumentConfig{Type: gql.Boolean},
					"status":        &gql.ArgumentConfig{Type: statusEnum},
				},
				Resolve: r.updateOrder,
			},
			"deleteOrder": &gql.Field{
				Type:        orderType,
				Description: "Removes the order row and returns it as it was",
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
				},
				Resolve: r.deleteOrder,
			},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
