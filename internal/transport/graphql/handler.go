package graphql

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/handler"
)

// NewHandler возвращает HTTP-обработчик GraphQL (POST и GET по соглашению GraphQL-over-HTTP)
// graphiql включает встроенную IDE для запросов из браузера
func NewHandler(svc OrderService, graphiql bool) (http.Handler, error) {
	const op = "transport.graphql.NewHandler"

	schema, err := NewSchema(svc)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build schema: %w", op, err)
	}

	return handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   false,
		GraphiQL: graphiql,
	}), nil
}
