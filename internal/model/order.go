package model

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Status отражает этап доставки заказа
type Status string

const (
	StatusReceived       Status = "ORDER_RECEIVED"
	StatusProcessing     Status = "ORDER_PROCESSING"
	StatusOutForDelivery Status = "ORDER_OUT_FOR_DELIVERY"
	StatusShipped        Status = "ORDER_SHIPPED"
)

// Statuses перечисляет все допустимые статусы в порядке продвижения заказа
var Statuses = []Status{StatusReceived, StatusProcessing, StatusOutForDelivery, StatusShipped}

// ParseStatus проверяет, что строка является одним из известных статусов
func ParseStatus(s string) (Status, error) {
	if st := Status(s); st.Valid() {
		return st, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown order status %q, must be one of %s", s, statusList()))
}

// Valid сообщает, является ли статус одним из четырёх допустимых
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrValidation    = errors.New("validation failed")
)

// Order представляет заказ в том виде, в котором он хранится и отдаётся по REST
type Order struct {
	ID            int64  `json:"id"`
	Address       string `json:"address" validate:"required"`
	RecipientName string `json:"recipient_name" validate:"required"`
	Active        bool   `json:"active"`
	Status        Status `json:"status" validate:"required,order_status"`
	Items         []Item `json:"items" validate:"dive"`
}

// Item представляет одну позицию заказа, хранится вместе с заказом
type Item struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// OrderCreate — тело запроса на создание или полную замену заказа
type OrderCreate struct {
	Address       string `json:"address" validate:"required"`
	RecipientName string `json:"recipient_name" validate:"required"`
	Active        *bool  `json:"active"`
	Status        Status `json:"status" validate:"omitempty,order_status"`
	Items         []Item `json:"items" validate:"dive"`
}

// ToOrder собирает заказ из входных данных, подставляя значения по умолчанию
func (c OrderCreate) ToOrder() Order {
	o := Order{
		Address:       c.Address,
		RecipientName: c.RecipientName,
		Active:        true,
		Status:        StatusReceived,
		Items:         NormalizeItems(c.Items),
	}
	if c.Active != nil {
		o.Active = *c.Active
	}
	if c.Status != "" {
		o.Status = c.Status
	}
	return o
}

// NormalizeItems копирует позиции и гарантирует, что результат не nil
func NormalizeItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в ошибках используем имена полей из JSON, а не из Go
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	return v
}

// Validate проверяет корректность входных данных на основе тегов validate
func (c *OrderCreate) Validate() error {
	return wrapValidation(validate.Struct(c))
}

// Validate проверяет корректность заказа перед сохранением
func (o *Order) Validate() error {
	return wrapValidation(validate.Struct(o))
}

// ValidationError хранит ошибки по полям, чтобы транспорт мог их показать клиенту
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError создаёт ошибку валидации для одного поля
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return NewValidationError("body", err.Error())
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe.Namespace())] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath отрезает имя корневой структуры: "OrderCreate.items[0].item" -> "items[0].item"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "order_status":
		return fmt.Sprintf("must be one of %s", statusList())
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

func statusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
