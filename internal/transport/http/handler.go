package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/asquebay/order-tracking-api/internal/model"
)

// OrderService определяет интерфейс сервиса, с которым работает REST API
// Это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type OrderService interface {
	CreateOrder(ctx context.Context, in model.OrderCreate) (model.Order, error)
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	ListOrders(ctx context.Context, skip, limit uint64) ([]model.Order, error)
	ListActiveOrders(ctx context.Context, limit uint64) ([]model.Order, error)
	ListOrdersByStatus(ctx context.Context, status model.Status, limit uint64) ([]model.Order, error)
	ReplaceOrder(ctx context.Context, id int64, in model.OrderCreate) (model.Order, error)
	DeactivateOrder(ctx context.Context, id int64) (model.Order, error)
}

// Option настраивает Handler
type Option func(*Handler)

// WithLegacyErrors включает старое поведение: любая ошибка, кроме 404, отдаётся как 400
func WithLegacyErrors(enabled bool) Option {
	return func(h *Handler) { h.legacyErrors = enabled }
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	service      OrderService
	log          *slog.Logger
	mux          *http.ServeMux
	root         http.Handler
	legacyErrors bool
}

// NewHandler создает новый экземпляр Handler
func NewHandler(service OrderService, log *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		log:     log,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerRoutes()
	h.root = h.logRequests(h.recoverPanics(h.mux))
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// Mount подключает сторонний обработчик (например, GraphQL) к тому же серверу
func (h *Handler) Mount(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, handler)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /orders", h.wrap(h.getAllOrders))
	h.mux.HandleFunc("GET /orders/active", h.wrap(h.getActiveOrders))
	h.mux.HandleFunc("GET /orders/status/{status}", h.wrap(h.getOrdersByStatus))
	h.mux.HandleFunc("POST /orders", h.wrap(h.createOrder))
	h.mux.HandleFunc("GET /orders/{id}", h.wrap(h.getOrderByID))
	h.mux.HandleFunc("DELETE /orders/{id}", h.wrap(h.deactivateOrder))
	h.mux.HandleFunc("PATCH /orders/{id}", h.wrap(h.updateOrder))

	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func (h *Handler) getAllOrders(w http.ResponseWriter, r *http.Request) error {
	skip, err := queryUint(r, "skip")
	if err != nil {
		return err
	}
	limit, err := queryUint(r, "limit")
	if err != nil {
		return err
	}

	orders, err := h.service.ListOrders(r.Context(), skip, limit)
	if err != nil {
		return err
	}

	h.respondJSON(w, http.StatusOK, orders)
	return nil
}

func (h *Handler) getActiveOrders(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryUint(r, "limit")
	if err != nil {
		return err
	}

	orders, err := h.service.ListActiveOrders(r.Context(), limit)
	if err != nil {
		return err
	}

	h.respondJSON(w, http.StatusOK, orders)
	return nil
}

func (h *Handler) getOrdersByStatus(w http.ResponseWriter, r *http.Request) error {
	status, err := model.ParseStatus(r.PathValue("status"))
	if err != nil {
		return err
	}
	limit, err := queryUint(r, "limit")
	if err != nil {
		return err
	}

	orders, err := h.service.ListOrdersByStatus(r.Context(), status, limit)
	if err != nil {
		return err
	}

	h.respondJSON(w, http.StatusOK, orders)
	return nil
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) error {
	in, err := decodeOrderCreate(r)
	if err != nil {
		return err
	}

	order, err := h.service.CreateOrder(r.Context(), in)
	if err != nil {
		return err
	}

	w.Header().Set("Location", fmt.Sprintf("/orders/%d", order.ID))
	h.respondJSON(w, http.StatusCreated, order)
	return nil
}

func (h *Handler) getOrderByID(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		return err
	}

	h.respondJSON(w, http.StatusOK, order)
	return nil
}

// deactivateOrder не удаляет строку, а только снимает флаг active
func (h *Handler) deactivateOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	order, err := h.service.DeactivateOrder(r.Context(), id)
	if err != nil {
		return err
	}

	h.respondJSON(w, http.StatusOK, order)
	return nil
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	in, err := decodeOrderCreate(r)
	if err != nil {
		return err
	}

	order, err := h.service.ReplaceOrder(r.Context(), id, in)
	if err != nil {
		return err
	}

	h.respondJSON(w, http.StatusOK, order)
	return nil
}

func decodeOrderCreate(r *http.Request) (model.OrderCreate, error) {
	var in model.OrderCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return model.OrderCreate{}, model.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	if err := in.Validate(); err != nil {
		return model.OrderCreate{}, err
	}
	return in, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, model.NewValidationError("id", fmt.Sprintf("must be an integer, got %q", raw))
	}
	return id, nil
}

// queryUint читает необязательный неотрицательный параметр запроса, 0 если его нет
func queryUint(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, model.NewValidationError(name, fmt.Sprintf("must be a non-negative integer, got %q", raw))
	}
	return v, nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}
