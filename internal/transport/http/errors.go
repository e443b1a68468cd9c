package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/asquebay/order-tracking-api/internal/model"
)

// handlerFunc — обработчик, который возвращает ошибку вместо того, чтобы писать её сам
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) wrap(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.handleError(w, r, err)
		}
	}
}

// handleError переводит ошибку в HTTP-ответ
// not found всегда 404; остальное зависит от режима legacyErrors
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrOrderNotFound) {
		h.respondError(w, http.StatusNotFound, "order not found with id "+r.PathValue("id"))
		return
	}

	if h.legacyErrors {
		h.log.Warn("request failed", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusBadRequest, map[string]string{
			"message": fmt.Sprintf("Failed to execute: %s: %s. Detail: %s", r.Method, requestURL(r), err),
		})
		return
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		h.respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":  model.ErrValidation.Error(),
			"fields": ve.Fields,
		})
		return
	}
	if errors.Is(err, model.ErrValidation) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Error("internal server error", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	h.respondError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// requestURL восстанавливает полный адрес запроса для сообщения об ошибке
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
