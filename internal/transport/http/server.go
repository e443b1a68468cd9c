package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server — обёртка над http.Server, которая пишет свои ошибки в slog
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer создает и конфигурирует экземпляр Server
// timeout задаёт чтение и запись одного запроса, keep-alive держится вчетверо дольше
func NewServer(port string, handler http.Handler, timeout time.Duration, log *slog.Logger) *Server {
	log = log.With(slog.String("component", "http_server"))

	return &Server{
		httpServer: &http.Server{
			Addr:              port,
			Handler:           handler,
			ReadTimeout:       timeout,
			ReadHeaderTimeout: timeout,
			WriteTimeout:      timeout,
			IdleTimeout:       4 * timeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
		},
		log: log,
	}
}

// Run слушает адрес из конфига и блокируется до остановки сервера
// после Shutdown возвращает nil, а не http.ErrServerClosed
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve обслуживает уже открытый listener
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("http server listening", slog.String("addr", ln.Addr().String()))

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается завершения активных запросов и останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
