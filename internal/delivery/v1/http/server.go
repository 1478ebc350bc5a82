package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
)

// maxHeaderBytes ограничивает заголовки запроса: касса шлёт только Authorization и JSON.
const maxHeaderBytes = 64 << 10

// Server: HTTP API кассы поверх chi-роутера.
type Server struct {
	httpServer *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

// Addr возвращает адрес, на котором слушает сервер.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run блокируется до остановки сервера.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Stop дожидается завершения активных запросов в пределах ctx.
// Если дедлайн истёк, оставшиеся соединения закрываются принудительно.
func (s *Server) Stop(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(err, s.httpServer.Close())
	}

	return err
}
