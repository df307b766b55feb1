package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
)

// HTTPService 对外 API 服务
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 按 server 配置创建 HTTP 服务
func NewHTTPService(cfg config.ServerConfig, handler http.Handler) *HTTPService {
	return &HTTPService{
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       secondsOrZero(cfg.ReadTimeoutSeconds),
			WriteTimeout:      secondsOrZero(cfg.WriteTimeoutSeconds),
			IdleTimeout:       secondsOrZero(cfg.IdleTimeoutSeconds),
		},
	}
}

func secondsOrZero(v int) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Second
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "http"
}

// Start 监听端口直到 Stop 被调用
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 等待进行中的请求完成
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
