package worker

import (
	"context"
	"errors"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/queue"

	"github.com/hibiken/asynq"
)

var (
	errQueueDisabled  = errors.New("queue disabled")
	errNilConsumer    = errors.New("consumer is nil")
	errNotInitialized = errors.New("worker not initialized")
)

// Service 邮件队列消费进程，顺带承担过期数据清理
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	purge  *PurgeLoop
}

// NewService 创建 worker 服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errQueueDisabled
	}
	if consumer == nil {
		return nil, errNilConsumer
	}
	redisOpt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	svc := &Service{server: asynq.NewServer(redisOpt, serverCfg), mux: mux}
	if purger := consumer.purger(); purger != nil {
		svc.purge = NewPurgeLoop(purger, consumer.Config.Checkout.PurgeInterval())
	}
	return svc, nil
}

func (s *Service) Name() string { return "worker" }

// Start 阻塞直到 asynq 服务退出
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errNotInitialized
	}
	if s.purge != nil {
		go s.purge.Run(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 关闭 asynq 并等待清理循环退出
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	if s.purge == nil {
		return nil
	}
	select {
	case <-s.purge.done:
	case <-ctx.Done():
	}
	return nil
}
