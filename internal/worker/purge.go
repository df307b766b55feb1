package worker

import (
	"context"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/service"
)

const defaultPurgeInterval = 15 * time.Minute

// Purger 清理过期验证码与结账会话
type Purger interface {
	PurgeExpired(ctx context.Context) (service.PurgeResult, error)
}

// PurgeLoop 周期清理任务
type PurgeLoop struct {
	purger   Purger
	interval time.Duration
	done     chan struct{}
}

// NewPurgeLoop 创建清理循环
func NewPurgeLoop(purger Purger, interval time.Duration) *PurgeLoop {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &PurgeLoop{purger: purger, interval: interval, done: make(chan struct{})}
}

// RunOnce 执行一次清理
func (p *PurgeLoop) RunOnce(ctx context.Context) (service.PurgeResult, error) {
	result, err := p.purger.PurgeExpired(ctx)
	if err != nil {
		logger.Warnw("worker_purge_expired_failed", "error", err)
		return result, err
	}
	if result.Challenges > 0 || result.Sessions > 0 {
		logger.Infow("worker_purge_expired_done", "challenges", result.Challenges, "sessions", result.Sessions)
	}
	return result, nil
}

// Run 立即清理一次，之后按周期运行直到 ctx 结束
func (p *PurgeLoop) Run(ctx context.Context) {
	defer close(p.done)
	if p.purger == nil {
		return
	}
	_, _ = p.RunOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = p.RunOnce(ctx)
		}
	}
}

// PurgeService 未启用队列时由 api 进程承担清理
type PurgeService struct {
	loop *PurgeLoop
}

// NewPurgeService 创建清理服务
func NewPurgeService(purger Purger, interval time.Duration) *PurgeService {
	return &PurgeService{loop: NewPurgeLoop(purger, interval)}
}

// Name 服务名称
func (s *PurgeService) Name() string {
	return "purge"
}

// Start 阻塞运行直到 ctx 结束
func (s *PurgeService) Start(ctx context.Context) error {
	s.loop.Run(ctx)
	return nil
}

// Stop 等待当前一轮清理结束
func (s *PurgeService) Stop(ctx context.Context) error {
	select {
	case <-s.loop.done:
	case <-ctx.Done():
	}
	return nil
}
