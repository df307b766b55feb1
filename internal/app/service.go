package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可被 Runner 托管的长驻组件（HTTP、队列消费、过期清理）
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并发启动所有组件，任一退出即整体停机
type Runner struct {
	services []Service
}

// NewRunner 创建运行器，nil 组件会被忽略
func NewRunner(services ...Service) *Runner {
	kept := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			kept = append(kept, svc)
		}
	}
	return &Runner{services: kept}
}

// Names 已托管组件名称
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.services))
	for _, svc := range r.services {
		names = append(names, svc.Name())
	}
	return names
}

// RunWithOptions 监听退出信号并运行
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

type exitEvent struct {
	name string
	err  error
}

// Run 阻塞直到 ctx 结束或某个组件退出；ctx 取消视为正常停机
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan exitEvent, len(r.services))
	for _, svc := range r.services {
		go func(svc Service) {
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(runCtx)
			exits <- exitEvent{name: svc.Name(), err: err}
		}(svc)
	}

	var runErr error
	select {
	case <-runCtx.Done():
		log.Infow("service_shutdown_requested", "reason", runCtx.Err())
	case ev := <-exits:
		switch {
		case ev.err != nil:
			runErr = ev.err
		case runCtx.Err() == nil:
			runErr = fmt.Errorf("service %s exited unexpectedly", ev.name)
		}
		log.Warnw("service_exit", "service", ev.name, "error", runErr)
	}
	cancel()

	r.stopAll(stopTimeout, log)
	return runErr
}

// stopAll 按启动的逆序停止，共享同一个超时
func (r *Runner) stopAll(timeout time.Duration, log *zap.SugaredLogger) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), timeout)
	defer stopCancel()
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		started := time.Now()
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			continue
		}
		log.Infow("service_stopped", "service", svc.Name(), "took_ms", time.Since(started).Milliseconds())
	}
}
