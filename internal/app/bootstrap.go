package app

import (
	"errors"
	"fmt"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/provider"
	"github.com/jaisdevansh/monu-bhiya/internal/router"
	"github.com/jaisdevansh/monu-bhiya/internal/worker"
)

// BuildRunner 按启动模式组装组件
//
//	all    HTTP + 队列消费（队列关闭时改为进程内清理）
//	api    HTTP（队列关闭时附带进程内清理）
//	worker 仅队列消费，要求 queue.enabled
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if mode == ModeWorker && !cfg.Queue.Enabled {
		return nil, errors.New("worker mode requires queue.enabled")
	}

	container := provider.NewContainer(cfg)
	serveHTTP := mode == ModeAll || mode == ModeAPI

	var services []Service
	if serveHTTP {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}

	switch {
	case cfg.Queue.Enabled && mode != ModeAPI:
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	case !cfg.Queue.Enabled && serveHTTP:
		services = append(services, worker.NewPurgeService(container.CheckoutService, cfg.Checkout.PurgeInterval()))
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Addr(),
		"mode", opts.Mode,
		"services", runner.Names(),
	)
	return RunWithOptions(runner, opts)
}
