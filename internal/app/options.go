package app

import (
	"os"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// ValidMode 是否为受支持的启动模式
func ValidMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	}
	return false
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.Named("app")
	}
	if opts.ShutdownTimeout <= 0 && opts.Config != nil {
		opts.ShutdownTimeout = opts.Config.Server.ShutdownTimeout()
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
