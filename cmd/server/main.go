package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/jaisdevansh/monu-bhiya/internal/app"
	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiYellow = "\033[33m"
	ansiGreen  = "\033[32m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()
	if !app.ValidMode(mode) {
		fmt.Fprintf(os.Stderr, "未知启动模式: %s\n", mode)
		os.Exit(2)
	}

	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	// release 模式下拒绝弱密钥与缺失的管理员口令
	if err := cfg.Validate(); err != nil {
		stdLog.Fatalf("配置校验失败: %v", err)
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
	logger.Sync()
}

func printStartupBanner() {
	fmt.Println(ansiYellow + "  __  __                    ____ _           _ " + ansiReset)
	fmt.Println(ansiYellow + " |  \\/  | ___  _ __  _   _ / ___| |__   __ _(_)" + ansiReset)
	fmt.Println(ansiYellow + " | |\\/| |/ _ \\| '_ \\| | | | |   | '_ \\ / _` | |" + ansiReset)
	fmt.Println(ansiYellow + " | |  | | (_) | | | | |_| | |___| | | | (_| | |" + ansiReset)
	fmt.Println(ansiYellow + " |_|  |_|\\___/|_| |_|\\__,_|\\____|_| |_|\\__,_|_|" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Monu Chai ordering API" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
