// cafectl 运维命令行：迁移、导入菜单、生成口令哈希、清理过期数据与角色管理。
package main

import (
	"fmt"
	"os"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "cafectl",
		Short:         "Monu Chai operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML), defaults to ./config.yml")

	load := func() (*config.Config, error) {
		return loadConfig(configPath)
	}
	cmd.AddCommand(
		migrateCmd(load),
		seedCmd(load),
		hashSecretCmd(),
		otpPurgeCmd(load),
		rolesCmd(load),
	)
	return cmd
}

type configLoader func() (*config.Config, error)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFrom(viper.New(), path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	return cfg, nil
}

// openDatabase 初始化全局连接并迁移表结构
func openDatabase(cfg *config.Config) error {
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func migrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := openDatabase(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables on %s\n", len(models.AllModels()), cfg.Database.Driver)
			return nil
		},
	}
}
