// Package cli 实现 digitctl 命令行工具
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/logger"

	"github.com/spf13/cobra"
)

// DefaultConfigPath 未指定 --config 时读取的配置文件
const DefaultConfigPath = "configs/config.yaml"

// ValidFormats 允许的输出格式
var ValidFormats = []string{"text", "json"}

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
	Format     string
}

// NewRootCommand 创建 digitctl 根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "digitctl",
		Short: "Daily digits maintenance tool",
		Long:  "Manage the daily digits database: schema migrations, spreadsheet import, pattern analysis and API access.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", DefaultConfigPath, "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTemplateCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewPredictCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig 读取配置并初始化日志，日志写到 stderr 以免混入命令输出
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.InitLogger(cfg.App.LogLevel)
	logger.SetOutput(os.Stderr)
	return cfg, nil
}

// openDatabase 读取配置并连接数据库
func openDatabase(opts *RootOptions) (*config.Config, *database.MySQLDB, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewMySQLDB(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
