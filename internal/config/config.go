package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config 应用程序配置结构
type Config struct {
	Database   Database   `yaml:"database"`
	HTTP       HTTP       `yaml:"http"`
	Telegram   Telegram   `yaml:"telegram"`
	API        API        `yaml:"api"`
	App        App        `yaml:"app"`
	Prediction Prediction `yaml:"prediction"`
}

// Database 数据库配置
type Database struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"username"`
	Database        string        `yaml:"database"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// HTTP 服务监听配置
type HTTP struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Telegram Bot配置
type Telegram struct {
	Enabled bool          `yaml:"enabled"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// API digitctl 访问服务端时使用的客户端配置
type API struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// App 应用程序配置
type App struct {
	LogLevel       string        `yaml:"log_level"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	PushgatewayURL string        `yaml:"pushgateway_url"` // 导入计数推送地址，为空时不推送
}

// Prediction 预测参数
type Prediction struct {
	MinDigit      int    `yaml:"min_digit"`
	MaxDigit      int    `yaml:"max_digit"`
	FallbackMin   int    `yaml:"fallback_min"`
	FallbackMax   int    `yaml:"fallback_max"`
	HistoryMonths int    `yaml:"history_months"`
	RecentWindow  int    `yaml:"recent_window"`
	Algorithm     string `yaml:"algorithm"`
	Seed          int64  `yaml:"seed"`
}

// Default 返回全部字段都已填充默认值的配置
func Default() *Config {
	cfg := &Config{
		Prediction: Prediction{MaxDigit: 1000},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig 加载配置文件，随后叠加 .env 与环境变量
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse 解析YAML配置内容
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 未显式配置数字范围时沿用 0-1000
	if config.Prediction.MinDigit == 0 && config.Prediction.MaxDigit == 0 {
		config.Prediction.MaxDigit = 1000
	}

	config.applyEnv(loadDotEnv())
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadDotEnv 读取当前目录的 .env 文件，进程环境变量优先
func loadDotEnv() map[string]string {
	values, err := godotenv.Read(".env")
	if err != nil {
		values = map[string]string{}
	}

	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}
	return values
}

var envKeys = []string{
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"HTTP_ADDR", "TELEGRAM_TOKEN", "LOG_LEVEL", "PUSHGATEWAY_URL",
}

// applyEnv 用环境变量覆盖文件配置
func (c *Config) applyEnv(env map[string]string) {
	if v := env["DB_HOST"]; v != "" {
		c.Database.Host = v
	}
	if v := env["DB_PORT"]; v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := env["DB_USER"]; v != "" {
		c.Database.Username = v
	}
	if v := env["DB_PASSWORD"]; v != "" {
		c.Database.Password = v
	}
	if v := env["DB_NAME"]; v != "" {
		c.Database.Database = v
	}
	if v := env["HTTP_ADDR"]; v != "" {
		c.HTTP.Addr = v
	}
	if v := env["TELEGRAM_TOKEN"]; v != "" {
		c.Telegram.Token = v
	}
	if v := env["LOG_LEVEL"]; v != "" {
		c.App.LogLevel = v
	}
	if v := env["PUSHGATEWAY_URL"]; v != "" {
		c.App.PushgatewayURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Database == "" {
		c.Database.Database = "daily_digits"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = time.Hour
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = "0.0.0.0:3000"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}

	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 60 * time.Second
	}

	if c.API.URL == "" {
		c.API.URL = "http://127.0.0.1:3000"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = time.Second
	}

	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.CacheTTL == 0 {
		c.App.CacheTTL = 30 * time.Second
	}

	if c.Prediction.FallbackMin == 0 && c.Prediction.FallbackMax == 0 {
		c.Prediction.FallbackMin = 201
		c.Prediction.FallbackMax = 400
	}
	if c.Prediction.HistoryMonths == 0 {
		c.Prediction.HistoryMonths = 6
	}
	if c.Prediction.RecentWindow == 0 {
		c.Prediction.RecentWindow = 30
	}
	if c.Prediction.Algorithm == "" {
		c.Prediction.Algorithm = "uniform"
	}
}

// Validate 校验配置之间的约束
func (c *Config) Validate() error {
	p := c.Prediction
	if p.MinDigit < 0 || p.MinDigit > p.MaxDigit {
		return fmt.Errorf("invalid digit range: %d-%d", p.MinDigit, p.MaxDigit)
	}
	if p.FallbackMin > p.FallbackMax || p.FallbackMin < p.MinDigit || p.FallbackMax > p.MaxDigit {
		return fmt.Errorf("fallback range %d-%d must lie within digit range %d-%d",
			p.FallbackMin, p.FallbackMax, p.MinDigit, p.MaxDigit)
	}
	if p.HistoryMonths < 0 || p.RecentWindow < 0 {
		return fmt.Errorf("history_months and recent_window must not be negative")
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (d *Database) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

// GetMigrationURL 获取 golang-migrate 使用的连接地址（需要多语句支持）
func (d *Database) GetMigrationURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?multiStatements=true",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}
