package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 进程级日志器，InitLogger 之前也可直接使用
var Log = logrus.New()

// Fields 结构化日志字段
type Fields = logrus.Fields

// InitLogger 初始化日志器
func InitLogger(level string) {
	Log = logrus.New()

	// 设置输出格式
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// 设置输出到标准输出
	Log.SetOutput(os.Stdout)
	Log.SetLevel(ParseLevel(level))
}

// ParseLevel 将配置中的级别字符串转换为 logrus 级别，未知值按 info 处理
func ParseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// SetOutput 重定向日志输出（测试中使用）
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// WithFields 带字段的日志条目
func WithFields(fields Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// Debugf 格式化调试日志
func Debugf(format string, args ...interface{}) {
	Log.Debugf(format, args...)
}

// Info 信息日志
func Info(args ...interface{}) {
	Log.Info(args...)
}

// Infof 格式化信息日志
func Infof(format string, args ...interface{}) {
	Log.Infof(format, args...)
}

// Warnf 格式化警告日志
func Warnf(format string, args ...interface{}) {
	Log.Warnf(format, args...)
}

// Errorf 格式化错误日志
func Errorf(format string, args ...interface{}) {
	Log.Errorf(format, args...)
}

// Fatalf 格式化致命错误日志
func Fatalf(format string, args ...interface{}) {
	Log.Fatalf(format, args...)
}
