// Package log 是对 zap SugaredLogger 的全局封装。
package log

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init 之前使用 no-op logger，保证测试和库代码无需初始化即可调用。
var sugar = zap.NewNop().Sugar()

// Init 根据级别、格式（json / console）和可选的输出目录初始化全局 logger。
func Init(level, format, outputPath string) {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	var zapConfig zap.Config
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.Encoding = "console"
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Encoding = "json"
	}
	zapConfig.Level = logLevel
	zapConfig.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		_ = os.MkdirAll(outputPath, os.ModePerm)
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, filepath.Join(outputPath, "workbench.log"))
	}

	logger, err := zapConfig.Build()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

// Replace 替换全局 logger，返回恢复函数（主要用于测试中捕获日志）。
func Replace(logger *zap.Logger) func() {
	prev := sugar
	sugar = logger.Sugar()
	return func() { sugar = prev }
}

func Info(msg string) {
	sugar.Info(msg)
}

func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow 使用键值对记录一条 info 级别的结构化日志。
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	sugar.Warnw(msg, keysAndValues...)
}

// Error 记录一条 error 级别的日志，并附带 error 信息
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	sugar.Errorw(msg, keysAndValues...)
}

// Fatal 记录 fatal 日志后退出程序
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

// Sync 刷新缓冲区，程序退出前调用。
func Sync() {
	_ = sugar.Sync()
}
