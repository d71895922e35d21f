// Package logger 基于zap的结构化日志
//
// 设计说明：
// 1. debug模式使用Development配置（彩色、人类可读）
// 2. release模式使用Production配置（JSON、带采样）
// 3. 通过InitialFields附加service字段，便于日志聚合检索
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建zap Logger
// mode: debug | release | test（与server.mode一致）
func New(serviceName, mode string) (*zap.Logger, error) {
	var cfg zap.Config

	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.InitialFields = map[string]interface{}{
		"service": serviceName,
	}

	return cfg.Build()
}

// NewNop 创建空Logger（测试用）
func NewNop() *zap.Logger {
	return zap.NewNop()
}
