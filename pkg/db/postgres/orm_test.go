package postgres

import (
	"testing"

	"client_registry/internal/config"

	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"ERROR":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"unknown": gormlogger.Warn,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewGormConnectionUnknownDriver(t *testing.T) {
	_, err := NewGormConnection(config.DBConfig{Driver: "mysql"}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("ожидалась ошибка для неизвестного драйвера")
	}
}
