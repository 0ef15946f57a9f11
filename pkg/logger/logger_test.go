package logger

import (
	"testing"

	"mesem-yoklama/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format=%s 初始化失败: %v", format, err)
		}
		if l == nil {
			t.Fatalf("format=%s 返回 nil logger", format)
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "verbose", Format: "json"}); err == nil {
		t.Error("无效日志级别应返回错误")
	}
}
