package main

import (
	"os"
	"testing"
)

// TestDefaultConfig 测试配置默认值
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != AppName {
		t.Errorf("Name = %q, want %q", cfg.Name, AppName)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
	if cfg.WindowWidth != 1100 || cfg.WindowHeight != 720 {
		t.Errorf("window = %dx%d, want 1100x720", cfg.WindowWidth, cfg.WindowHeight)
	}
	if cfg.PreviewPort != 8090 {
		t.Errorf("PreviewPort = %d, want 8090", cfg.PreviewPort)
	}
	if cfg.PreviewEnabled {
		t.Error("PreviewEnabled = true, want false by default")
	}
}

// TestIsUpdateFromLAN 测试局域网更新开关的三态
func TestIsUpdateFromLAN(t *testing.T) {
	cfg := &AppConfig{}
	if !cfg.IsUpdateFromLAN() {
		t.Error("unset UpdateFromLAN should default to on")
	}

	off := false
	cfg.UpdateFromLAN = &off
	if cfg.IsUpdateFromLAN() {
		t.Error("explicit false should switch LAN updates off")
	}

	on := true
	cfg.UpdateFromLAN = &on
	if !cfg.IsUpdateFromLAN() {
		t.Error("explicit true should switch LAN updates on")
	}
}

// TestApplyEnvOverrides 测试环境变量覆盖配置文件
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LAUNCHSHELL_NAME", "测试节点")
	t.Setenv("LAUNCHSHELL_LOG_LEVEL", "debug")
	t.Setenv("LAUNCHSHELL_PREVIEW", "true")
	t.Setenv("LAUNCHSHELL_PREVIEW_PORT", "9100")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Name != "测试节点" {
		t.Errorf("Name = %q, want env override", cfg.Name)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.PreviewEnabled {
		t.Error("PreviewEnabled = false, want true from env")
	}
	if cfg.PreviewPort != 9100 {
		t.Errorf("PreviewPort = %d, want 9100", cfg.PreviewPort)
	}
}

// TestApplyEnvOverridesLeavesUnsetFields 测试未设置的环境变量不改动配置
func TestApplyEnvOverridesLeavesUnsetFields(t *testing.T) {
	for _, key := range []string{"LAUNCHSHELL_NAME", "LAUNCHSHELL_LOG_LEVEL", "LAUNCHSHELL_PREVIEW", "LAUNCHSHELL_PREVIEW_PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := DefaultConfig()
	cfg.Name = "现有名字"
	applyEnvOverrides(cfg)

	if cfg.Name != "现有名字" {
		t.Errorf("Name = %q, want untouched", cfg.Name)
	}
	if cfg.PreviewPort != 8090 {
		t.Errorf("PreviewPort = %d, want untouched 8090", cfg.PreviewPort)
	}
}
