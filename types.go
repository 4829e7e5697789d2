package main

import "time"

// 应用版本
// Stable: "1.0.0", "1.1.0"  |  Test: "1.0.1-beta", "1.1.0-rc1", "2.0.0-dev"
const AppVersion = "1.0.6"

// AppName is the product name used for the window title, tray tooltip and
// desktop notifications.
const AppName = "LaunchShell"

// AppChannel returns "stable" or "test" based on the version string.
func AppChannel() string {
	for _, c := range AppVersion {
		if c == '-' {
			return "test"
		}
	}
	return "stable"
}

// splashPresentPayload结构体 - 覆盖层呈现指令
type splashPresentPayload struct {
	Source     string `json:"source"`
	Background string `json:"background,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// splashFadePayload结构体 - 透明度过渡指令
type splashFadePayload struct {
	Target     float64 `json:"target"`
	DurationMs int64   `json:"durationMs"`
	Cancel     bool    `json:"cancel,omitempty"`
}

// splashSpinnerPayload结构体 - 加载指示器指令
type splashSpinnerPayload struct {
	Show  bool   `json:"show"`
	Style string `json:"style,omitempty"`
	Color string `json:"color,omitempty"`
}

// splashAnimatePayload结构体 - 循环动画指令
type splashAnimatePayload struct {
	Start      bool   `json:"start"`
	Kind       string `json:"kind,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Loop       bool   `json:"loop,omitempty"`
}

// splashRemovePayload结构体 - 覆盖层移除指令
type splashRemovePayload struct {
	Source string `json:"source"`
}

// PreviewPeer结构体 - 局域网内发现的其他实例
type PreviewPeer struct {
	Name     string    `json:"name"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	Version  string    `json:"version"`
	Channel  string    `json:"channel"`
	LastSeen time.Time `json:"lastSeen"`
}

// updateSource结构体 - 可用更新的来源
type updateSource struct {
	PeerName string `json:"peerName"`
	BaseURL  string `json:"baseUrl"`
	Version  string `json:"version"`
	Channel  string `json:"channel"`
}

// ShellInfo结构体 - 前端诊断面板使用的应用信息
type ShellInfo struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	Channel        string `json:"channel"`
	DataDir        string `json:"dataDir"`
	LogLevel       string `json:"logLevel"`
	SplashDisabled bool   `json:"splashDisabled"`
	PreviewPort    int    `json:"previewPort"`
	PreviewRunning bool   `json:"previewRunning"`
}

// LaunchRecord结构体 - 一次进程启动的日志记录
type LaunchRecord struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Version   string    `json:"version"`
	Channel   string    `json:"channel"`
	Mode      string    `json:"mode"` // desktop, headless
}

// SplashCycleRecord结构体 - 启动画面生命周期记录
type SplashCycleRecord struct {
	ID      int64     `json:"id"`
	At      time.Time `json:"at"`
	Event   string    `json:"event"` // shown, hidden
	Source  string    `json:"source"`
	Trigger string    `json:"trigger,omitempty"`
	Launch  bool      `json:"launch"`
}

// versionInfo结构体 - /version 接口响应
type versionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Channel string `json:"channel"`
}
