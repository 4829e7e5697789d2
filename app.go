package main

import (
	"context"
	_ "embed"
	"fmt"
	"os/exec"
	goruntime "runtime"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/ra1phdd/systray-on-wails"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed build/appicon.png
var appIconPNG []byte

// ShellApp is the Wails application binding struct.
// Methods on this struct are exposed to the frontend via window.go.main.ShellApp.
type ShellApp struct {
	ctx context.Context

	cfg       *AppConfig
	views     *ViewLibrary
	provider  *overlayViewProvider
	splash    *SplashController
	journal   *LaunchJournal
	preview   *PreviewServer
	discovery *LanDiscovery
	updater   *Updater
}

// NewShellApp creates the binding struct. The splash controller is attached
// afterwards because its lifecycle listener points back at this struct.
func NewShellApp(cfg *AppConfig, views *ViewLibrary, provider *overlayViewProvider, journal *LaunchJournal, preview *PreviewServer, discovery *LanDiscovery, updater *Updater) *ShellApp {
	return &ShellApp{
		cfg:       cfg,
		views:     views,
		provider:  provider,
		journal:   journal,
		preview:   preview,
		discovery: discovery,
		updater:   updater,
	}
}

// splashListener returns the lifecycle callbacks the controller notifies.
// They forward each transition to the frontend and the launch journal.
func (a *ShellApp) splashListener() *SplashListener {
	return &SplashListener{
		OnShown: func(ev SplashShownEvent) {
			if a.ctx != nil {
				wailsRuntime.EventsEmit(a.ctx, EventSplashShown, ev)
			}
			if a.journal != nil {
				a.journal.RecordSplashEvent(ev.At, "shown", ev.Source, "", ev.Launch)
			}
		},
		OnHidden: func(ev SplashHiddenEvent) {
			if a.ctx != nil {
				wailsRuntime.EventsEmit(a.ctx, EventSplashHidden, ev)
			}
			if a.journal != nil {
				a.journal.RecordSplashEvent(ev.At, "hidden", ev.Source, ev.Trigger, false)
			}
		},
	}
}

// startup is called when the Wails app starts.
func (a *ShellApp) startup(ctx context.Context) {
	tStartup := time.Now()
	Log.Debug("Wails OnStartup 回调开始")
	a.ctx = ctx

	beeep.AppName = AppName

	// The overlay provider can only emit events once the runtime context
	// exists; splash calls made before this point fail with NotFound.
	a.provider.bind(ctx)

	a.preview.OnState = func(running bool, port int) {
		if a.ctx != nil {
			wailsRuntime.EventsEmit(a.ctx, EventPreviewState, map[string]interface{}{
				"running": running,
				"port":    port,
				"url":     fmt.Sprintf("http://%s:%d", localIPv4(), port),
			})
		}
	}
	a.discovery.OnPeers = func(peers []PreviewPeer) {
		if a.ctx != nil {
			wailsRuntime.EventsEmit(a.ctx, EventPreviewPeers, peers)
		}
	}
	a.updater.OnAvailable = func(source updateSource) {
		if a.ctx != nil {
			wailsRuntime.EventsEmit(a.ctx, EventUpdateAvailable, source)
		}
		beeep.Notify(AppName, fmt.Sprintf("发现新版本 %s（来自 %s）", source.Version, source.PeerName), "")
	}
	a.updater.OnProgress = func(downloaded, total int64) {
		if a.ctx != nil {
			wailsRuntime.EventsEmit(a.ctx, EventUpdateProgress, map[string]interface{}{
				"downloaded": downloaded,
				"total":      total,
			})
		}
	}
	a.updater.OnDone = func(status, errMsg string) {
		if a.ctx == nil {
			return
		}
		if status == "completed" {
			wailsRuntime.EventsEmit(a.ctx, EventUpdateReady, nil)
			beeep.Notify(AppName, "新版本已就绪，重启后生效", "")
		} else {
			wailsRuntime.EventsEmit(a.ctx, EventUpdateCleared, errMsg)
		}
	}

	// Dropping .yaml/.png files onto the window installs them as splash views.
	wailsRuntime.OnFileDrop(ctx, func(x, y int, paths []string) {
		installed := 0
		for _, p := range paths {
			if _, err := a.views.Install(p); err != nil {
				Log.Warn("拖放安装启动画面失败", "path", p, "err", err)
				continue
			}
			installed++
		}
		if installed > 0 {
			wailsRuntime.EventsEmit(a.ctx, EventViewsChanged, a.views.List())
		}
	})
	Log.Debug("Wails OnStartup: 事件回调注册完成", "耗时", time.Since(tStartup))

	a.initSystray()

	// Preview server only binds when enabled; discovery always browses so
	// updates can still be pulled from peers.
	if a.cfg.PreviewEnabled {
		a.preview.Start()
	}
	a.discovery.Start(a.cfg.PreviewEnabled)
	a.updater.Start()

	Log.Debug("Wails OnStartup 回调结束", "总耗时", time.Since(tStartup))
}

// onDomReady is called when the WebView2 DOM is fully loaded. The launch
// splash starts here: the overlay shim exists from this point on.
func (a *ShellApp) onDomReady(ctx context.Context) {
	Log.Debug("Wails OnDomReady 回调触发")
	setWindowIcon(AppChannel())

	go func() {
		if err := a.splash.ShowLaunch(); err != nil {
			Log.Warn("启动画面未能显示", "err", err)
		}
	}()
}

// shutdown is called when the Wails app is closing.
func (a *ShellApp) shutdown(ctx context.Context) {
	// Save window size
	w, h := wailsRuntime.WindowGetSize(ctx)
	if w > 0 && h > 0 {
		a.cfg.WindowWidth = w
		a.cfg.WindowHeight = h
	}

	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("保存配置失败", "error", err)
	}

	a.splash.Stop()
	a.updater.Stop()
	a.discovery.Stop()
	a.preview.Stop()
	if a.journal != nil {
		a.journal.Close()
	}

	systray.Quit()
}

// showWindow brings the application window to the foreground.
func (a *ShellApp) showWindow() {
	wailsRuntime.Show(a.ctx)
	wailsRuntime.WindowUnminimise(a.ctx)
}

// toggleWindow shows the window if hidden/minimized, hides it if visible.
func (a *ShellApp) toggleWindow() {
	visible, minimized := isAppWindowVisible()
	if visible && !minimized {
		wailsRuntime.Hide(a.ctx)
	} else {
		a.showWindow()
	}
}

// initSystray sets up the system tray icon and menu.
// Right-click: context menu. Double-click: toggle window visibility.
func (a *ShellApp) initSystray() {
	systray.Register(func() {
		systray.SetIcon(trayIcon())
		systray.SetTooltip(fmt.Sprintf("%s v%s [%s]", AppName, AppVersion, AppChannel()))

		mShow := systray.AddMenuItem("打开界面", "打开主窗口")
		mCheck := systray.AddMenuItem("检查更新", "立即扫描局域网里的新版本")
		mQuit := systray.AddMenuItem("退出", "退出应用")

		// Subclass the systray window to support double-click toggle
		// and restrict left-click from showing the menu (right-click only).
		subclassSystray(a.toggleWindow)

		go func() {
			for {
				select {
				case <-mShow.ClickedCh:
					a.showWindow()
				case <-mCheck.ClickedCh:
					go func() {
						if a.updater.CheckOnce() == nil {
							beeep.Notify(AppName, "当前已是最新版本", "")
						}
					}()
				case <-mQuit.ClickedCh:
					wailsRuntime.Quit(a.ctx)
					return
				}
			}
		}()
	}, nil)
}

// ShowSplash presents a splash view. A nil opts shows the default view with
// persisted settings; the returned error carries a stable code string.
func (a *ShellApp) ShowSplash(opts *SplashOptions) error {
	return a.splash.Show(opts)
}

// HideSplash dismisses the current splash view.
func (a *ShellApp) HideSplash(opts *SplashOptions) error {
	return a.splash.Hide(opts)
}

// AnimateSplash starts the looping animation on the visible splash view.
func (a *ShellApp) AnimateSplash() error {
	return a.splash.Animate()
}

// GetSplashState reports the controller's current phase and flags.
func (a *ShellApp) GetSplashState() SplashSnapshot {
	return a.splash.State()
}

// GetSplashSettings returns the persisted splash defaults.
func (a *ShellApp) GetSplashSettings() SplashSettings {
	return a.cfg.Splash
}

// SaveSplashSettings persists new splash defaults. They apply from the next
// show call on; whether the subsystem is enabled stays fixed until restart.
func (a *ShellApp) SaveSplashSettings(s SplashSettings) error {
	a.cfg.Splash = s
	return SaveConfig(a.cfg)
}

// ListSplashViews returns the installable splash view names.
func (a *ShellApp) ListSplashViews() []string {
	return a.views.List()
}

// InstallSplashView asks for a view file and copies it into the user splash
// directory. Returns the installed view name.
func (a *ShellApp) InstallSplashView() (string, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "选择启动画面文件",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "启动画面文件", Pattern: "*.yaml;*.yml;*.png"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}

	name, err := a.views.Install(path)
	if err != nil {
		return "", err
	}
	wailsRuntime.EventsEmit(a.ctx, EventViewsChanged, a.views.List())
	return name, nil
}

// GetLaunchHistory returns recent process launches from the journal.
func (a *ShellApp) GetLaunchHistory(limit int) []LaunchRecord {
	if a.journal == nil {
		return nil
	}
	records, err := a.journal.RecentLaunches(limit)
	if err != nil {
		Log.Warn("读取启动历史失败", "err", err)
		return nil
	}
	return records
}

// GetSplashHistory returns recent splash lifecycle records from the journal.
func (a *ShellApp) GetSplashHistory(limit int) []SplashCycleRecord {
	if a.journal == nil {
		return nil
	}
	records, err := a.journal.RecentSplashCycles(limit)
	if err != nil {
		Log.Warn("读取启动画面历史失败", "err", err)
		return nil
	}
	return records
}

// GetAppInfo returns application info for the frontend.
func (a *ShellApp) GetAppInfo() ShellInfo {
	previewRunning, previewPort := a.preview.Running()
	return ShellInfo{
		Name:           a.cfg.Name,
		Version:        AppVersion,
		Channel:        AppChannel(),
		DataDir:        AppDataDir(),
		LogLevel:       GetLogLevel(),
		SplashDisabled: a.splash.Disabled(),
		PreviewPort:    previewPort,
		PreviewRunning: previewRunning,
	}
}

// SetAppLogLevel changes the log level at runtime and persists it.
func (a *ShellApp) SetAppLogLevel(level string) {
	SetLogLevel(level)
	a.cfg.LogLevel = level
	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("保存配置失败", "error", err)
	}
}

// GetAppLogLevel returns the active log level.
func (a *ShellApp) GetAppLogLevel() string {
	return GetLogLevel()
}

// StartPreview binds the LAN preview server.
func (a *ShellApp) StartPreview() {
	a.cfg.PreviewEnabled = true
	SaveConfig(a.cfg)
	a.preview.Start()
}

// StopPreview shuts the LAN preview server down.
func (a *ShellApp) StopPreview() {
	a.cfg.PreviewEnabled = false
	SaveConfig(a.cfg)
	a.preview.Stop()
}

// SetPreviewPasscode sets (or clears) the preview access code.
func (a *ShellApp) SetPreviewPasscode(code string) error {
	return a.preview.SetPasscode(code)
}

// GetPeers returns the LaunchShell instances discovered on the LAN.
func (a *ShellApp) GetPeers() []PreviewPeer {
	return a.discovery.Peers()
}

// CheckForUpdates scans peers now and reports the best available version.
func (a *ShellApp) CheckForUpdates() map[string]interface{} {
	source := a.updater.CheckOnce()
	if source == nil {
		return map[string]interface{}{"available": false}
	}
	return map[string]interface{}{
		"available": true,
		"version":   source.Version,
		"channel":   source.Channel,
		"peerName":  source.PeerName,
	}
}

// DownloadUpdate pulls the newest version from a peer in the background.
// Progress and completion arrive as events.
func (a *ShellApp) DownloadUpdate() {
	go a.updater.Perform()
}

// GetUpdateStatus reports the updater's download state.
func (a *ShellApp) GetUpdateStatus() map[string]interface{} {
	status, lastErr := a.updater.Status()
	out := map[string]interface{}{"status": status, "error": lastErr}
	if source := a.updater.Available(); source != nil {
		out["version"] = source.Version
		out["peerName"] = source.PeerName
	}
	return out
}

// RestartToUpdate relaunches the app on the freshly installed version.
func (a *ShellApp) RestartToUpdate() error {
	return restartApplication(func() {
		SaveConfig(a.cfg)
		a.updater.Stop()
		a.discovery.Stop()
		a.preview.Stop()
		if a.journal != nil {
			a.journal.Close()
		}
	})
}

// OpenDataDir reveals the application data directory in the file manager.
func (a *ShellApp) OpenDataDir() error {
	return openFolder(AppDataDir())
}

// OpenLogDir reveals the log directory in the file manager.
func (a *ShellApp) OpenLogDir() error {
	return openFolder(LogDir())
}

// SaveWindowSize persists the current window dimensions.
func (a *ShellApp) SaveWindowSize() {
	w, h := wailsRuntime.WindowGetSize(a.ctx)
	if w > 0 && h > 0 {
		a.cfg.WindowWidth = w
		a.cfg.WindowHeight = h
		SaveConfig(a.cfg)
	}
}

// SetWindowTheme switches the window title bar between dark and light.
func (a *ShellApp) SetWindowTheme(theme string) {
	if theme == "light" {
		wailsRuntime.WindowSetLightTheme(a.ctx)
	} else {
		wailsRuntime.WindowSetDarkTheme(a.ctx)
	}
}

// openFolder opens the system file manager at the given directory.
func openFolder(dir string) error {
	switch goruntime.GOOS {
	case "windows":
		return exec.Command("explorer", dir).Start()
	case "darwin":
		return exec.Command("open", dir).Start()
	case "linux":
		return exec.Command("xdg-open", dir).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goruntime.GOOS)
	}
}
