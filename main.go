package main

import (
	"embed"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"syscall"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:web
var webAssets embed.FS

func main() {
	var restartDelay int
	var headless bool
	var showHelp bool

	flag.IntVar(&restartDelay, "restart-delay", 0, "重启时等待旧进程退出的秒数")
	flag.BoolVar(&headless, "headless", false, "仅运行局域网预览服务器，不打开窗口")
	flag.BoolVar(&showHelp, "help", false, "显示此帮助信息")
	flag.Parse()

	if showHelp {
		fmt.Println("LaunchShell - 桌面应用外壳与启动画面控制器")
		fmt.Println()
		fmt.Println("用法:")
		fmt.Printf("  %s [选项]\n", os.Args[0])
		fmt.Println()
		fmt.Println("选项:")
		fmt.Println("  -headless         仅运行局域网预览服务器，不打开窗口")
		fmt.Println("  -restart-delay N  重启时等待旧进程退出的秒数")
		fmt.Println("  -help             显示此帮助信息")
		fmt.Println()
		fmt.Println("环境变量:")
		fmt.Println("  LAUNCHSHELL_DATA_DIR     数据目录 (默认 ~/.launchshell)")
		fmt.Println("  LAUNCHSHELL_LOG_LEVEL    日志级别 (debug/info/warn/error)")
		fmt.Println("  LAUNCHSHELL_PREVIEW      是否启用预览服务器 (true/false)")
		fmt.Println("  LAUNCHSHELL_PREVIEW_PORT 预览服务器端口 (默认 8090)")
		return
	}

	cfg := LoadConfig()

	logFile, err := InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("日志初始化失败: %v\n", err)
		Log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if logFile != nil {
		defer logFile.Close()
	}

	Log.Info("LaunchShell 启动", "version", AppVersion, "channel", AppChannel(), "pid", os.Getpid())

	cleanup := ensureSingleInstance(restartDelay)
	defer cleanup()

	// Remove .old binaries and restart scripts from a previous self-update.
	cleanupOldExecutable()

	journal, err := OpenJournal(DataPath("journal.db"))
	if err != nil {
		Log.Warn("启动记录不可用", "err", err)
		journal = nil
	}

	mode := "desktop"
	if headless {
		mode = "headless"
	}
	if journal != nil {
		if _, err := journal.RecordLaunch(mode); err != nil {
			Log.Warn("写入启动记录失败", "err", err)
		}
	}

	views := NewViewLibrary(SplashDir())
	provider := newOverlayViewProvider(views)

	webFS, err := fs.Sub(webAssets, "web")
	if err != nil {
		Log.Error("前端资源不可用", "error", err)
		return
	}

	preview := NewPreviewServer(cfg, webFS, views)
	discovery := NewLanDiscovery(cfg.Name, cfg.PreviewPort)
	updater := NewUpdater(discovery, cfg)

	app := NewShellApp(cfg, views, provider, journal, preview, discovery, updater)
	app.splash = NewSplashController(provider, func() *SplashSettings { return &cfg.Splash }, app.splashListener())

	if headless {
		runHeadless(cfg, preview, discovery, updater, journal)
		return
	}

	browserPath := ensureWebView2()

	err = wails.Run(&options.App{
		Title:     AppName,
		Width:     cfg.WindowWidth,
		Height:    cfg.WindowHeight,
		MinWidth:  900,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets:  webFS,
			Handler: splashAssetHandler(views),
		},
		// The window paints the launch view's backdrop before the DOM (and
		// with it the HTML splash) exists, so a cold start never flashes
		// white.
		BackgroundColour:  launchBackground(views),
		HideWindowOnClose: true,
		OnStartup:         app.startup,
		OnDomReady:        app.onDomReady,
		OnShutdown:        app.shutdown,
		Bind: []interface{}{
			app,
		},
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop:     true,
			DisableWebViewDrop: true,
		},
		Windows: &windows.Options{
			WebviewUserDataPath: DataPath("webview2-data"),
			WebviewBrowserPath:  browserPath,
		},
	})
	if err != nil {
		Log.Error("窗口运行失败", "error", err)
	}
}

// launchBackground derives the pre-DOM window colour from the launch view.
func launchBackground(views *ViewLibrary) *options.RGBA {
	bg := &options.RGBA{R: 24, G: 26, B: 32, A: 255}
	spec, err := views.Load(DefaultSplashSource)
	if err != nil || spec.Background == "" {
		return bg
	}
	r, g, b, a, err := parseHexColor(spec.Background)
	if err != nil {
		return bg
	}
	return &options.RGBA{R: r, G: g, B: b, A: a}
}

// splashAssetHandler serves splash view images to the webview. Requests the
// embedded frontend cannot answer fall through to this handler.
func splashAssetHandler(views *ViewLibrary) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/splash/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		f, err := views.Open(strings.TrimPrefix(r.URL.Path, prefix))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "image/png")
		io.Copy(w, f)
	})
}

// ensureWebView2 makes sure a browser runtime exists before the window
// opens. Returns the fixed-runtime path when a local copy next to the exe
// is (or becomes) available, empty when the system runtime serves.
func ensureWebView2() string {
	if goruntime.GOOS != "windows" {
		return ""
	}

	localDir := ""
	if exePath, err := os.Executable(); err == nil {
		localDir = filepath.Join(filepath.Dir(exePath), "WebView2Runtime")
		if info, err := os.Stat(localDir); err == nil && info.IsDir() {
			Log.Info("使用本地 WebView2 运行时", "dir", localDir)
			return localDir
		}
	}

	if isWebView2SystemInstalled() {
		return ""
	}

	// No runtime anywhere: try pulling one from LAN peers behind a native
	// progress window. The HTML splash cannot exist yet.
	Log.Info("未检测到 WebView2 运行时，尝试从局域网获取")
	splash := NewBootstrapSplash()
	splash.Show()

	if bootstrapWebView2(splash) {
		splash.Close()
		return localDir
	}

	splash.Close()
	splash.ShowError("未找到 WebView2 运行时，且无法从局域网获取。\n请安装 Microsoft Edge WebView2 运行时后重新启动。")
	Log.Error("WebView2 运行时不可用，退出")
	os.Exit(1)
	return ""
}

// runHeadless keeps the LAN services alive without a window, so a build box
// can feed previews, updates and the WebView2 runtime to the whole office.
func runHeadless(cfg *AppConfig, preview *PreviewServer, discovery *LanDiscovery, updater *Updater, journal *LaunchJournal) {
	preview.Start()
	discovery.Start(true)
	updater.Start()

	Log.Info("无界面模式运行中", "previewPort", cfg.PreviewPort, "ip", localIPv4())
	fmt.Printf("LaunchShell 预览服务器: http://%s:%d\n", localIPv4(), cfg.PreviewPort)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	Log.Info("收到退出信号")
	updater.Stop()
	discovery.Stop()
	preview.Stop()
	if journal != nil {
		journal.Close()
	}
}
