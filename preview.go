package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PreviewServer serves the embedded frontend to the LAN so the UI and its
// splash views can be checked from phones and other machines without a
// build. It doubles as the endpoint other instances poll for updates and,
// on Windows, fetch the WebView2 runtime from.
type PreviewServer struct {
	cfg   *AppConfig
	webFS fs.FS
	views *ViewLibrary

	mu      sync.Mutex
	srv     *http.Server
	running bool
	port    int

	// OnState is notified whenever the server starts or stops.
	OnState func(running bool, port int)
}

// NewPreviewServer wires the server; Start actually binds it.
func NewPreviewServer(cfg *AppConfig, webFS fs.FS, views *ViewLibrary) *PreviewServer {
	return &PreviewServer{cfg: cfg, webFS: webFS, views: views}
}

// Running reports the bound state and port.
func (p *PreviewServer) Running() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running, p.port
}

// handler builds the route table. The UI routes sit behind the passcode
// check; /ping, /version, /update and /webview2runtime stay open because
// peers call them machine-to-machine.
func (p *PreviewServer) handler() http.Handler {
	mux := http.NewServeMux()

	staticServer := http.FileServer(http.FS(p.webFS))
	mux.Handle("/", p.requirePasscode(staticServer))

	// 启动画面资源
	mux.Handle("/splash/", p.requirePasscode(http.StripPrefix("/splash/", http.HandlerFunc(p.serveSplashAsset))))

	mux.Handle("/views", p.requirePasscode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p.views.List())
	})))

	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(versionInfo{Name: p.cfg.Name, Version: AppVersion, Channel: AppChannel()})
	})

	// 自更新：把当前可执行文件发给对端
	mux.HandleFunc("/update", p.serveExecutable)

	mux.HandleFunc("/webview2runtime", serveWebView2Runtime)

	return mux
}

// requirePasscode rejects UI requests until the right code arrives via the
// X-Preview-Code header or ?code= parameter. An empty configured hash means
// open access.
func (p *PreviewServer) requirePasscode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := p.cfg.PreviewPasscode
		if hash != "" {
			code := r.Header.Get("X-Preview-Code")
			if code == "" {
				code = r.URL.Query().Get("code")
			}
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
				http.Error(w, "预览访问码错误", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (p *PreviewServer) serveSplashAsset(w http.ResponseWriter, r *http.Request) {
	f, err := p.views.Open(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "image/png")
	if _, err := io.Copy(w, f); err != nil {
		Log.Debug("画面资源传输中断", "file", r.URL.Path, "err", err)
	}
}

// serveExecutable streams this binary so LAN peers can self-update from it.
func (p *PreviewServer) serveExecutable(w http.ResponseWriter, r *http.Request) {
	exe, err := os.Executable()
	if err != nil {
		http.Error(w, "无法定位可执行文件", http.StatusInternalServerError)
		return
	}
	f, err := os.Open(exe)
	if err != nil {
		http.Error(w, "无法读取可执行文件", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if fi, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", fi.Size()))
	}
	if _, err := io.Copy(w, f); err != nil {
		Log.Info("更新下载中断", "err", err)
	}
}

// Start binds the server, retrying the configured port with backoff first
// (the port may not be released immediately after a restart), then probing
// the next ten ports.
func (p *PreviewServer) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.port = p.cfg.PreviewPort
	p.mu.Unlock()

	handler := p.handler()
	basePort := p.cfg.PreviewPort

	go func() {
		var lastErr error
		for attempt := 0; attempt < 3; attempt++ {
			if p.serveOn(basePort, handler, &lastErr) {
				return
			}
			Log.Info("预览端口被占用，等待重试", "port", basePort, "attempt", attempt+1)
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
		for offset := 1; offset <= 10; offset++ {
			tryPort := basePort + offset
			if p.serveOn(tryPort, handler, &lastErr) {
				return
			}
		}
		Log.Error("预览服务器启动失败", "port", basePort, "error", lastErr)
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		p.notify()
	}()

	Log.Info("预览服务器已启动", "ip", localIPv4(), "port", basePort)
	p.notify()
}

// serveOn blocks inside ListenAndServe until shutdown or failure. Returns
// true when this server instance owned the port (served then closed).
func (p *PreviewServer) serveOn(port int, handler http.Handler, lastErr *error) bool {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler}
	p.mu.Lock()
	p.srv = srv
	p.port = port
	p.mu.Unlock()
	p.notify()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return true
	}
	*lastErr = err
	return false
}

// Stop shuts the server down gracefully.
func (p *PreviewServer) Stop() {
	p.mu.Lock()
	srv := p.srv
	p.srv = nil
	wasRunning := p.running
	p.running = false
	p.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			Log.Warn("预览服务器关闭失败", "err", err)
		}
	}
	if wasRunning {
		Log.Info("预览服务器已关闭")
		p.notify()
	}
}

func (p *PreviewServer) notify() {
	if p.OnState != nil {
		running, port := p.Running()
		go p.OnState(running, port)
	}
}

// SetPasscode hashes and persists a new preview access code. An empty code
// removes the gate.
func (p *PreviewServer) SetPasscode(code string) error {
	if code == "" {
		p.cfg.PreviewPasscode = ""
		return SaveConfig(p.cfg)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成访问码失败: %w", err)
	}
	p.cfg.PreviewPasscode = string(hash)
	return SaveConfig(p.cfg)
}
