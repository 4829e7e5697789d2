package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assets/splash
var builtinSplashFS embed.FS

// ViewSpec describes one named splash view, loaded from a YAML file.
// Animation durations in view files are plain seconds.
type ViewSpec struct {
	Name       string         `yaml:"name"`
	Image      string         `yaml:"image"`
	Background string         `yaml:"background"`
	Spinner    *SpinnerSpec   `yaml:"spinner"`
	Animation  *AnimationSpec `yaml:"animation"`
}

// SpinnerSpec styles the activity indicator overlay.
type SpinnerSpec struct {
	Style string `yaml:"style"` // ring (default), dots, bar
	Color string `yaml:"color"`
}

// AnimationSpec describes the view's looping animation. A view without this
// section has no animation entry point.
type AnimationSpec struct {
	Kind     string  `yaml:"kind"` // pulse, breathe, slide
	Duration float64 `yaml:"duration"`
	Loop     bool    `yaml:"loop"`
}

// ViewLibrary resolves named splash views. User files under the data dir's
// splash/ folder shadow the built-in set, so a dropped-in launch.yaml
// replaces the default without a rebuild.
type ViewLibrary struct {
	userDir string
	builtin fs.FS
}

// NewViewLibrary builds the library over ~/.launchshell/splash/ and the
// embedded defaults.
func NewViewLibrary(userDir string) *ViewLibrary {
	sub, _ := fs.Sub(builtinSplashFS, "assets/splash")
	return &ViewLibrary{userDir: userDir, builtin: sub}
}

// newViewLibraryWithFS is the injectable variant used by tests.
func newViewLibraryWithFS(userDir string, builtin fs.FS) *ViewLibrary {
	return &ViewLibrary{userDir: userDir, builtin: builtin}
}

// validViewName rejects anything that could escape the splash directories.
func validViewName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	return name != "." && name != ".."
}

// Load resolves a named view. A bare <name>.png with no YAML next to it is a
// valid image-only view. Returns a NotFound splash error when neither exists.
func (l *ViewLibrary) Load(name string) (*ViewSpec, error) {
	if !validViewName(name) {
		return nil, splashNotFound(name)
	}

	if data, err := l.readFile(name + ".yaml"); err == nil {
		return l.parseSpec(name, data)
	}
	if l.fileExists(name + ".png") {
		return &ViewSpec{Name: name, Image: name + ".png"}, nil
	}
	return nil, splashNotFound(name)
}

func (l *ViewLibrary) parseSpec(name string, data []byte) (*ViewSpec, error) {
	var spec ViewSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("解析画面描述 %s.yaml 失败: %w", name, err)
	}
	spec.Name = name

	// Drop colors that will not render rather than failing the whole view.
	if spec.Background != "" {
		if _, _, _, _, err := parseHexColor(spec.Background); err != nil {
			if Log != nil {
				Log.Warn("ignoring bad background color", "view", name, "color", spec.Background)
			}
			spec.Background = ""
		}
	}
	if spec.Spinner != nil {
		if spec.Spinner.Style == "" {
			spec.Spinner.Style = "ring"
		}
		if spec.Spinner.Color == "" {
			spec.Spinner.Color = "#FFFFFF"
		}
	}
	if spec.Animation != nil && spec.Animation.Duration <= 0 {
		spec.Animation.Duration = 1.2
	}
	return &spec, nil
}

// readFile checks the user dir first, then the embedded defaults.
func (l *ViewLibrary) readFile(file string) ([]byte, error) {
	if l.userDir != "" {
		if data, err := os.ReadFile(filepath.Join(l.userDir, file)); err == nil {
			return data, nil
		}
	}
	return fs.ReadFile(l.builtin, file)
}

func (l *ViewLibrary) fileExists(file string) bool {
	if l.userDir != "" {
		if _, err := os.Stat(filepath.Join(l.userDir, file)); err == nil {
			return true
		}
	}
	if _, err := fs.Stat(l.builtin, file); err == nil {
		return true
	}
	return false
}

// Open returns a view's asset file for HTTP serving, user dir shadowing the
// built-ins like Load does.
func (l *ViewLibrary) Open(file string) (fs.File, error) {
	base := filepath.Base(file)
	if base != file || !strings.HasSuffix(base, ".png") {
		return nil, errors.New("非法的画面资源路径")
	}
	if l.userDir != "" {
		if f, err := os.Open(filepath.Join(l.userDir, base)); err == nil {
			return f, nil
		}
	}
	return l.builtin.Open(base)
}

// List returns the names of every resolvable view, sorted.
func (l *ViewLibrary) List() []string {
	seen := map[string]bool{}
	collect := func(entries []string) {
		for _, e := range entries {
			name := strings.TrimSuffix(strings.TrimSuffix(e, ".yaml"), ".png")
			if name != e && validViewName(name) {
				seen[name] = true
			}
		}
	}
	if dirents, err := fs.ReadDir(l.builtin, "."); err == nil {
		names := make([]string, 0, len(dirents))
		for _, d := range dirents {
			names = append(names, d.Name())
		}
		collect(names)
	}
	if l.userDir != "" {
		if dirents, err := os.ReadDir(l.userDir); err == nil {
			names := make([]string, 0, len(dirents))
			for _, d := range dirents {
				names = append(names, d.Name())
			}
			collect(names)
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Install copies a .yaml or .png file into the user splash dir, validating
// YAML before it lands. Returns the view name it becomes available under.
func (l *ViewLibrary) Install(path string) (string, error) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if !validViewName(name) {
		return "", fmt.Errorf("非法的画面名称: %s", base)
	}
	if ext != ".yaml" && ext != ".yml" && ext != ".png" {
		return "", fmt.Errorf("不支持的画面文件类型: %s", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取画面文件失败: %w", err)
	}
	if ext == ".yaml" || ext == ".yml" {
		if _, err := l.parseSpec(name, data); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(l.userDir, 0755); err != nil {
		return "", err
	}
	dest := name + ext
	if ext == ".yml" {
		dest = name + ".yaml"
	}
	if err := os.WriteFile(filepath.Join(l.userDir, dest), data, 0644); err != nil {
		return "", fmt.Errorf("写入画面文件失败: %w", err)
	}
	return name, nil
}

// parseHexColor parses #RGB, #RRGGBB and #RRGGBBAA color specifiers.
func parseHexColor(s string) (r, g, b, a uint8, err error) {
	a = 0xFF
	if !strings.HasPrefix(s, "#") {
		return 0, 0, 0, 0, fmt.Errorf("颜色值必须以 # 开头: %q", s)
	}
	hex := s[1:]

	nib := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}
	pair := func(i int) (uint8, bool) {
		hi, ok1 := nib(hex[i])
		lo, ok2 := nib(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}

	ok := true
	switch len(hex) {
	case 3:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			n, good := nib(hex[i])
			v[i] = n * 17
			ok = ok && good
		}
		r, g, b = v[0], v[1], v[2]
	case 6:
		var good [3]bool
		r, good[0] = pair(0)
		g, good[1] = pair(2)
		b, good[2] = pair(4)
		ok = good[0] && good[1] && good[2]
	case 8:
		var good [4]bool
		r, good[0] = pair(0)
		g, good[1] = pair(2)
		b, good[2] = pair(4)
		a, good[3] = pair(6)
		ok = good[0] && good[1] && good[2] && good[3]
	default:
		ok = false
	}
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("无法解析颜色值: %q", s)
	}
	return r, g, b, a, nil
}
