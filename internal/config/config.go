// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Window  WindowConfig   `yaml:"window" toml:"window"`
	Render  RenderConfig   `yaml:"render" toml:"render"`
	Logging LoggingConfig  `yaml:"logging" toml:"logging"`
	Capture CaptureConfig  `yaml:"capture" toml:"capture"`
	Targets []TargetConfig `yaml:"targets" toml:"targets"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
}

// RenderConfig holds frame loop and shader settings.
type RenderConfig struct {
	ShaderDir string  `yaml:"shader_dir" toml:"shader_dir"` // empty uses built-in shaders
	HotReload bool    `yaml:"hot_reload" toml:"hot_reload"`
	MaxDelta  float64 `yaml:"max_delta" toml:"max_delta"` // seconds; 0 disables clamping
	ShowFPS   bool    `yaml:"show_fps" toml:"show_fps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// CaptureConfig holds screenshot settings.
type CaptureConfig struct {
	OutputDir string  `yaml:"output_dir" toml:"output_dir"`
	Prefix    string  `yaml:"prefix" toml:"prefix"`
	Scale     float64 `yaml:"scale" toml:"scale"`
	Target    string  `yaml:"target" toml:"target"` // render target to read back
}

// TargetConfig describes one render target.
type TargetConfig struct {
	Name       string        `yaml:"name" toml:"name"`
	Priority   int           `yaml:"priority" toml:"priority"`
	Shape      string        `yaml:"shape" toml:"shape"` // screen, flat or cube
	Width      int           `yaml:"width,omitempty" toml:"width,omitempty"`
	Height     int           `yaml:"height,omitempty" toml:"height,omitempty"`
	Camera     string        `yaml:"camera" toml:"camera"`
	Tags       []string      `yaml:"tags" toml:"tags"`
	Layers     []LayerConfig `yaml:"layers,omitempty" toml:"layers,omitempty"`
	ClearColor []float32     `yaml:"clear_color,omitempty" toml:"clear_color,omitempty"`
}

// LayerConfig describes one framebuffer layer of a target.
type LayerConfig struct {
	Kind       string `yaml:"kind" toml:"kind"`             // color or depth
	Permission string `yaml:"permission" toml:"permission"` // write_only or read_write
	Filter     string `yaml:"filter,omitempty" toml:"filter,omitempty"`
}

// Default returns a Config with sensible default values: a sun shadow map
// and a cube reflection map, both rendered before the on-screen target
// that samples them.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "prism",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			ShaderDir: "",
			HotReload: false,
			MaxDelta:  0.25,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Capture: CaptureConfig{
			OutputDir: "screenshots",
			Prefix:    "prism",
			Scale:     1,
			Target:    "screen",
		},
		Targets: []TargetConfig{
			{
				Name:     "shadow",
				Priority: 0,
				Shape:    "flat",
				Width:    1024,
				Height:   1024,
				Camera:   "sun-view",
				Tags:     []string{"shadow"},
				Layers: []LayerConfig{
					{Kind: "depth", Permission: "read_write", Filter: "nearest"},
				},
			},
			{
				Name:     "reflection",
				Priority: 10,
				Shape:    "cube",
				Width:    256,
				Height:   256,
				Camera:   "mirror-view",
				Tags:     []string{"reflect"},
				Layers: []LayerConfig{
					{Kind: "color", Permission: "read_write", Filter: "linear"},
					{Kind: "depth", Permission: "write_only"},
				},
				ClearColor: []float32{0.35, 0.5, 0.7, 1},
			},
			{
				Name:       "screen",
				Priority:   100,
				Shape:      "screen",
				Camera:     "main",
				Tags:       []string{"opaque", "mirror"},
				ClearColor: []float32{0.1, 0.1, 0.12, 1},
			},
		},
	}
}

// Target returns the target config with the given name.
func (c *Config) Target(name string) (TargetConfig, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return TargetConfig{}, false
}
