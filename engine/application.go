package engine

import (
	"time"
)

type ApplicationConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position x axis.
	StartPosX uint32 `toml:"pos_x"`
	// Window starting position y axis.
	StartPosY uint32 `toml:"pos_y"`
	// Window starting width.
	StartWidth uint32 `toml:"width"`
	// Window starting height.
	StartHeight uint32 `toml:"height"`
	// One of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
}

type RendererConfig struct {
	FramesInFlight uint32     `toml:"frames_in_flight"`
	Validation     bool       `toml:"validation"`
	FenceTimeout   Duration   `toml:"fence_timeout"`
	AcquireTimeout Duration   `toml:"acquire_timeout"`
	ClearColor     [4]float32 `toml:"clear_color"`
	PreferMailbox  bool       `toml:"prefer_mailbox"`
}

type AssetsConfig struct {
	ShaderDir      string `toml:"shader_dir"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	// Watch reloads the pipeline when a shader binary changes.
	Watch bool `toml:"watch"`
}

// Duration reads "10s" style strings. Zero means no limit.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
