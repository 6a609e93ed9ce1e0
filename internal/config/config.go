package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvFiles are loaded, in order, before configuration is read. Variables
// already present in the environment win.
var EnvFiles = []string{".env.local", ".env"}

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	PerfLog  PerfLogConfig  `mapstructure:"perf_log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"` // MB
	CORSOrigins        []string      `mapstructure:"cors_origins"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// UpstreamConfig OpenAI-compatible completion and speech service
type UpstreamConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"` // GROQ_API_KEY
	ChatModel    string        `mapstructure:"chat_model"`
	SpeechModel  string        `mapstructure:"speech_model"`
	SpeechFormat string        `mapstructure:"speech_format"`
	DefaultVoice string        `mapstructure:"default_voice"`
	Timeout      time.Duration `mapstructure:"timeout"` // 请求超时
}

// PerfLogConfig 性能日志配置
type PerfLogConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// HasAPIKey reports whether an upstream credential is configured.
func (u UpstreamConfig) HasAPIKey() bool {
	return strings.TrimSpace(u.APIKey) != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_request_body_size", 4)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("upstream.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("upstream.chat_model", "llama-3.1-8b-instant")
	v.SetDefault("upstream.speech_model", "playai-tts")
	v.SetDefault("upstream.speech_format", "wav")
	v.SetDefault("upstream.default_voice", "Celeste-PlayAI")
	v.SetDefault("upstream.timeout", 60*time.Second)

	v.SetDefault("perf_log.capacity", 100)
}

// Load 加载配置文件
//
// A missing config file is not an error: defaults, .env files and
// environment variables are enough to run.
func Load(configPath string) (*Config, error) {
	for _, f := range EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认配置文件路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 设置环境变量前缀
	v.SetEnvPrefix("GROQQNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("upstream.api_key", "GROQQNA_UPSTREAM_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Note: Don't log here, logger will be initialized after config is loaded

	return &cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	// 验证服务器端口
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// 验证服务模式
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}

	// 验证日志级别
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	// 验证日志格式
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	// 验证上游配置
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream.base_url: %s", c.Upstream.BaseURL)
	}
	if c.Upstream.ChatModel == "" {
		return fmt.Errorf("upstream.chat_model is required")
	}
	if c.Upstream.SpeechModel == "" {
		return fmt.Errorf("upstream.speech_model is required")
	}

	if c.PerfLog.Capacity < 0 {
		return fmt.Errorf("invalid perf_log.capacity: %d", c.PerfLog.Capacity)
	}

	// api_key is checked per request so the server can start without one

	return nil
}

// GetServerAddr get服务器地址
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetReadTimeout get读超时时间
func (c *Config) GetReadTimeout() time.Duration {
	return c.Server.ReadTimeout
}

// GetWriteTimeout get写超时时间
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Server.WriteTimeout
}
