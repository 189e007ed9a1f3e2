package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Download  DownloadConfig  `yaml:"download"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"15m"`
	RateLimit    int           `yaml:"rate_limit" envconfig:"SERVER_RATE_LIMIT" default:"30"`
}

// StorageConfig holds filesystem storage configuration.
type StorageConfig struct {
	// WorkPath is the root for per-job temporary media directories.
	WorkPath string `yaml:"work_path" envconfig:"WORK_PATH" default:"videos"`
	// DataPath holds durable state (job history, session store).
	DataPath string `yaml:"data_path" envconfig:"DATA_PATH" default:"data"`
}

// ExtractorConfig holds TikTok extraction API configuration.
type ExtractorConfig struct {
	BaseURL   string        `yaml:"base_url" envconfig:"EXTRACTOR_BASE_URL" default:"https://www.tikwm.com/api/"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"EXTRACTOR_TIMEOUT" default:"30s"`
	UserAgent string        `yaml:"user_agent" envconfig:"EXTRACTOR_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	Timeout         time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"10m"`
	UserAgent       string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	DefaultFilename string        `yaml:"default_filename" envconfig:"DOWNLOAD_DEFAULT_FILENAME" default:"video.mp4"`
}

// TranscodeConfig holds ffmpeg configuration.
type TranscodeConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path" envconfig:"FFMPEG_PATH"`
	FFprobePath string `yaml:"ffprobe_path" envconfig:"FFPROBE_PATH"`
	VideoCodec  string `yaml:"video_codec" envconfig:"TRANSCODE_VIDEO_CODEC" default:"libx264"`
	AudioCodec  string `yaml:"audio_codec" envconfig:"TRANSCODE_AUDIO_CODEC" default:"aac"`
}

// PipelineConfig holds per-request pipeline configuration.
type PipelineConfig struct {
	// Timeout bounds one full pipeline run. 0 disables the deadline and a
	// hung stage will hold the HTTP connection open.
	Timeout time.Duration `yaml:"timeout" envconfig:"PIPELINE_TIMEOUT" default:"10m"`
	// MaxConcurrent caps simultaneous pipeline runs. 0 means unbounded.
	MaxConcurrent int `yaml:"max_concurrent" envconfig:"PIPELINE_MAX_CONCURRENT" default:"0"`
}

// WhatsAppConfig holds messaging session configuration.
type WhatsAppConfig struct {
	// DBPath overrides the session store location. Defaults to
	// <data_path>/whatsapp.db when empty.
	DBPath    string `yaml:"db_path" envconfig:"WHATSAPP_DB_PATH"`
	DisplayQR bool   `yaml:"display_qr" envconfig:"WHATSAPP_DISPLAY_QR" default:"true"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.Storage.WorkPath == "" {
		return fmt.Errorf("WORK_PATH is required")
	}
	if c.Storage.DataPath == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if c.Extractor.BaseURL == "" {
		return fmt.Errorf("EXTRACTOR_BASE_URL is required")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionDBPath returns the WhatsApp session store path.
func (c *Config) SessionDBPath() string {
	if c.WhatsApp.DBPath != "" {
		return c.WhatsApp.DBPath
	}
	return c.Storage.DataPath + "/whatsapp.db"
}

// JobsDBPath returns the job history database path.
func (c *Config) JobsDBPath() string {
	return c.Storage.DataPath + "/jobs.db"
}
