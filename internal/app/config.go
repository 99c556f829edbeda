package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/dlp-generator/internal/platform/envutil"
	"github.com/yungbote/dlp-generator/internal/platform/gcp"
	"github.com/yungbote/dlp-generator/internal/platform/imagegen"
	"github.com/yungbote/dlp-generator/internal/platform/openai"
)

const (
	configPathEnv     = "DLP_CONFIG_PATH"
	defaultConfigPath = "config/config.yaml"
)

// Duration accepts "90s"-style strings or a bare number of seconds in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		*d = Duration(v)
		return nil
	}
	var secs int
	if err := node.Decode(&secs); err != nil {
		return fmt.Errorf("duration %q: want e.g. \"30s\" or a number of seconds", raw)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type HTTPConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	MaxRequestBytes int64    `yaml:"max_request_bytes"`
	MaxImageBytes   int64    `yaml:"max_image_bytes"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	API         string   `yaml:"api"`
	Timeout     Duration `yaml:"timeout"`
	Temperature *float64 `yaml:"temperature"`
}

type ImageConfig struct {
	Enabled bool     `yaml:"enabled"`
	BaseURL string   `yaml:"base_url"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Timeout Duration `yaml:"timeout"`
}

type ArchiveConfig struct {
	Bucket       string   `yaml:"bucket"`
	Prefix       string   `yaml:"prefix"`
	Mode         string   `yaml:"mode"`
	EmulatorHost string   `yaml:"emulator_host"`
	Credentials  string   `yaml:"credentials"`
	Timeout      Duration `yaml:"timeout"`
}

type OtelSettings struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Env            string        `yaml:"env"`
	LogMode        string        `yaml:"log_mode"`
	Version        string        `yaml:"version"`
	MaxConcurrent  int64         `yaml:"max_concurrent_generations"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	HTTP           HTTPConfig    `yaml:"http"`
	LLM            LLMConfig     `yaml:"llm"`
	Image          ImageConfig   `yaml:"image"`
	Archive        ArchiveConfig `yaml:"archive"`
	Otel           OtelSettings  `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Env:            "development",
		LogMode:        "development",
		Version:        "dev",
		MaxConcurrent:  4,
		MetricsEnabled: true,
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(180 * time.Second),
			MaxRequestBytes: 12 << 20,
			MaxImageBytes:   10 << 20,
		},
		LLM: LLMConfig{
			BaseURL: openai.DefaultBaseURL,
			Model:   openai.DefaultModel,
			API:     openai.APIResponses,
			Timeout: Duration(120 * time.Second),
		},
		Image: ImageConfig{
			Enabled: true,
			BaseURL: imagegen.DefaultBaseURL,
			Width:   imagegen.DefaultWidth,
			Height:  imagegen.DefaultHeight,
			Timeout: Duration(imagegen.DefaultTimeout),
		},
		Archive: ArchiveConfig{
			Timeout: Duration(30 * time.Second),
		},
		Otel: OtelSettings{
			ServiceName: "dlp-generator",
			SampleRatio: 1,
		},
	}
}

// LoadConfig layers defaults, the YAML file and environment overrides, then
// validates the result.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	path := envutil.String(configPathEnv, "")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := loadYAML(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("APP_ENV", cfg.Env)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)
	cfg.MaxConcurrent = int64(envutil.Int("MAX_CONCURRENT_GENERATIONS", int(cfg.MaxConcurrent)))
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.ReadTimeout = Duration(envutil.Seconds("HTTP_READ_TIMEOUT_SECONDS", cfg.HTTP.ReadTimeout.Std()))
	cfg.HTTP.WriteTimeout = Duration(envutil.Seconds("HTTP_WRITE_TIMEOUT_SECONDS", cfg.HTTP.WriteTimeout.Std()))
	cfg.HTTP.MaxRequestBytes = int64(envutil.Int("HTTP_MAX_REQUEST_BYTES", int(cfg.HTTP.MaxRequestBytes)))
	cfg.HTTP.MaxImageBytes = int64(envutil.Int("HTTP_MAX_IMAGE_BYTES", int(cfg.HTTP.MaxImageBytes)))
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.HTTP.CORSOrigins)

	cfg.LLM.BaseURL = envutil.String("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = envutil.String("LLM_API_KEY", envutil.String("OPENAI_API_KEY", cfg.LLM.APIKey))
	cfg.LLM.Model = envutil.String("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.API = envutil.String("LLM_API", cfg.LLM.API)
	cfg.LLM.Timeout = Duration(envutil.Seconds("LLM_TIMEOUT_SECONDS", cfg.LLM.Timeout.Std()))

	cfg.Image.Enabled = envutil.Bool("IMAGE_FETCH_ENABLED", cfg.Image.Enabled)
	cfg.Image.BaseURL = envutil.String("IMAGE_BASE_URL", cfg.Image.BaseURL)
	cfg.Image.Width = envutil.Int("IMAGE_WIDTH", cfg.Image.Width)
	cfg.Image.Height = envutil.Int("IMAGE_HEIGHT", cfg.Image.Height)
	cfg.Image.Timeout = Duration(envutil.Seconds("IMAGE_TIMEOUT_SECONDS", cfg.Image.Timeout.Std()))

	cfg.Archive.Bucket = envutil.String("DLP_ARCHIVE_BUCKET", cfg.Archive.Bucket)
	cfg.Archive.Prefix = envutil.String("DLP_ARCHIVE_PREFIX", cfg.Archive.Prefix)
	cfg.Archive.Mode = envutil.String("OBJECT_STORAGE_MODE", cfg.Archive.Mode)
	cfg.Archive.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Archive.EmulatorHost)
	cfg.Archive.Credentials = envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", cfg.Archive.Credentials)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_TRACES_SAMPLER_ARG", cfg.Otel.SampleRatio)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("http.max_image_bytes must be positive"))
	}
	if c.HTTP.MaxRequestBytes > 0 && c.HTTP.MaxRequestBytes < c.HTTP.MaxImageBytes {
		errs = append(errs, fmt.Errorf("http.max_request_bytes (%d) is smaller than http.max_image_bytes (%d)", c.HTTP.MaxRequestBytes, c.HTTP.MaxImageBytes))
	}
	switch c.LLM.API {
	case openai.APIResponses, openai.APIChat:
	default:
		errs = append(errs, fmt.Errorf("llm.api %q: want %q or %q", c.LLM.API, openai.APIResponses, openai.APIChat))
	}
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		errs = append(errs, fmt.Errorf("image size %dx%d must be positive", c.Image.Width, c.Image.Height))
	}
	if c.MaxConcurrent < 0 {
		errs = append(errs, errors.New("max_concurrent_generations must not be negative"))
	}
	if c.Archive.Bucket != "" {
		mode, err := gcp.ResolveMode(c.Archive.Mode, c.Archive.EmulatorHost)
		if err == nil {
			err = c.storageConfig(mode).Validate()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HasLLM reports whether content generation can run.
func (c Config) HasLLM() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

func (c Config) storageConfig(mode gcp.ObjectStorageMode) gcp.ObjectStorageConfig {
	return gcp.ObjectStorageConfig{
		Mode:         mode,
		EmulatorHost: c.Archive.EmulatorHost,
		Credentials:  c.Archive.Credentials,
	}
}
