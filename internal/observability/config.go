package observability

import (
	"strings"

	"github.com/smallbiznis/inviteportal/internal/config"
)

// Config is the logging and tracing setup read from the environment.
type Config struct {
	ServiceName string
	Environment string `env:"DEPLOYMENT_ENV"`
	Version     string `env:"SERVICE_VERSION"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	OtelEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1"`
}

// LoadConfig reads the observability variables, falling back to the
// application name, environment and version for the resource identity.
func LoadConfig(app config.Config) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.ServiceName = strings.TrimSpace(app.AppName)
	if cfg.ServiceName == "" {
		cfg.ServiceName = "inviteportal"
	}
	cfg.Environment = firstNonBlank(cfg.Environment, app.Environment)
	cfg.Version = firstNonBlank(cfg.Version, app.AppVersion)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.OtelExporterEndpoint = strings.TrimSpace(cfg.OtelExporterEndpoint)
	if cfg.OtelSamplingRatio < 0 || cfg.OtelSamplingRatio > 1 {
		cfg.OtelSamplingRatio = 1
	}
	return cfg, nil
}

// Debug is true for debug logging or any development-like environment.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
