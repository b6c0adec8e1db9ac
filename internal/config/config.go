// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/enrich-cli/internal/cost"
	"github.com/sells-group/enrich-cli/internal/icp"
	"github.com/sells-group/enrich-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Reader    ReaderConfig    `yaml:"reader" mapstructure:"reader"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	ICP       ICPConfig       `yaml:"icp" mapstructure:"icp"`
	Taxonomy  TaxonomyConfig  `yaml:"taxonomy" mapstructure:"taxonomy"`
	Pricing   cost.Rates      `yaml:"pricing" mapstructure:"pricing"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int    `yaml:"min_conns" mapstructure:"min_conns"`
}

// SearchConfig holds web-search synthesis API settings.
type SearchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// ReaderConfig holds page-content retrieval API settings.
type ReaderConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
}

// ICPConfig holds the ideal-customer-profile matching criteria.
type ICPConfig struct {
	TargetCodes      []string `yaml:"target_codes" mapstructure:"target_codes"`
	TargetCountries  []string `yaml:"target_countries" mapstructure:"target_countries"`
	RevenueThreshold string   `yaml:"revenue_threshold" mapstructure:"revenue_threshold"`
}

// Criteria converts the configured ICP settings into matching criteria.
func (c ICPConfig) Criteria() icp.Criteria {
	codes := make(map[string]bool, len(c.TargetCodes))
	for _, code := range c.TargetCodes {
		codes[code] = true
	}
	return icp.Criteria{
		TargetCodes:      codes,
		TargetCountries:  c.TargetCountries,
		RevenueThreshold: model.RevenueBand(c.RevenueThreshold),
	}
}

// TaxonomyConfig configures the approved-code taxonomy cache.
type TaxonomyConfig struct {
	TTLHours int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// BatchConfig configures batch enrichment.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("search.base_url", "https://api.perplexity.ai")
	v.SetDefault("search.model", "sonar-pro")
	v.SetDefault("reader.base_url", "https://r.jina.ai")
	v.SetDefault("reader.rate_limit", 4)
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("icp.target_countries", []string{"United States"})
	v.SetDefault("icp.revenue_threshold", "5M-25M")
	v.SetDefault("taxonomy.ttl_hours", 24)
	v.SetDefault("pricing.search.per_query", 0.005)
	v.SetDefault("pricing.reader.per_mtok", 0.02)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
