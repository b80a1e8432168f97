package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "STORE_INSIGHTS"

type configDTO struct {
	ProductCap         int           `mapstructure:"product_cap"`
	HeroLimit          int           `mapstructure:"hero_limit"`
	FAQLimit           int           `mapstructure:"faq_limit"`
	MaxBodyBytes       int64         `mapstructure:"max_body_bytes"`
	OverallTimeout     time.Duration `mapstructure:"overall_timeout"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	FetchConcurrency   int           `mapstructure:"fetch_concurrency"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"`
	RequestBurst       int           `mapstructure:"request_burst"`
	MaxAttempt         int           `mapstructure:"max_attempt"`
	RetryBackoff       time.Duration `mapstructure:"retry_backoff"`
	UserAgent          string        `mapstructure:"user_agent"`
	EnhancementEnabled bool          `mapstructure:"enhancement_enabled"`
	EnhancerEndpoint   string        `mapstructure:"enhancer_endpoint"`
	EnhancerTimeout    time.Duration `mapstructure:"enhancer_timeout"`
	OutputDir          string        `mapstructure:"output_dir"`
	DatabaseDSN        string        `mapstructure:"database_dsn"`
	DispatchBuffer     int           `mapstructure:"dispatch_buffer"`
	DryRun             bool          `mapstructure:"dry_run"`
	ListenAddr         string        `mapstructure:"listen_addr"`
	MaxConcurrentRuns  int           `mapstructure:"max_concurrent_runs"`
	LogLevel           string        `mapstructure:"log_level"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	return WithDefault().
		WithProductCap(dto.ProductCap).
		WithHeroLimit(dto.HeroLimit).
		WithFAQLimit(dto.FAQLimit).
		WithMaxBodyBytes(dto.MaxBodyBytes).
		WithOverallTimeout(dto.OverallTimeout).
		WithFetchTimeout(dto.FetchTimeout).
		WithFetchConcurrency(dto.FetchConcurrency).
		WithRequestsPerSecond(dto.RequestsPerSecond).
		WithRequestBurst(dto.RequestBurst).
		WithMaxAttempt(dto.MaxAttempt).
		WithRetryBackoff(dto.RetryBackoff).
		WithUserAgent(dto.UserAgent).
		WithEnhancement(dto.EnhancementEnabled, dto.EnhancerEndpoint).
		WithEnhancerTimeout(dto.EnhancerTimeout).
		WithOutputDir(dto.OutputDir).
		WithDatabaseDSN(dto.DatabaseDSN).
		WithDispatchBuffer(dto.DispatchBuffer).
		WithDryRun(dto.DryRun).
		WithListenAddr(dto.ListenAddr).
		WithMaxConcurrentRuns(dto.MaxConcurrentRuns).
		WithLogLevel(dto.LogLevel).
		Build()
}

// setDefaults mirrors WithDefault so that keys absent from the file and the
// environment keep their default values after Unmarshal.
func setDefaults(v *viper.Viper) {
	d := WithDefault()
	v.SetDefault("product_cap", d.productCap)
	v.SetDefault("hero_limit", d.heroLimit)
	v.SetDefault("faq_limit", d.faqLimit)
	v.SetDefault("max_body_bytes", d.maxBodyBytes)
	v.SetDefault("overall_timeout", d.overallTimeout)
	v.SetDefault("fetch_timeout", d.fetchTimeout)
	v.SetDefault("fetch_concurrency", d.fetchConcurrency)
	v.SetDefault("requests_per_second", d.requestsPerSecond)
	v.SetDefault("request_burst", d.requestBurst)
	v.SetDefault("max_attempt", d.maxAttempt)
	v.SetDefault("retry_backoff", d.retryBackoff)
	v.SetDefault("user_agent", d.userAgent)
	v.SetDefault("enhancement_enabled", d.enhancementEnabled)
	v.SetDefault("enhancer_endpoint", d.enhancerEndpoint)
	v.SetDefault("enhancer_timeout", d.enhancerTimeout)
	v.SetDefault("output_dir", d.outputDir)
	v.SetDefault("database_dsn", d.databaseDSN)
	v.SetDefault("dispatch_buffer", d.dispatchBuffer)
	v.SetDefault("dry_run", d.dryRun)
	v.SetDefault("listen_addr", d.listenAddr)
	v.SetDefault("max_concurrent_runs", d.maxConcurrentRuns)
	v.SetDefault("log_level", d.logLevel)
}

// WithConfigFile loads configuration from path (YAML, JSON or TOML, by
// extension) layered over defaults, then applies STORE_INSIGHTS_* environment
// overrides. An empty path loads defaults and environment only.
func WithConfigFile(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
			}
			return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
	}

	var dto configDTO
	if err := v.Unmarshal(&dto); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(dto)
}
