package config

import (
	"fmt"
	"time"

	"github.com/rohmanhakim/store-insights/internal/build"
)

// Config is immutable once built. Construct it with WithDefault()...Build()
// or load it from a file and the environment with WithConfigFile.
type Config struct {
	//===============
	// Limits
	//===============
	// Maximum number of products kept from the product feed
	productCap int
	// Maximum number of hero products
	heroLimit int
	// Maximum number of FAQ entries
	faqLimit int
	// Maximum response body size in bytes; larger bodies are cut and flagged truncated
	maxBodyBytes int64

	//===============
	// Timing
	//===============
	// Deadline for one whole extraction run
	overallTimeout time.Duration
	// Deadline for a single fetch attempt
	fetchTimeout time.Duration

	//===============
	// Politeness
	//===============
	// Maximum number of concurrent source probes within one run
	fetchConcurrency int
	// Steady-state request rate to one storefront
	requestsPerSecond float64
	// Burst allowance on top of requestsPerSecond
	requestBurst int
	// Maximum attempts for one fetch, including the first
	maxAttempt int
	// Fixed delay between attempts
	retryBackoff time.Duration
	// User agent sent on every request
	userAgent string

	//===============
	// Enhancement
	//===============
	enhancementEnabled bool
	enhancerEndpoint   string
	enhancerTimeout    time.Duration

	//===============
	// Output
	//===============
	// Directory for local JSON documents. Empty disables the local sink
	outputDir string
	// Postgres DSN. Empty disables the database sink
	databaseDSN string
	// Capacity of the persistence handoff queue
	dispatchBuffer int
	// Whether documents are produced without being persisted
	dryRun bool

	//===============
	// Server
	//===============
	listenAddr        string
	maxConcurrentRuns int
	logLevel          string
}

// WithDefault creates a new Config populated with default values for every field.
func WithDefault() *Config {
	defaultConfig := Config{
		productCap:         250,
		heroLimit:          10,
		faqLimit:           50,
		maxBodyBytes:       5 << 20,
		overallTimeout:     45 * time.Second,
		fetchTimeout:       15 * time.Second,
		fetchConcurrency:   6,
		requestsPerSecond:  8,
		requestBurst:       4,
		maxAttempt:         2,
		retryBackoff:       250 * time.Millisecond,
		userAgent:          build.UserAgent(),
		enhancementEnabled: false,
		enhancerEndpoint:   "",
		enhancerTimeout:    10 * time.Second,
		outputDir:          "output",
		databaseDSN:        "",
		dispatchBuffer:     16,
		dryRun:             false,
		listenAddr:         ":8080",
		maxConcurrentRuns:  4,
		logLevel:           "info",
	}
	return &defaultConfig
}

func (c *Config) WithProductCap(limit int) *Config {
	c.productCap = limit
	return c
}

func (c *Config) WithHeroLimit(limit int) *Config {
	c.heroLimit = limit
	return c
}

func (c *Config) WithFAQLimit(limit int) *Config {
	c.faqLimit = limit
	return c
}

func (c *Config) WithMaxBodyBytes(n int64) *Config {
	c.maxBodyBytes = n
	return c
}

func (c *Config) WithOverallTimeout(timeout time.Duration) *Config {
	c.overallTimeout = timeout
	return c
}

func (c *Config) WithFetchTimeout(timeout time.Duration) *Config {
	c.fetchTimeout = timeout
	return c
}

func (c *Config) WithFetchConcurrency(concurrency int) *Config {
	c.fetchConcurrency = concurrency
	return c
}

func (c *Config) WithRequestsPerSecond(rps float64) *Config {
	c.requestsPerSecond = rps
	return c
}

func (c *Config) WithRequestBurst(burst int) *Config {
	c.requestBurst = burst
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithRetryBackoff(backoff time.Duration) *Config {
	c.retryBackoff = backoff
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithEnhancement(enabled bool, endpoint string) *Config {
	c.enhancementEnabled = enabled
	c.enhancerEndpoint = endpoint
	return c
}

func (c *Config) WithEnhancerTimeout(timeout time.Duration) *Config {
	c.enhancerTimeout = timeout
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithDatabaseDSN(dsn string) *Config {
	c.databaseDSN = dsn
	return c
}

func (c *Config) WithDispatchBuffer(n int) *Config {
	c.dispatchBuffer = n
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

func (c *Config) WithMaxConcurrentRuns(n int) *Config {
	c.maxConcurrentRuns = n
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) Build() (Config, error) {
	switch {
	case c.productCap <= 0:
		return Config{}, fmt.Errorf("%w: productCap must be positive, got %d", ErrInvalidConfig, c.productCap)
	case c.heroLimit < 0:
		return Config{}, fmt.Errorf("%w: heroLimit must not be negative, got %d", ErrInvalidConfig, c.heroLimit)
	case c.faqLimit < 0:
		return Config{}, fmt.Errorf("%w: faqLimit must not be negative, got %d", ErrInvalidConfig, c.faqLimit)
	case c.maxBodyBytes <= 0:
		return Config{}, fmt.Errorf("%w: maxBodyBytes must be positive, got %d", ErrInvalidConfig, c.maxBodyBytes)
	case c.overallTimeout <= 0 || c.fetchTimeout <= 0:
		return Config{}, fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.fetchConcurrency <= 0:
		return Config{}, fmt.Errorf("%w: fetchConcurrency must be positive, got %d", ErrInvalidConfig, c.fetchConcurrency)
	case c.requestsPerSecond <= 0 || c.requestBurst <= 0:
		return Config{}, fmt.Errorf("%w: request rate and burst must be positive", ErrInvalidConfig)
	case c.maxAttempt <= 0:
		return Config{}, fmt.Errorf("%w: maxAttempt must be positive, got %d", ErrInvalidConfig, c.maxAttempt)
	case c.retryBackoff < 0:
		return Config{}, fmt.Errorf("%w: retryBackoff must not be negative", ErrInvalidConfig)
	case c.userAgent == "":
		return Config{}, fmt.Errorf("%w: userAgent cannot be empty", ErrInvalidConfig)
	case c.enhancementEnabled && c.enhancerEndpoint == "":
		return Config{}, fmt.Errorf("%w: enhancement enabled without an endpoint", ErrInvalidConfig)
	case c.enhancerTimeout <= 0:
		return Config{}, fmt.Errorf("%w: enhancerTimeout must be positive", ErrInvalidConfig)
	case c.dispatchBuffer <= 0:
		return Config{}, fmt.Errorf("%w: dispatchBuffer must be positive, got %d", ErrInvalidConfig, c.dispatchBuffer)
	case c.maxConcurrentRuns <= 0:
		return Config{}, fmt.Errorf("%w: maxConcurrentRuns must be positive, got %d", ErrInvalidConfig, c.maxConcurrentRuns)
	}
	return *c, nil
}

func (c Config) ProductCap() int {
	return c.productCap
}

func (c Config) HeroLimit() int {
	return c.heroLimit
}

func (c Config) FAQLimit() int {
	return c.faqLimit
}

func (c Config) MaxBodyBytes() int64 {
	return c.maxBodyBytes
}

func (c Config) OverallTimeout() time.Duration {
	return c.overallTimeout
}

func (c Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c Config) FetchConcurrency() int {
	return c.fetchConcurrency
}

func (c Config) RequestsPerSecond() float64 {
	return c.requestsPerSecond
}

func (c Config) RequestBurst() int {
	return c.requestBurst
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) RetryBackoff() time.Duration {
	return c.retryBackoff
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) EnhancementEnabled() bool {
	return c.enhancementEnabled
}

func (c Config) EnhancerEndpoint() string {
	return c.enhancerEndpoint
}

func (c Config) EnhancerTimeout() time.Duration {
	return c.enhancerTimeout
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) DatabaseDSN() string {
	return c.databaseDSN
}

func (c Config) DispatchBuffer() int {
	return c.dispatchBuffer
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) MaxConcurrentRuns() int {
	return c.maxConcurrentRuns
}

func (c Config) LogLevel() string {
	return c.logLevel
}
