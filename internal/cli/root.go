package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rohmanhakim/store-insights/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile           string
	logLevel          string
	outputDir         string
	dryRun            bool
	productCap        int
	overallTimeout    time.Duration
	fetchTimeout      time.Duration
	userAgent         string
	enhancerEndpoint  string
	databaseDSN       string
	listenAddr        string
	maxConcurrentRuns int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "store-insights",
	Short: "Extract brand insights from a Shopify storefront.",
	Long: `store-insights fetches the public surface of a Shopify storefront
(product feed, home page, policies, FAQ, contact and about pages) and
assembles a single structured brand-insight document from it.

Missing or malformed pages never fail a run; they are reported in the
document's field report and warnings. Only an unreachable storefront is
an error.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for JSON documents")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "extract without persisting documents")
	rootCmd.PersistentFlags().IntVar(&productCap, "product-cap", 0, "maximum number of products kept from the feed")
	rootCmd.PersistentFlags().DurationVar(&overallTimeout, "timeout", 0, "deadline for one whole extraction run")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "fetch-timeout", 0, "deadline for a single request")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for storefront requests")
	rootCmd.PersistentFlags().StringVar(&enhancerEndpoint, "enhancer-endpoint", "", "enable enhancement through this endpoint")
	rootCmd.PersistentFlags().StringVar(&databaseDSN, "database-dsn", "", "Postgres DSN for the database sink")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address")
	serveCmd.Flags().IntVar(&maxConcurrentRuns, "max-concurrent-runs", 0, "maximum extractions served at once")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfigWithError loads the config file (or defaults) and the
// STORE_INSIGHTS_* environment, then applies CLI flags that were set.
func InitConfigWithError() (config.Config, error) {
	loaded, err := config.WithConfigFile(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("error initializing config: %w", err)
	}

	configBuilder := &loaded

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if productCap > 0 {
		configBuilder = configBuilder.WithProductCap(productCap)
	}

	if overallTimeout > 0 {
		configBuilder = configBuilder.WithOverallTimeout(overallTimeout)
	}

	if fetchTimeout > 0 {
		configBuilder = configBuilder.WithFetchTimeout(fetchTimeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if enhancerEndpoint != "" {
		configBuilder = configBuilder.WithEnhancement(true, enhancerEndpoint)
	}

	if databaseDSN != "" {
		configBuilder = configBuilder.WithDatabaseDSN(databaseDSN)
	}

	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}

	if maxConcurrentRuns > 0 {
		configBuilder = configBuilder.WithMaxConcurrentRuns(maxConcurrentRuns)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	logLevel = ""
	outputDir = ""
	dryRun = false
	productCap = 0
	overallTimeout = 0
	fetchTimeout = 0
	userAgent = ""
	enhancerEndpoint = ""
	databaseDSN = ""
	listenAddr = ""
	maxConcurrentRuns = 0
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetProductCapForTest(limit int) {
	productCap = limit
}

func SetTimeoutForTest(t time.Duration) {
	overallTimeout = t
}

func SetEnhancerEndpointForTest(endpoint string) {
	enhancerEndpoint = endpoint
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}
