package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "tender-bid"
)

type Config struct {
	Tenders *TendersConfig `mapstructure:"tenders"`
	Catalog *CatalogConfig `mapstructure:"catalog"`
	Pricing *PricingConfig `mapstructure:"pricing"`
	Policy  *PolicyConfig  `mapstructure:"policy"`
	State   *StateConfig   `mapstructure:"state"`
	Output  *OutputConfig  `mapstructure:"output"`
	AI      *AIConfig      `mapstructure:"ai"`
	Server  *ServerConfig  `mapstructure:"server"`
}

type TendersConfig struct {
	Source   string          `mapstructure:"source"`
	File     string          `mapstructure:"file"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Portal   *PortalConfig   `mapstructure:"portal"`
	Sample   *SampleConfig   `mapstructure:"sample"`
}

type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type PortalConfig struct {
	BaseURL   string            `mapstructure:"base-url"`
	Path      string            `mapstructure:"path"`
	TokenFile string            `mapstructure:"token-file"`
	UserAgent string            `mapstructure:"user-agent"`
	Query     map[string]string `mapstructure:"query"`
}

type SampleConfig struct {
	Count int   `mapstructure:"count"`
	Seed  int64 `mapstructure:"seed"`
}

type CatalogConfig struct {
	DatasheetsDir string `mapstructure:"datasheets-dir"`
	File          string `mapstructure:"file"`
	MergeBuiltin  bool   `mapstructure:"merge-builtin"`
}

type PricingConfig struct {
	Dir             string `mapstructure:"dir"`
	MarketCostsFile string `mapstructure:"market-costs-file"`
	// MarginOptimizer is a string so that ENABLE_MARGIN_OPT accepts 1/true/yes.
	MarginOptimizer string `mapstructure:"margin-optimizer"`
}

type PolicyConfig struct {
	File           string `mapstructure:"file"`
	ExperienceFile string `mapstructure:"experience-file"`
}

type StateConfig struct {
	Backend      string `mapstructure:"backend"`
	RotationFile string `mapstructure:"rotation-file"`
	AuditFile    string `mapstructure:"audit-file"`
	SQLitePath   string `mapstructure:"sqlite-path"`
}

type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	RequestsDir string `mapstructure:"requests-dir"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "tender-bid evaluates cable tenders and produces a costed bid/no-bid recommendation",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"pricing.margin-optimizer":  "ENABLE_MARGIN_OPT",
		"tenders.postgres.dsn-file": "TENDER_BID_DATABASE_URL_FILE",
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is tender-bid.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("tenders.source", "file")
	viper.SetDefault("tenders.file", "data/tenders.json")
	viper.SetDefault("tenders.sample.count", 5)
	viper.SetDefault("tenders.sample.seed", 42)
	viper.SetDefault("catalog.datasheets-dir", "data/oem_datasheets")
	viper.SetDefault("catalog.file", "data/catalog.json")
	viper.SetDefault("catalog.merge-builtin", true)
	viper.SetDefault("pricing.dir", "data/pricing")
	viper.SetDefault("pricing.market-costs-file", "data/feeds/market_costs.json")
	viper.SetDefault("pricing.margin-optimizer", "false")
	viper.SetDefault("policy.file", "config/client_policy.json")
	viper.SetDefault("policy.experience-file", "config/client_experience.json")
	viper.SetDefault("state.backend", "file")
	viper.SetDefault("state.rotation-file", "output/last_selected.json")
	viper.SetDefault("state.audit-file", "output/sales_selected_rfps.csv")
	viper.SetDefault("state.sqlite-path", "output/state.db")
	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.requests-dir", "output/new_sku_requests")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("server.listen", ":8080")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults cover a missing config file, but a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
