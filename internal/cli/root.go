package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/store"
)

var (
	cfgFile string
	verbose bool
	dbPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "treelint",
	Short: "Treelint - quality-control analysis for genealogy research caches",
	Long: `Treelint inspects a locally synced genealogy research cache for
signals a human researcher should act on.

It never edits the tree and never contacts a remote service during
analysis: every finding is computed from the local snapshot by
rule-based, reproducible checks.

Treelint finds likely duplicate person records, impossible ancestry
loops, structurally suspect relationships, implausible timelines, and
the ancestors whose source coverage deserves attention next.

Treelint is a linter, not an editor.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Treelint.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("treelint v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.treelint/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "research cache database (default: from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.treelint")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TREELINT_*
	viper.SetEnvPrefix("TREELINT")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the effective configuration: defaults, then the
// config file, then TREELINT_* environment variables, then flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := viper.GetString("db"); v != "" {
		cfg.Store.Path = v
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	cfg.Output.Verbose = verbose

	return cfg, nil
}

// openStore opens the research cache read path for an analysis command.
// A missing file is reported up front; SQLite would otherwise create an
// empty database and every lookup would come back empty.
func openStore(cfg *model.Config) (*store.Store, error) {
	if _, err := os.Stat(cfg.Store.Path); err != nil {
		return nil, fmt.Errorf("research cache not found: %s (run 'treelint init' or point --db at a synced cache)", cfg.Store.Path)
	}
	return store.Open(cfg.Store.Path, store.Options{
		CacheEnabled: cfg.Store.CacheEnabled,
		CacheTTL:     cfg.Store.CacheTTL,
	})
}

// configureLLM fills the LLM section from flags and provider API keys
// in the environment. Strict citation checking is always on.
func configureLLM(cfg *model.Config, provider, modelName string) error {
	cfg.LLM.Provider = provider
	cfg.LLM.Model = modelName
	cfg.LLM.StrictCitations = true

	switch provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
