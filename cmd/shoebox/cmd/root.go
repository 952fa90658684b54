// Package cmd implements the shoebox command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shoeboxhq/shoebox/internal/config"
	"github.com/shoeboxhq/shoebox/pkg/logging"
	"github.com/shoeboxhq/shoebox/pkg/merge"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
	// BuiltBy is the build system identifier.
	BuiltBy = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shoebox",
	Short: "Trading card inventory reconciliation",
	Long: `Shoebox normalizes messy card inventory exports into one canonical
schema and reconciles them against each other.

It parses CSV/TSV exports regardless of delimiter or header spelling,
merges matched rows under an explicit precedence policy, collapses exact
duplicates, and writes an audit report for everything it could not decide.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware context and version
// information from the build.
func Execute(version, commit, date, builtBy string) {
	Version = version
	Commit = commit
	Date = date
	BuiltBy = builtBy

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.shoebox.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().String("policy", "", "YAML policy file (scoring weights, thresholds, merge behavior)")
	rootCmd.PersistentFlags().String("image-base-url", "", "base URL prefixed onto bare image filenames")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
	if err := viper.BindPFlag(config.KeyPolicyFile, rootCmd.PersistentFlags().Lookup("policy")); err != nil {
		panic(fmt.Sprintf("Failed to bind policy flag: %v", err))
	}
	if err := viper.BindPFlag(config.KeyImageBaseURL, rootCmd.PersistentFlags().Lookup("image-base-url")); err != nil {
		panic(fmt.Sprintf("Failed to bind image-base-url flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".shoebox")
	}

	// Load .env files before Viper env binding; .env.local overrides .env.
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Overload(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	return nil
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := "info"
	if verbose || viper.GetBool("verbose") {
		level = "debug"
	}
	if quiet || viper.GetBool("quiet") {
		level = "warn"
	}
	if envLevel := config.GetString("LOG_LEVEL"); envLevel != "" {
		level = envLevel
	}

	logging.Configure(level, config.GetString("LOG_FORMAT"))
}

// runPolicy resolves the effective run policy: built-in defaults, then the
// policy file when given, then explicit flag overrides applied by callers.
func runPolicy() (config.Policy, error) {
	if path := viper.GetString(config.KeyPolicyFile); path != "" {
		return config.LoadPolicyFile(path)
	}

	policy := config.DefaultPolicy()
	policy.Floor = viper.GetFloat64(config.KeyMatchFloor)
	policy.Gap = viper.GetFloat64(config.KeyMatchGap)
	policy.Merge.FillBlanks = viper.GetBool(config.KeyFillBlanks)
	policy.Merge.NoteSeparator = viper.GetString(config.KeyNoteSeparator)

	values, err := merge.ParseValueStrategy(viper.GetString(config.KeyMergeValues))
	if err != nil {
		return policy, err
	}
	policy.Merge.Values = values
	return policy, nil
}
