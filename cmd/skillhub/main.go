package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillhub/pkg/config"
	"github.com/jingkaihe/skillhub/pkg/decision"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/marketplace"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/jingkaihe/skillhub/pkg/targets"
)

var rootCmd = &cobra.Command{
	Use:   "skillhub",
	Short: "Manage a local library of AI skills",
	Long: `skillhub stores reusable skill documents (SKILL.md files) in a local
library, exports them into per-project directories (.claude/skills,
.cursor/skills, .codex/skills, .github/skills), and installs skills
published in GitHub marketplace repositories.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Warning("invalid log level, falling back to info")
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	config.Init()

	bindPersistentFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(duplicateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(marketplaceCmd)
	rootCmd.AddCommand(versionCmd)
}

func bindPersistentFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (fmt, json)")
	flags.String("library", "", "Library directory (overrides config)")
	flags.Bool("quiet", false, "Suppress non-essential output")
	flags.Bool("yes", false, "Assume yes for all confirmations")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("library_path", flags.Lookup("library"))
}

// libraryPath resolves the library root from live configuration so flag and
// config changes take effect per invocation.
func libraryPath() string {
	raw := viper.GetString("library_path")
	path, err := config.ExpandPath(raw)
	if err != nil {
		return raw
	}
	return path
}

func newStore() *skills.Store {
	store, err := skills.NewStore(skills.WithLibraryPath(libraryPath))
	if err != nil {
		presenter.Error(err, "Failed to open skill library")
		os.Exit(1)
	}
	return store
}

// decisionProvider is interactive unless --yes was given.
func decisionProvider(cmd *cobra.Command) decision.Provider {
	if yes, err := cmd.Flags().GetBool("yes"); err == nil && yes {
		return decision.AlwaysProceed
	}
	return presenter.Default().DecisionProvider()
}

func newMarketplaceClient(store *skills.Store, cmd *cobra.Command) *marketplace.Client {
	return marketplace.NewClient(store,
		marketplace.WithToken(viper.GetString("github_token")),
		marketplace.WithSourceStore(config.SourceList{}),
		marketplace.WithDecisionProvider(decisionProvider(cmd)),
	)
}

func newBridge(store *skills.Store, cmd *cobra.Command) *targets.Bridge {
	return targets.NewBridge(store,
		targets.WithDecisionProvider(decisionProvider(cmd)),
	)
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
