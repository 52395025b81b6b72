package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/primestat/primestat/internal/version"
	"github.com/primestat/primestat/pkg/logger"
)

var (
	cfgFile     string
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "primestat",
	Short: "Report status of prime-testing checkpoint and work files.",
	Long: `
	Primestat inspects the working directory of a distributed prime-testing
	client.  It decodes the binary checkpoint files the numeric engine
	periodically writes, summarizes each job's progress, and reports on the
	queued work and its expected completion dates, without ever modifying
	the engine's files.`,
	Run: handleRootCommand,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/primestat.yaml)")
	rootCmd.PersistentFlags().String("dir", ".", "working directory holding checkpoint files")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: error, warning, info, debug")
	rootCmd.PersistentFlags().Int("max-bytes", defaultMaxBytes, "report buffer size in bytes")
	for _, flag := range []string{"dir", "log-level", "max-bytes"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			cobra.CheckErr(err)
		}
	}
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show the primestat version")

	setConfigDefaults()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("primestat")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stdout, "Using config file:", viper.ConfigFileUsed())
	}

	level, err := logger.GetLogLevelByName(viper.GetString("log-level"))
	if err != nil {
		logger.Warning("%s, keeping the default.", err)

		return
	}
	logger.SetLogLevel(level)
}

func handleRootCommand(cmd *cobra.Command, args []string) {
	if showVersion {
		if version.Version == "" {
			fmt.Println("Version unknown")
		} else {
			fmt.Println(version.Version)
		}
		os.Exit(0)
	}

	_ = cmd.Help()
}
