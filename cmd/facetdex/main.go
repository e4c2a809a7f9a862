// Command facetdex serves the parametric filter panel over HTTP or in the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/facetdex/internal/config"
	"github.com/kailas-cloud/facetdex/internal/version"
)

var (
	envFlag    string
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:           "facetdex",
	Short:         "Parametric facet filter for a module catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "environment name (overrides ENV)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path (overrides config/{env}.yaml)")
	rootCmd.AddCommand(serveCmd, tuiCmd, versionCmd)
}

// resolveEnv returns the environment from the flag, falling back to ENV.
func resolveEnv() string {
	if envFlag != "" {
		return envFlag
	}
	return config.GetEnv()
}

// loadConfig reads the config file selected by the flags.
func loadConfig(env string) (config.Config, error) {
	if configFlag != "" {
		return config.LoadFile(configFlag)
	}
	return config.Load(env)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "facetdex:", err)
		os.Exit(1)
	}
}
