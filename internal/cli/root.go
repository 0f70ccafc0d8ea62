package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "Duration estimation, priority scheduling, and temporal memory for agents",
	Long: "Tempo keeps a running model of how long things take and what to do next,\n" +
		"plus a decayed-relevance memory index, backed by a single JSON state file.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(nextCmd)
}
