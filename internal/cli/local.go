package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tempo/internal/config"
	"tempo/internal/engine"
	"tempo/internal/estimate"
)

// One-shot commands that read the local state file directly, no server
// needed. They never persist: estimation and ranking are read paths.

var estimateCmd = &cobra.Command{
	Use:   "estimate <category> <complexity>",
	Short: "Print a duration estimate for a category/complexity pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := localEngine()
		if err != nil {
			return err
		}

		est := eng.Estimator.Estimate(estimate.Category(args[0]), estimate.Complexity(args[1]))
		return printJSON(est)
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the highest-priority pending task",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := localEngine()
		if err != nil {
			return err
		}

		task, ok := eng.Scheduler.NextTask()
		if !ok {
			fmt.Fprintln(os.Stderr, "no pending tasks")
			return nil
		}
		return printJSON(task)
	},
}

func localEngine() (*engine.Engine, error) {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("TEMPO_CONFIG")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return buildEngine(cfg, zap.NewNop())
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
