package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hunter",
	Short: "Competitive discovery and ranking engine",
	Long:  "Discovers a local business's nearby competitors via tiered selection and resolves its position in live search results for its highest-value query.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
