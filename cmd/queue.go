package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/primestat/primestat/pkg/report"
	"github.com/primestat/primestat/pkg/workqueue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Report queued work and expected completion dates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := ParseConfig()
		if err != nil {
			return err
		}
		worktodo := config.Worktodo
		if !filepath.IsAbs(worktodo) {
			worktodo = filepath.Join(config.Dir, worktodo)
		}
		queue, err := workqueue.LoadFile(worktodo, config.Workers)
		if err != nil {
			return err
		}
		queueConfig := report.QueueConfig{
			NumWorkers:   config.Workers,
			StatusLines:  config.StatusLines,
			ErrorRate:    config.ErrorRate,
			PRPErrorRate: config.PRPErrorRate,
		}
		fmt.Println(report.QueueStatus(queue, workqueue.CPUEstimator{}, queueConfig, config.MaxBytes))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
}
