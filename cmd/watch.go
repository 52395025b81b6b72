package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/primestat/primestat/pkg/report"
	"github.com/primestat/primestat/pkg/savefile"
	"github.com/primestat/primestat/pkg/scandir"
	"github.com/primestat/primestat/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously report checkpoint progress as the engine writes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := ParseConfig()
		if err != nil {
			return err
		}

		printReport := func() {
			fmt.Print(report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), config.Dir, config.MaxBytes))
		}
		printReport()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		watch.New(config.Dir, printReport).Run(ctx)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
