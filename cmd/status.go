package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/primestat/primestat/pkg/logger"
	"github.com/primestat/primestat/pkg/report"
	"github.com/primestat/primestat/pkg/savefile"
	"github.com/primestat/primestat/pkg/scandir"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report progress of the checkpoint files in the working directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := ParseConfig()
		if err != nil {
			return err
		}
		logger.Debug("Scanning %s for checkpoint files.", config.Dir)
		fmt.Print(report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), config.Dir, config.MaxBytes))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
