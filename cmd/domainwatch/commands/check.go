package commands

import (
	"time"

	"github.com/spf13/cobra"

	"domainwatch/internal/checker"
	"domainwatch/internal/monitor"
	"domainwatch/internal/notify"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one watchlist pass and alert on available domains",
	Long: `check loads the watchlist, queries WHOIS for every entry, and sends one
email if any domain can be registered. Exit status is 0 when the run completes,
whether or not anything was available; a missing watchlist or a failed
notification exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, closeLogs, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLogs()

		chk := checker.New(time.Duration(cfg.Check.Timeout), cfg.Check.QPS)
		mailer := notify.NewMailer(mailConfig(cfg))

		_, err = monitor.New(cfg, chk, mailer, log).Run(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
