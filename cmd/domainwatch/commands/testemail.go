package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"domainwatch/internal/notify"
)

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a probe message to verify the SMTP settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		mailer := notify.NewMailer(mailConfig(cfg))
		if err := mailer.SendTest(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "test email sent to %s\n", cfg.SMTP.To)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testEmailCmd)
}
