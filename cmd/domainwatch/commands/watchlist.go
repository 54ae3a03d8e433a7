package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"domainwatch/internal/watchlist"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Parse the watchlist and print its entries",
	Long: `watchlist validates the configured watchlist file without touching the
network: it prints every entry that a check run would see, then a count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		domains, err := watchlist.Load(cfg.Watchlist)
		if err != nil {
			return err
		}

		for _, d := range domains {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d domain(s) in %s\n", len(domains), cfg.Watchlist)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
}
