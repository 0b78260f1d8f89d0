package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scribed/internal/app"
	"scribed/internal/config"
)

var cfg *config.Config

var timeout time.Duration

// Configure hands the loaded environment configuration to the command.
func Configure(c *config.Config) {
	cfg = c
}

func init() {
	Cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "abort the sweep after this long")
}

// Cmd represents the sweep command
var Cmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one retention pass over all users' job history",
	Long: `Run one retention pass over all users' job history.

Hides jobs past their role's retention age, hides overflow beyond the
role's history cap, then hard-deletes jobs hidden longer than the grace
period. Meant to be run from cron; each phase commits on its own, so a
failing phase never rolls back the earlier ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.InitializeApp(cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		summary, err := application.Retention.Sweep(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("sweep finished: users=%d aged_hidden=%d count_hidden=%d purged=%d user_errors=%d\n",
			summary.UsersSwept, summary.AgedHidden, summary.CountHidden, summary.Purged, summary.UserErrors)
		return nil
	},
}
