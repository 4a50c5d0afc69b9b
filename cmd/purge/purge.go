// Package purge implements the purge command, which removes expired records
// from the log store immediately.
package purge

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/applog/internal/app"
)

// Command creates the purge command.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired records from the log store",
		Long:  "Delete records whose retention period has ended. The logger's janitor does this periodically; purge does it now.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.PurgeExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(ctx.Stdout, "purged %d expired records from %s\n", n, store.Collection())
			return err
		},
	}
}
