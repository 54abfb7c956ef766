package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the store to the latest schema version and exit",
		Long: `Open the store, creating it or applying pending upgrades, and report the
schema version. A store that cannot be upgraded is reset, keeping a backup
copy when store.keep_corrupt_backup is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			version, dirty, err := a.db.SchemaVersion(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading schema version: %w", err)
			}
			if dirty {
				return fmt.Errorf("schema version %d is dirty", version)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (latest %d)\n",
				a.cfg.Store.Path, version, a.db.LatestSchemaVersion())
			return nil
		},
	}
}
