package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/backup"
	"github.com/claude/liftlog/internal/ingest/alpha"
)

// File formats.
const (
	FormatJSON  = "json"
	FormatXLSX  = "xlsx"
	FormatAlpha = "alpha"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	Format string
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record to a JSON backup or an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if opts.Format != FormatJSON && opts.Format != FormatXLSX {
				return fmt.Errorf("invalid format %q: must be %s or %s", opts.Format, FormatJSON, FormatXLSX)
			}
			a, err := openApp(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			doc, err := backup.Export(cmd.Context(), a.db)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if opts.Output != "" && opts.Output != "-" {
				var f *os.File
				f, err = os.Create(opts.Output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", opts.Output, err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			if opts.Format == FormatXLSX {
				err = backup.WriteSpreadsheet(doc, w)
			} else {
				err = backup.WriteJSON(doc, w)
			}
			if err != nil {
				return err
			}
			a.log.Info("export complete", "format", opts.Format, "workouts", len(doc.Workouts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatJSON, "output format (json|xlsx)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with a JSON backup, or add workouts from an Alpha Progression export",
		Long: `With --format json (the default) every record is replaced by the contents
of a JSON backup. The payload is validated first; a malformed file leaves
the store unchanged.

With --format alpha the sessions of an Alpha Progression export are added
as completed workouts. Sessions imported before are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if format != FormatJSON && format != FormatAlpha {
				return fmt.Errorf("invalid format %q: must be %s or %s", format, FormatJSON, FormatAlpha)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			a, err := openApp(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			if format == FormatAlpha {
				res, err := alpha.NewImporter(a.db, a.log, a.engine.Location()).Ingest(cmd.Context(), f)
				if err != nil {
					return fmt.Errorf("importing %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d workouts (%d sessions skipped), %d new exercises\n",
					res.WorkoutsCreated, res.SessionsSkipped, len(res.ExercisesCreated))
				return nil
			}

			doc, err := backup.Import(cmd.Context(), a.db, f)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d exercises, %d workouts, %d sessions, %d mesocycles, %d profiles\n",
				len(doc.Exercises), len(doc.Workouts), len(doc.TrainingSessions), len(doc.Mesocycles), len(doc.UserProfiles))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "input format (json|alpha)")

	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !yes {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			a, err := openApp(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			if err := a.db.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")

	return cmd
}
