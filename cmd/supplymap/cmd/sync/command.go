// Package sync implements the sync command.
package sync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/internal/cmd/emoji"
	"github.com/agentstation/supplymap/internal/cmd/output"
	"github.com/agentstation/supplymap/internal/cmd/table"
	"github.com/agentstation/supplymap/pkg/errors"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// Flags holds the sync command flags.
type Flags struct {
	DryRun     bool
	Provenance string
	Every      time.Duration
}

// NewCommand creates the sync command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Merge all staged supplier rows into the canonical catalog",
		Long: `Sync reads every enabled supplier's staging table, maps each row onto the
canonical schema, groups rows by product identity and merges each group by
supplier priority. All merged records are committed in one transaction: a
failure leaves the canonical catalog exactly as it was.

With --every the sync repeats on that interval until interrupted.`,
		Example: `  supplymap sync                        # Merge and commit
  supplymap sync --dry-run              # Merge without writing
  supplymap sync --provenance prov.yaml # Record which supplier won each field
  supplymap sync --every 15m            # Repeat every 15 minutes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Every > 0 {
				return RunScheduled(cmd.Context(), app, flags)
			}
			return Run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "merge without committing")
	cmd.Flags().StringVar(&flags.Provenance, "provenance", "", "write field provenance to this YAML file")
	cmd.Flags().DurationVar(&flags.Every, "every", 0, "repeat the sync on this interval until interrupted")

	return cmd
}

// Options converts the flags into sync options.
func (f *Flags) Options() []pkgsync.Option {
	opts := []pkgsync.Option{pkgsync.WithDryRun(f.DryRun)}
	if f.Provenance != "" {
		opts = append(opts, pkgsync.WithProvenanceFile(f.Provenance))
	}
	return opts
}

// Run performs one sync and prints its result.
func Run(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	result, err := client.Sync(ctx, flags.Options()...)
	if result != nil {
		if perr := printResult(w, app, result); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// RunScheduled syncs on the flag interval until ctx is canceled.
func RunScheduled(ctx context.Context, app application.Application, flags *Flags) error {
	client, err := app.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.AutoSyncOn(flags.Every, flags.Options()...); err != nil {
		return err
	}
	app.Logger().Info().Dur("interval", flags.Every).Msg("Scheduled sync started")

	<-ctx.Done()
	if err := client.AutoSyncOff(); err != nil {
		return err
	}
	app.Logger().Info().Msg("Scheduled sync stopped")
	return nil
}

func printResult(w io.Writer, app application.Application, result *pkgsync.Result) error {
	format := output.Format(app.OutputFormat())
	if format.IsStructured() {
		return output.Print(w, format, output.NewSyncReport(result), nil)
	}

	if !app.Quiet() {
		if err := output.Print(w, format, nil, func() output.Data { return table.SyncResultToTableData(result) }); err != nil {
			return err
		}
		if format == output.FormatWide {
			if err := output.Print(w, format, nil, func() output.Data { return table.SyncTotalsToTableData(result) }); err != nil {
				return err
			}
		}
		if result.HasErrors() {
			if err := output.Print(w, format, nil, func() output.Data { return table.ErrorsToTableData(result.Errors) }); err != nil {
				return err
			}
		}
	}

	line := emoji.Status(result.Success, len(result.Errors)) + " " + result.Message
	if result.Success {
		line += ": " + result.Summary()
	}
	_, err := fmt.Fprintln(w, line)
	if err != nil {
		return errors.WrapIO("write", "stdout", err)
	}
	return nil
}
