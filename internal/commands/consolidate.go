package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-ledger/internal/domain/consolidate"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract"
	"github.com/FACorreiaa/statement-ledger/pkg/config"
)

func newConsolidateCommand() *cobra.Command {
	var output string
	var csvOutput string

	cmd := &cobra.Command{
		Use:   "consolidate [files or directories]",
		Short: "Merge statements from many PDFs into one ordered workbook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := newLogger(cfg.LogLevel)
			svc := buildService(cfg, log)

			paths, err := collectPDFs(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no PDF files found in %s", strings.Join(args, ", "))
			}

			reports, results := svc.Process(paths)
			inputs := make([]consolidate.Input, 0, len(results))
			for i, rep := range reports {
				if rep.Status == extract.StatusError {
					log.Warn("skipping file",
						slog.String("file", rep.File), slog.Any("error", rep.Err))
					continue
				}
				inputs = append(inputs, consolidate.Input{
					Statement: results[i].Statement,
					RawLines:  results[i].Lines,
				})
			}

			c := consolidate.New(log)
			rows := c.Consolidate(inputs)
			if len(rows) == 0 {
				return fmt.Errorf("no rows extracted from any of the %d files", len(paths))
			}

			if err := consolidate.WriteXLSX(output, cfg.Consolidate.SheetName, rows); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows from %d files -> %s\n", len(rows), len(paths), output)

			if csvOutput != "" {
				f, err := os.Create(csvOutput)
				if err != nil {
					return fmt.Errorf("creating %s: %w", csvOutput, err)
				}
				defer f.Close()
				if err := consolidate.WriteCSV(f, rows); err != nil {
					return fmt.Errorf("writing %s: %w", csvOutput, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "out", "consolidado.xlsx", "output workbook path")
	cmd.Flags().StringVar(&csvOutput, "csv", "", "also write rows as CSV to this path")

	return cmd
}
