package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-ledger/internal/domain/consolidate"
	"github.com/FACorreiaa/statement-ledger/pkg/config"
)

func newExtractCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "extract [files or directories]",
		Short: "Extract statement rows from PDF files",
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

			failures := 0
			for _, path := range paths {
				res := svc.Extract(path, "")

				status := "ok"
				switch {
				case len(res.Statement.Rows) == 0:
					status = "empty"
					failures++
				case len(res.Statement.Errors) > 0:
					status = fmt.Sprintf("ok (%d rows dropped)", len(res.Statement.Errors))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d rows\t%s\n",
					filepath.Base(path), res.Bank, len(res.Statement.Rows), status)

				if outDir != "" && len(res.Statement.Rows) > 0 {
					c := consolidate.New(log)
					rows := c.Consolidate([]consolidate.Input{
						{Statement: res.Statement, RawLines: res.Lines},
					})
					name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".xlsx"
					out := filepath.Join(outDir, name)
					if err := consolidate.WriteXLSX(out, cfg.Consolidate.SheetName, rows); err != nil {
						return fmt.Errorf("writing %s: %w", out, err)
					}
				}
			}

			if failures == len(paths) {
				return fmt.Errorf("no rows extracted from any of the %d files", len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory for per-file .xlsx output")

	return cmd
}

// collectPDFs expands directory arguments into their .pdf entries, sorted so
// runs are deterministic.
func collectPDFs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
