package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bekirdag/propbook/internal/config"
	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/inventory"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		q     listQuery
		order string
	)
	cmd := &cobra.Command{
		Use:   "list <dataset>",
		Short: "Print a dataset as a table",
		Long: `Prints equipment, sensitive or activity rows using the same sort,
search and paging rules as the dashboard.

Example:
  propbook list equipment --sort status --order desc --per-page 5 --page 1`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: datasetNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Order = datatable.ParseOrder(order)
			if q.Page > 0 {
				q.Page--
			}
			d, err := inventory.Load(cmd.Context(), inventory.LoadOptions{Dir: opts.cfg.DataDir, Logger: opts.logger})
			if err != nil {
				return err
			}
			headers, rows, err := datasetRows(d, args[0], q)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), datatable.DefaultEmptyMessage)
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers(headers...).
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&q.SortBy, "sort", "", "Column id to sort by (default: first column)")
	cmd.Flags().StringVar(&order, "order", "asc", "Sort direction: asc or desc")
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&q.PerPage, "per-page", 0, "Rows per page (0 prints every row)")
	cmd.Flags().StringVar(&q.Search, "search", "", "Only rows containing this text")
	cmd.Flags().StringVar(&q.Status, "status", "", "Only rows with this status (FMC, PMC, NMC)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out, holder, status, search, unit string
	cmd := &cobra.Command{
		Use:   "export <pdf|html|csv>",
		Short: "Write a hand receipt for matching equipment",
		Long: `Writes a hand receipt (PDF) or property register (HTML or CSV) for
the equipment that matches the filters.

Example:
  propbook export pdf --holder "SSG Miller" --out receipt.pdf`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.FormatPDF), string(export.FormatHTML), string(export.FormatCSV)},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			d, err := inventory.Load(cmd.Context(), inventory.LoadOptions{Dir: opts.cfg.DataDir, Logger: opts.logger})
			if err != nil {
				return err
			}

			var statuses map[string]bool
			if status != "" {
				statuses = map[string]bool{strings.ToUpper(status): true}
			}
			var ids []string
			for _, e := range inventory.Filter(d.Equipment, search, statuses, inventory.EquipmentSearchFields...) {
				if holder == "" || strings.EqualFold(e.Holder, holder) {
					ids = append(ids, e.ID)
				}
			}
			if unit == "" {
				unit = opts.cfg.Unit
			}
			hr := handReceiptFor(d, ids, unit, opts.cfg.Actor, time.Now())
			if len(hr.Items) == 0 {
				return export.ErrNoRows
			}
			if out == "" {
				out = filepath.Join(opts.cfg.ExportDir, "hand-receipt-"+hr.Number+format.Ext())
			}
			if err := writeExport(cmd.Context(), out, format, hr); err != nil {
				return err
			}

			audit := newAuditLogger(opts.cfg.AuditFile, opts.sessionID, opts.cfg.Actor, opts.logger)
			audit.Record("Hand receipt exported", filepath.Base(out), plural(len(hr.Items), "line"))
			opts.logger.Info("export written", zap.String("path", out), zap.Int("lines", len(hr.Items)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, total %s)\n", out, plural(len(hr.Items), "line"), formatNumber(hr.Total()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: hand-receipt-<number>.<format> in the export dir)")
	cmd.Flags().StringVar(&holder, "holder", "", "Only equipment signed to this holder")
	cmd.Flags().StringVar(&status, "status", "", "Only equipment with this status")
	cmd.Flags().StringVar(&search, "search", "", "Only equipment containing this text")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit printed on the receipt (default: config unit)")
	return cmd
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var (
		f       auditFilter
		since   time.Duration
		asJSON  bool
		logPath string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Summarize the audit trail by action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := logPath
			if path == "" {
				path = opts.cfg.AuditFile
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer file.Close()

			if since > 0 {
				f.Since = time.Now().Add(-since)
			}
			summary, skipped, err := summarizeAudit(file, f)
			if err != nil {
				return fmt.Errorf("read audit log: %w", err)
			}
			if skipped > 0 {
				opts.logger.Warn("skipped malformed audit lines", zap.String("path", path), zap.Int("count", skipped))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			if len(summary) == 0 {
				fmt.Fprintln(out, "No audit entries")
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Action", "Count", "Actors", "Sessions", "Last")
			for _, s := range summary {
				t.Row(s.Action, fmt.Sprint(s.Count), strings.Join(s.Actors, ", "), fmt.Sprint(s.Sessions), s.Last.Local().Format(timestampLayout))
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "file", "", "Audit file (default: config auditFile)")
	cmd.Flags().StringVar(&f.SessionID, "session", "", "Only this session id")
	cmd.Flags().StringVar(&f.Actor, "actor", "", "Only this actor")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this, e.g. 24h")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: `Writes the defaults, merged with any existing config file and the
--theme and --data-dir flags, to the --config path.

Example:
  propbook --theme dark --data-dir ./data init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, opts.cfg); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			opts.logger.Info("config written", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "propbook "+version)
		},
	}
}
