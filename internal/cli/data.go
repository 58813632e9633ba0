package cli

import (
	"fmt"

	"daily-digits/internal/analyzer"
	"daily-digits/internal/importer"
	"daily-digits/internal/logger"
	"daily-digits/internal/metrics"

	"github.com/spf13/cobra"
)

// NewImportCommand 创建 import 命令
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var pushgateway string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import historical results from a spreadsheet",
		Long: `Import historical results from the first sheet of an .xlsx workbook.

The sheet needs Date, Digit1 and Digit2 columns. Dates may be spreadsheet date
cells or text such as 2025-01-31 or 01/31/2025. Rows for dates already stored
overwrite the stored digits.

Row counts are pushed to a Prometheus Pushgateway when --pushgateway or
app.pushgateway_url is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase(rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()

			m := metrics.NewManager()
			im := importer.NewImporter(db, cfg.Prediction.MinDigit, cfg.Prediction.MaxDigit, m)
			summary, err := im.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if pushgateway == "" {
				pushgateway = cfg.App.PushgatewayURL
			}
			if pushgateway != "" {
				if err := m.PushImportMetrics(cmd.Context(), pushgateway); err != nil {
					logger.Warnf("Failed to push import metrics to %s: %v", pushgateway, err)
				} else {
					logger.Infof("Import metrics pushed to %s", pushgateway)
				}
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Import Summary ===")
			fmt.Fprintf(out, "Total rows: %d\n", summary.Total)
			fmt.Fprintf(out, "Imported: %d\n", summary.Imported)
			fmt.Fprintf(out, "Skipped: %d\n", summary.Skipped)
			fmt.Fprintf(out, "Errors: %d\n", summary.Errors)
			return nil
		},
	}

	cmd.Flags().StringVar(&pushgateway, "pushgateway", "", "Pushgateway URL for import row counts (overrides app.pushgateway_url)")
	return cmd
}

// NewTemplateCommand 创建 template 命令
func NewTemplateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "template [file.xlsx]",
		Short: "Write a sample import spreadsheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := importer.DefaultTemplatePath
			if len(args) == 1 {
				path = args[0]
			}
			if err := importer.WriteTemplate(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample template created: %s\n", path)
			return nil
		},
	}
}

// NewAnalyzeCommand 创建 analyze 命令
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Print pattern analysis over all stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase(rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := db.GetAllRecords(cmd.Context())
			if err != nil {
				return err
			}

			report := analyzer.Analyze(records)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return analyzer.Render(cmd.OutOrStdout(), report)
		},
	}
}
