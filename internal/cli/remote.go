package cli

import (
	"fmt"
	"strconv"

	"daily-digits/internal/api"
	"daily-digits/internal/database"

	"github.com/spf13/cobra"
)

func newClient(opts *RootOptions) (*api.Client, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return api.NewClient(&cfg.API), nil
}

// NewPredictCommand 创建 predict 命令
func NewPredictCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Fetch today's predictions from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			result, err := client.GetPredictions(cmd.Context())
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s (%s)\n", result.Date, result.Insights.DayOfWeek)
			fmt.Fprintf(out, "Digit1: %d\n", result.Digit1)
			fmt.Fprintf(out, "Digit2: %d\n", result.Digit2)
			if result.Insights.RecentAvg1 != nil && result.Insights.RecentAvg2 != nil {
				fmt.Fprintf(out, "Recent averages: %d / %d\n", *result.Insights.RecentAvg1, *result.Insights.RecentAvg2)
			}
			fmt.Fprintf(out, "Data points: %d\n", result.DataPoints)
			fmt.Fprintln(out, result.Message)
			return nil
		},
	}
}

// NewSubmitCommand 创建 submit 命令
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <YYYY-MM-DD> <digit1> <digit2>",
		Short: "Record the actual digits for a day",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			digit1, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid digit1 %q", args[1])
			}
			digit2, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid digit2 %q", args[2])
			}

			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			record, err := client.SubmitResult(cmd.Context(), args[0], digit1, digit2)
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %d %d\n", record.Date.Format(database.DateLayout), record.Digit1, record.Digit2)
			return nil
		},
	}
}

// NewHistoryCommand 创建 history 命令
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			records, err := client.GetHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No results recorded yet.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s  %4d  %4d\n", r.Date.Format(database.DateLayout), r.Digit1, r.Digit2)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of records (server default 100)")
	return cmd
}

// NewStatusCommand 创建 status 命令
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show client settings and the server health check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			clientStats := client.GetAPIStats()
			health, err := client.HealthCheck(cmd.Context())
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"client": clientStats,
					"server": health,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API: %v\n", clientStats["base_url"])
			fmt.Fprintf(out, "Timeout: %v, retries: %v (delay %v)\n",
				clientStats["timeout"], clientStats["retry_count"], clientStats["retry_delay"])
			fmt.Fprintf(out, "Server: %v, records: %v, digits: %v-%v\n",
				health["status"], health["records"], health["digit_min"], health["digit_max"])
			if bot, ok := health["telegram"].(map[string]interface{}); ok {
				fmt.Fprintf(out, "Telegram bot: @%v\n", bot["username"])
			}
			return nil
		},
	}
}
