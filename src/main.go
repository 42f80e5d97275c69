package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yashkumarverma/cronx/src/cron"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cronx",
		Short:        "cronx evaluates cron expressions and runs scheduled commands",
		SilenceUsage: true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newNextCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cronx %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func newNextCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "next EXPR",
		Short: "Print the next firing time of a cron expression",
		Long: "Prints the next firing time of a five field cron expression in local time. " +
			"The expression may be passed quoted or as five separate arguments.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if from != "" {
				t, err := time.Parse(time.RFC3339, from)
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				start = t
			}

			schedule, err := cron.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			next, err := schedule.Next(start)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "RFC3339 instant to search from (default now)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate EXPR",
		Short: "Parse a cron expression and print its field sets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := cron.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "minute:       %s\n", formatField(schedule.Minute(), 0))
			fmt.Fprintf(out, "hour:         %s\n", formatField(schedule.Hour(), 0))
			fmt.Fprintf(out, "day-of-month: %s\n", formatField(schedule.Day(), 0))
			// months are stored zero based
			fmt.Fprintf(out, "month:        %s\n", formatField(schedule.Month(), 1))
			fmt.Fprintf(out, "day-of-week:  %s\n", formatField(schedule.DayOfWeek(), 0))
			return nil
		},
	}
}

func formatField(f cron.Field, offset int) string {
	if f.IsAny() {
		return "*"
	}
	values := f.Values()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v + offset)
	}
	return strings.Join(parts, ",")
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
