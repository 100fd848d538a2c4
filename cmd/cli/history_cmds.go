package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect finished downloads",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List finished downloads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(func(ctx context.Context, application *app.Application) error {
			entries, err := application.Shell.History(domain.HistoryFilter{
				Platform: domain.Platform(platform),
				Status:   domain.HistoryStatus(status),
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLATFORM\tSTATUS\tTITLE\tCREATED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					truncate(e.ID, 8),
					e.Platform,
					e.Status,
					truncate(e.DisplayTitle(), 40),
					e.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.Application) error {
			stats, err := application.Shell.HistoryStats()
			if err != nil {
				return err
			}
			fmt.Println("Download Statistics:")
			fmt.Printf("  Total:     %d\n", stats.Total)
			fmt.Printf("  Succeeded: %d\n", stats.Succeeded)
			fmt.Printf("  Fallback:  %d\n", stats.Fallback)
			fmt.Printf("  Failed:    %d\n", stats.Failed)
			return nil
		})
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.Application) error {
			if err := application.Shell.DeleteHistory(args[0]); err != nil {
				return err
			}
			fmt.Println("Entry deleted")
			return nil
		})
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the dark mode preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.Application) error {
			printTheme(application.Shell.DarkMode())
			return nil
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between dark and light mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.Application) error {
			printTheme(application.Shell.ToggleDarkMode())
			return nil
		})
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set [dark]",
	Short: "Set dark mode on (true) or off (false)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dark, err := strconv.ParseBool(args[0])
		if err != nil {
			return fmt.Errorf("invalid value %q: use true or false", args[0])
		}
		return withApp(func(ctx context.Context, application *app.Application) error {
			application.Shell.SetDarkMode(dark)
			printTheme(application.Shell.DarkMode())
			return nil
		})
	},
}

func printTheme(dark bool) {
	if dark {
		fmt.Println("Theme: dark")
		return
	}
	fmt.Println("Theme: light")
}

func init() {
	historyListCmd.Flags().StringP("platform", "p", "", "Filter by platform")
	historyListCmd.Flags().StringP("status", "s", "", "Filter by status (succeeded, fallback, failed)")
	historyListCmd.Flags().IntP("limit", "n", 0, "Maximum number of entries (default from config)")

	historyCmd.AddCommand(historyListCmd, historyStatsCmd, historyRmCmd)
	themeCmd.AddCommand(themeToggleCmd, themeSetCmd)
}
