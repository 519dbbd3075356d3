package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cclog/internal/core/db"
)

var (
	listLimit   int
	listProject string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported sessions",
	Long: `List all imported Claude Code sessions in reverse chronological order.

Shows session summaries, project paths, message counts, and timestamps.

Examples:
  cclog list
  cclog list --limit 10
  cclog list --project /path/to/project`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of sessions to display")
	listCmd.Flags().StringVar(&listProject, "project", "", "Filter by project path")
}

func runList(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	sessions, err := database.ListSessions(listProject, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		if listProject != "" {
			fmt.Printf("No sessions found for project: %s\n", listProject)
		} else {
			fmt.Println("No sessions found. Run 'cclog sync' to import session logs.")
		}
		return nil
	}

	fmt.Printf("Showing %d session(s)", len(sessions))
	if listProject != "" {
		fmt.Printf(" for project: %s", listProject)
	}
	fmt.Println()
	fmt.Println()

	for i, s := range sessions {
		fmt.Printf("[%d] %s\n", i+1, s.SessionUUID)
		if s.Summary != "" {
			fmt.Printf("    Summary:  %s\n", truncateText(s.Summary, 80))
		}
		fmt.Printf("    Project:  %s\n", s.ProjectPath)
		fmt.Printf("    Messages: %d\n", s.MessageCount)
		if s.TotalInputTokens > 0 || s.TotalOutputTokens > 0 {
			fmt.Printf("    Tokens:   %s in / %s out\n",
				humanize.Comma(int64(s.TotalInputTokens)), humanize.Comma(int64(s.TotalOutputTokens)))
		}
		if !s.UpdatedAt.IsZero() {
			fmt.Printf("    Updated:  %s\n", humanize.Time(s.UpdatedAt))
		}
		if !s.CreatedAt.IsZero() {
			fmt.Printf("    Created:  %s\n", humanize.Time(s.CreatedAt))
		}
		fmt.Println()
	}

	return nil
}
