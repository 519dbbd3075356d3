package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cclog/internal/core/db"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Display statistics about the cclog database.

Shows session, message, and content block counts, token totals, date
ranges, and storage info.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	stats, err := database.GetStats()
	if err != nil {
		return fmt.Errorf("failed to gather stats: %w", err)
	}

	fmt.Println("Database Statistics")
	fmt.Println("===================")
	fmt.Println()

	fmt.Printf("Total Sessions:  %s\n", humanize.Comma(int64(stats.TotalSessions)))
	fmt.Printf("Total Messages:  %s\n", humanize.Comma(int64(stats.TotalMessages)))
	fmt.Printf("Content Blocks:  %s\n", humanize.Comma(int64(stats.TotalBlocks)))
	fmt.Printf("Input Tokens:    %s\n", humanize.Comma(stats.TotalInputTokens))
	fmt.Printf("Output Tokens:   %s\n", humanize.Comma(stats.TotalOutputTokens))
	fmt.Println()

	if len(stats.BlocksByType) > 0 {
		fmt.Println("Blocks by type:")
		types := make([]string, 0, len(stats.BlocksByType))
		for t := range stats.BlocksByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Printf("  %-12s %s\n", t, humanize.Comma(int64(stats.BlocksByType[t])))
		}
		fmt.Println()
	}

	if stats.TotalSessions > 0 {
		if !stats.OldestSession.IsZero() {
			fmt.Printf("Oldest Session:  %s\n", stats.OldestSession.Format("Jan 2, 2006 3:04 PM"))
		}
		if !stats.NewestSession.IsZero() {
			fmt.Printf("Newest Session:  %s\n", stats.NewestSession.Format("Jan 2, 2006 3:04 PM"))
		}
		fmt.Println()

		if stats.MostActiveProject != "" {
			fmt.Println("Most Active Project:")
			fmt.Printf("  Path:     %s\n", stats.MostActiveProject)
			fmt.Printf("  Sessions: %d\n", stats.MostActiveProjectCount)
			fmt.Println()
		}
	}

	fileInfo, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	fmt.Printf("Database Location: %s\n", dbPath)
	fmt.Printf("Database Size:     %s\n", humanize.Bytes(uint64(fileInfo.Size())))

	return nil
}
