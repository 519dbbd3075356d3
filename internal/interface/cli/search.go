package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cclog/internal/core/db"
	"cclog/internal/core/search"
)

var (
	searchLimit int
	searchCode  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search session logs using full-text search",
	Long: `Search through all imported Claude Code session logs.

Uses FTS5 full-text search with porter stemming for natural language.
Pass --code to search the code-optimized index, which skips stemming so
identifiers like getUserById match exactly.

The query can embed filters:
  project:<path>      only matches from projects containing <path>
  after:<date>        only matches after <date> (natural dates work)
  before:<date>       only matches before <date>

Examples:
  cclog search "authentication implementation"
  cclog search "error handling" --limit 10
  cclog search "retry project:myapp after:yesterday"
  cclog search --code "handleRequest"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of results to show")
	searchCmd.Flags().BoolVar(&searchCode, "code", false, "Search the code-optimized index (no stemming)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	var results []search.Result
	if searchCode {
		results, err = search.SearchCode(database, query, searchLimit)
	} else {
		filters := search.ParseQuery(query)
		results, err = search.SearchWithFilters(database, filters, searchLimit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No results found for: %s\n", query)
		return nil
	}

	fmt.Printf("Found %d match(es) for: %s\n\n", len(results), query)

	for i, r := range results {
		fmt.Printf("[%d] %s\n", i+1, r.SessionUUID)
		if r.SessionSummary != "" {
			fmt.Printf("    Session: %s\n", truncateText(r.SessionSummary, 80))
		}
		fmt.Printf("    Project: %s\n", r.ProjectPath)
		if r.Timestamp != "" {
			fmt.Printf("    When:    %s\n", r.Timestamp)
		}
		fmt.Printf("    %s [%s]\n", truncateText(r.Snippet, 200), r.BlockType)
		fmt.Println()
	}

	return nil
}

// truncateText truncates long text for display, breaking at a word boundary
func truncateText(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	truncated := s[:maxLen]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen-20 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
