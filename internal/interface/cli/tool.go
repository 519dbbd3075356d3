package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cclog/internal/core/db"
	"cclog/internal/core/search"
)

var toolCmd = &cobra.Command{
	Use:   "tool <tool_use_id>",
	Short: "Show a tool invocation and its result",
	Long: `Look up a tool invocation by its correlation id.

Shows the tool_use block (name and input) together with the tool_result
blocks that carry the same tool_use_id, even when they live in different
messages.

Examples:
  cclog tool toolu_01AbCdEfGhIjKlMnOpQrStUv`,
	Args: cobra.ExactArgs(1),
	RunE: runTool,
}

func init() {
	rootCmd.AddCommand(toolCmd)
}

func runTool(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	use, results, err := search.ToolInvocation(database, args[0])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if use != nil {
		fmt.Printf("Tool: %s\n", use.ToolName)
		if len(use.ToolInput) > 0 {
			fmt.Printf("Input:\n%s\n", string(use.ToolInput))
		}
	} else {
		fmt.Println("No tool_use block recorded for this id")
	}

	if len(results) == 0 {
		fmt.Println("\nNo tool_result blocks recorded for this id")
		return nil
	}

	for i, r := range results {
		fmt.Printf("\nResult %d:\n", i+1)
		if r.TextContent != "" {
			fmt.Println(r.TextContent)
		}
	}

	return nil
}
