package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cclog/internal/core/db"
)

var showFull bool

var showCmd = &cobra.Command{
	Use:   "show <session-uuid>",
	Short: "Show a session's full transcript",
	Long: `Display a session's messages and content blocks in chronological order.

By default long blocks are truncated; pass --full for complete content.

Examples:
  cclog show 3f2a1b0c-4d5e-6f70-8192-a3b4c5d6e7f8
  cclog show 3f2a1b0c-4d5e-6f70-8192-a3b4c5d6e7f8 --full`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showFull, "full", false, "Show complete block content without truncation")
}

func runShow(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	detail, err := database.GetSessionDetail(args[0])
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	fmt.Printf("Session: %s\n", detail.SessionUUID)
	fmt.Printf("Project: %s\n", detail.ProjectPath)
	if detail.Summary != "" {
		fmt.Printf("Summary: %s\n", detail.Summary)
	}
	if !detail.CreatedAt.IsZero() {
		fmt.Printf("Created: %s (%s)\n", detail.CreatedAt.Format("Jan 2, 2006 3:04 PM"), humanize.Time(detail.CreatedAt))
	}
	fmt.Printf("Tokens:  %s in / %s out\n",
		humanize.Comma(int64(detail.TotalInputTokens)), humanize.Comma(int64(detail.TotalOutputTokens)))
	fmt.Printf("Messages: %d\n", len(detail.Messages))
	fmt.Println()

	for _, msg := range detail.Messages {
		header := msg.Type
		if msg.Role != "" && msg.Role != msg.Type {
			header += "/" + msg.Role
		}
		if !msg.Timestamp.IsZero() {
			header += "  " + msg.Timestamp.Format("15:04:05")
		}
		fmt.Printf("--- %s ---\n", header)

		for _, b := range msg.Blocks {
			switch b.BlockType {
			case "tool_use":
				fmt.Printf("[tool_use: %s]\n", b.ToolName)
				if showFull && len(b.ToolInput) > 0 {
					fmt.Println(string(b.ToolInput))
				}
			case "tool_result":
				fmt.Printf("[tool_result: %s]\n", b.ToolUseID)
				printBlockText(b.TextContent)
			case "thinking":
				fmt.Println("[thinking]")
				printBlockText(b.TextContent)
			default:
				printBlockText(b.TextContent)
			}
		}
		fmt.Println()
	}

	return nil
}

func printBlockText(text string) {
	if text == "" {
		return
	}
	if !showFull && len(text) > 500 {
		cut := text[:500]
		if i := strings.LastIndex(cut, "\n"); i > 300 {
			cut = cut[:i]
		}
		fmt.Println(cut)
		fmt.Println("... (truncated, use --full)")
		return
	}
	fmt.Println(text)
}
