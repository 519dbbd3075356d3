package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cbroglie/mustache"
	"github.com/spf13/cobra"

	"cclog/internal/core/config"
	"cclog/internal/core/db"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <session-uuid>",
	Short: "Export a session to markdown",
	Long: `Export a Claude Code session to a markdown file.

By default exports to the current directory as session-<uuid>.md.
Use --output to specify a custom path, or "-" to write to stdout.

The output is rendered from a mustache template; drop a custom one at
~/.config/cclog/export_template.md to override the default.

Examples:
  cclog export 0ccfddc4-00e7-443a-bb82-58ede5936619
  cclog export 0ccfddc4-00e7-443a-bb82-58ede5936619 -o session.md
  cclog export 0ccfddc4-00e7-443a-bb82-58ede5936619 -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: session-<uuid>.md, \"-\" for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	sessionUUID := args[0]

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	detail, err := database.GetSessionDetail(sessionUUID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	rendered, err := mustache.Render(cfg.ExportTemplate, exportData(detail))
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if exportOutput == "-" {
		fmt.Print(rendered)
		return nil
	}

	outputPath := exportOutput
	if outputPath == "" {
		shortID := sessionUUID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		outputPath = fmt.Sprintf("session-%s.md", shortID)
	}
	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Printf("Exported session to: %s\n", outputPath)
	return nil
}

// exportData shapes a session detail for the mustache export template
func exportData(detail *db.SessionDetail) map[string]interface{} {
	messages := make([]map[string]interface{}, 0, len(detail.Messages))
	for _, msg := range detail.Messages {
		blocks := make([]map[string]interface{}, 0, len(msg.Blocks))
		for _, b := range msg.Blocks {
			blocks = append(blocks, map[string]interface{}{
				"text_content":   b.TextContent,
				"tool_name":      b.ToolName,
				"tool_input":     string(b.ToolInput),
				"is_text":        b.BlockType == "text",
				"is_thinking":    b.BlockType == "thinking",
				"is_tool_use":    b.BlockType == "tool_use",
				"is_tool_result": b.BlockType == "tool_result",
			})
		}
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = msg.Timestamp.Format("2006-01-02 15:04:05")
		}
		messages = append(messages, map[string]interface{}{
			"type":      msg.Type,
			"timestamp": timestamp,
			"blocks":    blocks,
		})
	}

	return map[string]interface{}{
		"session_uuid":        detail.SessionUUID,
		"project_path":        detail.ProjectPath,
		"summary":             detail.Summary,
		"created_at":          detail.CreatedAt.Format("2006-01-02 15:04:05"),
		"total_input_tokens":  detail.TotalInputTokens,
		"total_output_tokens": detail.TotalOutputTokens,
		"messages":            messages,
	}
}
