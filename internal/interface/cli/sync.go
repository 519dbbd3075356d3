package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cclog/internal/core/config"
	"cclog/internal/core/db"
	"cclog/internal/core/importer"
)

var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Import/sync Claude Code session logs",
	Long: `Import session logs from ~/.claude/projects/ or a specified directory.

Performs incremental sync - entries at or before each project's import
watermark are skipped, and duplicate message UUIDs are ignored, so running
sync repeatedly never creates duplicate rows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sourcePath := cfg.ProjectsDir
	if len(args) > 0 {
		sourcePath = args[0]
	}

	fmt.Printf("Syncing session logs from: %s\n", sourcePath)
	fmt.Printf("Database: %s\n\n", dbPath)

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	total, err := countJSONLFiles(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}

	if total == 0 {
		fmt.Println("No session log files found")
		return nil
	}

	imp := importer.New(database)
	progress := importer.NewProgressReporter(os.Stdout, total)

	res, err := imp.ImportDirectory(sourcePath, progress)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	progress.Finish()

	fmt.Printf("Imported %d message(s) from %d file(s) (%d skipped, %d content block(s))\n",
		res.MessagesImported, res.FilesImported, res.MessagesSkipped, res.BlocksImported)

	return nil
}

func countJSONLFiles(dirPath string) (int, error) {
	count := 0
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".jsonl" {
			count++
		}
		return nil
	})
	return count, err
}
