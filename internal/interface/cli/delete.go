package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cclog/internal/core/db"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <session-uuid>",
	Short: "Delete a session and all its data",
	Long: `Delete a session from the database.

Removes the session row, its messages, content blocks, and search index
entries. This cannot be undone; the original .jsonl files are untouched.

Examples:
  cclog delete 0ccfddc4-00e7-443a-bb82-58ede5936619
  cclog delete 0ccfddc4-00e7-443a-bb82-58ede5936619 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	sessionUUID := args[0]

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	session, err := database.GetSession(sessionUUID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	if !deleteForce {
		fmt.Printf("Delete session %s?\n", session.SessionUUID)
		if session.Summary != "" {
			fmt.Printf("  Summary:  %s\n", truncateText(session.Summary, 80))
		}
		fmt.Printf("  Project:  %s\n", session.ProjectPath)
		fmt.Printf("  Messages: %d\n", session.MessageCount)
		fmt.Print("Type 'yes' to confirm: ")

		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := database.DeleteSession(sessionUUID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("Deleted session %s\n", sessionUUID)
	return nil
}
