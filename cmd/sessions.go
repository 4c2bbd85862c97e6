package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/minichat/minichat/internal/backend"
	"github.com/minichat/minichat/internal/chat"
	"github.com/minichat/minichat/internal/chat/config"
	"github.com/minichat/minichat/internal/chat/session"
	"github.com/spf13/cobra"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage conversation sessions",
	Long: `Manage conversation sessions including listing, viewing, and deleting sessions.

Sessions allow you to maintain conversation history across multiple interactions.`,
}

// sessionsListCmd represents the sessions list command
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Long:  `List all conversation sessions sorted by most recently updated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := session.ListSessions()
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			fmt.Println("\nCreate a new session with:")
			fmt.Println("  minichat chat --new-session \"your message\"")
			return nil
		}

		// Print table header
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tTURNS\tNAME")
		fmt.Fprintln(w, "--\t-------\t-----\t----")

		// Print each session
		for _, sess := range sessions {
			name := sess.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				sess.GetShortID(),
				sess.CreatedAt.Format("2006-01-02"),
				sess.TurnCount(),
				name,
			)
		}
		w.Flush()

		fmt.Println("\nUse 'minichat sessions show <id>' to view session details.")
		return nil
	},
}

// sessionsShowCmd represents the sessions show command
var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show session details and history",
	Long: `Show detailed information about a session including all turns.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Find session by prefix
		sess, err := session.FindSessionByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}

		// Print session info
		fmt.Printf("Session: %s\n", sess.ID)
		if sess.Name != "" {
			fmt.Printf("Name: %s\n", sess.Name)
		}
		fmt.Printf("Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated: %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Turns: %d\n", sess.TurnCount())
		fmt.Println()

		// Print conversation history
		if len(sess.Turns) == 0 {
			fmt.Println("No turns in this session.")
			return nil
		}

		fmt.Println("Conversation History:")
		fmt.Println("---------------------")
		for i, turn := range sess.Turns {
			timestamp := time.UnixMilli(turn.Timestamp).Format("2006-01-02 15:04:05")
			fmt.Printf("\n[%d] %s (%s):\n%s\n",
				i+1,
				turn.Role.DisplayName(),
				timestamp,
				turn.Content,
			)
		}

		fmt.Printf("\nContinue this session with:\n  minichat chat -s %s \"your message\"\n", sess.GetShortID())
		return nil
	},
}

// sessionsDeleteCmd represents the sessions delete command
var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Long: `Delete a conversation session permanently.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent session.

Warning: This action cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Find session by prefix
		sess, err := session.FindSessionByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}

		// Confirm deletion
		fmt.Printf("Are you sure you want to delete session %s? [y/N]: ", sess.GetShortID())
		var response string
		fmt.Scanln(&response)

		if response != "y" && response != "Y" {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		// Delete the session
		if err := session.DeleteSession(sess.ID); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}

		fmt.Printf("Session %s deleted successfully.\n", sess.GetShortID())
		return nil
	},
}

// sessionsRenameCmd represents the sessions rename command
var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a session",
	Long: `Rename a conversation session.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent session.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Find session by prefix
		sess, err := session.FindSessionByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}

		// Update session name
		sess.Name = args[1]

		// Save session
		if err := session.SaveSession(sess); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		fmt.Printf("Session %s renamed to \"%s\".\n", sess.GetShortID(), args[1])
		return nil
	},
}

// sessionsClearCmd represents the sessions clear command
var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete old sessions",
	Long: `Delete old conversation sessions permanently.

By default, deletes sessions created more than 30 days ago.
Use --before to specify a different date, or --all to delete all sessions.

Warning: This action cannot be undone.

Examples:
  minichat sessions clear                      # Delete sessions older than 30 days (default)
  minichat sessions clear --before 2026-01-01  # Delete sessions created before 2026-01-01
  minichat sessions clear --before 2026-06     # Delete sessions created before 2026-06-01
  minichat sessions clear --all                # Delete all sessions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		beforeDateStr, _ := cmd.Flags().GetString("before")
		deleteAll, _ := cmd.Flags().GetBool("all")

		sessions, err := session.ListSessions()
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions to delete.")
			return nil
		}

		// Determine filter behavior
		var sessionsToDelete []session.Session
		var beforeDate time.Time
		var retentionDays int

		if deleteAll {
			// Delete all sessions
			sessionsToDelete = sessions
		} else {
			if beforeDateStr != "" {
				// Parse the before date
				beforeDate, err = parseDate(beforeDateStr)
				if err != nil {
					return fmt.Errorf("parsing date: %w", err)
				}
			} else {
				// Load config to get retention days
				cfg, err := config.LoadConfig()
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				retentionDays = cfg.SessionRetentionDays
				beforeDate = time.Now().AddDate(0, 0, -retentionDays)
			}

			// Filter sessions created before the specified date
			for _, sess := range sessions {
				if sess.CreatedAt.Before(beforeDate) {
					sessionsToDelete = append(sessionsToDelete, sess)
				}
			}

			if len(sessionsToDelete) == 0 {
				fmt.Printf("No sessions found created before %s.\n", beforeDate.Format("2006-01-02"))
				return nil
			}
		}

		// Confirm deletion
		if deleteAll {
			fmt.Printf("Are you sure you want to delete all %d sessions? [y/N]: ", len(sessionsToDelete))
		} else if beforeDateStr != "" {
			fmt.Printf("Are you sure you want to delete %d sessions created before %s? [y/N]: ",
				len(sessionsToDelete), beforeDate.Format("2006-01-02"))
		} else {
			fmt.Printf("Are you sure you want to delete %d sessions older than %d days (created before %s)? [y/N]: ",
				len(sessionsToDelete), retentionDays, beforeDate.Format("2006-01-02"))
		}
		var response string
		fmt.Scanln(&response)

		if response != "y" && response != "Y" {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		// Delete sessions
		deleted := 0
		failed := 0
		for _, sess := range sessionsToDelete {
			if err := session.DeleteSession(sess.ID); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to delete session %s: %v\n", sess.GetShortID(), err)
				failed++
			} else {
				deleted++
			}
		}

		fmt.Printf("Successfully deleted %d sessions", deleted)
		if failed > 0 {
			fmt.Printf(" (%d failed)", failed)
		}
		fmt.Println(".")
		return nil
	},
}

// parseDate parses a date string in various formats and returns a time.Time
// Supported formats: YYYY-MM-DD, YYYY-MM, YYYY
func parseDate(dateStr string) (time.Time, error) {
	// Try YYYY-MM-DD format
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}

	// Try YYYY-MM format (use first day of month)
	if t, err := time.Parse("2006-01", dateStr); err == nil {
		return t, nil
	}

	// Try YYYY format (use first day of year)
	if t, err := time.Parse("2006", dateStr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD, YYYY-MM, or YYYY)", dateStr)
}

// sessionsStartCmd represents the sessions start command
var sessionsStartCmd = &cobra.Command{
	Use:   "start [session-id]",
	Short: "Start an interactive session",
	Long: `Start an interactive chat session with continuous conversation.

You can either start a new session or continue an existing one by providing its ID.
The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent session.

Examples:
  minichat sessions start                # Start a new interactive session
  minichat sessions start 550e8400       # Continue session 550e8400 in interactive mode
  minichat sessions start latest         # Continue latest session in interactive mode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		var sess *session.Session

		// Check if session ID is provided
		if len(args) > 0 {
			// Find session by prefix
			sess, err = session.FindSessionByPrefix(args[0])
			if err != nil {
				return fmt.Errorf("finding session: %w", err)
			}

			if verbose {
				fmt.Fprintf(os.Stderr, "Continuing session: %s\n", sess.GetShortID())
			}
		} else {
			// Create new session
			sess = session.NewSession()

			if verbose {
				fmt.Fprintf(os.Stderr, "Creating new session: %s\n", sess.GetShortID())
			}

			// Save the new session
			if err := session.SaveSession(sess); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Session created: %s\n", sess.GetShortID())
			sessionDir, _ := session.GetSessionDir()
			fmt.Fprintf(os.Stderr, "Path: %s/%s.json\n\n", sessionDir, sess.ID)
		}

		// Start interactive mode
		if err := runInteractiveMode(cmd, cfg, sess); err != nil {
			return fmt.Errorf("interactive mode: %w", err)
		}

		return nil
	},
}

// runInteractiveMode starts an interactive chat session
func runInteractiveMode(cmd *cobra.Command, cfg *config.Config, sess *session.Session) error {
	client := backend.NewClient(cfg)
	client.SetChunked(cfg.TypingEffect)
	client.SetDebug(verbose)

	// The renderer for the current turn; reassigned before each submit so
	// the controller's partial hook stops the spinner on the first reveal.
	var onPartial func(string)
	ctrl := chat.NewController(client, chat.WithOnPartial(func(text string) {
		onPartial(text)
	}))
	ctrl.Resume(sess.Turns)

	// Print session header
	fmt.Fprintf(os.Stderr, "\n=== Interactive Session [%s] ===\n", sess.GetShortID())
	fmt.Fprintf(os.Stderr, "Service: %s\n", cfg.BaseURL)
	fmt.Fprintf(os.Stderr, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
	fmt.Fprintf(os.Stderr, "===================================\n\n")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		// Display prompt
		fmt.Fprint(os.Stderr, "You> ")

		// Read input
		if !scanner.Scan() {
			// EOF (Ctrl+D) or error
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			// Clean EOF
			fmt.Fprintln(os.Stderr, "\nGoodbye!")
			break
		}

		input := strings.TrimSpace(scanner.Text())

		// Skip empty input
		if input == "" {
			continue
		}

		// Handle special commands
		if strings.HasPrefix(input, "/") {
			if handleSpecialCommand(input, ctrl, sess) {
				// Continue loop if command was handled
				continue
			}
			// Exit if command returned false
			break
		}

		// Start spinner; the first partial reveal stops it
		done := make(chan bool)
		var stopOnce sync.Once
		stopSpinner := func() {
			stopOnce.Do(func() {
				done <- true
				close(done)
			})
		}
		go showSpinner(done)

		tw := &typewriter{}
		headerPrinted := false
		onPartial = func(text string) {
			stopSpinner()
			if !headerPrinted {
				fmt.Print("\nAssistant> ")
				headerPrinted = true
			}
			tw.print(text)
		}

		turn, err := ctrl.Submit(cmd.Context(), input)
		stopSpinner()

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		} else {
			if !headerPrinted {
				fmt.Print("\nAssistant> ")
			}
			tw.finish(turn.Content)
			fmt.Println()
		}

		// Save session after each turn; the history keeps the user turn
		// even when the call failed, so the session stays resumable.
		sess.SetTurns(ctrl.History())
		if err := session.SaveSession(sess); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
	}

	return nil
}

// handleSpecialCommand processes special commands in interactive mode
// Returns true to continue the loop, false to exit
func handleSpecialCommand(command string, ctrl *chat.Controller, sess *session.Session) bool {
	command = strings.ToLower(strings.TrimSpace(command))

	switch command {
	case "/help", "/h":
		fmt.Fprintln(os.Stderr, "\nAvailable commands:")
		fmt.Fprintln(os.Stderr, "  /help, /h     - Show this help message")
		fmt.Fprintln(os.Stderr, "  /info, /i     - Show session information")
		fmt.Fprintln(os.Stderr, "  /reset        - Clear the conversation history")
		fmt.Fprintln(os.Stderr, "  /clear, /c    - Clear screen (Unix/Linux only)")
		fmt.Fprintln(os.Stderr, "  /exit, /quit  - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "  Ctrl+D        - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "")
		return true

	case "/info", "/i":
		fmt.Fprintln(os.Stderr, "\nSession Information:")
		fmt.Fprintf(os.Stderr, "  ID: %s\n", sess.GetShortID())
		fmt.Fprintf(os.Stderr, "  Full ID: %s\n", sess.ID)
		if sess.Name != "" {
			fmt.Fprintf(os.Stderr, "  Name: %s\n", sess.Name)
		}
		fmt.Fprintf(os.Stderr, "  Turns: %d\n", len(ctrl.History()))
		fmt.Fprintf(os.Stderr, "  Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(os.Stderr, "")
		return true

	case "/reset":
		// Clearing the history is destructive and must be confirmed
		fmt.Fprintf(os.Stderr, "Clear all %d turns of this conversation? [y/N]: ", len(ctrl.History()))
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(os.Stderr, "Reset cancelled.")
			return true
		}
		if err := ctrl.Clear(true); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return true
		}
		sess.SetTurns(ctrl.History())
		if err := session.SaveSession(sess); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
		fmt.Fprintln(os.Stderr, "Conversation history cleared.")
		return true

	case "/clear", "/c":
		// Clear screen (Unix/Linux)
		fmt.Print("\033[H\033[2J")
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(os.Stderr, "Goodbye!")
		return false

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	sessionsCmd.AddCommand(sessionsStartCmd)

	// sessionsClearCmd flags
	sessionsClearCmd.Flags().String("before", "", "Delete only sessions created before this date (format: YYYY-MM-DD, YYYY-MM, or YYYY)")
	sessionsClearCmd.Flags().Bool("all", false, "Delete all sessions (overrides retention days setting)")
}
