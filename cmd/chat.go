package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/minichat/minichat/internal/backend"
	"github.com/minichat/minichat/internal/chat"
	"github.com/minichat/minichat/internal/chat/config"
	"github.com/minichat/minichat/internal/chat/session"
	"github.com/spf13/cobra"
)

var (
	useEditor       bool
	plainOutput     bool
	sessionID       string
	newSession      bool
	sessionName     string
	ignoreThreshold bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message to the chat service",
	Long: `Send a message to the chat service and print the answer.

Without session flags this performs a single-shot call with no history.
With --session or --new-session the full conversation history is replayed
to the service on each turn.

For interactive multi-turn conversations, use 'minichat sessions start' instead.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.

When typing_effect is enabled the service returns the answer pre-split into
fragments and the client reveals them with a fixed delay; --plain disables
the effect and requests the complete answer in one piece.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration from file
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// Validate session flags
		if sessionID != "" && newSession {
			return fmt.Errorf("cannot specify both --session and --new-session")
		}

		// Get message from arguments, editor, or stdin
		var message string
		if useEditor {
			message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		} else if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			// Read from stdin
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = strings.TrimSpace(string(input))
		}

		client := newClient(cfg)

		// Single-shot mode (no session)
		if sessionID == "" && !newSession {
			return runSingleShot(cmd, client, message)
		}

		// Determine session
		var sess *session.Session
		var isNewSession bool

		if sessionID != "" {
			// Load existing session
			sess, err = session.FindSessionByPrefix(sessionID)
			if err != nil {
				return fmt.Errorf("finding session: %w", err)
			}

			// Check message threshold
			threshold := cfg.SessionMessageThreshold
			if threshold > 0 && sess.TurnCount() >= threshold && !ignoreThreshold {
				fmt.Fprintf(os.Stderr, "\nWarning: Session %s has %d turns (threshold: %d).\n",
					sess.GetShortID(), sess.TurnCount(), threshold)
				fmt.Fprintf(os.Stderr, "Long sessions may impact performance and token usage.\n")
				fmt.Fprintf(os.Stderr, "\nOptions:\n")
				fmt.Fprintf(os.Stderr, "  1. Continue anyway with --ignore-threshold flag\n")
				fmt.Fprintf(os.Stderr, "  2. Start a new session: minichat chat --new-session\n\n")

				// Ask for confirmation
				fmt.Fprint(os.Stderr, "Continue with this session? [y/N]: ")
				var response string
				fmt.Scanln(&response)

				if response != "y" && response != "Y" {
					fmt.Fprintln(os.Stderr, "Cancelled.")
					return nil
				}
			}

			if verbose {
				fmt.Fprintf(os.Stderr, "Continuing session: %s\n", sess.GetShortID())
			}
		} else {
			// Create new session
			isNewSession = true
			sess = session.NewSession()
			sess.Name = sessionName

			if verbose {
				fmt.Fprintf(os.Stderr, "Creating new session: %s\n", sess.GetShortID())
			}
		}

		// Run one turn through the session controller
		tw := &typewriter{}
		ctrl := chat.NewController(client, chat.WithOnPartial(tw.print))
		ctrl.Resume(sess.Turns)

		turn, submitErr := ctrl.Submit(cmd.Context(), message)

		// The history keeps the user turn even when the call failed, so the
		// session stays resumable.
		sess.SetTurns(ctrl.History())
		if err := session.SaveSession(sess); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		if submitErr != nil {
			return fmt.Errorf("chat request failed: %s", userMessage(submitErr))
		}

		tw.finish(turn.Content)

		// If new session, print session info
		if isNewSession {
			fmt.Fprintf(os.Stderr, "\nSession created: %s\n", sess.GetShortID())
			sessionDir, _ := session.GetSessionDir()
			fmt.Fprintf(os.Stderr, "Path: %s/%s.json\n", sessionDir, sess.ID)
			fmt.Fprintf(os.Stderr, "\nNext time, use:\n  minichat chat -s %s \"your message\"\n", sess.GetShortID())
			fmt.Fprintf(os.Stderr, "For interactive mode, use:\n  minichat sessions start %s\n", sess.GetShortID())
		}

		return nil
	},
}

// runSingleShot sends a prompt without history and renders the payload.
func runSingleShot(cmd *cobra.Command, client *backend.Client, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message must not be empty")
	}

	payload, err := client.SendPrompt(cmd.Context(), strings.TrimSpace(message))
	if err != nil {
		return fmt.Errorf("chat request failed: %s", userMessage(err))
	}

	tw := &typewriter{}
	var final string
	deliverer := chat.NewDeliverer()
	err = deliverer.Deliver(cmd.Context(), payload, tw.print, func(text string, _ int64) {
		final = text
	})
	if err != nil {
		return fmt.Errorf("delivering answer: %w", err)
	}
	tw.finish(final)
	return nil
}

// newClient builds a backend client honoring the typing-effect setting.
func newClient(cfg *config.Config) *backend.Client {
	client := backend.NewClient(cfg)
	client.SetChunked(cfg.TypingEffect && !plainOutput)
	client.SetDebug(verbose)
	return client
}

// userMessage extracts the user-visible text from a tagged chat error.
func userMessage(err error) string {
	var ce *chat.Error
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}
	return err.Error()
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "minichat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	// Open the editor
	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %v", err)
	}

	// Read the edited content
	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %v", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	// Add command options
	chatCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")
	chatCmd.Flags().BoolVar(&plainOutput, "plain", false, "Disable the typing effect and fetch the complete answer at once")

	// Session flags
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID (short or full UUID, or 'latest' for most recent session)")
	chatCmd.Flags().BoolVarP(&newSession, "new-session", "n", false, "Create a new session")
	chatCmd.Flags().StringVar(&sessionName, "session-name", "", "Name for the new session (optional)")
	chatCmd.Flags().BoolVar(&ignoreThreshold, "ignore-threshold", false, "Ignore session message threshold warning")
}
