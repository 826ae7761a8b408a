package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatNew bool

var chatCmd = &cobra.Command{
	Use:   "chat [session-id] [message]",
	Short: "Chat with your documents",
	Long: `Sends a message within a chat session. Relevant document chunks are
retrieved and handed to the configured model along with the session
history. Use --new to start a session first:

  askdocs chat --new "Project questions"
  askdocs chat <session-id> "What does the design doc say about retries?"`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "create a new session; the first argument becomes its title")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatNew {
		return runChatNew(cmd, args)
	}

	if len(args) != 2 {
		return errors.New("usage: askdocs chat <session-id> <message>")
	}
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	sessionID, message := args[0], args[1]

	ctx := context.Background()
	reply, err := chatService.Send(ctx, sessionID, message)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(reply.Content)
	return nil
}

func runChatNew(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	title := strings.Join(args, " ")
	session, err := sessionService.Create(context.Background(), title)
	if err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}

	cmd.Printf("Created session %s (%q)\n", session.ID, session.Title)
	return nil
}
