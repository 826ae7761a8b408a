package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
	Long:  `List, create, rename, favorite, or delete chat sessions and their messages.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, favorites first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsCreate,
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename [session-id] [title]",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsRename,
}

var sessionsFavoriteCmd = &cobra.Command{
	Use:   "favorite [session-id] [true|false]",
	Short: "Pin or unpin a session",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSessionsFavorite,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsMessagesCmd = &cobra.Command{
	Use:   "messages [session-id]",
	Short: "Print a session's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsMessages,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsCreateCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsFavoriteCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsMessagesCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.List(context.Background())
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions.")
		return nil
	}

	for _, s := range sessions {
		marker := " "
		if s.Favorite {
			marker = "*"
		}
		cmd.Printf("%s %s  %s  (updated %s)\n",
			marker, s.ID, s.Title, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSessionsCreate(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	title := strings.Join(args, " ")
	session, err := sessionService.Create(context.Background(), title)
	if err != nil {
		return err
	}

	cmd.Printf("Created session %s (%q)\n", session.ID, session.Title)
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Rename(context.Background(), args[0], args[1]); err != nil {
		return err
	}
	cmd.Println("Renamed.")
	return nil
}

func runSessionsFavorite(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	favorite := true
	if len(args) == 2 {
		parsed, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid favorite value %q", args[1])
		}
		favorite = parsed
	}

	if err := sessionService.SetFavorite(context.Background(), args[0], favorite); err != nil {
		return err
	}
	if favorite {
		cmd.Println("Favorited.")
	} else {
		cmd.Println("Unfavorited.")
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	cmd.Println("Deleted.")
	return nil
}

func runSessionsMessages(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	messages, err := sessionService.Messages(context.Background(), args[0])
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		cmd.Println("No messages.")
		return nil
	}

	for _, m := range messages {
		cmd.Printf("[%s] %s: %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.Sender, m.Content)
	}
	return nil
}
