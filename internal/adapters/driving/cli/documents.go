package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage ingested documents",
	Long:  `List or delete documents and their stored chunks.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if store == nil {
		return errors.New("store not configured")
	}

	docs, err := store.DocumentStore().ListDocuments(context.Background())
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("%s  %s  (%d pages, updated %s)\n",
			d.ID, d.Name, d.PageCount, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if store == nil {
		return errors.New("store not configured")
	}

	if err := store.DocumentStore().DeleteDocument(context.Background(), args[0]); err != nil {
		return err
	}
	cmd.Println("Deleted.")
	return nil
}
