package cli

import (
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentPurgeCmd = &cobra.Command{
	Use:   "purge [id]",
	Short: "Remove a document and all its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentPurge,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentPurgeCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.documents.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	cmd.Printf("%-32s %10s %-10s %s\n", "ID", "Chars", "Language", "Ingested")
	for _, doc := range docs {
		cmd.Printf("%-32s %10d %-10s %s\n", doc.ID, doc.CharCount, doc.Language, doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	doc, err := a.documents.Get(ctx, args[0])
	if err != nil {
		return err
	}
	chunks, err := a.documents.Chunks(ctx, args[0])
	if err != nil {
		return err
	}

	cmd.Printf("ID:       %s\n", doc.ID)
	cmd.Printf("URI:      %s\n", doc.URI)
	cmd.Printf("Chars:    %d\n", doc.CharCount)
	cmd.Printf("Ingested: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Chunks:   %d\n\n", len(chunks))

	for _, chunk := range chunks {
		state := "embedded"
		if !chunk.Embedded() {
			state = "pending"
		}
		cmd.Printf("  #%d [%d:%d] %s", chunk.Position, chunk.StartOffset, chunk.EndOffset, state)
		if chunk.Assignment != nil && !chunk.Assignment.Unclassified() {
			cmd.Printf(" theme=%s(%.2f)", chunk.Assignment.ThemeID, chunk.Assignment.Confidence)
		}
		cmd.Printf("\n      %s\n", snippet(chunk.Content, 120))
	}
	return nil
}

func runDocumentPurge(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.documents.Purge(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Purged %s\n", args[0])
	return nil
}
