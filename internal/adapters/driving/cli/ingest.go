package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/watcher"
)

var (
	ingestID    string
	ingestStdin bool
	ingestWatch string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]...",
	Short: "Ingest plain text documents",
	Long: `Splits each document into overlapping chunks, classifies them
against the theme taxonomy, embeds them and stores the result.
Re-ingesting an existing document id replaces its chunks.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document id (single file or stdin only; default derives from the file name)")
	ingestCmd.Flags().BoolVar(&ingestStdin, "stdin", false, "read document text from stdin")
	ingestCmd.Flags().StringVar(&ingestWatch, "watch", "", "watch a directory and auto-ingest text files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if !ingestStdin && ingestWatch == "" && len(args) == 0 {
		return fmt.Errorf("nothing to ingest: pass files, --stdin or --watch")
	}
	if ingestID != "" && len(args) > 1 {
		return fmt.Errorf("--id applies to a single file only")
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	if ingestStdin {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		id := ingestID
		if id == "" {
			id = uuid.New().String()
		}
		report, err := a.ingest.Ingest(ctx, id, "stdin", string(text))
		if err != nil {
			return err
		}
		printReport(cmd, report)
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id := ingestID
		if id == "" {
			id = watcher.DocumentID(path)
		}
		report, err := a.ingest.Ingest(ctx, id, path, string(data))
		if err != nil {
			return err
		}
		printReport(cmd, report)
	}

	if ingestWatch != "" {
		w := watcher.New(a.ingest, a.documents, ingestWatch)
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
	}

	return nil
}

func printReport(cmd *cobra.Command, report *driving.IngestReport) {
	cmd.Printf("Ingested %s: %d chunks, %d embedded, %d pending\n",
		report.DocumentID, report.Chunks, report.Embedded, report.Failed)
	if report.Cancelled {
		cmd.Println("Ingestion was cancelled; already-produced chunks were kept.")
	}
}
