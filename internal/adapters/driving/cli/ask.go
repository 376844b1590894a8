package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/domain"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question grounded on the stored corpus",
	Long: `Retrieves the most similar chunks and composes an answer through the
configured generation model. The ranked passages are the only context
the model receives.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 5, "number of context passages")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, result, err := a.search.Ask(cmd.Context(), args[0], domain.QueryOptions{TopK: askTopK})
	if err != nil {
		return err
	}

	cmd.Println(answer)
	if len(result.Hits) > 0 {
		cmd.Println("\nSources:")
		for i, hit := range result.Hits {
			cmd.Printf("  [%d] %s#%d (%.3f)\n", i+1, hit.Chunk.DocumentID, hit.Chunk.Position, hit.Score)
		}
	}
	if result.Pending > 0 {
		cmd.Printf("\nNote: %d chunks are awaiting embedding and were excluded.\n", result.Pending)
	}
	return nil
}
