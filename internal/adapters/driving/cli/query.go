package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/domain"
)

var (
	queryTopK      int
	queryMinScore  float64
	queryThemes    []string
	queryDocuments []string
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Rank stored chunks by similarity to a query",
	Long: `Embeds the query text and returns the top-k stored chunks by cosine
similarity. Scope filters restrict candidates before ranking, so top-k
always reflects the filtered population.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "n", 5, "maximum number of results")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", 0, "minimum cosine similarity, in [-1, 1]")
	queryCmd.Flags().StringArrayVar(&queryThemes, "theme", nil, "restrict to theme id (repeatable)")
	queryCmd.Flags().StringArrayVar(&queryDocuments, "document", nil, "restrict to document id (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.search.Search(cmd.Context(), args[0], domain.QueryOptions{
		TopK:        queryTopK,
		MinScore:    queryMinScore,
		ThemeIDs:    queryThemes,
		DocumentIDs: queryDocuments,
	})
	if err != nil {
		return err
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(result.Hits) == 0 {
		cmd.Println("No results found.")
	}
	for i, hit := range result.Hits {
		cmd.Printf("  [%d] %s#%d (%.3f)\n", i+1, hit.Chunk.DocumentID, hit.Chunk.Position, hit.Score)
		if hit.Chunk.Assignment != nil && !hit.Chunk.Assignment.Unclassified() {
			cmd.Printf("      Theme: %s (%.2f)\n", hit.Chunk.Assignment.ThemeID, hit.Chunk.Assignment.Confidence)
		}
		cmd.Printf("      %s\n\n", snippet(hit.Chunk.Content, 200))
	}
	if result.Pending > 0 {
		cmd.Printf("Note: %d chunks are awaiting embedding and were excluded.\n", result.Pending)
	}
	return nil
}

// snippet truncates content for terminal display.
func snippet(content string, max int) string {
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
