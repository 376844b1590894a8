package cli

import (
	"github.com/spf13/cobra"
)

var reembedCmd = &cobra.Command{
	Use:   "reembed [document-id]",
	Short: "Retry embedding for pending chunks",
	Long: `Retries embedding for chunks stored without a vector after an earlier
partial failure. Without an argument, every pending chunk in the store
is retried.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReembed,
}

func init() {
	rootCmd.AddCommand(reembedCmd)
}

func runReembed(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	documentID := ""
	if len(args) == 1 {
		documentID = args[0]
	}

	report, err := a.ingest.Reembed(cmd.Context(), documentID)
	if err != nil {
		return err
	}

	cmd.Printf("Re-embedded %d chunks, %d still pending\n", report.Embedded, report.Failed)
	return nil
}
