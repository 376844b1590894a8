package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var themesDocument string

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Report the thematic structure of the stored corpus",
	Long: `Classifies any chunks that still lack an assignment and prints
per-theme chunk counts, character volume and mean confidence.
Chunks below the confidence floor land in the Unclassified group.`,
	RunE: runThemes,
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the active taxonomy",
	RunE:  runThemesList,
}

func init() {
	themesCmd.Flags().StringVar(&themesDocument, "document", "", "restrict the report to one document")
	themesCmd.AddCommand(themesListCmd)
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	groups, err := a.themes.Report(cmd.Context(), themesDocument)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		cmd.Println("No chunks stored.")
		return nil
	}

	cmd.Printf("%-28s %8s %10s %12s\n", "Theme", "Chunks", "Chars", "Confidence")
	for _, g := range groups {
		cmd.Printf("%-28s %8d %10d %12.2f\n", g.Label, g.ChunkCount, g.CharVolume, g.MeanConfidence)
	}
	return nil
}

func runThemesList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, theme := range a.themes.Themes() {
		cmd.Printf("%s (%s)\n", theme.Label, theme.ID)
		cmd.Printf("  triggers: %s\n", strings.Join(theme.Triggers, ", "))
	}
	return nil
}
