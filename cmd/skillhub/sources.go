package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/presenter"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage marketplace sources",
	Run: func(cmd *cobra.Command, args []string) {
		listSources(cmd)
	},
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a GitHub repository as a source",
	Long: `Add a GitHub repository as a marketplace source. Accepts full URLs
(https://github.com/owner/repo, optionally /tree/branch/path) and the short
owner/repo form.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addSource(cmd, args[0])
	},
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <source-id>",
	Short: "Remove a custom source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		removeSource(cmd, args[0])
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
}

func listSources(cmd *cobra.Command) {
	store := newStore()
	client := newMarketplaceClient(store, cmd)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tBRANCH\tPATH\tTYPE")
	for _, src := range client.GetSources() {
		kind := "custom"
		if src.IsBuiltin {
			kind = "builtin"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", src.ID, src.Label, src.Branch, src.Path, kind)
	}
	w.Flush()
}

func addSource(cmd *cobra.Command, rawURL string) {
	store := newStore()
	client := newMarketplaceClient(store, cmd)

	if err := client.AddCustomSource(rawURL); err != nil {
		presenter.Error(err, "Failed to add source")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Added source %q", rawURL))
}

func removeSource(cmd *cobra.Command, sourceID string) {
	store := newStore()
	client := newMarketplaceClient(store, cmd)

	if err := client.RemoveCustomSource(sourceID); err != nil {
		presenter.Error(err, "Failed to remove source")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Removed source %q", sourceID))
}
