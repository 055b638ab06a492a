package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/decision"
	"github.com/jingkaihe/skillhub/pkg/marketplace"
	"github.com/jingkaihe/skillhub/pkg/presenter"
)

var marketplaceCmd = &cobra.Command{
	Use:     "marketplace",
	Aliases: []string{"mp"},
	Short:   "Browse and install skills from GitHub sources",
}

var marketplaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills available from all sources",
	Run: func(cmd *cobra.Command, args []string) {
		marketplaceList(cmd)
	},
}

var marketplaceInstallCmd = &cobra.Command{
	Use:   "install <id>",
	Short: "Install a marketplace skill into the library",
	Long: `Install a marketplace skill into the library. The skill is looked up
across all configured sources; use --source to scope the lookup to one.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		marketplaceInstall(cmd, args[0])
	},
}

var marketplaceUpdateCmd = &cobra.Command{
	Use:   "update [id...]",
	Short: "Update installed marketplace skills",
	Long: `Re-fetch installed skills from their sources and overwrite the local
copies without prompting. With no arguments every installed skill that is
still published is updated.`,
	Run: func(cmd *cobra.Command, args []string) {
		marketplaceUpdate(cmd, args)
	},
}

func init() {
	marketplaceListCmd.Flags().Bool("force", false, "Bypass the source cache")
	marketplaceListCmd.Flags().String("source", "", "Only list skills from this source id")
	marketplaceInstallCmd.Flags().Bool("force", false, "Bypass the source cache")
	marketplaceInstallCmd.Flags().String("source", "", "Only look in this source id")
	marketplaceUpdateCmd.Flags().Bool("force", false, "Bypass the source cache")

	marketplaceCmd.AddCommand(marketplaceListCmd)
	marketplaceCmd.AddCommand(marketplaceInstallCmd)
	marketplaceCmd.AddCommand(marketplaceUpdateCmd)
	marketplaceCmd.AddCommand(sourcesCmd)
}

func marketplaceList(cmd *cobra.Command) {
	store := newStore()
	client := newMarketplaceClient(store, cmd)
	force, _ := cmd.Flags().GetBool("force")
	sourceID, _ := cmd.Flags().GetString("source")

	var remotes []*marketplace.RemoteSkill
	if sourceID != "" {
		src, ok := findSource(client, sourceID)
		if !ok {
			presenter.Error(errors.Errorf("unknown source %q", sourceID), "Check 'skillhub marketplace sources'")
			os.Exit(1)
		}
		var err error
		remotes, err = client.FetchSource(cmd.Context(), src, force)
		if err != nil {
			reportFetchError(err)
			os.Exit(1)
		}
	} else {
		remotes = client.FetchAll(cmd.Context(), force)
	}

	if len(remotes) == 0 {
		presenter.Info("No skills found")
		return
	}

	installed, err := client.GetInstalledVersionMap(cmd.Context())
	if err != nil {
		presenter.Error(err, "Failed to read install ledger")
		os.Exit(1)
	}
	installedIDs, err := client.GetInstalledIDs(cmd.Context())
	if err != nil {
		presenter.Error(err, "Failed to list installed skills")
		os.Exit(1)
	}
	installedSet := make(map[string]bool, len(installedIDs))
	for _, id := range installedIDs {
		installedSet[id] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tSOURCE\tSTATUS")
	for _, remote := range remotes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			remote.ID,
			truncate(remote.Metadata.Name, 30),
			remote.Metadata.Version,
			remote.Source.ID,
			installStatus(remote, installedSet, installed),
		)
	}
	w.Flush()
}

func installStatus(remote *marketplace.RemoteSkill, installedSet map[string]bool, versions map[string]string) string {
	if !installedSet[remote.ID] {
		return ""
	}
	local, ok := versions[remote.ID]
	if ok && local != "" && remote.Metadata.Version != "" && local != remote.Metadata.Version {
		return fmt.Sprintf("update available (%s)", local)
	}
	return "installed"
}

func marketplaceInstall(cmd *cobra.Command, id string) {
	store := newStore()
	client := newMarketplaceClient(store, cmd)
	force, _ := cmd.Flags().GetBool("force")
	sourceID, _ := cmd.Flags().GetString("source")

	var remote *marketplace.RemoteSkill
	var ok bool
	if sourceID != "" {
		src, found := findSource(client, sourceID)
		if !found {
			presenter.Error(errors.Errorf("unknown source %q", sourceID), "Check 'skillhub marketplace sources'")
			os.Exit(1)
		}
		remotes, err := client.FetchSource(cmd.Context(), src, force)
		if err != nil {
			reportFetchError(err)
			os.Exit(1)
		}
		for _, r := range remotes {
			if r.ID == id {
				remote, ok = r, true
				break
			}
		}
	} else {
		remote, ok = findRemoteSkill(cmd, client, id, force)
	}
	if !ok {
		presenter.Error(errors.Errorf("skill %q not found in any source", id), "Check 'skillhub marketplace list'")
		os.Exit(1)
	}

	skill, err := client.InstallSkill(cmd.Context(), remote)
	if err != nil {
		if errors.Is(err, decision.ErrCancelled) {
			presenter.Info("Cancelled")
			return
		}
		presenter.Error(err, "Failed to install skill")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Installed %q from %s", skill.ID, remote.Source.ID))
}

func marketplaceUpdate(cmd *cobra.Command, ids []string) {
	store := newStore()
	client := newMarketplaceClient(store, cmd)
	force, _ := cmd.Flags().GetBool("force")

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	if len(ids) == 0 {
		installed, err := client.GetInstalledIDs(cmd.Context())
		if err != nil {
			presenter.Error(err, "Failed to list installed skills")
			os.Exit(1)
		}
		for _, id := range installed {
			wanted[id] = true
		}
	}
	if len(wanted) == 0 {
		presenter.Info("Nothing installed to update")
		return
	}

	updated := 0
	for _, remote := range client.FetchAll(cmd.Context(), force) {
		if !wanted[remote.ID] {
			continue
		}
		if _, err := client.UpdateSkillSilently(cmd.Context(), remote); err != nil {
			presenter.Error(err, fmt.Sprintf("Failed to update %q", remote.ID))
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Updated %q", remote.ID))
		delete(wanted, remote.ID)
		updated++
	}

	for id := range wanted {
		presenter.Warning(fmt.Sprintf("Skill %q is not published by any configured source", id))
	}
	if updated == 0 {
		presenter.Info("No skills updated")
	}
}

func findSource(client *marketplace.Client, sourceID string) (marketplace.Source, bool) {
	for _, src := range client.GetSources() {
		if src.ID == sourceID {
			return src, true
		}
	}
	return marketplace.Source{}, false
}

func findRemoteSkill(cmd *cobra.Command, client *marketplace.Client, id string, force bool) (*marketplace.RemoteSkill, bool) {
	for _, remote := range client.FetchAll(cmd.Context(), force) {
		if remote.ID == id {
			return remote, true
		}
	}
	return nil, false
}

func reportFetchError(err error) {
	var rateLimit *marketplace.RateLimitError
	if errors.As(err, &rateLimit) {
		presenter.Error(err, "GitHub rate limit hit")
		return
	}
	presenter.Error(err, "Failed to fetch source")
}
