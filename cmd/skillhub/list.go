package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills in the library",
	Long:  `List all skills in the library with their descriptions and install counts.`,
	Run: func(cmd *cobra.Command, _ []string) {
		sortBy, _ := cmd.Flags().GetString("sort")
		if sortBy == "" {
			sortBy = viper.GetString("sort_by")
		}
		listSkillsCmd(cmd, sortBy)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search skills by name, description, tags, or body",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		searchSkillsCmd(cmd, args[0])
	},
}

func init() {
	listCmd.Flags().String("sort", "", "Sort order: name, lastModified, or author")
}

func listSkillsCmd(cmd *cobra.Command, sortBy string) {
	store := newStore()

	list, err := store.ListSkills(cmd.Context())
	if err != nil {
		presenter.Error(err, "Failed to list skills")
		os.Exit(1)
	}

	if len(list) == 0 {
		presenter.Info("No skills in the library. Create one with 'skillhub create' or browse the marketplace.")
		return
	}

	skills.SortSkills(list, sortBy)
	printSkillTable(list)
}

func searchSkillsCmd(cmd *cobra.Command, query string) {
	store := newStore()

	matches, err := store.SearchSkills(cmd.Context(), query)
	if err != nil {
		presenter.Error(err, "Failed to search skills")
		os.Exit(1)
	}

	if len(matches) == 0 {
		presenter.Info(fmt.Sprintf("No skills match %q", query))
		return
	}

	printSkillTable(matches)
}

func printSkillTable(list []*skills.Skill) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tINSTALLS")
	for _, skill := range list {
		installs := ""
		if skill.InstallCount > 0 {
			installs = fmt.Sprintf("%d", skill.InstallCount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			skill.ID, skill.Metadata.Name, truncate(skill.Metadata.Description, 60), installs)
	}
	w.Flush()
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
