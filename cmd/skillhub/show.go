package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/presenter"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a skill's metadata and body",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showSkillCmd(cmd, args[0])
	},
}

func showSkillCmd(cmd *cobra.Command, id string) {
	store := newStore()

	skill, err := store.ReadSkill(cmd.Context(), id)
	if err != nil {
		presenter.Error(err, "Failed to read skill")
		os.Exit(1)
	}

	presenter.Section(skill.Metadata.Name)
	presenter.Info(fmt.Sprintf("ID:          %s", skill.ID))
	presenter.Info(fmt.Sprintf("Description: %s", skill.Metadata.Description))
	if skill.Metadata.Author != "" {
		presenter.Info(fmt.Sprintf("Author:      %s", skill.Metadata.Author))
	}
	if skill.Metadata.Version != "" {
		presenter.Info(fmt.Sprintf("Version:     %s", skill.Metadata.Version))
	}
	if len(skill.Metadata.Tags) > 0 {
		presenter.Info(fmt.Sprintf("Tags:        %s", strings.Join(skill.Metadata.Tags, ", ")))
	}
	if len(skill.AdditionalFiles) > 0 {
		presenter.Info(fmt.Sprintf("Files:       %s", strings.Join(skill.AdditionalFiles, ", ")))
	}
	if skill.InstallCount > 0 {
		presenter.Info(fmt.Sprintf("Installs:    %d (last %s)", skill.InstallCount, skill.LastInstalledAt.Format("2006-01-02")))
	}
	presenter.Separator()
	fmt.Println(skill.Body)
}
