package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/presenter"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a skill from the library",
	Long:  `Delete a skill directory from the library. Install statistics are retained.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deleteSkillCmd(cmd, args[0])
	},
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <source-id> <new-id>",
	Short: "Copy a skill to a new id",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		duplicateSkillCmd(cmd, args[0], args[1])
	},
}

func deleteSkillCmd(cmd *cobra.Command, id string) {
	store := newStore()

	if d := decisionProvider(cmd)(fmt.Sprintf("Delete skill %q?", id)); !d.Approved() {
		presenter.Info("Cancelled")
		return
	}

	if err := store.DeleteSkill(cmd.Context(), id); err != nil {
		presenter.Error(err, "Failed to delete skill")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Deleted skill %q", id))
}

func duplicateSkillCmd(cmd *cobra.Command, sourceID, newID string) {
	store := newStore()

	skill, err := store.DuplicateSkill(cmd.Context(), sourceID, newID)
	if err != nil {
		presenter.Error(err, "Failed to duplicate skill")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Duplicated %q to %q", sourceID, skill.ID))
}
