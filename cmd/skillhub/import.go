package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/presenter"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a skill directory into the library",
	Long: `Import a skill directory (containing a SKILL.md) into the library.
If the skill's id is already taken, a numeric suffix is appended.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		importSkillCmd(cmd, args[0])
	},
}

func importSkillCmd(cmd *cobra.Command, path string) {
	store := newStore()

	abs, err := filepath.Abs(path)
	if err != nil {
		presenter.Error(err, "Invalid path")
		os.Exit(1)
	}

	skill, err := store.ImportFromPath(cmd.Context(), abs)
	if err != nil {
		presenter.Error(err, "Failed to import skill")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Imported %q as %q", abs, skill.ID))
}
