package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillhub/pkg/decision"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/jingkaihe/skillhub/pkg/targets"
)

var exportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export skills from the library into the current project",
	Long: `Export one or more library skills into the current project under the
target format's skills directory (for example .claude/skills). Use --all to
export every skill in the library.`,
	Run: func(cmd *cobra.Command, args []string) {
		exportSkillsCmd(cmd, args)
	},
}

func init() {
	exportCmd.Flags().String("target", "", "Target format (claude, cursor, codex, github)")
	exportCmd.Flags().Bool("all", false, "Export every skill in the library")
}

func exportSkillsCmd(cmd *cobra.Command, ids []string) {
	store := newStore()
	bridge := newBridge(store, cmd)

	targetFormat, _ := cmd.Flags().GetString("target")
	if targetFormat == "" {
		targetFormat = viper.GetString("default_target")
	}

	all, _ := cmd.Flags().GetBool("all")
	if !all && len(ids) == 0 {
		presenter.Error(errors.New("no skills specified"), "Pass skill ids or --all")
		os.Exit(1)
	}

	var list []*skills.Skill
	if all {
		var err error
		list, err = store.ListSkills(cmd.Context())
		if err != nil {
			presenter.Error(err, "Failed to list skills")
			os.Exit(1)
		}
	} else {
		for _, id := range ids {
			skill, err := store.ReadSkill(cmd.Context(), id)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to read skill %q", id))
				os.Exit(1)
			}
			list = append(list, skill)
		}
	}

	if len(list) == 0 {
		presenter.Info("Nothing to export")
		return
	}

	completed, err := bridge.ImportMultipleToRepo(cmd.Context(), list, targetFormat)
	for _, dest := range completed {
		presenter.Success(fmt.Sprintf("Exported to %s", dest))
	}
	if err != nil {
		if errors.Is(err, decision.ErrCancelled) {
			presenter.Info("Cancelled")
			if len(completed) > 0 {
				presenter.Info(fmt.Sprintf("%d skill(s) exported before cancelling", len(completed)))
			}
			return
		}
		if errors.Is(err, targets.ErrNoWorkspace) {
			presenter.Error(err, "Run this command inside a project directory")
			os.Exit(1)
		}
		presenter.Error(err, "Export failed")
		os.Exit(1)
	}

	if len(completed) > 1 {
		presenter.Info(fmt.Sprintf("Exported %d skills (%s)", len(completed), strings.Join(skillIDs(list), ", ")))
	}
}

func skillIDs(list []*skills.Skill) []string {
	ids := make([]string, 0, len(list))
	for _, skill := range list {
		ids = append(ids, skill.ID)
	}
	return ids
}
