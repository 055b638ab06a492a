package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/frontmatter"
	"github.com/jingkaihe/skillhub/pkg/presenter"
)

var createCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a new skill in the library",
	Long: `Create a new skill in the library. The id becomes the skill's directory
name and must be lowercase alphanumerics with inner hyphens.

Examples:
  skillhub create react-hooks --name "React Hooks" --description "Best practices"
  skillhub create deploy --name Deploy --description "Deploy checklist" --tags ops,ci`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		createSkillCmd(cmd, args[0])
	},
}

func init() {
	createCmd.Flags().String("name", "", "Display name (defaults to the id)")
	createCmd.Flags().String("description", "", "Short description")
	createCmd.Flags().StringSlice("tags", nil, "Comma-separated tags")
	createCmd.Flags().String("author", "", "Author")
	createCmd.Flags().String("skill-version", "", "Skill version")
	createCmd.Flags().String("license", "", "License identifier")
	createCmd.Flags().String("body", "", "Markdown body (defaults to a heading)")
}

func createSkillCmd(cmd *cobra.Command, id string) {
	store := newStore()

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = id
	}
	description, _ := cmd.Flags().GetString("description")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	author, _ := cmd.Flags().GetString("author")
	skillVersion, _ := cmd.Flags().GetString("skill-version")
	license, _ := cmd.Flags().GetString("license")
	body, _ := cmd.Flags().GetString("body")
	if body == "" {
		body = fmt.Sprintf("# %s\n\n%s", name, description)
	}

	meta := frontmatter.Metadata{
		Name:        name,
		Description: description,
		Tags:        tags,
		Author:      author,
		Version:     skillVersion,
		License:     license,
	}

	skill, err := store.CreateSkill(cmd.Context(), id, meta, body)
	if err != nil {
		presenter.Error(err, "Failed to create skill")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Created skill %q at %s", skill.ID, skill.DirPath))
}
