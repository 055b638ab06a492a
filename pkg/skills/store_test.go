package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillhub/pkg/frontmatter"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(WithStaticLibraryPath(t.TempDir()))
	require.NoError(t, err)
	return store
}

func writeSkillDir(t *testing.T, root, id, content string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SkillFileName), []byte(content), 0o644))
}

func TestValidateID(t *testing.T) {
	valid := []string{"a", "ab", "git-helper", "skill-123", "1-2-3", "0day"}
	for _, id := range valid {
		assert.NoError(t, ValidateID(id), id)
	}

	invalid := []string{"", "-leading", "trailing-", "Upper", "has space", "has_underscore", "dots.are.bad", "-"}
	for _, id := range invalid {
		err := ValidateID(id)
		require.Error(t, err, id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
}

func TestCreateAndReadSkill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := frontmatter.Metadata{
		Name:        "Git Helper",
		Description: "Helps with git",
		Author:      "jingkai",
		Version:     "1.0",
		Tags:        []string{"git"},
	}

	created, err := store.CreateSkill(ctx, "git-helper", meta, "# Usage\n\nRun it.")
	require.NoError(t, err)
	assert.Equal(t, "git-helper", created.ID)
	assert.Equal(t, "Git Helper", created.Metadata.Name)
	assert.Equal(t, "1.0", created.Metadata.Version)
	assert.Equal(t, "# Usage\n\nRun it.", created.Body)

	read, err := store.ReadSkill(ctx, "git-helper")
	require.NoError(t, err)
	assert.Equal(t, created.Metadata, read.Metadata)
	assert.Equal(t, created.Body, read.Body)

	t.Run("duplicate id rejected", func(t *testing.T) {
		_, err := store.CreateSkill(ctx, "git-helper", meta, "body")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("invalid id rejected", func(t *testing.T) {
		_, err := store.CreateSkill(ctx, "Bad ID", meta, "body")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("missing skill", func(t *testing.T) {
		_, err := store.ReadSkill(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateSkill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateSkill(ctx, "notes", frontmatter.Metadata{Name: "Notes"}, "v1")
	require.NoError(t, err)

	updated, err := store.UpdateSkill(ctx, "notes", frontmatter.Metadata{Name: "Notes", Description: "updated"}, "v2")
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Metadata.Description)
	assert.Equal(t, "v2", updated.Body)

	_, err = store.UpdateSkill(ctx, "missing", frontmatter.Metadata{Name: "x"}, "body")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteSkillSkipsIDValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	skill, err := store.WriteSkill(ctx, "Weird_Remote.Name", frontmatter.Metadata{Name: "remote"}, "body")
	require.NoError(t, err)
	assert.Equal(t, "Weird_Remote.Name", skill.ID)
}

func TestListSkills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	root := store.LibraryPath()

	writeSkillDir(t, root, "zebra", "---\nname: zebra\n---\nbody")
	writeSkillDir(t, root, "apple", "---\nname: apple\n---\nbody")
	writeSkillDir(t, root, ".hidden", "---\nname: hidden\n---\nbody")

	// A directory without SKILL.md is skipped, not an error
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-dir"), 0o755))
	// Stray files at the root are ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("readme"), 0o644))

	list, err := store.ListSkills(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "apple", list[0].Metadata.Name)
	assert.Equal(t, "zebra", list[1].Metadata.Name)

	t.Run("missing library is empty", func(t *testing.T) {
		empty, err := NewStore(WithStaticLibraryPath(filepath.Join(t.TempDir(), "does-not-exist")))
		require.NoError(t, err)
		list, err := empty.ListSkills(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestDeleteSkill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateSkill(ctx, "doomed", frontmatter.Metadata{Name: "doomed"}, "body")
	require.NoError(t, err)
	require.NoError(t, store.RecordInstall(ctx, "doomed", "1.0"))

	require.NoError(t, store.DeleteSkill(ctx, "doomed"))
	_, err = store.ReadSkill(ctx, "doomed")
	assert.ErrorIs(t, err, ErrNotFound)

	// History survives deletion
	versions, err := store.GetInstalledVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0", versions["doomed"])

	assert.ErrorIs(t, store.DeleteSkill(ctx, "doomed"), ErrNotFound)
}

func TestDuplicateSkill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateSkill(ctx, "original", frontmatter.Metadata{Name: "original"}, "body")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.LibraryPath(), "original", "helper.sh"), []byte("#!/bin/sh\n"), 0o755))

	duplicated, err := store.DuplicateSkill(ctx, "original", "copy")
	require.NoError(t, err)
	assert.Equal(t, "copy", duplicated.ID)
	assert.Equal(t, "original", duplicated.Metadata.Name)
	assert.Contains(t, duplicated.AdditionalFiles, "helper.sh")

	t.Run("occupied destination rejected", func(t *testing.T) {
		_, err := store.DuplicateSkill(ctx, "original", "copy")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := store.DuplicateSkill(ctx, "missing", "fresh")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid new id", func(t *testing.T) {
		_, err := store.DuplicateSkill(ctx, "original", "Not Valid")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestImportFromPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	external := t.TempDir()
	widgetDir := filepath.Join(external, "widget")
	require.NoError(t, os.MkdirAll(widgetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(widgetDir, SkillFileName), []byte("---\nname: widget\n---\nbody"), 0o644))

	first, err := store.ImportFromPath(ctx, widgetDir)
	require.NoError(t, err)
	assert.Equal(t, "widget", first.ID)

	second, err := store.ImportFromPath(ctx, widgetDir)
	require.NoError(t, err)
	assert.Equal(t, "widget-1", second.ID)

	third, err := store.ImportFromPath(ctx, widgetDir)
	require.NoError(t, err)
	assert.Equal(t, "widget-2", third.ID)

	t.Run("missing skill document", func(t *testing.T) {
		bare := filepath.Join(external, "bare")
		require.NoError(t, os.MkdirAll(bare, 0o755))
		_, err := store.ImportFromPath(ctx, bare)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSearchSkills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	root := store.LibraryPath()

	writeSkillDir(t, root, "git-commit", "---\nname: Git Commit\ndescription: Craft commit messages\ntags:\n  - git\n---\n# Commits")
	writeSkillDir(t, root, "code-review", "---\nname: Code Review\ndescription: Review pull requests\n---\nLook at the git diff carefully.")
	writeSkillDir(t, root, "cooking", "---\nname: Cooking\ndescription: Makes pasta\n---\nBoil water.")

	t.Run("matches name description tags and body", func(t *testing.T) {
		results, err := store.SearchSkills(ctx, "git")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "code-review", results[0].ID)
		assert.Equal(t, "git-commit", results[1].ID)
	})

	t.Run("case insensitive", func(t *testing.T) {
		results, err := store.SearchSkills(ctx, "PASTA")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "cooking", results[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := store.SearchSkills(ctx, "kubernetes")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestOnChange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var fired int
	store.OnChange(func() { fired++ })

	_, err := store.CreateSkill(ctx, "watched", frontmatter.Metadata{Name: "watched"}, "body")
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	_, err = store.UpdateSkill(ctx, "watched", frontmatter.Metadata{Name: "watched"}, "body2")
	require.NoError(t, err)
	assert.Equal(t, 2, fired)

	require.NoError(t, store.DeleteSkill(ctx, "watched"))
	assert.Equal(t, 3, fired)
}

func TestSortSkills(t *testing.T) {
	skills := []*Skill{
		{ID: "b", Metadata: frontmatter.Metadata{Name: "Bravo", Author: "zoe"}},
		{ID: "a", Metadata: frontmatter.Metadata{Name: "alpha", Author: "adam"}},
	}

	SortSkills(skills, "name")
	assert.Equal(t, "a", skills[0].ID)

	SortSkills(skills, "author")
	assert.Equal(t, "adam", skills[0].Metadata.Author)
}
