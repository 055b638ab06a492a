package targets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillhub/pkg/decision"
	"github.com/jingkaihe/skillhub/pkg/frontmatter"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

func newTestBridge(t *testing.T, opts ...BridgeOption) (*Bridge, *skills.Store, string) {
	t.Helper()
	store, err := skills.NewStore(skills.WithStaticLibraryPath(t.TempDir()))
	require.NoError(t, err)

	workspace := t.TempDir()
	base := []BridgeOption{WithWorkspaceRoot(func() (string, error) { return workspace, nil })}
	bridge := NewBridge(store, append(base, opts...)...)
	return bridge, store, workspace
}

func createLibrarySkill(t *testing.T, store *skills.Store, id string) *skills.Skill {
	t.Helper()
	skill, err := store.CreateSkill(context.Background(), id, frontmatter.Metadata{Name: id}, "# "+id)
	require.NoError(t, err)
	return skill
}

func TestLookup(t *testing.T) {
	for _, id := range []string{"claude", "cursor", "codex", "github"} {
		format, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, id, format.ID)
	}

	_, ok := Lookup("vscode")
	assert.False(t, ok)
}

func TestImportToRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("claude layout", func(t *testing.T) {
		bridge, store, workspace := newTestBridge(t)
		skill := createLibrarySkill(t, store, "git-helper")

		dest, err := bridge.ImportToRepo(ctx, skill, "claude")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(workspace, ".claude", "skills", "git-helper"), dest)
		assert.FileExists(t, filepath.Join(dest, skills.SkillFileName))
	})

	t.Run("codex scaffold directories", func(t *testing.T) {
		bridge, store, workspace := newTestBridge(t)
		skill := createLibrarySkill(t, store, "planner")

		// Pre-seed one scaffold dir with content to confirm it is kept
		seeded := filepath.Join(workspace, ".codex", "skills", "planner", "scripts")
		require.NoError(t, os.MkdirAll(seeded, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(seeded, "run.sh"), []byte("#!/bin/sh\n"), 0o755))

		dest, err := bridge.ImportToRepo(ctx, skill, "codex")
		require.NoError(t, err)
		for _, sub := range []string{"agents", "scripts", "references", "assets"} {
			assert.DirExists(t, filepath.Join(dest, sub))
		}
		assert.FileExists(t, filepath.Join(dest, "scripts", "run.sh"))
	})

	t.Run("unknown format", func(t *testing.T) {
		bridge, store, _ := newTestBridge(t)
		skill := createLibrarySkill(t, store, "whatever")

		_, err := bridge.ImportToRepo(ctx, skill, "vscode")
		assert.ErrorContains(t, err, "unknown target format")
	})

	t.Run("no workspace", func(t *testing.T) {
		store, err := skills.NewStore(skills.WithStaticLibraryPath(t.TempDir()))
		require.NoError(t, err)
		bridge := NewBridge(store, WithWorkspaceRoot(func() (string, error) {
			return "", errors.New("not in a project")
		}))
		skill := createLibrarySkill(t, store, "lost")

		_, err = bridge.ImportToRepo(ctx, skill, "claude")
		assert.ErrorIs(t, err, ErrNoWorkspace)
	})

	t.Run("declined overwrite is cancelled", func(t *testing.T) {
		bridge, store, _ := newTestBridge(t, WithDecisionProvider(decision.AlwaysCancel))
		skill := createLibrarySkill(t, store, "twice")

		_, err := bridge.ImportToRepo(ctx, skill, "claude")
		require.NoError(t, err)

		_, err = bridge.ImportToRepo(ctx, skill, "claude")
		assert.ErrorIs(t, err, decision.ErrCancelled)
	})

	t.Run("approved overwrite replaces content", func(t *testing.T) {
		bridge, store, workspace := newTestBridge(t)
		skill := createLibrarySkill(t, store, "evolving")

		_, err := bridge.ImportToRepo(ctx, skill, "claude")
		require.NoError(t, err)

		updated, err := store.UpdateSkill(ctx, "evolving", frontmatter.Metadata{Name: "evolving", Description: "v2"}, "second")
		require.NoError(t, err)

		dest, err := bridge.ImportToRepo(ctx, updated, "claude")
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dest, skills.SkillFileName))
		require.NoError(t, err)
		assert.Contains(t, string(content), "second")
		assert.Equal(t, filepath.Join(workspace, ".claude", "skills", "evolving"), dest)
	})
}

func TestImportMultipleToRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("all succeed", func(t *testing.T) {
		bridge, store, _ := newTestBridge(t)
		list := []*skills.Skill{
			createLibrarySkill(t, store, "one"),
			createLibrarySkill(t, store, "two"),
		}

		completed, err := bridge.ImportMultipleToRepo(ctx, list, "claude")
		require.NoError(t, err)
		assert.Len(t, completed, 2)
	})

	t.Run("partial progress on failure", func(t *testing.T) {
		bridge, store, workspace := newTestBridge(t, WithDecisionProvider(decision.AlwaysCancel))
		list := []*skills.Skill{
			createLibrarySkill(t, store, "first"),
			createLibrarySkill(t, store, "blocked"),
		}

		// Occupy the second destination so its overwrite prompt is declined
		require.NoError(t, os.MkdirAll(filepath.Join(workspace, ".claude", "skills", "blocked"), 0o755))

		completed, err := bridge.ImportMultipleToRepo(ctx, list, "claude")
		require.ErrorIs(t, err, decision.ErrCancelled)
		require.Len(t, completed, 1)
		assert.Contains(t, completed[0], "first")
	})
}

func TestExportToLibrary(t *testing.T) {
	ctx := context.Background()
	bridge, _, workspace := newTestBridge(t)

	projectSkill := filepath.Join(workspace, ".claude", "skills", "homegrown")
	require.NoError(t, os.MkdirAll(projectSkill, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(projectSkill, skills.SkillFileName),
		[]byte("---\nname: homegrown\n---\nbody"), 0o644))

	imported, err := bridge.ExportToLibrary(ctx, &skills.Skill{ID: "homegrown", DirPath: projectSkill})
	require.NoError(t, err)
	assert.Equal(t, "homegrown", imported.ID)

	again, err := bridge.ExportToLibrary(ctx, &skills.Skill{ID: "homegrown", DirPath: projectSkill})
	require.NoError(t, err)
	assert.Equal(t, "homegrown-1", again.ID)
}
