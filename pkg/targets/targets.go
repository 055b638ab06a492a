// Package targets implements the import/export bridge between the skill
// library and per-project target-format directories such as .claude/skills.
package targets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillhub/pkg/decision"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

// ErrNoWorkspace reports that no project root is available for an export.
var ErrNoWorkspace = errors.New("no workspace root available")

// TargetFormat describes where a project expects skill documents to live
// and which scaffold subdirectories each imported skill should pre-create.
type TargetFormat struct {
	ID           string
	SkillsDir    string
	ScaffoldDirs []string
}

var builtinFormats = []TargetFormat{
	{ID: "claude", SkillsDir: filepath.Join(".claude", "skills")},
	{ID: "cursor", SkillsDir: filepath.Join(".cursor", "skills")},
	{ID: "codex", SkillsDir: filepath.Join(".codex", "skills"), ScaffoldDirs: []string{"agents", "scripts", "references", "assets"}},
	{ID: "github", SkillsDir: filepath.Join(".github", "skills")},
}

// Formats returns the supported target formats.
func Formats() []TargetFormat {
	out := make([]TargetFormat, len(builtinFormats))
	copy(out, builtinFormats)
	return out
}

// Lookup returns the target format with the given id.
func Lookup(id string) (TargetFormat, bool) {
	for _, format := range builtinFormats {
		if format.ID == id {
			return format, true
		}
	}
	return TargetFormat{}, false
}

// Bridge copies skill directories between the library and a project's
// target-format tree.
type Bridge struct {
	store         *skills.Store
	workspaceRoot func() (string, error)
	decide        decision.Provider
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithWorkspaceRoot sets the project-root resolver.
func WithWorkspaceRoot(fn func() (string, error)) BridgeOption {
	return func(b *Bridge) {
		b.workspaceRoot = fn
	}
}

// WithDecisionProvider sets the confirmation capability used when an export
// destination already exists.
func WithDecisionProvider(p decision.Provider) BridgeOption {
	return func(b *Bridge) {
		b.decide = p
	}
}

// NewBridge creates a bridge over the given store. The workspace root
// defaults to the current working directory and confirmations default to
// proceed.
func NewBridge(store *skills.Store, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		store:         store,
		workspaceRoot: os.Getwd,
		decide:        decision.AlwaysProceed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ImportToRepo copies a skill into <root>/<format.SkillsDir>/<id> and
// pre-creates the format's scaffold subdirectories. An occupied destination
// requires an overwrite confirmation; declining returns
// decision.ErrCancelled.
func (b *Bridge) ImportToRepo(ctx context.Context, skill *skills.Skill, targetFormatID string) (string, error) {
	format, ok := Lookup(targetFormatID)
	if !ok {
		return "", errors.Errorf("unknown target format %q", targetFormatID)
	}

	root, err := b.workspaceRoot()
	if err != nil || root == "" {
		return "", errors.Wrap(ErrNoWorkspace, "cannot resolve project root")
	}

	dest := filepath.Join(root, format.SkillsDir, skill.ID)
	if _, err := os.Stat(dest); err == nil {
		d := b.decide(fmt.Sprintf("%s already exists in %s. Overwrite it?", skill.ID, format.SkillsDir))
		if !d.Approved() {
			return "", decision.ErrCancelled
		}
	}

	if err := skills.CopyDir(skill.DirPath, dest); err != nil {
		return "", errors.Wrapf(err, "failed to copy skill %q", skill.ID)
	}

	for _, sub := range format.ScaffoldDirs {
		scaffold := filepath.Join(dest, sub)
		if _, err := os.Stat(scaffold); err == nil {
			continue
		}
		if err := os.MkdirAll(scaffold, 0o755); err != nil {
			return "", errors.Wrapf(err, "failed to create scaffold directory %s", sub)
		}
	}

	logger.G(ctx).WithField("skill", skill.ID).WithField("target", targetFormatID).Debug("exported skill to project")
	return dest, nil
}

// ImportMultipleToRepo applies ImportToRepo per skill sequentially. On
// failure the destinations completed so far are returned alongside the
// error so callers can report partial progress.
func (b *Bridge) ImportMultipleToRepo(ctx context.Context, list []*skills.Skill, targetFormatID string) ([]string, error) {
	var completed []string
	for _, skill := range list {
		dest, err := b.ImportToRepo(ctx, skill, targetFormatID)
		if err != nil {
			return completed, errors.Wrapf(err, "failed to export skill %q", skill.ID)
		}
		completed = append(completed, dest)
	}
	return completed, nil
}

// ExportToLibrary copies a project skill into the library using the store's
// collision-safe import, returning the resulting library skill (possibly
// under a suffixed id).
func (b *Bridge) ExportToLibrary(ctx context.Context, skill *skills.Skill) (*skills.Skill, error) {
	return b.store.ImportFromPath(ctx, skill.DirPath)
}
