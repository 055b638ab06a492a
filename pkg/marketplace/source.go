// Package marketplace discovers skills published in remote GitHub
// repositories and installs them into the local library. It walks a
// repository's recursive tree listing, fetches SKILL.md documents, and
// caches per-source results with a time-to-live.
package marketplace

import (
	"regexp"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/frontmatter"
)

// DefaultBranch is assumed when a source URL does not name one.
const DefaultBranch = "main"

// Source points at a GitHub repository, optionally scoped to a
// subdirectory. ID is "owner/repo" or "owner/repo/path".
type Source struct {
	ID        string
	Owner     string
	Repo      string
	Branch    string
	Path      string
	Label     string
	IsBuiltin bool
}

var builtinSources = []Source{
	{ID: "anthropics/skills", Owner: "anthropics", Repo: "skills", Branch: DefaultBranch, Label: "Anthropic Skills", IsBuiltin: true},
	{ID: "obra/superpowers", Owner: "obra", Repo: "superpowers", Branch: DefaultBranch, Label: "Superpowers", IsBuiltin: true},
}

// BuiltinSources returns the sources that ship with skillhub.
func BuiltinSources() []Source {
	out := make([]Source, len(builtinSources))
	copy(out, builtinSources)
	return out
}

var (
	githubURLPattern = regexp.MustCompile(`^https?://github\.com/([^/\s]+)/([^/\s]+)(?:/tree/([^/\s]+)(?:/(.+))?)?$`)
	shortFormPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// ParseGitHubURL parses a full GitHub URL
// (https://github.com/owner/repo[/tree/branch[/path...]]) or the short
// "owner/repo" form into a Source. It returns nil for anything else,
// including non-GitHub hosts.
func ParseGitHubURL(input string) *Source {
	input = strings.TrimSpace(input)
	input = strings.TrimRight(input, "/")

	if m := githubURLPattern.FindStringSubmatch(input); m != nil {
		src := &Source{Owner: m[1], Repo: m[2], Branch: DefaultBranch, Path: m[4]}
		if m[3] != "" {
			src.Branch = m[3]
		}
		src.ID = src.Owner + "/" + src.Repo
		if src.Path != "" {
			src.ID += "/" + src.Path
		}
		src.Label = src.ID
		return src
	}

	if m := shortFormPattern.FindStringSubmatch(input); m != nil {
		id := m[1] + "/" + m[2]
		return &Source{ID: id, Owner: m[1], Repo: m[2], Branch: DefaultBranch, Label: id}
	}

	return nil
}

// RemoteSkill is a skill discovered in a remote source. ID derives from the
// immediate parent directory of the document path, or the repo name when the
// document sits at the repository root.
type RemoteSkill struct {
	ID          string
	Metadata    frontmatter.Metadata
	Body        string
	Source      Source
	RepoPath    string
	DownloadURL string
}
