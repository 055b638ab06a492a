package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubURL(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  *Source
	}{
		{
			name:  "full url",
			input: "https://github.com/anthropics/skills",
			want:  &Source{ID: "anthropics/skills", Owner: "anthropics", Repo: "skills", Branch: "main", Label: "anthropics/skills"},
		},
		{
			name:  "full url with trailing slash",
			input: "https://github.com/anthropics/skills/",
			want:  &Source{ID: "anthropics/skills", Owner: "anthropics", Repo: "skills", Branch: "main", Label: "anthropics/skills"},
		},
		{
			name:  "http scheme",
			input: "http://github.com/obra/superpowers",
			want:  &Source{ID: "obra/superpowers", Owner: "obra", Repo: "superpowers", Branch: "main", Label: "obra/superpowers"},
		},
		{
			name:  "tree with branch",
			input: "https://github.com/acme/toolbox/tree/develop",
			want:  &Source{ID: "acme/toolbox", Owner: "acme", Repo: "toolbox", Branch: "develop", Label: "acme/toolbox"},
		},
		{
			name:  "tree with branch and path",
			input: "https://github.com/acme/toolbox/tree/main/skills/public",
			want:  &Source{ID: "acme/toolbox/skills/public", Owner: "acme", Repo: "toolbox", Branch: "main", Path: "skills/public", Label: "acme/toolbox/skills/public"},
		},
		{
			name:  "short form",
			input: "acme/toolbox",
			want:  &Source{ID: "acme/toolbox", Owner: "acme", Repo: "toolbox", Branch: "main", Label: "acme/toolbox"},
		},
		{
			name:  "short form with dots and underscores",
			input: "some_user/repo.name",
			want:  &Source{ID: "some_user/repo.name", Owner: "some_user", Repo: "repo.name", Branch: "main", Label: "some_user/repo.name"},
		},
		{
			name:  "surrounding whitespace",
			input: "  acme/toolbox  ",
			want:  &Source{ID: "acme/toolbox", Owner: "acme", Repo: "toolbox", Branch: "main", Label: "acme/toolbox"},
		},
		{name: "not github host", input: "https://gitlab.com/acme/toolbox"},
		{name: "missing repo", input: "https://github.com/acme"},
		{name: "bare word", input: "toolbox"},
		{name: "too many short segments", input: "a/b/c"},
		{name: "empty", input: ""},
		{name: "spaces inside", input: "acme/tool box"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseGitHubURL(tc.input)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuiltinSources(t *testing.T) {
	sources := BuiltinSources()
	require.Len(t, sources, 2)
	assert.Equal(t, "anthropics/skills", sources[0].ID)
	assert.Equal(t, "obra/superpowers", sources[1].ID)
	for _, src := range sources {
		assert.True(t, src.IsBuiltin)
		assert.Equal(t, DefaultBranch, src.Branch)
	}

	// Mutating the returned slice must not leak into later calls
	sources[0].ID = "mutated"
	assert.Equal(t, "anthropics/skills", BuiltinSources()[0].ID)
}
