// Package skills owns the local skill library: a directory of skill
// subdirectories, each holding a SKILL.md document plus optional sibling
// files. It provides CRUD, search, collision-safe import, and the
// install-statistics ledger persisted beside the library.
package skills

import (
	"time"

	"github.com/jingkaihe/skillhub/pkg/frontmatter"
)

// SkillFileName is the canonical primary-document filename within a skill's
// directory.
const SkillFileName = "SKILL.md"

// Skill is one stored skill document. InstallCount and LastInstalledAt are
// zero unless an install-statistics entry exists for the id.
type Skill struct {
	ID              string
	Metadata        frontmatter.Metadata
	Body            string
	DirPath         string
	FilePath        string
	LastModified    time.Time
	AdditionalFiles []string
	InstallCount    int
	LastInstalledAt time.Time
}
