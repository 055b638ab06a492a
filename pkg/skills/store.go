package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jingkaihe/skillhub/pkg/frontmatter"
	"github.com/jingkaihe/skillhub/pkg/logger"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateID checks a skill id against the id grammar: lowercase
// alphanumerics and inner hyphens, no leading or trailing hyphen.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return nil
}

// Store manages the skill library directory and its install-statistics
// ledger. The library path is resolved on every operation so live
// configuration changes take effect without rebuilding the store.
type Store struct {
	libraryPath func() string
	now         func() time.Time

	mu        sync.Mutex
	listeners []func()
}

// Option configures a Store.
type Option func(*Store)

// WithLibraryPath sets the resolver for the library root directory.
func WithLibraryPath(fn func() string) Option {
	return func(s *Store) {
		s.libraryPath = fn
	}
}

// WithStaticLibraryPath pins the library root to a fixed directory.
func WithStaticLibraryPath(dir string) Option {
	return WithLibraryPath(func() string { return dir })
}

// WithClock sets the time source used for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a skill store. Without options the library lives at
// ~/.skillhub/library.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.libraryPath == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get user home directory")
		}
		dir := filepath.Join(homeDir, ".skillhub", "library")
		s.libraryPath = func() string { return dir }
	}

	return s, nil
}

// LibraryPath returns the currently resolved library root.
func (s *Store) LibraryPath() string {
	return s.libraryPath()
}

// OnChange registers a callback fired after every mutating operation. No
// payload is provided; consumers re-list.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notifyChange() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// ListSkills returns every skill whose subdirectory contains a readable
// SKILL.md, sorted by name. Hidden directories and unreadable entries are
// skipped. Install statistics are merged in when present.
func (s *Store) ListSkills(ctx context.Context) ([]*Skill, error) {
	dir := s.libraryPath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read library directory %s", dir)
	}

	ledger, err := s.loadLedger()
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to load install stats, continuing without them")
		ledger = map[string]InstallStats{}
	}

	var list []*Skill
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		skill, err := s.readSkillDir(filepath.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", entry.Name()).Debug("skipping unreadable skill")
			continue
		}
		applyStats(skill, ledger)
		list = append(list, skill)
	}

	sortByName(list)
	return list, nil
}

// ReadSkill returns the skill stored at id, including its sibling files.
func (s *Store) ReadSkill(ctx context.Context, id string) (*Skill, error) {
	skill, err := s.readSkillDir(filepath.Join(s.libraryPath(), id), id)
	if err != nil {
		return nil, err
	}

	ledger, err := s.loadLedger()
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to load install stats, continuing without them")
		return skill, nil
	}
	applyStats(skill, ledger)
	return skill, nil
}

func (s *Store) readSkillDir(dirPath, id string) (*Skill, error) {
	filePath := filepath.Join(dirPath, SkillFileName)
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%q", id)
		}
		return nil, errors.Wrapf(err, "failed to read %s", filePath)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", filePath)
	}

	meta, body := frontmatter.Parse(string(content))

	var additional []string
	if entries, err := os.ReadDir(dirPath); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || entry.Name() == SkillFileName {
				continue
			}
			additional = append(additional, entry.Name())
		}
	}

	return &Skill{
		ID:              id,
		Metadata:        meta,
		Body:            body,
		DirPath:         dirPath,
		FilePath:        filePath,
		LastModified:    info.ModTime(),
		AdditionalFiles: additional,
	}, nil
}

// CreateSkill writes a new skill document under a validated id. It fails
// with ErrAlreadyExists when the id's directory is occupied.
func (s *Store) CreateSkill(ctx context.Context, id string, meta frontmatter.Metadata, body string) (*Skill, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.libraryPath(), id)
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.Wrapf(ErrAlreadyExists, "%q", id)
	}

	if err := s.writeDocument(dir, meta, body); err != nil {
		return nil, err
	}

	s.notifyChange()
	return s.ReadSkill(ctx, id)
}

// UpdateSkill overwrites an existing skill document.
func (s *Store) UpdateSkill(ctx context.Context, id string, meta frontmatter.Metadata, body string) (*Skill, error) {
	dir := filepath.Join(s.libraryPath(), id)
	if _, err := os.Stat(filepath.Join(dir, SkillFileName)); err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%q", id)
	}

	if err := s.writeDocument(dir, meta, body); err != nil {
		return nil, err
	}

	s.notifyChange()
	return s.ReadSkill(ctx, id)
}

// WriteSkill creates or overwrites a skill without id validation.
// Marketplace installs use directory-derived ids verbatim; those ids are
// exempt from the grammar enforced by CreateSkill.
func (s *Store) WriteSkill(ctx context.Context, id string, meta frontmatter.Metadata, body string) (*Skill, error) {
	if err := s.writeDocument(filepath.Join(s.libraryPath(), id), meta, body); err != nil {
		return nil, err
	}

	s.notifyChange()
	return s.ReadSkill(ctx, id)
}

func (s *Store) writeDocument(dir string, meta frontmatter.Metadata, body string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create skill directory %s", dir)
	}
	doc := frontmatter.Serialize(meta, body)
	if err := os.WriteFile(filepath.Join(dir, SkillFileName), []byte(doc), 0o644); err != nil {
		return errors.Wrap(err, "failed to write skill document")
	}
	return nil
}

// DeleteSkill recursively removes a skill directory. The install-statistics
// entry for the id is intentionally retained.
func (s *Store) DeleteSkill(_ context.Context, id string) error {
	dir := filepath.Join(s.libraryPath(), id)
	if _, err := os.Stat(dir); err != nil {
		return errors.Wrapf(ErrNotFound, "%q", id)
	}

	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "failed to delete skill %q", id)
	}

	s.notifyChange()
	return nil
}

// DuplicateSkill copies an existing skill directory to a new validated id.
// An occupied destination is rejected rather than merged.
func (s *Store) DuplicateSkill(ctx context.Context, sourceID, newID string) (*Skill, error) {
	if err := ValidateID(newID); err != nil {
		return nil, err
	}

	srcDir := filepath.Join(s.libraryPath(), sourceID)
	if _, err := os.Stat(filepath.Join(srcDir, SkillFileName)); err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%q", sourceID)
	}

	dstDir := filepath.Join(s.libraryPath(), newID)
	if _, err := os.Stat(dstDir); err == nil {
		return nil, errors.Wrapf(ErrAlreadyExists, "%q", newID)
	}

	if err := CopyDir(srcDir, dstDir); err != nil {
		return nil, errors.Wrapf(err, "failed to duplicate skill %q", sourceID)
	}

	s.notifyChange()
	return s.ReadSkill(ctx, newID)
}

// ImportFromPath copies an external skill directory into the library. The
// target id derives from the directory's base name; an occupied id is probed
// with -1, -2, ... suffixes until a free one is found.
func (s *Store) ImportFromPath(ctx context.Context, externalDir string) (*Skill, error) {
	if _, err := os.Stat(filepath.Join(externalDir, SkillFileName)); err != nil {
		return nil, errors.Wrapf(ErrNotFound, "no %s in %s", SkillFileName, externalDir)
	}

	id := s.availableID(filepath.Base(filepath.Clean(externalDir)))
	dstDir := filepath.Join(s.libraryPath(), id)
	if err := CopyDir(externalDir, dstDir); err != nil {
		return nil, errors.Wrapf(err, "failed to import %s", externalDir)
	}

	s.notifyChange()
	return s.ReadSkill(ctx, id)
}

// availableID returns base when free, otherwise the first free base-N id.
func (s *Store) availableID(base string) string {
	dir := s.libraryPath()
	id := base
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

// SearchSkills returns skills whose name, description, tags, or body contain
// the query, case-insensitively, in ListSkills order.
func (s *Store) SearchSkills(ctx context.Context, query string) ([]*Skill, error) {
	list, err := s.ListSkills(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matches []*Skill
	for _, skill := range list {
		if skillMatches(skill, q) {
			matches = append(matches, skill)
		}
	}
	return matches, nil
}

func skillMatches(skill *Skill, q string) bool {
	if strings.Contains(strings.ToLower(skill.Metadata.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(skill.Metadata.Description), q) {
		return true
	}
	for _, tag := range skill.Metadata.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(skill.Body), q)
}

func sortByName(list []*Skill) {
	c := collate.New(language.Und, collate.Loose)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].Metadata.Name, list[j].Metadata.Name) < 0
	})
}

// SortSkills orders a skill list by the given preference: "lastModified"
// (newest first), "author", or "name" (the default).
func SortSkills(list []*Skill, by string) {
	switch by {
	case "lastModified":
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].LastModified.After(list[j].LastModified)
		})
	case "author":
		c := collate.New(language.Und, collate.Loose)
		sort.SliceStable(list, func(i, j int) bool {
			return c.CompareString(list[i].Metadata.Author, list[j].Metadata.Author) < 0
		})
	default:
		sortByName(list)
	}
}
