package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jingkaihe/skillhub/pkg/decision"
	"github.com/jingkaihe/skillhub/pkg/frontmatter"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

// cacheTTL is how long a fetched source listing stays fresh.
const cacheTTL = 5 * time.Minute

// SourceStore persists the user's custom source URLs, ordered.
type SourceStore interface {
	URLs() []string
	SetURLs(urls []string) error
}

type cacheEntry struct {
	skills    []*RemoteSkill
	fetchedAt time.Time
}

// Client fetches remote skills and installs them into the local library.
// The fetch cache is private to the client instance; custom source URLs are
// owned by the injected SourceStore.
type Client struct {
	store      *skills.Store
	sources    SourceStore
	httpClient *http.Client
	token      string
	apiBaseURL string
	rawBaseURL string
	ttl        time.Duration
	now        func() time.Time
	decide     decision.Provider

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the GitHub access token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient overrides the HTTP client. Token wiring is the caller's
// responsibility when this is used.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBaseURLs overrides the GitHub API and raw-content endpoints.
func WithBaseURLs(api, raw string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(api, "/")
		c.rawBaseURL = strings.TrimRight(raw, "/")
	}
}

// WithTTL overrides the cache time-to-live.
func WithTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithClock sets the time source for cache freshness checks.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithDecisionProvider sets the confirmation capability used when an install
// would overwrite an existing skill.
func WithDecisionProvider(p decision.Provider) ClientOption {
	return func(c *Client) {
		c.decide = p
	}
}

// WithSourceStore sets the persistence for custom source URLs.
func WithSourceStore(store SourceStore) ClientOption {
	return func(c *Client) {
		c.sources = store
	}
}

// NewClient creates a marketplace client over the given skill store.
func NewClient(store *skills.Store, opts ...ClientOption) *Client {
	c := &Client{
		store:      store,
		apiBaseURL: "https://api.github.com",
		rawBaseURL: "https://raw.githubusercontent.com",
		ttl:        cacheTTL,
		now:        time.Now,
		decide:     decision.AlwaysProceed,
		cache:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.token)
	}
	return c
}

// GetSources returns the built-in sources followed by custom sources parsed
// from the persisted URL list. Unparsable custom URLs are dropped silently.
func (c *Client) GetSources() []Source {
	sources := BuiltinSources()
	if c.sources == nil {
		return sources
	}
	for _, raw := range c.sources.URLs() {
		if src := ParseGitHubURL(raw); src != nil {
			sources = append(sources, *src)
		}
	}
	return sources
}

// AddCustomSource validates and persists a new source URL. Exact duplicates
// of an already persisted URL are rejected.
func (c *Client) AddCustomSource(rawURL string) error {
	if c.sources == nil {
		return errors.New("no source store configured")
	}
	if ParseGitHubURL(rawURL) == nil {
		return errors.Wrapf(ErrInvalidSourceURL, "%q", rawURL)
	}

	existing := c.sources.URLs()
	for _, u := range existing {
		if u == rawURL {
			return errors.Wrapf(ErrDuplicateSource, "%q", rawURL)
		}
	}

	return c.sources.SetURLs(append(existing, rawURL))
}

// RemoveCustomSource drops every persisted URL whose parsed id matches
// sourceID and evicts that source's cache entry.
func (c *Client) RemoveCustomSource(sourceID string) error {
	if c.sources == nil {
		return errors.New("no source store configured")
	}

	var kept []string
	for _, raw := range c.sources.URLs() {
		if src := ParseGitHubURL(raw); src != nil && src.ID == sourceID {
			continue
		}
		kept = append(kept, raw)
	}

	c.mu.Lock()
	delete(c.cache, sourceID)
	c.mu.Unlock()

	return c.sources.SetURLs(kept)
}

// ClearCache drops all cached fetch results immediately.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// FetchSource returns the skills published in a source. Results fresher
// than the TTL are served from cache with no network calls unless force is
// set. Per-document fetch failures are isolated: only successes are
// returned.
func (c *Client) FetchSource(ctx context.Context, src Source, force bool) ([]*RemoteSkill, error) {
	if !force {
		c.mu.Lock()
		entry, ok := c.cache[src.ID]
		c.mu.Unlock()
		if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
			return entry.skills, nil
		}
	}

	tree, err := c.fetchTree(ctx, src)
	if err != nil {
		return nil, err
	}

	paths := filterSkillPaths(tree, src.Path)

	// Fetched concurrently; results keep the filtered path-list order.
	results := make([]*RemoteSkill, len(paths))
	var wg sync.WaitGroup
	for i, repoPath := range paths {
		wg.Add(1)
		go func(i int, repoPath string) {
			defer wg.Done()
			skill, err := c.fetchRemoteSkill(ctx, src, repoPath)
			if err != nil {
				logger.G(ctx).WithError(err).WithFields(logrus.Fields{
					"source": src.ID,
					"path":   repoPath,
				}).Debug("skipping remote skill")
				return
			}
			results[i] = skill
		}(i, repoPath)
	}
	wg.Wait()

	found := make([]*RemoteSkill, 0, len(results))
	for _, skill := range results {
		if skill != nil {
			found = append(found, skill)
		}
	}

	c.mu.Lock()
	c.cache[src.ID] = cacheEntry{skills: found, fetchedAt: c.now()}
	c.mu.Unlock()

	return found, nil
}

// filterSkillPaths keeps blob entries whose last segment equals the skill
// filename case-insensitively, scoped to the source's subdirectory when one
// is configured.
func filterSkillPaths(tree []treeEntry, prefix string) []string {
	var paths []string
	for _, entry := range tree {
		if entry.Type != "blob" {
			continue
		}
		if !strings.EqualFold(path.Base(entry.Path), skills.SkillFileName) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(entry.Path, prefix+"/") {
			continue
		}
		paths = append(paths, entry.Path)
	}
	return paths
}

func (c *Client) fetchRemoteSkill(ctx context.Context, src Source, repoPath string) (*RemoteSkill, error) {
	downloadURL := fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBaseURL, src.Owner, src.Repo, src.Branch, repoPath)
	content, err := c.get(ctx, downloadURL, false)
	if err != nil {
		return nil, err
	}

	meta, body := frontmatter.Parse(string(content))

	id := path.Base(path.Dir(repoPath))
	if id == "." || id == "/" {
		id = src.Repo
	}
	if meta.Name == frontmatter.DefaultName {
		meta.Name = humanizeID(id)
	}

	return &RemoteSkill{
		ID:          id,
		Metadata:    meta,
		Body:        body,
		Source:      src,
		RepoPath:    repoPath,
		DownloadURL: downloadURL,
	}, nil
}

// humanizeID turns a directory id into a display name: hyphens become
// spaces and each word is capitalized.
func humanizeID(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "-", " "))
}

// FetchAll fans FetchSource out across every known source concurrently.
// Sources that fail entirely are dropped from the aggregate; their failure
// reasons are logged rather than surfaced.
func (c *Client) FetchAll(ctx context.Context, force bool) []*RemoteSkill {
	sources := c.GetSources()
	results := make([][]*RemoteSkill, len(sources))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var errs *multierror.Error

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			found, err := c.FetchSource(ctx, src, force)
			if err != nil {
				errMu.Lock()
				errs = multierror.Append(errs, errors.Wrapf(err, "source %s", src.ID))
				errMu.Unlock()
				return
			}
			results[i] = found
		}(i, src)
	}
	wg.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		logger.G(ctx).WithError(err).Debug("some marketplace sources failed to fetch")
	}

	var all []*RemoteSkill
	for _, found := range results {
		all = append(all, found...)
	}
	return all
}

// InstallSkill writes a remote skill into the library. When the id is
// already taken the injected decision provider must approve the overwrite;
// declining returns decision.ErrCancelled with nothing written. An install
// is recorded either way it proceeds.
func (c *Client) InstallSkill(ctx context.Context, remote *RemoteSkill) (*skills.Skill, error) {
	existing, err := c.store.ReadSkill(ctx, remote.ID)
	if err != nil && !errors.Is(err, skills.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		d := c.decide(fmt.Sprintf("Skill %q is already installed. Overwrite it?", remote.ID))
		if !d.Approved() {
			return nil, decision.ErrCancelled
		}
	}

	return c.writeSkill(ctx, remote)
}

// UpdateSkillSilently is the install write path without the confirmation
// step, for callers that have already established user intent.
func (c *Client) UpdateSkillSilently(ctx context.Context, remote *RemoteSkill) (*skills.Skill, error) {
	return c.writeSkill(ctx, remote)
}

func (c *Client) writeSkill(ctx context.Context, remote *RemoteSkill) (*skills.Skill, error) {
	skill, err := c.store.WriteSkill(ctx, remote.ID, remote.Metadata, remote.Body)
	if err != nil {
		return nil, err
	}
	if err := c.store.RecordInstall(ctx, remote.ID, remote.Metadata.Version); err != nil {
		return nil, errors.Wrap(err, "failed to record install")
	}
	return skill, nil
}

// GetInstalledIDs returns the ids currently present in the library.
func (c *Client) GetInstalledIDs(ctx context.Context) ([]string, error) {
	list, err := c.store.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, skill := range list {
		ids = append(ids, skill.ID)
	}
	return ids, nil
}

// GetInstalledVersionMap returns id -> version for every ledger entry with a
// recorded version.
func (c *Client) GetInstalledVersionMap(ctx context.Context) (map[string]string, error) {
	return c.store.GetInstalledVersions(ctx)
}
