package main

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdasset/gdasset/internal/config"
	gderr "github.com/gdasset/gdasset/internal/errors"
	"github.com/gdasset/gdasset/internal/library"
	"github.com/gdasset/gdasset/internal/markdown"
	"github.com/gdasset/gdasset/internal/vcs"
)

// sharedFlags are the options common to every command that renders the
// description.
type sharedFlags struct {
	Root string `arg:"" optional:"" default:"." help:"Project root, or any path inside it"`

	Readme    string `default:"README.md" help:"Location of the README file, relative to the project root"`
	Changelog string `default:"CHANGELOG.md" help:"Location of the changelog file, relative to the project root"`
	Plugin    string `help:"Path to a plugin.cfg file used to fill in missing title and version"`

	Title    string `help:"Title / short description of the asset"`
	Version  string `help:"Asset version"`
	Godot    string `help:"Godot version the asset targets"`
	Licence  string `help:"Asset licence"`
	Category string `help:"Asset category, as an id or a designator such as 'Addons/Misc'"`
	Icon     string `help:"Icon URL, or a path relative to the repository root"`

	UnwrapLinks  *bool `negatable:"" help:"Convert Markdown links to plain URLs (default: enabled); the asset library does not support any form of markup"`
	PreserveHTML *bool `negatable:"" help:"Keep raw HTML fragments in the description instead of dropping them"`
	KeepImages   *bool `negatable:"" help:"Keep image syntax in the description text in addition to extracting previews"`
}

// authFlags carry credentials. The corresponding GDASSET_* environment
// variables (and a .env file at the project root) are consulted when a flag
// is not given.
type authFlags struct {
	Token    string `help:"Asset library token (or GDASSET_TOKEN)"`
	Username string `help:"Asset library username (or GDASSET_USERNAME)"`
	Password string `help:"Asset library password (or GDASSET_PASSWORD)"`
}

type submitFlags struct {
	DryRun  bool `help:"Prepare the submission and print it instead of sending it"`
	Save    bool `negatable:"" default:"true" help:"Persist non-secret fields to gdasset.toml at the project root"`
	JSONAPI bool `name:"json-api" help:"Submit through the JSON API instead of the HTML form workaround"`
}

// project is the fully resolved execution context: project root, effective
// configuration (flags over gdasset.toml over plugin.cfg over repository
// facts), and credentials.
type project struct {
	root    string
	flags   sharedFlags
	cfg     config.Config
	info    vcs.Info
	secrets config.Secrets
}

// resolveProject locates the project root and layers the configuration
// sources.
func resolveProject(flags sharedFlags) (*project, error) {
	root, err := vcs.FindProjectRoot(flags.Root)
	if err != nil {
		return nil, err
	}
	saved, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	cfg := config.Config{
		Title:        flags.Title,
		Version:      flags.Version,
		Godot:        flags.Godot,
		Licence:      flags.Licence,
		Category:     flags.Category,
		IconURL:      flags.Icon,
		UnwrapLinks:  flags.UnwrapLinks,
		PreserveHTML: flags.PreserveHTML,
		KeepImages:   flags.KeepImages,
	}.Merge(saved)

	if flags.Plugin != "" {
		plugin, err := config.LoadPlugin(flags.Plugin)
		if err != nil {
			return nil, err
		}
		cfg = plugin.Apply(cfg)
	}

	info, err := vcs.Detect(root)
	if err != nil {
		// A repository is optional as long as the config carries the URLs.
		slog.Debug("No repository information", "root", root, "error", err)
	}
	if cfg.RepoURL == "" {
		cfg.RepoURL = info.RepoURL
	}
	if cfg.RepoProvider == "" && info.RepoURL != "" {
		cfg.RepoProvider = info.Provider.Normalised()
	}
	if cfg.IssuesURL == "" {
		cfg.IssuesURL = info.IssuesURL
	}
	if cfg.DownloadURL == "" {
		cfg.DownloadURL = info.DownloadURL
	}

	return &project{
		root:    root,
		flags:   flags,
		cfg:     cfg,
		info:    info,
		secrets: config.LoadSecrets(root),
	}, nil
}

func boolOption(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

// describe renders the README into the listing description and previews.
func (p *project) describe() (string, []markdown.Preview, error) {
	readmePath := filepath.Join(p.root, p.flags.Readme)
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return "", nil, gderr.Wrap(err, gderr.CategoryConfig, "reading %s", readmePath)
	}

	opts := markdown.Options{
		UnwrapLinks:  boolOption(p.cfg.UnwrapLinks, true),
		PreserveHTML: boolOption(p.cfg.PreserveHTML, false),
		KeepImages:   boolOption(p.cfg.KeepImages, false),
		PrepImageURL: p.contentURLFunc(),
		PrepLinkURL:  p.contentURLFunc(),
		Changelog:    p.changelogLoader(),
	}
	return markdown.Describe(readme, opts)
}

// changelogLoader reads the configured changelog lazily; it is only invoked
// when the README contains a changelog directive.
func (p *project) changelogLoader() markdown.ChangelogLoader {
	name := p.flags.Changelog
	if p.cfg.Changelog != "" {
		name = p.cfg.Changelog
	}
	path := filepath.Join(p.root, name)
	return func() ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, gderr.Wrap(err, gderr.CategoryConfig, "reading %s", path)
		}
		return data, nil
	}
}

// contentURLFunc rewrites repository-relative targets to the provider's
// raw-content URL pinned to the current commit. Without repository
// information, targets pass through unchanged.
func (p *project) contentURLFunc() func(string) string {
	if p.cfg.RepoURL == "" || p.info.Commit == "" {
		return nil
	}
	offset := filepath.Dir(p.flags.Readme)
	if offset == "." {
		offset = ""
	}
	return func(target string) string {
		resolved, err := vcs.ResolveContentURL(p.cfg.RepoURL, p.info.Commit, target, offset)
		if err != nil {
			slog.Debug("Leaving relative link unresolved", "target", target, "error", err)
			return target
		}
		return resolved
	}
}

// payload assembles the submission payload from the resolved configuration
// and the rendered description.
func (p *project) payload(description string, previews []markdown.Preview) (library.Payload, error) {
	payload := library.Payload{
		"title":             p.cfg.Title,
		"description":       description,
		"godot_version":     p.cfg.Godot,
		"version_string":    p.cfg.Version,
		"cost":              p.cfg.Licence,
		"download_provider": p.cfg.RepoProvider,
		"download_commit":   p.info.Commit,
		"browse_url":        p.cfg.RepoURL,
		"issues_url":        p.cfg.IssuesURL,
	}
	if p.cfg.Category != "" {
		categoryID, err := library.ResolveCategory(p.cfg.Category)
		if err != nil {
			return nil, err
		}
		payload["category_id"] = strconv.Itoa(categoryID)
	}
	if p.cfg.IconURL != "" {
		icon := p.cfg.IconURL
		if prep := p.contentURLFunc(); prep != nil && !isAbsoluteURL(icon) {
			icon = prep(icon)
		}
		payload["icon_url"] = icon
	}

	entries := make([]map[string]any, len(previews))
	for i, preview := range previews {
		entries[i] = map[string]any{
			"type": string(preview.Type),
			"link": preview.Link,
		}
	}
	payload["previews"] = entries
	return payload, nil
}

// requireFields validates that the submission fields the library insists on
// are present.
func (p *project) requireFields() error {
	missing := []string{}
	for _, field := range []struct{ name, value string }{
		{"title", p.cfg.Title},
		{"version", p.cfg.Version},
		{"licence", p.cfg.Licence},
		{"category", p.cfg.Category},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return gderr.New(gderr.CategoryValidation, "missing required fields: %s; pass the flags or record them in %s",
			strings.Join(missing, ", "), config.FileName)
	}
	return nil
}

// applyListing fills configuration gaps from a fetched asset listing, so an
// update only needs the fields that actually change.
func (p *project) applyListing(listing library.Payload) {
	str := func(key string) string {
		s, _ := listing[key].(string)
		return s
	}
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = str(key)
		}
	}
	fill(&p.cfg.Title, "title")
	fill(&p.cfg.Version, "version_string")
	fill(&p.cfg.Godot, "godot_version")
	fill(&p.cfg.Licence, "cost")
	fill(&p.cfg.Category, "category_id")
	fill(&p.cfg.RepoProvider, "download_provider")
	fill(&p.cfg.RepoURL, "browse_url")
	fill(&p.cfg.IssuesURL, "issues_url")
	fill(&p.cfg.IconURL, "icon_url")
}

// save persists the effective non-secret configuration back to gdasset.toml.
func (p *project) save() error {
	cfg := p.cfg
	if p.secrets.Username != "" && cfg.Username == "" {
		cfg.Username = p.secrets.Username
	}
	return cfg.Save(p.root)
}

func (p *project) client(auth authFlags) *library.Client {
	token := auth.Token
	if token == "" {
		token = p.secrets.Token
	}
	username := auth.Username
	if username == "" {
		username = p.secrets.Username
	}
	if username == "" {
		username = p.cfg.Username
	}
	password := auth.Password
	if password == "" {
		password = p.secrets.Password
	}
	return library.New(library.Options{
		Token:    token,
		Username: username,
		Password: password,
	})
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}
