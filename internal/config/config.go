// Package config persists remembered submission fields in gdasset.toml at
// the project root, and fills gaps from the addon's plugin.cfg descriptor.
// Secrets (tokens, passwords) are never written to disk; they come from
// flags, the environment, or a .env file.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

// FileName is the per-project configuration file looked up at (and defining)
// the project root.
const FileName = "gdasset.toml"

// Config holds the submission fields remembered between runs. All fields are
// optional; empty values mean "not set" and lose against any other source.
type Config struct {
	Title    string `toml:"title,omitempty"`
	Version  string `toml:"version,omitempty"`
	Godot    string `toml:"godot_version,omitempty"`
	Licence  string `toml:"licence,omitempty"`
	Category string `toml:"category,omitempty"`

	RepoURL      string `toml:"repo_url,omitempty"`
	RepoProvider string `toml:"repo_provider,omitempty"`
	IssuesURL    string `toml:"issues_url,omitempty"`
	DownloadURL  string `toml:"download_url,omitempty"`
	IconURL      string `toml:"icon_url,omitempty"`

	Readme    string `toml:"readme,omitempty"`
	Changelog string `toml:"changelog,omitempty"`

	UnwrapLinks  *bool `toml:"unwrap_links,omitempty"`
	PreserveHTML *bool `toml:"preserve_html,omitempty"`
	KeepImages   *bool `toml:"keep_images,omitempty"`

	// AssetID remembers the asset id of the last successful submission so
	// update runs can find it without guessing.
	AssetID  string `toml:"asset_id,omitempty"`
	Username string `toml:"username,omitempty"`
}

// Load reads gdasset.toml from root. A missing file is not an error and
// yields a zero Config.
func Load(root string) (Config, error) {
	var cfg Config
	path := filepath.Join(root, FileName)
	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, gderr.Wrap(err, gderr.CategoryConfig, "reading %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, gderr.New(gderr.CategoryConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

// Save writes cfg to gdasset.toml under root.
func (c Config) Save(root string) error {
	path := filepath.Join(root, FileName)
	f, err := os.Create(path)
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryConfig, "writing %s", path)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return gderr.Wrap(err, gderr.CategoryConfig, "encoding %s", path)
	}
	if err := f.Close(); err != nil {
		return gderr.Wrap(err, gderr.CategoryConfig, "writing %s", path)
	}
	return nil
}

// Merge fills empty fields of c from other, leaving set fields alone. Boolean
// options merge only when unset (nil).
func (c Config) Merge(other Config) Config {
	fillString := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fillBool := func(dst **bool, src *bool) {
		if *dst == nil {
			*dst = src
		}
	}
	fillString(&c.Title, other.Title)
	fillString(&c.Version, other.Version)
	fillString(&c.Godot, other.Godot)
	fillString(&c.Licence, other.Licence)
	fillString(&c.Category, other.Category)
	fillString(&c.RepoURL, other.RepoURL)
	fillString(&c.RepoProvider, other.RepoProvider)
	fillString(&c.IssuesURL, other.IssuesURL)
	fillString(&c.DownloadURL, other.DownloadURL)
	fillString(&c.IconURL, other.IconURL)
	fillString(&c.Readme, other.Readme)
	fillString(&c.Changelog, other.Changelog)
	fillString(&c.AssetID, other.AssetID)
	fillString(&c.Username, other.Username)
	fillBool(&c.UnwrapLinks, other.UnwrapLinks)
	fillBool(&c.PreserveHTML, other.PreserveHTML)
	fillBool(&c.KeepImages, other.KeepImages)
	return c
}
