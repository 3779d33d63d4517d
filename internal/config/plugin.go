package config

import (
	"strings"

	"gopkg.in/ini.v1"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

// PluginDescriptor is the subset of a Godot plugin.cfg we read to fill in
// submission fields the user did not provide.
type PluginDescriptor struct {
	Name        string
	Description string
	Author      string
	Version     string
}

// LoadPlugin reads a Godot plugin.cfg. The file is INI-shaped but Godot
// quotes string values, so quotes are stripped after parsing.
func LoadPlugin(path string) (PluginDescriptor, error) {
	file, err := ini.Load(path)
	if err != nil {
		return PluginDescriptor{}, gderr.Wrap(err, gderr.CategoryConfig, "reading %s", path)
	}
	section := file.Section("plugin")
	get := func(key string) string {
		return strings.Trim(section.Key(key).String(), `"`)
	}
	return PluginDescriptor{
		Name:        get("name"),
		Description: get("description"),
		Author:      get("author"),
		Version:     get("version"),
	}, nil
}

// Apply fills empty Title and Version fields of cfg from the descriptor.
func (p PluginDescriptor) Apply(cfg Config) Config {
	if cfg.Title == "" {
		cfg.Title = p.Name
	}
	if cfg.Version == "" {
		cfg.Version = p.Version
	}
	return cfg
}
