package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// UserConfigFile is the user's config file name below $XDG_CONFIG_HOME/tpig
	UserConfigFile = "config.toml"

	// WorkspaceConfigFile is the per-workspace override file
	WorkspaceConfigFile = ".tpig.toml"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "TPIG_"
)

// Config is the effective templatepig configuration
type Config struct {
	// TemplatesPath is the local template library, relative to the workspace
	TemplatesPath string `koanf:"templates_path" toml:"templates_path" json:"templatesPath" yaml:"templatesPath"`

	// GlobalTemplatesPath is an absolute template library shared by all workspaces
	GlobalTemplatesPath string `koanf:"global_templates_path" toml:"global_templates_path" json:"globalTemplatesPath" yaml:"globalTemplatesPath"`

	// OpenDocuments enables opening created files in an editor
	OpenDocuments bool `koanf:"open_documents" toml:"open_documents" json:"openDocuments" yaml:"openDocuments"`

	// Editor is the command used to open documents
	Editor string `koanf:"editor" toml:"editor" json:"editor" yaml:"editor"`

	// WorkspaceMarkers identify a workspace root during detection
	WorkspaceMarkers []string `koanf:"workspace_markers" toml:"workspace_markers" json:"workspaceMarkers" yaml:"workspaceMarkers"`
}

// LocalTemplatesRoot returns the workspace's template library location, or
// "" when there is no workspace.
func (c *Config) LocalTemplatesRoot(workspaceRoot string) string {
	if workspaceRoot == "" {
		return ""
	}
	templatesPath := c.TemplatesPath
	if templatesPath == "" {
		templatesPath = ".templates"
	}
	if filepath.IsAbs(templatesPath) {
		return filepath.Clean(templatesPath)
	}
	return filepath.Join(workspaceRoot, templatesPath)
}

// GlobalTemplatesRoot returns the configured global library with ~ expanded,
// or "" when none is configured.
func (c *Config) GlobalTemplatesRoot() string {
	return expandHome(c.GlobalTemplatesPath)
}

// TemplateRoots lists the candidate template roots in lookup order: local
// first, then global. Empty candidates are dropped; existence is checked by
// the caller.
func (c *Config) TemplateRoots(workspaceRoot string) []string {
	var roots []string
	for _, root := range []string{c.LocalTemplatesRoot(workspaceRoot), c.GlobalTemplatesRoot()} {
		if root != "" {
			roots = append(roots, root)
		}
	}
	return roots
}

// EditorCommand returns the configured editor, falling back to $VISUAL and
// $EDITOR.
func (c *Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	return os.Getenv("EDITOR")
}

func expandHome(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
