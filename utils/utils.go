// Package utils provides utility functions.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// GlamourStyle returns a glamour.TermRendererOption based on the given style.
// A style is either one of glamour's built-in names or a path to a JSON style
// file.
func GlamourStyle(style string) glamour.TermRendererOption {
	if _, ok := styles.DefaultStyles[style]; ok || style == styles.AutoStyle {
		return glamour.WithStylePath(style)
	}
	return glamour.WithStylePath(ExpandPath(style))
}

// IsStyleFile reports whether style names a JSON style file rather than a
// built-in style.
func IsStyleFile(style string) bool {
	return strings.EqualFold(filepath.Ext(style), ".json")
}
