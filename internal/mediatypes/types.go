package mediatypes

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions is the extension list used when FILE_TYPES is not set.
var DefaultExtensions = []string{"jpg", "jpeg", "png"}

// ExtensionSet is a set of lowercase file extensions without the leading dot.
type ExtensionSet map[string]bool

// ParseExtensions builds an ExtensionSet from a list of extensions.
// Entries are lowercased and a leading dot is stripped, so "JPG", ".jpg" and
// "jpg" all produce the same set member. Empty entries are ignored.
func ParseExtensions(list []string) ExtensionSet {
	set := make(ExtensionSet, len(list))
	for _, ext := range list {
		ext = strings.ToLower(strings.TrimSpace(ext))
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		set[ext] = true
	}
	return set
}

// ParseExtensionList splits a comma-separated FILE_TYPES value into an
// ExtensionSet.
func ParseExtensionList(s string) ExtensionSet {
	return ParseExtensions(strings.Split(s, ","))
}

// Matches reports whether the file name has an extension in the set.
func (s ExtensionSet) Matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return false
	}
	return s[ext]
}

// List returns the extensions in the set, for logging.
func (s ExtensionSet) List() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	return out
}
