package model

import (
	"path"
	"strings"
)

const (
	// ManifestFileName is the file whose header lines declare theme metadata
	ManifestFileName = "style.css"

	// ParentDelimiter joins a theme name and its parent name in a ThemeKey
	ParentDelimiter = "_childof_"
)

// ChangedFile is a repository-relative path reported by a diff
type ChangedFile string

// ParseChangedFiles splits newline-separated diff output into changed files.
// Blank lines are dropped and surrounding whitespace is trimmed.
func ParseChangedFiles(text string) []ChangedFile {
	var files []ChangedFile
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		files = append(files, ChangedFile(line))
	}
	return files
}

// Dir returns the cleaned parent directory of the file
func (f ChangedFile) Dir() string {
	return path.Dir(path.Clean(strings.TrimSpace(string(f))))
}

// ThemeManifest holds the header values parsed from a manifest file
type ThemeManifest struct {
	Name       string // "Theme Name:" header, empty when the directory is not a theme root
	Parent     string // "Template:" header, empty when the theme has no parent
	TextDomain string // "Text Domain:" header, used as the theme slug
}

// IsThemeRoot reports whether the manifest declares a theme name
func (m *ThemeManifest) IsThemeRoot() bool {
	return m.Name != ""
}

// Key returns the identity of the theme described by the manifest
func (m *ThemeManifest) Key() ThemeKey {
	return NewThemeKey(m.Name, m.Parent)
}

// ThemeKey identifies a theme by name and optional parent name
type ThemeKey string

// NewThemeKey builds "<name>" or "<name>_childof_<parent>"
func NewThemeKey(name, parent string) ThemeKey {
	if parent == "" {
		return ThemeKey(name)
	}
	return ThemeKey(name + ParentDelimiter + parent)
}

// Split recovers the display name and parent name from the key
func (k ThemeKey) Split() (name, parent string) {
	name, parent, _ = strings.Cut(string(k), ParentDelimiter)
	return name, parent
}

// Name returns the display name without the parent suffix
func (k ThemeKey) Name() string {
	name, _ := k.Split()
	return name
}

// ThemeEntry is one detected theme root
type ThemeEntry struct {
	Key      ThemeKey
	Dir      string
	Manifest ThemeManifest
}

// ThemeChangeSet is the ordered set of themes touched by a change.
// Iteration order is the order in which themes were first added, so rendering
// the same set twice yields the same output.
type ThemeChangeSet struct {
	entries []*ThemeEntry
	index   map[ThemeKey]int
}

// NewThemeChangeSet creates an empty change set
func NewThemeChangeSet() *ThemeChangeSet {
	return &ThemeChangeSet{
		index: make(map[ThemeKey]int),
	}
}

// Add inserts the theme rooted at dir. When the key already exists the entry keeps
// its position and its directory and manifest are replaced. It returns true if the
// key was new.
func (s *ThemeChangeSet) Add(dir string, manifest ThemeManifest) bool {
	entry := &ThemeEntry{
		Key:      manifest.Key(),
		Dir:      dir,
		Manifest: manifest,
	}

	if i, ok := s.index[entry.Key]; ok {
		s.entries[i] = entry
		return false
	}

	s.index[entry.Key] = len(s.entries)
	s.entries = append(s.entries, entry)
	return true
}

// HasChanges reports whether at least one theme was detected
func (s *ThemeChangeSet) HasChanges() bool {
	return s.Len() > 0
}

// Len returns the number of distinct themes
func (s *ThemeChangeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the themes in insertion order
func (s *ThemeChangeSet) Entries() []*ThemeEntry {
	if s == nil {
		return nil
	}
	return append([]*ThemeEntry(nil), s.entries...)
}

// Keys returns the theme keys in insertion order
func (s *ThemeChangeSet) Keys() []ThemeKey {
	keys := make([]ThemeKey, 0, s.Len())
	for _, e := range s.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Dir returns the root directory recorded for key
func (s *ThemeChangeSet) Dir(key ThemeKey) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].Dir, true
}

// Themes returns the key to directory mapping
func (s *ThemeChangeSet) Themes() map[ThemeKey]string {
	themes := make(map[ThemeKey]string, s.Len())
	for _, e := range s.Entries() {
		themes[e.Key] = e.Dir
	}
	return themes
}

// HasChildTheme reports whether any detected theme declares a parent
func (s *ThemeChangeSet) HasChildTheme() bool {
	for _, e := range s.Entries() {
		if _, parent := e.Key.Split(); parent != "" {
			return true
		}
	}
	return false
}
