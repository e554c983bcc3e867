// Package globs resolves configured glob patterns to the files they select.
package globs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher selects files below a base directory.
type Matcher struct {
	pattern       string
	root          string
	base          string
	glob          string
	caseSensitive bool
}

// Pattern returns the pattern the matcher was built from.
func (m *Matcher) Pattern() string { return m.pattern }

// Base returns the directory the matcher walks.
func (m *Matcher) Base() string { return m.base }

// GlobSet is a compiled pattern matched against paths relative to a
// configuration root. Patterns without a separator also match file names.
type GlobSet struct {
	pattern       string
	caseSensitive bool
}

// Pattern returns the pattern the set was built from.
func (g *GlobSet) Pattern() string { return g.pattern }

// IsMatch reports whether rel, a slash separated relative path, matches.
func (g *GlobSet) IsMatch(rel string) bool {
	pattern, name := g.pattern, filepath.ToSlash(rel)
	if !g.caseSensitive {
		pattern, name = strings.ToLower(pattern), strings.ToLower(name)
	}
	if ok, _ := doublestar.Match(pattern, name); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := doublestar.Match(pattern, filepath.Base(filepath.FromSlash(name)))
		return ok
	}
	return false
}

// CaseSensitive reports whether matching should honor case on this platform.
func CaseSensitive(goos string) bool {
	return goos != "windows"
}

func compileErr(failures []string) error {
	return fmt.Errorf("failed to compile patterns: \n%s", strings.Join(failures, "\n"))
}

func validate(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("'%s': empty pattern", pattern)
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return fmt.Errorf("'%s': invalid pattern", pattern)
	}
	return nil
}

// BuildMatchers compiles globs relative to root. All invalid patterns are
// reported in a single error.
func BuildMatchers(globs []string, root string, caseSensitive bool) ([]*Matcher, error) {
	var failures []string
	matchers := make([]*Matcher, 0, len(globs))
	for _, pattern := range globs {
		if err := validate(pattern); err != nil {
			failures = append(failures, err.Error())
			continue
		}

		relBase, glob := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base := filepath.FromSlash(unescape(relBase))
		if !filepath.IsAbs(base) {
			base = filepath.Join(root, base)
		}
		matchers = append(matchers, &Matcher{
			pattern:       pattern,
			root:          root,
			base:          filepath.Clean(base),
			glob:          glob,
			caseSensitive: caseSensitive,
		})
	}

	if len(failures) > 0 {
		return nil, compileErr(failures)
	}
	return matchers, nil
}

// BuildGlobSets compiles blacklist patterns.
func BuildGlobSets(globs []string, caseSensitive bool) ([]*GlobSet, error) {
	var failures []string
	sets := make([]*GlobSet, 0, len(globs))
	for _, pattern := range globs {
		if err := validate(pattern); err != nil {
			failures = append(failures, err.Error())
			continue
		}
		sets = append(sets, &GlobSet{pattern: filepath.ToSlash(pattern), caseSensitive: caseSensitive})
	}

	if len(failures) > 0 {
		return nil, compileErr(failures)
	}
	return sets, nil
}

// IsHidden reports whether a directory entry name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// Walk returns every non-hidden file below the matcher's base that matches
// its pattern. A missing base yields no files.
func (m *Matcher) Walk() ([]string, error) {
	var paths []string
	glob := m.glob
	if !m.caseSensitive {
		glob = strings.ToLower(glob)
	}

	err := filepath.WalkDir(m.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != m.base {
				slog.Debug("skipping unreadable entry", "path", path, "error", err)
				return nil
			}
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if path != m.base && IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(m.base, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !m.caseSensitive {
			rel = strings.ToLower(rel)
		}
		if ok, _ := doublestar.Match(glob, rel); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking '%s': %w", m.base, err)
	}
	return paths, nil
}

// MatchPaths resolves all matchers and removes blacklisted files. A file
// blacklisted for any matcher selecting it is dropped. Both returned slices
// are sorted and free of duplicates.
func MatchPaths(matchers []*Matcher, blacklist []*GlobSet) (paths, filtered []string, err error) {
	for _, m := range matchers {
		candidates, err := m.Walk()
		if err != nil {
			return nil, nil, err
		}
		for _, path := range candidates {
			if blacklisted(m, path, blacklist) {
				filtered = append(filtered, path)
				continue
			}
			paths = append(paths, path)
		}
	}

	filtered = sortUnique(filtered)
	paths = slices.DeleteFunc(sortUnique(paths), func(path string) bool {
		_, found := slices.BinarySearch(filtered, path)
		return found
	})

	slog.Debug("matched paths", "paths", paths)
	if len(filtered) > 0 {
		slog.Debug("filtered paths", "filtered", filtered)
	}
	return paths, filtered, nil
}

// blacklisted matches path relative to the configuration root and relative
// to the matcher's base.
func blacklisted(m *Matcher, path string, blacklist []*GlobSet) bool {
	var rels []string
	for _, dir := range []string{m.root, m.base} {
		if rel, err := filepath.Rel(dir, path); err == nil {
			rels = append(rels, rel)
		}
	}
	for _, glob := range blacklist {
		for _, rel := range rels {
			if glob.IsMatch(rel) {
				return true
			}
		}
	}
	return false
}

func sortUnique(s []string) []string {
	slices.Sort(s)
	return slices.Compact(s)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
