// Package discovery finds blueprint files and `.bricks` intermediate
// directories across a workspace, for the `clean` command and for
// multi-blueprint workspace listing.
package discovery

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
)

// IgnoreFileName is the optional ignore file consulted when walking a
// workspace, using the same pattern syntax as a `.dockerignore` file.
const IgnoreFileName = ".bricksignore"

// BlueprintFileName is the file name a blueprint lives in (spec §4.2).
const BlueprintFileName = "blueprint"

// IntermediateDirName is the per-entity build output directory (spec §4.4).
const IntermediateDirName = ".bricks"

// Blueprints finds every `blueprint` file under root, honoring a
// `.bricksignore` file at root if present. Results are absolute paths,
// deduplicated and sorted for deterministic output.
func Blueprints(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	matcher, err := loadIgnoreMatcher(absRoot)
	if err != nil {
		return nil, err
	}

	pattern := filepath.Join(absRoot, "**", BlueprintFileName)
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	// doublestar's "**" already matches zero directories, so this explicit
	// root check can repeat a match; the seen set below drops the repeat.
	if rootCandidate := filepath.Join(absRoot, BlueprintFileName); fileExists(rootCandidate) {
		matches = append(matches, rootCandidate)
	}

	seen := make(map[string]bool, len(matches))
	var results []string
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		if matcher != nil {
			rel, err := filepath.Rel(absRoot, abs)
			if err == nil {
				ignored, err := matcher.MatchesOrParentMatches(filepath.ToSlash(rel))
				if err == nil && ignored {
					continue
				}
			}
		}
		seen[abs] = true
		results = append(results, abs)
	}

	slices.SortFunc(results, cmp.Compare)
	return results, nil
}

// IntermediateDirs finds every `.bricks` directory under root, for the
// `clean` subcommand (SPEC_FULL.md §D.1). It never inspects the contents
// of a matched directory, only its presence.
func IntermediateDirs(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	pattern := filepath.Join(absRoot, "**", IntermediateDirName)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}

	// "**" already matches zero path segments, so the root entry below may
	// repeat a glob match; results are deduplicated by absolute path.
	matches = append(matches, filepath.Join(absRoot, IntermediateDirName))

	seen := make(map[string]bool, len(matches))
	var results []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		results = append(results, abs)
	}

	slices.SortFunc(results, cmp.Compare)
	return results, nil
}

// loadIgnoreMatcher reads root's .bricksignore file, if any, and returns a
// ready-to-use matcher. Returns a nil matcher (not an error) when the file
// does not exist.
func loadIgnoreMatcher(root string) (*patternmatcher.PatternMatcher, error) {
	path := filepath.Join(root, IgnoreFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return patternmatcher.New(patterns)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
