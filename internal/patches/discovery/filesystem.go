package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	invalidPatternErrorTemplateConstant = "invalid patch pattern %q: %w"
	unreadableRootErrorTemplateConstant = "unable to read patch root %s: %w"
	currentDirectoryConstant            = "."
)

// FilesystemPatchDiscoverer locates patch files on disk.
type FilesystemPatchDiscoverer struct{}

// NewFilesystemPatchDiscoverer constructs a discoverer backed by filepath.WalkDir.
func NewFilesystemPatchDiscoverer() *FilesystemPatchDiscoverer {
	return &FilesystemPatchDiscoverer{}
}

// DiscoverPatches walks every root and returns the sorted, deduplicated files
// whose root-relative path matches an include pattern and no exclude pattern.
// A root that cannot be read is an error; unreadable directories beneath it are skipped.
func (discoverer *FilesystemPatchDiscoverer) DiscoverPatches(roots []string, patterns []string, excludes []string) ([]string, error) {
	includePatterns, includeError := normalizePatterns(patterns)
	if includeError != nil {
		return nil, includeError
	}
	excludePatterns, excludeError := normalizePatterns(excludes)
	if excludeError != nil {
		return nil, excludeError
	}

	seen := make(map[string]struct{})
	var patches []string

	for _, root := range roots {
		walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
			if walkError != nil {
				if path == root {
					return fmt.Errorf(unreadableRootErrorTemplateConstant, root, walkError)
				}
				if directoryEntry != nil && directoryEntry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			relativePath, relativeError := filepath.Rel(root, path)
			if relativeError != nil || relativePath == currentDirectoryConstant {
				return nil
			}
			relativePath = filepath.ToSlash(relativePath)

			if matchesAny(excludePatterns, relativePath) {
				if directoryEntry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if directoryEntry.IsDir() || !directoryEntry.Type().IsRegular() {
				return nil
			}
			if !matchesAny(includePatterns, relativePath) {
				return nil
			}

			identity := path
			if absolutePath, absoluteError := filepath.Abs(path); absoluteError == nil {
				identity = absolutePath
			}
			if _, alreadySeen := seen[identity]; alreadySeen {
				return nil
			}
			seen[identity] = struct{}{}
			patches = append(patches, path)
			return nil
		})
		if walkError != nil {
			return nil, walkError
		}
	}

	sort.Strings(patches)
	return patches, nil
}

func normalizePatterns(patterns []string) ([]string, error) {
	normalized := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if len(trimmed) == 0 {
			continue
		}
		trimmed = filepath.ToSlash(trimmed)
		if !doublestar.ValidatePattern(trimmed) {
			return nil, fmt.Errorf(invalidPatternErrorTemplateConstant, trimmed, doublestar.ErrBadPattern)
		}
		normalized = append(normalized, trimmed)
	}
	return normalized, nil
}

func matchesAny(patterns []string, relativePath string) bool {
	for _, pattern := range patterns {
		if matched, matchError := doublestar.Match(pattern, relativePath); matchError == nil && matched {
			return true
		}
	}
	return false
}
