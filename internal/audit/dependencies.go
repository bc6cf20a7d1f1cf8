package audit

import (
	"context"

	"github.com/temirov/dep3audit/internal/dep3"
	"github.com/temirov/dep3audit/internal/history"
)

// PatchDiscoverer finds patch files rooted under the provided paths.
type PatchDiscoverer interface {
	DiscoverPatches(roots []string, patterns []string, excludes []string) ([]string, error)
}

// PatchParser extracts the DEP3 header record from one patch file.
type PatchParser interface {
	ParseFile(filePath string) (*dep3.Record, error)
}

// HistoryResolver recovers authorship for patches lacking it in their header.
type HistoryResolver interface {
	Resolve(executionContext context.Context, patchPath string) (history.Entry, error)
}
