// Package reach reports functions that cannot be reached from a program's
// entry points.
package reach

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// loadMode requests everything needed to build SSA for the packages and
// all of their dependencies.
const loadMode = packages.NeedDeps |
	packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// LoaderOptions configures package loading.
type LoaderOptions struct {
	// Packages are the package patterns to load. Defaults to "./...".
	Packages []string

	// BuildTags are build tags to apply during loading.
	BuildTags []string

	// Dir is the directory to load packages from. If empty, the current
	// working directory is used.
	Dir string

	// Env is the environment for the build system. If nil, the process
	// environment is used.
	Env []string

	// Tests also loads test variants so tests count as entry points.
	Tests bool
}

// LoadPackages loads and type checks the packages matching opts.
func LoadPackages(ctx context.Context, opts LoaderOptions) ([]*packages.Package, error) {
	patterns := opts.Packages
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Tests:   opts.Tests,
		Dir:     opts.Dir,
		Env:     opts.Env,
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = append(cfg.BuildFlags, "-tags", strings.Join(opts.BuildTags, ","))
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching patterns: %v", patterns)
	}

	var errorMessages []string
	for _, pkg := range pkgs {
		for _, err := range pkg.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf("package %s: %v", pkg.PkgPath, err))
		}
	}
	if len(errorMessages) > 0 {
		return nil, fmt.Errorf("package errors:\n%s", strings.Join(errorMessages, "\n"))
	}

	return deduplicatePackages(pkgs), nil
}

// deduplicatePackages keeps one package per import path. Test variants
// (IDs containing "[...]") include all production code and are preferred.
// Synthesized test binaries ("pkg.test") are dropped.
func deduplicatePackages(pkgs []*packages.Package) []*packages.Package {
	best := make(map[string]*packages.Package)
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.ID, ".test") && !strings.Contains(pkg.ID, "[") {
			continue
		}

		existing, exists := best[pkg.PkgPath]
		if !exists || isSuperset(pkg, existing) {
			best[pkg.PkgPath] = pkg
		}
	}

	result := slices.Collect(maps.Values(best))
	slices.SortFunc(result, func(a, b *packages.Package) int {
		return strings.Compare(a.PkgPath, b.PkgPath)
	})
	return result
}

// isSuperset reports whether pkg is a test variant replacing a regular
// package.
func isSuperset(pkg, existing *packages.Package) bool {
	return strings.Contains(pkg.ID, "[") && !strings.Contains(existing.ID, "[")
}
