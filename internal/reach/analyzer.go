package reach

import (
	"errors"
	"fmt"
	"go/types"
	"log/slog"
	"maps"
	goruntime "runtime"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// ErrNoEntryPoints is returned when the packages contain neither a main
// package nor, with tests enabled, a test function.
var ErrNoEntryPoints = errors.New("no entry points found")

// AnalyzerOptions configures an Analyzer.
type AnalyzerOptions struct {
	// Tests treats Test, Benchmark, Fuzz and Example functions as entry
	// points. The packages must have been loaded with LoaderOptions.Tests.
	Tests bool
}

// Analyzer computes which declared functions are reachable.
type Analyzer struct {
	names *NameCache
	opts  AnalyzerOptions
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	return &Analyzer{
		names: NewNameCache(),
		opts:  opts,
	}
}

// Analyze returns every function and method declared in pkgs, marked
// reachable when rapid type analysis finds a path from an entry point.
func (a *Analyzer) Analyze(pkgs []*packages.Package) (map[types.Object]*FuncInfo, error) {
	pkgs = slices.DeleteFunc(slices.Clone(pkgs), func(p *packages.Package) bool {
		return p == nil || p.Types == nil
	})
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages provided")
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	roots := a.entryPoints(ssaPkgs)
	if len(roots) == 0 {
		return nil, ErrNoEntryPoints
	}
	slog.Debug("running reachability analysis", "roots", len(roots))

	res := rta.Analyze(roots, false)
	reachable := make(map[string]struct{}, len(res.Reachable))
	for fn := range res.Reachable {
		if origin := fn.Origin(); origin != nil {
			fn = origin
		}
		if fn.Object() == nil {
			continue
		}
		reachable[a.names.ObjectName(fn.Object())] = struct{}{}
	}

	funcs := a.collectFunctions(pkgs)
	for _, fi := range funcs {
		_, fi.Reachable = reachable[fi.Name]
	}
	return funcs, nil
}

func (a *Analyzer) entryPoints(ssaPkgs []*ssa.Package) []*ssa.Function {
	var roots []*ssa.Function
	for _, pkg := range ssaPkgs {
		if pkg == nil {
			continue
		}
		var pkgRoots []*ssa.Function
		if pkg.Pkg.Name() == "main" {
			if fn := pkg.Func("main"); fn != nil {
				pkgRoots = append(pkgRoots, fn)
			}
		}
		if a.opts.Tests {
			pkgRoots = append(pkgRoots, testFunctions(pkg)...)
		}
		if len(pkgRoots) == 0 {
			continue
		}
		// The initializer of a root package runs the initializers of
		// everything it imports. Packages no root links in stay dead.
		if fn := pkg.Func("init"); fn != nil {
			pkgRoots = append(pkgRoots, fn)
		}
		roots = append(roots, pkgRoots...)
	}

	return roots
}

var testPrefixes = []string{"Test", "Benchmark", "Fuzz", "Example"}

func testFunctions(pkg *ssa.Package) []*ssa.Function {
	var fns []*ssa.Function
	for _, member := range pkg.Members {
		fn, ok := member.(*ssa.Function)
		if !ok || fn.Synthetic != "" {
			continue
		}
		pos := pkg.Prog.Fset.Position(fn.Pos())
		if !strings.HasSuffix(pos.Filename, "_test.go") {
			continue
		}
		for _, prefix := range testPrefixes {
			if strings.HasPrefix(fn.Name(), prefix) {
				fns = append(fns, fn)
				break
			}
		}
	}
	return fns
}

// collectFunctions gathers package level functions and methods of named
// types, one goroutine per package.
func (a *Analyzer) collectFunctions(pkgs []*packages.Package) map[types.Object]*FuncInfo {
	// Each goroutine writes only its own index.
	results := make([]map[types.Object]*FuncInfo, len(pkgs))

	var wg errgroup.Group
	wg.SetLimit(goruntime.NumCPU())
	var total int64

	for idx, pkg := range pkgs {
		wg.Go(func() error {
			result := make(map[types.Object]*FuncInfo)
			scope := pkg.Types.Scope()
			for _, name := range scope.Names() {
				switch obj := scope.Lookup(name).(type) {
				case *types.Func:
					if obj.Name() == "main" && pkg.Name == "main" {
						continue
					}
					result[obj] = NewFuncInfo(obj, pkg, a.names)
				case *types.TypeName:
					named, ok := obj.Type().(*types.Named)
					if !ok {
						continue
					}
					for i := range named.NumMethods() {
						method := named.Method(i)
						result[method] = NewFuncInfo(method, pkg, a.names)
					}
				}
			}
			results[idx] = result
			atomic.AddInt64(&total, int64(len(result)))
			return nil
		})
	}
	_ = wg.Wait()

	funcs := make(map[types.Object]*FuncInfo, total)
	for _, pkgFuncs := range results {
		maps.Copy(funcs, pkgFuncs)
	}
	return funcs
}

// Finding is an unreachable function.
type Finding struct {
	Name     string `json:"name"`
	Package  string `json:"package"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Exported bool   `json:"exported"`
}

// Unreachable lists the unreachable functions of funcs sorted by package
// and name. Functions declared in test files are skipped.
func Unreachable(funcs map[types.Object]*FuncInfo) []Finding {
	var findings []Finding
	for _, fi := range funcs {
		if fi.Reachable || fi.InTestFile() {
			continue
		}
		pos := fi.Position()
		pkgPath := ""
		if fi.Package != nil {
			pkgPath = fi.Package.PkgPath
		}
		findings = append(findings, Finding{
			Name:     fi.Name,
			Package:  pkgPath,
			File:     pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
			Exported: fi.Exported,
		})
	}

	slices.SortFunc(findings, func(a, b Finding) int {
		if c := strings.Compare(a.Package, b.Package); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return findings
}
