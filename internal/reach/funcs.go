package reach

import (
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// FuncInfo describes a declared function or method.
type FuncInfo struct {
	// Object is the declared function.
	Object types.Object

	// Name is the canonical name computed by NameCache.
	Name string

	// Reachable is set when the function can be called from an entry point.
	Reachable bool

	// Exported reports whether the function name is exported.
	Exported bool

	// DeclarationPos is the position of the function name.
	DeclarationPos token.Pos

	// Package is the package declaring the function.
	Package *packages.Package
}

// NewFuncInfo creates a FuncInfo for obj declared in pkg.
func NewFuncInfo(obj types.Object, pkg *packages.Package, names *NameCache) *FuncInfo {
	return &FuncInfo{
		Object:         obj,
		Name:           names.ObjectName(obj),
		Exported:       obj.Exported(),
		DeclarationPos: obj.Pos(),
		Package:        pkg,
	}
}

// Position resolves the declaration position.
func (fi *FuncInfo) Position() token.Position {
	if fi.Package == nil || fi.Package.Fset == nil {
		return token.Position{Filename: "unknown"}
	}
	return fi.Package.Fset.Position(fi.DeclarationPos)
}

// InTestFile reports whether the function is declared in a _test.go file.
func (fi *FuncInfo) InTestFile() bool {
	return strings.HasSuffix(fi.Position().Filename, "_test.go")
}
