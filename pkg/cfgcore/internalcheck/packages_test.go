package internalcheck

import (
	"go/ast"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/hsiuhsiu/cfgcore-go"

// shimPackage is the only package allowed to import "C" or "unsafe".
const shimPackage = modulePath + "/internal/cgo"

// load loads patterns, test variants included. Patterns default to the
// whole module.
func load(t *testing.T, mode packages.LoadMode, patterns ...string) []*packages.Package {
	t.Helper()
	if len(patterns) == 0 {
		patterns = []string{modulePath + "/..."}
	}
	cfg := &packages.Config{Mode: mode, Tests: true}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if len(pkgs) == 0 {
		t.Fatal("no packages loaded")
	}
	return pkgs
}

// eachFile calls fn once per source file. Test variants repeat their
// package's files; those are visited once.
func eachFile(pkgs []*packages.Package, fn func(pkg *packages.Package, path string, file *ast.File)) {
	seen := map[string]bool{}
	for _, pkg := range pkgs {
		for i, file := range pkg.Syntax {
			path := pkg.Fset.Position(file.Pos()).Filename
			if i < len(pkg.CompiledGoFiles) {
				path = pkg.CompiledGoFiles[i]
			}
			if seen[path] {
				continue
			}
			seen[path] = true
			fn(pkg, path, file)
		}
	}
}

// eachCall visits every call expression whose callee resolves to a
// package-level function or method.
func eachCall(pkgs []*packages.Package, fn func(pkg *packages.Package, call *ast.CallExpr, pkgPath, name string)) {
	eachFile(pkgs, func(pkg *packages.Package, _ string, file *ast.File) {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			obj := pkg.TypesInfo.Uses[sel.Sel]
			if obj == nil || obj.Pkg() == nil {
				return true
			}
			fn(pkg, call, obj.Pkg().Path(), obj.Name())
			return true
		})
	})
}

func report(t *testing.T, policy string, findings []string) {
	t.Helper()
	if len(findings) == 0 {
		return
	}
	sort.Strings(findings)
	t.Fatalf("%s:\n%s", policy, strings.Join(findings, "\n"))
}
