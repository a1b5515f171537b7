package internalcheck

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// formatArg maps printf-style functions to the index of their format
// argument.
var formatArg = map[string]int{
	"fmt.Errorf":             0,
	"fmt.Printf":             0,
	"fmt.Sprintf":            0,
	"fmt.Fprintf":            1,
	"log.Printf":             0,
	"log.Fatalf":             0,
	"go.uber.org/zap.Debugf": 0,
	"go.uber.org/zap.Infof":  0,
	"go.uber.org/zap.Warnf":  0,
	"go.uber.org/zap.Errorf": 0,
	"go.uber.org/zap.Fatalf": 0,
}

// Config values may hold credentials; errors and logs name keys and handles,
// never hex dumps of values.
func TestNoHexFormattingOfValues(t *testing.T) {
	pkgs := load(t, packages.NeedName|packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo|packages.NeedFiles,
		modulePath+"/pkg/cfgcore/...", modulePath+"/internal/bindings")

	var findings []string
	eachCall(pkgs, func(pkg *packages.Package, call *ast.CallExpr, pkgPath, name string) {
		idx, ok := formatArg[pkgPath+"."+name]
		if !ok || idx >= len(call.Args) {
			return
		}
		lit, ok := call.Args[idx].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return
		}
		format, err := strconv.Unquote(lit.Value)
		if err != nil {
			return
		}
		if strings.Contains(format, "%x") || strings.Contains(format, "%X") {
			findings = append(findings, fmt.Sprintf("%s: %s formats with %%x", pkg.Fset.Position(lit.Pos()), name))
		}
	})
	report(t, "value formatting policy violation", findings)
}
