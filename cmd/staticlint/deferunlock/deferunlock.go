// Package deferunlock defines an analyzer that requires every sync
// mutex acquisition to be released by a defer on the very next line.
//
// The user store relies on each operation holding its lock from start to
// finish; a Lock paired with a manual Unlock makes early returns and
// panics leak the lock or shorten the critical section.
package deferunlock

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports Lock and RLock calls on sync mutexes that are not
// immediately followed by a deferred Unlock or RUnlock of the same mutex.
// Test files are not checked.
var Analyzer = &analysis.Analyzer{
	Name: "deferunlock",
	Doc:  "requires sync mutex Lock/RLock to be followed by the matching deferred unlock",
	Run:  run,
}

var unlockFor = map[string]string{
	"Lock":  "Unlock",
	"RLock": "RUnlock",
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		filename := pass.Fset.File(file.Pos()).Name()
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			switch stmt := n.(type) {
			case *ast.BlockStmt:
				checkStatements(pass, stmt.List)
			case *ast.CaseClause:
				checkStatements(pass, stmt.Body)
			case *ast.CommClause:
				checkStatements(pass, stmt.Body)
			}
			return true
		})
	}
	return nil, nil
}

func checkStatements(pass *analysis.Pass, stmts []ast.Stmt) {
	for i, stmt := range stmts {
		exprStmt, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}

		receiver, method, ok := syncMutexCall(pass, exprStmt.X)
		if !ok {
			continue
		}
		unlock, ok := unlockFor[method]
		if !ok {
			continue
		}

		if i+1 < len(stmts) && isDeferredCall(pass, stmts[i+1], receiver, unlock) {
			continue
		}

		pass.Reportf(
			exprStmt.Pos(),
			"%s.%s() must be followed by defer %s.%s()",
			receiver, method, receiver, unlock,
		)
	}
}

func isDeferredCall(pass *analysis.Pass, stmt ast.Stmt, receiver, method string) bool {
	deferStmt, ok := stmt.(*ast.DeferStmt)
	if !ok {
		return false
	}

	gotReceiver, gotMethod, ok := syncMutexCall(pass, deferStmt.Call)
	return ok && gotReceiver == receiver && gotMethod == method
}

// syncMutexCall reports whether expr is an argument-less method call
// resolved to package sync, returning the receiver text and method name.
func syncMutexCall(pass *analysis.Pass, expr ast.Expr) (string, string, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 0 {
		return "", "", false
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "sync" {
		return "", "", false
	}

	return types.ExprString(sel.X), sel.Sel.Name, true
}
