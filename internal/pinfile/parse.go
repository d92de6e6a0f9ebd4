package pinfile

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/skaphos/pinkeeper/internal/model"
)

// Parse decodes a registry block produced by Render. Only the emitted schema
// is accepted: one var declaration of []TypeName whose elements are keyed
// literals of Name, Version and WatchedPaths.
func Parse(block string, opts Options) ([]model.RepoRecord, error) {
	opts = opts.withDefaults()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "registry block", "package block\n"+block, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigCorruption, err)
	}
	lit, err := findRegistry(file, opts)
	if err != nil {
		return nil, err
	}
	records := make([]model.RepoRecord, 0, len(lit.Elts))
	for i, elt := range lit.Elts {
		rec, err := parseRecord(elt)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrConfigCorruption, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func findRegistry(file *ast.File, opts Options) (*ast.CompositeLit, error) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Names) != 1 || vs.Names[0].Name != opts.VarName {
				continue
			}
			if len(vs.Values) != 1 {
				return nil, fmt.Errorf("%w: %s has no value", ErrConfigCorruption, opts.VarName)
			}
			lit, ok := vs.Values[0].(*ast.CompositeLit)
			if !ok || !isSliceOf(lit.Type, opts.TypeName) {
				return nil, fmt.Errorf("%w: %s is not a []%s literal", ErrConfigCorruption, opts.VarName, opts.TypeName)
			}
			return lit, nil
		}
	}
	return nil, fmt.Errorf("%w: var %s not found in block", ErrConfigCorruption, opts.VarName)
}

func isSliceOf(expr ast.Expr, elem string) bool {
	arr, ok := expr.(*ast.ArrayType)
	if !ok || arr.Len != nil {
		return false
	}
	ident, ok := arr.Elt.(*ast.Ident)
	return ok && ident.Name == elem
}

func parseRecord(expr ast.Expr) (model.RepoRecord, error) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok || lit.Type != nil {
		return model.RepoRecord{}, errors.New("expected an untyped composite literal")
	}
	var rec model.RepoRecord
	seen := map[string]bool{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return rec, errors.New("expected keyed fields")
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			return rec, errors.New("expected a field name")
		}
		if seen[key.Name] {
			return rec, fmt.Errorf("duplicate field %s", key.Name)
		}
		seen[key.Name] = true
		var err error
		switch key.Name {
		case "Name":
			rec.Name, err = stringLit(kv.Value)
		case "Version":
			rec.Version, err = stringLit(kv.Value)
		case "WatchedPaths":
			rec.WatchedPaths, err = stringSlice(kv.Value)
		default:
			err = fmt.Errorf("unknown field %s", key.Name)
		}
		if err != nil {
			return rec, fmt.Errorf("%s: %w", key.Name, err)
		}
	}
	if !seen["Name"] || !seen["Version"] {
		return rec, errors.New("missing Name or Version")
	}
	return rec, nil
}

func stringLit(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", errors.New("expected a string literal")
	}
	return strconv.Unquote(lit.Value)
}

func stringSlice(expr ast.Expr) ([]string, error) {
	if ident, ok := expr.(*ast.Ident); ok && ident.Name == "nil" {
		return nil, nil
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok || !isSliceOf(lit.Type, "string") {
		return nil, errors.New("expected []string literal or nil")
	}
	out := make([]string, 0, len(lit.Elts))
	for _, elt := range lit.Elts {
		s, err := stringLit(elt)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
