package eval

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Validate rejects conditions that could do more than compare case data:
// function and builtin calls, closures, pointers and variable declarations.
func Validate(cond string) error {
	_, err := parse(cond)
	return err
}

func parse(cond string) (*inspector, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil, fmt.Errorf("condition is empty")
	}

	tree, err := parser.Parse(cond)
	if err != nil {
		return nil, fmt.Errorf("parse condition: %w", err)
	}

	in := &inspector{seen: map[string]struct{}{}}
	ast.Walk(&tree.Node, in)
	if in.err != nil {
		return nil, in.err
	}
	return in, nil
}

type inspector struct {
	vars []string
	seen map[string]struct{}
	err  error
}

func (in *inspector) Visit(node *ast.Node) {
	if in.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if _, ok := in.seen[n.Value]; ok {
			return
		}
		in.seen[n.Value] = struct{}{}
		in.vars = append(in.vars, n.Value)
	case *ast.CallNode:
		in.err = fmt.Errorf("function calls are not allowed")
	case *ast.BuiltinNode:
		in.err = fmt.Errorf("builtin %q is not allowed", n.Name)
	case *ast.PointerNode, *ast.PredicateNode:
		in.err = fmt.Errorf("closures are not allowed")
	case *ast.VariableDeclaratorNode:
		in.err = fmt.Errorf("variable declarations are not allowed")
	}
}
