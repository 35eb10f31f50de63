package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Compiled is a validated condition ready to run against many variable maps.
type Compiled struct {
	Source  string
	Vars    []string
	program *vm.Program
}

// MissingVariablesError lists top-level variables a condition references
// that the input did not provide.
type MissingVariablesError struct {
	Vars []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("missing variables [%s]", strings.Join(e.Vars, ", "))
}

func Compile(cond string) (*Compiled, error) {
	in, err := parse(cond)
	if err != nil {
		return nil, err
	}

	cond = strings.TrimSpace(cond)
	program, err := expr.Compile(cond, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition: %w", err)
	}

	return &Compiled{Source: cond, Vars: in.vars, program: program}, nil
}

// Run evaluates c against vars. vars is only read.
func Run(c *Compiled, vars map[string]any) (bool, error) {
	if c == nil || c.program == nil {
		return false, fmt.Errorf("condition is not compiled")
	}

	var missing []string
	for _, name := range c.Vars {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return false, &MissingVariablesError{Vars: missing}
	}

	out, err := expr.Run(c.program, vars)
	if err != nil {
		return false, err
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition must evaluate to bool (got %T)", out)
	}
	return b, nil
}

// Eval compiles and runs cond in one step.
func Eval(cond string, vars map[string]any) (bool, error) {
	c, err := Compile(cond)
	if err != nil {
		return false, err
	}
	return Run(c, vars)
}
