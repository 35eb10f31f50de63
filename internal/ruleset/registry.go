package ruleset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed rules/*.dot
var builtin embed.FS

var ErrUnknownDisease = errors.New("no classification rules for disease")

// Registry holds the compiled rule set of every known disease. It is
// read-only after construction.
type Registry struct {
	sets map[string]*RuleSet
}

// LoadRegistry compiles every *.dot file of fsys. Two files may not define
// the same disease.
func LoadRegistry(fsys fs.FS, compiler *Compiler) (*Registry, error) {
	files, err := fs.Glob(fsys, "*.dot")
	if err != nil {
		return nil, err
	}

	r := &Registry{sets: map[string]*RuleSet{}}
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		rs, err := compiler.Compile(string(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		if _, dup := r.sets[rs.Disease]; dup {
			return nil, fmt.Errorf("%s: disease %s is already defined", name, rs.Disease)
		}
		r.sets[rs.Disease] = rs
	}
	return r, nil
}

// Builtin loads the rule sets shipped with the binary.
func Builtin() (*Registry, error) {
	sub, err := fs.Sub(builtin, "rules")
	if err != nil {
		return nil, err
	}
	return LoadRegistry(sub, NewCompiler())
}

func (r *Registry) Get(disease string) (*RuleSet, error) {
	rs, ok := r.sets[strings.ToUpper(strings.TrimSpace(disease))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDisease, disease)
	}
	return rs, nil
}

func (r *Registry) Diseases() []string {
	out := make([]string, 0, len(r.sets))
	for d := range r.sets {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
