package ruleset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/awmpietro/golang-case-classification/internal/classification"
)

// Node kinds, read from the "group" attribute.
const (
	kindAll      = "all"
	kindOne      = "one"
	kindXOf      = "xof"
	kindBulleted = "sub"
	kindCompact  = "compact"
	kindCase     = "case"
	kindSymptom  = "symptom"
	kindExposure = "exposure"
	kindAge      = "age"
	kindTest     = "test"
	kindExpr     = "expr"
)

const (
	attrKind    gographviz.Attr = "group"
	attrAmount  gographviz.Attr = "xlabel"
	attrParams  gographviz.Attr = "comment"
	attrCaption gographviz.Attr = "label"
)

var ErrNoTiers = errors.New("rule definition declares no tier node")

// Compiler turns a DOT rule definition into a RuleSet.
//
// The graph name is the disease. Every node carries its kind in "group".
// Tier roots are the nodes named after a tier, edges point from a
// combinator to its sub criteria in the order they are written, "xlabel"
// holds the required amount of xof/sub nodes, "comment" holds leaf
// parameters and "label" an optional fixed caption.
type Compiler struct{}

func NewCompiler() *Compiler { return &Compiler{} }

func (c *Compiler) Compile(dot string) (*RuleSet, error) {
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOT: %w", err)
	}

	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return nil, fmt.Errorf("failed to analyze DOT: %w", err)
	}

	disease := strings.ToUpper(unquote(g.Name))
	if disease == "" {
		return nil, errors.New("rule definition must name its disease as the graph name")
	}

	b := &builder{
		nodes:    map[string]gographviz.Attrs{},
		children: map[string][]string{},
		built:    map[string]classification.Criteria{},
		visiting: map[string]bool{},
	}
	for _, n := range g.Nodes.Nodes {
		b.nodes[n.Name] = n.Attrs
	}
	for _, e := range g.Edges.Edges {
		b.children[e.Src] = append(b.children[e.Src], e.Dst)
	}

	roots := map[Tier]classification.Criteria{}
	for _, tier := range tierOrder {
		if _, ok := b.nodes[string(tier)]; !ok {
			continue
		}
		crit, err := b.build(string(tier))
		if err != nil {
			return nil, fmt.Errorf("tier %s: %w", tier, err)
		}
		roots[tier] = crit
	}
	if len(roots) == 0 {
		return nil, ErrNoTiers
	}

	for _, n := range g.Nodes.Nodes {
		if _, ok := b.built[n.Name]; !ok {
			return nil, fmt.Errorf("node %q is not reachable from any tier", n.Name)
		}
	}

	return NewRuleSet(disease, roots), nil
}

type builder struct {
	nodes    map[string]gographviz.Attrs
	children map[string][]string
	built    map[string]classification.Criteria
	visiting map[string]bool
}

func (b *builder) build(name string) (classification.Criteria, error) {
	if c, ok := b.built[name]; ok {
		return c, nil
	}
	if b.visiting[name] {
		return nil, fmt.Errorf("cycle through node %q", name)
	}
	attrs, ok := b.nodes[name]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", name)
	}

	b.visiting[name] = true
	defer delete(b.visiting, name)

	kind := getAttr(attrs, attrKind)
	var (
		crit classification.Criteria
		err  error
	)
	switch kind {
	case kindAll, kindOne, kindXOf, kindBulleted, kindCompact:
		crit, err = b.buildThreshold(name, kind, attrs)
	case kindCase, kindSymptom, kindExposure, kindAge, kindTest, kindExpr:
		if len(b.children[name]) > 0 {
			return nil, fmt.Errorf("node %q: %s criteria cannot have sub criteria", name, kind)
		}
		crit, err = buildLeaf(kind, attrs)
	case "":
		return nil, fmt.Errorf("node %q has no kind", name)
	default:
		return nil, fmt.Errorf("node %q has unknown kind %q", name, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", name, err)
	}

	b.built[name] = crit
	return crit, nil
}

func (b *builder) buildThreshold(name, kind string, attrs gographviz.Attrs) (classification.Criteria, error) {
	names := b.children[name]
	if len(names) == 0 {
		return nil, classification.ErrNoSubCriteria
	}
	children := make([]classification.Criteria, 0, len(names))
	for _, child := range names {
		c, err := b.build(child)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}

	switch kind {
	case kindAll:
		return classification.AllOf(children...)
	case kindOne:
		return classification.OneOf(children...)
	case kindCompact:
		return classification.OneOfCompact(children...)
	case kindXOf:
		amount, err := amountOf(attrs, 0)
		if err != nil {
			return nil, err
		}
		return classification.XOf(amount, children...)
	default:
		amount, err := amountOf(attrs, 1)
		if err != nil {
			return nil, err
		}
		return classification.Bulleted(amount, children...)
	}
}

func amountOf(attrs gographviz.Attrs, fallback int) (int, error) {
	raw := getAttr(attrs, attrAmount)
	if raw == "" {
		if fallback == 0 {
			return 0, errors.New("missing required amount")
		}
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not an integer", raw)
	}
	return n, nil
}

func buildLeaf(kind string, attrs gographviz.Attrs) (classification.Criteria, error) {
	var opts []classification.LeafOption
	if caption := getAttr(attrs, attrCaption); caption != "" {
		opts = append(opts, classification.WithCaption(caption))
	}

	raw := getAttr(attrs, attrParams)
	if kind == kindExpr {
		return classification.NewExpression(raw, opts...)
	}

	p, err := parseParams(raw)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindCase:
		property, err := p.required("property")
		if err != nil {
			return nil, err
		}
		return classification.NewCaseProperty(property, p.list("values"), opts...)
	case kindSymptom:
		name, err := p.required("name")
		if err != nil {
			return nil, err
		}
		return classification.NewSymptom(name, opts...)
	case kindExposure:
		name, err := p.required("name")
		if err != nil {
			return nil, err
		}
		return classification.NewExposure(name, opts...)
	case kindAge:
		min, err := p.optionalInt("min")
		if err != nil {
			return nil, err
		}
		max, err := p.optionalInt("max")
		if err != nil {
			return nil, err
		}
		return classification.NewPersonAge(min, max, opts...)
	default:
		result, err := p.required("result")
		if err != nil {
			return nil, err
		}
		tr, err := parseTestResult(result)
		if err != nil {
			return nil, err
		}
		verified, err := p.bool("verified")
		if err != nil {
			return nil, err
		}
		return classification.NewPathogenTest(tr, verified, p.list("types"), opts...)
	}
}

func parseTestResult(s string) (classification.TestResult, error) {
	switch r := classification.TestResult(strings.ToUpper(s)); r {
	case classification.ResultPositive, classification.ResultNegative,
		classification.ResultPending, classification.ResultIndeterminate:
		return r, nil
	}
	return "", fmt.Errorf("unknown test result %q", s)
}

// getAttr reads a Graphviz attribute, dropping the surrounding quotes.
func getAttr(attrs gographviz.Attrs, key gographviz.Attr) string {
	val, ok := attrs[key]
	if !ok {
		return ""
	}
	return unquote(val)
}
