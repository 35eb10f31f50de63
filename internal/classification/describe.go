package classification

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Describe renders c as marked-up text: <b> emphasis, <br/> line breaks and
// "- " bullet markers. It needs no case data; the same tree always yields
// the same text for the same localizer.
func Describe(c Criteria, loc Localizer) (string, error) {
	var b strings.Builder
	if err := describe(&b, c, loc); err != nil {
		return "", err
	}
	return b.String(), nil
}

func describe(b *strings.Builder, c Criteria, loc Localizer) error {
	switch n := c.(type) {
	case nil:
		return nil
	case *Threshold:
		return n.describe(b, loc)
	case *CaseProperty:
		return describeLeaf(b, n.leaf, loc, KeyCaseProperty, map[string]any{
			"property": n.property,
			"values":   strings.Join(n.values, ", "),
		})
	case *Symptom:
		return describeLeaf(b, n.leaf, loc, KeySymptom, map[string]any{"symptom": n.name})
	case *Exposure:
		return describeLeaf(b, n.leaf, loc, KeyExposure, map[string]any{"exposure": n.name})
	case *PersonAge:
		key := KeyPersonAgeBetween
		switch {
		case n.max == nil:
			key = KeyPersonAgeAtLeast
		case n.min == nil:
			key = KeyPersonAgeAtMost
		}
		return describeLeaf(b, n.leaf, loc, key, map[string]any{
			"min": boundString(n.min),
			"max": boundString(n.max),
		})
	case *PathogenTest:
		if n.caption != "" {
			b.WriteString(n.caption)
			return nil
		}
		tests := strings.Join(n.testTypes, ", ")
		if tests == "" {
			s, err := loc.String(KeyAnyTest)
			if err != nil {
				return err
			}
			tests = s
		}
		return describeLeaf(b, n.leaf, loc, KeyPathogenTest, map[string]any{
			"result": string(n.result),
			"tests":  tests,
		})
	case *Expression:
		if n.caption != "" {
			b.WriteString(n.caption)
			return nil
		}
		b.WriteString("<i>" + html.EscapeString(n.Source()) + "</i>")
		return nil
	case *Predicate:
		b.WriteString(n.caption)
		return nil
	default:
		panic(fmt.Sprintf("classification: unhandled criteria %T", c))
	}
}

func (t *Threshold) describe(b *strings.Builder, loc Localizer) error {
	if len(t.children) == 0 || t.amount < 1 {
		return ErrNoSubCriteria
	}
	switch t.mode {
	case RenderDefault:
		label, err := amountLabel(loc, t.amount)
		if err != nil {
			return err
		}
		b.WriteString(label)
		return nil

	case RenderBulleted:
		label, err := bulletedLabel(loc)
		if err != nil {
			return err
		}
		b.WriteString(label)
		for _, child := range t.children {
			b.WriteString("<br/>- ")
			if err := describe(b, child, loc); err != nil {
				return err
			}
		}
		return nil

	case RenderCompact:
		or, err := upperString(loc, KeyOr)
		if err != nil {
			return err
		}
		last := len(t.children) - 1
		for i, child := range t.children {
			switch {
			case i == 0:
			case i < last:
				b.WriteString(", ")
			default:
				b.WriteString(" <b>" + or + "</b> ")
			}
			if err := describe(b, child, loc); err != nil {
				return err
			}
		}
		return nil

	default:
		panic("classification: unhandled render mode " + strconv.Itoa(int(t.mode)))
	}
}

// amountLabel renders "<b>TWO OF</b>".
func amountLabel(loc Localizer, amount int) (string, error) {
	word, err := AmountWord(loc, amount)
	if err != nil {
		return "", err
	}
	of, err := upperString(loc, KeyOf)
	if err != nil {
		return "", err
	}
	return "<b>" + word + " " + of + "</b>", nil
}

// bulletedLabel renders "<b>ONE OF</b>". The label does not depend on the
// required amount.
func bulletedLabel(loc Localizer) (string, error) {
	oneOf, err := upperString(loc, KeyOneOf)
	if err != nil {
		return "", err
	}
	return "<b>" + oneOf + "</b>", nil
}

func describeLeaf(b *strings.Builder, l leaf, loc Localizer, key Key, vars map[string]any) error {
	if l.caption != "" {
		b.WriteString(l.caption)
		return nil
	}
	tpl, err := loc.String(key)
	if err != nil {
		return err
	}
	b.WriteString(fasttemplate.ExecuteStringStd(tpl, "{", "}", vars))
	return nil
}
