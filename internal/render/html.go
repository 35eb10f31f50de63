package render

import (
	"html"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/awmpietro/golang-case-classification/internal/classification"
)

var (
	sectionTpl = fasttemplate.New(`<section class="tier tier-{tier}"><h3>{title}</h3><ul class="criteria">{items}</ul></section>`, "{", "}")
	itemTpl    = fasttemplate.New(`<li class="{class}">{markup}{children}</li>`, "{", "}")
	listTpl    = fasttemplate.New(`<ul class="criteria">{items}</ul>`, "{", "}")
)

// Section is one tier of a disease's rules.
type Section struct {
	Tier     string
	Title    string
	Criteria classification.Criteria
}

// HTML renders the sections as nested lists. Thresholds rendered in the
// default mode only show their amount label, so their sub criteria are
// listed below them. Bulleted and compact nodes carry their children in
// their own markup and are not expanded.
func HTML(sections []Section, loc classification.Localizer) (string, error) {
	var b strings.Builder
	b.WriteString(`<div class="classification-rules">`)
	for _, s := range sections {
		item, err := node(s.Criteria, loc)
		if err != nil {
			return "", err
		}
		b.WriteString(sectionTpl.ExecuteString(map[string]interface{}{
			"tier":  html.EscapeString(s.Tier),
			"title": html.EscapeString(s.Title),
			"items": item,
		}))
	}
	b.WriteString(`</div>`)
	return b.String(), nil
}

func node(c classification.Criteria, loc classification.Localizer) (string, error) {
	markup, err := classification.Describe(c, loc)
	if err != nil {
		return "", err
	}

	children := ""
	if th, ok := c.(*classification.Threshold); ok && th.Mode() == classification.RenderDefault {
		var items strings.Builder
		for _, sub := range th.SubCriteria() {
			s, err := node(sub, loc)
			if err != nil {
				return "", err
			}
			items.WriteString(s)
		}
		children = listTpl.ExecuteString(map[string]interface{}{"items": items.String()})
	}

	return itemTpl.ExecuteString(map[string]interface{}{
		"class":    cssClass(c),
		"markup":   markup,
		"children": children,
	}), nil
}

func cssClass(c classification.Criteria) string {
	if classification.IsCompact(c) {
		return "compact"
	}
	th, ok := c.(*classification.Threshold)
	if !ok {
		return "leaf"
	}
	if th.Mode() == classification.RenderBulleted {
		return "bulleted"
	}
	return "threshold"
}
