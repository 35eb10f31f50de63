package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/awmpietro/golang-case-classification/internal/classification"
)

//go:embed locales/*.yaml
var embedded embed.FS

const DefaultLocale = "en"

// Table is the string table of one locale. It implements
// classification.Localizer and is read-only after loading.
type Table struct {
	locale  string
	tag     language.Tag
	strings map[string]string
}

func NewTable(locale string, entries map[string]string) (*Table, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	cp := make(map[string]string, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return &Table{locale: locale, tag: tag, strings: cp}, nil
}

func (t *Table) Locale() string { return t.locale }

func (t *Table) String(key classification.Key) (string, error) {
	v, ok := t.strings[string(key)]
	if !ok {
		return "", &classification.MissingKeyError{Locale: t.locale, Key: key}
	}
	return v, nil
}

// Upper upper-cases with the locale's rules. A cases.Caser is not safe for
// concurrent use, so one is made per call.
func (t *Table) Upper(s string) string {
	return cases.Upper(t.tag).String(s)
}

func (t *Table) keys() []string {
	out := make([]string, 0, len(t.strings))
	for k := range t.strings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Bundle holds the tables of every supported locale.
type Bundle struct {
	defaultLocale string
	tables        map[string]*Table
	// supported lists the tables in matcher order, default locale first.
	supported []*Table
	matcher   language.Matcher
}

// Load reads every *.yaml file of fsys as a locale named after the file and
// checks that all locales define the keys of the default one.
func Load(fsys fs.FS, defaultLocale string) (*Bundle, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}

	b := &Bundle{defaultLocale: defaultLocale, tables: map[string]*Table{}}
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		entries := map[string]string{}
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		locale := strings.TrimSuffix(path.Base(name), path.Ext(name))
		table, err := NewTable(locale, entries)
		if err != nil {
			return nil, err
		}
		b.tables[locale] = table
	}

	def, ok := b.tables[defaultLocale]
	if !ok {
		return nil, fmt.Errorf("default locale %q has no string table", defaultLocale)
	}
	for locale, table := range b.tables {
		var missing []string
		for _, k := range def.keys() {
			if _, ok := table.strings[k]; !ok {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("locale %q is missing keys [%s]", locale, strings.Join(missing, ", "))
		}
	}

	b.supported = append(b.supported, def)
	for _, locale := range b.Locales() {
		if locale != defaultLocale {
			b.supported = append(b.supported, b.tables[locale])
		}
	}
	tags := make([]language.Tag, len(b.supported))
	for i, t := range b.supported {
		tags[i] = t.tag
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Default loads the locales shipped with the binary.
func Default(defaultLocale string) (*Bundle, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return Load(sub, defaultLocale)
}

// Localizer returns the table best matching locale, which may be a single
// tag ("de-CH") or an Accept-Language header ("de-DE,de;q=0.9,en;q=0.8").
// Unknown, unmatched or empty locales get the default table.
func (b *Bundle) Localizer(locale string) *Table {
	locale = strings.TrimSpace(locale)
	if t, ok := b.tables[locale]; ok {
		return t
	}
	if locale == "" {
		return b.supported[0]
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return b.supported[0]
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(b.supported) {
		return b.supported[0]
	}
	return b.supported[idx]
}

func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.tables))
	for l := range b.tables {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (b *Bundle) DefaultLocale() string { return b.defaultLocale }
