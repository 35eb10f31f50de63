package ruleset

import (
	"fmt"
	"strconv"
	"strings"
)

// params is the key=value list carried in a leaf node's comment.
type params map[string]string

func parseParams(raw string) (params, error) {
	raw = strings.TrimSpace(raw)
	out := params{}
	if raw == "" {
		return out, nil
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", part)
		}

		key := strings.TrimSpace(kv[0])
		if key == "" {
			return nil, fmt.Errorf("empty key in parameter %q", part)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", key)
		}
		out[key] = unquote(strings.TrimSpace(kv[1]))
	}

	return out, nil
}

func (p params) required(key string) (string, error) {
	v := p[key]
	if v == "" {
		return "", fmt.Errorf("missing parameter %q", key)
	}
	return v, nil
}

// list splits a |-separated value.
func (p params) list(key string) []string {
	v := p[key]
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p params) optionalInt(key string) (*int, error) {
	v, ok := p[key]
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %q is not an integer", key, v)
	}
	return &n, nil
}

func (p params) bool(key string) (bool, error) {
	v, ok := p[key]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parameter %q: %q is not a boolean", key, v)
	}
	return b, nil
}

// unquote strips DOT string quotes, resolving escapes when possible.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	if s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s[1 : len(s)-1]
}
