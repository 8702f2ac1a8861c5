package schema

import (
	"fmt"
	"sort"
	"strings"
)

// contentTerm is one step of a content expression: a choice between node
// types repeated between min and max times. max < 0 means unbounded.
type contentTerm struct {
	names []string
	min   int
	max   int
}

// parseContent compiles a content expression into terms. Supported forms
// are `name`, `group` and `(a | b)` followed by an optional `*`, `+` or `?`,
// in a space separated sequence where only the last term is quantified.
func parseContent(expr string, nodes NodeSpecs) ([]contentTerm, error) {
	tokens, err := tokenizeContent(expr)
	if err != nil {
		return nil, err
	}

	var terms []contentTerm
	for i := 0; i < len(tokens); {
		var choices []string
		if tokens[i] == "(" {
			i++
			for {
				if i >= len(tokens) {
					return nil, fmt.Errorf("unclosed group in %q", expr)
				}
				if isContentPunct(tokens[i]) {
					return nil, fmt.Errorf("unexpected %q in %q", tokens[i], expr)
				}
				choices = append(choices, tokens[i])
				i++
				if i < len(tokens) && tokens[i] == "|" {
					i++
					continue
				}
				if i < len(tokens) && tokens[i] == ")" {
					i++
					break
				}
				return nil, fmt.Errorf("expected | or ) in %q", expr)
			}
		} else {
			if isContentPunct(tokens[i]) {
				return nil, fmt.Errorf("unexpected %q in %q", tokens[i], expr)
			}
			choices = []string{tokens[i]}
			i++
		}

		term := contentTerm{min: 1, max: 1}
		if i < len(tokens) {
			switch tokens[i] {
			case "*":
				term.min, term.max = 0, -1
				i++
			case "+":
				term.min, term.max = 1, -1
				i++
			case "?":
				term.min, term.max = 0, 1
				i++
			}
		}

		for _, choice := range choices {
			expanded, err := expandContentName(choice, nodes)
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, expr)
			}
			term.names = appendUnique(term.names, expanded...)
		}
		terms = append(terms, term)
	}

	for _, term := range terms[:max(len(terms)-1, 0)] {
		if term.min != 1 || term.max != 1 {
			return nil, fmt.Errorf("only the last term of %q may be repeated or optional", expr)
		}
	}
	return terms, nil
}

func tokenizeContent(expr string) ([]string, error) {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		case strings.ContainsRune("()|*+?", r):
			flush()
			tokens = append(tokens, string(r))
		case r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			word.WriteRune(r)
		default:
			return nil, fmt.Errorf("unsupported character %q in content expression %q", r, expr)
		}
	}
	flush()
	return tokens, nil
}

func isContentPunct(token string) bool {
	return len(token) == 1 && strings.Contains("()|*+?", token)
}

// expandContentName resolves a node type name, or a group to its member
// types in name order
func expandContentName(name string, nodes NodeSpecs) ([]string, error) {
	if _, ok := nodes[name]; ok {
		return []string{name}, nil
	}
	var members []string
	for typeName, spec := range nodes {
		if inList(spec.Group, name) {
			members = append(members, typeName)
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("unknown node type or group %q", name)
	}
	sort.Strings(members)
	return members, nil
}

// inList reports whether a space separated list contains name
func inList(list, name string) bool {
	for _, item := range strings.Fields(list) {
		if item == name {
			return true
		}
	}
	return false
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
