package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gerunddev/mdxbridge/internal/model"
)

// ErrInvalidDocument is matched by every ValidationError
var ErrInvalidDocument = errors.New("document does not match schema")

// Issue is one validation failure at a JSON pointer into the document
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists everything wrong with a document tree
type ValidationError struct {
	Issues []Issue
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s", ErrInvalidDocument, e.Err)
		}
		return ErrInvalidDocument.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidDocument}
	}
	return []error{ErrInvalidDocument, e.Err}
}

// Validate checks a document tree against the schema. The tree's JSON form
// is checked against the compiled JSON Schema, then mark placement is
// checked: marks allowed by the parent type and mark exclusions.
func (s *Schema) Validate(doc *model.Node) error {
	if doc == nil {
		return &ValidationError{Issues: []Issue{{Message: "document is nil"}}}
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	if err := s.validator.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Issues: collectIssues(verr), Err: err}
		}
		return &ValidationError{Err: err}
	}

	var issues []Issue
	s.checkMarks(doc, "", &issues)
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

func (s *Schema) checkMarks(n *model.Node, location string, issues *[]Issue) {
	spec := s.nodes[n.Type]
	for i, child := range n.Content {
		childLocation := fmt.Sprintf("%s/content/%d", location, i)
		for j, mark := range child.Marks {
			if !s.allowsMark(spec, mark.Type) {
				*issues = append(*issues, Issue{
					Location: fmt.Sprintf("%s/marks/%d", childLocation, j),
					Message:  fmt.Sprintf("mark %s is not allowed in %s", mark.Type, n.Type),
				})
			}
			for _, other := range child.Marks[j+1:] {
				if s.excludes(mark.Type, other.Type) || s.excludes(other.Type, mark.Type) {
					*issues = append(*issues, Issue{
						Location: fmt.Sprintf("%s/marks/%d", childLocation, j),
						Message:  fmt.Sprintf("mark %s cannot be combined with %s", mark.Type, other.Type),
					})
				}
			}
		}
		s.checkMarks(child, childLocation, issues)
	}
}

func (s *Schema) allowsMark(parent NodeSpec, mark string) bool {
	if parent.Marks == nil {
		return true
	}
	for _, entry := range parent.Marks {
		if s.markMatches(entry, mark) {
			return true
		}
	}
	return false
}

// excludes reports whether mark a rules out mark b on the same node
func (s *Schema) excludes(a, b string) bool {
	spec := s.marks[a]
	if spec.Excludes == "" {
		return a == b
	}
	for _, entry := range strings.Fields(spec.Excludes) {
		if s.markMatches(entry, b) {
			return true
		}
	}
	return false
}
